package signal

import (
	"log"

	"github.com/sarchlab/hsfifo/sim/naming"
)

// A Binder is a port that needs to be bound to a signal before the
// simulation starts.
type Binder interface {
	naming.Named

	IsBound() bool
}

// A PortOwner is a component that owns ports.
type PortOwner interface {
	Ports() []Binder
}

type port[T comparable] struct {
	naming.NamedBase

	signal *Signal[T]
}

func (p *port[T]) bind(s *Signal[T]) {
	if s == nil {
		log.Panicf("port %s cannot be bound to a nil signal", p.Name())
	}

	if p.signal != nil {
		log.Panicf("port %s is already bound to signal %s",
			p.Name(), p.signal.Name())
	}

	p.signal = s
}

func (p *port[T]) mustBeBound() *Signal[T] {
	if p.signal == nil {
		log.Panicf("port %s is not bound", p.Name())
	}

	return p.signal
}

// IsBound returns true if the port is bound to a signal.
func (p *port[T]) IsBound() bool {
	return p.signal != nil
}

// Signal returns the signal that the port is bound to, or nil.
func (p *port[T]) Signal() *Signal[T] {
	return p.signal
}

// An In port reads the committed value of a signal.
type In[T comparable] struct {
	port[T]
}

// NewIn creates an input port named after its owner.
func NewIn[T comparable](owner naming.Named, name string) *In[T] {
	fullName := naming.BuildName(owner.Name(), name)
	naming.NameMustBeValid(fullName)

	return &In[T]{port: port[T]{NamedBase: naming.MakeNamedBase(fullName)}}
}

// Bind connects the port to a signal. A port can only be bound once.
func (p *In[T]) Bind(s *Signal[T]) {
	p.bind(s)
}

// Read returns the committed value of the bound signal.
func (p *In[T]) Read() T {
	return p.mustBeBound().Read()
}

// An Out port stages values on a signal.
type Out[T comparable] struct {
	port[T]
}

// NewOut creates an output port named after its owner.
func NewOut[T comparable](owner naming.Named, name string) *Out[T] {
	fullName := naming.BuildName(owner.Name(), name)
	naming.NameMustBeValid(fullName)

	return &Out[T]{port: port[T]{NamedBase: naming.MakeNamedBase(fullName)}}
}

// Bind connects the port to a signal. A port can only be bound once.
func (p *Out[T]) Bind(s *Signal[T]) {
	p.bind(s)
}

// Write stages a value on the bound signal.
func (p *Out[T]) Write(v T) {
	p.mustBeBound().Write(v)
}

// Initialize sets the initial value of the bound signal. Output ports use it
// to declare their reset value, before the simulation starts.
func (p *Out[T]) Initialize(v T) {
	p.mustBeBound().Initialize(v)
}

// Read returns the committed value of the bound signal, which is the value
// this port drove in the previous tick.
func (p *Out[T]) Read() T {
	return p.mustBeBound().Read()
}
