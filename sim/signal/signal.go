// Package signal provides the wires that connect clocked components.
//
// A Signal has two values. Read returns the committed value, which is the
// value at the start of the current tick. Write stages the value that becomes
// visible after the clock domain commits the signal at the end of the tick.
// Components that only read committed values and only write staged values
// can be evaluated in any order, or concurrently, within a tick.
package signal

import (
	"fmt"
	"sync"

	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/naming"
)

// HookPosSignalChange marks when a committed value of a signal changes. The
// hook item is the new value.
var HookPosSignalChange = &hooking.HookPos{Name: "SignalChange"}

// A Signal is a two-phase wire that carries a value of type T.
type Signal[T comparable] struct {
	naming.NamedBase
	hooking.HookableBase

	lock    sync.Mutex
	current T
	next    T
	written bool
}

// New creates a signal with the given name and initial value.
func New[T comparable](name string, initial T) *Signal[T] {
	naming.NameMustBeValid(name)

	return &Signal[T]{
		NamedBase: naming.MakeNamedBase(name),
		current:   initial,
		next:      initial,
	}
}

// Initialize sets both the committed and the staged value. It should only be
// used before the simulation starts.
func (s *Signal[T]) Initialize(v T) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.current = v
	s.next = v
	s.written = false
}

// Read returns the committed value.
func (s *Signal[T]) Read() T {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.current
}

// Write stages a value. Writing different values to the same signal within
// one tick means that the signal has more than one driver, which panics.
func (s *Signal[T]) Write(v T) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.written && s.next != v {
		panic(fmt.Sprintf(
			"signal %s is driven with both %v and %v in the same tick",
			s.Name(), s.next, v))
	}

	s.next = v
	s.written = true
}

// Commit makes the staged value visible and reports if the committed value
// has changed.
func (s *Signal[T]) Commit() bool {
	s.lock.Lock()
	changed := s.current != s.next
	s.current = s.next
	s.written = false
	v := s.current
	s.lock.Unlock()

	if changed && s.NumHooks() > 0 {
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosSignalChange,
			Item:   v,
		})
	}

	return changed
}

// String returns the name and the committed value of the signal.
func (s *Signal[T]) String() string {
	return fmt.Sprintf("%s=%v", s.Name(), s.Read())
}
