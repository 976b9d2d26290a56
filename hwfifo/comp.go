package hwfifo

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/sarchlab/hsfifo/handshake"
	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// HookPosWrite marks when a FIFO accepts an item. The hook item is the value.
var HookPosWrite = &hooking.HookPos{Name: "FIFOWrite"}

// HookPosRead marks when a FIFO hands out an item. The hook item is the
// value.
var HookPosRead = &hooking.HookPos{Name: "FIFORead"}

// TransferDetail is the hook detail of HookPosWrite and HookPosRead.
type TransferDetail struct {
	// Cycle is the index of the clock edge, starting from 0.
	Cycle uint64

	// Occupancy is the number of stored items after the edge.
	Occupancy int
}

// A CycleCounter tells the index of the current clock edge.
type CycleCounter interface {
	Cycle() uint64
}

// Comp is a FIFO connected to signals. It is evaluated by a clock domain.
type Comp[T comparable] struct {
	naming.NamedBase
	hooking.HookableBase

	DataIn   *signal.In[T]
	ValidIn  *signal.In[bool]
	ReadyIn  *signal.In[bool]
	DataOut  *signal.Out[T]
	ValidOut *signal.Out[bool]
	ReadyOut *signal.Out[bool]

	lock      sync.Mutex
	fifo      *FIFO[T]
	clock     CycleCounter
	evaluated bool
	written   uint64
	read      uint64
}

// Evaluate samples the inputs, applies a clock edge and drives the outputs.
func (c *Comp[T]) Evaluate() {
	in := Inputs[T]{
		DataIn:  c.DataIn.Read(),
		ValidIn: c.ValidIn.Read(),
		ReadyIn: c.ReadyIn.Read(),
	}

	c.lock.Lock()
	out, transfer := c.fifo.Step(in)
	occupancy := c.fifo.Len()
	c.evaluated = true

	if transfer.Wrote {
		c.written++
	}

	if transfer.Read {
		c.read++
	}
	c.lock.Unlock()

	c.drive(out)
	c.invokeTransferHooks(transfer, occupancy)
}

// Reset drives the outputs of the current state. An empty FIFO is ready and
// not valid.
func (c *Comp[T]) Reset() {
	c.lock.Lock()
	out := c.fifo.Outputs()
	c.lock.Unlock()

	c.DataOut.Initialize(out.DataOut)
	c.ValidOut.Initialize(out.ValidOut)
	c.ReadyOut.Initialize(out.ReadyOut)
}

func (c *Comp[T]) drive(out Outputs[T]) {
	c.DataOut.Write(out.DataOut)
	c.ValidOut.Write(out.ValidOut)
	c.ReadyOut.Write(out.ReadyOut)
}

func (c *Comp[T]) invokeTransferHooks(t Transfer[T], occupancy int) {
	if c.NumHooks() == 0 {
		return
	}

	detail := TransferDetail{Occupancy: occupancy}
	if c.clock != nil {
		detail.Cycle = c.clock.Cycle()
	}

	if t.Wrote {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosWrite,
			Item:   t.WroteData,
			Detail: detail,
		})
	}

	if t.Read {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosRead,
			Item:   t.ReadData,
			Detail: detail,
		})
	}
}

// Preload stores an item before the first clock edge. When the outputs are
// already connected, they are driven for the preloaded state right away, so
// a preload after Domain.Start is seen by the peers on the first edge.
func (c *Comp[T]) Preload(v T) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.evaluated {
		return errors.Errorf("fifo %s cannot be preloaded after it runs",
			c.Name())
	}

	err := c.fifo.Preload(v)
	if err != nil {
		return err
	}

	if c.DataOut.IsBound() && c.ValidOut.IsBound() && c.ReadyOut.IsBound() {
		out := c.fifo.Outputs()
		c.DataOut.Initialize(out.DataOut)
		c.ValidOut.Initialize(out.ValidOut)
		c.ReadyOut.Initialize(out.ReadyOut)
	}

	return nil
}

// Size returns the number of stored items.
func (c *Comp[T]) Size() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.fifo.Len()
}

// Capacity returns the number of slots.
func (c *Comp[T]) Capacity() int {
	return c.fifo.Cap()
}

// Items returns the stored items, oldest first.
func (c *Comp[T]) Items() []T {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.fifo.Items()
}

// NumWritten returns the number of accepted writes.
func (c *Comp[T]) NumWritten() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.written
}

// NumRead returns the number of accepted reads.
func (c *Comp[T]) NumRead() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.read
}

// Ports returns all the ports of the FIFO.
func (c *Comp[T]) Ports() []signal.Binder {
	return []signal.Binder{
		c.DataIn, c.ValidIn, c.ReadyIn,
		c.DataOut, c.ValidOut, c.ReadyOut,
	}
}

// BindInputs connects the write side of the FIFO.
func (c *Comp[T]) BindInputs(
	data *signal.Signal[T],
	valid *signal.Signal[bool],
	ready *signal.Signal[bool],
) {
	c.DataIn.Bind(data)
	c.ValidIn.Bind(valid)
	c.ReadyOut.Bind(ready)
}

// BindOutputs connects the read side of the FIFO.
func (c *Comp[T]) BindOutputs(
	data *signal.Signal[T],
	valid *signal.Signal[bool],
	ready *signal.Signal[bool],
) {
	c.DataOut.Bind(data)
	c.ValidOut.Bind(valid)
	c.ReadyIn.Bind(ready)
}

// PlugInput makes the FIFO the sink of a wire.
func (c *Comp[T]) PlugInput(w handshake.Wire[T]) {
	c.BindInputs(w.Data, w.Valid, w.Ready)
}

// PlugOutput makes the FIFO the source of a wire.
func (c *Comp[T]) PlugOutput(w handshake.Wire[T]) {
	c.BindOutputs(w.Data, w.Valid, w.Ready)
}
