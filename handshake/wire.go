// Package handshake implements the valid/ready handshake protocol.
//
// A transfer happens on a tick if and only if the committed valid signal
// driven by the source and the committed ready signal driven by the sink are
// both true on that tick. Both sides can decide whether a transfer happened
// from committed values only, so they never need to observe each other's
// staged values.
package handshake

import (
	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
)

// A Wire bundles the three signals of a handshake channel. The source drives
// Data and Valid; the sink drives Ready.
type Wire[T comparable] struct {
	Data  *signal.Signal[T]
	Valid *signal.Signal[bool]
	Ready *signal.Signal[bool]
}

// NewWire creates the signals of a handshake channel and registers them with
// the clock domain. Valid and Ready start deasserted.
func NewWire[T comparable](d *clocking.Domain, name string) Wire[T] {
	var zero T

	return Wire[T]{
		Data:  clocking.NewSignal(d, naming.BuildName(name, "Data"), zero),
		Valid: clocking.NewSignal(d, naming.BuildName(name, "Valid"), false),
		Ready: clocking.NewSignal(d, naming.BuildName(name, "Ready"), false),
	}
}

// Transferring returns true if the committed signals show a transfer on the
// current tick.
func (w Wire[T]) Transferring() bool {
	return w.Valid.Read() && w.Ready.Read()
}
