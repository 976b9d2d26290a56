package timing

import (
	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/id"
)

// VTimeInSec is a point of simulated time, in seconds.
type VTimeInSec = float64

// An Event happens at a point of simulated time and is handled by exactly one
// Handler.
type Event interface {
	Time() VTimeInSec
	Handler() Handler
}

// A Handler reacts to the events scheduled for it.
type Handler interface {
	Handle(e Event) error
}

// HookPosBeforeEvent is invoked before an event is handed to its handler. The
// hook item is the event.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent is invoked after a handler returns without error.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// EventBase carries the fields shared by all events.
type EventBase struct {
	ID      string
	time    VTimeInSec
	handler Handler
}

func makeEventBase(t VTimeInSec, handler Handler) EventBase {
	return EventBase{
		ID:      id.Generate(),
		time:    t,
		handler: handler,
	}
}

// Time returns when the event happens.
func (e EventBase) Time() VTimeInSec {
	return e.time
}

// Handler returns the handler of the event.
func (e EventBase) Handler() Handler {
	return e.handler
}
