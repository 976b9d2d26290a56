// Package timing provides the discrete event engine that moves simulated
// time forward. Clock domains schedule one tick event per cycle on it.
package timing

import "github.com/sarchlab/hsfifo/sim/hooking"

// TimeTeller tells the current simulated time.
type TimeTeller interface {
	Now() VTimeInSec
}

// EventScheduler accepts events that happen at or after the current time.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// A SimulationEndHandler is notified by Engine.Finished.
type SimulationEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine handles the scheduled events in time order.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run handles events until none is left or a handler fails.
	Run() error

	// Pause blocks the engine before its next event.
	Pause()

	// Continue releases a paused engine.
	Continue()

	// RegisterSimulationEndHandler adds a handler that Finished notifies.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished notifies the simulation end handlers.
	Finished()
}
