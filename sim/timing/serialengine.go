package timing

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/sarchlab/hsfifo/sim/hooking"
)

// A SerialEngine handles one event at a time. Events of the same time are
// handled in the order they were scheduled.
type SerialEngine struct {
	hooking.HookableBase

	queue EventQueue

	nowLock sync.RWMutex
	now     VTimeInSec

	// gate is held while an event is handled, and by a paused engine.
	gate      sync.Mutex
	pauseLock sync.Mutex
	paused    bool

	running     sync.Mutex
	endHandlers []SimulationEndHandler
}

// NewSerialEngine creates an engine at time 0.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{queue: NewEventQueue()}
}

// Schedule adds an event. Scheduling an event before the current time panics.
func (e *SerialEngine) Schedule(evt Event) {
	now := e.Now()
	if evt.Time() < now {
		log.Panicf("cannot schedule %T at %.10f, the time is %.10f",
			evt, evt.Time(), now)
	}

	e.queue.Push(evt)
}

// Now returns the time of the event being handled, or of the last one.
func (e *SerialEngine) Now() VTimeInSec {
	e.nowLock.RLock()
	defer e.nowLock.RUnlock()

	return e.now
}

func (e *SerialEngine) advanceTo(t VTimeInSec) {
	e.nowLock.Lock()
	e.now = t
	e.nowLock.Unlock()
}

// Run handles the events until the queue is empty. A handler error stops the
// run and is returned with the event that caused it.
func (e *SerialEngine) Run() error {
	e.running.Lock()
	defer e.running.Unlock()

	for e.queue.Len() > 0 {
		err := e.handleNext()
		if err != nil {
			return err
		}
	}

	return nil
}

func (e *SerialEngine) handleNext() error {
	e.gate.Lock()
	defer e.gate.Unlock()

	evt := e.queue.Pop()
	e.advanceTo(evt.Time())

	ctx := hooking.HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
	e.InvokeHook(ctx)

	err := evt.Handler().Handle(evt)
	if err != nil {
		return errors.Wrapf(err, "handling %T at %.10f", evt, evt.Time())
	}

	ctx.Pos = HookPosAfterEvent
	e.InvokeHook(ctx)

	return nil
}

// Pause waits for the current event to finish and keeps the engine from
// handling the next one until Continue is called.
func (e *SerialEngine) Pause() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if !e.paused {
		e.gate.Lock()
		e.paused = true
	}
}

// Continue releases a paused engine.
func (e *SerialEngine) Continue() {
	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if e.paused {
		e.paused = false
		e.gate.Unlock()
	}
}

// RegisterSimulationEndHandler adds a handler that Finished notifies.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.endHandlers = append(e.endHandlers, handler)
}

// Finished notifies the end handlers with the current time.
func (e *SerialEngine) Finished() {
	now := e.Now()
	for _, h := range e.endHandlers {
		h.Handle(now)
	}
}
