package timing

import (
	"sync"

	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/naming"
)

// A TickEvent triggers one cycle of its handler.
type TickEvent struct {
	EventBase
}

// MakeTickEvent creates a tick of the handler at the given time.
func MakeTickEvent(handler Handler, t VTimeInSec) TickEvent {
	return TickEvent{EventBase: makeEventBase(t, handler)}
}

// A Ticker advances by one cycle. It returns false when it has nothing left
// to do, so that no more ticks are scheduled for it.
type Ticker interface {
	Tick() bool
}

// TickScheduler schedules at most one tick event per cycle for a handler.
type TickScheduler struct {
	Freq   Freq
	Engine Engine

	lock      sync.Mutex
	handler   Handler
	scheduled VTimeInSec
}

// NewTickScheduler creates a scheduler of the handler's ticks.
func NewTickScheduler(
	handler Handler,
	engine Engine,
	freq Freq,
) *TickScheduler {
	return &TickScheduler{
		Freq:      freq,
		Engine:    engine,
		handler:   handler,
		scheduled: -1,
	}
}

// TickNow schedules a tick in the current cycle.
func (t *TickScheduler) TickNow() {
	t.tickAt(t.Freq.ThisTick(t.Now()))
}

// TickLater schedules a tick in the next cycle.
func (t *TickScheduler) TickLater() {
	t.tickAt(t.Freq.NextTick(t.Now()))
}

func (t *TickScheduler) tickAt(when VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.scheduled >= when {
		return
	}

	t.scheduled = when
	t.Engine.Schedule(MakeTickEvent(t.handler, when))
}

// Now returns the time of the engine.
func (t *TickScheduler) Now() VTimeInSec {
	return t.Engine.Now()
}

// TickingComponent handles its own tick events. It keeps ticking every cycle
// as long as its Ticker makes progress.
type TickingComponent struct {
	naming.NamedBase
	hooking.HookableBase
	*TickScheduler

	ticker Ticker
}

// NewTickingComponent creates a ticking component that calls the ticker on
// every cycle of the frequency.
func NewTickingComponent(
	name string,
	engine Engine,
	freq Freq,
	ticker Ticker,
) *TickingComponent {
	tc := &TickingComponent{
		NamedBase: naming.MakeNamedBase(name),
		ticker:    ticker,
	}
	tc.TickScheduler = NewTickScheduler(tc, engine, freq)

	return tc
}

// Handle runs one cycle.
func (c *TickingComponent) Handle(_ Event) error {
	if c.ticker.Tick() {
		c.TickLater()
	}

	return nil
}
