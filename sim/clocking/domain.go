// Package clocking provides synchronous clock domains.
//
// All the components registered in a Domain are evaluated once per clock
// edge. During evaluation, components read the committed values of signals
// and stage new values. After every component has been evaluated, the
// domain commits all its signals at once. This snapshot, evaluate, commit
// order makes the result of a tick independent of the order in which the
// components are evaluated, including when they are evaluated concurrently.
package clocking

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/hsfifo/sim/hooking"
	"github.com/sarchlab/hsfifo/sim/signal"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// HookPosBeforeCycle triggers before the components are evaluated. The item
// is the index of the cycle that is about to run, starting from 0.
var HookPosBeforeCycle = &hooking.HookPos{Name: "BeforeCycle"}

// HookPosAfterCycle triggers after the signals are committed. The item is the
// number of completed cycles and the detail is the number of signals whose
// value changed.
var HookPosAfterCycle = &hooking.HookPos{Name: "AfterCycle"}

// A Clocked component updates its state on every clock edge.
type Clocked interface {
	Name() string

	// Evaluate reads committed signal values and stages the next values.
	Evaluate()
}

// A Latch holds a staged value that becomes visible on Commit.
type Latch interface {
	Commit() bool
}

// A Resetter drives its reset values when the domain starts.
type Resetter interface {
	Reset()
}

// Domain is a group of components that share one clock.
type Domain struct {
	*timing.TickingComponent

	lock        sync.Mutex
	components  []Clocked
	latches     []Latch
	parallelism int
	maxCycles   uint64

	cycle        atomic.Uint64
	started      atomic.Bool
	stopped      atomic.Bool
	reachedLimit atomic.Bool
}

// Register adds a component to the domain. Components cannot be added after
// the domain starts.
func (d *Domain) Register(c Clocked) {
	d.mustNotHaveStarted()

	d.lock.Lock()
	defer d.lock.Unlock()

	for _, existing := range d.components {
		if existing == c {
			log.Panicf("component %s is registered twice", c.Name())
		}
	}

	d.components = append(d.components, c)
}

// RegisterLatch adds a latch that is committed at the end of every cycle.
func (d *Domain) RegisterLatch(l Latch) {
	d.mustNotHaveStarted()

	d.lock.Lock()
	defer d.lock.Unlock()

	d.latches = append(d.latches, l)
}

// Components returns the registered components in registration order.
func (d *Domain) Components() []Clocked {
	d.lock.Lock()
	defer d.lock.Unlock()

	return append([]Clocked(nil), d.components...)
}

func (d *Domain) mustNotHaveStarted() {
	if d.started.Load() {
		log.Panicf("domain %s has already started", d.Name())
	}
}

// Reset drives the reset values of all the components. Start calls it, so it
// only needs to be called directly when the domain is stepped by hand.
func (d *Domain) Reset() {
	for _, c := range d.Components() {
		if r, ok := c.(Resetter); ok {
			r.Reset()
		}
	}
}

// Start resets the components and schedules the first clock edge.
func (d *Domain) Start() {
	if d.started.Swap(true) {
		log.Panicf("domain %s has already started", d.Name())
	}

	d.Reset()
	d.TickLater()
}

// Stop ends the simulation of the domain after the current cycle completes.
func (d *Domain) Stop() {
	d.stopped.Store(true)
}

// Stopped returns true if Stop has been called.
func (d *Domain) Stopped() bool {
	return d.stopped.Load()
}

// ReachedMaxCycles returns true if the domain stopped because it ran the
// maximum number of cycles.
func (d *Domain) ReachedMaxCycles() bool {
	return d.reachedLimit.Load()
}

// Cycle returns the number of completed cycles.
func (d *Domain) Cycle() uint64 {
	return d.cycle.Load()
}

// Tick runs one clock edge. It returns false once the domain should not
// tick anymore.
func (d *Domain) Tick() bool {
	if d.stopped.Load() {
		return false
	}

	cycle := d.cycle.Load()
	if d.NumHooks() > 0 {
		d.InvokeHook(hooking.HookCtx{
			Domain: d,
			Pos:    HookPosBeforeCycle,
			Item:   cycle,
		})
	}

	d.evaluate()
	changed := d.commit()
	d.cycle.Store(cycle + 1)

	if d.NumHooks() > 0 {
		d.InvokeHook(hooking.HookCtx{
			Domain: d,
			Pos:    HookPosAfterCycle,
			Item:   cycle + 1,
			Detail: changed,
		})
	}

	if d.maxCycles > 0 && cycle+1 >= d.maxCycles {
		d.reachedLimit.Store(true)
		return false
	}

	return !d.stopped.Load()
}

func (d *Domain) evaluate() {
	components := d.Components()

	if d.parallelism <= 1 || len(components) <= 1 {
		for _, c := range components {
			c.Evaluate()
		}

		return
	}

	d.evaluateInParallel(components)
}

func (d *Domain) evaluateInParallel(components []Clocked) {
	numWorkers := d.parallelism
	if numWorkers > len(components) {
		numWorkers = len(components)
	}

	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := w; i < len(components); i += numWorkers {
				components[i].Evaluate()
			}
		}(w)
	}

	wg.Wait()
}

func (d *Domain) commit() int {
	d.lock.Lock()
	latches := d.latches
	d.lock.Unlock()

	changed := 0

	for _, l := range latches {
		if l.Commit() {
			changed++
		}
	}

	return changed
}

// NewSignal creates a signal and registers it to be committed by the domain.
func NewSignal[T comparable](
	d *Domain,
	name string,
	initial T,
) *signal.Signal[T] {
	s := signal.New(name, initial)
	d.RegisterLatch(s)

	return s
}
