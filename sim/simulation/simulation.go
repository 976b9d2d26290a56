// Package simulation keeps track of the elements that make up a simulation.
package simulation

import (
	"log"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/signal"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// ErrUnboundPorts is returned by Elaborate when some ports are not bound to
// any signal.
var ErrUnboundPorts = errors.New("unbound ports")

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	engine        timing.Engine
	components    []naming.Named
	compNameIndex map[string]int
}

// NewSimulation creates a new simulation.
func NewSimulation() *Simulation {
	return &Simulation{
		compNameIndex: make(map[string]int),
	}
}

// RegisterEngine registers the engine used in the simulation.
func (s *Simulation) RegisterEngine(e timing.Engine) {
	s.engine = e
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() timing.Engine {
	return s.engine
}

// RegisterComponent registers a component with the simulation.
func (s *Simulation) RegisterComponent(c naming.Named) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		log.Panicf("component %s already registered", compName)
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) naming.Named {
	index, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[index]
}

// Components returns all the registered components in registration order.
func (s *Simulation) Components() []naming.Named {
	return append([]naming.Named(nil), s.components...)
}

// Elaborate checks that the simulation is ready to run. Every port of every
// registered component must be bound to a signal.
func (s *Simulation) Elaborate() error {
	var unbound []string

	for _, c := range s.components {
		owner, ok := c.(signal.PortOwner)
		if !ok {
			continue
		}

		for _, p := range owner.Ports() {
			if !p.IsBound() {
				unbound = append(unbound, p.Name())
			}
		}
	}

	if len(unbound) == 0 {
		return nil
	}

	sort.Strings(unbound)

	return errors.Wrap(ErrUnboundPorts, strings.Join(unbound, ", "))
}
