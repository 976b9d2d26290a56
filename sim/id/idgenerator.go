// Package id provides the ID generators used across a simulation.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	generatorMutex        sync.Mutex
	generatorInstantiated atomic.Bool
	generator             IDGenerator
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewIDGenerator returns a standalone sequential ID generator.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// UseSequentialIDGenerator configures the global ID generator to generate IDs
// in sequence. Sequential IDs are deterministic across runs.
func UseSequentialIDGenerator() {
	setGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator configures the global ID generator to generate IDs
// that are unique without coordination. The IDs generated are not
// deterministic anymore.
func UseParallelIDGenerator() {
	setGenerator(parallelIDGenerator{})
}

func setGenerator(g IDGenerator) {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if generatorInstantiated.Load() {
		log.Panic("cannot change id generator type after using it")
	}

	generator = g
	generatorInstantiated.Store(true)
}

// Generate returns a new ID from the global ID generator.
func Generate() string {
	return getGenerator().Generate()
}

func getGenerator() IDGenerator {
	if generatorInstantiated.Load() {
		return generator
	}

	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if !generatorInstantiated.Load() {
		generator = &sequentialIDGenerator{}
		generatorInstantiated.Store(true)
	}

	return generator
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)

	return strconv.FormatUint(idNumber, 10)
}

type parallelIDGenerator struct{}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
