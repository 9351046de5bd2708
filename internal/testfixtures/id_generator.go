package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator hands out sequential identifiers in the fixtures' naming
// scheme ("booking-001", "booking-002", ...), so tests can predict the
// ids a service will assign.
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   uint64
}

// NewIDGenerator constructs a generator for the given prefix. An empty
// prefix defaults to "booking".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "booking"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next)
}

// NextFunc exposes Next in the shape the services take as a dependency.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}
