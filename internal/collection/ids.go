package collection

import (
	"sync"
	"time"
)

// IDGenerator issues record ids from the wall clock in milliseconds. Ids
// strictly increase: two calls within one millisecond, or after the clock
// steps back, still get distinct ids. One generator is shared by every
// repository of a shelf so ids are unique across kinds too.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator returns a generator reading time.Now.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Observe raises the floor so later ids are greater than id.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id > g.last {
		g.last = id
	}
}

// Next returns a fresh id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
