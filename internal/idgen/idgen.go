// Package idgen mints opaque, process-unique identifiers.
package idgen

import "sync/atomic"

// Counter is an incrementing source of unique ids. It is safe for
// concurrent use.
//
// The counter wraps after 2^64 calls to Next. Callers for whom reuse after
// wraparound would be a problem should use something else.
type Counter struct {
	// v holds the next value minus one so the zero Counter starts at 1.
	v atomic.Uint64
}

// New returns a counter whose first value is 1.
func New() *Counter {
	return &Counter{}
}

// Next returns the next value. Ids are opaque tokens and never order other
// memory effects, so no ordering beyond the atomic add itself is implied.
func (c *Counter) Next() uint64 {
	return c.v.Add(1)
}

// NextNonZero returns the next value, retrying once if the counter has
// wrapped onto zero. Landing on zero twice in a row is not guarded against.
func (c *Counter) NextNonZero() uint64 {
	id := c.Next()
	if id == 0 {
		id = c.Next()
	}
	return id
}

// process is the single counter shared by every id type in the process. It
// is created at init and lives until exit.
var process = New()

// Process returns the process-wide counter.
func Process() *Counter {
	return process
}
