// Package numbering generates human-readable order and bill numbers of the
// form PREFIX-YYYYMMDDHHmmss-NNN.
package numbering

import (
	"fmt"
	"sync"
	"time"
)

const stampLayout = "20060102150405"

// Generator hands out numbers that are unique within one process. NNN counts
// up within the same UTC second and restarts at 001 when the second changes.
// Numbers from different processes can still collide, so callers rely on a
// unique index and retry.
type Generator struct {
	prefix string
	now    func() time.Time

	mu    sync.Mutex
	stamp string
	seq   int
}

// New returns a Generator using prefix and the wall clock.
func New(prefix string) *Generator {
	return NewWithClock(prefix, time.Now)
}

// NewWithClock returns a Generator reading time from now.
func NewWithClock(prefix string, now func() time.Time) *Generator {
	return &Generator{prefix: prefix, now: now}
}

// Next returns the next number.
func (g *Generator) Next() string {
	stamp := g.now().UTC().Format(stampLayout)

	g.mu.Lock()
	if stamp != g.stamp {
		g.stamp = stamp
		g.seq = 0
	}
	g.seq++
	seq := g.seq
	g.mu.Unlock()

	return fmt.Sprintf("%s-%s-%03d", g.prefix, stamp, seq)
}
