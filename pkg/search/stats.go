package search

import (
	"sync/atomic"
	"time"
)

// Counters of the last search
type Stats struct {
	// Visited nodes, including the leaves
	Nodes int64
	// Number of evaluator calls
	Leaves  int64
	Elapsed time.Duration
}

type counters struct {
	nodes  atomic.Int64
	leaves atomic.Int64
	start  time.Time
	took   atomic.Int64
}

func (c *counters) reset() {
	c.nodes.Store(0)
	c.leaves.Store(0)
	c.took.Store(0)
	c.start = time.Now()
}

func (c *counters) finish() {
	c.took.Store(int64(time.Since(c.start)))
}

func (c *counters) snapshot() Stats {
	return Stats{
		Nodes:   c.nodes.Load(),
		Leaves:  c.leaves.Load(),
		Elapsed: time.Duration(c.took.Load()),
	}
}
