package mcts

import (
	"math"
	"strings"
	"sync/atomic"
)

type StopReason int

const (
	StopNone      StopReason = 0
	StopInterrupt StopReason = 1  // Stopped by user, by calling .SetStop(true)
	StopNodes     StopReason = 2  // Node limit reached
	StopMemory    StopReason = 4  // Memory limit reached
	StopDepth     StopReason = 8  // Depth limit reached
	StopCycles    StopReason = 16 // Cycle limit reached
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopNodes, "Nodes"},
		{StopMemory, "Memory"},
		{StopDepth, "Depth"},
		{StopCycles, "Cycles"},
	}

	names := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			names = append(names, r.name)
		}
	}

	return strings.Join(names, "|")
}

type LimiterLike interface {
	// Set the limits
	SetLimits(*Limits)
	// Get the limits
	Limits() *Limits
	// Get elapsed time in ms (from the last 'Reset' call)
	Elapsed() uint32
	// Set the stop signal, will cause to exit search if set to true
	SetStop(bool)
	// Get the stop signal
	Stop() bool
	// Reset the limiter's flags and counters, called on search setup
	Reset()
	// Whether the tree can grow
	Expand() bool
	// Whether the search can continue, called in the main search loop
	Ok(size, depth uint32) bool
	// Reserve the next playout, false once the cycle limit is used up
	Claim() bool
	// Number of claimed playouts since the last Reset
	Claimed() uint32
	// Get the reason why the search was stopped, valid after search ends
	StopReason() StopReason
	// Evaluate stop reason based on current state, and set it internally,
	// called once after all the search threads finished
	EvaluateStopReason(size, depth uint32)
}

type Limiter struct {
	limits   *Limits
	Timer    *_Timer
	nodeSize uint32
	maxSize  uint32
	expand   atomic.Bool
	stop     atomic.Bool
	claimed  atomic.Uint32
	reason   StopReason
}

func NewLimiter(nodesize uint32) *Limiter {
	limiter := &Limiter{
		limits:   DefaultLimits(),
		Timer:    _NewTimer(),
		nodeSize: max(1, nodesize),
		maxSize:  math.MaxUint32,
	}

	limiter.expand.Store(true)
	return limiter
}

func (l *Limiter) Reset() {
	l.Timer.Reset()
	l.stop.Store(false)
	l.expand.Store(true)
	l.claimed.Store(0)
	l.reason = StopNone

	// Calculate 'nodes' based on memory
	if !l.limits.InfiniteSize() {
		l.maxSize = uint32(min(l.limits.ByteSize/int64(l.nodeSize), math.MaxUint32))
	} else {
		l.maxSize = math.MaxUint32
	}
}

// Limits reached at the moment, as a StopReason mask
func (l *Limiter) LimitMask(size, depth uint32) StopReason {
	reason := StopNone
	if l.stop.Load() {
		reason |= StopInterrupt
	}

	// If infinite, only the stop signal counts
	if l.limits.Infinite {
		return reason
	}

	if l.limits.Nodes <= size {
		reason |= StopNodes
	}
	if l.limits.Depth <= int(depth) {
		reason |= StopDepth
	}

	// Memory exhausted: stop growing the tree, but keep searching
	// if there's a cycle limit to wait for
	if l.maxSize <= size {
		if l.limits.Cycles != DefaultCyclesLimit {
			l.expand.Store(false)
		} else {
			reason |= StopMemory
		}
	}

	return reason
}

func (l *Limiter) EvaluateStopReason(size, depth uint32) {
	reason := l.LimitMask(size, depth)
	if !l.limits.Infinite && l.claimed.Load() > l.limits.Cycles {
		reason |= StopCycles
	}
	if !l.Expand() {
		reason |= StopMemory
	}
	l.reason = reason
}

func (l *Limiter) StopReason() StopReason {
	return l.reason
}

func (l *Limiter) SetStop(v bool) {
	l.stop.Store(v)
}

func (l *Limiter) Stop() bool {
	return l.stop.Load()
}

func (l *Limiter) SetLimits(limits *Limits) {
	l.limits = limits
}

func (l *Limiter) Limits() *Limits {
	return l.limits
}

func (l *Limiter) Elapsed() uint32 {
	return uint32(l.Timer.Deltatime())
}

func (l *Limiter) Expand() bool {
	return l.expand.Load()
}

func (l *Limiter) Ok(size, depth uint32) bool {
	return l.LimitMask(size, depth) == StopNone
}

func (l *Limiter) Claim() bool {
	n := l.claimed.Add(1)
	return l.limits.Infinite || n <= l.limits.Cycles
}

func (l *Limiter) Claimed() uint32 {
	return min(l.claimed.Load(), l.limits.Cycles)
}
