package mcts

import "sync/atomic"

// Cache of evaluated states, shared by all search threads
type TranspositionTable[S any, E any] interface {
	Lookup(hash uint64, state S) ([]MoveEvaluation, E, bool)
	Insert(hash uint64, state S, priors []MoveEvaluation, eval E)
	Clear()
}

type equaler[S any] interface {
	Equal(S) bool
}

type tableEntry[S any, E any] struct {
	hash   uint64
	state  S
	priors []MoveEvaluation
	eval   E
}

// Fixed size, lock-free table. Each hash maps to exactly one slot and a new
// entry simply replaces the old one, so lookups may miss states that were
// inserted earlier. A hit is confirmed with the state's Equal method.
type ApproxTable[S equaler[S], E any] struct {
	slots  []atomic.Pointer[tableEntry[S, E]]
	hits   atomic.Int64
	misses atomic.Int64
}

func NewApproxTable[S equaler[S], E any](capacity int) *ApproxTable[S, E] {
	return &ApproxTable[S, E]{
		slots: make([]atomic.Pointer[tableEntry[S, E]], max(1, capacity)),
	}
}

func (t *ApproxTable[S, E]) slot(hash uint64) *atomic.Pointer[tableEntry[S, E]] {
	return &t.slots[hash%uint64(len(t.slots))]
}

func (t *ApproxTable[S, E]) Lookup(hash uint64, state S) ([]MoveEvaluation, E, bool) {
	if entry := t.slot(hash).Load(); entry != nil && entry.hash == hash && entry.state.Equal(state) {
		t.hits.Add(1)
		return entry.priors, entry.eval, true
	}
	t.misses.Add(1)
	var none E
	return nil, none, false
}

func (t *ApproxTable[S, E]) Insert(hash uint64, state S, priors []MoveEvaluation, eval E) {
	t.slot(hash).Store(&tableEntry[S, E]{hash: hash, state: state, priors: priors, eval: eval})
}

func (t *ApproxTable[S, E]) Clear() {
	for i := range t.slots {
		t.slots[i].Store(nil)
	}
	t.hits.Store(0)
	t.misses.Store(0)
}

func (t *ApproxTable[S, E]) Capacity() int {
	return len(t.slots)
}

func (t *ApproxTable[S, E]) Hits() int64 {
	return t.hits.Load()
}

func (t *ApproxTable[S, E]) Misses() int64 {
	return t.misses.Load()
}

// Table that never remembers anything
type NoTable[S any, E any] struct{}

func (NoTable[S, E]) Lookup(uint64, S) ([]MoveEvaluation, E, bool) {
	var none E
	return nil, none, false
}

func (NoTable[S, E]) Insert(uint64, S, []MoveEvaluation, E) {}
func (NoTable[S, E]) Clear()                                {}
