package search

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// Fixed-depth adversarial searcher, binding one game node type to one evaluator.
//
// A Searcher may be reused for many searches, but not for concurrent ones,
// the stats are reset on every call.
type Searcher[N GameNode[N, M, P], M any, P comparable, E any] struct {
	evaluator Evaluator[N, P, E]
	workers   int
	pool      *pool
	counters  counters
}

func New[N GameNode[N, M, P], M any, P comparable, E any](evaluator Evaluator[N, P, E], opts ...Option) *Searcher[N, M, P, E] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Searcher[N, M, P, E]{
		evaluator: evaluator,
		workers:   o.workers,
		pool:      newPool(o.workers),
	}
}

func (s *Searcher[N, M, P, E]) Evaluator() Evaluator[N, P, E] {
	return s.evaluator
}

func (s *Searcher[N, M, P, E]) Workers() int {
	return s.workers
}

// Counters of the last finished search
func (s *Searcher[N, M, P, E]) Stats() Stats {
	return s.counters.snapshot()
}

// Evaluate a leaf
func (s *Searcher[N, M, P, E]) leaf(node N, ply int) E {
	s.counters.leaves.Add(1)
	return s.evaluator.Evaluate(node, ply)
}

func (s *Searcher[N, M, P, E]) score(eval E, player P) float64 {
	return mustScore(s.evaluator.Interpret(eval, player))
}

// Legal moves of an inner node, which must have at least one
func movesOf[N GameNode[N, M, P], M any, P comparable](node N, ply int) []M {
	moves := node.LegalMoves()
	if len(moves) == 0 {
		panic(fmt.Sprintf("search: non-terminal node at ply %d has no legal moves", ply))
	}
	return moves
}

// Common root handling: depth 0 and finished games have no move to recommend
func (s *Searcher[N, M, P, E]) rootMoves(root N, depth int) ([]M, bool) {
	if depth <= 0 {
		return nil, false
	}
	if _, over := root.Terminal(); over {
		return nil, false
	}
	return movesOf(root, 0), true
}

func (s *Searcher[N, M, P, E]) logDone(algorithm string, depth int, score float64) {
	st := s.Stats()
	log.Debug().
		Str("algorithm", algorithm).
		Int("depth", depth).
		Int("workers", s.workers).
		Int64("nodes", st.Nodes).
		Int64("leaves", st.Leaves).
		Float64("score", score).
		Dur("elapsed", st.Elapsed).
		Msg("search finished")
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)
