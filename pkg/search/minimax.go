package search

// Plain minimax: every node reinterprets its children's evaluations for its own
// mover and passes the best one up unchanged. Ties are broken in favour of the
// earliest move.
//
// Returns false if depth is 0 or the root is already finished.
func (s *Searcher[N, M, P, E]) MiniMax(root N, depth int) (Result[M, E], bool) {
	moves, ok := s.rootMoves(root, depth)
	if !ok {
		return Result[M, E]{}, false
	}

	s.counters.reset()
	s.counters.nodes.Add(1)

	evals := s.expand(root, moves, 1, depth)
	best := s.pick(root.CurrentPlayer(), evals)

	s.counters.finish()
	s.logDone("minimax", depth, s.score(evals[best], root.CurrentPlayer()))

	return Result[M, E]{Move: moves[best], Evaluation: evals[best]}, true
}

// Evaluation of 'node' at the given ply
func (s *Searcher[N, M, P, E]) minimax(node N, ply, depth int) E {
	s.counters.nodes.Add(1)

	if ply >= depth {
		return s.leaf(node, ply)
	}
	if _, over := node.Terminal(); over {
		return s.leaf(node, ply)
	}

	evals := s.expand(node, movesOf(node, ply), ply+1, depth)
	return evals[s.pick(node.CurrentPlayer(), evals)]
}

// Evaluate all children of 'node', possibly in parallel. Results are kept in move order.
func (s *Searcher[N, M, P, E]) expand(node N, moves []M, ply, depth int) []E {
	evals := make([]E, len(moves))
	f := s.pool.fork()
	for i := range moves {
		f.run(func() {
			evals[i] = s.minimax(node.MakeMove(moves[i]), ply, depth)
		})
	}
	f.wait()
	return evals
}

// Index of the first evaluation with the highest score for 'player'
func (s *Searcher[N, M, P, E]) pick(player P, evals []E) int {
	best := 0
	bestScore := s.score(evals[0], player)
	for i := 1; i < len(evals); i++ {
		if sc := s.score(evals[i], player); better(sc, bestScore) {
			best, bestScore = i, sc
		}
	}
	return best
}
