package search

// Fail-soft alpha-beta search, choosing the same move as MiniMax.
//
// The window is kept from the point of view of the node's mover and flipped only
// when the child's mover differs, so games where a player moves twice in a row
// are handled without negating the player. This relies on the evaluator being
// zero-sum for every evaluation, terminal ones included.
//
// The first child of every node is searched alone, its bound then narrows the
// window of the siblings, which are spread over the worker pool.
func (s *Searcher[N, M, P, E]) AlphaBeta(root N, depth int) (Result[M, E], bool) {
	moves, ok := s.rootMoves(root, depth)
	if !ok {
		return Result[M, E]{}, false
	}

	s.counters.reset()
	s.counters.nodes.Add(1)

	best, eval := s.alphaBetaChildren(root, moves, 1, depth, negInf, posInf)

	s.counters.finish()
	s.logDone("alphabeta", depth, s.score(eval, root.CurrentPlayer()))

	return Result[M, E]{Move: moves[best], Evaluation: eval}, true
}

func (s *Searcher[N, M, P, E]) alphaBeta(node N, ply, depth int, alpha, beta float64) E {
	s.counters.nodes.Add(1)

	if ply >= depth {
		return s.leaf(node, ply)
	}
	if _, over := node.Terminal(); over {
		return s.leaf(node, ply)
	}

	_, eval := s.alphaBetaChildren(node, movesOf(node, ply), ply+1, depth, alpha, beta)
	return eval
}

// Search a child with the parent's window translated to the child's mover
func (s *Searcher[N, M, P, E]) alphaBetaChild(parent P, child N, ply, depth int, alpha, beta float64) E {
	if child.CurrentPlayer() != parent {
		alpha, beta = -beta, -alpha
	}
	return s.alphaBeta(child, ply, depth, alpha, beta)
}

// Returns the index of the chosen move and its evaluation
func (s *Searcher[N, M, P, E]) alphaBetaChildren(node N, moves []M, ply, depth int, alpha, beta float64) (int, E) {
	player := node.CurrentPlayer()
	evals := make([]E, len(moves))

	evals[0] = s.alphaBetaChild(player, node.MakeMove(moves[0]), ply, depth, alpha, beta)
	best, bestScore := 0, s.score(evals[0], player)
	alpha = max(alpha, bestScore)
	if alpha >= beta || len(moves) == 1 {
		return best, evals[0]
	}

	// Siblings searched on this goroutine may tighten the window for the next ones,
	// after a cutoff there's no need to start the rest.
	localAlpha := alpha
	searched := len(moves)
	f := s.pool.fork()
	for i := 1; i < len(moves); i++ {
		if localAlpha >= beta {
			searched = i
			break
		}
		windowAlpha := localAlpha
		inline := f.run(func() {
			evals[i] = s.alphaBetaChild(player, node.MakeMove(moves[i]), ply, depth, windowAlpha, beta)
		})
		if inline {
			localAlpha = max(localAlpha, s.score(evals[i], player))
		}
	}
	f.wait()

	for i := 1; i < searched; i++ {
		if sc := s.score(evals[i], player); better(sc, bestScore) {
			best, bestScore = i, sc
			alpha = max(alpha, sc)
			if alpha >= beta {
				break
			}
		}
	}

	return best, evals[best]
}
