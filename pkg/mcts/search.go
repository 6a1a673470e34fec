package mcts

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Use when started multi-threaded search and want it to synchronize with this thread
func (mcts *MCTS[S, T, P, E]) Synchronize() {
	mcts.wg.Wait()
}

// Run the search on Limits.NThreads goroutines and wait for it, returns the best root move
func (mcts *MCTS[S, T, P, E]) Search() T {
	mcts.SearchMultiThreaded()
	mcts.Synchronize()
	return mcts.RootMove()
}

// Run multi-threaded search, to wait for the result, call Synchronize
func (mcts *MCTS[S, T, P, E]) SearchMultiThreaded() {
	mcts.setupSearch()
	threads := max(1, mcts.Limiter.Limits().NThreads)

	mcts.wg.Add(1)
	go func() {
		defer mcts.wg.Done()

		var workers sync.WaitGroup
		for id := 1; id < threads; id++ {
			workers.Add(1)
			go func() {
				defer workers.Done()
				mcts.search(id)
			}()
		}

		mcts.search(mainThreadId)
		workers.Wait()
		mcts.finishSearch()
	}()
}

// This function only sets the limits, resets the counters, and the stop flag
// doesn't actually start the search
func (mcts *MCTS[S, T, P, E]) setupSearch() {
	mcts.Limiter.Reset()
	mcts.cps.Store(0)
	mcts.cycles.Store(0)
}

// Called once, after every search thread returned
func (mcts *MCTS[S, T, P, E]) finishSearch() {
	mcts.Limiter.EvaluateStopReason(mcts.Size(), uint32(mcts.MaxDepth()))
	mcts.cps.Store(cyclesPerSecond(uint32(mcts.Cycles()), mcts.Limiter.Elapsed()))
	mcts.Limiter.SetStop(true)

	log.Debug().
		Int("cycles", mcts.Cycles()).
		Uint32("cps", mcts.Cps()).
		Uint32("size", mcts.Size()).
		Int("maxdepth", mcts.MaxDepth()).
		Int32("collisions", mcts.CollisionCount()).
		Stringer("reason", mcts.StopReason()).
		Msg("mcts search finished")

	mcts.invokeListener(mcts.listener.onStop)
}

// Single search thread, runs playouts until a limit is reached.
// threadId must be unique, 0 meaning it's the main search thread which calls the listener
func (mcts *MCTS[S, T, P, E]) search(threadId int) {
	threadRand := rand.New(rand.NewSource(uint64(SeedGeneratorFn() + int64(threadId))))

	if mcts.Root.Terminal() || len(mcts.Root.ChildNodes()) == 0 {
		return
	}

	path := make([]*NodeBase[T, E], 0, 32)
	movers := make([]P, 0, 32)
	lastDepth, lastCycle := 0, 0

	for mcts.Limiter.Ok(mcts.Size(), uint32(mcts.MaxDepth())) && mcts.Limiter.Claim() {
		path, movers = mcts.playout(threadRand, path[:0], movers[:0])

		// Increment cycle count and store the cps
		cycles := mcts.cycles.Add(1)
		mcts.cps.Store(cyclesPerSecond(cycles, mcts.Limiter.Elapsed()))

		if threadId != mainThreadId {
			continue
		}

		if depth := mcts.MaxDepth(); depth > lastDepth {
			lastDepth = depth
			mcts.invokeListener(mcts.listener.onDepth)
		}
		if mcts.listener.onCycle != nil && int(cycles)-lastCycle >= mcts.listener.nCycles {
			lastCycle = int(cycles)
			mcts.invokeListener(mcts.listener.onCycle)
		}
	}
}

// Single playout: selection down to a leaf, its evaluation and the backpropagation
func (mcts *MCTS[S, T, P, E]) playout(r *rand.Rand, path []*NodeBase[T, E], movers []P) ([]*NodeBase[T, E], []P) {
	node := mcts.Root
	state := mcts.rootState
	node.visits.Add(1)
	path = append(path, node)

	for node.Expanded() && !node.Terminal() {
		child := mcts.policy.Select(node, r)
		movers = append(movers, state.CurrentPlayer())
		state = state.MakeMove(child.Move)

		child.applyVirtualLoss(mcts.virtualLoss)
		node = child
		path = append(path, node)
	}

	eval := mcts.expand(node, state)
	mcts.backpropagate(path, movers, eval)
	mcts.updateMaxDepth(int32(len(path) - 1))
	return path, movers
}

func (mcts *MCTS[S, T, P, E]) updateMaxDepth(depth int32) {
	for {
		current := mcts.maxdepth.Load()
		if depth <= current || mcts.maxdepth.CompareAndSwap(current, depth) {
			return
		}
	}
}

// Returns the evaluation of the node's state, expanding the node if it's
// the first thread to reach it
func (mcts *MCTS[S, T, P, E]) expand(node *NodeBase[T, E], state S) E {
	if eval, ok := node.Evaluation(); ok {
		return eval
	}

	// Memory is exhausted, evaluate without growing the tree
	if !mcts.Limiter.Expand() {
		_, eval := mcts.evaluate(state, state.AvailableMoves())
		return eval
	}

	if node.CanExpand() {
		var moves []T
		terminal := state.IsTerminal()
		if !terminal {
			moves = state.AvailableMoves()
		}

		priors, eval := mcts.evaluate(state, moves)
		children := make([]NodeBase[T, E], len(moves))
		for i := range moves {
			var prior MoveEvaluation
			if i < len(priors) {
				prior = priors[i]
			}
			children[i] = NewBaseNode(node, moves[i], prior)
		}

		node.FinishExpanding(eval, children, terminal || len(moves) == 0)
		mcts.size.Add(uint32(len(moves)))
		return eval
	}

	// Currently expanded by another thread
	mcts.collisionCount.Add(1)
	for node.Expanding() {
		runtime.Gosched()
	}

	eval, _ := node.Evaluation()
	return eval
}

// Evaluation of a state, looked up in the transposition table first
func (mcts *MCTS[S, T, P, E]) evaluate(state S, moves []T) ([]MoveEvaluation, E) {
	hash := state.Hash()
	if priors, existing, ok := mcts.table.Lookup(hash, state); ok {
		return priors, mcts.evaluator.EvaluateExistingState(state, existing)
	}

	priors, eval := mcts.evaluator.EvaluateNewState(state, moves)
	mcts.table.Insert(hash, state, priors, eval)
	return priors, eval
}

func cyclesPerSecond(cycles, elapsedMs uint32) uint32 {
	return uint32(uint64(cycles) * 1000 / uint64(max(1, elapsedMs)))
}
