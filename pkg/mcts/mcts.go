package mcts

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"
)

type TreeStats struct {
	maxdepth atomic.Int32
	cps      atomic.Uint32
	cycles   atomic.Uint32
}

// Evaluator-driven, tree parallel Monte-Carlo tree search.
//
// Leaves are not played out randomly: a new node is scored once by the Evaluator,
// and that evaluation is backed up through the path, interpreted for the player
// who chose each edge. All threads share one tree, virtual loss keeps them apart.
type MCTS[S GameState[S, T, P], T MoveLike, P comparable, E any] struct {
	TreeStats
	listener       *StatsListener[T]
	Limiter        LimiterLike
	policy         SelectionPolicy[T, E]
	evaluator      Evaluator[S, T, P, E]
	table          TranspositionTable[S, E]
	virtualLoss    float64
	Root           *NodeBase[T, E]
	rootState      S
	size           atomic.Uint32
	wg             sync.WaitGroup
	collisionCount atomic.Int32
}

// Create new tree rooted at 'state', the root is expanded right away.
// 'table' may be nil, then no transpositions are detected.
func NewMCTS[S GameState[S, T, P], T MoveLike, P comparable, E any](
	state S,
	evaluator Evaluator[S, T, P, E],
	policy SelectionPolicy[T, E],
	table TranspositionTable[S, E],
	virtualLoss float64,
) *MCTS[S, T, P, E] {
	if table == nil {
		table = NoTable[S, E]{}
	}

	mcts := &MCTS[S, T, P, E]{
		listener:    &StatsListener[T]{nCycles: 1},
		Limiter:     LimiterLike(NewLimiter(uint32(unsafe.Sizeof(NodeBase[T, E]{})))),
		policy:      policy,
		evaluator:   evaluator,
		table:       table,
		virtualLoss: virtualLoss,
	}

	// Not searching yet
	mcts.Limiter.SetStop(true)
	mcts.Reset(state)
	return mcts
}

func (mcts *MCTS[S, T, P, E]) invokeListener(f ListenerFunc[T]) {
	if f != nil {
		f(toListenerStats(mcts))
	}
}

// The number of times a node was chosen, but it was already being expanded.
// Resulting in a 'waiting' state of the search thread
func (mcts *MCTS[S, T, P, E]) CollisionCount() int32 {
	return mcts.collisionCount.Load()
}

// Number of all collisions in the tree divided by the number of all cycles,
// for more info see CollisionCount
func (mcts *MCTS[S, T, P, E]) CollisionFactor() float64 {
	return float64(mcts.collisionCount.Load()) / float64(max(1, mcts.Cycles()))
}

func (mcts *MCTS[S, T, P, E]) ResetListener() {
	mcts.listener.OnCycle(nil).OnDepth(nil).OnStop(nil)
}

func (mcts *MCTS[S, T, P, E]) StatsListener() *StatsListener[T] {
	return mcts.listener
}

func (mcts *MCTS[S, T, P, E]) SetListener(listener StatsListener[T]) {
	*mcts.listener = listener
}

func (mcts *MCTS[S, T, P, E]) IsSearching() bool {
	return !mcts.Limiter.Stop()
}

// Stop the search
func (mcts *MCTS[S, T, P, E]) Stop() {
	mcts.Limiter.SetStop(true)
}

// Maximum depth reached during the search, note that usually MaxDepth != len(pv)
func (mcts *MCTS[S, T, P, E]) MaxDepth() int {
	return int(mcts.maxdepth.Load())
}

// Total number of playouts ran during the last search
func (mcts *MCTS[S, T, P, E]) Cycles() int {
	return int(mcts.cycles.Load())
}

// Get cycles per second statistic
func (mcts *MCTS[S, T, P, E]) Cps() uint32 {
	return mcts.cps.Load()
}

// Get the reason why the search was stopped, valid after search ends
func (mcts *MCTS[S, T, P, E]) StopReason() StopReason {
	return mcts.Limiter.StopReason()
}

func (mcts *MCTS[S, T, P, E]) SetLimits(limits *Limits) {
	mcts.Limiter.SetLimits(limits)
}

func (mcts *MCTS[S, T, P, E]) Limits() *Limits {
	return mcts.Limiter.Limits()
}

func (mcts *MCTS[S, T, P, E]) VirtualLoss() float64 {
	return mcts.virtualLoss
}

func (mcts *MCTS[S, T, P, E]) Table() TranspositionTable[S, E] {
	return mcts.table
}

// State of the root node
func (mcts *MCTS[S, T, P, E]) RootState() S {
	return mcts.rootState
}

func (mcts *MCTS[S, T, P, E]) String() string {
	str := fmt.Sprintf("MCTS={Size=%d, Stats:{maxdepth=%d, cps=%d, cycles=%d}, Stop=%v",
		mcts.Size(), mcts.MaxDepth(), mcts.Cps(), mcts.Cycles(), !mcts.IsSearching())
	str += fmt.Sprintf(", Root.Visits=%d, Root.Children=%d}", mcts.Root.Visits(), len(mcts.Root.ChildNodes()))
	return str
}

// Helper function to count tree nodes
func countTreeNodes[T MoveLike, E any](node *NodeBase[T, E]) int {
	nodes := 1
	children := node.ChildNodes()
	for i := range children {
		nodes += countTreeNodes(&children[i])
	}
	return nodes
}

// Get the size of the tree (by counting)
func (mcts *MCTS[S, T, P, E]) Count() int {
	return countTreeNodes(mcts.Root)
}

// Get the size of the tree
func (mcts *MCTS[S, T, P, E]) Size() uint32 {
	return mcts.size.Load()
}

// Returns approximation of memory usage of the tree structure
func (mcts *MCTS[S, T, P, E]) MemoryUsage() uint32 {
	return mcts.Size()*uint32(unsafe.Sizeof(NodeBase[T, E]{})) + uint32(unsafe.Sizeof(MCTS[S, T, P, E]{}))
}

// Tries to make given 'move' a new root, keeping its subtree.
// Returns false if the move isn't one of the root's children, the tree is left unchanged then.
func (mcts *MCTS[S, T, P, E]) MakeMove(move T) bool {
	// If the search is running, stop it first
	if mcts.IsSearching() {
		mcts.Stop()
		mcts.Synchronize()
	}

	// Find the child with given move
	var newRoot *NodeBase[T, E]
	children := mcts.Root.ChildNodes()
	for i := range children {
		if children[i].Move == move {
			newRoot = &children[i]
			break
		}
	}

	if newRoot == nil {
		return false
	}

	oldRoot := mcts.Root
	mcts.Root = newRoot
	mcts.rootState = mcts.rootState.MakeMove(move)

	// Detach the new root from its parent
	newRoot.Parent = nil
	oldRoot.Children = nil

	if !newRoot.Expanded() {
		mcts.expand(newRoot, mcts.rootState)
	}

	mcts.size.Store(uint32(countTreeNodes(newRoot)))
	mcts.maxdepth.Store(max(0, int32(mcts.MaxDepth()-1)))
	return true
}

// Remove previous tree and start from 'state'
func (mcts *MCTS[S, T, P, E]) Reset(state S) {
	// Discard running search
	if mcts.IsSearching() {
		mcts.Stop()
		mcts.Synchronize()
	}

	mcts.Root = newRootNode[T, E]()
	mcts.rootState = state
	mcts.size.Store(1)
	mcts.maxdepth.Store(0)
	mcts.expand(mcts.Root, state)
}

// 'the best move' in the position, zero value if there is none
func (mcts *MCTS[S, T, P, E]) RootMove() T {
	move, _ := mcts.BestMove()
	return move
}

// Most visited root move, false if no root child was visited
func (mcts *MCTS[S, T, P, E]) BestMove() (T, bool) {
	if bestChild := mcts.BestChild(mcts.Root, BestChildMostVisits); bestChild != nil {
		return bestChild.Move, true
	}
	var none T
	return none, false
}

// Current evaluation of the position, from the root player's point of view
func (mcts *MCTS[S, T, P, E]) RootScore() float64 {
	if bestChild := mcts.BestChild(mcts.Root, BestChildMostVisits); bestChild != nil {
		return bestChild.AvgReward()
	}
	return math.NaN()
}

// Return best child, based on the policy
func (mcts *MCTS[S, T, P, E]) BestChild(node *NodeBase[T, E], policy BestChildPolicy) *NodeBase[T, E] {
	var bestChild *NodeBase[T, E]
	children := node.ChildNodes()

	switch policy {
	case BestChildMostVisits:
		maxVisits := int32(0)
		for i := range children {
			if v := children[i].RealVisits(); v > maxVisits {
				maxVisits = v
				bestChild = &children[i]
			}
		}
	case BestChildWinRate:
		// the child we choose should have at least a few visits
		const minVisitsThreshold = 10

		bestWinRate := math.Inf(-1)
		for i := range children {
			child := &children[i]
			if child.RealVisits() > minVisitsThreshold {
				if winRate := child.AvgReward(); winRate > bestWinRate {
					bestWinRate = winRate
					bestChild = child
				}
			}
		}
	}

	return bestChild
}

type PvResult[T MoveLike, E any] struct {
	Root     *NodeBase[T, E]
	Pv       []T
	Terminal bool
	Draw     bool
}

// Returns 'pvCount' best move lines, specified in the limits
func (mcts *MCTS[S, T, P, E]) MultiPv(policy BestChildPolicy) []PvResult[T, E] {
	if mcts.Root == nil {
		return nil
	}

	pvCount := mcts.Limiter.Limits().MultiPv
	children := mcts.Root.ChildNodes()
	rootNodes := make([]*NodeBase[T, E], len(children))
	for i := range children {
		rootNodes[i] = &children[i]
	}

	slices.SortStableFunc(rootNodes, func(a *NodeBase[T, E], b *NodeBase[T, E]) int {
		va, vb := a.RealVisits(), b.RealVisits()
		if va < vb {
			return 1
		} else if va > vb {
			return -1
		}
		return 0
	})

	multipv := make([]PvResult[T, E], 0, min(pvCount, len(rootNodes)))
	for i := 0; i < pvCount && i < len(rootNodes); i++ {
		pv, terminal, draw := mcts.Pv(rootNodes[i], policy, true)
		multipv = append(multipv, PvResult[T, E]{
			Root:     rootNodes[i],
			Pv:       pv,
			Terminal: terminal,
			Draw:     draw,
		})
	}

	return multipv
}

// Get the principal variation (ie. the best sequence of moves)
// from given starting 'root' node, based on given best child policy
func (mcts *MCTS[S, T, P, E]) PvNodes(root *NodeBase[T, E], policy BestChildPolicy, includeRoot bool) ([]*NodeBase[T, E], bool) {
	if root == nil {
		return nil, false
	}

	pv := make([]*NodeBase[T, E], 0, mcts.MaxDepth()+1)
	node := root
	mate := false

	if includeRoot {
		pv = append(pv, root)
	}

	if len(root.ChildNodes()) == 0 {
		// If there are no children, we cannot go further
		return pv, root.Terminal()
	}

	// Simply select 'best child' until we don't have any children
	// or the node is nil
	for len(node.ChildNodes()) > 0 {
		node = mcts.BestChild(node, policy)
		if node == nil {
			break
		}

		pv = append(pv, node)

		// If that's a terminal node, the line is complete
		if node.Terminal() {
			mate = true
			break
		}
	}

	return pv, mate
}

// Get the principal variation, but only the moves, returns (moves, terminal, draw)
func (mcts *MCTS[S, T, P, E]) Pv(root *NodeBase[T, E], policy BestChildPolicy, includeRoot bool) ([]T, bool, bool) {
	if root == nil {
		return nil, false, false
	}

	nodes, mate := mcts.PvNodes(root, policy, includeRoot)
	pv := make([]T, len(nodes))
	for i := range nodes {
		pv[i] = nodes[i].Move
	}

	draw := false
	if mate && len(nodes) > 0 {
		draw = nodes[len(nodes)-1].AvgReward() == 0
	}
	return pv, mate, draw
}
