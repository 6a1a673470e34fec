package bench

import (
	"fmt"

	"github.com/IlikeChooros/go-gametree/pkg/mcts"
	"github.com/IlikeChooros/go-gametree/pkg/search"
)

type Algorithm int

const (
	MiniMax Algorithm = iota
	AlphaBeta
)

func (a Algorithm) String() string {
	if a == AlphaBeta {
		return "alphabeta"
	}
	return "minimax"
}

// Fixed-depth search as a move finder
type SearchFinder[N search.GameNode[N, M, P], M any, P comparable, E any] struct {
	searcher  *search.Searcher[N, M, P, E]
	depth     int
	algorithm Algorithm
}

func NewSearchFinder[N search.GameNode[N, M, P], M any, P comparable, E any](
	searcher *search.Searcher[N, M, P, E], depth int, algorithm Algorithm,
) *SearchFinder[N, M, P, E] {
	return &SearchFinder[N, M, P, E]{
		searcher:  searcher,
		depth:     depth,
		algorithm: algorithm,
	}
}

func (f *SearchFinder[N, M, P, E]) Name() string {
	return fmt.Sprintf("%s(depth=%d)", f.algorithm, f.depth)
}

func (f *SearchFinder[N, M, P, E]) FindMove(node N) (M, bool) {
	var res search.Result[M, E]
	var ok bool
	if f.algorithm == AlphaBeta {
		res, ok = f.searcher.AlphaBeta(node, f.depth)
	} else {
		res, ok = f.searcher.MiniMax(node, f.depth)
	}
	return res.Move, ok
}

// Monte-Carlo tree search as a move finder. The tree is kept between moves:
// after its own move and the opponent's reply, the matching subtree becomes the new root.
type MCTSFinder[S mcts.GameState[S, T, P], T mcts.MoveLike, P comparable, E any] struct {
	name    string
	limits  *mcts.Limits
	newTree func(S) *mcts.MCTS[S, T, P, E]
	tree    *mcts.MCTS[S, T, P, E]
}

// 'newTree' builds a tree rooted at the given state, 'limits' apply to every move
func NewMCTSFinder[S mcts.GameState[S, T, P], T mcts.MoveLike, P comparable, E any](
	name string, limits *mcts.Limits, newTree func(S) *mcts.MCTS[S, T, P, E],
) *MCTSFinder[S, T, P, E] {
	return &MCTSFinder[S, T, P, E]{
		name:    name,
		limits:  limits,
		newTree: newTree,
	}
}

func (f *MCTSFinder[S, T, P, E]) Name() string {
	return f.name
}

func (f *MCTSFinder[S, T, P, E]) FindMove(state S) (T, bool) {
	if f.tree == nil {
		f.tree = f.newTree(state)
	} else if !f.advance(state) {
		f.tree.Reset(state)
	}

	f.tree.SetLimits(f.limits)
	f.tree.Search()

	move, ok := f.tree.BestMove()
	if ok {
		f.tree.MakeMove(move)
	}
	return move, ok
}

// Move the root to 'state', if it's the current root or one of its children
func (f *MCTSFinder[S, T, P, E]) advance(state S) bool {
	root := f.tree.RootState()
	if root.Equal(state) {
		return true
	}

	children := f.tree.Root.ChildNodes()
	for i := range children {
		if root.MakeMove(children[i].Move).Equal(state) {
			return f.tree.MakeMove(children[i].Move)
		}
	}
	return false
}
