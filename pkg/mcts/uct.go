package mcts

import (
	"math"

	"golang.org/x/exp/rand"
)

// Will be called on every expanded node during the descent, must return one of
// the parent's children. Node statistics change concurrently, read them with
// the NodeStats methods only.
type SelectionPolicy[T MoveLike, E any] interface {
	Select(parent *NodeBase[T, E], r *rand.Rand) *NodeBase[T, E]
}

// Upper Confidence bounds applied to Trees
type UCT[T MoveLike, E any] struct {
	ExplorationParam float64
}

func NewUCT[T MoveLike, E any](explorationParam float64) *UCT[T, E] {
	return &UCT[T, E]{ExplorationParam: max(0, explorationParam)}
}

// UCT with the package-wide ExplorationParam
func DefaultUCT[T MoveLike, E any]() *UCT[T, E] {
	return NewUCT[T, E](ExplorationParam)
}

func (u *UCT[T, E]) SetExplorationParam(c float64) {
	u.ExplorationParam = max(0, c)
}

func (u *UCT[T, E]) Select(parent *NodeBase[T, E], r *rand.Rand) *NodeBase[T, E] {
	children := parent.ChildNodes()

	// Pick one of the unvisited children at random, so the threads
	// don't pile up on the same one
	unvisited := 0
	for i := range children {
		if children[i].Visits() == 0 {
			unvisited++
		}
	}
	if unvisited > 0 {
		pick := r.Intn(unvisited)
		for i := range children {
			if children[i].Visits() == 0 {
				if pick == 0 {
					return &children[i]
				}
				pick--
			}
		}
	}

	best := math.Inf(-1)
	index := 0
	lnParentVisits := math.Log(float64(parent.Visits()))

	for i := range children {
		child := &children[i]
		visits := float64(child.Visits())
		if visits == 0 {
			// Visited by another thread since the first pass
			return child
		}

		// reward/visits + C * sqrt(ln(parent_visits)/visits)
		uct := child.Reward()/visits + u.ExplorationParam*math.Sqrt(lnParentVisits/visits)
		if uct > best {
			best = uct
			index = i
		}
	}

	return &children[index]
}
