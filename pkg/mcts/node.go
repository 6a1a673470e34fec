package mcts

import "sync/atomic"

const (
	CanExpand     uint32 = 0
	ExpandingMask uint32 = 1
	ExpandedMask  uint32 = 2
	TerminalMask  uint32 = 4
)

type NodeBase[T MoveLike, E any] struct {
	NodeStats
	Move     T
	Prior    MoveEvaluation
	Children []NodeBase[T, E]
	Parent   *NodeBase[T, E]
	Flags    uint32 // must be read/written atomically

	// Written once, before the expanded flag is published
	eval E
}

func newRootNode[T MoveLike, E any]() *NodeBase[T, E] {
	return &NodeBase[T, E]{}
}

func NewBaseNode[T MoveLike, E any](parent *NodeBase[T, E], move T, prior MoveEvaluation) NodeBase[T, E] {
	return NodeBase[T, E]{
		Move:   move,
		Prior:  prior,
		Parent: parent,
	}
}

// Children of the node, nil until the node is fully expanded. Safe to call
// while the search is running.
func (node *NodeBase[T, E]) ChildNodes() []NodeBase[T, E] {
	if !node.Expanded() {
		return nil
	}
	return node.Children
}

// Evaluation of the node's state, valid once the node is expanded
func (node *NodeBase[T, E]) Evaluation() (E, bool) {
	if !node.Expanded() {
		var none E
		return none, false
	}
	return node.eval, true
}

// Reads the game Flags, and return whether the node is terminal
func (node *NodeBase[T, E]) Terminal() bool {
	return atomic.LoadUint32(&node.Flags)&TerminalMask == TerminalMask
}

func TerminalFlag(terminal bool) uint32 {
	flag := uint32(0)
	if terminal {
		flag |= TerminalMask
	}
	return flag
}

// Whether the node has its evaluation and children set
func (node *NodeBase[T, E]) Expanded() bool {
	return atomic.LoadUint32(&node.Flags)&ExpandedMask == ExpandedMask
}

// See if currently node is being expanded
func (node *NodeBase[T, E]) Expanding() bool {
	return atomic.LoadUint32(&node.Flags)&ExpandingMask == ExpandingMask
}

// Should be called when we want to expand this node,
// if it's possible, sets the internal flag to 'currently expanding'
func (node *NodeBase[T, E]) CanExpand() bool {
	return atomic.CompareAndSwapUint32(&node.Flags, CanExpand, ExpandingMask)
}

// After successful 'CanExpand' call, publish the evaluation and the children
func (node *NodeBase[T, E]) FinishExpanding(eval E, children []NodeBase[T, E], terminal bool) {
	node.eval = eval
	node.Children = children
	atomic.StoreUint32(&node.Flags, ExpandedMask|TerminalFlag(terminal))
}
