package mcts

// Back up the leaf evaluation: every edge on the path gets the evaluation as seen
// by the player who chose it, and its virtual loss is taken back.
//
// movers[i] is the player to move at path[i], so it's the one who chose path[i+1].
func (mcts *MCTS[S, T, P, E]) backpropagate(path []*NodeBase[T, E], movers []P, eval E) {
	for i := len(path) - 1; i >= 1; i-- {
		reward := mcts.evaluator.InterpretForPlayer(eval, movers[i-1])
		path[i].revertVirtualLoss(mcts.virtualLoss, reward)
	}
}
