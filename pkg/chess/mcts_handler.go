package chess

import (
	dragon "github.com/IlikeChooros/dragontoothmg"
	"github.com/IlikeChooros/go-gametree/pkg/mcts"
)

const (
	// Multiplier of the rewards backed up into the tree
	DefaultScale = 1e9
	// Reward taken away from an in-flight node
	DefaultVirtualLoss = DefaultScale
)

// Plugs the static evaluator into the tree search. States are evaluated once,
// when first expanded, and the evaluation stays fixed afterwards.
type MCTSEvaluator struct {
	*Evaluator
	Scale float64
}

func NewMCTSEvaluator(evaluator *Evaluator, scale float64) *MCTSEvaluator {
	return &MCTSEvaluator{Evaluator: evaluator, Scale: scale}
}

func (m *MCTSEvaluator) EvaluateNewState(game *Game, moves []dragon.Move) ([]mcts.MoveEvaluation, Evaluation) {
	priors := make([]mcts.MoveEvaluation, len(moves))
	if outcome, over := game.Terminal(); over {
		return priors, m.EvaluateTerminal(outcome)
	}
	return priors, m.EvaluatePosition(game.board, moves)
}

func (m *MCTSEvaluator) EvaluateExistingState(game *Game, existing Evaluation) Evaluation {
	return existing
}

func (m *MCTSEvaluator) InterpretForPlayer(eval Evaluation, player Color) float64 {
	return m.Interpret(eval, player) * m.Scale
}
