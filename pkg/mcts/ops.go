package mcts

// Game position as seen by the tree search. States are values: MakeMove returns
// the next state without modifying the receiver, so every search thread can walk
// the tree from the shared root state.
type GameState[S any, T MoveLike, P comparable] interface {
	CurrentPlayer() P
	// Legal moves, empty when the game is over
	AvailableMoves() []T
	MakeMove(T) S
	IsTerminal() bool
	// Hash and Equal decide whether two states share a transposition table entry
	Hash() uint64
	Equal(S) bool
}

// Scores states for the tree search in place of random rollouts
type Evaluator[S any, T MoveLike, P comparable, E any] interface {
	// Called the first time a state is expanded, returns a prior for every move
	// (in 'moves' order) and the evaluation of the state
	EvaluateNewState(state S, moves []T) ([]MoveEvaluation, E)
	// Called when the state was found in the transposition table
	EvaluateExistingState(state S, existing E) E
	// Reward for 'player', backed up into the edge that 'player' chose
	InterpretForPlayer(eval E, player P) float64
}
