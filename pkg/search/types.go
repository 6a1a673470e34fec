package search

// Outcome of a finished game: either a single winner or a draw
type Outcome[P comparable] struct {
	winner P
	draw   bool
}

// Game won by 'p'
func Win[P comparable](p P) Outcome[P] {
	return Outcome[P]{winner: p}
}

// Game finished without a winner
func Draw[P comparable]() Outcome[P] {
	return Outcome[P]{draw: true}
}

// Returns the winner, false if the game was drawn
func (o Outcome[P]) Winner() (P, bool) {
	if o.draw {
		var none P
		return none, false
	}
	return o.winner, true
}

func (o Outcome[P]) IsDraw() bool {
	return o.draw
}

// A position in a two-player, zero-sum, perfect-information game.
//
// Implementations must be immutable from the searcher's point of view: MakeMove
// returns a new node and leaves the receiver untouched, since sibling subtrees are
// explored concurrently from the same parent.
type GameNode[N any, M any, P comparable] interface {
	// Player to move in this position
	CurrentPlayer() P
	// Legal moves in a stable order, the order is used to break ties
	LegalMoves() []M
	// Returns the outcome and true, if the game is over
	Terminal() (Outcome[P], bool)
	// Position after playing 'move'
	MakeMove(move M) N
}

// Static evaluator, scoring leaves of the search tree.
//
// Evaluate receives the ply (distance from the root) of the node, so terminal
// results can prefer quicker wins. Interpret turns an evaluation into a scalar
// from the given player's point of view, higher is better. For every evaluation
// produced on a non-terminal node Interpret(e, a) == -Interpret(e, b), where b is
// a's opponent; the searcher relies on this when comparing siblings.
type Evaluator[N any, P comparable, E any] interface {
	Evaluate(node N, ply int) E
	Interpret(eval E, player P) float64
}

// The chosen root move, with the evaluation of the leaf that justified it
type Result[M any, E any] struct {
	Move       M
	Evaluation E
}
