package chess

import (
	"fmt"
	"math/bits"
	"strings"

	dragon "github.com/IlikeChooros/dragontoothmg"
	"github.com/IlikeChooros/go-gametree/pkg/search"
)

type EvalKind uint8

const (
	EvalScore EvalKind = iota
	EvalWinner
	EvalDraw
)

// Static evaluation of a game: a winner, a draw, or a heuristic score
// from the evaluator's perspective
type Evaluation struct {
	Kind  EvalKind
	Color Color
	Value float64
}

func Winner(c Color) Evaluation {
	return Evaluation{Kind: EvalWinner, Color: c}
}

func Draw() Evaluation {
	return Evaluation{Kind: EvalDraw}
}

func Score(v float64) Evaluation {
	return Evaluation{Kind: EvalScore, Value: v}
}

func (e Evaluation) String() string {
	switch e.Kind {
	case EvalWinner:
		return e.Color.String() + " wins"
	case EvalDraw:
		return "draw"
	}
	return fmt.Sprintf("%.2f", e.Value)
}

type Variant uint8

const (
	// Material in pawns (1/3/3/5/9) and mobility
	Simple Variant = iota
	// Material in centipawns, piece-square tables and mobility
	Refined
)

func (v Variant) String() string {
	if v == Refined {
		return "refined"
	}
	return "simple"
}

var (
	simpleValues  = [7]float64{dragon.Pawn: 1, dragon.Knight: 3, dragon.Bishop: 3, dragon.Rook: 5, dragon.Queen: 9}
	refinedValues = [7]float64{dragon.Pawn: 100, dragon.Knight: 320, dragon.Bishop: 330, dragon.Rook: 500, dragon.Queen: 900, dragon.King: 200000}
)

// Static evaluator, scoring positions for one side (the perspective).
// Winning and losing always dominate any heuristic score.
type Evaluator struct {
	perspective    Color
	variant        Variant
	phase          Phase
	mobilityWeight float64
	winScore       float64
}

type evaluatorOptions struct {
	variant        Variant
	phase          Phase
	mobilityWeight *float64
	winScore       *float64
}

type Option func(*evaluatorOptions)

func WithVariant(v Variant) Option {
	return func(o *evaluatorOptions) {
		o.variant = v
	}
}

// King table used by the refined variant, see DetectPhase
func WithPhase(p Phase) Option {
	return func(o *evaluatorOptions) {
		o.phase = p
	}
}

// Weight of the difference in legal move counts,
// defaults to 0.1 for the simple variant and 1 for the refined one
func WithMobilityWeight(w float64) Option {
	return func(o *evaluatorOptions) {
		o.mobilityWeight = &w
	}
}

// Value of a won game, defaults to 1e4 (simple) and 1e6 (refined). It has to
// exceed any material and mobility difference, nine queens and every other
// piece against a bare king are worth 103 in the simple variant.
func WithWinScore(v float64) Option {
	return func(o *evaluatorOptions) {
		o.winScore = &v
	}
}

func NewEvaluator(perspective Color, opts ...Option) *Evaluator {
	o := evaluatorOptions{variant: Simple, phase: MiddleGame}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Evaluator{
		perspective:    perspective,
		variant:        o.variant,
		phase:          o.phase,
		mobilityWeight: 0.1,
		winScore:       1e4,
	}
	if o.variant == Refined {
		e.mobilityWeight, e.winScore = 1, 1e6
	}
	if o.mobilityWeight != nil {
		e.mobilityWeight = *o.mobilityWeight
	}
	if o.winScore != nil {
		e.winScore = *o.winScore
	}
	return e
}

func (e *Evaluator) Perspective() Color {
	return e.perspective
}

func (e *Evaluator) WinScore() float64 {
	return e.winScore
}

// Search evaluator contract: terminal games map to a winner or a draw,
// the rest is scored statically. The ply doesn't matter.
func (e *Evaluator) Evaluate(game *Game, ply int) Evaluation {
	if outcome, over := game.Terminal(); over {
		return e.EvaluateTerminal(outcome)
	}
	return e.EvaluatePosition(game.board, game.LegalMoves())
}

func (e *Evaluator) EvaluateTerminal(outcome search.Outcome[Color]) Evaluation {
	if winner, ok := outcome.Winner(); ok {
		return Winner(winner)
	}
	return Draw()
}

// Score a position still in play, 'moves' are the legal moves of the side to move
func (e *Evaluator) EvaluatePosition(board *dragon.Board, moves []dragon.Move) Evaluation {
	score := e.material(board, e.perspective) - e.material(board, e.perspective.Other())

	if e.mobilityWeight != 0 {
		own, opponent := len(moves), opponentMobility(board)
		if colorOf(board.Wtomove) != e.perspective {
			own, opponent = opponent, own
		}
		score += e.mobilityWeight * float64(own-opponent)
	}

	return Score(score)
}

func (e *Evaluator) Interpret(eval Evaluation, player Color) float64 {
	switch eval.Kind {
	case EvalWinner:
		if eval.Color == player {
			return e.winScore
		}
		return -e.winScore
	case EvalDraw:
		return 0
	}

	if player == e.perspective {
		return eval.Value
	}
	return -eval.Value
}

func (e *Evaluator) material(board *dragon.Board, color Color) float64 {
	bb := &board.White
	if color == Black {
		bb = &board.Black
	}

	pieces := [7]uint64{
		dragon.Pawn:   bb.Pawns,
		dragon.Knight: bb.Knights,
		dragon.Bishop: bb.Bishops,
		dragon.Rook:   bb.Rooks,
		dragon.Queen:  bb.Queens,
		dragon.King:   bb.Kings,
	}

	values := &simpleValues
	if e.variant == Refined {
		values = &refinedValues
	}

	total := 0.0
	for piece, bitboard := range pieces {
		if bitboard == 0 {
			continue
		}
		total += values[piece] * float64(bits.OnesCount64(bitboard))

		if e.variant == Refined {
			table := tableFor(dragon.Piece(piece), e.phase)
			for bitboard != 0 {
				square := uint8(bits.TrailingZeros64(bitboard))
				bitboard &= bitboard - 1
				total += float64(squareBonus(table, color, square))
			}
		}
	}
	return total
}

// Legal move count of the side not to move, as if it were its turn.
// Zero when the side to move is in check, passing isn't possible then.
func opponentMobility(board *dragon.Board) int {
	if board.OurKingInCheck() {
		return 0
	}

	fields := strings.Fields(board.ToFen())
	if fields[1] == "w" {
		fields[1] = "b"
	} else {
		fields[1] = "w"
	}
	// No en passant after a pass
	fields[3] = "-"

	flipped := dragon.ParseFen(strings.Join(fields, " "))
	return len(flipped.GenerateLegalMoves())
}
