package chess

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/bits"
	"slices"
	"strings"

	dragon "github.com/IlikeChooros/dragontoothmg"
	"github.com/IlikeChooros/go-gametree/pkg/search"
)

const (
	StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	// Hashed in place of the promotion piece of a quiet move
	noPromotion = 100
)

// A chess game: the current position together with every move that led to it.
//
// Game is immutable, MakeMove and Play return a new game. Everything the search
// reads (legal moves, termination) is computed once on construction, so a game
// can be shared between search goroutines.
type Game struct {
	board     *dragon.Board
	history   []dragon.Move
	positions []uint64 // board hashes, one per ply plus the starting one
	moves     []dragon.Move
	over      bool // no legal moves: mate or stalemate
	mated     bool
	verdict   verdict
}

func newGame(board *dragon.Board, history []dragon.Move, positions []uint64) *Game {
	g := &Game{
		board:     board,
		history:   history,
		positions: append(positions, board.Hash()),
	}
	// Repetition, the fifty-move rule and insufficient material only make
	// a draw claimable, see CanDeclareDraw
	g.moves = board.GenerateLegalMoves()
	g.over = len(g.moves) == 0
	g.mated = g.over && board.OurKingInCheck()
	return g
}

func NewGame() *Game {
	return newGame(dragon.NewBoard(), nil, nil)
}

// Game starting from the given position, with an empty history
func FromFEN(fen string) (game *Game, err error) {
	// The rules engine panics on malformed input
	defer func() {
		if r := recover(); r != nil {
			game, err = nil, fmt.Errorf("%w %q: %v", ErrInvalidFEN, fen, r)
		}
	}()

	if err := validateFEN(fen); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidFEN, fen, err)
	}

	board := dragon.ParseFen(fen)
	return newGame(&board, nil, nil), nil
}

// Shape checks the rules engine doesn't do: six fields, eight ranks of eight squares
func validateFEN(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return fmt.Errorf("expected 6 fields, got %d", len(fields))
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fmt.Errorf("expected 8 ranks, got %d", len(ranks))
	}
	for i, rank := range ranks {
		squares := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				squares += int(c - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", c):
				squares++
			default:
				return fmt.Errorf("rank %d: unexpected %q", 8-i, c)
			}
		}
		if squares != 8 {
			return fmt.Errorf("rank %d has %d squares", 8-i, squares)
		}
	}

	if fields[1] != "w" && fields[1] != "b" {
		return fmt.Errorf("unknown side to move %q", fields[1])
	}
	return nil
}

// Replay 'uci' moves from the starting position
func FromMoves(uci []string) (*Game, error) {
	game := NewGame()
	for i, move := range uci {
		next, err := game.Play(move)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		game = next
	}
	return game, nil
}

func (g *Game) CurrentPlayer() Color {
	return colorOf(g.board.Wtomove)
}

// Legal moves, empty once the game is over. The returned slice must not be modified.
func (g *Game) LegalMoves() []dragon.Move {
	if g.verdict != verdictNone {
		return nil
	}
	return g.moves
}

func (g *Game) AvailableMoves() []dragon.Move {
	return g.LegalMoves()
}

// Game after 'move', the move is not validated
func (g *Game) MakeMove(move dragon.Move) *Game {
	board := g.board.Clone()
	board.Make(move)
	return newGame(board, append(slices.Clip(g.history), move), slices.Clip(g.positions))
}

// Play a move given in UCI notation (e2e4, e7e8q)
func (g *Game) Play(uci string) (*Game, error) {
	if g.IsTerminal() {
		return nil, ErrGameOver
	}

	parsed, err := dragon.ParseMove(uci)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrIllegalMove, uci, err)
	}
	for _, move := range g.moves {
		if move == parsed {
			return g.MakeMove(move), nil
		}
	}
	return nil, fmt.Errorf("%w %q in %s", ErrIllegalMove, uci, g.FEN())
}

func (g *Game) withVerdict(v verdict) *Game {
	next := *g
	next.verdict = v
	return &next
}

// Game lost by 'c'
func (g *Game) Resign(c Color) *Game {
	if c == White {
		return g.withVerdict(verdictWhiteResigned)
	}
	return g.withVerdict(verdictBlackResigned)
}

func (g *Game) AcceptDraw() *Game {
	return g.withVerdict(verdictDrawAccepted)
}

func (g *Game) Terminal() (search.Outcome[Color], bool) {
	switch g.verdict {
	case verdictWhiteResigned:
		return search.Win(Black), true
	case verdictBlackResigned:
		return search.Win(White), true
	case verdictDrawAccepted:
		return search.Draw[Color](), true
	}

	if !g.over {
		return search.Outcome[Color]{}, false
	}
	if g.mated {
		// The side to move is mated
		return search.Win(g.CurrentPlayer().Other()), true
	}
	return search.Draw[Color](), true
}

func (g *Game) IsTerminal() bool {
	_, over := g.Terminal()
	return over
}

// Winner of a finished game, false on a draw or if the game goes on
func (g *Game) Winner() (Color, bool) {
	outcome, over := g.Terminal()
	if !over {
		return White, false
	}
	return outcome.Winner()
}

// Whether a draw could be declared: threefold repetition, the fifty-move rule
// or neither side having mating material. The game isn't over until the draw is accepted.
func (g *Game) CanDeclareDraw() bool {
	if g.IsTerminal() {
		return false
	}
	if g.board.Halfmoveclock >= 100 || insufficientMaterial(g.board) {
		return true
	}

	current := g.positions[len(g.positions)-1]
	seen := 0
	for _, h := range g.positions {
		if h == current {
			seen++
		}
	}
	return seen >= 3
}

// Bare kings, or a single knight or bishop on the board besides them
func insufficientMaterial(board *dragon.Board) bool {
	w, b := &board.White, &board.Black
	if w.Pawns|b.Pawns|w.Rooks|b.Rooks|w.Queens|b.Queens != 0 {
		return false
	}
	return bits.OnesCount64(w.Knights|w.Bishops|b.Knights|b.Bishops) <= 1
}

// Order-sensitive digest of the move history, followed by the position hash
func (g *Game) Hash() uint64 {
	h := fnv.New64a()
	var buf [8]byte

	for _, move := range g.history {
		promotion := uint64(noPromotion)
		if p := move.Promote(); p != dragon.Nothing {
			promotion = uint64(p)
		}
		h.Write([]byte{move.From(), move.To()})
		binary.LittleEndian.PutUint64(buf[:], promotion)
		h.Write(buf[:])
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(g.history)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], g.board.Hash())
	h.Write(buf[:])
	return h.Sum64()
}

// Same history and same position
func (g *Game) Equal(other *Game) bool {
	if g == other {
		return true
	}
	if other == nil || g.verdict != other.verdict || !slices.Equal(g.history, other.history) {
		return false
	}
	return g.board.Hash() == other.board.Hash() && g.FEN() == other.FEN()
}

// Moves played since the starting position, must not be modified
func (g *Game) History() []dragon.Move {
	return g.history
}

func (g *Game) FEN() string {
	return g.board.ToFen()
}

// Copy of the current board
func (g *Game) Board() *dragon.Board {
	return g.board.Clone()
}

func (g *Game) String() string {
	return g.FEN()
}
