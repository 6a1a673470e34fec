package chess

import "errors"

var (
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func colorOf(wtomove bool) Color {
	if wtomove {
		return White
	}
	return Black
}

// Result of a game decided outside of the board (by the players)
type verdict uint8

const (
	verdictNone verdict = iota
	verdictWhiteResigned
	verdictBlackResigned
	verdictDrawAccepted
)
