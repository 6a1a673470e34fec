package chess

import (
	"math/bits"

	dragon "github.com/IlikeChooros/dragontoothmg"
)

type Phase uint8

const (
	MiddleGame Phase = iota
	EndGame
)

func (p Phase) String() string {
	if p == EndGame {
		return "endgame"
	}
	return "middlegame"
}

// Endgame when neither side has a queen, or every side with a queen has at most
// one minor piece besides it.
func DetectPhase(board *dragon.Board) Phase {
	if sideInEndgame(&board.White) && sideInEndgame(&board.Black) {
		return EndGame
	}
	return MiddleGame
}

func sideInEndgame(bb *dragon.Bitboards) bool {
	queens := bits.OnesCount64(bb.Queens)
	if queens == 0 {
		return true
	}
	minors := bits.OnesCount64(bb.Knights | bb.Bishops)
	return queens == 1 && bb.Rooks == 0 && minors <= 1
}
