package bench

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"
	"github.com/samber/lo"
)

type termOutput struct {
	mu  sync.Mutex
	out *termenv.Output
}

// Prints the arena progress to a terminal. In live mode every worker owns a row
// that is redrawn on each move, otherwise a line is printed per finished game.
type TermListener[M any] struct {
	output *termOutput
	format func(M) string
	live   bool
	row    int
}

// 'format' turns a move into text, fmt's %v is used when nil
func NewTermListener[M any](w io.Writer, format func(M) string, live bool) *TermListener[M] {
	if format == nil {
		format = func(m M) string { return fmt.Sprint(m) }
	}
	return &TermListener[M]{
		output: &termOutput{out: termenv.NewOutput(w)},
		format: format,
		live:   live,
	}
}

func (l *TermListener[M]) SetRow(row int) {
	l.row = row
}

func (l *TermListener[M]) Clone() ListenerLike[M] {
	clone := *l
	return &clone
}

func (l *TermListener[M]) OnStart() {
	if !l.live {
		return
	}
	l.output.mu.Lock()
	defer l.output.mu.Unlock()
	l.output.out.HideCursor()
	l.output.out.ClearScreen()
}

func (l *TermListener[M]) OnGameStart() {}

func (l *TermListener[M]) OnMoveMade(info VersusWorkerInfo[M]) {
	if l.live {
		l.redraw(info)
	}
}

func (l *TermListener[M]) OnFinishedGame(info VersusWorkerInfo[M]) {
	if l.live {
		l.redraw(info)
		return
	}

	l.output.mu.Lock()
	defer l.output.mu.Unlock()
	fmt.Fprintf(l.output.out, "worker %d: game %d/%d finished after %d moves: %s\n",
		info.WorkerID, info.FinishedGames, info.NGames, info.GameMoveNum, l.moves(info.Moves))
}

func (l *TermListener[M]) OnFinishedWork(info VersusWorkerInfo[M]) {
	if l.live {
		l.redraw(info)
	}
}

func (l *TermListener[M]) Summary(info VersusSummaryInfo) {
	l.output.mu.Lock()
	defer l.output.mu.Unlock()
	out := l.output.out

	if l.live {
		out.MoveCursor(l.row+info.Workers+2, 1)
	}

	p1, p2 := out.String(info.P1Name), out.String(info.P2Name)
	switch {
	case info.P1Wins > info.P2Wins:
		p1 = p1.Foreground(termenv.ANSIGreen).Bold()
	case info.P2Wins > info.P1Wins:
		p2 = p2.Foreground(termenv.ANSIGreen).Bold()
	}

	fmt.Fprintf(out, "%d games on %d workers\n", info.TotalGames, info.Workers)
	fmt.Fprintf(out, "%s: %d wins\n", p1, info.P1Wins)
	fmt.Fprintf(out, "%s: %d wins\n", p2, info.P2Wins)
	fmt.Fprintf(out, "%s: %d\n", out.String("draws").Foreground(termenv.ANSIYellow), info.Draws)
	fmt.Fprintf(out, "first to move won %d, second %d\n", info.FirstToMoveWins, info.SecondToMoveWins)
}

func (l *TermListener[M]) OnEnd() {
	if !l.live {
		return
	}
	l.output.mu.Lock()
	defer l.output.mu.Unlock()
	l.output.out.ShowCursor()
}

func (l *TermListener[M]) redraw(info VersusWorkerInfo[M]) {
	l.output.mu.Lock()
	defer l.output.mu.Unlock()
	out := l.output.out

	out.MoveCursor(l.row+1, 1)
	out.ClearLine()

	score := fmt.Sprintf("%d-%d-%d", info.P1Wins, info.P2Wins, info.Draws)
	fmt.Fprintf(out, "worker %d  game %d/%d  %s  %s",
		info.WorkerID, info.FinishedGames, info.NGames,
		out.String(score).Bold(), out.String(l.moves(info.Moves)).Faint())
}

func (l *TermListener[M]) moves(moves []M) string {
	return strings.Join(lo.Map(moves, func(m M, _ int) string {
		return l.format(m)
	}), " ")
}
