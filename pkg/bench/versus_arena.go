package bench

import (
	"context"
	"sync"

	"github.com/IlikeChooros/go-gametree/pkg/search"
	"github.com/rs/zerolog/log"
)

/*
Arena benchmark subpackage, allows to play a series of games between two
move finders, on several worker goroutines.
*/

type VersusArena[N search.GameNode[N, M, P], M any, P comparable] struct {
	VersusArenaStats
	Player1  FinderFactory[N, M]
	Player2  FinderFactory[N, M]
	NGames   uint
	NThreads uint
	// Games longer than this are scored as draws, 0 means no limit
	MaxPlies int
	Position N
	p1Name   string
	p2Name   string
	done     chan struct{}
	ctx      context.Context
}

func NewVersusArena[N search.GameNode[N, M, P], M any, P comparable](
	position N, player1, player2 FinderFactory[N, M],
) *VersusArena[N, M, P] {
	return &VersusArena[N, M, P]{
		Player1:  player1,
		Player2:  player2,
		NGames:   100,
		NThreads: 2,
		Position: position,
		ctx:      context.Background(),
	}
}

// Stop starting new games (and moves) once 'ctx' is done
func (va *VersusArena[N, M, P]) WithContext(ctx context.Context) *VersusArena[N, M, P] {
	va.ctx = ctx
	return va
}

func (va *VersusArena[N, M, P]) Setup(nGames uint, nThreads uint) {
	va.NGames = nGames
	va.NThreads = max(1, nThreads)
}

// Wait for all the games started by Start
func (va *VersusArena[N, M, P]) Wait() {
	if va.done != nil {
		<-va.done
	}
}

func (va *VersusArena[N, M, P]) Summary() VersusSummaryInfo {
	return VersusSummaryInfo{
		TotalGames:       va.Total(),
		P1Wins:           va.P1Wins(),
		P2Wins:           va.P2Wins(),
		FirstToMoveWins:  va.FirstToMoveWins(),
		SecondToMoveWins: va.SecondToMoveWins(),
		Draws:            va.Draws(),
		Workers:          int(va.NThreads),
		P1Name:           va.p1Name,
		P2Name:           va.p2Name,
	}
}

// Start equally distributed work between worker goroutines, returns immediately.
// Player 1 moves first in even games, player 2 in odd ones.
func (va *VersusArena[N, M, P]) Start(listener ListenerLike[M]) {
	if listener == nil {
		listener = &DefaultListener[M]{}
	}
	va.done = make(chan struct{})
	listener.OnStart()

	threads := max(1, va.NThreads)
	nGames := va.NGames / threads
	rest := va.NGames % threads
	first := uint(0)

	var wg sync.WaitGroup
	for i := range threads {
		count := nGames
		if i < rest {
			count++
		}

		// Finders keep state between moves, every worker needs its own
		p1, p2 := va.Player1(), va.Player2()
		if i == 0 {
			va.p1Name, va.p2Name = p1.Name(), p2.Name()
		}

		l := listener.Clone()
		l.SetRow(int(i))

		wg.Add(1)
		go func(id int, first, count uint) {
			defer wg.Done()
			va.worker(id, int(first), int(count), l, p1, p2)
		}(int(i), first, count)
		first += count
	}

	go func() {
		wg.Wait()
		listener.Summary(va.Summary())
		listener.OnEnd()
		close(va.done)
	}()
}

type workerStats struct {
	p1Wins, p2Wins, draws             int
	firstToMoveWins, secondToMoveWins int
}

func (ws *workerStats) add(result VersusMatchResult, outcome GameOutcome) {
	switch result {
	case VersusPl1Win:
		ws.p1Wins++
	case VersusPl2Win:
		ws.p2Wins++
	default:
		ws.draws++
	}
	if !outcome.IsDraw {
		if outcome.FirstPlayerWon {
			ws.firstToMoveWins++
		} else {
			ws.secondToMoveWins++
		}
	}
}

func (va *VersusArena[N, M, P]) info(id, nGames, finished int, moves []M, stats *workerStats) VersusWorkerInfo[M] {
	return VersusWorkerInfo[M]{
		WorkerID:         id,
		NGames:           nGames,
		FinishedGames:    finished,
		GameMoveNum:      len(moves),
		Moves:            moves,
		P1Wins:           stats.p1Wins,
		P2Wins:           stats.p2Wins,
		Draws:            stats.draws,
		FirstToMoveWins:  stats.firstToMoveWins,
		SecondToMoveWins: stats.secondToMoveWins,
		P1Name:           va.p1Name,
		P2Name:           va.p2Name,
	}
}

func (va *VersusArena[N, M, P]) worker(id, first, nGames int, listener ListenerLike[M], p1, p2 MoveFinder[N, M]) {
	local := workerStats{}

	for i := range nGames {
		if va.ctx.Err() != nil {
			break
		}

		p1First := (first+i)%2 == 0
		listener.OnGameStart()

		onMove := func(moves []M) {
			listener.OnMoveMade(va.info(id, nGames, i, moves, &local))
		}

		var outcome GameOutcome
		var moves []M
		if p1First {
			outcome, moves = va.playGame(p1, p2, onMove)
		} else {
			outcome, moves = va.playGame(p2, p1, onMove)
		}

		result := toAgentResult(outcome, p1First)
		va.add(result, outcome)
		local.add(result, outcome)

		log.Debug().
			Int("worker", id).
			Int("game", first+i).
			Int("plies", len(moves)).
			Int("result", int(result)).
			Msg("arena game finished")

		listener.OnFinishedGame(va.info(id, nGames, i+1, moves, &local))
	}

	listener.OnFinishedWork(va.info(id, nGames, nGames, nil, &local))
}

// Plays one game from the arena's position, 'first' makes the first move
func (va *VersusArena[N, M, P]) playGame(first, second MoveFinder[N, M], onMove func([]M)) (GameOutcome, []M) {
	pos := va.Position
	firstMover := pos.CurrentPlayer()
	moves := make([]M, 0, 64)

	for {
		if outcome, over := pos.Terminal(); over {
			return computeOutcome(outcome, firstMover), moves
		}
		if (va.MaxPlies > 0 && len(moves) >= va.MaxPlies) || va.ctx.Err() != nil {
			return GameOutcome{IsDraw: true}, moves
		}

		mover := pos.CurrentPlayer()
		finder := second
		if mover == firstMover {
			finder = first
		}

		move, ok := finder.FindMove(pos)
		if !ok {
			// Nothing to play in a running game, the finder forfeits
			log.Warn().Str("finder", finder.Name()).Int("ply", len(moves)).Msg("no move found, forfeiting")
			return GameOutcome{FirstPlayerWon: mover != firstMover}, moves
		}

		pos = pos.MakeMove(move)
		moves = append(moves, move)
		onMove(moves)
	}
}
