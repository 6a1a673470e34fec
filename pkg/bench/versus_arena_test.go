package bench

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/IlikeChooros/go-gametree/examples/tic-tac-toe/ttt"
	"github.com/IlikeChooros/go-gametree/pkg/mcts"
	"github.com/IlikeChooros/go-gametree/pkg/search"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	mcts.SetSeedGeneratorFn(func() int64 {
		return 7
	})
	os.Exit(m.Run())
}

func searchFactory(depth int, algorithm Algorithm) FinderFactory[ttt.Position, ttt.PosType] {
	return func() MoveFinder[ttt.Position, ttt.PosType] {
		searcher := search.New[ttt.Position, ttt.PosType, ttt.Player, ttt.Eval](
			ttt.Evaluator{Heuristic: true}, search.WithWorkers(2),
		)
		return NewSearchFinder(searcher, depth, algorithm)
	}
}

func mctsFactory(cycles uint32) FinderFactory[ttt.Position, ttt.PosType] {
	return func() MoveFinder[ttt.Position, ttt.PosType] {
		return NewMCTSFinder("mcts", mcts.DefaultLimits().SetCycles(cycles),
			func(pos ttt.Position) *mcts.MCTS[ttt.Position, ttt.PosType, ttt.Player, ttt.Eval] {
				return mcts.NewMCTS[ttt.Position, ttt.PosType, ttt.Player, ttt.Eval](
					pos, ttt.MCTSEvaluator{}, mcts.DefaultUCT[ttt.PosType, ttt.Eval](),
					mcts.NewApproxTable[ttt.Position, ttt.Eval](512), 1,
				)
			})
	}
}

// Never finds a move
type passFinder struct{}

func (passFinder) Name() string { return "pass" }

func (passFinder) FindMove(ttt.Position) (ttt.PosType, bool) { return 0, false }

type recordingListener struct {
	DefaultListener[ttt.PosType]
	summaries *[]VersusSummaryInfo
	ends      *int
}

func (r *recordingListener) Clone() ListenerLike[ttt.PosType] {
	clone := *r
	return &clone
}

func (r *recordingListener) Summary(info VersusSummaryInfo) {
	*r.summaries = append(*r.summaries, info)
}

func (r *recordingListener) OnEnd() {
	*r.ends++
}

func TestPerfectPlayDraws(t *testing.T) {
	arena := NewVersusArena[ttt.Position, ttt.PosType, ttt.Player](
		ttt.NewPosition(), searchFactory(9, MiniMax), searchFactory(9, AlphaBeta),
	)
	arena.Setup(4, 2)

	summaries, ends := []VersusSummaryInfo{}, 0
	arena.Start(&recordingListener{summaries: &summaries, ends: &ends})
	arena.Wait()

	require.Equal(t, 4, arena.Total())
	require.Equal(t, 4, arena.Draws())
	require.Zero(t, arena.FirstToMoveWins()+arena.SecondToMoveWins())

	require.Len(t, summaries, 1)
	require.Equal(t, 1, ends)
	require.Equal(t, arena.Summary(), summaries[0])
	require.Equal(t, "minimax(depth=9)", summaries[0].P1Name)
	require.Equal(t, "alphabeta(depth=9)", summaries[0].P2Name)
}

func TestMCTSNeverBeatsPerfectPlay(t *testing.T) {
	arena := NewVersusArena[ttt.Position, ttt.PosType, ttt.Player](
		ttt.NewPosition(), mctsFactory(2000), searchFactory(9, AlphaBeta),
	)
	arena.Setup(6, 3)
	arena.Start(nil)
	arena.Wait()

	require.Equal(t, 6, arena.Total())
	require.Zero(t, arena.P1Wins())
}

func TestFinderWithoutMoveForfeits(t *testing.T) {
	pass := func() MoveFinder[ttt.Position, ttt.PosType] { return passFinder{} }
	arena := NewVersusArena[ttt.Position, ttt.PosType, ttt.Player](
		ttt.NewPosition(), pass, searchFactory(2, AlphaBeta),
	)
	arena.Setup(4, 1)
	arena.Start(nil)
	arena.Wait()

	require.Equal(t, 4, arena.P2Wins())
	// Player 2 moves first in half of the games
	require.Equal(t, 2, arena.FirstToMoveWins())
	require.Equal(t, 2, arena.SecondToMoveWins())
}

func TestMaxPliesIsDraw(t *testing.T) {
	arena := NewVersusArena[ttt.Position, ttt.PosType, ttt.Player](
		ttt.NewPosition(), searchFactory(1, AlphaBeta), searchFactory(1, MiniMax),
	)
	arena.MaxPlies = 2
	arena.Setup(3, 2)

	var out bytes.Buffer
	arena.Start(NewTermListener[ttt.PosType](&out, nil, false))
	arena.Wait()

	require.Equal(t, 3, arena.Draws())
	require.Contains(t, out.String(), "finished after 2 moves")
	require.Contains(t, out.String(), "alphabeta(depth=1)")
	require.Contains(t, out.String(), "minimax(depth=1)")
	require.Contains(t, out.String(), "3 games on 2 workers")
}

func TestCancelledArenaPlaysNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	arena := NewVersusArena[ttt.Position, ttt.PosType, ttt.Player](
		ttt.NewPosition(), searchFactory(9, MiniMax), searchFactory(9, MiniMax),
	).WithContext(ctx)
	arena.Setup(10, 2)
	arena.Start(nil)
	arena.Wait()

	require.Zero(t, arena.Total())
}

func TestMCTSFinderReusesTree(t *testing.T) {
	finder := mctsFactory(500)().(*MCTSFinder[ttt.Position, ttt.PosType, ttt.Player, ttt.Eval])

	pos := ttt.NewPosition()
	move, ok := finder.FindMove(pos)
	require.True(t, ok)
	pos = pos.MakeMove(move)
	require.True(t, finder.tree.RootState().Equal(pos))

	reply := pos.LegalMoves()[0]
	pos = pos.MakeMove(reply)
	visits := int32(0)
	children := finder.tree.Root.ChildNodes()
	for i := range children {
		if children[i].Move == reply {
			visits = children[i].Visits()
		}
	}
	require.True(t, finder.advance(pos))
	require.Equal(t, visits, finder.tree.Root.Visits())

	// Unrelated position resets the tree
	other, err := ttt.FromString("x../.o./...", ttt.Cross)
	require.NoError(t, err)
	move, ok = finder.FindMove(other)
	require.True(t, ok)
	require.Equal(t, ttt.None, other.At(move))
}

func TestComputeOutcome(t *testing.T) {
	require.Equal(t, GameOutcome{IsDraw: true}, computeOutcome(search.Draw[ttt.Player](), ttt.Cross))
	require.Equal(t, GameOutcome{FirstPlayerWon: true}, computeOutcome(search.Win(ttt.Cross), ttt.Cross))
	require.Equal(t, GameOutcome{FirstPlayerWon: false}, computeOutcome(search.Win(ttt.Circle), ttt.Cross))
}

func TestToAgentResult(t *testing.T) {
	tests := []struct {
		outcome     GameOutcome
		p1WentFirst bool
		want        VersusMatchResult
	}{
		{GameOutcome{IsDraw: true}, true, VersusDraw},
		{GameOutcome{IsDraw: true}, false, VersusDraw},
		{GameOutcome{FirstPlayerWon: true}, true, VersusPl1Win},
		{GameOutcome{FirstPlayerWon: true}, false, VersusPl2Win},
		{GameOutcome{FirstPlayerWon: false}, true, VersusPl2Win},
		{GameOutcome{FirstPlayerWon: false}, false, VersusPl1Win},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, toAgentResult(tt.outcome, tt.p1WentFirst), "%+v first=%v", tt.outcome, tt.p1WentFirst)
	}
}
