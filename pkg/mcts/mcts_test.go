package mcts

import (
	"fmt"
	"os"
	"testing"
)

// Counting game: players alternately add 1, 2 or 3 to the counter,
// whoever reaches 'goal' wins. Positions with counter%4 == 1 are lost for the player to move.
const goal = 21

type Move int

type countState struct {
	total int
	turn  int
}

func (s countState) CurrentPlayer() int { return s.turn }
func (s countState) IsTerminal() bool   { return s.total >= goal }
func (s countState) Hash() uint64       { return uint64(s.total)*2 + uint64(s.turn) }

func (s countState) Equal(o countState) bool {
	return s == o
}

func (s countState) AvailableMoves() []Move {
	if s.IsTerminal() {
		return nil
	}
	moves := make([]Move, 0, 3)
	for m := 1; m <= 3 && s.total+m <= goal; m++ {
		moves = append(moves, Move(m))
	}
	return moves
}

func (s countState) MakeMove(m Move) countState {
	return countState{total: s.total + int(m), turn: 1 - s.turn}
}

type countEval struct {
	done   bool
	winner int
}

type countEvaluator struct{}

func (e *countEvaluator) EvaluateNewState(s countState, moves []Move) ([]MoveEvaluation, countEval) {
	if s.IsTerminal() {
		// The player who just moved reached the goal
		return nil, countEval{done: true, winner: 1 - s.turn}
	}
	return make([]MoveEvaluation, len(moves)), countEval{}
}

func (e *countEvaluator) EvaluateExistingState(s countState, existing countEval) countEval {
	return existing
}

func (e *countEvaluator) InterpretForPlayer(eval countEval, player int) float64 {
	if !eval.done {
		return 0
	}
	if eval.winner == player {
		return 1
	}
	return -1
}

type countMCTS = MCTS[countState, Move, int, countEval]

func newCountMCTS(total int, table TranspositionTable[countState, countEval]) *countMCTS {
	return NewMCTS[countState, Move, int, countEval](
		countState{total: total}, &countEvaluator{},
		DefaultUCT[Move, countEval](), table, 1,
	)
}

func TestMain(m *testing.M) {
	SetSeedGeneratorFn(func() int64 {
		return 42
	})
	fmt.Printf("Using seed %d\n", SeedGeneratorFn())

	os.Exit(m.Run())
}

func GetCountMCTS(threads int) *countMCTS {
	tree := newCountMCTS(0, NewApproxTable[countState, countEval](64))
	tree.SetLimits(DefaultLimits().SetCycles(10000).SetThreads(threads))
	tree.SearchMultiThreaded()
	tree.Synchronize()
	return tree
}

// Tests checking if the search is working correctly

func TestSearchRunsExactCycles(t *testing.T) {
	for _, threads := range []int{1, 4} {
		tree := GetCountMCTS(threads)

		if tree.Cycles() != 10000 {
			t.Fatalf("threads=%d: expected 10000 cycles, got %d", threads, tree.Cycles())
		}
		if tree.Root.Visits() != 10000 {
			t.Fatalf("threads=%d: expected 10000 root visits, got %d", threads, tree.Root.Visits())
		}

		sum := int32(0)
		for i := range tree.Root.Children {
			child := &tree.Root.Children[i]
			if child.InFlight() != 0 {
				t.Fatalf("threads=%d: child %v still has %d playouts in flight", threads, child.Move, child.InFlight())
			}
			sum += child.RealVisits()
		}
		if sum != 10000 {
			t.Fatalf("threads=%d: children visits sum to %d", threads, sum)
		}
		if tree.StopReason()&StopCycles == 0 {
			t.Fatalf("threads=%d: expected cycle stop reason, got %v", threads, tree.StopReason())
		}
		if tree.IsSearching() {
			t.Fatal("search still marked as running")
		}
	}
}

func TestFindsWinningMove(t *testing.T) {
	// From 14 the only winning move is +3, leaving 17
	for _, threads := range []int{1, 4} {
		tree := newCountMCTS(14, NewApproxTable[countState, countEval](256))
		tree.SetLimits(DefaultLimits().SetCycles(20000).SetThreads(threads))

		if move := tree.Search(); move != 3 {
			t.Fatalf("threads=%d: expected move 3, got %v (score %.2f)", threads, move, tree.RootScore())
		}
		if tree.RootScore() <= 0 {
			t.Fatalf("threads=%d: winning position scored %.2f", threads, tree.RootScore())
		}
	}
}

func TestTranspositionsReuseEvaluations(t *testing.T) {
	table := NewApproxTable[countState, countEval](1024)
	tree := newCountMCTS(0, table)
	tree.SetLimits(DefaultLimits().SetCycles(5000).SetThreads(2))
	tree.Search()

	if table.Hits() == 0 {
		t.Fatalf("expected transposition hits, misses=%d", table.Misses())
	}

	// Same search without a table, every expansion is evaluated from scratch
	plain := NewMCTS[countState, Move, int, countEval](
		countState{}, &countEvaluator{}, DefaultUCT[Move, countEval](), nil, 1,
	)
	plain.SetLimits(DefaultLimits().SetCycles(5000))
	plain.Search()
	if plain.Cycles() != 5000 {
		t.Fatalf("expected 5000 cycles without a table, got %d", plain.Cycles())
	}
}

func TestTerminalRoot(t *testing.T) {
	tree := newCountMCTS(goal, nil)
	tree.SetLimits(DefaultLimits().SetCycles(100).SetThreads(2))
	tree.Search()

	if tree.Cycles() != 0 {
		t.Fatalf("expected no cycles on a finished game, got %d", tree.Cycles())
	}
	if _, ok := tree.BestMove(); ok {
		t.Fatal("finished game should have no best move")
	}
	if !tree.Root.Terminal() {
		t.Fatal("root should be flagged terminal")
	}
}

func TestSearchWithListener(t *testing.T) {
	tree := newCountMCTS(0, NewApproxTable[countState, countEval](64))
	tree.SetLimits(DefaultLimits().SetCycles(4000).SetMultiPv(2))

	depthCalls, cycleCalls, stopCalls := 0, 0, 0
	listener := NewStatsListener[Move]()
	listener.
		OnDepth(func(stats ListenerTreeStats[Move]) {
			depthCalls++
		}).
		OnCycle(func(stats ListenerTreeStats[Move]) {
			cycleCalls++
		}).
		SetCycleInterval(500).
		OnStop(func(stats ListenerTreeStats[Move]) {
			stopCalls++
			if len(stats.Lines) != 2 {
				t.Errorf("expected 2 lines, got %d", len(stats.Lines))
			}
			t.Logf("stop reason %s after %d cycles, maxdepth %d cps %d pv %v",
				stats.StopReason, stats.Cycles, stats.Maxdepth, stats.Cps, stats.Lines[0].Moves)
		})

	tree.SetListener(listener)
	tree.Search()

	if depthCalls == 0 || cycleCalls == 0 {
		t.Fatalf("listener not called: depth=%d cycle=%d", depthCalls, cycleCalls)
	}
	if stopCalls != 1 {
		t.Fatalf("expected exactly one stop call, got %d", stopCalls)
	}
}

// Actual unit tests for MCTS components

func TestMakeMove(t *testing.T) {
	tree := GetCountMCTS(2)

	size := tree.Size()
	pv, _, _ := tree.Pv(tree.Root, BestChildMostVisits, false)
	if len(pv) <= 2 {
		t.Fatalf("No pv found after search, %v", pv)
	}

	var childVisits int32
	for i := range tree.Root.Children {
		if tree.Root.Children[i].Move == pv[0] {
			childVisits = tree.Root.Children[i].Visits()
		}
	}

	if !tree.MakeMove(pv[0]) {
		t.Fatalf("MakeMove(%v) failed", pv[0])
	}
	if tree.Root.Visits() != childVisits {
		t.Fatalf("Subtree not kept, root visits %d, want %d", tree.Root.Visits(), childVisits)
	}
	if tree.RootState().total != int(pv[0]) || tree.RootState().turn != 1 {
		t.Fatalf("Root state not updated: %+v", tree.RootState())
	}
	if tree.Size() >= size {
		t.Fatalf("Tree size not decreased after MakeMove, was %d, now %d", size, tree.Size())
	}
	if int(tree.Size()) != tree.Count() {
		t.Fatalf("Size %d doesn't match counted nodes %d", tree.Size(), tree.Count())
	}

	newPv, _, _ := tree.Pv(tree.Root, BestChildMostVisits, false)
	if len(newPv) == 0 || newPv[0] != pv[1] {
		t.Fatalf("PV not preserved after MakeMove, was %v, now %v", pv, newPv)
	}

	if tree.MakeMove(Move(7)) {
		t.Fatal("MakeMove with an illegal move should fail")
	}

	// Search continues from the new root
	tree.SetLimits(DefaultLimits().SetCycles(1000))
	tree.Search()
	if tree.Cycles() != 1000 {
		t.Fatalf("expected 1000 cycles after MakeMove, got %d", tree.Cycles())
	}
}

func TestReset(t *testing.T) {
	tree := GetCountMCTS(1)
	tree.Reset(countState{total: 10, turn: 1})

	if tree.Size() != 4 {
		t.Fatalf("expected root with 3 children, size %d", tree.Size())
	}
	if tree.Root.Visits() != 0 {
		t.Fatalf("expected fresh root, got %d visits", tree.Root.Visits())
	}
}

func TestMultiPvSortedByVisits(t *testing.T) {
	tree := newCountMCTS(0, nil)
	tree.SetLimits(DefaultLimits().SetCycles(3000).SetMultiPv(3))
	tree.Search()

	lines := tree.MultiPv(BestChildMostVisits)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i := 1; i < len(lines); i++ {
		if lines[i].Root.RealVisits() > lines[i-1].Root.RealVisits() {
			t.Fatalf("lines not sorted by visits: %d > %d", lines[i].Root.RealVisits(), lines[i-1].Root.RealVisits())
		}
	}
	if lines[0].Pv[0] != tree.RootMove() {
		t.Fatalf("first line %v doesn't start with the root move %v", lines[0].Pv, tree.RootMove())
	}
}

func TestVirtualLossIsReverted(t *testing.T) {
	var stats NodeStats
	stats.applyVirtualLoss(3)
	if stats.Visits() != 1 || stats.InFlight() != 1 || stats.Reward() != -3 {
		t.Fatalf("unexpected stats after virtual loss: %d %d %.2f", stats.Visits(), stats.InFlight(), stats.Reward())
	}

	stats.revertVirtualLoss(3, 0.5)
	if stats.RealVisits() != 1 || stats.InFlight() != 0 || stats.Reward() != 0.5 {
		t.Fatalf("unexpected stats after revert: %d %d %.2f", stats.RealVisits(), stats.InFlight(), stats.Reward())
	}
}

func TestApproxTable(t *testing.T) {
	table := NewApproxTable[countState, countEval](8)
	a := countState{total: 3, turn: 1}
	b := countState{total: 4, turn: 1}

	if _, _, ok := table.Lookup(a.Hash(), a); ok {
		t.Fatal("empty table hit")
	}

	table.Insert(a.Hash(), a, nil, countEval{winner: 1})
	if _, eval, ok := table.Lookup(a.Hash(), a); !ok || eval.winner != 1 {
		t.Fatalf("expected hit for %+v, got %v %+v", a, ok, eval)
	}

	// Same slot, different state
	if _, _, ok := table.Lookup(a.Hash(), b); ok {
		t.Fatal("lookup matched a different state")
	}

	// Colliding insert replaces the entry
	collide := countState{total: 7, turn: 1} // 15 % 8 == 7 % 8
	table.Insert(collide.Hash(), collide, nil, countEval{})
	if _, _, ok := table.Lookup(a.Hash(), a); ok {
		t.Fatal("entry should have been replaced")
	}

	table.Clear()
	if _, _, ok := table.Lookup(collide.Hash(), collide); ok {
		t.Fatal("hit after Clear")
	}
}
