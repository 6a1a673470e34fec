package chess

import (
	"fmt"
	"strings"

	dragon "github.com/IlikeChooros/dragontoothmg"
	"github.com/IlikeChooros/go-gametree/pkg/config"
	"github.com/IlikeChooros/go-gametree/pkg/mcts"
	"github.com/IlikeChooros/go-gametree/pkg/search"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

type budgetKind uint8

const (
	budgetDepth budgetKind = iota
	budgetPlayouts
)

// How much searching a single move may take: a ply depth for the
// fixed-depth engine, or a playout count for the tree search
type Budget struct {
	kind budgetKind
	n    int
}

func DepthBudget(depth int) Budget {
	return Budget{kind: budgetDepth, n: depth}
}

func PlayoutBudget(playouts int) Budget {
	return Budget{kind: budgetPlayouts, n: playouts}
}

func (b Budget) String() string {
	if b.kind == budgetPlayouts {
		return fmt.Sprintf("%d playouts", b.n)
	}
	return fmt.Sprintf("depth %d", b.n)
}

// Chooses moves for one side with the engine described by a config
type Finder struct {
	cfg      config.Config
	listener *mcts.StatsListener[dragon.Move]
}

func NewFinder(cfg config.Config) (*Finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Finder{cfg: cfg}, nil
}

// Receives the tree statistics of playout searches
func (f *Finder) SetListener(listener mcts.StatsListener[dragon.Move]) {
	f.listener = &listener
}

var defaultFinder = &Finder{cfg: config.Default()}

// Best move for 'color' in 'game', false if there is nothing to play.
// Depth budgets run alpha-beta, playout budgets the tree search.
func FindBestMove(game *Game, budget Budget, workers int, color Color) (dragon.Move, bool) {
	return defaultFinder.FindBestMove(game, budget, workers, color)
}

func (f *Finder) Name() string {
	return fmt.Sprintf("%s(%s, %s)", f.cfg.Engine, f.budget(), f.cfg.Variant)
}

// The configured budget
func (f *Finder) budget() Budget {
	if f.cfg.Engine == config.EngineMCTS {
		return PlayoutBudget(f.cfg.Playouts)
	}
	return DepthBudget(f.cfg.Depth)
}

// Move for the side to move, with the configured budget and workers
func (f *Finder) FindMove(game *Game) (dragon.Move, bool) {
	return f.FindBestMove(game, f.budget(), f.cfg.Workers, game.CurrentPlayer())
}

func (f *Finder) FindBestMove(game *Game, budget Budget, workers int, color Color) (dragon.Move, bool) {
	if budget.n <= 0 || game.IsTerminal() {
		return 0, false
	}

	evaluator := f.evaluator(game, color)
	if budget.kind == budgetPlayouts {
		return f.playouts(game, evaluator, budget.n, workers)
	}

	searcher := search.New[*Game, dragon.Move, Color, Evaluation](evaluator, search.WithWorkers(workers))
	var res search.Result[dragon.Move, Evaluation]
	var ok bool
	if f.cfg.Engine == config.EngineMiniMax {
		res, ok = searcher.MiniMax(game, budget.n)
	} else {
		res, ok = searcher.AlphaBeta(game, budget.n)
	}

	if ok {
		log.Debug().
			Str("move", moveString(res.Move)).
			Stringer("eval", res.Evaluation).
			Int64("nodes", searcher.Stats().Nodes).
			Msg("chess search")
	}
	return res.Move, ok
}

func (f *Finder) evaluator(game *Game, color Color) *Evaluator {
	opts := []Option{}
	if f.cfg.Variant == "refined" {
		opts = append(opts, WithVariant(Refined))
	}
	switch f.cfg.Phase {
	case "endgame":
		opts = append(opts, WithPhase(EndGame))
	case "auto":
		opts = append(opts, WithPhase(DetectPhase(game.board)))
	}
	if f.cfg.MobilityWeight != nil {
		opts = append(opts, WithMobilityWeight(*f.cfg.MobilityWeight))
	}
	return NewEvaluator(color, opts...)
}

// The table only lives for this call
func (f *Finder) playouts(game *Game, evaluator *Evaluator, playouts, workers int) (dragon.Move, bool) {
	var table mcts.TranspositionTable[*Game, Evaluation]
	if f.cfg.TableSize > 0 {
		table = mcts.NewApproxTable[*Game, Evaluation](f.cfg.TableSize)
	}

	tree := mcts.NewMCTS[*Game, dragon.Move, Color, Evaluation](
		game,
		NewMCTSEvaluator(evaluator, f.cfg.Scale),
		mcts.NewUCT[dragon.Move, Evaluation](f.cfg.Exploration),
		table,
		f.cfg.VirtualLoss,
	)
	tree.SetLimits(mcts.DefaultLimits().SetCycles(uint32(playouts)).SetThreads(workers))
	if f.listener != nil {
		tree.SetListener(*f.listener)
	}
	tree.Search()

	move, ok := tree.BestMove()
	if ok {
		pv, _, _ := tree.Pv(tree.Root, mcts.BestChildMostVisits, false)
		log.Debug().
			Str("move", moveString(move)).
			Float64("score", tree.RootScore()).
			Str("pv", FormatMoves(pv)).
			Msg("chess tree search")
	}
	return move, ok
}

// Moves in UCI notation, separated by spaces
func FormatMoves(moves []dragon.Move) string {
	return strings.Join(lo.Map(moves, func(m dragon.Move, _ int) string {
		return moveString(m)
	}), " ")
}

func moveString(m dragon.Move) string {
	return m.String()
}
