package mcts

// Other types, which didn't fit to MCTS or Node files

type MoveLike comparable
type BestChildPolicy int
type SeedGeneratorFnType func() int64

// Prior assigned to a move when its parent is evaluated. UCT ignores it,
// it's kept on the nodes for policies that want to bias the selection.
type MoveEvaluation float64
