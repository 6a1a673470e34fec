package mcts

import "time"

// Main thread id, which has some privileges, like calling the listener during the search
const mainThreadId = 0

// Exploration parameter used by DefaultUCT, higher values increase exploration
// while lower values increase exploitation. Must be tuned together with the scale
// of the evaluator's rewards.
var ExplorationParam float64 = 0.75

// Set the exploration parameter used by DefaultUCT
func SetExplorationParam(c float64) {
	ExplorationParam = max(0.0, c)
}

var SeedGeneratorFn SeedGeneratorFnType = func() int64 {
	return time.Now().UnixNano()
}

// Set custom seed generator function for random number generators in MCTS,
// by default uses current time in nanoseconds
func SetSeedGeneratorFn(f SeedGeneratorFnType) {
	if f != nil {
		SeedGeneratorFn = f
	}
}

const (
	// When choosing the best child, choose the one with most visits,
	// this is the go-to method for MCTS
	BestChildMostVisits BestChildPolicy = iota

	// Experimental: choose the child with the best average reward
	BestChildWinRate
)
