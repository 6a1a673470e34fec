package mcts

import (
	"math"
	"sync/atomic"
)

// visits/virtual loss/reward of the node, shared by all search threads.
// Every field is accessed atomically, use the methods to read them.
type NodeStats struct {
	// float64 bits of the summed rewards, including the pending virtual losses
	sum atomic.Uint64

	// Visit counter, including the playouts still running through this node
	visits atomic.Int32

	// Playouts currently passing through this node, it always meets condition: visits - inFlight >= 0.
	inFlight atomic.Int32
}

func (stats *NodeStats) addReward(reward float64) {
	for {
		old := stats.sum.Load()
		if stats.sum.CompareAndSwap(old, math.Float64bits(math.Float64frombits(old)+reward)) {
			return
		}
	}
}

// Cumulated rewards for this node
func (stats *NodeStats) Reward() float64 {
	return math.Float64frombits(stats.sum.Load())
}

// Average reward for this node, NaN when never visited
func (stats *NodeStats) AvgReward() float64 {
	visits := stats.Visits()
	if visits == 0 {
		return math.NaN()
	}
	return stats.Reward() / float64(visits)
}

// Get number of visits to this node
func (stats *NodeStats) Visits() int32 {
	return stats.visits.Load()
}

func (stats *NodeStats) InFlight() int32 {
	return stats.inFlight.Load()
}

// Get both visits and in-flight playouts (to avoid situation one of them is modified)
// returns (visits, in flight)
func (stats *NodeStats) GetVvl() (visits int32, inFlight int32) {
	for {
		visits = stats.visits.Load()
		inFlight = stats.inFlight.Load()

		// Always preserve the condition that actual visits >= 0
		if inFlight <= visits {
			return visits, inFlight
		}
	}
}

// Returns visits of the finished playouts
func (stats *NodeStats) RealVisits() int32 {
	visits, inFlight := stats.GetVvl()
	return visits - inFlight
}

// Playout enters the node: count the visit and pretend it was lost
func (stats *NodeStats) applyVirtualLoss(virtualLoss float64) {
	stats.inFlight.Add(1)
	stats.visits.Add(1)
	stats.addReward(-virtualLoss)
}

// Playout finished: replace the pending virtual loss with the actual reward
func (stats *NodeStats) revertVirtualLoss(virtualLoss, reward float64) {
	stats.addReward(virtualLoss + reward)
	stats.inFlight.Add(-1)
}
