package search

import "math"

// explorationWeight mirrors the UCB1 constant sidecar's mcts::ActionNode uses
// when scoring candidate expansions (sqrt(2)).
const explorationWeight = 1.41421356237

// pathStats tracks one candidate file's visit/reward history across the
// iterate-until-confident loop, grounded on mcts::ActionNode's visits/value
// pair: a path is "visited" once per iteration a search request surfaces it,
// and its value accumulates the identify step's keep/drop verdicts.
type pathStats struct {
	visits int
	value  float64
}

func (s pathStats) record(kept bool) pathStats {
	s.visits++
	if kept {
		s.value++
	}
	return s
}

// meanReward mirrors ActionNode::calculate_mean_reward: average reward per
// visit, zero for a path that was never visited.
func (s pathStats) meanReward() float64 {
	if s.visits == 0 {
		return 0
	}
	return s.value / float64(s.visits)
}

// explorationBonus mirrors ActionNode::calculate_exploration: the UCB1
// exploration term, infinite for an unvisited path so every candidate is
// tried at least once before any one of them is favored twice.
func explorationBonus(s pathStats, totalVisits int) float64 {
	if s.visits == 0 {
		return math.Inf(1)
	}
	return explorationWeight * math.Sqrt(math.Log(float64(totalVisits))/float64(s.visits))
}

// ucbScore ranks a path the way mcts::ActionNode ranks children for
// expansion: mean reward plus the exploration bonus.
func ucbScore(s pathStats, totalVisits int) float64 {
	return s.meanReward() + explorationBonus(s, totalVisits)
}

// explorationTracker accumulates pathStats across every iteration of one
// Loop.Run call and exposes a deterministic, reward-weighted ordering of the
// selected paths for the final outcome.
type explorationTracker struct {
	stats       map[string]pathStats
	totalVisits int
}

func newExplorationTracker() *explorationTracker {
	return &explorationTracker{stats: make(map[string]pathStats)}
}

func (t *explorationTracker) observe(path string, kept bool) {
	t.stats[path] = t.stats[path].record(kept)
	t.totalVisits++
}

// rank orders paths by descending UCB score; paths with equal scores keep
// their input order (stable insertion sort).
func (t *explorationTracker) rank(paths []string) []string {
	total := t.totalVisits
	if total < 1 {
		total = 1
	}
	out := append([]string(nil), paths...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			a, b := out[j-1], out[j]
			if ucbScore(t.stats[a], total) >= ucbScore(t.stats[b], total) {
				break
			}
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
