package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExplorationBonusInfiniteForUnvisited(t *testing.T) {
	require.True(t, math.IsInf(explorationBonus(pathStats{}, 5), 1))
}

func TestUCBScorePrefersHigherMeanRewardAtEqualVisits(t *testing.T) {
	strong := pathStats{visits: 4, value: 4}
	weak := pathStats{visits: 4, value: 1}
	require.Greater(t, ucbScore(strong, 10), ucbScore(weak, 10))
}

func TestExplorationTrackerRanksUnvisitedAboveVisited(t *testing.T) {
	tr := newExplorationTracker()
	tr.observe("a.go", true)
	tr.observe("a.go", false)
	// b.go was never observed directly but still needs a deterministic slot.
	ranked := tr.rank([]string{"a.go", "b.go"})
	require.Equal(t, []string{"b.go", "a.go"}, ranked)
}

func TestExplorationTrackerRankIsStableForTies(t *testing.T) {
	tr := newExplorationTracker()
	ranked := tr.rank([]string{"z.go", "a.go", "m.go"})
	require.Equal(t, []string{"z.go", "a.go", "m.go"}, ranked)
}
