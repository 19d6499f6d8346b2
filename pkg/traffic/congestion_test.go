package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

func TestLevelOf(t *testing.T) {
	assert.Equal(t, LevelClear, LevelOf(0))
	assert.Equal(t, LevelClear, LevelOf(0.29))
	assert.Equal(t, LevelModerate, LevelOf(0.3))
	assert.Equal(t, LevelModerate, LevelOf(0.59))
	assert.Equal(t, LevelHeavy, LevelOf(0.6))
	assert.Equal(t, LevelHeavy, LevelOf(0.84))
	assert.Equal(t, LevelGridlock, LevelOf(0.85))
	assert.Equal(t, LevelGridlock, LevelOf(1))
}

func observerNetwork(t *testing.T) *roadnet.Network {
	options := roadnet.DefaultGridOptions()
	options.Rows = 2
	options.Cols = 2

	return roadnet.GenerateGrid(options)
}

func TestObserveCountsAndDecays(t *testing.T) {
	network := observerNetwork(t)
	monitor := NewMonitor(network)

	segment, exists := network.Segment("s0")
	require.True(t, exists)

	route := &roadnet.Route{SegmentIDs: []string{"s0"}}

	monitor.Observe([]*roadnet.Route{route, route, route})
	assert.Equal(t, 3, segment.Occupancy())
	assert.Equal(t, []int{3}, monitor.History("s0"))

	// Nobody on the segment any more: occupancy decays straight to zero.
	monitor.Observe(nil)
	assert.Equal(t, 0, segment.Occupancy())
	assert.Equal(t, []int{3, 0}, monitor.History("s0"))
}

func TestObserveHistoryBounded(t *testing.T) {
	network := observerNetwork(t)
	monitor := NewMonitor(network)

	route := &roadnet.Route{SegmentIDs: []string{"s0"}}

	for i := 0; i < historyWindow*2; i++ {
		monitor.Observe([]*roadnet.Route{route})
	}

	assert.Len(t, monitor.History("s0"), historyWindow)
}

func TestPredictRoute(t *testing.T) {
	network := observerNetwork(t)
	monitor := NewMonitor(network)

	// Fallback geometry carries no segments and reads as clear.
	assert.Equal(t, LevelClear.Score(), monitor.PredictRoute(&roadnet.Route{Fallback: true}))
	assert.Equal(t, LevelClear.Score(), monitor.PredictRoute(nil))

	segment, _ := network.Segment("s0")
	segment.SetOccupancy(segment.MaxCapacity)

	prediction := monitor.PredictRoute(&roadnet.Route{SegmentIDs: []string{"s0"}})
	assert.Equal(t, LevelGridlock.Score(), prediction)
}
