package traffic

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirensim/sirensim/pkg/pathfind"
	"github.com/sirensim/sirensim/pkg/roadnet"
)

func rerouterFixture(t *testing.T) (*roadnet.Network, *Rerouter) {
	options := roadnet.DefaultGridOptions()
	options.Rows = 4
	options.Cols = 4
	options.HighwayEvery = 0
	options.SignalledEvery = 0

	network := roadnet.GenerateGrid(options)
	monitor := NewMonitor(network)
	pathfinder := pathfind.New(network)

	return network, NewRerouter(monitor, pathfinder, network)
}

func saturate(t *testing.T, network *roadnet.Network, segmentIDs []string) {
	for _, id := range segmentIDs {
		segment, exists := network.Segment(id)
		require.True(t, exists)
		segment.SetOccupancy(segment.MaxCapacity)
	}
}

func TestShouldRerouteCooldown(t *testing.T) {
	network, rerouter := rerouterFixture(t)

	route := &roadnet.Route{SegmentIDs: []string{"s0", "s2", "s4"}}
	saturate(t, network, route.SegmentIDs)

	assert.True(t, rerouter.ShouldReroute("v1", route, 0, 10))

	// Still saturated, but inside the cooldown window.
	assert.False(t, rerouter.ShouldReroute("v1", route, 0, 12))
	assert.True(t, rerouter.ShouldReroute("v1", route, 0, 10+rerouter.Cooldown))

	// The window is per vehicle.
	assert.True(t, rerouter.ShouldReroute("v2", route, 0, 12))
}

func TestShouldRerouteGridlockAhead(t *testing.T) {
	network, rerouter := rerouterFixture(t)

	route := &roadnet.Route{SegmentIDs: []string{"s0", "s2", "s4", "s6"}}

	// Only the third segment ahead is gridlocked; the route average is clear.
	saturate(t, network, []string{"s4"})

	assert.True(t, rerouter.ShouldReroute("v1", route, 0, 0))
}

func TestShouldRerouteIgnoresFallback(t *testing.T) {
	_, rerouter := rerouterFixture(t)

	assert.False(t, rerouter.ShouldReroute("v1", &roadnet.Route{Fallback: true}, 0, 0))
	assert.False(t, rerouter.ShouldReroute("v1", nil, 0, 0))
}

func TestEvaluateAcceptsBetterRoute(t *testing.T) {
	network, rerouter := rerouterFixture(t)

	start, _ := network.Node("n0-0")
	goal, _ := network.Node("n0-3")

	current, err := rerouter.pathfinder.FindPath(start.Position, goal.Position, false)
	require.NoError(t, err)

	saturate(t, network, current.SegmentIDs)

	replacement, accepted := rerouter.Evaluate("v1", current, start.Position, 0, goal.Position, false)
	assert.True(t, accepted)
	assert.NotEqual(t, current.NodeIDs, replacement.NodeIDs)
}

func TestEvaluateComparesRemainingDistanceMidRoute(t *testing.T) {
	network, rerouter := rerouterFixture(t)

	start, _ := network.Node("n0-0")
	goal, _ := network.Node("n0-3")

	current, err := rerouter.pathfinder.FindPath(start.Position, goal.Position, false)
	require.NoError(t, err)
	require.Greater(t, len(current.Waypoints), 2)

	// One hop from the goal on an uncongested route: the alternative is the
	// identical remaining stretch, so neither the congestion clause nor the
	// distance clause may accept it.
	progress := len(current.Waypoints) - 2
	position := current.Waypoints[progress]

	replacement, accepted := rerouter.Evaluate("v1", current, position, progress, goal.Position, false)
	assert.False(t, accepted)
	assert.Same(t, current, replacement)
}

func TestRecoverStuckFallsBackToNearestNode(t *testing.T) {
	network, rerouter := rerouterFixture(t)

	position, _ := network.Node("n1-1")

	// Goal far outside the network: the full search fails, the recovery route
	// points at the nearest junction instead.
	route, err := rerouter.RecoverStuck(position.Position, orb.Point{10, 10}, false)
	require.NoError(t, err)

	assert.True(t, route.Fallback)
	assert.Equal(t, position.Position, route.Start())
}
