package dispatch

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

func TestBrakingFactor(t *testing.T) {
	// Outside the braking window the factor is neutral.
	assert.Equal(t, 1.0, brakingFactor(0, 100))

	// Easing down towards the destination, never below the floor.
	assert.Less(t, brakingFactor(95, 100), 1.0)
	assert.GreaterOrEqual(t, brakingFactor(99.9, 100), brakingMinFactor)
	assert.InDelta(t, brakingMinFactor, brakingFactor(100, 100), 0.001)
}

func TestAmbientTrafficCirculates(t *testing.T) {
	scenario := testScenario()
	scenario.AmbientCars = 3

	engine := newTestEngine(t, scenario)
	require.Len(t, engine.ambient, 3)

	// Every car starts with some route to follow; with the routing service
	// unreachable these are generated fallbacks.
	for _, car := range engine.ambient {
		require.NotNil(t, car.route)
		assert.True(t, car.route.Fallback)
	}

	car := engine.ambient[0]
	before := car.cursor

	engine.Tick(1000)
	assert.Greater(t, car.cursor, before)
}

func lightOverridden(engine *Engine, nodeID string) bool {
	for _, state := range engine.lights.States() {
		if state.NodeID == nodeID {
			return state.Override
		}
	}

	return false
}

func TestEmergencyPreemptionLiftsAfterJunction(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	states := engine.lights.States()
	require.NotEmpty(t, states)

	nodeID := states[0].NodeID
	node, exists := engine.network.Node(nodeID)
	require.True(t, exists)

	approach := orb.Point{node.Position[0] - 0.002, node.Position[1]}
	beyond := orb.Point{node.Position[0] + 0.002, node.Position[1]}

	vehicle := &Vehicle{
		ID:       "unit",
		Status:   VehicleDispatched,
		Position: approach,
		Route: &roadnet.Route{
			Waypoints: []orb.Point{approach, node.Position, beyond},
			NodeIDs:   []string{"", nodeID, ""},
			Emergency: true,
		},
	}

	// Approaching the junction holds the preemption and never brakes.
	assert.Equal(t, 1.0, engine.signalFactor(vehicle))
	assert.True(t, lightOverridden(engine, nodeID))

	// Once the junction is behind the vehicle the override lifts.
	vehicle.Cursor = 1.5
	engine.signalFactor(vehicle)
	assert.False(t, lightOverridden(engine, nodeID))
	assert.Empty(t, vehicle.signalledNodeID)
}

func TestAmbientTrafficFeedsCongestion(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	// Park a synthetic ambient car on a known segment and observe.
	segment, exists := engine.network.Segment("s0")
	require.True(t, exists)

	engine.ambient = append(engine.ambient, &ambientCar{
		id:    "ambient-test",
		route: &roadnet.Route{SegmentIDs: []string{segment.ID}},
	})

	engine.observeCongestion()
	assert.Equal(t, 1, segment.Occupancy())
}
