package traffic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

func signalledNetwork() *roadnet.Network {
	options := roadnet.DefaultGridOptions()
	options.Rows = 3
	options.Cols = 3
	options.SignalledEvery = 1 // every junction gets a light

	return roadnet.GenerateGrid(options)
}

func TestLightPhaseCycle(t *testing.T) {
	light := &Light{NodeID: "n", CycleTime: 60}

	direction, phase := light.current()
	assert.Equal(t, DirectionNS, direction)
	assert.Equal(t, PhaseGreen, phase)

	// Cross half the cycle: the other direction goes green.
	light.advance(30)
	direction, phase = light.current()
	assert.Equal(t, DirectionEW, direction)
	assert.Equal(t, PhaseGreen, phase)

	// Yellow window of the EW half.
	light.advance(16)
	_, phase = light.current()
	assert.Equal(t, PhaseYellow, phase)

	// Wraps around to NS green.
	light.advance(14)
	direction, phase = light.current()
	assert.Equal(t, DirectionNS, direction)
	assert.Equal(t, PhaseGreen, phase)
}

func TestCanProceed(t *testing.T) {
	network := signalledNetwork()
	manager := NewManager(network, 7)

	require.Greater(t, manager.LightCount(), 0)

	// Junctions without a light never block.
	assert.True(t, manager.CanProceed("not-a-junction", DirectionNS))

	// At any instant, the inactive direction of a light is red.
	for _, state := range manager.States() {
		if state.Phase == PhaseGreen || state.Phase == PhaseYellow {
			assert.False(t, manager.CanProceed(state.NodeID, state.Direction.Other()))
		}
	}
}

func TestSignalEmergencyFlips(t *testing.T) {
	manager := &Manager{
		lights: map[string]*Light{
			"n1-1": {NodeID: "n1-1", CycleTime: 60},
		},
		TimeMultiplier: 1,
	}

	// NS is green; an emergency approaching on EW flips the light at once.
	require.False(t, manager.CanProceed("n1-1", DirectionEW))

	manager.SignalEmergency("n1-1", DirectionEW)

	direction, phase, exists := manager.State("n1-1")
	require.True(t, exists)
	assert.Equal(t, DirectionEW, direction)
	assert.Equal(t, PhaseGreen, phase)
	assert.True(t, manager.CanProceed("n1-1", DirectionEW))
	assert.False(t, manager.CanProceed("n1-1", DirectionNS))

	// Signalling the already-active direction is a no-op.
	manager.SignalEmergency("n1-1", DirectionEW)
	direction, _, _ = manager.State("n1-1")
	assert.Equal(t, DirectionEW, direction)

	manager.ClearEmergency("n1-1")
}

func TestManagerDeterministicBySeed(t *testing.T) {
	network := signalledNetwork()

	first := NewManager(network, 42).States()
	second := NewManager(network, 42).States()

	assert.Equal(t, first, second)
}

func TestDirectionOfBearing(t *testing.T) {
	assert.Equal(t, DirectionNS, DirectionOfBearing(0))
	assert.Equal(t, DirectionEW, DirectionOfBearing(90))
	assert.Equal(t, DirectionNS, DirectionOfBearing(180))
	assert.Equal(t, DirectionEW, DirectionOfBearing(270))
	assert.Equal(t, DirectionNS, DirectionOfBearing(359))
}