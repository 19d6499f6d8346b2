package roadnet

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirensim/sirensim/pkg/geomath"
)

func buildTriangle(t *testing.T) *Network {
	network := NewNetwork()

	require.NoError(t, network.AddNode(&Node{ID: "a", Position: orb.Point{-0.1, 51.5}}))
	require.NoError(t, network.AddNode(&Node{ID: "b", Position: orb.Point{-0.099, 51.5}}))
	require.NoError(t, network.AddNode(&Node{ID: "c", Position: orb.Point{-0.1, 51.501}}))

	require.NoError(t, network.AddSegment(&Segment{ID: "ab", From: "a", To: "b", Distance: 70, SpeedLimit: 50, MaxCapacity: 10}))
	require.NoError(t, network.AddSegment(&Segment{ID: "bc", From: "b", To: "c", Distance: 130, SpeedLimit: 50, MaxCapacity: 10}))

	return network
}

func TestAddSegmentValidation(t *testing.T) {
	network := buildTriangle(t)

	assert.Error(t, network.AddSegment(&Segment{ID: "bad", From: "a", To: "missing", Distance: 10}))
	assert.Error(t, network.AddSegment(&Segment{ID: "bad", From: "a", To: "b", Distance: 0}))
}

func TestDuplicateNode(t *testing.T) {
	network := buildTriangle(t)

	assert.Error(t, network.AddNode(&Node{ID: "a"}))
}

func TestAdjacency(t *testing.T) {
	network := buildTriangle(t)

	outgoing := network.Outgoing("a")
	require.Len(t, outgoing, 1)
	assert.Equal(t, "ab", outgoing[0].ID)

	segment, found := network.SegmentBetween("b", "c")
	require.True(t, found)
	assert.Equal(t, "bc", segment.ID)

	_, found = network.SegmentBetween("c", "a")
	assert.False(t, found)
}

func TestNearestNode(t *testing.T) {
	network := buildTriangle(t)

	node, err := network.NearestNode(orb.Point{-0.0991, 51.5}, 1500)
	require.NoError(t, err)
	assert.Equal(t, "b", node.ID)

	_, err = network.NearestNode(orb.Point{1, 1}, 1500)
	assert.ErrorIs(t, err, ErrNoNodeInRange)
}

func TestSegmentDensityClamped(t *testing.T) {
	segment := &Segment{ID: "s", MaxCapacity: 4}

	assert.Equal(t, 0.0, segment.Density())

	segment.SetOccupancy(2)
	assert.Equal(t, 0.5, segment.Density())

	segment.SetOccupancy(100)
	assert.Equal(t, 1.0, segment.Density())

	segment.SetOccupancy(-5)
	assert.Equal(t, 0.0, segment.Density())
}

func TestTurnRestrictionsAllows(t *testing.T) {
	restrictions := TurnRestrictions{NoLeft: true, NoUTurn: true}

	assert.True(t, restrictions.Allows(geomath.TurnStraight))
	assert.True(t, restrictions.Allows(geomath.TurnRight))
	assert.False(t, restrictions.Allows(geomath.TurnLeft))
	assert.False(t, restrictions.Allows(geomath.TurnUTurn))
}
