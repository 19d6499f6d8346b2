package geomath

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestPointAlong(t *testing.T) {
	points := []orb.Point{{0, 0}, {1, 0}, {1, 1}}

	assert.Equal(t, orb.Point{0, 0}, PointAlong(points, -1))
	assert.Equal(t, orb.Point{0, 0}, PointAlong(points, 0))
	assert.Equal(t, orb.Point{0.5, 0}, PointAlong(points, 0.5))
	assert.Equal(t, orb.Point{1, 0.5}, PointAlong(points, 1.5))
	assert.Equal(t, orb.Point{1, 1}, PointAlong(points, 2))
	assert.Equal(t, orb.Point{1, 1}, PointAlong(points, 99))
}

func TestNearestIndex(t *testing.T) {
	points := []orb.Point{{0, 0}, {0.01, 0}, {0.02, 0}}

	index, distance := NearestIndex(points, orb.Point{0.0095, 0.0001})

	assert.Equal(t, 1, index)
	assert.Greater(t, distance, 0.0)
}

func TestAngleBetween(t *testing.T) {
	straight := AngleBetween(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{2, 0})
	assert.InDelta(t, 0, straight, 0.001)

	rightAngle := AngleBetween(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{1, 1})
	assert.InDelta(t, 90, rightAngle, 0.001)

	reversal := AngleBetween(orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{0, 0})
	assert.InDelta(t, 180, reversal, 0.001)
}

func TestBearingRange(t *testing.T) {
	bearing := Bearing(orb.Point{0, 0}, orb.Point{-0.001, -0.001})

	assert.GreaterOrEqual(t, bearing, 0.0)
	assert.Less(t, bearing, 360.0)
}

func TestClassifyTurn(t *testing.T) {
	junction := orb.Point{1, 0}
	from := orb.Point{0, 0}

	assert.Equal(t, TurnStraight, ClassifyTurn(from, junction, orb.Point{2, 0}))
	assert.Equal(t, TurnLeft, ClassifyTurn(from, junction, orb.Point{1, 1}))
	assert.Equal(t, TurnRight, ClassifyTurn(from, junction, orb.Point{1, -1}))
	assert.Equal(t, TurnUTurn, ClassifyTurn(from, junction, orb.Point{0, 0}))
}

func TestQuadraticBezierEndpoints(t *testing.T) {
	start := orb.Point{-0.1, 51.5}
	end := orb.Point{-0.05, 51.52}
	control := CurveControlPoint(start, end, 0.2)

	points := QuadraticBezier(start, control, end, 16)

	assert.Len(t, points, 17)
	assert.Equal(t, start, points[0])
	assert.Equal(t, end, points[len(points)-1])
}

func TestCurveControlPointDeterministic(t *testing.T) {
	start := orb.Point{-0.1, 51.5}
	end := orb.Point{-0.05, 51.52}

	first := CurveControlPoint(start, end, 0.2)
	second := CurveControlPoint(start, end, 0.2)

	assert.Equal(t, first, second)

	// The control point actually bulges away from the chord.
	mid := Interpolate(start, end, 0.5)
	assert.NotEqual(t, mid, first)
}
