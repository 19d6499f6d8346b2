package routeservice

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"github.com/sirensim/sirensim/pkg/geomath"
)

func TestFallbackRouteEndpoints(t *testing.T) {
	from := orb.Point{-0.135, 51.49}
	to := orb.Point{-0.12, 51.5}

	route := FallbackRoute(from, to, true)

	assert.Equal(t, from, route.Start())
	assert.Equal(t, to, route.End())
	assert.True(t, route.Fallback)
	assert.True(t, route.Emergency)
	assert.Empty(t, route.SegmentIDs)
	assert.GreaterOrEqual(t, len(route.Waypoints), fallbackMinSamples)
}

func TestFallbackRouteCurves(t *testing.T) {
	from := orb.Point{-0.135, 51.49}
	to := orb.Point{-0.12, 51.5}

	route := FallbackRoute(from, to, false)

	// The curve is longer than the straight chord, so the midpoint is off it.
	chord := geomath.Distance(from, to)
	assert.Greater(t, route.Distance, chord)

	// Deterministic: same endpoints, same geometry.
	again := FallbackRoute(from, to, false)
	assert.Equal(t, route.Waypoints, again.Waypoints)
}

func TestFallbackRouteDegenerate(t *testing.T) {
	point := orb.Point{-0.135, 51.49}

	route := FallbackRoute(point, point, false)

	assert.Len(t, route.Waypoints, 2)
	assert.Equal(t, point, route.Start())
	assert.Equal(t, point, route.End())
}
