package routeservice

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/geomath"
	"github.com/sirensim/sirensim/pkg/roadnet"
)

const (
	fallbackBulge      = 0.22
	fallbackMinSamples = 8
	fallbackMaxSamples = 32
)

// FallbackRoute generates a deterministic curved path between two points for
// when neither the routing service nor the local pathfinder can supply one.
// It is a Bézier arc rather than a straight line so the vehicle still looks
// like it is following streets. First and last waypoints equal the requested
// endpoints exactly.
func FallbackRoute(from orb.Point, to orb.Point, emergency bool) *roadnet.Route {
	separation := geomath.Distance(from, to)

	if separation < 1 {
		return &roadnet.Route{
			Waypoints: []orb.Point{from, to},
			Distance:  separation,
			Emergency: emergency,
			Fallback:  true,
		}
	}

	samples := int(separation / 50)
	samples = int(math.Max(fallbackMinSamples, math.Min(fallbackMaxSamples, float64(samples))))

	control := geomath.CurveControlPoint(from, to, fallbackBulge)
	waypoints := geomath.QuadraticBezier(from, control, to, samples)

	return &roadnet.Route{
		Waypoints: waypoints,
		Distance:  geomath.PolylineLength(waypoints),
		Emergency: emergency,
		Fallback:  true,
	}
}
