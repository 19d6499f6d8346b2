package geomath

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Distance returns the great-circle distance between two points in metres.
func Distance(a orb.Point, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// PolylineLength returns the summed segment lengths of a waypoint list in metres.
func PolylineLength(points []orb.Point) float64 {
	total := 0.0

	for i := 0; i < len(points)-1; i++ {
		total += geo.Distance(points[i], points[i+1])
	}

	return total
}

// Interpolate returns the point a fraction t of the way from a to b.
func Interpolate(a orb.Point, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}

// PointAlong resolves a fractional waypoint index into a position on the
// polyline. A cursor of 2.5 is halfway between waypoints 2 and 3.
func PointAlong(points []orb.Point, cursor float64) orb.Point {
	if len(points) == 0 {
		return orb.Point{}
	}

	if cursor <= 0 {
		return points[0]
	}
	if cursor >= float64(len(points)-1) {
		return points[len(points)-1]
	}

	index := int(math.Floor(cursor))
	fraction := cursor - float64(index)

	return Interpolate(points[index], points[index+1], fraction)
}

// NearestIndex returns the index of the waypoint closest to p and its
// distance in metres. Linear scan; waypoint lists are small.
func NearestIndex(points []orb.Point, p orb.Point) (int, float64) {
	bestIndex := -1
	bestDistance := math.MaxFloat64

	for i, point := range points {
		distance := geo.Distance(point, p)
		if distance < bestDistance {
			bestDistance = distance
			bestIndex = i
		}
	}

	return bestIndex, bestDistance
}

// Bearing returns the initial bearing from a to b in degrees [0, 360).
func Bearing(a orb.Point, b orb.Point) float64 {
	bearing := geo.Bearing(a, b)
	if bearing < 0 {
		bearing += 360
	}

	return bearing
}

// AngleBetween returns the unsigned angle in degrees between the direction
// vectors a->b and b->c. 0 means dead straight, 180 a full reversal.
func AngleBetween(a orb.Point, b orb.Point, c orb.Point) float64 {
	v1x, v1y := b[0]-a[0], b[1]-a[1]
	v2x, v2y := c[0]-b[0], c[1]-b[1]

	len1 := math.Hypot(v1x, v1y)
	len2 := math.Hypot(v2x, v2y)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	dot := (v1x*v2x + v1y*v2y) / (len1 * len2)
	dot = math.Max(-1, math.Min(1, dot))

	return math.Acos(dot) * 180 / math.Pi
}
