package geomath

import (
	"math"

	"github.com/paulmach/orb"
)

// QuadraticBezier samples a quadratic Bézier curve from start to end through
// the given control point, returning samples+1 waypoints. The first and last
// waypoints equal start and end exactly.
func QuadraticBezier(start orb.Point, control orb.Point, end orb.Point, samples int) []orb.Point {
	if samples < 1 {
		samples = 1
	}

	points := make([]orb.Point, 0, samples+1)

	for i := 0; i <= samples; i++ {
		t := float64(i) / float64(samples)
		mt := 1 - t

		points = append(points, orb.Point{
			mt*mt*start[0] + 2*mt*t*control[0] + t*t*end[0],
			mt*mt*start[1] + 2*mt*t*control[1] + t*t*end[1],
		})
	}

	// Guard against float accumulation on the endpoints.
	points[0] = start
	points[len(points)-1] = end

	return points
}

// CurveControlPoint returns a control point offset perpendicular from the
// midpoint of start->end by bulge (a fraction of the endpoint separation).
// The offset side is chosen deterministically from the endpoints, so the
// same request always produces the same curve.
func CurveControlPoint(start orb.Point, end orb.Point, bulge float64) orb.Point {
	midX := (start[0] + end[0]) / 2
	midY := (start[1] + end[1]) / 2

	dx := end[0] - start[0]
	dy := end[1] - start[1]

	length := math.Hypot(dx, dy)
	if length == 0 {
		return orb.Point{midX, midY}
	}

	// Perpendicular unit vector.
	px, py := -dy/length, dx/length

	side := 1.0
	if math.Mod(math.Abs(start[0]+start[1]+end[0]+end[1])*1e4, 2) >= 1 {
		side = -1.0
	}

	offset := length * bulge * side

	return orb.Point{midX + px*offset, midY + py*offset}
}
