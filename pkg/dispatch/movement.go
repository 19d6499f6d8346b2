package dispatch

import (
	"math"

	"github.com/sirensim/sirensim/pkg/geomath"
	"github.com/sirensim/sirensim/pkg/roadnet"
	"github.com/sirensim/sirensim/pkg/traffic"
)

const (
	// A route is sized to take roughly this long to traverse at game speed
	// 1, before the geometry/congestion factors bite.
	targetTravelSeconds = 60.0

	// Geometry factors: corners slow a vehicle down hard, long straights
	// let it run above base speed.
	sharpTurnFactor     = 0.35
	moderateTurnFactor  = 0.6
	straightAheadFactor = 1.2

	sharpTurnDegrees    = 75.0
	moderateTurnDegrees = 35.0
	longStraightMetres  = 250.0

	speedJitter = 0.03

	// Braking window before the destination, in waypoints.
	brakingWindow    = 15.0
	brakingMinFactor = 0.4

	congestionDrag = 0.65

	redLightFactor = 0.15
)

// moveVehicle advances a vehicle's fractional route cursor. Movement is
// always interpolation between two adjacent waypoints; the cursor never
// jumps and never decreases.
func (e *Engine) moveVehicle(vehicle *Vehicle, dt float64) {
	route := vehicle.Route
	if route == nil || len(route.Waypoints) < 2 {
		return
	}

	lastIndex := float64(len(route.Waypoints) - 1)
	if vehicle.Cursor >= lastIndex {
		return
	}

	baseSpeed := lastIndex / targetTravelSeconds

	factor := e.geometryFactor(vehicle)
	factor *= 1 + (e.rng.Float64()*2-1)*speedJitter
	factor *= brakingFactor(vehicle.Cursor, lastIndex)
	factor *= e.congestionFactor(vehicle)
	factor *= e.signalFactor(vehicle)

	advance := baseSpeed * dt * factor

	if advance < baseSpeed*dt*0.01 {
		vehicle.stuckSeconds += dt
	} else {
		vehicle.stuckSeconds = 0
	}

	vehicle.Cursor = math.Min(vehicle.Cursor+advance, lastIndex)
	vehicle.Position = geomath.PointAlong(route.Waypoints, vehicle.Cursor)
}

// geometryFactor inspects the bend at the upcoming waypoint: sharp corners
// slow the vehicle to about a third, gentle ones to 60%, and a long
// straight segment lets it exceed base speed.
func (e *Engine) geometryFactor(vehicle *Vehicle) float64 {
	waypoints := vehicle.Route.Waypoints
	index := int(vehicle.Cursor)

	if index > 0 && index+1 < len(waypoints) {
		angle := geomath.AngleBetween(waypoints[index-1], waypoints[index], waypoints[index+1])

		switch {
		case angle > sharpTurnDegrees:
			return sharpTurnFactor
		case angle > moderateTurnDegrees:
			return moderateTurnFactor
		}
	}

	if index+1 < len(waypoints) {
		if geomath.Distance(waypoints[index], waypoints[index+1]) > longStraightMetres {
			return straightAheadFactor
		}
	}

	return 1
}

// brakingFactor eases the vehicle down inside the last stretch of the
// route so arrivals do not look like crashes.
func brakingFactor(cursor float64, lastIndex float64) float64 {
	remaining := lastIndex - cursor
	if remaining >= brakingWindow {
		return 1
	}

	return brakingMinFactor + (1-brakingMinFactor)*(remaining/brakingWindow)
}

// congestionFactor slows the vehicle by the ambient traffic density on the
// road segment under it. Fallback geometry has no segments and reads as
// free-flowing.
func (e *Engine) congestionFactor(vehicle *Vehicle) float64 {
	route := vehicle.Route
	if len(route.SegmentIDs) == 0 || route.Emergency {
		return 1
	}

	density := e.network.Density(route.SegmentIDs[vehicle.SegmentIndex()])

	return 1 - congestionDrag*density
}

// signalFactor handles the next signalled junction on the route. Emergency
// runs preempt the light instead of braking for it; the preemption is held
// only while that junction is still ahead.
func (e *Engine) signalFactor(vehicle *Vehicle) float64 {
	route := vehicle.Route
	if len(route.NodeIDs) == 0 {
		e.clearSignalled(vehicle)
		return 1
	}

	nextIndex := int(vehicle.Cursor) + 1
	if nextIndex >= len(route.NodeIDs) {
		e.clearSignalled(vehicle)
		return 1
	}

	nodeID := route.NodeIDs[nextIndex]
	node, exists := e.network.Node(nodeID)
	if !exists || node.Type != roadnet.JunctionSignalled {
		e.clearSignalled(vehicle)
		return 1
	}

	direction := traffic.DirectionOfBearing(geomath.Bearing(vehicle.Position, node.Position))

	if route.Emergency {
		if vehicle.signalledNodeID != nodeID {
			e.clearSignalled(vehicle)
			vehicle.signalledNodeID = nodeID
		}
		e.lights.SignalEmergency(nodeID, direction)
		return 1
	}

	if !e.lights.CanProceed(nodeID, direction) {
		return redLightFactor
	}

	return 1
}

// clearSignalled lifts the vehicle's emergency preemption once the junction
// it was held for is behind it.
func (e *Engine) clearSignalled(vehicle *Vehicle) {
	if vehicle.signalledNodeID != "" {
		e.lights.ClearEmergency(vehicle.signalledNodeID)
		vehicle.signalledNodeID = ""
	}
}
