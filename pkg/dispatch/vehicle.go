package dispatch

import (
	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

type VehicleType string

const (
	VehicleFireEngine VehicleType = "fire-engine"
	VehicleAmbulance  VehicleType = "ambulance"
	VehiclePoliceCar  VehicleType = "police-car"
)

type VehicleStatus int

const (
	VehicleIdle VehicleStatus = iota
	VehiclePreparing
	VehicleDispatched
	VehicleWorking
	VehicleReturning
)

func (s VehicleStatus) String() string {
	switch s {
	case VehicleIdle:
		return "idle"
	case VehiclePreparing:
		return "preparing"
	case VehicleDispatched:
		return "dispatched"
	case VehicleWorking:
		return "working"
	case VehicleReturning:
		return "returning"
	}

	return "unknown"
}

type Vehicle struct {
	ID        string
	Type      VehicleType
	StationID string

	Status   VehicleStatus
	Position orb.Point

	// Route plus a fractional waypoint cursor. The cursor only ever grows
	// while a route is active; a replacement route resets it to the nearest
	// point of the new geometry.
	Route  *roadnet.Route
	Cursor float64

	MissionID     string
	WorkRemaining float64 // simulated minutes left at the incident

	// PendingRequestID ties an outstanding route request to this vehicle.
	// An arriving resolution is applied only when it still matches.
	PendingRequestID string

	stuckSeconds float64

	// signalledNodeID is the junction currently held by this vehicle's
	// emergency preemption, if any.
	signalledNodeID string
}

// Moving reports whether the vehicle is travelling along a route.
func (v *Vehicle) Moving() bool {
	return (v.Status == VehicleDispatched || v.Status == VehicleReturning) && v.Route != nil
}

// Available reports whether the vehicle can be assigned to a mission.
func (v *Vehicle) Available() bool {
	return v.Status == VehicleIdle
}

// SegmentIndex is the index of the road segment under the cursor, used by
// the rerouting engine to look ahead of the vehicle.
func (v *Vehicle) SegmentIndex() int {
	if v.Route == nil || len(v.Route.SegmentIDs) == 0 {
		return 0
	}

	index := int(v.Cursor)
	if index >= len(v.Route.SegmentIDs) {
		index = len(v.Route.SegmentIDs) - 1
	}

	return index
}

// clearAssignment resets the vehicle to idle at its station.
func (v *Vehicle) clearAssignment(home orb.Point) {
	v.Status = VehicleIdle
	v.Position = home
	v.Route = nil
	v.Cursor = 0
	v.MissionID = ""
	v.WorkRemaining = 0
	v.PendingRequestID = ""
}
