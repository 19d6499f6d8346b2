package dispatch

import (
	"github.com/paulmach/orb"
)

type MissionType string

const (
	MissionFire    MissionType = "fire"
	MissionMedical MissionType = "medical"
	MissionCrime   MissionType = "crime"
)

type MissionStatus int

const (
	MissionPending MissionStatus = iota
	MissionDispatched
	MissionCompleted
	MissionFailed
)

func (s MissionStatus) String() string {
	switch s {
	case MissionPending:
		return "pending"
	case MissionDispatched:
		return "dispatched"
	case MissionCompleted:
		return "completed"
	case MissionFailed:
		return "failed"
	}

	return "unknown"
}

// terminal reports whether a status permits no further transitions.
func (s MissionStatus) terminal() bool {
	return s == MissionCompleted || s == MissionFailed
}

// MissionSpec is the static definition of a mission type.
type MissionSpec struct {
	Type             MissionType
	RequiredStations []StationType
	TimeLimit        float64 // minutes to respond before the mission fails
	WorkDuration     float64 // minutes on scene
	Reward           int
	Penalty          int
}

var missionCatalog = map[MissionType]MissionSpec{
	MissionFire: {
		Type:             MissionFire,
		RequiredStations: []StationType{StationFire},
		TimeLimit:        30,
		WorkDuration:     5,
		Reward:           1500,
		Penalty:          800,
	},
	MissionMedical: {
		Type:             MissionMedical,
		RequiredStations: []StationType{StationHospital},
		TimeLimit:        20,
		WorkDuration:     4,
		Reward:           1000,
		Penalty:          600,
	},
	MissionCrime: {
		Type:             MissionCrime,
		RequiredStations: []StationType{StationPolice},
		TimeLimit:        25,
		WorkDuration:     3,
		Reward:           1200,
		Penalty:          700,
	},
}

type Mission struct {
	ID       string
	Type     MissionType
	Position orb.Point

	Status MissionStatus

	Reward  int
	Penalty int

	TimeLimit     float64
	TimeRemaining float64

	RequiredStations     []StationType
	DispatchedVehicleIDs []string

	WorkDuration float64

	CreatedAt  float64 // simulated minutes
	FinishedAt float64
}

func newMission(id string, spec MissionSpec, position orb.Point, createdAt float64) *Mission {
	return &Mission{
		ID:               id,
		Type:             spec.Type,
		Position:         position,
		Status:           MissionPending,
		Reward:           spec.Reward,
		Penalty:          spec.Penalty,
		TimeLimit:        spec.TimeLimit,
		TimeRemaining:    spec.TimeLimit,
		RequiredStations: spec.RequiredStations,
		WorkDuration:     spec.WorkDuration,
		CreatedAt:        createdAt,
	}
}

// transition enforces the monotone status order: a mission never moves
// backwards and a terminal status is final.
func (m *Mission) transition(to MissionStatus) bool {
	if m.Status.terminal() || to <= m.Status {
		return false
	}

	m.Status = to

	return true
}
