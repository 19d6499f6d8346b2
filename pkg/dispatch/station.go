package dispatch

import (
	"github.com/paulmach/orb"
)

type StationType string

const (
	StationFire     StationType = "fire-station"
	StationHospital StationType = "hospital"
	StationPolice   StationType = "police-station"
)

// StationSpec is the static definition of a station type and its economy.
type StationSpec struct {
	Type        StationType
	VehicleType VehicleType

	BuildCost   int
	UpgradeCost int
	VehicleCost int
	StaffCost   int

	SlotsPerLevel int
	InitialStaff  int
}

var stationCatalog = map[StationType]StationSpec{
	StationFire: {
		Type:          StationFire,
		VehicleType:   VehicleFireEngine,
		BuildCost:     5000,
		UpgradeCost:   3000,
		VehicleCost:   1500,
		StaffCost:     300,
		SlotsPerLevel: 2,
		InitialStaff:  2,
	},
	StationHospital: {
		Type:          StationHospital,
		VehicleType:   VehicleAmbulance,
		BuildCost:     6000,
		UpgradeCost:   3500,
		VehicleCost:   1200,
		StaffCost:     350,
		SlotsPerLevel: 2,
		InitialStaff:  2,
	},
	StationPolice: {
		Type:          StationPolice,
		VehicleType:   VehiclePoliceCar,
		BuildCost:     4500,
		UpgradeCost:   2500,
		VehicleCost:   1000,
		StaffCost:     280,
		SlotsPerLevel: 3,
		InitialStaff:  2,
	},
}

type Station struct {
	ID       string
	Type     StationType
	Position orb.Point

	Level int
	Staff int

	// Roster of vehicle ids homed here. Rebuilt only when an assignment
	// actually changes, never on position-only updates.
	VehicleIDs []string
}

func (s *Station) spec() StationSpec {
	return stationCatalog[s.Type]
}

// VehicleSlots is how many vehicles the station can home at its level.
func (s *Station) VehicleSlots() int {
	return s.Level * s.spec().SlotsPerLevel
}

// Staffed reports whether the station can crew a dispatch at all.
func (s *Station) Staffed() bool {
	return s.Staff > 0
}
