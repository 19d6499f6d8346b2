package dispatch

import (
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"

	"github.com/sirensim/sirensim/pkg/util"
)

// Command operations, the mutation half of the engine boundary. Each takes
// the engine lock, applies the change, and publishes a fresh snapshot.
// Declined actions (not enough money, nothing idle) return sentinel errors
// and leave the world untouched.

// DispatchVehicle assigns idle vehicles to a pending mission, first-fit:
// for each required station type, the first idle vehicle at the first
// staffed station of that type. A partially resourced dispatch still goes
// ahead; only a completely empty one is declined.
func (e *Engine) DispatchVehicle(missionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	mission, exists := e.missions[missionID]
	if !exists {
		return ErrUnknownMission
	}

	if mission.Status != MissionPending {
		return ErrMissionNotPending
	}

	selected := []*Vehicle{}

	for _, stationType := range mission.RequiredStations {
		vehicle := e.firstIdleVehicle(stationType, selected)
		if vehicle != nil {
			selected = append(selected, vehicle)
		}
	}

	if len(selected) == 0 {
		return ErrNoVehiclesAvailable
	}

	for _, vehicle := range selected {
		vehicle.Status = VehiclePreparing
		vehicle.MissionID = mission.ID
		e.requestRoute(vehicle, mission.Position, true)

		mission.DispatchedVehicleIDs = append(mission.DispatchedVehicleIDs, vehicle.ID)
	}

	mission.transition(MissionDispatched)
	e.rosterDirty = true

	log.Info().
		Str("mission", mission.ID).
		Int("vehicles", len(selected)).
		Msg("Vehicles dispatched")

	e.syncRosters()
	e.rosterDirty = false
	e.publishSnapshot()

	return nil
}

func (e *Engine) firstIdleVehicle(stationType StationType, alreadySelected []*Vehicle) *Vehicle {
	selectedIDs := make([]string, 0, len(alreadySelected))
	for _, vehicle := range alreadySelected {
		selectedIDs = append(selectedIDs, vehicle.ID)
	}

	for _, stationID := range sortedKeys(e.stations) {
		station := e.stations[stationID]
		if station.Type != stationType || !station.Staffed() {
			continue
		}

		for _, vehicleID := range sortedKeys(e.vehicles) {
			vehicle := e.vehicles[vehicleID]

			if vehicle.StationID != station.ID || !vehicle.Available() {
				continue
			}
			if util.ContainsString(selectedIDs, vehicle.ID) {
				continue
			}

			return vehicle
		}
	}

	return nil
}

// PlaceBuilding constructs a new station of the given type.
func (e *Engine) PlaceBuilding(stationType StationType, position orb.Point) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	spec, known := stationCatalog[stationType]
	if !known {
		return "", ErrUnknownStation
	}

	if e.funds < spec.BuildCost {
		return "", ErrInsufficientFunds
	}

	station, err := e.addStation(stationType, position)
	if err != nil {
		return "", err
	}

	e.funds -= spec.BuildCost
	e.addVehicle(station)

	e.syncRosters()
	e.rosterDirty = false
	e.publishSnapshot()

	return station.ID, nil
}

// UpgradeBuilding raises a station's level, adding vehicle slots.
func (e *Engine) UpgradeBuilding(stationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	station, exists := e.stations[stationID]
	if !exists {
		return ErrUnknownStation
	}

	if e.funds < station.spec().UpgradeCost {
		return ErrInsufficientFunds
	}

	e.funds -= station.spec().UpgradeCost
	station.Level++

	e.publishSnapshot()

	return nil
}

// SellBuilding removes a station, refunding half the build cost. The
// station's vehicles are destroyed with it, wherever they are; any mission
// they were serving just has fewer responders from now on.
func (e *Engine) SellBuilding(stationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	station, exists := e.stations[stationID]
	if !exists {
		return ErrUnknownStation
	}

	destroyed := []string{}
	for _, vehicleID := range sortedKeys(e.vehicles) {
		if e.vehicles[vehicleID].StationID == station.ID {
			destroyed = append(destroyed, vehicleID)
			delete(e.vehicles, vehicleID)
		}
	}

	// Live missions keep only responders that still exist. A mission left
	// with none runs out its clock instead of completing vacuously.
	for _, mission := range e.missions {
		if mission.Status.terminal() {
			continue
		}

		util.InPlaceFilter(&mission.DispatchedVehicleIDs, func(id string) bool {
			return !util.ContainsString(destroyed, id)
		})
	}

	delete(e.stations, stationID)
	e.funds += station.spec().BuildCost / 2

	e.syncRosters()
	e.rosterDirty = false
	e.publishSnapshot()

	return nil
}

// HireStaff adds one crew member to a station.
func (e *Engine) HireStaff(stationID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	station, exists := e.stations[stationID]
	if !exists {
		return ErrUnknownStation
	}

	if e.funds < station.spec().StaffCost {
		return ErrInsufficientFunds
	}

	e.funds -= station.spec().StaffCost
	station.Staff++

	e.publishSnapshot()

	return nil
}

// PurchaseVehicle adds a vehicle to a station if it has a free slot.
func (e *Engine) PurchaseVehicle(stationID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	station, exists := e.stations[stationID]
	if !exists {
		return "", ErrUnknownStation
	}

	if len(station.VehicleIDs) >= station.VehicleSlots() {
		return "", ErrNoVehicleSlots
	}

	if e.funds < station.spec().VehicleCost {
		return "", ErrInsufficientFunds
	}

	e.funds -= station.spec().VehicleCost
	vehicle := e.addVehicle(station)

	e.syncRosters()
	e.rosterDirty = false
	e.publishSnapshot()

	return vehicle.ID, nil
}

// SetGameSpeed adjusts the simulation speed multiplier.
func (e *Engine) SetGameSpeed(speed int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if speed < 1 || speed > 3 {
		return ErrInvalidGameSpeed
	}

	e.gameSpeed = speed
	e.publishSnapshot()

	return nil
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
	e.publishSnapshot()
}

func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = false
	e.publishSnapshot()
}
