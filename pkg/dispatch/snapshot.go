package dispatch

import (
	"github.com/jinzhu/copier"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"

	"github.com/sirensim/sirensim/pkg/traffic"
)

// Snapshot is a read-only view of the simulation, rebuilt at the end of
// every tick and every command. Readers never see a half-applied tick.
type Snapshot struct {
	SimMinutes float64 `json:"sim_minutes"`
	Funds      int     `json:"funds"`
	GameSpeed  int     `json:"game_speed"`
	Paused     bool    `json:"paused"`

	Vehicles []VehicleSnapshot `json:"vehicles"`
	Missions []MissionSnapshot `json:"missions"`
	Stations []StationSnapshot `json:"stations"`
	Ambient  []AmbientSnapshot `json:"ambient"`
	Lights   []LightSnapshot   `json:"lights"`
}

type VehicleSnapshot struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	StationID string    `json:"station_id"`
	Status    string    `json:"status"`
	Position  orb.Point `json:"position"`

	MissionID     string  `json:"mission_id,omitempty"`
	WorkRemaining float64 `json:"work_remaining,omitempty"`

	RouteWaypoints []orb.Point `json:"route_waypoints,omitempty"`
	RouteProgress  float64     `json:"route_progress,omitempty"`
	RouteFallback  bool        `json:"route_fallback,omitempty"`
}

type MissionSnapshot struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Position orb.Point `json:"position"`
	Status   string    `json:"status"`

	Reward        int     `json:"reward"`
	Penalty       int     `json:"penalty"`
	TimeRemaining float64 `json:"time_remaining"`

	DispatchedVehicleIDs []string `json:"dispatched_vehicle_ids,omitempty"`
}

type StationSnapshot struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Position orb.Point `json:"position"`

	Level int `json:"level"`
	Staff int `json:"staff"`
	Slots int `json:"slots"`

	VehicleIDs []string `json:"vehicle_ids"`
}

type AmbientSnapshot struct {
	ID       string    `json:"id"`
	Position orb.Point `json:"position"`
}

type LightSnapshot struct {
	NodeID    string `json:"node_id"`
	Direction string `json:"direction"`
	Phase     string `json:"phase"`
	Override  bool   `json:"override"`
}

// Snapshot returns a deep copy of the most recently published view, safe to
// hold and serialize without the engine lock.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	copied := &Snapshot{}
	if err := copier.CopyWithOption(copied, e.published, copier.Option{IgnoreEmpty: false, DeepCopy: true}); err != nil {
		log.Error().Err(err).Msg("Failed to copy simulation snapshot")
		return &Snapshot{}
	}

	return copied
}

// publishSnapshot rebuilds the published view from live state. Caller holds
// the engine lock.
func (e *Engine) publishSnapshot() {
	snapshot := &Snapshot{
		SimMinutes: e.simSeconds / 60,
		Funds:      e.funds,
		GameSpeed:  e.gameSpeed,
		Paused:     e.paused,
		Vehicles:   make([]VehicleSnapshot, 0, len(e.vehicles)),
		Missions:   make([]MissionSnapshot, 0, len(e.missions)),
		Stations:   make([]StationSnapshot, 0, len(e.stations)),
		Ambient:    make([]AmbientSnapshot, 0, len(e.ambient)),
	}

	for _, id := range sortedKeys(e.vehicles) {
		snapshot.Vehicles = append(snapshot.Vehicles, vehicleView(e.vehicles[id]))
	}

	for _, id := range sortedKeys(e.missions) {
		snapshot.Missions = append(snapshot.Missions, missionView(e.missions[id]))
	}

	for _, id := range sortedKeys(e.stations) {
		snapshot.Stations = append(snapshot.Stations, stationView(e.stations[id]))
	}

	for _, car := range e.ambient {
		snapshot.Ambient = append(snapshot.Ambient, AmbientSnapshot{
			ID:       car.id,
			Position: car.position,
		})
	}

	snapshot.Lights = lightViews(e.lights)

	e.published = snapshot
}

func vehicleView(vehicle *Vehicle) VehicleSnapshot {
	view := VehicleSnapshot{
		ID:            vehicle.ID,
		Type:          string(vehicle.Type),
		StationID:     vehicle.StationID,
		Status:        vehicle.Status.String(),
		Position:      vehicle.Position,
		MissionID:     vehicle.MissionID,
		WorkRemaining: vehicle.WorkRemaining,
	}

	if vehicle.Route != nil && len(vehicle.Route.Waypoints) > 1 {
		view.RouteWaypoints = vehicle.Route.Waypoints
		view.RouteProgress = vehicle.Cursor / float64(len(vehicle.Route.Waypoints)-1)
		view.RouteFallback = vehicle.Route.Fallback
	}

	return view
}

func missionView(mission *Mission) MissionSnapshot {
	return MissionSnapshot{
		ID:                   mission.ID,
		Type:                 string(mission.Type),
		Position:             mission.Position,
		Status:               mission.Status.String(),
		Reward:               mission.Reward,
		Penalty:              mission.Penalty,
		TimeRemaining:        mission.TimeRemaining,
		DispatchedVehicleIDs: mission.DispatchedVehicleIDs,
	}
}

func stationView(station *Station) StationSnapshot {
	return StationSnapshot{
		ID:         station.ID,
		Type:       string(station.Type),
		Position:   station.Position,
		Level:      station.Level,
		Staff:      station.Staff,
		Slots:      station.VehicleSlots(),
		VehicleIDs: station.VehicleIDs,
	}
}

func lightViews(manager *traffic.Manager) []LightSnapshot {
	views := []LightSnapshot{}

	for _, state := range manager.States() {
		views = append(views, LightSnapshot{
			NodeID:    state.NodeID,
			Direction: state.Direction.String(),
			Phase:     state.Phase.String(),
			Override:  state.Override,
		})
	}

	return views
}
