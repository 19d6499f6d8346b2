package dispatch

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/sirensim/sirensim/pkg/geomath"
	"github.com/sirensim/sirensim/pkg/pathfind"
	"github.com/sirensim/sirensim/pkg/roadnet"
	"github.com/sirensim/sirensim/pkg/routeservice"
	"github.com/sirensim/sirensim/pkg/traffic"
)

const (
	// No measurable progress for this long triggers stuck recovery.
	stuckThresholdSeconds = 20.0

	missionHistoryLimit        = 20
	missionHistoryGraceMinutes = 2.0
)

// Engine owns the simulated world: road network, fleet, missions, stations
// and ambient traffic. All state mutation funnels through one mutex so a
// tick sees a single consistent world, and asynchronous route resolutions
// are only applied at the start of the next tick.
type Engine struct {
	mu sync.Mutex

	scenario Scenario

	network    *roadnet.Network
	pathfinder *pathfind.Pathfinder
	monitor    *traffic.Monitor
	rerouter   *traffic.Rerouter
	lights     *traffic.Manager
	routes     *routeservice.Service

	rng *rand.Rand

	vehicles map[string]*Vehicle
	missions map[string]*Mission
	stations map[string]*Station

	ambient     []*ambientCar
	ambientByID map[string]*ambientCar

	funds      int
	simSeconds float64
	gameSpeed  int
	paused     bool

	rosterDirty bool

	spawner *missionSpawner

	published *Snapshot
}

func NewEngine(scenario Scenario, routes *routeservice.Service) (*Engine, error) {
	var network *roadnet.Network
	var err error

	if scenario.NetworkFile != "" {
		network, err = roadnet.LoadFile(scenario.NetworkFile)
		if err != nil {
			return nil, err
		}
	} else {
		options := roadnet.DefaultGridOptions()
		if scenario.GridRows > 0 {
			options.Rows = scenario.GridRows
		}
		if scenario.GridCols > 0 {
			options.Cols = scenario.GridCols
		}

		network = roadnet.GenerateGrid(options)
	}

	pathfinder := pathfind.New(network)
	monitor := traffic.NewMonitor(network)

	engine := &Engine{
		scenario:    scenario,
		network:     network,
		pathfinder:  pathfinder,
		monitor:     monitor,
		rerouter:    traffic.NewRerouter(monitor, pathfinder, network),
		lights:      traffic.NewManager(network, scenario.Seed),
		routes:      routes,
		rng:         rand.New(rand.NewSource(scenario.Seed)),
		vehicles:    map[string]*Vehicle{},
		missions:    map[string]*Mission{},
		stations:    map[string]*Station{},
		ambientByID: map[string]*ambientCar{},
		funds:       scenario.InitialFunds,
		gameSpeed:   1,
	}

	engine.spawner = newMissionSpawner(scenario.SpawnIntervalMin, scenario.SpawnIntervalMax, engine.rng)

	for _, definition := range scenario.Stations {
		station, err := engine.addStation(definition.Type, orb.Point(definition.Position))
		if err != nil {
			return nil, fmt.Errorf("scenario station: %w", err)
		}

		if definition.Staff > 0 {
			station.Staff = definition.Staff
		}

		for i := 0; i < definition.Vehicles; i++ {
			engine.addVehicle(station)
		}
	}

	engine.seedAmbientTraffic(scenario.AmbientCars)
	engine.syncRosters()
	engine.publishSnapshot()

	log.Info().
		Str("scenario", scenario.Name).
		Int("nodes", network.NodeCount()).
		Int("stations", len(engine.stations)).
		Int("ambient", len(engine.ambient)).
		Msg("Simulation engine ready")

	return engine, nil
}

// Tick advances the world by one fixed external tick. Pass order within a
// tick is fixed: pending route resolutions, lights, ambient traffic,
// congestion, vehicles, missions, spawner.
func (e *Engine) Tick(realDeltaMs float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.paused {
		return
	}

	dt := realDeltaMs / 1000 * float64(e.gameSpeed)
	dtMinutes := dt / 60

	e.drainRouteEvents()

	e.simSeconds += dt

	e.lights.Update(dt)
	e.updateAmbient(dt)
	e.observeCongestion()

	for _, id := range sortedKeys(e.vehicles) {
		e.updateVehicle(e.vehicles[id], dt, dtMinutes)
	}

	for _, id := range sortedKeys(e.missions) {
		e.updateMission(e.missions[id], dtMinutes)
	}

	e.spawner.update(e)
	e.pruneMissions()

	if e.rosterDirty {
		e.syncRosters()
		e.rosterDirty = false
	}

	e.publishSnapshot()
}

func (e *Engine) SimMinutes() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.simSeconds / 60
}

// drainRouteEvents applies resolved network routes that arrived since the
// previous tick. A resolution is checked against the vehicle's live state
// at application time: if the vehicle no longer owns the request, or is in
// a state that cannot use a route, the result is discarded.
func (e *Engine) drainRouteEvents() {
	for {
		select {
		case resolution := <-e.routes.Events():
			e.applyResolution(resolution)
		default:
			return
		}
	}
}

func (e *Engine) applyResolution(resolution routeservice.Resolution) {
	if resolution.Route == nil || len(resolution.Route.Waypoints) < 2 {
		return
	}

	if car, exists := e.ambientByID[resolution.VehicleID]; exists {
		car.upgradeRoute(resolution)
		return
	}

	vehicle, exists := e.vehicles[resolution.VehicleID]
	if !exists {
		return
	}

	if vehicle.PendingRequestID != resolution.RequestID {
		log.Debug().Str("vehicle", vehicle.ID).Msg("Discarding stale route resolution")
		return
	}

	switch vehicle.Status {
	case VehiclePreparing, VehicleDispatched, VehicleReturning:
	default:
		return
	}

	route := resolution.Route
	if vehicle.Route != nil && vehicle.Route.Emergency != route.Emergency {
		adjusted := *route
		adjusted.Emergency = vehicle.Route.Emergency
		route = &adjusted
	}

	// Snap progress onto the new geometry instead of resetting it.
	index, _ := geomath.NearestIndex(route.Waypoints, vehicle.Position)

	vehicle.Route = route
	vehicle.Cursor = float64(index)
	vehicle.PendingRequestID = ""
}

func (e *Engine) updateVehicle(vehicle *Vehicle, dt float64, dtMinutes float64) {
	switch vehicle.Status {
	case VehiclePreparing:
		// requestRoute installs at least fallback geometry at dispatch
		// time, so one tick of preparing is all it takes.
		if vehicle.Route != nil {
			vehicle.Status = VehicleDispatched
			e.rosterDirty = true
		}

	case VehicleDispatched:
		e.moveVehicle(vehicle, dt)
		e.maybeReroute(vehicle, dt)

		if e.arrived(vehicle) {
			e.clearSignalled(vehicle)
			vehicle.Position = vehicle.Route.End()

			mission, exists := e.missions[vehicle.MissionID]
			if exists && !mission.Status.terminal() {
				vehicle.Status = VehicleWorking
				vehicle.WorkRemaining = mission.WorkDuration
				e.rosterDirty = true
			} else {
				e.beginReturn(vehicle)
			}
		}

	case VehicleWorking:
		vehicle.WorkRemaining -= dtMinutes
		if vehicle.WorkRemaining <= 0 {
			vehicle.WorkRemaining = 0
			e.beginReturn(vehicle)
		}

	case VehicleReturning:
		e.moveVehicle(vehicle, dt)

		if e.arrived(vehicle) {
			e.clearSignalled(vehicle)
			home := vehicle.Position
			if station, exists := e.stations[vehicle.StationID]; exists {
				home = station.Position
			}

			vehicle.clearAssignment(home)
			e.rosterDirty = true
		}
	}
}

func (e *Engine) arrived(vehicle *Vehicle) bool {
	return vehicle.Route != nil && vehicle.Cursor >= float64(len(vehicle.Route.Waypoints)-1)
}

// beginReturn sends a vehicle home. Used for normal mission completion and
// for the abort-in-place recall when a mission fails: in both cases the
// vehicle gets a fresh route from wherever it currently is.
func (e *Engine) beginReturn(vehicle *Vehicle) {
	station, exists := e.stations[vehicle.StationID]
	if !exists {
		vehicle.clearAssignment(vehicle.Position)
		e.rosterDirty = true
		return
	}

	vehicle.Status = VehicleReturning
	e.requestRoute(vehicle, station.Position, false)
	e.rosterDirty = true
}

// requestRoute installs a route for the vehicle: the road-network path when
// the pathfinder can produce one, otherwise the route service's immediate
// answer (cached network route or generated fallback, with a possible
// asynchronous upgrade later).
func (e *Engine) requestRoute(vehicle *Vehicle, to orb.Point, emergency bool) {
	vehicle.Cursor = 0
	vehicle.PendingRequestID = ""

	route, err := e.pathfinder.FindPath(vehicle.Position, to, emergency)
	if err == nil {
		vehicle.Route = route
		return
	}

	log.Debug().Err(err).Str("vehicle", vehicle.ID).Msg("Pathfinder failed, using route service")

	vehicle.PendingRequestID = uuid.NewString()

	resolved := e.routes.Resolve(routeservice.Request{
		ID:        vehicle.PendingRequestID,
		VehicleID: vehicle.ID,
		From:      vehicle.Position,
		To:        to,
		Emergency: emergency,
	})

	if !resolved.Fallback {
		vehicle.PendingRequestID = ""
	}

	if resolved.Emergency != emergency {
		adjusted := *resolved
		adjusted.Emergency = emergency
		resolved = &adjusted
	}

	vehicle.Route = resolved
}

func (e *Engine) maybeReroute(vehicle *Vehicle, dt float64) {
	if vehicle.Route == nil || len(vehicle.Route.SegmentIDs) == 0 {
		return
	}

	goal := vehicle.Route.End()

	if vehicle.stuckSeconds > stuckThresholdSeconds {
		vehicle.stuckSeconds = 0

		if route, err := e.rerouter.RecoverStuck(vehicle.Position, goal, vehicle.Route.Emergency); err == nil {
			index, _ := geomath.NearestIndex(route.Waypoints, vehicle.Position)
			vehicle.Route = route
			vehicle.Cursor = float64(index)
		}

		return
	}

	if !e.rerouter.ShouldReroute(vehicle.ID, vehicle.Route, vehicle.SegmentIndex(), e.simSeconds) {
		return
	}

	if route, accepted := e.rerouter.Evaluate(vehicle.ID, vehicle.Route, vehicle.Position, int(vehicle.Cursor), goal, vehicle.Route.Emergency); accepted {
		index, _ := geomath.NearestIndex(route.Waypoints, vehicle.Position)
		vehicle.Route = route
		vehicle.Cursor = float64(index)
	}
}

func (e *Engine) updateMission(mission *Mission, dtMinutes float64) {
	if mission.Status.terminal() {
		return
	}

	mission.TimeRemaining -= dtMinutes
	if mission.TimeRemaining <= 0 {
		mission.TimeRemaining = 0
		e.failMission(mission)
		return
	}

	// A mission that lost every responder cannot complete; it waits for
	// the timeout like any other unanswered incident.
	if mission.Status != MissionDispatched || len(mission.DispatchedVehicleIDs) == 0 {
		return
	}

	for _, vehicleID := range mission.DispatchedVehicleIDs {
		vehicle, exists := e.vehicles[vehicleID]
		if !exists {
			continue
		}

		if vehicle.Status != VehicleReturning && vehicle.Status != VehicleIdle {
			return
		}
	}

	if mission.transition(MissionCompleted) {
		mission.FinishedAt = e.simSeconds / 60
		e.funds += mission.Reward

		log.Info().
			Str("mission", mission.ID).
			Str("type", string(mission.Type)).
			Int("reward", mission.Reward).
			Msg("Mission completed")
	}
}

// failMission applies the penalty and recalls every vehicle still committed
// to the mission, abort-in-place. The recall must work even when a
// vehicle's route state is inconsistent; beginReturn always produces some
// route from the live position.
func (e *Engine) failMission(mission *Mission) {
	if !mission.transition(MissionFailed) {
		return
	}

	mission.FinishedAt = e.simSeconds / 60
	e.funds -= mission.Penalty

	log.Warn().
		Str("mission", mission.ID).
		Str("type", string(mission.Type)).
		Int("penalty", mission.Penalty).
		Msg("Mission failed on timeout")

	for _, vehicleID := range mission.DispatchedVehicleIDs {
		vehicle, exists := e.vehicles[vehicleID]
		if !exists {
			continue
		}

		switch vehicle.Status {
		case VehiclePreparing, VehicleDispatched, VehicleWorking:
			e.beginReturn(vehicle)
		}
	}
}

func (e *Engine) pruneMissions() {
	nowMinutes := e.simSeconds / 60

	finished := []*Mission{}
	for _, mission := range e.missions {
		if mission.Status.terminal() {
			finished = append(finished, mission)
		}
	}

	if len(finished) <= missionHistoryLimit {
		return
	}

	slices.SortFunc(finished, func(a, b *Mission) int {
		if a.FinishedAt == b.FinishedAt {
			return compareStrings(a.ID, b.ID)
		}
		if a.FinishedAt < b.FinishedAt {
			return -1
		}
		return 1
	})

	for _, mission := range finished[:len(finished)-missionHistoryLimit] {
		if nowMinutes-mission.FinishedAt > missionHistoryGraceMinutes {
			delete(e.missions, mission.ID)
		}
	}
}

// observeCongestion feeds every active route into the congestion monitor:
// moving fleet vehicles and ambient traffic alike.
func (e *Engine) observeCongestion() {
	routes := make([]*roadnet.Route, 0, len(e.vehicles)+len(e.ambient))

	for _, vehicle := range e.vehicles {
		if vehicle.Moving() {
			routes = append(routes, vehicle.Route)
		}
	}

	for _, car := range e.ambient {
		routes = append(routes, car.route)
	}

	e.monitor.Observe(routes)
}

// syncRosters rebuilds each station's vehicle id roster. Only called when
// an assignment changed; position-only movement never triggers it.
func (e *Engine) syncRosters() {
	for _, station := range e.stations {
		station.VehicleIDs = station.VehicleIDs[:0]
	}

	for _, id := range sortedKeys(e.vehicles) {
		vehicle := e.vehicles[id]
		if station, exists := e.stations[vehicle.StationID]; exists {
			station.VehicleIDs = append(station.VehicleIDs, vehicle.ID)
		}
	}
}

func (e *Engine) addStation(stationType StationType, position orb.Point) (*Station, error) {
	spec, known := stationCatalog[stationType]
	if !known {
		return nil, fmt.Errorf("unknown station type %q", stationType)
	}

	station := &Station{
		ID:       uuid.NewString(),
		Type:     stationType,
		Position: position,
		Level:    1,
		Staff:    spec.InitialStaff,
	}

	e.stations[station.ID] = station

	return station, nil
}

func (e *Engine) addVehicle(station *Station) *Vehicle {
	vehicle := &Vehicle{
		ID:        uuid.NewString(),
		Type:      station.spec().VehicleType,
		StationID: station.ID,
		Status:    VehicleIdle,
		Position:  station.Position,
	}

	e.vehicles[vehicle.ID] = vehicle
	e.rosterDirty = true

	return vehicle
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)

	return keys
}

func compareStrings(a string, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
