package dispatch

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirensim/sirensim/pkg/routeservice"
)

func testScenario() Scenario {
	return Scenario{
		Name:         "test",
		InitialFunds: 10000,
		Seed:         1,
		GridRows:     4,
		GridCols:     4,
		AmbientCars:  0,
		// Effectively never: tests spawn their own missions.
		SpawnIntervalMin: 1e6,
		SpawnIntervalMax: 1e6,
		Stations: []ScenarioStation{
			{Type: StationFire, Position: [2]float64{-0.135, 51.49}, Vehicles: 2, Staff: 2},
		},
	}
}

func newTestEngine(t *testing.T, scenario Scenario) *Engine {
	// Unroutable host: everything resolves locally or via fallback geometry.
	routes, err := routeservice.New(routeservice.Config{
		Host:             "http://127.0.0.1:9",
		Concurrency:      1,
		MinSpacing:       time.Millisecond,
		CacheTTL:         time.Minute,
		MaxRetries:       0,
		BreakerThreshold: 1,
		BreakerCooldown:  time.Minute,
		RequestTimeout:   100 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(routes.Close)

	engine, err := NewEngine(scenario, routes)
	require.NoError(t, err)

	return engine
}

func missionSite() orb.Point {
	return orb.Point{-0.123, 51.502} // junction n3-3 of the 4x4 test grid
}

func TestDispatchAssignsOneVehiclePerStationType(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	mission := engine.SpawnMissionAt(MissionFire, missionSite())
	require.NotNil(t, mission)

	require.NoError(t, engine.DispatchVehicle(mission.ID))

	assert.Equal(t, MissionDispatched, mission.Status)
	require.Len(t, mission.DispatchedVehicleIDs, 1)

	assigned := engine.vehicles[mission.DispatchedVehicleIDs[0]]
	assert.Equal(t, VehiclePreparing, assigned.Status)
	assert.Equal(t, mission.ID, assigned.MissionID)
	require.NotNil(t, assigned.Route)
	assert.True(t, assigned.Route.Emergency)

	// The second engine at the station stays put.
	idle := 0
	for _, vehicle := range engine.vehicles {
		if vehicle.Status == VehicleIdle {
			idle++
		}
	}
	assert.Equal(t, 1, idle)

	assert.ErrorIs(t, engine.DispatchVehicle(mission.ID), ErrMissionNotPending)
}

func TestPreparingLastsOneTick(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	mission := engine.SpawnMissionAt(MissionFire, missionSite())
	require.NoError(t, engine.DispatchVehicle(mission.ID))

	// A dispatched vehicle always has geometry in hand, fallback at worst,
	// so preparing never outlasts a single tick.
	vehicle := engine.vehicles[mission.DispatchedVehicleIDs[0]]
	require.Equal(t, VehiclePreparing, vehicle.Status)
	require.NotNil(t, vehicle.Route)

	engine.Tick(100)
	assert.Equal(t, VehicleDispatched, vehicle.Status)
}

func TestDispatchErrors(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	assert.ErrorIs(t, engine.DispatchVehicle("nope"), ErrUnknownMission)

	// A medical incident has no hospital to answer it.
	medical := engine.SpawnMissionAt(MissionMedical, missionSite())
	assert.ErrorIs(t, engine.DispatchVehicle(medical.ID), ErrNoVehiclesAvailable)

	// An unstaffed station cannot crew a dispatch.
	for _, station := range engine.stations {
		station.Staff = 0
	}
	fire := engine.SpawnMissionAt(MissionFire, missionSite())
	assert.ErrorIs(t, engine.DispatchVehicle(fire.ID), ErrNoVehiclesAvailable)
}

func TestVehicleLifecycle(t *testing.T) {
	engine := newTestEngine(t, testScenario())
	require.NoError(t, engine.SetGameSpeed(3))

	fundsBefore := engine.funds

	mission := engine.SpawnMissionAt(MissionFire, missionSite())
	require.NoError(t, engine.DispatchVehicle(mission.ID))

	vehicle := engine.vehicles[mission.DispatchedVehicleIDs[0]]

	sawDispatched := false
	sawWorking := false
	lastCursor := 0.0

	for i := 0; i < 20000 && mission.Status != MissionCompleted; i++ {
		engine.Tick(1000)

		switch vehicle.Status {
		case VehicleDispatched:
			sawDispatched = true
			// The route cursor never moves backwards.
			require.GreaterOrEqual(t, vehicle.Cursor, lastCursor)
			lastCursor = vehicle.Cursor
		case VehicleWorking:
			sawWorking = true
			lastCursor = 0
		case VehicleReturning:
			lastCursor = 0
		}
	}

	assert.True(t, sawDispatched)
	assert.True(t, sawWorking)
	assert.Equal(t, MissionCompleted, mission.Status)
	assert.Equal(t, fundsBefore+mission.Reward, engine.funds)

	// The vehicle ends the episode idle at its station.
	for i := 0; i < 20000 && vehicle.Status != VehicleIdle; i++ {
		engine.Tick(1000)
	}
	assert.Equal(t, VehicleIdle, vehicle.Status)
	assert.Empty(t, vehicle.MissionID)
}

func TestMissionTimeoutPenalty(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	fundsBefore := engine.funds

	mission := engine.SpawnMissionAt(MissionFire, missionSite())
	require.Equal(t, 30.0, mission.TimeLimit)

	// 31 simulated minutes in one tick: past the response window.
	engine.Tick(31 * 60 * 1000)

	assert.Equal(t, MissionFailed, mission.Status)
	assert.Equal(t, fundsBefore-mission.Penalty, engine.funds)

	// Nobody was dispatched, so the fleet is untouched.
	for _, vehicle := range engine.vehicles {
		assert.Equal(t, VehicleIdle, vehicle.Status)
	}
}

func TestMissionTimeoutRecallsVehicles(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	mission := engine.SpawnMissionAt(MissionFire, missionSite())
	require.NoError(t, engine.DispatchVehicle(mission.ID))

	engine.Tick(100) // preparing -> dispatched
	engine.Tick(31 * 60 * 1000)

	assert.Equal(t, MissionFailed, mission.Status)

	vehicle := engine.vehicles[mission.DispatchedVehicleIDs[0]]
	assert.Contains(t, []VehicleStatus{VehicleReturning, VehicleIdle}, vehicle.Status)
}

func TestSpawnMissionUnknownType(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	assert.Nil(t, engine.SpawnMissionAt(MissionType("earthquake"), missionSite()))
}

func TestPauseStopsSimulation(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	engine.Pause()
	engine.Tick(60 * 1000)
	assert.Equal(t, 0.0, engine.SimMinutes())
	assert.True(t, engine.Snapshot().Paused)

	engine.Resume()
	engine.Tick(60 * 1000)
	assert.Equal(t, 1.0, engine.SimMinutes())
}

func TestSetGameSpeedBounds(t *testing.T) {
	engine := newTestEngine(t, testScenario())

	assert.ErrorIs(t, engine.SetGameSpeed(0), ErrInvalidGameSpeed)
	assert.ErrorIs(t, engine.SetGameSpeed(4), ErrInvalidGameSpeed)

	require.NoError(t, engine.SetGameSpeed(2))
	engine.Tick(60 * 1000)
	assert.Equal(t, 2.0, engine.SimMinutes())
}
