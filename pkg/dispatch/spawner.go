package dispatch

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// missionSpawner creates incidents at random junctions at random intervals
// inside the configured bounds.
type missionSpawner struct {
	minInterval float64 // simulated minutes
	maxInterval float64

	nextAt float64
	rng    *rand.Rand

	types []MissionType
}

func newMissionSpawner(minInterval float64, maxInterval float64, rng *rand.Rand) *missionSpawner {
	if minInterval <= 0 {
		minInterval = 1
	}
	if maxInterval < minInterval {
		maxInterval = minInterval
	}

	types := maps.Keys(missionCatalog)
	slices.Sort(types)

	spawner := &missionSpawner{
		minInterval: minInterval,
		maxInterval: maxInterval,
		rng:         rng,
		types:       types,
	}
	spawner.schedule(0)

	return spawner
}

func (s *missionSpawner) schedule(nowMinutes float64) {
	s.nextAt = nowMinutes + s.minInterval + s.rng.Float64()*(s.maxInterval-s.minInterval)
}

func (s *missionSpawner) update(e *Engine) {
	nowMinutes := e.simSeconds / 60
	if nowMinutes < s.nextAt {
		return
	}

	s.schedule(nowMinutes)

	missionType := s.types[s.rng.Intn(len(s.types))]
	e.spawnMission(missionType, e.randomNodePosition())
}

// SpawnMissionAt injects a mission from outside the tick loop, for scenario
// scripting and the API.
func (e *Engine) SpawnMissionAt(missionType MissionType, position orb.Point) *Mission {
	e.mu.Lock()
	defer e.mu.Unlock()

	mission := e.spawnMission(missionType, position)
	if mission != nil {
		e.publishSnapshot()
	}

	return mission
}

func (e *Engine) spawnMission(missionType MissionType, position orb.Point) *Mission {
	spec, known := missionCatalog[missionType]
	if !known {
		return nil
	}

	mission := newMission(uuid.NewString(), spec, position, e.simSeconds/60)
	e.missions[mission.ID] = mission

	log.Info().
		Str("mission", mission.ID).
		Str("type", string(missionType)).
		Float64("time_limit", mission.TimeLimit).
		Msg("Mission spawned")

	return mission
}
