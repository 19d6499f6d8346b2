package simulator

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sirensim/sirensim/pkg/dispatch"
	"github.com/sirensim/sirensim/pkg/routeservice"
)

const (
	tickInterval  = 100 * time.Millisecond
	statsInterval = 30 * time.Second
)

// Setup builds a ready-to-tick engine: scenario from file (or the default
// one), route service from the environment.
func Setup(scenarioPath string) (*dispatch.Engine, error) {
	scenario := dispatch.DefaultScenario()

	if scenarioPath != "" {
		var err error
		scenario, err = dispatch.LoadScenario(scenarioPath)
		if err != nil {
			return nil, err
		}
	}

	routes, err := routeservice.New(routeservice.ConfigFromEnvironment())
	if err != nil {
		return nil, err
	}

	return dispatch.NewEngine(scenario, routes)
}

// RunTicker drives the engine off the wall clock until stop is closed. The
// tick is passed the real elapsed time so a stalled scheduler produces one
// long tick, not a backlog of short ones.
func RunTicker(engine *dispatch.Engine, stop <-chan struct{}) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	stats := time.NewTicker(statsInterval)
	defer stats.Stop()

	last := time.Now()

	for {
		select {
		case <-stop:
			log.Info().Float64("sim_minutes", engine.SimMinutes()).Msg("Simulation stopped")
			return
		case <-stats.C:
			snapshot := engine.Snapshot()
			log.Info().
				Float64("sim_minutes", snapshot.SimMinutes).
				Int("funds", snapshot.Funds).
				Int("vehicles", len(snapshot.Vehicles)).
				Int("missions", len(snapshot.Missions)).
				Msg("Simulation stats")
		case now := <-ticker.C:
			engine.Tick(float64(now.Sub(last).Milliseconds()))
			last = now
		}
	}
}
