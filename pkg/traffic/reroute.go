package traffic

import (
	"github.com/paulmach/orb"
	"github.com/rs/zerolog/log"

	"github.com/sirensim/sirensim/pkg/geomath"
	"github.com/sirensim/sirensim/pkg/pathfind"
	"github.com/sirensim/sirensim/pkg/roadnet"
)

const (
	// Minimum simulated seconds between reroute evaluations per vehicle.
	defaultCooldown = 5.0

	// Predicted congestion above this triggers a reroute attempt.
	defaultThreshold = 0.7

	// An alternative is accepted only when materially better on congestion
	// or on distance. Hysteresis against route flapping.
	congestionImprovement = 0.8
	distanceImprovement   = 0.9

	stuckSnapRadius = 10000.0
)

// Rerouter decides when an in-flight route is congested enough to replace.
type Rerouter struct {
	monitor    *Monitor
	pathfinder *pathfind.Pathfinder
	network    *roadnet.Network

	Cooldown  float64
	Threshold float64

	lastEvaluation map[string]float64
}

func NewRerouter(monitor *Monitor, pathfinder *pathfind.Pathfinder, network *roadnet.Network) *Rerouter {
	return &Rerouter{
		monitor:        monitor,
		pathfinder:     pathfinder,
		network:        network,
		Cooldown:       defaultCooldown,
		Threshold:      defaultThreshold,
		lastEvaluation: map[string]float64{},
	}
}

// ShouldReroute reports whether a vehicle's current route warrants a
// recomputation. It fires at most once per cooldown window per vehicle,
// regardless of how congested the route stays in between.
func (r *Rerouter) ShouldReroute(vehicleID string, route *roadnet.Route, progressIndex int, now float64) bool {
	if route == nil || len(route.SegmentIDs) == 0 {
		return false
	}

	if last, seen := r.lastEvaluation[vehicleID]; seen && now-last < r.Cooldown {
		return false
	}
	r.lastEvaluation[vehicleID] = now

	if r.monitor.PredictRoute(route) > r.Threshold {
		return true
	}

	// Gridlock on the third segment ahead is an immediate trigger even when
	// the route as a whole still averages below the threshold.
	ahead := progressIndex + 2
	if ahead < len(route.SegmentIDs) && r.monitor.SegmentLevel(route.SegmentIDs[ahead]) == LevelGridlock {
		return true
	}

	return false
}

// Evaluate computes an alternative from the vehicle's live position and
// applies the acceptance hysteresis: the replacement must predict at least
// 20% less congestion or be at least 10% shorter than what the vehicle has
// left to drive, otherwise the current route stands.
func (r *Rerouter) Evaluate(vehicleID string, current *roadnet.Route, position orb.Point, progressIndex int, goal orb.Point, emergency bool) (*roadnet.Route, bool) {
	alternative, err := r.pathfinder.FindPath(position, goal, emergency)
	if err != nil {
		log.Debug().Err(err).Str("vehicle", vehicleID).Msg("Reroute search failed, keeping current route")
		return current, false
	}

	currentPrediction := r.monitor.PredictRoute(current)
	alternativePrediction := r.monitor.PredictRoute(alternative)

	// The alternative starts at the live position, so it competes with the
	// remaining stretch of the current route, not its full length.
	remaining := current.Distance
	if progressIndex > 0 && progressIndex < len(current.Waypoints) {
		remaining = geomath.PolylineLength(current.Waypoints[progressIndex:])
	}

	if alternativePrediction <= currentPrediction*congestionImprovement ||
		alternative.Distance <= remaining*distanceImprovement {
		log.Debug().
			Str("vehicle", vehicleID).
			Float64("congestion", alternativePrediction).
			Float64("previous", currentPrediction).
			Msg("Accepted alternative route")

		return alternative, true
	}

	return current, false
}

// RecoverStuck forces a fresh search from the vehicle's live position. When
// even that fails the vehicle is pointed at its nearest junction instead of
// the original destination, as a last resort to get it moving again.
func (r *Rerouter) RecoverStuck(position orb.Point, goal orb.Point, emergency bool) (*roadnet.Route, error) {
	route, err := r.pathfinder.FindPath(position, goal, emergency)
	if err == nil {
		return route, nil
	}

	nearest, nearestErr := r.network.NearestNode(position, stuckSnapRadius)
	if nearestErr != nil {
		return nil, err
	}

	return &roadnet.Route{
		Waypoints: []orb.Point{position, nearest.Position},
		NodeIDs:   []string{nearest.ID},
		Distance:  geomath.Distance(position, nearest.Position),
		Emergency: emergency,
		Fallback:  true,
	}, nil
}
