package dispatch

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/geomath"
	"github.com/sirensim/sirensim/pkg/roadnet"
	"github.com/sirensim/sirensim/pkg/routeservice"
)

// Ambient NPC traffic exists to give the congestion monitor something to
// measure. Cars circulate between random junctions on route-service routes
// and respawn onto a new destination when they arrive.
const ambientTravelSeconds = 120.0

type ambientCar struct {
	id     string
	route  *roadnet.Route
	cursor float64

	position orb.Point
}

func (c *ambientCar) upgradeRoute(resolution routeservice.Resolution) {
	index, _ := geomath.NearestIndex(resolution.Route.Waypoints, c.position)

	c.route = resolution.Route
	c.cursor = float64(index)
}

func (e *Engine) seedAmbientTraffic(count int) {
	nodeIDs := e.network.NodeIDs()
	if len(nodeIDs) < 2 {
		return
	}

	for i := 0; i < count; i++ {
		car := &ambientCar{id: fmt.Sprintf("ambient-%d", i)}

		from := e.randomNodePosition()
		car.position = from
		car.route = e.ambientRoute(car, from)
		car.cursor = 0

		e.ambient = append(e.ambient, car)
		e.ambientByID[car.id] = car
	}
}

// ambientRoute asks the route service for a route to a random junction.
// Ambient cars share the cache, breaker and fallback machinery with the
// fleet; they are the bulk of the service's traffic.
func (e *Engine) ambientRoute(car *ambientCar, from orb.Point) *roadnet.Route {
	to := e.randomNodePosition()

	return e.routes.Resolve(routeservice.Request{
		ID:        fmt.Sprintf("%s-%d", car.id, int(e.simSeconds*1000)),
		VehicleID: car.id,
		From:      from,
		To:        to,
	})
}

func (e *Engine) updateAmbient(dt float64) {
	for _, car := range e.ambient {
		if car.route == nil || len(car.route.Waypoints) < 2 {
			car.route = e.ambientRoute(car, car.position)
			car.cursor = 0
			continue
		}

		lastIndex := float64(len(car.route.Waypoints) - 1)

		car.cursor += lastIndex / ambientTravelSeconds * dt
		if car.cursor >= lastIndex {
			car.position = car.route.End()
			car.route = e.ambientRoute(car, car.position)
			car.cursor = 0
			continue
		}

		car.position = geomath.PointAlong(car.route.Waypoints, car.cursor)
	}
}

func (e *Engine) randomNodePosition() orb.Point {
	nodeIDs := e.network.NodeIDs()
	node, _ := e.network.Node(nodeIDs[e.rng.Intn(len(nodeIDs))])

	return node.Position
}
