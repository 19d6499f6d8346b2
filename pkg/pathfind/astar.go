package pathfind

import (
	"container/heap"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"

	"github.com/sirensim/sirensim/pkg/geomath"
	"github.com/sirensim/sirensim/pkg/roadnet"
)

var ErrNoPath = errors.New("no path found")

const (
	// Reference speed (km/h) used to keep the distance heuristic in the same
	// time units as the accumulated cost.
	referenceSpeed = 70.0

	// Emergency vehicles use a deliberately aggressive heuristic: faster
	// searches at the price of occasionally missing the true optimum.
	emergencyHeuristicScale = 0.8

	defaultMaxIterations = 10000
	defaultSnapRadius    = 1500.0 // metres

	// Any current-route segment above this density justifies a recalculation.
	recalculateDensity = 0.8
)

type Pathfinder struct {
	network *roadnet.Network

	MaxIterations int
	SnapRadius    float64
}

func New(network *roadnet.Network) *Pathfinder {
	return &Pathfinder{
		network:       network,
		MaxIterations: defaultMaxIterations,
		SnapRadius:    defaultSnapRadius,
	}
}

// FindPath snaps both endpoints to their nearest junctions and runs A*
// between them. Failure means the caller has no road-network route and must
// fall back to generated geometry; it is never ignored and never guessed
// around.
func (p *Pathfinder) FindPath(start orb.Point, goal orb.Point, emergency bool) (*roadnet.Route, error) {
	startNode, err := p.network.NearestNode(start, p.SnapRadius)
	if err != nil {
		return nil, fmt.Errorf("start %v: %w", start, err)
	}

	goalNode, err := p.network.NearestNode(goal, p.SnapRadius)
	if err != nil {
		return nil, fmt.Errorf("goal %v: %w", goal, err)
	}

	if startNode.ID == goalNode.ID {
		return &roadnet.Route{
			Waypoints: []orb.Point{startNode.Position},
			NodeIDs:   []string{startNode.ID},
			Distance:  0,
			Emergency: emergency,
		}, nil
	}

	return p.search(startNode, goalNode, emergency)
}

// Recalculate re-runs the search only when the current route is materially
// congested: at least one of its segments above the recalculation density.
// Otherwise the existing route is returned unchanged to avoid churn.
func (p *Pathfinder) Recalculate(current *roadnet.Route, position orb.Point, goal orb.Point, emergency bool) (*roadnet.Route, error) {
	congested := false

	for _, segmentID := range current.SegmentIDs {
		if p.network.Density(segmentID) > recalculateDensity {
			congested = true
			break
		}
	}

	if !congested {
		return current, nil
	}

	return p.FindPath(position, goal, emergency)
}

func (p *Pathfinder) search(start *roadnet.Node, goal *roadnet.Node, emergency bool) (*roadnet.Route, error) {
	pq := newPriorityQueue()
	heap.Init(pq)

	gScore := map[string]float64{start.ID: 0}
	cameFrom := map[string]string{}
	arrivedBy := map[string]*roadnet.Segment{}
	closed := map[string]bool{}

	heap.Push(pq, &searchNode{
		NodeID:   start.ID,
		GScore:   0,
		Priority: p.heuristic(start, goal, emergency),
	})

	iterations := 0

	for pq.Len() > 0 {
		iterations++
		if iterations > p.MaxIterations {
			return nil, fmt.Errorf("search exhausted after %d iterations: %w", p.MaxIterations, ErrNoPath)
		}

		current := heap.Pop(pq).(*searchNode)
		u := current.NodeID

		if u == goal.ID {
			return p.reconstruct(cameFrom, arrivedBy, start.ID, goal.ID, emergency), nil
		}

		if closed[u] {
			continue
		}
		closed[u] = true

		previousSegment := arrivedBy[u]

		for _, segment := range p.network.Outgoing(u) {
			v := segment.To
			if closed[v] {
				continue
			}

			if !emergency && !p.turnAllowed(previousSegment, segment) {
				continue
			}

			tentative := gScore[u] + p.segmentCost(segment, emergency)

			known, exists := gScore[v]
			if exists && tentative >= known {
				continue
			}

			gScore[v] = tentative
			cameFrom[v] = u
			arrivedBy[v] = segment

			node, _ := p.network.Node(v)
			priority := tentative + p.heuristic(node, goal, emergency)

			if pq.Contains(v) {
				pq.Update(v, priority, tentative)
			} else {
				heap.Push(pq, &searchNode{NodeID: v, GScore: tentative, Priority: priority})
			}
		}
	}

	return nil, fmt.Errorf("%s to %s: %w", start.ID, goal.ID, ErrNoPath)
}

// segmentCost is the traversal time in hours, inflated by congestion and by
// road class. Emergency vehicles ignore congestion and get a further highway
// discount: sirens clear a motorway far better than a side street.
func (p *Pathfinder) segmentCost(segment *roadnet.Segment, emergency bool) float64 {
	speed := segment.SpeedLimit
	if speed <= 0 {
		speed = 1
	}

	cost := (segment.Distance / 1000) / speed

	if !emergency {
		cost *= 1 + segment.Density()*3
	}

	switch segment.Class {
	case roadnet.ClassHighway:
		if emergency {
			cost *= 0.5
		} else {
			cost *= 0.7
		}
	case roadnet.ClassStreet:
		cost *= 1.3
	}

	return cost
}

func (p *Pathfinder) heuristic(node *roadnet.Node, goal *roadnet.Node, emergency bool) float64 {
	estimate := (geomath.Distance(node.Position, goal.Position) / 1000) / referenceSpeed

	if emergency {
		estimate *= emergencyHeuristicScale
	}

	return estimate
}

func (p *Pathfinder) turnAllowed(previous *roadnet.Segment, candidate *roadnet.Segment) bool {
	if previous == nil {
		return true
	}

	from, _ := p.network.Node(previous.From)
	junction, _ := p.network.Node(previous.To)
	next, _ := p.network.Node(candidate.To)

	if from == nil || junction == nil || next == nil {
		return true
	}

	turn := geomath.ClassifyTurn(from.Position, junction.Position, next.Position)

	return candidate.Restrictions.Allows(turn)
}

func (p *Pathfinder) reconstruct(cameFrom map[string]string, arrivedBy map[string]*roadnet.Segment, startID string, goalID string, emergency bool) *roadnet.Route {
	nodeIDs := []string{goalID}
	segmentIDs := []string{}
	distance := 0.0

	current := goalID
	for current != startID {
		segment := arrivedBy[current]
		if segment != nil {
			segmentIDs = append(segmentIDs, segment.ID)
			distance += segment.Distance
		}

		previous, exists := cameFrom[current]
		if !exists {
			break
		}

		nodeIDs = append(nodeIDs, previous)
		current = previous
	}

	slices.Reverse(nodeIDs)
	slices.Reverse(segmentIDs)

	waypoints := make([]orb.Point, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		node, _ := p.network.Node(id)
		waypoints = append(waypoints, node.Position)
	}

	return &roadnet.Route{
		Waypoints:  waypoints,
		NodeIDs:    nodeIDs,
		SegmentIDs: segmentIDs,
		Distance:   distance,
		Emergency:  emergency,
	}
}
