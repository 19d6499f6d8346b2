package roadnet

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"

	"github.com/sirensim/sirensim/pkg/geomath"
)

var ErrNoNodeInRange = errors.New("no road node within search radius")

// Network is the road graph: junction nodes joined by directed segments.
// Topology is built once and immutable afterwards; only segment occupancy
// changes at runtime.
type Network struct {
	nodes    map[string]*Node
	segments map[string]*Segment

	adjacency        map[string][]*Segment
	reverseAdjacency map[string][]*Segment

	nodeIDs []string
}

func NewNetwork() *Network {
	return &Network{
		nodes:            map[string]*Node{},
		segments:         map[string]*Segment{},
		adjacency:        map[string][]*Segment{},
		reverseAdjacency: map[string][]*Segment{},
	}
}

func (n *Network) AddNode(node *Node) error {
	if _, exists := n.nodes[node.ID]; exists {
		return fmt.Errorf("node %s already exists", node.ID)
	}

	n.nodes[node.ID] = node
	n.nodeIDs = append(n.nodeIDs, node.ID)
	slices.Sort(n.nodeIDs)

	return nil
}

func (n *Network) AddSegment(segment *Segment) error {
	from, fromExists := n.nodes[segment.From]
	to, toExists := n.nodes[segment.To]

	if !fromExists {
		return fmt.Errorf("segment %s references unknown node %s", segment.ID, segment.From)
	}
	if !toExists {
		return fmt.Errorf("segment %s references unknown node %s", segment.ID, segment.To)
	}
	if segment.Distance <= 0 {
		return fmt.Errorf("segment %s has non-positive distance", segment.ID)
	}

	n.segments[segment.ID] = segment
	n.adjacency[segment.From] = append(n.adjacency[segment.From], segment)
	n.reverseAdjacency[segment.To] = append(n.reverseAdjacency[segment.To], segment)

	from.Outgoing = append(from.Outgoing, segment.ID)
	to.Incoming = append(to.Incoming, segment.ID)

	return nil
}

func (n *Network) Node(id string) (*Node, bool) {
	node, exists := n.nodes[id]
	return node, exists
}

func (n *Network) Segment(id string) (*Segment, bool) {
	segment, exists := n.segments[id]
	return segment, exists
}

// NodeIDs returns all node ids in a stable sorted order.
func (n *Network) NodeIDs() []string {
	return n.nodeIDs
}

func (n *Network) NodeCount() int {
	return len(n.nodes)
}

func (n *Network) SegmentCount() int {
	return len(n.segments)
}

func (n *Network) Outgoing(nodeID string) []*Segment {
	return n.adjacency[nodeID]
}

func (n *Network) Incoming(nodeID string) []*Segment {
	return n.reverseAdjacency[nodeID]
}

// SegmentBetween returns the directed segment joining two adjacent nodes.
func (n *Network) SegmentBetween(fromID string, toID string) (*Segment, bool) {
	for _, segment := range n.adjacency[fromID] {
		if segment.To == toID {
			return segment, true
		}
	}

	return nil, false
}

// NearestNode finds the closest node to a position within maxRadius metres.
// A linear scan is fine at the network sizes this engine simulates. Callers
// must treat ErrNoNodeInRange as "cannot route", never guess a node.
func (n *Network) NearestNode(position orb.Point, maxRadius float64) (*Node, error) {
	var nearest *Node
	nearestDistance := maxRadius

	for _, id := range n.nodeIDs {
		node := n.nodes[id]

		distance := geomath.Distance(node.Position, position)
		if distance <= nearestDistance {
			nearest = node
			nearestDistance = distance
		}
	}

	if nearest == nil {
		return nil, ErrNoNodeInRange
	}

	return nearest, nil
}

// Density returns the congestion density of a segment, zero for unknown ids.
func (n *Network) Density(segmentID string) float64 {
	segment, exists := n.segments[segmentID]
	if !exists {
		return 0
	}

	return segment.Density()
}
