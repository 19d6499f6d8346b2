package roadnet

import (
	"encoding/json"

	"github.com/paulmach/orb"
)

// Route is a planned path between two positions. Routes are immutable once
// built; a reroute replaces the whole value, it never edits one in place.
type Route struct {
	Waypoints  []orb.Point `json:"waypoints"`
	NodeIDs    []string    `json:"node_ids,omitempty"`
	SegmentIDs []string    `json:"segment_ids,omitempty"`
	Distance   float64     `json:"distance"` // metres
	Emergency  bool        `json:"emergency,omitempty"`

	// Fallback marks a locally generated approximation rather than a path
	// over the road network.
	Fallback bool `json:"fallback,omitempty"`
}

func (r *Route) Start() orb.Point {
	if len(r.Waypoints) == 0 {
		return orb.Point{}
	}

	return r.Waypoints[0]
}

func (r *Route) End() orb.Point {
	if len(r.Waypoints) == 0 {
		return orb.Point{}
	}

	return r.Waypoints[len(r.Waypoints)-1]
}

func (r *Route) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

func (r *Route) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}
