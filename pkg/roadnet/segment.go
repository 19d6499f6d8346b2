package roadnet

import (
	"sync/atomic"

	"github.com/sirensim/sirensim/pkg/geomath"
)

type RoadClass string

const (
	ClassHighway  RoadClass = "highway"
	ClassArterial RoadClass = "arterial"
	ClassStreet   RoadClass = "street"
)

// TurnRestrictions limits which turn classes may legally be used to enter
// this segment from another one. Emergency vehicles bypass them entirely.
type TurnRestrictions struct {
	NoLeft     bool `json:"no_left,omitempty" yaml:"no_left,omitempty"`
	NoRight    bool `json:"no_right,omitempty" yaml:"no_right,omitempty"`
	NoStraight bool `json:"no_straight,omitempty" yaml:"no_straight,omitempty"`
	NoUTurn    bool `json:"no_u_turn,omitempty" yaml:"no_u_turn,omitempty"`
}

type Segment struct {
	ID   string `json:"id" yaml:"id"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`

	Distance   float64   `json:"distance" yaml:"distance"` // metres
	SpeedLimit float64   `json:"speed_limit" yaml:"speed_limit"` // km/h
	Class      RoadClass `json:"class" yaml:"class"`
	Lanes      int       `json:"lanes" yaml:"lanes"`

	MaxCapacity  int              `json:"max_capacity" yaml:"max_capacity"`
	Restrictions TurnRestrictions `json:"restrictions,omitempty" yaml:"restrictions,omitempty"`

	// Vehicles currently observed on the segment. Written by the congestion
	// monitor on the tick path, read from the pathfinder and from async route
	// resolutions, hence atomic.
	occupancy int64
}

func (s *Segment) Occupancy() int {
	return int(atomic.LoadInt64(&s.occupancy))
}

func (s *Segment) SetOccupancy(count int) {
	if count < 0 {
		count = 0
	}

	atomic.StoreInt64(&s.occupancy, int64(count))
}

// Density is occupancy over capacity, clamped to [0, 1].
func (s *Segment) Density() float64 {
	if s.MaxCapacity <= 0 {
		return 0
	}

	density := float64(s.Occupancy()) / float64(s.MaxCapacity)
	if density > 1 {
		return 1
	}

	return density
}

// Allows reports whether a turn of the given class may enter this segment.
func (r TurnRestrictions) Allows(turn geomath.TurnClass) bool {
	switch turn {
	case geomath.TurnLeft:
		return !r.NoLeft
	case geomath.TurnRight:
		return !r.NoRight
	case geomath.TurnStraight:
		return !r.NoStraight
	case geomath.TurnUTurn:
		return !r.NoUTurn
	}

	return true
}
