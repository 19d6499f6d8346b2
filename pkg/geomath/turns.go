package geomath

import (
	"math"

	"github.com/paulmach/orb"
)

type TurnClass int

const (
	TurnStraight TurnClass = iota
	TurnLeft
	TurnRight
	TurnUTurn
)

func (t TurnClass) String() string {
	switch t {
	case TurnStraight:
		return "straight"
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	case TurnUTurn:
		return "u-turn"
	}

	return "unknown"
}

// ClassifyTurn classifies the turn a vehicle makes when it arrives at a
// junction along prevFrom->junction and leaves along junction->next. The
// class is derived from the cross and dot product of the two direction
// vectors: the dot product separates straight ahead from a reversal, the
// cross product's sign separates left from right.
func ClassifyTurn(prevFrom orb.Point, junction orb.Point, next orb.Point) TurnClass {
	v1x, v1y := junction[0]-prevFrom[0], junction[1]-prevFrom[1]
	v2x, v2y := next[0]-junction[0], next[1]-junction[1]

	len1 := math.Hypot(v1x, v1y)
	len2 := math.Hypot(v2x, v2y)
	if len1 == 0 || len2 == 0 {
		return TurnStraight
	}

	v1x, v1y = v1x/len1, v1y/len1
	v2x, v2y = v2x/len2, v2y/len2

	dot := v1x*v2x + v1y*v2y
	cross := v1x*v2y - v1y*v2x

	if dot > straightDotThreshold {
		return TurnStraight
	}
	if dot < uTurnDotThreshold {
		return TurnUTurn
	}

	if cross > 0 {
		return TurnLeft
	}

	return TurnRight
}

const (
	// Within ~30 degrees of dead ahead counts as straight.
	straightDotThreshold = 0.866
	// Beyond ~150 degrees counts as a reversal.
	uTurnDotThreshold = -0.866
)
