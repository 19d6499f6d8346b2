package roadnet

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"github.com/sirensim/sirensim/pkg/geomath"
)

// GridOptions controls the synthetic city network generator.
type GridOptions struct {
	Rows int
	Cols int

	// Origin is the south-west corner of the grid.
	Origin orb.Point

	// SpacingDegrees is the node spacing along both axes.
	SpacingDegrees float64

	// HighwayEvery promotes every n-th row/column of roads to highway class.
	// Zero disables highways.
	HighwayEvery int

	// SignalledEvery makes every n-th junction signalled. Zero disables.
	SignalledEvery int
}

func DefaultGridOptions() GridOptions {
	return GridOptions{
		Rows:           8,
		Cols:           8,
		Origin:         orb.Point{-0.135, 51.49},
		SpacingDegrees: 0.004,
		HighwayEvery:   4,
		SignalledEvery: 3,
	}
}

// GenerateGrid builds a deterministic rows×cols grid network with two-way
// roads between adjacent junctions. Useful for tests and as the default
// scenario map; real deployments load a network file instead.
func GenerateGrid(options GridOptions) *Network {
	network := NewNetwork()

	nodeID := func(row int, col int) string {
		return fmt.Sprintf("n%d-%d", row, col)
	}

	for row := 0; row < options.Rows; row++ {
		for col := 0; col < options.Cols; col++ {
			junctionType := JunctionPlain
			if options.SignalledEvery > 0 && (row+col)%options.SignalledEvery == 0 {
				junctionType = JunctionSignalled
			}

			network.AddNode(&Node{
				ID: nodeID(row, col),
				Position: orb.Point{
					options.Origin[0] + float64(col)*options.SpacingDegrees,
					options.Origin[1] + float64(row)*options.SpacingDegrees,
				},
				Type: junctionType,
			})
		}
	}

	segmentIndex := 0

	addRoad := func(fromRow, fromCol, toRow, toCol int, class RoadClass) {
		from, _ := network.Node(nodeID(fromRow, fromCol))
		to, _ := network.Node(nodeID(toRow, toCol))

		distance := geomath.Distance(from.Position, to.Position)

		speedLimit := 50.0
		lanes := 2
		capacity := int(math.Max(4, distance/25))

		switch class {
		case ClassHighway:
			speedLimit = 100
			lanes = 3
			capacity *= 2
		case ClassStreet:
			speedLimit = 30
			lanes = 1
			capacity /= 2
		}

		for _, direction := range [][2]string{{from.ID, to.ID}, {to.ID, from.ID}} {
			network.AddSegment(&Segment{
				ID:          fmt.Sprintf("s%d", segmentIndex),
				From:        direction[0],
				To:          direction[1],
				Distance:    distance,
				SpeedLimit:  speedLimit,
				Class:       class,
				Lanes:       lanes,
				MaxCapacity: capacity,
			})
			segmentIndex++
		}
	}

	classFor := func(line int) RoadClass {
		if options.HighwayEvery > 0 && line%options.HighwayEvery == 0 {
			return ClassHighway
		}
		if line%2 == 1 {
			return ClassStreet
		}

		return ClassArterial
	}

	for row := 0; row < options.Rows; row++ {
		for col := 0; col < options.Cols; col++ {
			if col+1 < options.Cols {
				addRoad(row, col, row, col+1, classFor(row))
			}
			if row+1 < options.Rows {
				addRoad(row, col, row+1, col, classFor(col))
			}
		}
	}

	return network
}
