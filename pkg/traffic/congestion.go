package traffic

import (
	"github.com/sirensim/sirensim/pkg/roadnet"
)

type Level int

const (
	LevelClear Level = iota
	LevelModerate
	LevelHeavy
	LevelGridlock
)

func (l Level) String() string {
	switch l {
	case LevelClear:
		return "clear"
	case LevelModerate:
		return "moderate"
	case LevelHeavy:
		return "heavy"
	case LevelGridlock:
		return "gridlock"
	}

	return "unknown"
}

// Score maps a level onto a representative density used when averaging
// congestion over a whole route.
func (l Level) Score() float64 {
	switch l {
	case LevelClear:
		return 0.1
	case LevelModerate:
		return 0.45
	case LevelHeavy:
		return 0.725
	case LevelGridlock:
		return 0.925
	}

	return 0
}

func LevelOf(density float64) Level {
	switch {
	case density < 0.3:
		return LevelClear
	case density < 0.6:
		return LevelModerate
	case density < 0.85:
		return LevelHeavy
	default:
		return LevelGridlock
	}
}

const historyWindow = 20

// Monitor keeps a bounded occupancy history per road segment and writes the
// latest observation back into the network, from which density and level
// classifications are derived.
type Monitor struct {
	network *roadnet.Network

	window  int
	history map[string][]int
}

func NewMonitor(network *roadnet.Network) *Monitor {
	return &Monitor{
		network: network,
		window:  historyWindow,
		history: map[string][]int{},
	}
}

// Observe counts the vehicles assigned to each segment by route membership,
// appends the counts to each segment's history and updates live occupancy.
// Called once per simulation tick.
func (m *Monitor) Observe(activeRoutes []*roadnet.Route) {
	counts := map[string]int{}

	for _, route := range activeRoutes {
		if route == nil {
			continue
		}

		for _, segmentID := range route.SegmentIDs {
			counts[segmentID]++
		}
	}

	for segmentID, count := range counts {
		m.push(segmentID, count)

		if segment, exists := m.network.Segment(segmentID); exists {
			segment.SetOccupancy(count)
		}
	}

	// Segments nobody is using decay straight to empty.
	for segmentID, samples := range m.history {
		if _, active := counts[segmentID]; active || len(samples) == 0 {
			continue
		}

		m.push(segmentID, 0)

		if segment, exists := m.network.Segment(segmentID); exists {
			segment.SetOccupancy(0)
		}
	}
}

func (m *Monitor) push(segmentID string, count int) {
	samples := append(m.history[segmentID], count)
	if len(samples) > m.window {
		samples = samples[len(samples)-m.window:]
	}

	m.history[segmentID] = samples
}

// History returns the recorded samples for a segment, newest last.
func (m *Monitor) History(segmentID string) []int {
	return m.history[segmentID]
}

// SegmentLevel classifies the live congestion on one segment.
func (m *Monitor) SegmentLevel(segmentID string) Level {
	return LevelOf(m.network.Density(segmentID))
}

// PredictRoute is the mean level score across a route's segments. Routes
// without road-network segments (fallback geometry) read as clear.
func (m *Monitor) PredictRoute(route *roadnet.Route) float64 {
	if route == nil || len(route.SegmentIDs) == 0 {
		return LevelClear.Score()
	}

	total := 0.0
	for _, segmentID := range route.SegmentIDs {
		total += m.SegmentLevel(segmentID).Score()
	}

	return total / float64(len(route.SegmentIDs))
}
