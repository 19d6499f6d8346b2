package traffic

import (
	"math"
	"math/rand"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/sirensim/sirensim/pkg/roadnet"
)

type Phase int

const (
	PhaseGreen Phase = iota
	PhaseYellow
	PhaseRed
)

func (p Phase) String() string {
	switch p {
	case PhaseGreen:
		return "green"
	case PhaseYellow:
		return "yellow"
	case PhaseRed:
		return "red"
	}

	return "unknown"
}

type Direction int

const (
	DirectionNS Direction = iota
	DirectionEW
)

func (d Direction) String() string {
	if d == DirectionEW {
		return "ew"
	}

	return "ns"
}

// Other returns the opposing direction.
func (d Direction) Other() Direction {
	if d == DirectionNS {
		return DirectionEW
	}

	return DirectionNS
}

// DirectionOfBearing buckets a compass bearing into the two signal
// directions.
func DirectionOfBearing(bearing float64) Direction {
	bearing = math.Mod(bearing+360, 360)
	if (bearing >= 45 && bearing < 135) || (bearing >= 225 && bearing < 315) {
		return DirectionEW
	}

	return DirectionNS
}

const (
	defaultCycleTime = 60.0 // seconds for a full NS+EW cycle

	greenFraction  = 0.5
	yellowFraction = 0.15
	// remainder of each half-cycle is red
)

// Light is the signal state machine at one junction. Phase and active
// direction are derived purely from (elapsed + offset) mod cycle, so the
// light needs no stored phase and cannot drift.
type Light struct {
	NodeID    string
	CycleTime float64
	Offset    float64

	Override          bool
	OverrideDirection Direction

	elapsed float64
}

func (l *Light) advance(dt float64) {
	l.elapsed += dt
}

// stateAt derives the active direction and the phase seen by the given
// direction from the light's local cycle position.
func (l *Light) state(direction Direction) Phase {
	active, phase := l.current()

	if direction == active {
		return phase
	}

	return PhaseRed
}

func (l *Light) current() (Direction, Phase) {
	local := math.Mod(l.elapsed+l.Offset, l.CycleTime)
	half := l.CycleTime / 2

	active := DirectionNS
	if local >= half {
		active = DirectionEW
		local -= half
	}

	switch {
	case local < half*greenFraction:
		return active, PhaseGreen
	case local < half*(greenFraction+yellowFraction):
		return active, PhaseYellow
	default:
		return active, PhaseRed
	}
}

// Manager owns the lights of every signalled junction in a network.
type Manager struct {
	lights map[string]*Light

	// TimeMultiplier scales wall-clock deltas into simulated signal time.
	TimeMultiplier float64
}

// NewManager creates a light for every signalled junction, with offsets
// drawn from a seeded generator so a scenario replays identically.
func NewManager(network *roadnet.Network, seed int64) *Manager {
	rng := rand.New(rand.NewSource(seed))
	lights := map[string]*Light{}

	for _, id := range network.NodeIDs() {
		node, _ := network.Node(id)
		if node.Type != roadnet.JunctionSignalled {
			continue
		}

		lights[id] = &Light{
			NodeID:    id,
			CycleTime: defaultCycleTime,
			Offset:    rng.Float64() * defaultCycleTime,
		}
	}

	return &Manager{
		lights:         lights,
		TimeMultiplier: 1,
	}
}

func (m *Manager) Update(dt float64) {
	scaled := dt * m.TimeMultiplier

	for _, light := range m.lights {
		light.advance(scaled)
	}
}

// CanProceed reports whether traffic in the given direction may enter the
// junction: green or yellow. Junctions without a light always proceed.
func (m *Manager) CanProceed(nodeID string, direction Direction) bool {
	light, exists := m.lights[nodeID]
	if !exists {
		return true
	}

	phase := light.state(direction)

	return phase == PhaseGreen || phase == PhaseYellow
}

// SignalEmergency flags an approaching emergency vehicle. If the requested
// direction is not active the light flips immediately by mirroring its
// elapsed time into the other half-cycle. The jump is deliberate: preemption
// is supposed to be visible, not smoothed over.
func (m *Manager) SignalEmergency(nodeID string, direction Direction) {
	light, exists := m.lights[nodeID]
	if !exists {
		return
	}

	light.Override = true
	light.OverrideDirection = direction

	active, _ := light.current()
	if active == direction {
		return
	}

	half := light.CycleTime / 2
	local := math.Mod(light.elapsed+light.Offset, light.CycleTime)

	if local < half {
		light.elapsed += half
	} else {
		light.elapsed -= half
	}
}

// ClearEmergency removes a preemption override once the vehicle is through.
func (m *Manager) ClearEmergency(nodeID string) {
	if light, exists := m.lights[nodeID]; exists {
		light.Override = false
	}
}

// State exposes the derived phase and active direction of one junction.
func (m *Manager) State(nodeID string) (Direction, Phase, bool) {
	light, exists := m.lights[nodeID]
	if !exists {
		return DirectionNS, PhaseRed, false
	}

	direction, phase := light.current()

	return direction, phase, true
}

func (m *Manager) LightCount() int {
	return len(m.lights)
}

// LightState is a point-in-time view of one junction's signal.
type LightState struct {
	NodeID    string
	Direction Direction
	Phase     Phase
	Override  bool
}

// States returns the current state of every light, ordered by node id.
func (m *Manager) States() []LightState {
	ids := maps.Keys(m.lights)
	slices.Sort(ids)

	states := make([]LightState, 0, len(ids))
	for _, id := range ids {
		light := m.lights[id]
		direction, phase := light.current()

		states = append(states, LightState{
			NodeID:    id,
			Direction: direction,
			Phase:     phase,
			Override:  light.Override,
		})
	}

	return states
}
