package dispatch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is the YAML-definable starting state of a simulation.
type Scenario struct {
	Name string `yaml:"name"`

	InitialFunds int   `yaml:"initial_funds"`
	Seed         int64 `yaml:"seed"`

	// NetworkFile loads a road network definition; when empty a synthetic
	// grid of GridRows x GridCols junctions is generated instead.
	NetworkFile string `yaml:"network_file,omitempty"`
	GridRows    int    `yaml:"grid_rows"`
	GridCols    int    `yaml:"grid_cols"`

	AmbientCars int `yaml:"ambient_cars"`

	// Mission spawn interval bounds in simulated minutes.
	SpawnIntervalMin float64 `yaml:"spawn_interval_min"`
	SpawnIntervalMax float64 `yaml:"spawn_interval_max"`

	Stations []ScenarioStation `yaml:"stations,omitempty"`
}

type ScenarioStation struct {
	Type     StationType `yaml:"type"`
	Position [2]float64  `yaml:"position,flow"`
	Vehicles int         `yaml:"vehicles"`
	Staff    int         `yaml:"staff"`
}

func DefaultScenario() Scenario {
	return Scenario{
		Name:             "default",
		InitialFunds:     20000,
		Seed:             1,
		GridRows:         8,
		GridCols:         8,
		AmbientCars:      12,
		SpawnIntervalMin: 2,
		SpawnIntervalMax: 6,
	}
}

func LoadScenario(path string) (Scenario, error) {
	scenario := DefaultScenario()

	data, err := os.ReadFile(path)
	if err != nil {
		return scenario, fmt.Errorf("failed to read scenario file: %w", err)
	}

	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return scenario, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if scenario.SpawnIntervalMax < scenario.SpawnIntervalMin {
		scenario.SpawnIntervalMax = scenario.SpawnIntervalMin
	}

	return scenario, nil
}
