package roadnet

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type networkFile struct {
	Nodes    []*Node    `yaml:"nodes"`
	Segments []*Segment `yaml:"segments"`
}

// LoadFile reads a road network definition from a YAML file.
func LoadFile(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}

	var file networkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse network file: %w", err)
	}

	network := NewNetwork()

	for _, node := range file.Nodes {
		if node.Type == "" {
			node.Type = JunctionPlain
		}

		if err := network.AddNode(node); err != nil {
			return nil, err
		}
	}

	for _, segment := range file.Segments {
		if err := network.AddSegment(segment); err != nil {
			log.Warn().Err(err).Str("segment", segment.ID).Msg("Skipping invalid segment")
		}
	}

	log.Info().
		Int("nodes", network.NodeCount()).
		Int("segments", network.SegmentCount()).
		Str("file", path).
		Msg("Loaded road network")

	return network, nil
}
