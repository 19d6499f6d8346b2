package roadnet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNetworkYAML = `
nodes:
  - id: a
    position: [-0.1, 51.5]
  - id: b
    position: [-0.099, 51.5]
    type: signalled
segments:
  - id: ab
    from: a
    to: b
    distance: 70
    speed_limit: 50
    class: arterial
    max_capacity: 10
  - id: broken
    from: a
    to: nowhere
    distance: 10
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "network.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testNetworkYAML), 0644))

	network, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 2, network.NodeCount())
	// The segment referencing an unknown node is skipped, not fatal.
	assert.Equal(t, 1, network.SegmentCount())

	node, exists := network.Node("a")
	require.True(t, exists)
	assert.Equal(t, JunctionPlain, node.Type)

	signalled, _ := network.Node("b")
	assert.Equal(t, JunctionSignalled, signalled.Type)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
