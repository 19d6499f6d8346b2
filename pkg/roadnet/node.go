package roadnet

import "github.com/paulmach/orb"

type JunctionType string

const (
	JunctionPlain     JunctionType = "plain"
	JunctionSignalled JunctionType = "signalled"
	JunctionDeadEnd   JunctionType = "dead-end"
)

type Node struct {
	ID       string       `json:"id" yaml:"id"`
	Position orb.Point    `json:"position" yaml:"position,flow"`
	Type     JunctionType `json:"type" yaml:"type"`

	// Segment ids, maintained by the network as segments are added.
	Outgoing []string `json:"outgoing" yaml:"-"`
	Incoming []string `json:"incoming" yaml:"-"`
}
