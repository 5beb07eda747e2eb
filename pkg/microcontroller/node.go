package microcontroller

import (
	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// NodeMode is the direction of an IO node
type NodeMode uint8

const (
	OutputNode NodeMode = 0
	InputNode  NodeMode = 1
)

func (m NodeMode) String() string {
	if m == InputNode {
		return "input"
	}
	return "output"
}

// NodePosition places an IO node on the microcontroller's footprint
type NodePosition struct {
	X float32
	Z float32
}

// IONode is one external input or output of the microcontroller together
// with the bridge component that carries its signal into the logic.
type IONode struct {
	ID          uint32
	Label       string
	Mode        NodeMode
	Type        schema.SignalType
	Description string
	Position    NodePosition
	Logic       *Component

	componentID uint32 // <n component_id> when no bridge was found
	entryLits   codec.Literals
	entry       Extras
	designLits  codec.Literals
	design      Extras
	posLits     codec.Literals
	pos         Extras
	posSource   *NodePosition
}

// ComponentID returns the id of the bridge component
func (n *IONode) ComponentID() uint32 {
	if n.Logic != nil {
		return n.Logic.ID
	}
	return n.componentID
}

// DefaultNodeDescription is the description the game gives new nodes of
// either direction
const DefaultNodeDescription = "The input signal to be processed."
