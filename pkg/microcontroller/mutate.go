package microcontroller

import (
	"fmt"

	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// AddComponent creates a component of the given kind with the next free id.
// In game files every declared port is written out.
func (mc *Microcontroller) AddComponent(kind *schema.Kind) *Component {
	mc.IDCounter++
	c := newComponent(kind)
	c.ID = mc.IDCounter
	if mc.Dialect == GameDialect {
		c.declarePorts()
	}
	mc.Components = append(mc.Components, c)
	return c
}

// RemoveComponent deletes a logic component and every connection touching it
func (mc *Microcontroller) RemoveComponent(id uint32) bool {
	for i, c := range mc.Components {
		if c.ID != id {
			continue
		}
		mc.Components = append(mc.Components[:i], mc.Components[i+1:]...)
		mc.dropConnections(id)
		if mc.IDCounter == id {
			mc.IDCounter--
		}
		return true
	}
	return false
}

// AddIO creates an IO node and its bridge component
func (mc *Microcontroller) AddIO(mode NodeMode, signal schema.SignalType) (*IONode, error) {
	if mc.Dialect == CompactDialect {
		return nil, fmt.Errorf("microcontroller: the compact dialect has no IO nodes")
	}
	kind, ok := mc.Registry().BridgeFor(signal, mode == InputNode)
	if !ok {
		return nil, fmt.Errorf("microcontroller: no %s bridge for %s signals", mode, signal)
	}

	var nodeID uint32 = 1
	if mc.IDCounterNode != nil {
		nodeID = *mc.IDCounterNode + 1
	}
	mc.IDCounterNode = &nodeID
	mc.IDCounter++

	bridge := newComponent(kind)
	bridge.ID = mc.IDCounter
	bridge.declarePorts()

	label := "Output"
	if mode == InputNode {
		label = "Input"
	}
	node := &IONode{
		ID:          nodeID,
		Label:       label,
		Mode:        mode,
		Type:        signal,
		Description: DefaultNodeDescription,
		Logic:       bridge,
	}
	mc.Nodes = append(mc.Nodes, node)
	mc.bridgeOrder = append(mc.bridgeOrder, bridge.ID)
	return node, nil
}

// RemoveIO deletes an IO node, its bridge and the bridge's connections
func (mc *Microcontroller) RemoveIO(id uint32) bool {
	for i, node := range mc.Nodes {
		if node.ID != id {
			continue
		}
		mc.Nodes = append(mc.Nodes[:i], mc.Nodes[i+1:]...)
		if mc.IDCounterNode != nil && *mc.IDCounterNode == id {
			n := *mc.IDCounterNode - 1
			mc.IDCounterNode = &n
		}

		bridgeID := node.ComponentID()
		order := mc.bridgeOrder[:0]
		for _, b := range mc.bridgeOrder {
			if b != bridgeID {
				order = append(order, b)
			}
		}
		mc.bridgeOrder = order
		mc.dropConnections(bridgeID)
		if mc.IDCounter == bridgeID {
			mc.IDCounter--
		}
		return true
	}
	return false
}
