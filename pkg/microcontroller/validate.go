package microcontroller

import (
	"errors"
	"fmt"
)

// MaxSize is the largest width or length the game allows
const MaxSize = 6

// Validate checks the invariants the game relies on. Every failure is
// reported; the result is nil or an errors.Join of *ValidationError.
func (mc *Microcontroller) Validate() error {
	var errs []error
	fail := func(rule, format string, args ...any) {
		errs = append(errs, &ValidationError{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if mc.Dialect == GameDialect || mc.Width != 0 || mc.Length != 0 {
		if mc.Width < 1 || mc.Width > MaxSize || mc.Length < 1 || mc.Length > MaxSize {
			fail("size", "%dx%d is outside 1..%d", mc.Width, mc.Length, MaxSize)
		}
	}

	var maxNode uint32
	if mc.IDCounterNode != nil {
		maxNode = *mc.IDCounterNode
	}
	ordered := make(map[uint32]bool)
	for _, id := range mc.bridgeOrder {
		ordered[id] = true
	}
	nodeIDs := make(map[uint32]bool)
	for _, node := range mc.Nodes {
		if nodeIDs[node.ID] {
			fail("node id", "node id %d is used twice", node.ID)
		}
		nodeIDs[node.ID] = true
		if !ordered[node.ComponentID()] {
			fail("bridge order", "bridge %d of node %d is missing from components_bridge", node.ComponentID(), node.ID)
		}
		if node.ID > maxNode {
			fail("node id", "node id %d is above id_counter_node %d", node.ID, maxNode)
		}
	}

	componentIDs := make(map[uint32]bool)
	for _, c := range mc.AllComponents() {
		if componentIDs[c.ID] {
			fail("component id", "component id %d is used twice", c.ID)
		}
		componentIDs[c.ID] = true
		if mc.Dialect == GameDialect && c.ID > mc.IDCounter {
			fail("component id", "component id %d is above id_counter %d", c.ID, mc.IDCounter)
		}
	}

	return errors.Join(errs...)
}
