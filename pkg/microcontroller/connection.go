package microcontroller

import (
	"fmt"

	"github.com/OpenTraceLab/swmc/pkg/codec"
)

// Endpoint names one port of one component. Port is zero-based.
type Endpoint struct {
	Component uint32
	Port      int
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%d:%d", e.Component, e.Port)
}

type origin uint8

const (
	fromModel origin = iota // created through the API
	fromPort                // component_id/node_index on an input port
	fromWire                // compact <w>
)

// Connection is a directed edge from an output port to an input port
type Connection struct {
	From Endpoint
	To   Endpoint

	origin origin
	lits   codec.Literals
	extras *Extras
	slot   *Slot    // the input a port connection was read from
	bound  Endpoint // To when it was read
	seq    int      // place of a <w> among the <mc> children, from 1
}

// ConnectionErrorKind classifies a connection problem
type ConnectionErrorKind int

const (
	DanglingEndpoint ConnectionErrorKind = iota
	PortOutOfRange
)

func (k ConnectionErrorKind) String() string {
	switch k {
	case DanglingEndpoint:
		return "dangling endpoint"
	case PortOutOfRange:
		return "port out of range"
	}
	return fmt.Sprintf("connection error %d", int(k))
}

// ConnectionError reports one endpoint that does not resolve
type ConnectionError struct {
	Kind       ConnectionErrorKind
	Connection Connection
	Endpoint   Endpoint // the offending side
	Input      bool     // Endpoint is the destination
}

func (e ConnectionError) Error() string {
	side := "source"
	if e.Input {
		side = "destination"
	}
	return fmt.Sprintf("microcontroller: %s: %s %s of connection %s -> %s",
		e.Kind, side, e.Endpoint, e.Connection.From, e.Connection.To)
}

// CheckConnections reports connections whose endpoints name a component
// that does not exist, or a port the component's kind does not have.
// It is never run by Parse.
func (mc *Microcontroller) CheckConnections() []ConnectionError {
	var errs []ConnectionError
	for _, conn := range mc.Connections {
		for _, side := range []struct {
			ep    Endpoint
			input bool
		}{{conn.From, false}, {conn.To, true}} {
			c, ok := mc.Component(side.ep.Component)
			if !ok {
				errs = append(errs, ConnectionError{Kind: DanglingEndpoint, Connection: conn, Endpoint: side.ep, Input: side.input})
				continue
			}
			if c.Kind.Unknown {
				continue
			}
			lookup := c.Kind.Output
			if side.input {
				lookup = c.Kind.Input
			}
			if _, ok := lookup(side.ep.Port); !ok {
				errs = append(errs, ConnectionError{Kind: PortOutOfRange, Connection: conn, Endpoint: side.ep, Input: side.input})
			}
		}
	}
	return errs
}

// Connect wires an output to an input, replacing the input's current driver
func (mc *Microcontroller) Connect(from, to Endpoint) error {
	if err := mc.usePort(from, false); err != nil {
		return err
	}
	if err := mc.usePort(to, true); err != nil {
		return err
	}

	for i := range mc.Connections {
		if mc.Connections[i].To == to {
			mc.Connections[i].From = from
			return nil
		}
	}
	mc.Connections = append(mc.Connections, Connection{From: from, To: to})
	return nil
}

// Disconnect removes the driver of an input and reports whether it had one
func (mc *Microcontroller) Disconnect(to Endpoint) bool {
	for i, conn := range mc.Connections {
		if conn.To == to {
			mc.Connections = append(mc.Connections[:i], mc.Connections[i+1:]...)
			return true
		}
	}
	return false
}

// Driver returns the connection feeding an input
func (mc *Microcontroller) Driver(to Endpoint) (Connection, bool) {
	for _, conn := range mc.Connections {
		if conn.To == to {
			return conn, true
		}
	}
	return Connection{}, false
}

// usePort checks that the endpoint names a real port. Game files also need
// the port element present in the component body.
func (mc *Microcontroller) usePort(ep Endpoint, input bool) error {
	c, ok := mc.Component(ep.Component)
	if !ok {
		return fmt.Errorf("microcontroller: no component %d", ep.Component)
	}
	if mc.Dialect == GameDialect {
		_, err := c.addSlot(input, ep.Port)
		return err
	}
	lookup := c.Kind.Output
	if input {
		lookup = c.Kind.Input
	}
	if _, ok := lookup(ep.Port); !ok {
		return fmt.Errorf("microcontroller: %s has no %s %d", c.Kind.Name, direction(input), ep.Port)
	}
	return nil
}

func (mc *Microcontroller) dropConnections(id uint32) {
	kept := mc.Connections[:0]
	for _, conn := range mc.Connections {
		if conn.From.Component != id && conn.To.Component != id {
			kept = append(kept, conn)
		}
	}
	mc.Connections = kept
}
