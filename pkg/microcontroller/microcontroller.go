package microcontroller

import (
	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// Dialect selects the markup vocabulary a microcontroller is written in
type Dialect uint8

const (
	// GameDialect is the <microprocessor> layout the game saves
	GameDialect Dialect = iota
	// CompactDialect is the hand-written <mc> layout
	CompactDialect
)

func (d Dialect) String() string {
	if d == CompactDialect {
		return "compact"
	}
	return "game"
}

// Microcontroller is one parsed microcontroller file
type Microcontroller struct {
	Name          string
	Description   string
	Width         uint8
	Length        uint8
	IDCounter     uint32
	IDCounterNode *uint32
	Icon          [16]uint16
	DataType      *string // <data type>

	Nodes       []*IONode
	Components  []*Component
	Connections []Connection

	Dialect Dialect
	Format  markup.Format
	Prolog  string
	Epilog  string

	registry    *schema.Registry
	bridgeOrder []uint32     // components_bridge order, by id
	orphans     []*Component // bridges no node refers to

	lits       codec.Literals
	dataLits   codec.Literals
	root       Extras
	nodes      Extras
	group      Extras
	data       Extras
	components Extras
	bridges    Extras
	sections   map[string]*markup.Node // groups, group_states, inputs, outputs

	// section names as written, nil when built in memory
	rootSections  []string
	groupSections []string
	dataSections  []string
}

// New returns an empty microcontroller as the game creates it
func New() *Microcontroller {
	return &Microcontroller{
		Name:        "New microcontroller",
		Description: "No description set.",
		Width:       2,
		Length:      2,
		Format:      markup.DefaultFormat,
		Prolog:      markup.DefaultProlog,
		Epilog:      markup.DefaultEpilog,
		registry:    schema.Default(),
	}
}

// Registry returns the kind table the microcontroller resolves kinds with
func (mc *Microcontroller) Registry() *schema.Registry {
	if mc.registry == nil {
		return schema.Default()
	}
	return mc.registry
}

// Component looks up a logic component or bridge by id
func (mc *Microcontroller) Component(id uint32) (*Component, bool) {
	for _, c := range mc.AllComponents() {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// Node looks up an IO node by id
func (mc *Microcontroller) Node(id uint32) (*IONode, bool) {
	for _, n := range mc.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// AllComponents lists logic components followed by bridges
func (mc *Microcontroller) AllComponents() []*Component {
	all := append([]*Component(nil), mc.Components...)
	return append(all, mc.Bridges()...)
}

// Bridges lists bridge components in components_bridge order. Bridges
// missing from the order follow in node order.
func (mc *Microcontroller) Bridges() []*Component {
	byID := make(map[uint32]*Component)
	var free []*Component
	for _, n := range mc.Nodes {
		if n.Logic == nil {
			continue
		}
		byID[n.Logic.ID] = n.Logic
		free = append(free, n.Logic)
	}
	for _, c := range mc.orphans {
		byID[c.ID] = c
		free = append(free, c)
	}

	var out []*Component
	done := make(map[*Component]bool)
	for _, id := range mc.bridgeOrder {
		c, ok := byID[id]
		if !ok || done[c] {
			continue
		}
		done[c] = true
		out = append(out, c)
	}
	for _, c := range free {
		if !done[c] {
			done[c] = true
			out = append(out, c)
		}
	}
	return out
}

// BridgeOrder returns the ids in components_bridge order
func (mc *Microcontroller) BridgeOrder() []uint32 {
	return append([]uint32(nil), mc.bridgeOrder...)
}

func (mc *Microcontroller) section(name string) *markup.Node {
	if n, ok := mc.sections[name]; ok {
		return n.Clone()
	}
	return markup.NewElement(name)
}

func (mc *Microcontroller) keepSection(n *markup.Node) {
	if mc.sections == nil {
		mc.sections = make(map[string]*markup.Node)
	}
	mc.sections[n.Name] = n
}
