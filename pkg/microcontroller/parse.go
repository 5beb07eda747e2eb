package microcontroller

import (
	"fmt"

	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// ParseOption configures Parse
type ParseOption func(*parser)

// WithStrict rejects attributes and elements the schema does not declare
// instead of preserving them
func WithStrict() ParseOption {
	return func(p *parser) { p.strict = true }
}

// WithRegistry resolves component kinds with r instead of the built-in table
func WithRegistry(r *schema.Registry) ParseOption {
	return func(p *parser) { p.registry = r }
}

type parser struct {
	strict   bool
	registry *schema.Registry
	mc       *Microcontroller
}

// FromText parses a microcontroller file in either dialect
func FromText(text string) (*Microcontroller, error) {
	return Parse(text)
}

// Parse parses a microcontroller file in either dialect
func Parse(text string, opts ...ParseOption) (*Microcontroller, error) {
	doc, err := markup.Parse(text)
	if err != nil {
		return nil, err
	}
	return ParseDocument(doc, opts...)
}

// ParseDocument builds a microcontroller from an already parsed document
func ParseDocument(doc *markup.Document, opts ...ParseOption) (*Microcontroller, error) {
	p := &parser{registry: schema.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.mc = &Microcontroller{
		Format:   doc.Format,
		Prolog:   doc.Prolog,
		Epilog:   doc.Epilog,
		registry: p.registry,
	}

	var err error
	switch doc.Root.Name {
	case schema.Microprocessor.Tag:
		err = p.parseMicroprocessor(doc.Root)
	case schema.CompactRoot.Tag:
		p.mc.Dialect = CompactDialect
		err = p.parseCompact(doc.Root)
	default:
		err = markup.Unexpected(doc.Root, "")
	}
	if err != nil {
		return nil, err
	}
	return p.mc, nil
}

// keep preserves a child the schema does not declare, or rejects it
func (p *parser) keep(parent *markup.Node, policy schema.Policy, index int, child *markup.Node, into *Extras) error {
	if child.Kind == markup.ElementNode && (p.strict || policy == schema.Reject) {
		return markup.Unexpected(child, parent.Name)
	}
	into.addChild(index, child)
	return nil
}

// Parse <microprocessor>
func (p *parser) parseMicroprocessor(root *markup.Node) error {
	mc := p.mc
	set, err := decodeAttrs(root, schema.Microprocessor, p.strict)
	if err != nil {
		return err
	}
	mc.lits = set.values
	mc.root = set.extras
	mc.Name = set.str("name")
	mc.Description = set.str("description")
	mc.Width = set.u8("width")
	mc.Length = set.u8("length")
	mc.IDCounter = set.u32("id_counter")
	if set.has("id_counter_node") {
		n := set.u32("id_counter_node")
		mc.IDCounterNode = &n
	}
	for i := range mc.Icon {
		mc.Icon[i] = set.u16(symName(i))
	}

	mc.rootSections, mc.groupSections, mc.dataSections = []string{}, []string{}, []string{}
	var nodes, group *markup.Node
	for i, child := range root.Children {
		switch {
		case child.IsElement("nodes") && nodes == nil:
			nodes = child
			mc.rootSections = append(mc.rootSections, child.Name)
		case child.IsElement("group") && group == nil:
			group = child
			mc.rootSections = append(mc.rootSections, child.Name)
		case child.IsElement("nodes"), child.IsElement("group"):
			return markup.Unexpected(child, root.Name)
		default:
			if err := p.keep(root, schema.Microprocessor.Unknown, i, child, &mc.root); err != nil {
				return err
			}
		}
	}

	// Bridges are parsed first so nodes can resolve their logic component
	bridges := make(map[uint32]*Component)
	if group != nil {
		if err := p.parseGroup(group, bridges); err != nil {
			return err
		}
	}
	if nodes != nil {
		if err := p.parseNodes(nodes, bridges); err != nil {
			return err
		}
	}
	for _, id := range mc.bridgeOrder {
		if c, ok := bridges[id]; ok {
			mc.orphans = append(mc.orphans, c)
		}
	}

	return p.collectConnections()
}

func symName(i int) string {
	return fmt.Sprintf("sym%d", i)
}

// Parse <nodes>
func (p *parser) parseNodes(list *markup.Node, bridges map[uint32]*Component) error {
	mc := p.mc
	seen := make(map[uint32]bool)
	for i, child := range list.Children {
		if !child.IsElement("n") {
			if err := p.keep(list, schema.Nodes.Unknown, i, child, &mc.nodes); err != nil {
				return err
			}
			continue
		}
		node, err := p.parseNodeEntry(child)
		if err != nil {
			return err
		}
		if c, ok := bridges[node.componentID]; ok && !seen[node.componentID] {
			node.Logic = c
			seen[node.componentID] = true
			delete(bridges, node.componentID)
		}
		mc.Nodes = append(mc.Nodes, node)
	}
	return nil
}

// Parse <n id component_id><node .../></n>
func (p *parser) parseNodeEntry(n *markup.Node) (*IONode, error) {
	set, err := decodeAttrs(n, schema.NodeEntry, p.strict)
	if err != nil {
		return nil, err
	}
	node := &IONode{
		ID:          set.u32("id"),
		componentID: set.u32("component_id"),
		entryLits:   set.values,
		entry:       set.extras,
	}

	found := false
	for i, child := range n.Children {
		if child.IsElement("node") && !found {
			found = true
			if err := p.parseNodeDesign(child, node); err != nil {
				return nil, err
			}
			continue
		}
		if child.IsElement("node") {
			return nil, markup.Unexpected(child, n.Name)
		}
		if err := p.keep(n, schema.NodeEntry.Unknown, i, child, &node.entry); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, markup.MissingChild(n, "node")
	}
	return node, nil
}

// Parse <node label mode type description><position x z/></node>
func (p *parser) parseNodeDesign(n *markup.Node, node *IONode) error {
	set, err := decodeAttrs(n, schema.NodeDesign, p.strict)
	if err != nil {
		return err
	}
	node.Label = set.str("label")
	node.Mode = NodeMode(set.u8("mode"))
	node.Type = schema.SignalType(set.u8("type"))
	node.Description = set.str("description")
	node.designLits = set.values
	node.design = set.extras

	for i, child := range n.Children {
		if child.IsElement("position") && node.posSource == nil {
			pos, err := decodeAttrs(child, schema.NodePosition, p.strict)
			if err != nil {
				return err
			}
			node.Position = NodePosition{X: pos.f32("x"), Z: pos.f32("z")}
			src := node.Position
			node.posSource = &src
			node.posLits = pos.values
			node.pos = pos.extras
			node.pos.Children = indexed(child.Children)
			continue
		}
		if child.IsElement("position") {
			return markup.Unexpected(child, n.Name)
		}
		if err := p.keep(n, schema.NodeDesign.Unknown, i, child, &node.design); err != nil {
			return err
		}
	}
	return nil
}

// indexed keeps every child of an element that has no declared children
func indexed(children []*markup.Node) []ExtraNode {
	var out []ExtraNode
	for i, c := range children {
		out = append(out, ExtraNode{Index: i, Node: c})
	}
	return out
}

// Parse <group>
func (p *parser) parseGroup(g *markup.Node, bridges map[uint32]*Component) error {
	mc := p.mc
	seen := make(map[string]bool)
	for i, child := range g.Children {
		if child.Kind != markup.ElementNode || !schema.Group.Permits(child.Name) {
			if err := p.keep(g, schema.Group.Unknown, i, child, &mc.group); err != nil {
				return err
			}
			continue
		}
		if seen[child.Name] {
			return markup.Unexpected(child, g.Name)
		}
		seen[child.Name] = true
		mc.groupSections = append(mc.groupSections, child.Name)

		var err error
		switch child.Name {
		case "data":
			err = p.parseData(child)
		case "components":
			err = p.parseComponentList(child, schema.Components, &mc.components, func(c *Component) {
				mc.Components = append(mc.Components, c)
			})
		case "components_bridge":
			err = p.parseComponentList(child, schema.ComponentsBridge, &mc.bridges, func(c *Component) {
				mc.bridgeOrder = append(mc.bridgeOrder, c.ID)
				bridges[c.ID] = c
			})
		case "component_states", "component_bridge_states":
			// regenerated from the components on emit
		default:
			mc.keepSection(child)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Parse <data type><inputs/><outputs/></data>
func (p *parser) parseData(d *markup.Node) error {
	mc := p.mc
	set, err := decodeAttrs(d, schema.Data, p.strict)
	if err != nil {
		return err
	}
	if set.has("type") {
		t := set.str("type")
		mc.DataType = &t
	}
	mc.data = set.extras
	mc.dataLits = set.values

	seen := make(map[string]bool)
	for i, child := range d.Children {
		if child.Kind == markup.ElementNode && schema.Data.Permits(child.Name) && !seen[child.Name] {
			seen[child.Name] = true
			mc.dataSections = append(mc.dataSections, child.Name)
			mc.keepSection(child)
			continue
		}
		if err := p.keep(d, schema.Data.Unknown, i, child, &mc.data); err != nil {
			return err
		}
	}
	return nil
}

// Parse <components> or <components_bridge>
func (p *parser) parseComponentList(list *markup.Node, el *schema.Element, extras *Extras, add func(*Component)) error {
	bridge := el == schema.ComponentsBridge
	for i, child := range list.Children {
		if !child.IsElement("c") {
			if err := p.keep(list, el.Unknown, i, child, extras); err != nil {
				return err
			}
			continue
		}
		c, err := p.parseComponentEntry(child, bridge)
		if err != nil {
			return err
		}
		add(c)
	}
	return nil
}

// Parse <c type><object id .../></c>
func (p *parser) parseComponentEntry(n *markup.Node, bridge bool) (*Component, error) {
	set, err := decodeAttrs(n, schema.ComponentEntry, p.strict)
	if err != nil {
		return nil, err
	}
	code := int(set.u16("type"))
	kind := p.registry.Component(code)
	if bridge {
		kind = p.registry.Bridge(code)
	}
	if kind.Unknown && p.strict {
		a, _ := n.Attr("type")
		return nil, markup.Malformed(n, a, errUnknownKind)
	}
	c := newComponent(kind)
	c.wrapLits = set.values
	c.wrap = set.extras

	found := false
	for i, child := range n.Children {
		if child.IsElement("object") && !found {
			found = true
			if err := p.parseObject(child, c); err != nil {
				return nil, err
			}
			continue
		}
		if child.IsElement("object") {
			return nil, markup.Unexpected(child, n.Name)
		}
		if err := p.keep(n, schema.ComponentEntry.Unknown, i, child, &c.wrap); err != nil {
			return nil, err
		}
	}
	if !found {
		return nil, markup.MissingChild(n, "object")
	}
	return c, nil
}

// Parse <object id ...attrs>body</object>
func (p *parser) parseObject(obj *markup.Node, c *Component) error {
	c.attrs = obj.Attrs
	idFound := false
	for _, a := range obj.Attrs {
		if a.Name != "id" {
			if err := p.parseProperty(obj, a, c); err != nil {
				return err
			}
			continue
		}
		if err := p.parseID(obj, a, c); err != nil {
			return err
		}
		idFound = true
	}
	if !idFound {
		return markup.Missing(obj, "id")
	}
	if err := p.checkRequired(obj, c); err != nil {
		return err
	}
	return p.parseBody(obj, c, true)
}

// connections are read from the driver attributes of input ports
func (p *parser) collectConnections() error {
	for _, c := range p.mc.AllComponents() {
		for _, s := range c.Slots() {
			if !s.Input || !s.lits.Present("component_id") {
				continue
			}
			conn := Connection{
				From:   Endpoint{Component: uint32(s.lits["component_id"].Int64()), Port: int(s.lits["node_index"].Int64())},
				To:     Endpoint{Component: c.ID, Port: s.Port.Index},
				origin: fromPort,
				lits:   s.lits,
				slot:   s,
			}
			conn.bound = conn.To
			p.mc.Connections = append(p.mc.Connections, conn)
		}
	}
	return nil
}
