package microcontroller

import (
	"fmt"
	"slices"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// ToText renders the microcontroller in its dialect and layout
func (mc *Microcontroller) ToText() (string, error) {
	doc, err := mc.Document()
	if err != nil {
		return "", err
	}
	return markup.Write(doc), nil
}

// Document builds the markup tree without rendering it
func (mc *Microcontroller) Document() (*markup.Document, error) {
	e := &emitter{mc: mc}
	if err := e.indexConnections(); err != nil {
		return nil, err
	}

	var root *markup.Node
	var err error
	if mc.Dialect == CompactDialect {
		root, err = e.compact()
	} else {
		root, err = e.microprocessor()
	}
	if err != nil {
		return nil, err
	}
	if err := e.checkConsumed(); err != nil {
		return nil, err
	}

	return &markup.Document{Prolog: mc.Prolog, Root: root, Epilog: mc.Epilog, Format: mc.Format}, nil
}

type emitter struct {
	mc      *Microcontroller
	drivers map[Endpoint]*Connection // by destination, for port attributes
	bound   map[*Slot]*Connection    // read from a port and still pointing at it
	used    map[*Connection]bool
}

// indexConnections maps each input to its driver. A connection read from a
// port stays with that port, so components sharing an id keep their own
// drivers. Compact wires stay wires.
func (e *emitter) indexConnections() error {
	e.drivers = make(map[Endpoint]*Connection)
	e.bound = make(map[*Slot]*Connection)
	e.used = make(map[*Connection]bool)
	seen := make(map[Endpoint]bool)
	var free []*Connection
	for i := range e.mc.Connections {
		conn := &e.mc.Connections[i]
		if conn.origin != fromPort || conn.slot == nil || conn.To != conn.bound || e.bound[conn.slot] != nil {
			free = append(free, conn)
			continue
		}
		e.bound[conn.slot] = conn
		seen[conn.To] = true
	}
	for _, conn := range free {
		if seen[conn.To] {
			return invalid("connection "+conn.To.String(), "input is driven more than once")
		}
		seen[conn.To] = true
		if e.mc.Dialect == CompactDialect && conn.origin != fromPort {
			continue
		}
		e.drivers[conn.To] = conn
	}
	return nil
}

// driver returns the connection an input slot writes, if any
func (e *emitter) driver(c *Component, s *Slot) (*Connection, bool) {
	if conn, ok := e.bound[s]; ok && conn.To.Component == c.ID {
		return conn, true
	}
	conn, ok := e.drivers[Endpoint{Component: c.ID, Port: s.Port.Index}]
	return conn, ok
}

func (e *emitter) checkConsumed() error {
	for i := range e.mc.Connections {
		conn := &e.mc.Connections[i]
		indexed := e.drivers[conn.To] == conn || (conn.slot != nil && e.bound[conn.slot] == conn)
		if indexed && !e.used[conn] {
			return invalid(fmt.Sprintf("connection %s -> %s", conn.From, conn.To), "destination component or input port does not exist")
		}
	}
	return nil
}

// Emit <microprocessor>
func (e *emitter) microprocessor() (*markup.Node, error) {
	mc := e.mc
	w := newAttrWriter(schema.Microprocessor, mc.lits, "microprocessor")
	w.str("name", mc.Name)
	w.str("description", mc.Description)
	w.u8("width", mc.Width)
	w.u8("length", mc.Length)
	w.u32("id_counter", mc.IDCounter)
	if mc.IDCounterNode != nil {
		w.u32("id_counter_node", *mc.IDCounterNode)
	}
	for i, sym := range mc.Icon {
		w.u16(symName(i), sym)
	}
	root, err := w.element(&mc.root)
	if err != nil {
		return nil, err
	}

	nodes, err := e.nodes()
	if err != nil {
		return nil, err
	}
	group, err := e.group()
	if err != nil {
		return nil, err
	}
	root.Children = mc.root.mergeChildren(sections([]*markup.Node{nodes, group}, mc.rootSections, "nodes", "group"))
	return root, nil
}

// Emit <nodes>
func (e *emitter) nodes() (*markup.Node, error) {
	list := markup.NewElement("nodes")
	for _, node := range e.mc.Nodes {
		n, err := e.node(node)
		if err != nil {
			return nil, err
		}
		list.Children = append(list.Children, n)
	}
	list.Children = e.mc.nodes.mergeChildren(list.Children)
	return list, nil
}

// Emit <n id component_id><node .../></n>
func (e *emitter) node(node *IONode) (*markup.Node, error) {
	path := fmt.Sprintf("node %d", node.ID)
	if node.Logic != nil && !node.Logic.Kind.Bridge {
		return nil, invalid(path, "logic component %d is not a bridge", node.Logic.ID)
	}
	if node.Logic != nil && !node.Logic.Kind.Unknown {
		if want, ok := e.mc.Registry().BridgeFor(node.Type, node.Mode == InputNode); ok && want.Code != node.Logic.Kind.Code {
			return nil, invalid(path, "%s node %s needs bridge %s, has %s", node.Mode, node.Type, want.Name, node.Logic.Kind.Name)
		}
	}

	w := newAttrWriter(schema.NodeEntry, node.entryLits, path)
	w.u32("id", node.ID)
	w.u32("component_id", node.ComponentID())
	entry, err := w.element(&node.entry)
	if err != nil {
		return nil, err
	}

	d := newAttrWriter(schema.NodeDesign, node.designLits, path)
	d.str("label", node.Label)
	d.u8("mode", uint8(node.Mode))
	d.u8("type", uint8(node.Type))
	d.str("description", node.Description)
	design, err := d.element(&node.design)
	if err != nil {
		return nil, err
	}

	var known []*markup.Node
	if node.Position != (NodePosition{}) || (node.posSource != nil && *node.posSource == node.Position) {
		p := newAttrWriter(schema.NodePosition, node.posLits, path)
		p.f32("x", node.Position.X)
		p.f32("z", node.Position.Z)
		pos, err := p.element(&node.pos)
		if err != nil {
			return nil, err
		}
		pos.Children = node.pos.mergeChildren(nil)
		known = append(known, pos)
	}
	design.Children = node.design.mergeChildren(known)
	entry.Children = node.entry.mergeChildren([]*markup.Node{design})
	return entry, nil
}

// Emit <group>
func (e *emitter) group() (*markup.Node, error) {
	mc := e.mc
	data, err := e.dataSection()
	if err != nil {
		return nil, err
	}

	components := markup.NewElement("components")
	states := markup.NewElement("component_states")
	for i, c := range mc.Components {
		entry, state, err := e.gameComponent(c, i)
		if err != nil {
			return nil, err
		}
		components.Children = append(components.Children, entry)
		states.Children = append(states.Children, state)
	}
	components.Children = mc.components.mergeChildren(components.Children)

	bridges := markup.NewElement("components_bridge")
	bridgeStates := markup.NewElement("component_bridge_states")
	for i, c := range mc.Bridges() {
		entry, state, err := e.gameComponent(c, i)
		if err != nil {
			return nil, err
		}
		bridges.Children = append(bridges.Children, entry)
		bridgeStates.Children = append(bridgeStates.Children, state)
	}
	bridges.Children = mc.bridges.mergeChildren(bridges.Children)

	// a list the source lacked is added once it has entries, with its states
	grow := []string{"components", "components_bridge"}
	if !slices.Contains(mc.groupSections, "components") {
		grow = append(grow, "component_states")
	}
	if !slices.Contains(mc.groupSections, "components_bridge") {
		grow = append(grow, "component_bridge_states")
	}

	g := markup.NewElement("group")
	g.Children = mc.group.mergeChildren(sections([]*markup.Node{
		data,
		components,
		bridges,
		mc.section("groups"),
		states,
		bridgeStates,
		mc.section("group_states"),
	}, mc.groupSections, grow...))
	return g, nil
}

// Emit <data type><inputs/><outputs/></data>
func (e *emitter) dataSection() (*markup.Node, error) {
	mc := e.mc
	w := newAttrWriter(schema.Data, mc.dataLits, "data")
	if mc.DataType != nil {
		w.str("type", *mc.DataType)
	}
	data, err := w.element(&mc.data)
	if err != nil {
		return nil, err
	}
	data.Children = mc.data.mergeChildren(sections([]*markup.Node{mc.section("inputs"), mc.section("outputs")}, mc.dataSections))
	return data, nil
}

// Emit <c type><object .../></c> and its <cN> state entry
func (e *emitter) gameComponent(c *Component, index int) (*markup.Node, *markup.Node, error) {
	path := componentPath(c)
	if c.Kind.Code < 0 {
		return nil, nil, invalid(path, "kind %s has no type code", c.Kind.Name)
	}
	w := newAttrWriter(schema.ComponentEntry, c.wrapLits, path)
	w.u16("type", uint16(c.Kind.Code))
	wrap, err := w.element(&c.wrap)
	if err != nil {
		return nil, nil, err
	}

	obj, err := e.object(c, -1)
	if err != nil {
		return nil, nil, err
	}
	wrap.Children = c.wrap.mergeChildren([]*markup.Node{obj})

	state, err := e.object(c, index)
	if err != nil {
		return nil, nil, err
	}
	return wrap, state, nil
}

// object emits the component body. A state entry (state >= 0) is named
// c<state> after its list position and omits a zero id.
func (e *emitter) object(c *Component, state int) (*markup.Node, error) {
	path := componentPath(c)
	if err := c.Position.check(); err != nil {
		return nil, invalid(path, "%w", err)
	}

	tag := "object"
	var attrs []markup.Attr
	if state >= 0 {
		tag = fmt.Sprintf("c%d", state)
	}
	if state < 0 || c.ID != 0 {
		attrs = append(attrs, markup.Attr{Name: "id", Value: c.lits.Text("id", codec.Int(codec.KindUint32, int64(c.ID)))})
	}

	props, err := e.properties(c, path)
	if err != nil {
		return nil, err
	}
	obj := markup.NewElement(tag, arrange(append(attrs, props...), c.attrs)...)

	children, err := e.body(c, path, true)
	if err != nil {
		return nil, err
	}
	obj.Children = children
	return obj, nil
}

// properties emits the property bag in order
func (e *emitter) properties(c *Component, path string) ([]markup.Attr, error) {
	var out []markup.Attr
	for _, spec := range c.Kind.Attrs {
		if _, ok := c.Props.Get(spec.Name); spec.Required && !ok {
			return nil, invalid(path, "required attribute %s is not set", spec.Name)
		}
	}
	for _, prop := range c.Props.List() {
		spec, ok := c.Kind.Attr(prop.Name)
		if !ok || prop.Value.Kind() == codec.KindRaw {
			if err := codec.Check(prop.Value); err != nil {
				return nil, invalid(path, "attribute %s: %w", prop.Name, err)
			}
			out = append(out, markup.Attr{Name: prop.Name, Value: codec.Encode(prop.Value)})
			continue
		}
		// a value decoded from the source keeps its literal even when it is the default
		var lits codec.Literals
		if _, set := prop.Value.Literal(); set {
			lits.Remember(prop.Name, prop.Value)
		}
		if err := writeValue(&out, spec, prop.Name, prop.Value, lits, path); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// body emits the children of a component in document order
func (e *emitter) body(c *Component, path string, withPos bool) ([]*markup.Node, error) {
	var out []*markup.Node
	posDone := !withPos
	writePos := c.Position.X != 0 || c.Position.Y != 0 ||
		(c.posSource != nil && c.posSource.X == c.Position.X && c.posSource.Y == c.Position.Y)

	for _, ent := range c.body {
		switch ent.kind {
		case posEntry:
			if posDone {
				continue
			}
			posDone = true
			if writePos {
				pos, err := e.pos(c, path)
				if err != nil {
					return nil, err
				}
				out = append(out, pos)
			}
		case slotEntry:
			n, err := e.slot(c, ent, path)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		case valueEntry:
			n, err := textValue(ent.tag, ent.value, path)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		case itemsEntry:
			n, err := dropdown(ent.items, path)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		case rawEntry:
			out = append(out, ent.node.Clone())
		}
	}

	if !posDone && writePos {
		pos, err := e.pos(c, path)
		if err != nil {
			return nil, err
		}
		out = append([]*markup.Node{pos}, out...)
	}
	return out, nil
}

func (e *emitter) pos(c *Component, path string) (*markup.Node, error) {
	w := newAttrWriter(schema.Pos, c.posLits, path)
	w.f32("x", c.Position.X)
	w.f32("y", c.Position.Y)
	n, err := w.element(&c.pos)
	if err != nil {
		return nil, err
	}
	n.Children = c.pos.mergeChildren(nil)
	return n, nil
}

// slot emits a port element; an input names its driver
func (e *emitter) slot(c *Component, ent *entry, path string) (*markup.Node, error) {
	s := ent.slot
	w := newAttrWriter(schema.PortElement, s.lits, path)
	if s.Input {
		if conn, ok := e.driver(c, s); ok {
			e.used[conn] = true
			w.lits = conn.lits
			w.u32("component_id", conn.From.Component)
			if conn.From.Port < 0 || conn.From.Port > 255 {
				return nil, invalid(path, "source port %d out of range", conn.From.Port)
			}
			w.u8("node_index", uint8(conn.From.Port))
		}
	}
	n, err := w.named(ent.tag, &s.extras)
	if err != nil {
		return nil, err
	}
	n.Children = s.extras.mergeChildren(nil)
	return n, nil
}

func textValue(tag string, tv *TextValue, path string) (*markup.Node, error) {
	w := newAttrWriter(schema.TextValue, tv.lits, path+" value "+tag)
	w.str("text", tv.Text)
	w.f64("value", tv.Value)
	n, err := w.named(tag, &tv.extras)
	if err != nil {
		return nil, err
	}
	n.Children = tv.extras.mergeChildren(nil)
	return n, nil
}

func dropdown(d *Dropdown, path string) (*markup.Node, error) {
	items := markup.NewElement("items")
	items.Attrs = d.extras.arrange(d.extras.mergeAttrs(nil))
	for i, item := range d.Items {
		w := newAttrWriter(schema.Item, item.lits, fmt.Sprintf("%s item %d", path, i))
		w.str("l", item.Label)
		n, err := w.element(&item.extras)
		if err != nil {
			return nil, err
		}
		var known []*markup.Node
		if item.hasV {
			v, err := textValue("v", &item.Value, path)
			if err != nil {
				return nil, err
			}
			known = append(known, v)
		}
		n.Children = item.extras.mergeChildren(known)
		items.Children = append(items.Children, n)
	}
	items.Children = d.extras.mergeChildren(items.Children)
	return items, nil
}
