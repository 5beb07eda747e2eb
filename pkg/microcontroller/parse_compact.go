package microcontroller

import (
	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// compactFixed are the <c> attributes that are not kind properties
var compactFixed = map[string]bool{"id": true, "x": true, "y": true, "z": true, "type": true}

// Parse <mc>
func (p *parser) parseCompact(root *markup.Node) error {
	mc := p.mc
	set, err := decodeAttrs(root, schema.CompactRoot, p.strict)
	if err != nil {
		return err
	}
	mc.lits = set.values
	mc.root = set.extras
	mc.Name = set.str("name")
	mc.Description = set.str("description")
	mc.Width = set.u8("width")
	mc.Length = set.u8("length")

	seq := 0
	for i, child := range root.Children {
		switch {
		case child.IsElement("c"):
			c, err := p.parseCompactComponent(child)
			if err != nil {
				return err
			}
			seq++
			c.seq = seq
			mc.Components = append(mc.Components, c)
			if c.ID > mc.IDCounter {
				mc.IDCounter = c.ID
			}
		case child.IsElement("w"):
			conn, err := p.parseWire(child)
			if err != nil {
				return err
			}
			seq++
			conn.seq = seq
			mc.Connections = append(mc.Connections, conn)
		default:
			if err := p.keep(root, schema.CompactRoot.Unknown, i, child, &mc.root); err != nil {
				return err
			}
		}
	}

	// inputs may also name their driver, as in game files
	wires := mc.Connections
	mc.Connections = nil
	if err := p.collectConnections(); err != nil {
		return err
	}
	mc.Connections = append(mc.Connections, wires...)
	return nil
}

// Parse <c id x y [z] type ...attrs>body</c>
func (p *parser) parseCompactComponent(n *markup.Node) (*Component, error) {
	typ, ok := n.Attr("type")
	if !ok {
		return nil, markup.Missing(n, "type")
	}
	name, err := codec.Decode(typ.Value, codec.KindString)
	if err != nil {
		return nil, markup.Malformed(n, typ, err)
	}
	kind := p.registry.ComponentByName(name.Str())
	if kind.Unknown && p.strict {
		return nil, markup.Malformed(n, typ, errUnknownKind)
	}

	c := newComponent(kind)
	c.attrs = n.Attrs
	c.lits.Remember("type", name)
	for _, a := range n.Attrs {
		if !compactFixed[a.Name] {
			if err := p.parseProperty(n, a, c); err != nil {
				return nil, err
			}
			continue
		}
		if a.Name == "type" {
			continue
		}
		if a.Name == "id" {
			if err := p.parseID(n, a, c); err != nil {
				return nil, err
			}
			continue
		}
		v, err := codec.Decode(a.Value, codec.KindFloat32)
		if err != nil {
			return nil, markup.Malformed(n, a, err)
		}
		c.lits.Remember(a.Name, v)
		f := float32(v.Float())
		switch a.Name {
		case "x":
			c.Position.X = f
		case "y":
			c.Position.Y = f
		case "z":
			c.Position.Z = &f
		}
	}
	for _, spec := range schema.CompactComponent.Attrs {
		if spec.Required && !c.lits.Present(spec.Name) {
			return nil, markup.Missing(n, spec.Name)
		}
	}
	if err := p.checkRequired(n, c); err != nil {
		return nil, err
	}
	return c, p.parseBody(n, c, false)
}

// Parse <w from out to in/>
func (p *parser) parseWire(n *markup.Node) (Connection, error) {
	set, err := decodeAttrs(n, schema.Wire, p.strict)
	if err != nil {
		return Connection{}, err
	}
	conn := Connection{
		From:   Endpoint{Component: set.u32("from"), Port: int(set.u8("out"))},
		To:     Endpoint{Component: set.u32("to"), Port: int(set.u8("in"))},
		origin: fromWire,
		lits:   set.values,
	}
	extras := set.extras
	extras.Children = indexed(n.Children)
	conn.extras = &extras
	return conn, nil
}
