package microcontroller

import (
	"fmt"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// Emit <mc>
func (e *emitter) compact() (*markup.Node, error) {
	mc := e.mc
	if len(mc.Nodes) > 0 || len(mc.orphans) > 0 {
		return nil, invalid("mc", "the compact dialect has no IO nodes")
	}

	w := newAttrWriter(schema.CompactRoot, mc.lits, "mc")
	if mc.Name != "" || mc.lits.Present("name") {
		w.str("name", mc.Name)
	}
	if mc.Description != "" || mc.lits.Present("description") {
		w.str("description", mc.Description)
	}
	if mc.Width != 0 || mc.lits.Present("width") {
		w.u8("width", mc.Width)
	}
	if mc.Length != 0 || mc.lits.Present("length") {
		w.u8("length", mc.Length)
	}
	root, err := w.element(&mc.root)
	if err != nil {
		return nil, err
	}

	// components and wires keep their source interleaving; new ones follow
	// the last of their own sort
	type child struct {
		node *markup.Node
		seq  int
	}
	var known []child
	for _, c := range mc.Components {
		n, err := e.compactComponent(c)
		if err != nil {
			return nil, err
		}
		known = append(known, child{n, c.seq})
	}
	for i := range mc.Connections {
		conn := &mc.Connections[i]
		if conn.origin == fromPort {
			continue
		}
		n, err := wire(conn)
		if err != nil {
			return nil, err
		}
		known = append(known, child{n, conn.seq})
	}
	known = follow(known, func(k child) (int, bool) { return k.seq, k.seq > 0 })

	nodes := make([]*markup.Node, 0, len(known))
	for _, k := range known {
		nodes = append(nodes, k.node)
	}
	root.Children = mc.root.mergeChildren(nodes)
	return root, nil
}

// Emit <c id x y [z] type ...attrs>body</c>
func (e *emitter) compactComponent(c *Component) (*markup.Node, error) {
	path := componentPath(c)
	if err := c.Position.check(); err != nil {
		return nil, invalid(path, "%w", err)
	}

	w := newAttrWriter(schema.CompactComponent, c.lits, path)
	w.u32("id", c.ID)
	w.f32("x", c.Position.X)
	w.f32("y", c.Position.Y)
	if c.Position.Z != nil {
		w.f32("z", *c.Position.Z)
	}
	w.str("type", c.Kind.Name)
	n, err := w.element(nil)
	if err != nil {
		return nil, err
	}

	props, err := e.properties(c, path)
	if err != nil {
		return nil, err
	}
	n.Attrs = arrange(append(n.Attrs, props...), c.attrs)

	if n.Children, err = e.body(c, path, false); err != nil {
		return nil, err
	}
	return n, nil
}

// Emit <w from out to in/>
func wire(conn *Connection) (*markup.Node, error) {
	path := fmt.Sprintf("wire %s -> %s", conn.From, conn.To)
	for _, port := range []int{conn.From.Port, conn.To.Port} {
		if port < 0 || port > 255 {
			return nil, invalid(path, "port %d out of range", port)
		}
	}
	w := newAttrWriter(schema.Wire, conn.lits, path)
	w.u32("from", conn.From.Component)
	w.put("out", codec.Int(codec.KindUint8, int64(conn.From.Port)))
	w.u32("to", conn.To.Component)
	w.put("in", codec.Int(codec.KindUint8, int64(conn.To.Port)))
	n, err := w.element(conn.extras)
	if err != nil {
		return nil, err
	}
	n.Children = conn.extras.mergeChildren(nil)
	return n, nil
}
