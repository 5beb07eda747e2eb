package microcontroller

import (
	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// Parse the id attribute of an object or compact component
func (p *parser) parseID(n *markup.Node, a markup.Attr, c *Component) error {
	v, err := codec.Decode(a.Value, codec.KindUint32)
	if err != nil {
		return markup.Malformed(n, a, err)
	}
	c.ID = uint32(v.Int64())
	c.lits.Remember("id", v)
	return nil
}

// Parse one kind attribute into the property bag
func (p *parser) parseProperty(n *markup.Node, a markup.Attr, c *Component) error {
	spec, ok := c.Kind.Attr(a.Name)
	if !ok {
		if p.strict {
			return &markup.ParseError{Kind: markup.UnexpectedAttribute, Tag: n.Name, Attr: a.Name, Pos: a.Pos}
		}
		c.Props.append(a.Name, codec.Raw(a.Value))
		return nil
	}
	v, err := codec.Decode(a.Value, spec.Kind)
	if err != nil {
		return markup.Malformed(n, a, err)
	}
	c.Props.append(a.Name, v)
	return nil
}

func (p *parser) checkRequired(n *markup.Node, c *Component) error {
	for _, spec := range c.Kind.Attrs {
		if _, ok := c.Props.Get(spec.Name); spec.Required && !ok {
			return markup.Missing(n, spec.Name)
		}
	}
	return nil
}

// Parse the children of an object or compact component in document order
func (p *parser) parseBody(n *markup.Node, c *Component, allowPos bool) error {
	occurrences := make(map[string]int)
	for _, child := range n.Children {
		if child.Kind != markup.ElementNode {
			c.body = append(c.body, &entry{kind: rawEntry, node: child})
			continue
		}

		if allowPos && child.Name == "pos" && c.posSource == nil {
			if err := p.parsePos(child, c); err != nil {
				return err
			}
			c.body = append(c.body, &entry{kind: posEntry, tag: "pos"})
			continue
		}

		occurrence := occurrences[child.Name]
		occurrences[child.Name]++

		if port, ok := c.Kind.InputByTag(child.Name, occurrence); ok {
			s, err := p.parseSlot(child, port, true)
			if err != nil {
				return err
			}
			c.body = append(c.body, &entry{kind: slotEntry, tag: child.Name, slot: s})
			continue
		}
		if port, ok := c.Kind.OutputByTag(child.Name, occurrence); ok {
			s, err := p.parseSlot(child, port, false)
			if err != nil {
				return err
			}
			c.body = append(c.body, &entry{kind: slotEntry, tag: child.Name, slot: s})
			continue
		}
		if c.Kind.HasValue(child.Name) && occurrence == 0 {
			tv, err := p.parseTextValue(child)
			if err != nil {
				return err
			}
			c.body = append(c.body, &entry{kind: valueEntry, tag: child.Name, value: tv})
			continue
		}
		if c.Kind.Dropdown && child.Name == "items" && occurrence == 0 {
			d, err := p.parseDropdown(child)
			if err != nil {
				return err
			}
			c.body = append(c.body, &entry{kind: itemsEntry, tag: child.Name, items: d})
			continue
		}

		if p.strict {
			return markup.Unexpected(child, n.Name)
		}
		c.body = append(c.body, &entry{kind: rawEntry, tag: child.Name, node: child})
	}
	return nil
}

// Parse <pos x y/>
func (p *parser) parsePos(n *markup.Node, c *Component) error {
	set, err := decodeAttrs(n, schema.Pos, p.strict)
	if err != nil {
		return err
	}
	c.Position.X = set.f32("x")
	c.Position.Y = set.f32("y")
	src := c.Position
	c.posSource = &src
	c.posLits = set.values
	c.pos = set.extras
	c.pos.Children = indexed(n.Children)
	return nil
}

// Parse an inN/outN port element. Inputs may carry component_id and
// node_index naming their driver; anything else is kept as is.
func (p *parser) parseSlot(n *markup.Node, port schema.Port, input bool) (*Slot, error) {
	s := &Slot{Port: port, Input: input}
	s.extras.source = n.Attrs
	s.extras.Children = indexed(n.Children)

	if _, driven := n.Attr("component_id"); !input || !driven {
		if p.strict && len(n.Attrs) > 0 {
			a := n.Attrs[0]
			return nil, &markup.ParseError{Kind: markup.UnexpectedAttribute, Tag: n.Name, Attr: a.Name, Pos: a.Pos}
		}
		for i, a := range n.Attrs {
			s.extras.addAttr(i, a)
		}
		return s, nil
	}

	set, err := decodeAttrs(n, schema.PortElement, p.strict)
	if err != nil {
		return nil, err
	}
	s.lits = set.values
	s.extras.Attrs = set.extras.Attrs
	return s, nil
}

// Parse <tag text value/>
func (p *parser) parseTextValue(n *markup.Node) (*TextValue, error) {
	set, err := decodeAttrs(n, schema.TextValue, p.strict)
	if err != nil {
		return nil, err
	}
	tv := &TextValue{
		Text:   set.str("text"),
		Value:  set.f64("value"),
		lits:   set.values,
		extras: set.extras,
	}
	tv.extras.Children = indexed(n.Children)
	return tv, nil
}

// Parse <items><i l><v text value/></i>...</items>
func (p *parser) parseDropdown(n *markup.Node) (*Dropdown, error) {
	d := &Dropdown{extras: Extras{source: n.Attrs}}
	if len(n.Attrs) > 0 {
		if p.strict {
			a := n.Attrs[0]
			return nil, &markup.ParseError{Kind: markup.UnexpectedAttribute, Tag: n.Name, Attr: a.Name, Pos: a.Pos}
		}
		for i, a := range n.Attrs {
			d.extras.addAttr(i, a)
		}
	}

	for i, child := range n.Children {
		if !child.IsElement("i") {
			if err := p.keep(n, schema.Items.Unknown, i, child, &d.extras); err != nil {
				return nil, err
			}
			continue
		}
		set, err := decodeAttrs(child, schema.Item, p.strict)
		if err != nil {
			return nil, err
		}
		item := &DropdownItem{Label: set.str("l"), lits: set.values, extras: set.extras}
		for j, gc := range child.Children {
			if gc.IsElement("v") && !item.hasV {
				tv, err := p.parseTextValue(gc)
				if err != nil {
					return nil, err
				}
				item.Value = *tv
				item.hasV = true
				continue
			}
			if err := p.keep(child, schema.Item.Unknown, j, gc, &item.extras); err != nil {
				return nil, err
			}
		}
		d.Items = append(d.Items, item)
	}
	return d, nil
}
