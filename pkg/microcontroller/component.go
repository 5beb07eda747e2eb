package microcontroller

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// Position is where a component sits on the grid
type Position struct {
	X float32
	Y float32
	Z *float32 // compact dialect only
}

func (p Position) isZero() bool {
	return p.X == 0 && p.Y == 0
}

func (p Position) check() error {
	for _, f := range []float32{p.X, p.Y} {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("coordinate %v has no decimal literal", f)
		}
	}
	if p.Z != nil && (math.IsNaN(float64(*p.Z)) || math.IsInf(float64(*p.Z), 0)) {
		return fmt.Errorf("coordinate %v has no decimal literal", *p.Z)
	}
	return nil
}

// ScriptBlock is the verbatim script of a script component
type ScriptBlock struct {
	Source string
}

// TextValue is a text/value child such as <min text="0" value="0"/>
type TextValue struct {
	Text  string
	Value float64

	lits   codec.Literals
	extras Extras
}

// DropdownItem is one <i> of a dropdown list
type DropdownItem struct {
	Label string
	Value TextValue

	lits   codec.Literals
	extras Extras
	hasV   bool // <v> written in the source
}

// Dropdown is the <items> list of a property dropdown
type Dropdown struct {
	Items []*DropdownItem

	extras Extras
}

// Slot is a port element of a component body. Inputs carry their driver
// when the microcontroller is emitted.
type Slot struct {
	Port  schema.Port
	Input bool

	lits   codec.Literals
	extras Extras
}

type entryKind uint8

const (
	posEntry entryKind = iota
	slotEntry
	valueEntry
	itemsEntry
	rawEntry
)

// entry is one child of a component body, in document order
type entry struct {
	kind  entryKind
	tag   string
	slot  *Slot
	value *TextValue
	items *Dropdown
	node  *markup.Node
}

// Component is one logic component or bridge
type Component struct {
	Kind     *schema.Kind
	ID       uint32
	Position Position
	Props    *Properties

	body      []*entry
	lits      codec.Literals // object or compact c attributes
	attrs     []markup.Attr  // the same attributes as written
	wrapLits  codec.Literals // game <c type>
	wrap      Extras
	posLits   codec.Literals
	pos       Extras
	posSource *Position
	seq       int // place among the <mc> children, from 1
}

func newComponent(kind *schema.Kind) *Component {
	return &Component{Kind: kind, Props: &Properties{}}
}

// Property returns a property value, falling back to the kind's default
func (c *Component) Property(name string) (codec.Value, bool) {
	if v, ok := c.Props.Get(name); ok {
		return v, true
	}
	if spec, ok := c.Kind.Attr(name); ok && spec.HasDefault {
		return spec.Default, true
	}
	return codec.Value{}, false
}

// SetProperty stores a property. Declared attributes must match their kind;
// new properties are placed in declaration order.
func (c *Component) SetProperty(name string, v codec.Value) error {
	if name == "id" {
		return fmt.Errorf("microcontroller: id is not a property")
	}
	if spec, ok := c.Kind.Attr(name); ok {
		if v.Kind() != spec.Kind {
			return fmt.Errorf("microcontroller: %s attribute %s is %s, not %s", c.Kind.Name, name, spec.Kind, v.Kind())
		}
	} else if !c.Kind.Unknown {
		return fmt.Errorf("microcontroller: %s has no attribute %s", c.Kind.Name, name)
	}
	if err := codec.Check(v); err != nil {
		return fmt.Errorf("microcontroller: %s attribute %s: %w", c.Kind.Name, name, err)
	}
	c.Props.put(name, v.WithoutLiteral(), c.Kind.AttrIndex)
	return nil
}

// Script returns the script of a script component
func (c *Component) Script() (ScriptBlock, bool) {
	if c.Kind.Script == "" {
		return ScriptBlock{}, false
	}
	v, ok := c.Props.Get(c.Kind.Script)
	if !ok {
		return ScriptBlock{}, true
	}
	return ScriptBlock{Source: v.Str()}, true
}

// SetScript replaces the script of a script component
func (c *Component) SetScript(source string) error {
	if c.Kind.Script == "" {
		return fmt.Errorf("microcontroller: %s has no script", c.Kind.Name)
	}
	return c.SetProperty(c.Kind.Script, codec.String(source))
}

// Value returns a text/value child
func (c *Component) Value(tag string) (*TextValue, bool) {
	for _, e := range c.body {
		if e.kind == valueEntry && e.tag == tag {
			return e.value, true
		}
	}
	return nil, false
}

// SetValue sets a text/value child, adding it when missing
func (c *Component) SetValue(tag, text string, value float64) error {
	if !c.Kind.HasValue(tag) {
		return fmt.Errorf("microcontroller: %s has no value %s", c.Kind.Name, tag)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("microcontroller: value %v has no decimal literal", value)
	}
	if tv, ok := c.Value(tag); ok {
		tv.Text = text
		tv.Value = value
		return nil
	}
	c.insert(&entry{kind: valueEntry, tag: tag, value: &TextValue{Text: text, Value: value}})
	return nil
}

// Dropdown returns the dropdown list, creating it for dropdown kinds
func (c *Component) Dropdown() (*Dropdown, bool) {
	for _, e := range c.body {
		if e.kind == itemsEntry {
			return e.items, true
		}
	}
	if !c.Kind.Dropdown {
		return nil, false
	}
	d := &Dropdown{}
	c.insert(&entry{kind: itemsEntry, tag: "items", items: d})
	return d, true
}

// Items returns the dropdown items without creating a list
func (c *Component) Items() []*DropdownItem {
	for _, e := range c.body {
		if e.kind == itemsEntry {
			return e.items.Items
		}
	}
	return nil
}

// Add appends an item to the list
func (d *Dropdown) Add(label, text string, value float64) *DropdownItem {
	item := &DropdownItem{Label: label, Value: TextValue{Text: text, Value: value}, hasV: true}
	d.Items = append(d.Items, item)
	return item
}

// Input returns the slot of an input port
func (c *Component) Input(index int) (*Slot, bool) {
	return c.slot(true, index)
}

// Output returns the slot of an output port
func (c *Component) Output(index int) (*Slot, bool) {
	return c.slot(false, index)
}

func (c *Component) slot(input bool, index int) (*Slot, bool) {
	for _, e := range c.body {
		if e.kind == slotEntry && e.slot.Input == input && e.slot.Port.Index == index {
			return e.slot, true
		}
	}
	return nil, false
}

// Slots returns the port slots in document order
func (c *Component) Slots() []*Slot {
	var slots []*Slot
	for _, e := range c.body {
		if e.kind == slotEntry {
			slots = append(slots, e.slot)
		}
	}
	return slots
}

// addSlot creates the slot of a declared port if it is missing
func (c *Component) addSlot(input bool, index int) (*Slot, error) {
	if s, ok := c.slot(input, index); ok {
		return s, nil
	}
	lookup := c.Kind.Output
	if input {
		lookup = c.Kind.Input
	}
	port, ok := lookup(index)
	if !ok {
		return nil, fmt.Errorf("microcontroller: %s has no %s %d", c.Kind.Name, direction(input), index)
	}
	s := &Slot{Port: port, Input: input}
	c.insert(&entry{kind: slotEntry, tag: port.Tag, slot: s})
	return s, nil
}

func direction(input bool) string {
	if input {
		return "input"
	}
	return "output"
}

// rank orders body entries the way the game writes a new component:
// inputs, outputs, then values and the dropdown
func (c *Component) rank(e *entry) int {
	switch e.kind {
	case posEntry:
		return 0
	case slotEntry:
		if e.slot.Input {
			return 1 + e.slot.Port.Index
		}
		return 1 + 1000 + e.slot.Port.Index
	case valueEntry:
		for i, tag := range c.Kind.Values {
			if tag == e.tag {
				return 3000 + i
			}
		}
		return 3000 + len(c.Kind.Values)
	case itemsEntry:
		return 4000
	}
	return -1
}

// insert places a new entry before the first ranked entry that sorts after it
func (c *Component) insert(e *entry) {
	r := c.rank(e)
	at := len(c.body)
	for i, other := range c.body {
		if o := c.rank(other); o >= 0 && o > r {
			at = i
			break
		}
	}
	c.body = append(c.body, nil)
	copy(c.body[at+1:], c.body[at:])
	c.body[at] = e
}

// declarePorts creates slots for every port of a freshly built component
func (c *Component) declarePorts() {
	for _, p := range c.Kind.Inputs {
		c.body = append(c.body, &entry{kind: slotEntry, tag: p.Tag, slot: &Slot{Port: p, Input: true}})
	}
	for _, p := range c.Kind.Outputs {
		c.body = append(c.body, &entry{kind: slotEntry, tag: p.Tag, slot: &Slot{Port: p}})
	}
}
