package microcontroller

import (
	"github.com/OpenTraceLab/swmc/pkg/codec"
)

// Property is one attribute of a component object
type Property struct {
	Name  string
	Value codec.Value
}

// Properties is the ordered attribute bag of a component. Attributes the
// kind does not declare are kept in place as raw values.
type Properties struct {
	list []Property
}

// Len returns the number of stored properties
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.list)
}

// List returns a copy of the properties in file order
func (p *Properties) List() []Property {
	if p == nil {
		return nil
	}
	return append([]Property(nil), p.list...)
}

// Get returns the stored value of a property
func (p *Properties) Get(name string) (codec.Value, bool) {
	if i := p.index(name); i >= 0 {
		return p.list[i].Value, true
	}
	return codec.Value{}, false
}

// Delete removes a property and reports whether it was stored
func (p *Properties) Delete(name string) bool {
	i := p.index(name)
	if i < 0 {
		return false
	}
	p.list = append(p.list[:i], p.list[i+1:]...)
	return true
}

func (p *Properties) index(name string) int {
	if p == nil {
		return -1
	}
	for i, prop := range p.list {
		if prop.Name == name {
			return i
		}
	}
	return -1
}

func (p *Properties) append(name string, v codec.Value) {
	p.list = append(p.list, Property{Name: name, Value: v})
}

// put replaces a stored value in place, or inserts the property before the
// first stored one whose rank is higher
func (p *Properties) put(name string, v codec.Value, rank func(string) int) {
	if i := p.index(name); i >= 0 {
		p.list[i].Value = v
		return
	}
	r := rank(name)
	at := len(p.list)
	for i, prop := range p.list {
		if other := rank(prop.Name); other >= 0 && other > r {
			at = i
			break
		}
	}
	p.list = append(p.list, Property{})
	copy(p.list[at+1:], p.list[at:])
	p.list[at] = Property{Name: name, Value: v}
}
