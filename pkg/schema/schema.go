package schema

import (
	"fmt"

	"github.com/OpenTraceLab/swmc/pkg/codec"
)

// Policy decides what happens to attributes and children an element does not declare
type Policy uint8

const (
	// Preserve keeps unknown data so it is written back unchanged
	Preserve Policy = iota
	// Reject fails parsing with UnexpectedElement
	Reject
)

// Attr declares one attribute of an element.
//
// Required attributes are always written. Attributes with a default are
// omitted when they hold it. Attributes with neither are written only when
// present.
type Attr struct {
	Name       string
	Kind       codec.Kind
	Required   bool
	HasDefault bool
	Default    codec.Value
}

// Required declares a required attribute
func Required(name string, kind codec.Kind) Attr {
	return Attr{Name: name, Kind: kind, Required: true}
}

// Optional declares an optional attribute without a default
func Optional(name string, kind codec.Kind) Attr {
	return Attr{Name: name, Kind: kind}
}

// Defaulted declares an optional attribute whose default is given as a literal.
// It panics if the literal does not decode, since defaults are fixed tables.
func Defaulted(name string, kind codec.Kind, literal string) Attr {
	v, err := codec.Decode(literal, kind)
	if err != nil {
		panic(fmt.Sprintf("schema: bad default %q for %s: %v", literal, name, err))
	}
	return Attr{Name: name, Kind: kind, HasDefault: true, Default: v.WithoutLiteral()}
}

// IsDefault reports whether v equals the attribute's default
func (a Attr) IsDefault(v codec.Value) bool {
	return a.HasDefault && a.Default.Equal(v)
}

// Element declares the attributes and permitted children of one element kind
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []string
	Unknown  Policy
}

// Attr looks up a declared attribute
func (e *Element) Attr(name string) (Attr, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// Permits reports whether tag is a declared child
func (e *Element) Permits(tag string) bool {
	for _, c := range e.Children {
		if c == tag {
			return true
		}
	}
	return false
}

func iconAttrs() []Attr {
	attrs := make([]Attr, 16)
	for i := range attrs {
		attrs[i] = Defaulted(fmt.Sprintf("sym%d", i), codec.KindUint16, "0")
	}
	return attrs
}

// Game dialect elements
var (
	Microprocessor = &Element{
		Tag: "microprocessor",
		Attrs: append([]Attr{
			Defaulted("name", codec.KindString, ""),
			Defaulted("description", codec.KindString, ""),
			Required("width", codec.KindUint8),
			Required("length", codec.KindUint8),
			Defaulted("id_counter", codec.KindUint32, "0"),
			Optional("id_counter_node", codec.KindUint32),
		}, iconAttrs()...),
		Children: []string{"nodes", "group"},
	}

	Nodes = &Element{Tag: "nodes", Children: []string{"n"}, Unknown: Reject}

	NodeEntry = &Element{
		Tag: "n",
		Attrs: []Attr{
			Required("id", codec.KindUint32),
			Required("component_id", codec.KindUint32),
		},
		Children: []string{"node"},
	}

	NodeDesign = &Element{
		Tag: "node",
		Attrs: []Attr{
			Required("label", codec.KindString),
			Defaulted("mode", codec.KindUint8, "0"),
			Defaulted("type", codec.KindUint8, "0"),
			Required("description", codec.KindString),
		},
		Children: []string{"position"},
	}

	NodePosition = &Element{
		Tag: "position",
		Attrs: []Attr{
			Defaulted("x", codec.KindFloat32, "0"),
			Defaulted("z", codec.KindFloat32, "0"),
		},
	}

	Group = &Element{
		Tag: "group",
		Children: []string{
			"data", "components", "components_bridge", "groups",
			"component_states", "component_bridge_states", "group_states",
		},
	}

	Data = &Element{
		Tag:      "data",
		Attrs:    []Attr{Optional("type", codec.KindString)},
		Children: []string{"inputs", "outputs"},
	}

	Components       = &Element{Tag: "components", Children: []string{"c"}, Unknown: Reject}
	ComponentsBridge = &Element{Tag: "components_bridge", Children: []string{"c"}, Unknown: Reject}

	ComponentEntry = &Element{
		Tag:      "c",
		Attrs:    []Attr{Defaulted("type", codec.KindUint16, "0")},
		Children: []string{"object"},
	}

	// Object is the body of a component; its children depend on the kind
	Object = &Element{
		Tag:   "object",
		Attrs: []Attr{Required("id", codec.KindUint32)},
	}

	Pos = &Element{
		Tag: "pos",
		Attrs: []Attr{
			Defaulted("x", codec.KindFloat32, "0"),
			Defaulted("y", codec.KindFloat32, "0"),
		},
	}

	// PortElement is any inN/outN element; an input carries its driver
	PortElement = &Element{
		Tag: "in",
		Attrs: []Attr{
			Optional("component_id", codec.KindUint32),
			Defaulted("node_index", codec.KindUint8, "0"),
		},
	}

	TextValue = &Element{
		Tag: "min",
		Attrs: []Attr{
			Required("text", codec.KindString),
			Defaulted("value", codec.KindFloat64, "0"),
		},
	}

	Items = &Element{Tag: "items", Children: []string{"i"}, Unknown: Reject}

	Item = &Element{
		Tag:      "i",
		Attrs:    []Attr{Required("l", codec.KindString)},
		Children: []string{"v"},
	}
)

// Compact dialect elements
var (
	CompactRoot = &Element{
		Tag: "mc",
		Attrs: []Attr{
			Optional("name", codec.KindString),
			Optional("description", codec.KindString),
			Optional("width", codec.KindUint8),
			Optional("length", codec.KindUint8),
		},
		Children: []string{"c", "w"},
	}

	CompactComponent = &Element{
		Tag: "c",
		Attrs: []Attr{
			Required("id", codec.KindUint32),
			Required("x", codec.KindFloat32),
			Required("y", codec.KindFloat32),
			Optional("z", codec.KindFloat32),
			Required("type", codec.KindString),
		},
	}

	Wire = &Element{
		Tag: "w",
		Attrs: []Attr{
			Required("from", codec.KindUint32),
			Defaulted("out", codec.KindUint8, "0"),
			Required("to", codec.KindUint32),
			Defaulted("in", codec.KindUint8, "0"),
		},
	}
)
