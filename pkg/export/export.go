// Package export renders a microcontroller as a flat JSON, YAML or CBOR
// document for inspection. The result cannot be read back.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/microcontroller"
)

// Format selects the encoding
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	CBOR Format = "cbor"
)

// ParseFormat accepts json, yaml (or yml) and cbor
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case JSON, YAML, CBOR:
		return f, nil
	case "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// Document is the flattened view of one microcontroller
type Document struct {
	Dialect     string       `json:"dialect" yaml:"dialect"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Width       uint8        `json:"width" yaml:"width"`
	Length      uint8        `json:"length" yaml:"length"`
	Nodes       []Node       `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Components  []Component  `json:"components" yaml:"components"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// Node is one IO node
type Node struct {
	ID          uint32 `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Mode        string `json:"mode" yaml:"mode"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Component   uint32 `json:"component" yaml:"component"`
}

// Component is one logic component or bridge
type Component struct {
	ID         uint32             `json:"id" yaml:"id"`
	Kind       string             `json:"kind" yaml:"kind"`
	Bridge     bool               `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	X          float32            `json:"x" yaml:"x"`
	Y          float32            `json:"y" yaml:"y"`
	Properties map[string]any     `json:"properties,omitempty" yaml:"properties,omitempty"`
	Values     map[string]float64 `json:"values,omitempty" yaml:"values,omitempty"`
	Items      []Item             `json:"items,omitempty" yaml:"items,omitempty"`
}

// Item is one dropdown entry
type Item struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Connection is one edge; ports are zero-based
type Connection struct {
	From     uint32 `json:"from" yaml:"from"`
	FromPort int    `json:"from_port" yaml:"from_port"`
	To       uint32 `json:"to" yaml:"to"`
	ToPort   int    `json:"to_port" yaml:"to_port"`
}

// FromMicrocontroller flattens mc. Properties include kind defaults.
func FromMicrocontroller(mc *microcontroller.Microcontroller) Document {
	doc := Document{
		Dialect:     mc.Dialect.String(),
		Name:        mc.Name,
		Description: mc.Description,
		Width:       mc.Width,
		Length:      mc.Length,
		Components:  []Component{},
		Connections: []Connection{},
	}
	for _, n := range mc.Nodes {
		doc.Nodes = append(doc.Nodes, Node{
			ID:          n.ID,
			Label:       n.Label,
			Mode:        n.Mode.String(),
			Type:        n.Type.String(),
			Description: n.Description,
			Component:   n.ComponentID(),
		})
	}
	for _, c := range mc.AllComponents() {
		doc.Components = append(doc.Components, component(c))
	}
	for _, conn := range mc.Connections {
		doc.Connections = append(doc.Connections, Connection{
			From:     conn.From.Component,
			FromPort: conn.From.Port,
			To:       conn.To.Component,
			ToPort:   conn.To.Port,
		})
	}
	return doc
}

func component(c *microcontroller.Component) Component {
	out := Component{
		ID:     c.ID,
		Kind:   c.Kind.Name,
		Bridge: c.Kind.Bridge,
		X:      c.Position.X,
		Y:      c.Position.Y,
	}

	props := make(map[string]any)
	for _, spec := range c.Kind.Attrs {
		if v, ok := c.Property(spec.Name); ok {
			props[spec.Name] = plain(v)
		}
	}
	for _, p := range c.Props.List() {
		props[p.Name] = plain(p.Value)
	}
	if len(props) > 0 {
		out.Properties = props
	}

	for _, tag := range c.Kind.Values {
		tv, ok := c.Value(tag)
		if !ok {
			continue
		}
		if out.Values == nil {
			out.Values = make(map[string]float64)
		}
		out.Values[tag] = tv.Value
	}
	for _, item := range c.Items() {
		out.Items = append(out.Items, Item{Label: item.Label, Value: item.Value.Value})
	}
	return out
}

// plain converts a value to the Go type the encoders understand
func plain(v codec.Value) any {
	switch {
	case v.Kind() == codec.KindBool:
		return v.BoolValue()
	case v.Kind().IsInteger():
		return v.Int64()
	case v.Kind().IsFloat():
		return v.Float()
	}
	return v.Str()
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
}

// Encode writes doc to w
func Encode(w io.Writer, doc Document, f Format) error {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("export: json: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("export: yaml: %w", err)
		}
		return enc.Close()
	case CBOR:
		data, err := encMode.Marshal(doc)
		if err != nil {
			return fmt.Errorf("export: cbor: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("export: unknown format %q", string(f))
}
