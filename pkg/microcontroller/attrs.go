package microcontroller

import (
	"fmt"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/markup"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

// attrSet is the decoded attribute list of one element
type attrSet struct {
	values codec.Literals
	extras Extras
}

func (s *attrSet) has(name string) bool { return s.values.Present(name) }

func (s *attrSet) str(name string) string { return s.values[name].Str() }

func (s *attrSet) u8(name string) uint8 { return uint8(s.values[name].Int64()) }

func (s *attrSet) u16(name string) uint16 { return uint16(s.values[name].Int64()) }

func (s *attrSet) u32(name string) uint32 { return uint32(s.values[name].Int64()) }

func (s *attrSet) f32(name string) float32 { return float32(s.values[name].Float()) }

func (s *attrSet) f64(name string) float64 { return s.values[name].Float() }

// decodeAttrs decodes the attributes of n against el. Undeclared attributes
// are kept as extras unless strict is set.
func decodeAttrs(n *markup.Node, el *schema.Element, strict bool) (*attrSet, error) {
	set := &attrSet{extras: Extras{source: n.Attrs}}
	for i, a := range n.Attrs {
		spec, ok := el.Attr(a.Name)
		if !ok {
			if strict || el.Unknown == schema.Reject {
				return nil, &markup.ParseError{Kind: markup.UnexpectedAttribute, Tag: n.Name, Attr: a.Name, Pos: a.Pos}
			}
			set.extras.addAttr(i, a)
			continue
		}
		v, err := codec.Decode(a.Value, spec.Kind)
		if err != nil {
			return nil, markup.Malformed(n, a, err)
		}
		set.values.Remember(a.Name, v)
	}
	for _, spec := range el.Attrs {
		if spec.Required && !set.has(spec.Name) {
			return nil, markup.Missing(n, spec.Name)
		}
	}
	return set, nil
}

// attrWriter builds the attribute list of an emitted element
type attrWriter struct {
	el   *schema.Element
	lits codec.Literals
	path string
	out  []markup.Attr
	err  error
}

func newAttrWriter(el *schema.Element, lits codec.Literals, path string) *attrWriter {
	return &attrWriter{el: el, lits: lits, path: path}
}

// put writes a declared attribute, omitting it when it holds its default
// unless the source spelled it out
func (w *attrWriter) put(name string, v codec.Value) {
	if w.err != nil {
		return
	}
	spec, ok := w.el.Attr(name)
	if !ok {
		w.err = invalid(w.path, "<%s> has no attribute %s", w.el.Tag, name)
		return
	}
	w.err = writeValue(&w.out, spec, name, v, w.lits, w.path)
}

// writeValue appends one typed attribute to out
func writeValue(out *[]markup.Attr, spec schema.Attr, name string, v codec.Value, lits codec.Literals, path string) error {
	if v.Kind() != spec.Kind {
		return invalid(path, "attribute %s holds %s, want %s", name, v.Kind(), spec.Kind)
	}
	if err := codec.Check(v); err != nil {
		return invalid(path, "attribute %s: %w", name, err)
	}
	if spec.IsDefault(v) && !lits.Unchanged(name, v) {
		return nil
	}
	*out = append(*out, markup.Attr{Name: name, Value: lits.Text(name, v)})
	return nil
}

func (w *attrWriter) str(name, s string) { w.put(name, codec.String(s)) }

func (w *attrWriter) u8(name string, n uint8) { w.put(name, codec.Int(codec.KindUint8, int64(n))) }

func (w *attrWriter) u16(name string, n uint16) { w.put(name, codec.Int(codec.KindUint16, int64(n))) }

func (w *attrWriter) u32(name string, n uint32) { w.put(name, codec.Int(codec.KindUint32, int64(n))) }

func (w *attrWriter) f32(name string, f float32) { w.put(name, codec.Float32(f)) }

func (w *attrWriter) f64(name string, f float64) { w.put(name, codec.Float64(f)) }

// element finishes the writer into an element carrying the preserved extras
func (w *attrWriter) element(extras *Extras) (*markup.Node, error) {
	if w.err != nil {
		return nil, w.err
	}
	n := markup.NewElement(w.el.Tag, w.out...)
	n.Attrs = extras.arrange(extras.mergeAttrs(n.Attrs))
	return n, nil
}

// named renames the element built for a shared table such as PortElement or TextValue
func (w *attrWriter) named(tag string, extras *Extras) (*markup.Node, error) {
	n, err := w.element(extras)
	if err != nil {
		return nil, err
	}
	n.Name = tag
	return n, nil
}

func componentPath(c *Component) string {
	return fmt.Sprintf("component %d (%s)", c.ID, c.Kind.Name)
}
