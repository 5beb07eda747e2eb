package schema

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/swmc/pkg/codec"
)

//go:embed kinds.yaml
var kindsYAML []byte

// SignalType is the type carried by a port or an IO node
type SignalType uint8

const (
	OnOff     SignalType = 0
	Number    SignalType = 1
	Power     SignalType = 2
	Fluid     SignalType = 3
	Electric  SignalType = 4
	Composite SignalType = 5
	Video     SignalType = 6
	Audio     SignalType = 7
	Rope      SignalType = 8

	// AnySignal marks ports of kinds missing from the table
	AnySignal SignalType = 255
)

var signalNames = map[string]SignalType{
	"onoff":     OnOff,
	"number":    Number,
	"power":     Power,
	"fluid":     Fluid,
	"electric":  Electric,
	"composite": Composite,
	"video":     Video,
	"audio":     Audio,
	"rope":      Rope,
}

func (t SignalType) String() string {
	for name, st := range signalNames {
		if st == t {
			return name
		}
	}
	return "signal(" + strconv.Itoa(int(t)) + ")"
}

// ParseSignalType maps a signal name back to its type
func ParseSignalType(name string) (SignalType, error) {
	st, ok := signalNames[name]
	if !ok {
		return 0, fmt.Errorf("schema: unknown signal type %q", name)
	}
	return st, nil
}

// Port is one input or output of a component kind
type Port struct {
	Name  string     // e.g. "input_a"
	Tag   string     // element name in the file, e.g. "in1"
	Type  SignalType // signal carried
	Index int        // zero-based position among the kind's inputs or outputs
}

// Kind describes one component kind: its ports, attributes and value children
type Kind struct {
	Code     int
	Name     string
	Title    string
	Bridge   bool
	Inputs   []Port
	Outputs  []Port
	Attrs    []Attr
	Values   []string // text/value children, in file order
	Dropdown bool     // has an <items> list
	Script   string   // attribute holding the script source, if any
	Unknown  bool     // not in the table; ports are inferred from tags
}

// Attr looks up a declared attribute of the kind
func (k *Kind) Attr(name string) (Attr, bool) {
	for _, a := range k.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// AttrIndex returns the declaration index of an attribute, or -1
func (k *Kind) AttrIndex(name string) int {
	for i, a := range k.Attrs {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// HasValue reports whether tag is one of the kind's text/value children
func (k *Kind) HasValue(tag string) bool {
	for _, v := range k.Values {
		if v == tag {
			return true
		}
	}
	return false
}

var (
	inputTag  = regexp.MustCompile(`^in([0-9]+)$`)
	outputTag = regexp.MustCompile(`^out([0-9]+)$`)
)

// InputByTag resolves the nth occurrence (from 0) of an input element tag
func (k *Kind) InputByTag(tag string, occurrence int) (Port, bool) {
	return lookupPort(k.Inputs, tag, occurrence, k.Unknown, inputTag)
}

// OutputByTag resolves the nth occurrence (from 0) of an output element tag
func (k *Kind) OutputByTag(tag string, occurrence int) (Port, bool) {
	return lookupPort(k.Outputs, tag, occurrence, k.Unknown, outputTag)
}

func lookupPort(ports []Port, tag string, occurrence int, infer bool, pattern *regexp.Regexp) (Port, bool) {
	if infer {
		m := pattern.FindStringSubmatch(tag)
		if m == nil || occurrence > 0 {
			return Port{}, false
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Port{}, false
		}
		return Port{Name: tag, Tag: tag, Type: AnySignal, Index: n - 1}, true
	}

	seen := 0
	for _, p := range ports {
		if p.Tag != tag {
			continue
		}
		if seen == occurrence {
			return p, true
		}
		seen++
	}
	return Port{}, false
}

// Input returns the input port with the given index
func (k *Kind) Input(index int) (Port, bool) {
	if k.Unknown {
		if index < 0 {
			return Port{}, false
		}
		tag := "in" + strconv.Itoa(index+1)
		return Port{Name: tag, Tag: tag, Type: AnySignal, Index: index}, true
	}
	if index < 0 || index >= len(k.Inputs) {
		return Port{}, false
	}
	return k.Inputs[index], true
}

// Output returns the output port with the given index
func (k *Kind) Output(index int) (Port, bool) {
	if k.Unknown {
		if index < 0 {
			return Port{}, false
		}
		tag := "out" + strconv.Itoa(index+1)
		return Port{Name: tag, Tag: tag, Type: AnySignal, Index: index}, true
	}
	if index < 0 || index >= len(k.Outputs) {
		return Port{}, false
	}
	return k.Outputs[index], true
}

// Registry indexes component and bridge kinds by code and name
type Registry struct {
	components   map[int]*Kind
	componentsBy map[string]*Kind
	bridges      map[int]*Kind
	bridgesBy    map[string]*Kind
	order        []*Kind
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry built from the embedded kind table
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		r, err := Load(kindsYAML)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Component returns the component kind for a code. Codes missing from the
// table yield a kind whose ports are inferred from element tags.
func (r *Registry) Component(code int) *Kind {
	if k, ok := r.components[code]; ok {
		return k
	}
	return &Kind{Code: code, Name: fmt.Sprintf("unknown_%d", code), Unknown: true}
}

// ComponentByName returns the component kind with the given name
func (r *Registry) ComponentByName(name string) *Kind {
	if k, ok := r.componentsBy[name]; ok {
		return k
	}
	return &Kind{Code: -1, Name: name, Unknown: true}
}

// Lookup reports whether a component kind with that name exists
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.componentsBy[name]
	return k, ok
}

// Bridge returns the bridge kind for a code
func (r *Registry) Bridge(code int) *Kind {
	if k, ok := r.bridges[code]; ok {
		return k
	}
	return &Kind{Code: code, Name: fmt.Sprintf("unknown_bridge_%d", code), Bridge: true, Unknown: true}
}

// BridgeFor returns the bridge kind for a signal type and direction
func (r *Registry) BridgeFor(signal SignalType, input bool) (*Kind, bool) {
	dir := "out"
	if input {
		dir = "in"
	}
	k, ok := r.bridgesBy[signal.String()+"_"+dir]
	return k, ok
}

// Components lists component kinds in code order
func (r *Registry) Components() []*Kind {
	return append([]*Kind(nil), r.order...)
}

// kindsFile mirrors kinds.yaml
type kindsFile struct {
	Components []kindEntry `yaml:"components"`
	Bridges    []kindEntry `yaml:"bridges"`
}

type kindEntry struct {
	Code     int         `yaml:"code"`
	Name     string      `yaml:"name"`
	Title    string      `yaml:"title"`
	Inputs   []portEntry `yaml:"inputs"`
	Outputs  []portEntry `yaml:"outputs"`
	Attrs    []attrEntry `yaml:"attrs"`
	Values   []string    `yaml:"values"`
	Dropdown bool        `yaml:"dropdown"`
	Script   string      `yaml:"script"`
}

type portEntry struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Tag   string `yaml:"tag"`
	Count int    `yaml:"count"`
}

type attrEntry struct {
	Name     string  `yaml:"name"`
	Kind     string  `yaml:"kind"`
	Required bool    `yaml:"required"`
	Default  *string `yaml:"default"`
}

// Load builds a registry from a YAML kind table
func Load(data []byte) (*Registry, error) {
	var file kindsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("schema: failed to parse kind table: %w", err)
	}

	r := &Registry{
		components:   make(map[int]*Kind),
		componentsBy: make(map[string]*Kind),
		bridges:      make(map[int]*Kind),
		bridgesBy:    make(map[string]*Kind),
	}

	for _, e := range file.Components {
		k, err := e.build(false)
		if err != nil {
			return nil, err
		}
		if _, dup := r.components[k.Code]; dup {
			return nil, fmt.Errorf("schema: duplicate component code %d", k.Code)
		}
		if _, dup := r.componentsBy[k.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate component name %q", k.Name)
		}
		r.components[k.Code] = k
		r.componentsBy[k.Name] = k
		r.order = append(r.order, k)
	}

	for _, e := range file.Bridges {
		k, err := e.build(true)
		if err != nil {
			return nil, err
		}
		if _, dup := r.bridges[k.Code]; dup {
			return nil, fmt.Errorf("schema: duplicate bridge code %d", k.Code)
		}
		r.bridges[k.Code] = k
		r.bridgesBy[k.Name] = k
	}

	return r, nil
}

func (e kindEntry) build(bridge bool) (*Kind, error) {
	if e.Name == "" {
		return nil, fmt.Errorf("schema: kind %d has no name", e.Code)
	}
	k := &Kind{
		Code:     e.Code,
		Name:     e.Name,
		Title:    e.Title,
		Bridge:   bridge,
		Values:   e.Values,
		Dropdown: e.Dropdown,
		Script:   e.Script,
	}

	var err error
	if k.Inputs, err = expandPorts(e.Inputs, "in"); err != nil {
		return nil, fmt.Errorf("schema: kind %s: %w", e.Name, err)
	}
	if k.Outputs, err = expandPorts(e.Outputs, "out"); err != nil {
		return nil, fmt.Errorf("schema: kind %s: %w", e.Name, err)
	}

	for _, a := range e.Attrs {
		kind, err := codec.ParseKind(a.Kind)
		if err != nil {
			return nil, fmt.Errorf("schema: kind %s attribute %s: %w", e.Name, a.Name, err)
		}
		switch {
		case a.Required:
			k.Attrs = append(k.Attrs, Required(a.Name, kind))
		case a.Default != nil:
			def, err := codec.Decode(*a.Default, kind)
			if err != nil {
				return nil, fmt.Errorf("schema: kind %s attribute %s: bad default: %w", e.Name, a.Name, err)
			}
			k.Attrs = append(k.Attrs, Attr{Name: a.Name, Kind: kind, HasDefault: true, Default: def.WithoutLiteral()})
		default:
			k.Attrs = append(k.Attrs, Optional(a.Name, kind))
		}
	}

	if k.Script != "" {
		if a, ok := k.Attr(k.Script); !ok || a.Kind != codec.KindString {
			return nil, fmt.Errorf("schema: kind %s: script attribute %q must be a declared string", e.Name, k.Script)
		}
	}
	return k, nil
}

// expandPorts numbers ports and applies default tags (in1, in2, ...)
func expandPorts(entries []portEntry, prefix string) ([]Port, error) {
	var ports []Port
	for _, e := range entries {
		st, err := ParseSignalType(e.Type)
		if err != nil {
			return nil, err
		}

		if e.Count > 0 && e.Tag == "" {
			return nil, fmt.Errorf("repeated port %s needs a tag pattern", e.Name)
		}
		count := e.Count
		if count == 0 {
			count = 1
		}
		for i := 1; i <= count; i++ {
			p := Port{Type: st, Index: len(ports)}
			switch {
			case e.Count > 0:
				p.Name = fmt.Sprintf("%s%d", e.Name, i)
				p.Tag = fmt.Sprintf(e.Tag, i)
			case e.Tag != "":
				p.Name = e.Name
				p.Tag = e.Tag
			default:
				p.Name = e.Name
				p.Tag = fmt.Sprintf("%s%d", prefix, len(ports)+1)
			}
			ports = append(ports, p)
		}
	}
	return ports, nil
}
