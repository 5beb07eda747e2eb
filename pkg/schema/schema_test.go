package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/swmc/pkg/codec"
)

func TestDefaultRegistryCoversAllKinds(t *testing.T) {
	r := Default()

	kinds := r.Components()
	require.Len(t, kinds, 60)
	for i, k := range kinds {
		assert.Equal(t, i, k.Code)
		assert.False(t, k.Unknown)
	}

	for code := 0; code < 10; code++ {
		b := r.Bridge(code)
		assert.False(t, b.Unknown, "bridge %d", code)
		assert.True(t, b.Bridge)
		require.Len(t, b.Inputs, 1)
		require.Len(t, b.Outputs, 1)
		assert.Equal(t, "in1", b.Inputs[0].Tag)
		assert.Equal(t, "out1", b.Outputs[0].Tag)
	}
}

func TestKindPorts(t *testing.T) {
	r := Default()

	and := r.Component(1)
	assert.Equal(t, "and", and.Name)
	require.Len(t, and.Inputs, 2)
	assert.Equal(t, "in2", and.Inputs[1].Tag)
	assert.Equal(t, OnOff, and.Inputs[1].Type)

	divide, ok := r.Lookup("divide")
	require.True(t, ok)
	assert.Equal(t, 9, divide.Code)
	require.Len(t, divide.Outputs, 2)
	assert.Equal(t, OnOff, divide.Outputs[1].Type)
}

func TestNumericalJunctionSharesOutputTag(t *testing.T) {
	k := Default().Component(21)
	require.Len(t, k.Outputs, 2)
	assert.Equal(t, "out1", k.Outputs[0].Tag)
	assert.Equal(t, "out1", k.Outputs[1].Tag)

	p, ok := k.OutputByTag("out1", 1)
	require.True(t, ok)
	assert.Equal(t, 1, p.Index)
	assert.Equal(t, "off_path", p.Name)

	_, ok = k.OutputByTag("out2", 0)
	assert.False(t, ok)
}

func TestCompositeWriteTags(t *testing.T) {
	k := Default().Component(40)
	require.Len(t, k.Inputs, 34)
	assert.Equal(t, "inc", k.Inputs[0].Tag)
	assert.Equal(t, "in1", k.Inputs[1].Tag)
	assert.Equal(t, "in32", k.Inputs[32].Tag)
	assert.Equal(t, "inoff", k.Inputs[33].Tag)

	p, ok := k.InputByTag("in5", 0)
	require.True(t, ok)
	assert.Equal(t, 5, p.Index)

	count, ok := k.Attr("count")
	require.True(t, ok)
	assert.True(t, count.Required)
}

func TestAttributeDefaults(t *testing.T) {
	capacitor := Default().Component(26)
	ct, ok := capacitor.Attr("ct")
	require.True(t, ok)
	assert.True(t, ct.IsDefault(codec.Float32(1)))
	assert.False(t, ct.IsDefault(codec.Float32(2)))

	toggle := Default().Component(33)
	n, ok := toggle.Attr("n")
	require.True(t, ok)
	assert.True(t, n.IsDefault(codec.String("toggle")))

	lua := Default().Component(56)
	assert.Equal(t, "script", lua.Script)
	script, ok := lua.Attr("script")
	require.True(t, ok)
	assert.False(t, script.HasDefault)
	assert.False(t, script.Required)
}

func TestUnknownKindInfersPorts(t *testing.T) {
	r := Default()
	k := r.Component(200)
	assert.True(t, k.Unknown)

	p, ok := k.InputByTag("in3", 0)
	require.True(t, ok)
	assert.Equal(t, 2, p.Index)
	_, ok = k.InputByTag("pos", 0)
	assert.False(t, ok)

	byName := r.ComponentByName("flux_capacitor")
	assert.True(t, byName.Unknown)
	assert.Equal(t, "flux_capacitor", byName.Name)
}

func TestBridgeFor(t *testing.T) {
	k, ok := Default().BridgeFor(Number, true)
	require.True(t, ok)
	assert.Equal(t, 2, k.Code)

	k, ok = Default().BridgeFor(Audio, false)
	require.True(t, ok)
	assert.Equal(t, 9, k.Code)

	_, ok = Default().BridgeFor(Rope, true)
	assert.False(t, ok)
}

func TestLoadRejectsBadTables(t *testing.T) {
	_, err := Load([]byte("components:\n  - {code: 1, name: a}\n  - {code: 1, name: b}\n"))
	assert.Error(t, err)

	_, err = Load([]byte("components:\n  - {code: 1, name: a, inputs: [{name: x, type: plasma}]}\n"))
	assert.Error(t, err)

	_, err = Load([]byte("components:\n  - {code: 1, name: a, attrs: [{name: x, kind: float32, default: abc}]}\n"))
	assert.Error(t, err)
}

func TestElementTables(t *testing.T) {
	assert.True(t, Microprocessor.Permits("group"))
	assert.False(t, Microprocessor.Permits("c"))

	width, ok := Microprocessor.Attr("width")
	require.True(t, ok)
	assert.True(t, width.Required)

	sym, ok := Microprocessor.Attr("sym15")
	require.True(t, ok)
	assert.True(t, sym.IsDefault(codec.Int(codec.KindUint16, 0)))
	assert.Equal(t, Reject, Components.Unknown)
}

func TestPortElementNamesDriver(t *testing.T) {
	from, ok := PortElement.Attr("component_id")
	require.True(t, ok)
	assert.False(t, from.Required)
	assert.False(t, from.HasDefault)

	index, ok := PortElement.Attr("node_index")
	require.True(t, ok)
	assert.True(t, index.IsDefault(codec.Int(codec.KindUint8, 0)))

	port, ok := Default().Component(0).Input(0)
	require.True(t, ok)
	assert.Equal(t, "in1", port.Tag)
}
