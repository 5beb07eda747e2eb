package export

import (
	"bytes"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/swmc/pkg/microcontroller"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

const circuit = `<mc name="limiter"><c id="1" x="0" y="0" type="constant_number"/><c id="2" x="1.5" y="0" type="clamp"><min text="0"/><max text="10" value="10"/></c><c id="3" x="2" y="1" type="capacitor" ct="2.5"/><w from="1" to="2"/></mc>`

func load(t *testing.T) Document {
	t.Helper()
	mc, err := microcontroller.FromText(circuit)
	require.NoError(t, err)
	return FromMicrocontroller(mc)
}

func TestFromMicrocontroller(t *testing.T) {
	doc := load(t)

	assert.Equal(t, "compact", doc.Dialect)
	assert.Equal(t, "limiter", doc.Name)
	assert.Empty(t, doc.Nodes)
	require.Len(t, doc.Components, 3)

	clamp := doc.Components[1]
	assert.Equal(t, "clamp", clamp.Kind)
	assert.Equal(t, float32(1.5), clamp.X)
	assert.Equal(t, map[string]float64{"min": 0, "max": 10}, clamp.Values)

	capacitor := doc.Components[2]
	assert.Equal(t, 2.5, capacitor.Properties["ct"])
	assert.Equal(t, 1.0, capacitor.Properties["dt"], "defaults are filled in")

	assert.Equal(t, []Connection{{From: 1, To: 2}}, doc.Connections)
}

func TestGameNodes(t *testing.T) {
	mc := microcontroller.New()
	node, err := mc.AddIO(microcontroller.InputNode, schema.Number)
	require.NoError(t, err)
	node.Label = "Throttle"

	doc := FromMicrocontroller(mc)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, Node{ID: 1, Label: "Throttle", Mode: "input", Type: "number", Description: microcontroller.DefaultNodeDescription, Component: 1}, doc.Nodes[0])
	require.Len(t, doc.Components, 1)
	assert.True(t, doc.Components[0].Bridge)
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, load(t), JSON))
	assert.Contains(t, buf.String(), "\n  \"dialect\": \"compact\"")

	var back map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "limiter", back["name"])
	assert.Len(t, back["components"], 3)
}

func TestEncodeYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, load(t), YAML))

	var back Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "limiter", back.Name)
	require.Len(t, back.Components, 3)
	assert.Equal(t, map[string]float64{"min": 0, "max": 10}, back.Components[1].Values)
	assert.Equal(t, []Connection{{From: 1, To: 2}}, back.Connections)
}

func TestEncodeCBORIsDeterministic(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, Encode(&first, load(t), CBOR))
	require.NoError(t, Encode(&second, load(t), CBOR))
	assert.Equal(t, first.Bytes(), second.Bytes())

	var back Document
	require.NoError(t, cbor.Unmarshal(first.Bytes(), &back))
	assert.Equal(t, "limiter", back.Name)
	assert.Equal(t, []Connection{{From: 1, To: 2}}, back.Connections)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": JSON, "YAML": YAML, "yml": YAML, "cbor": CBOR} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("toml")
	assert.Error(t, err)
	assert.Error(t, Encode(&bytes.Buffer{}, Document{}, Format("toml")))
}
