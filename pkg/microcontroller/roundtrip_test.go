package microcontroller

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func roundTrip(t *testing.T, text string, opts ...ParseOption) string {
	t.Helper()
	mc, err := Parse(text, opts...)
	require.NoError(t, err)
	out, err := mc.ToText()
	require.NoError(t, err)
	return out
}

func TestGameRoundTrip(t *testing.T) {
	text := readFixture(t, "junction.xml")

	out := roundTrip(t, text)
	assert.Equal(t, text, out)

	// emitting the emitted text again changes nothing
	assert.Equal(t, out, roundTrip(t, out))
}

func TestGameModel(t *testing.T) {
	mc, err := FromText(readFixture(t, "junction.xml"))
	require.NoError(t, err)

	assert.Equal(t, GameDialect, mc.Dialect)
	assert.Equal(t, "Junction test", mc.Name)
	assert.Equal(t, uint8(2), mc.Width)
	assert.Equal(t, uint8(1), mc.Length)
	assert.Equal(t, uint32(6), mc.IDCounter)
	require.NotNil(t, mc.IDCounterNode)
	assert.Equal(t, uint32(2), *mc.IDCounterNode)
	assert.Equal(t, uint16(4), mc.Icon[0])
	assert.Equal(t, uint16(65535), mc.Icon[15])
	require.NotNil(t, mc.DataType)
	assert.Equal(t, "test", *mc.DataType)

	require.Len(t, mc.Nodes, 2)
	speed := mc.Nodes[0]
	assert.Equal(t, "Speed", speed.Label)
	assert.Equal(t, InputNode, speed.Mode)
	assert.Equal(t, schema.Number, speed.Type)
	require.NotNil(t, speed.Logic)
	assert.Equal(t, "number_in", speed.Logic.Kind.Name)
	assert.Equal(t, OutputNode, mc.Nodes[1].Mode)
	assert.Equal(t, uint32(6), mc.Nodes[1].ComponentID())

	require.Len(t, mc.Components, 4)
	assert.Equal(t, []uint32{5, 6}, mc.BridgeOrder())

	junction := mc.Components[0]
	assert.Equal(t, "numerical_junction", junction.Kind.Name)
	assert.Equal(t, float32(0.25), junction.Position.X)
	assert.Equal(t, float32(-1.5), junction.Position.Y)
	offPath, ok := junction.Output(1)
	require.True(t, ok)
	assert.Equal(t, "out1", offPath.Port.Tag)

	clamp := mc.Components[1]
	upper, ok := clamp.Value("max")
	require.True(t, ok)
	assert.Equal(t, "10.5", upper.Text)
	assert.Equal(t, 10.5, upper.Value)

	read := mc.Components[2]
	slots := read.Slots()
	require.Len(t, slots, 3)
	assert.Equal(t, "in2", slots[2].Port.Tag)
	assert.True(t, slots[2].Input)
	i, ok := read.Property("i")
	require.True(t, ok)
	assert.Equal(t, int64(5), i.Int64())

	dropdown, ok := mc.Components[3].Dropdown()
	require.True(t, ok)
	require.Len(t, dropdown.Items, 2)
	assert.Equal(t, "on", dropdown.Items[1].Label)
	assert.Equal(t, 1.0, dropdown.Items[1].Value.Value)

	assert.ElementsMatch(t, []string{"5:0->1:0", "1:1->2:0", "2:0->6:0"}, edges(mc))
	assert.Empty(t, mc.CheckConnections())
	assert.NoError(t, mc.Validate())
}

func TestGameEditsAreLocal(t *testing.T) {
	text := readFixture(t, "junction.xml")
	mc, err := FromText(text)
	require.NoError(t, err)

	mc.Name = "Renamed"
	mc.Components[1].Position.X = 1.5
	out, err := mc.ToText()
	require.NoError(t, err)

	assert.Contains(t, out, `name="Renamed"`)
	assert.Contains(t, out, `<pos x="1.5" y="0"/>`)
	assert.NotContains(t, out, `<pos x="1" y="0"/>`)
	// untouched literals survive
	assert.Contains(t, out, `<max text="10.5" value="10.5"/>`)
	assert.Contains(t, out, `<position x="0" z="0"/>`)
}

func TestCompactScenario(t *testing.T) {
	text := `<mc><c id="1" x="0.0" y="0.0" type="and"/></mc>`

	mc, err := FromText(text)
	require.NoError(t, err)
	assert.Equal(t, CompactDialect, mc.Dialect)
	require.Len(t, mc.Components, 1)
	assert.Equal(t, "and", mc.Components[0].Kind.Name)

	out, err := mc.ToText()
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestCompactWires(t *testing.T) {
	text := `<mc name="blink" width="1"><c id="1" x="0" y="0" type="constant_on"/><c id="2" x="1" y="0" z="0.5" type="not"/><w from="1" to="2"/><w from="2" out="0" to="1" in="3"/></mc>`

	mc, err := FromText(text)
	require.NoError(t, err)
	assert.Equal(t, "blink", mc.Name)
	require.NotNil(t, mc.Components[1].Position.Z)
	assert.Equal(t, float32(0.5), *mc.Components[1].Position.Z)
	assert.Equal(t, []string{"1:0->2:0", "2:0->1:3"}, edges(mc))

	out, err := mc.ToText()
	require.NoError(t, err)
	assert.Equal(t, text, out)

	errs := mc.CheckConnections()
	require.Len(t, errs, 1)
	assert.Equal(t, PortOutOfRange, errs[0].Kind)
	assert.True(t, errs[0].Input)
}

func TestUnknownDataPreserved(t *testing.T) {
	text := readFixture(t, "unknown.xml")
	assert.Equal(t, text, roundTrip(t, text))

	mc, err := FromText(text)
	require.NoError(t, err)
	capacitor := mc.Components[0]
	future, ok := capacitor.Props.Get("future")
	require.True(t, ok)
	assert.Equal(t, "yes", future.Str())
}

func TestDefaultOmission(t *testing.T) {
	mc := New()
	kind, ok := mc.Registry().Lookup("capacitor")
	require.True(t, ok)
	c := mc.AddComponent(kind)

	out, err := mc.ToText()
	require.NoError(t, err)
	assert.Contains(t, out, `<object id="1">`)
	assert.NotContains(t, out, `ct=`)

	ct, ok := c.Property("ct")
	require.True(t, ok)
	assert.Equal(t, 1.0, ct.Float())

	// the default is omitted again on re-emission, and parses back to the default
	again, err := FromText(out)
	require.NoError(t, err)
	ct, ok = again.Components[0].Property("ct")
	require.True(t, ok)
	assert.Equal(t, 1.0, ct.Float())

	// a default spelled out in the source stays
	text := readFixture(t, "unknown.xml")
	assert.Contains(t, roundTrip(t, text), `ct="1"`)
}

func TestSettingDefaultDropsSpelledOutValue(t *testing.T) {
	mc, err := FromText(readFixture(t, "unknown.xml"))
	require.NoError(t, err)
	require.NoError(t, mc.Components[0].SetProperty("ct", codec.Float32(1)))

	out, err := mc.ToText()
	require.NoError(t, err)
	assert.NotContains(t, out, `ct=`)
	assert.Contains(t, out, `<object id="1" future="yes">`)
	assert.Contains(t, out, `<c0 id="1" future="yes">`)
}

func TestAttributeLayoutPreserved(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "unknown attribute between fixed ones",
			text: `<mc><c id="1" future="yes" x="0" y="0" type="and"/></mc>`,
		},
		{
			name: "type first",
			text: `<mc><c type="and" id="1" x="0" y="0"/></mc>`,
		},
		{
			name: "root and wire attributes reordered",
			text: `<mc width="1" name="w"><c id="1" x="0" y="0" type="not"/><w to="1" in="0" from="1"/></mc>`,
		},
		{
			name: "single quoted literal holding a double quote",
			text: `<mc name='say "hi"'><c id="1" x="0" y="0" type="and" note='a "b"'/></mc>`,
		},
		{
			name: "single quoted plain values",
			text: `<mc><c id='1' x='0' y='0' type='and'/></mc>`,
		},
		{
			name: "wire before components",
			text: `<mc><w from="1" to="2"/><c id="1" x="0" y="0" type="not"/><c id="2" x="0" y="0" type="not"/></mc>`,
		},
		{
			name: "components sharing an id keep their drivers",
			text: `<mc><c id="1" x="0" y="0" type="not"><in1 component_id="1"/></c><c id="1" x="0" y="0" type="not"><in1 component_id="1"/></c></mc>`,
		},
		{
			name: "game file with reordered attributes",
			text: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
				"<microprocessor width=\"1\" name=\"u\" length=\"1\" id_counter=\"1\">\n" +
				"\t<nodes/>\n" +
				"\t<group>\n" +
				"\t\t<components>\n" +
				"\t\t\t<c type=\"26\">\n" +
				"\t\t\t\t<object future=\"x\" id=\"1\">\n" +
				"\t\t\t\t\t<pos y=\"2\" x=\"1\"/>\n" +
				"\t\t\t\t</object>\n" +
				"\t\t\t</c>\n" +
				"\t\t</components>\n" +
				"\t\t<component_states>\n" +
				"\t\t\t<c0 future=\"x\" id=\"1\">\n" +
				"\t\t\t\t<pos y=\"2\" x=\"1\"/>\n" +
				"\t\t\t</c0>\n" +
				"\t\t</component_states>\n" +
				"\t</group>\n" +
				"</microprocessor>\n",
		},
		{
			name: "group holding only its components",
			text: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
				"<microprocessor name=\"u\" width=\"1\" length=\"1\" id_counter=\"0\">\n" +
				"\t<group>\n" +
				"\t\t<components/>\n" +
				"\t</group>\n" +
				"</microprocessor>\n",
		},
		{
			name: "group sections out of order",
			text: "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
				"<microprocessor name=\"u\" width=\"1\" length=\"1\" id_counter=\"0\">\n" +
				"\t<group>\n" +
				"\t\t<components_bridge/>\n" +
				"\t\t<data>\n" +
				"\t\t\t<outputs/>\n" +
				"\t\t</data>\n" +
				"\t</group>\n" +
				"\t<nodes/>\n" +
				"</microprocessor>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, roundTrip(t, tt.text))
		})
	}
}

func TestChangedQuotedLiteralIsEscaped(t *testing.T) {
	mc, err := FromText(`<mc name='say "hi"'><c id="1" x="0" y="0" type="and"/></mc>`)
	require.NoError(t, err)
	assert.Equal(t, `say "hi"`, mc.Name)

	mc.Name = `say "bye"`
	out, err := mc.ToText()
	require.NoError(t, err)
	assert.Equal(t, `<mc name="say &quot;bye&quot;"><c id="1" x="0" y="0" type="and"/></mc>`, out)

	again, err := FromText(out)
	require.NoError(t, err)
	assert.Equal(t, `say "bye"`, again.Name)
}

func TestNewChildrenFollowSourceOrder(t *testing.T) {
	mc, err := FromText(`<mc><w from="1" to="2"/><c id="1" x="0" y="0" type="not"/><c id="2" x="0" y="0" type="not"/></mc>`)
	require.NoError(t, err)

	kind, ok := mc.Registry().Lookup("and")
	require.True(t, ok)
	mc.AddComponent(kind)
	require.NoError(t, mc.Connect(Endpoint{Component: 2}, Endpoint{Component: 3, Port: 1}))

	out, err := mc.ToText()
	require.NoError(t, err)
	assert.Equal(t, `<mc><w from="1" to="2"/><c id="1" x="0" y="0" type="not"/><c id="2" x="0" y="0" type="not"/>`+
		`<c id="3" x="0" y="0" type="and"/><w from="2" to="3" in="1"/></mc>`, out)
}

func TestNewSectionsAppearWhenFilled(t *testing.T) {
	text := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		"<microprocessor name=\"u\" width=\"1\" length=\"1\" id_counter=\"0\">\n" +
		"\t<group>\n" +
		"\t\t<groups/>\n" +
		"\t</group>\n" +
		"</microprocessor>\n"
	mc, err := FromText(text)
	require.NoError(t, err)

	kind, ok := mc.Registry().Lookup("not")
	require.True(t, ok)
	mc.AddComponent(kind)

	out, err := mc.ToText()
	require.NoError(t, err)
	assert.Contains(t, out, "\t<group>\n\t\t<components>\n\t\t\t<c>\n")
	assert.Contains(t, out, "\t\t<groups/>\n\t\t<component_states>\n")
	assert.NotContains(t, out, "<data")
	assert.NotContains(t, out, "components_bridge")
	assert.NotContains(t, out, "<nodes")
}

func edges(mc *Microcontroller) []string {
	var out []string
	for _, c := range mc.Connections {
		out = append(out, c.From.String()+"->"+c.To.String())
	}
	return out
}
