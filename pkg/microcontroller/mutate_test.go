package microcontroller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/swmc/pkg/codec"
	"github.com/OpenTraceLab/swmc/pkg/schema"
)

const emptyGameFile = `<?xml version="1.0" encoding="UTF-8"?>
<microprocessor name="New microcontroller" description="No description set." width="2" length="2">
	<nodes/>
	<group>
		<data>
			<inputs/>
			<outputs/>
		</data>
		<components/>
		<components_bridge/>
		<groups/>
		<component_states/>
		<component_bridge_states/>
		<group_states/>
	</group>
</microprocessor>

`

func TestNewMatchesGameLayout(t *testing.T) {
	out, err := New().ToText()
	require.NoError(t, err)
	assert.Equal(t, emptyGameFile, out)
	assert.NoError(t, New().Validate())

	mc, err := FromText(emptyGameFile)
	require.NoError(t, err)
	assert.Equal(t, New().Format, mc.Format)
}

func lookup(t *testing.T, mc *Microcontroller, name string) *schema.Kind {
	t.Helper()
	k, ok := mc.Registry().Lookup(name)
	require.True(t, ok, name)
	return k
}

func TestBuildAndReparse(t *testing.T) {
	mc := New()
	in, err := mc.AddIO(InputNode, schema.Number)
	require.NoError(t, err)
	clamp := mc.AddComponent(lookup(t, mc, "clamp"))
	out, err := mc.AddIO(OutputNode, schema.Number)
	require.NoError(t, err)

	assert.Equal(t, uint32(1), in.ID)
	assert.Equal(t, "Input", in.Label)
	assert.Equal(t, DefaultNodeDescription, in.Description)
	assert.Equal(t, "number_in", in.Logic.Kind.Name)
	assert.Equal(t, uint32(2), clamp.ID)
	assert.Equal(t, "Output", out.Label)
	assert.Equal(t, uint32(3), out.ComponentID())
	assert.Equal(t, uint32(3), mc.IDCounter)

	require.NoError(t, clamp.SetValue("min", "0", 0))
	require.NoError(t, clamp.SetValue("max", "100", 100))
	clamp.Position = Position{X: 1, Y: 0.5}

	require.NoError(t, mc.Connect(Endpoint{Component: in.ComponentID()}, Endpoint{Component: clamp.ID}))
	require.NoError(t, mc.Connect(Endpoint{Component: clamp.ID}, Endpoint{Component: out.ComponentID()}))
	assert.NoError(t, mc.Validate())

	text, err := mc.ToText()
	require.NoError(t, err)
	assert.Contains(t, text, `<max text="100" value="100"/>`)
	assert.Contains(t, text, `<pos x="1" y="0.5"/>`)
	assert.Contains(t, text, `<in1 component_id="1"/>`)
	assert.Contains(t, text, `<in1 component_id="2"/>`)

	again, err := FromText(text)
	require.NoError(t, err)
	assert.ElementsMatch(t, edges(mc), edges(again))
	require.Len(t, again.Nodes, 2)
	assert.Equal(t, "number_out", again.Nodes[1].Logic.Kind.Name)
	assert.NoError(t, again.Validate())

	reemitted, err := again.ToText()
	require.NoError(t, err)
	assert.Equal(t, text, reemitted)
}

func TestConnectReplacesDriver(t *testing.T) {
	mc, err := FromText(readFixture(t, "junction.xml"))
	require.NoError(t, err)

	to := Endpoint{Component: 2}
	require.NoError(t, mc.Connect(Endpoint{Component: 1, Port: 0}, to))
	conn, ok := mc.Driver(to)
	require.True(t, ok)
	assert.Equal(t, Endpoint{Component: 1, Port: 0}, conn.From)
	assert.Len(t, mc.Connections, 3)

	text, err := mc.ToText()
	require.NoError(t, err)
	assert.NotContains(t, text, `node_index="1"`)

	assert.Error(t, mc.Connect(Endpoint{Component: 1}, Endpoint{Component: 2, Port: 5}))
	assert.Error(t, mc.Connect(Endpoint{Component: 77}, to))

	assert.True(t, mc.Disconnect(to))
	assert.False(t, mc.Disconnect(to))
	_, ok = mc.Driver(to)
	assert.False(t, ok)
}

func TestRemoveComponentDropsConnections(t *testing.T) {
	mc, err := FromText(readFixture(t, "junction.xml"))
	require.NoError(t, err)

	assert.True(t, mc.RemoveComponent(2))
	assert.False(t, mc.RemoveComponent(2))
	_, ok := mc.Component(2)
	assert.False(t, ok)
	assert.Equal(t, []string{"5:0->1:0"}, edges(mc))

	text, err := mc.ToText()
	require.NoError(t, err)
	assert.NotContains(t, text, `type="11"`)
	assert.NotContains(t, text, `<c3 `)
}

func TestRemoveIO(t *testing.T) {
	mc, err := FromText(readFixture(t, "junction.xml"))
	require.NoError(t, err)

	assert.True(t, mc.RemoveIO(2))
	assert.False(t, mc.RemoveIO(2))
	require.NotNil(t, mc.IDCounterNode)
	assert.Equal(t, uint32(1), *mc.IDCounterNode)
	assert.Equal(t, []uint32{5}, mc.BridgeOrder())
	assert.Equal(t, uint32(5), mc.IDCounter)
	_, ok := mc.Component(6)
	assert.False(t, ok)
	assert.ElementsMatch(t, []string{"5:0->1:0", "1:1->2:0"}, edges(mc))
	assert.NoError(t, mc.Validate())

	_, err = mc.ToText()
	assert.NoError(t, err)
}

func TestCompositeWriteTags(t *testing.T) {
	mc := New()
	c := mc.AddComponent(lookup(t, mc, "composite_write_number"))

	_, err := mc.ToText()
	assert.ErrorIs(t, err, ErrInvalidInMemoryValue, "count is required")

	require.NoError(t, c.SetProperty("count", codec.Int(codec.KindUint8, 4)))
	require.NoError(t, c.SetProperty("offset", codec.Int(codec.KindInt8, -2)))
	assert.Error(t, c.SetProperty("count", codec.Float32(4)))
	assert.Error(t, c.SetProperty("colour", codec.String("red")))

	text, err := mc.ToText()
	require.NoError(t, err)
	assert.Contains(t, text, `<object id="1" count="4" offset="-2">`)
	assert.Contains(t, text, "<inc/>")
	assert.Contains(t, text, "<in32/>")
	assert.Contains(t, text, "<inoff/>")

	again, err := FromText(text)
	require.NoError(t, err)
	start, ok := again.Components[0].Input(33)
	require.True(t, ok)
	assert.Equal(t, "inoff", start.Port.Tag)
	assert.Len(t, again.Components[0].Slots(), 35)
}

func TestScriptAndProperties(t *testing.T) {
	mc := New()
	lua := mc.AddComponent(lookup(t, mc, "lua"))

	script, ok := lua.Script()
	require.True(t, ok)
	assert.Empty(t, script.Source)

	require.NoError(t, lua.SetScript("x = 1 < 2 and \"yes\"\noutput.setNumber(1, x)"))
	text, err := mc.ToText()
	require.NoError(t, err)
	assert.Contains(t, text, `script="x = 1 &lt; 2 and &quot;yes&quot;`)

	again, err := FromText(text)
	require.NoError(t, err)
	script, ok = again.Components[0].Script()
	require.True(t, ok)
	assert.Equal(t, "x = 1 < 2 and \"yes\"\noutput.setNumber(1, x)", script.Source)

	not := mc.AddComponent(lookup(t, mc, "not"))
	_, ok = not.Script()
	assert.False(t, ok)
	assert.Error(t, not.SetScript("x"))
}

func TestDropdownItems(t *testing.T) {
	mc := New()
	c := mc.AddComponent(lookup(t, mc, "property_dropdown"))
	d, ok := c.Dropdown()
	require.True(t, ok)
	d.Add("low", "1", 1)
	d.Add("high", "2", 2)
	require.NoError(t, c.SetProperty("name", codec.String("gear")))

	text, err := mc.ToText()
	require.NoError(t, err)
	assert.Contains(t, text, `<object id="1" name="gear">`)
	assert.Contains(t, text, `<i l="high">`)

	again, err := FromText(text)
	require.NoError(t, err)
	got, ok := again.Components[0].Dropdown()
	require.True(t, ok)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "low", got.Items[0].Label)
	assert.Equal(t, 2.0, got.Items[1].Value.Value)

	_, ok = mc.AddComponent(lookup(t, mc, "not")).Dropdown()
	assert.False(t, ok)
}

func TestCompactMutations(t *testing.T) {
	mc, err := FromText(`<mc><c id="1" x="0" y="0" type="and"/></mc>`)
	require.NoError(t, err)

	not := mc.AddComponent(lookup(t, mc, "not"))
	assert.Equal(t, uint32(2), not.ID)
	require.NoError(t, mc.Connect(Endpoint{Component: 1}, Endpoint{Component: 2}))

	_, err = mc.AddIO(InputNode, schema.OnOff)
	assert.Error(t, err)

	text, err := mc.ToText()
	require.NoError(t, err)
	assert.Equal(t, `<mc><c id="1" x="0" y="0" type="and"/><c id="2" x="0" y="0" type="not"/><w from="1" to="2"/></mc>`, text)
}
