// Package microcontroller reads and writes Stormworks microcontroller files.
//
// Two dialects are understood. Game files are rooted at <microprocessor>
// and hold IO nodes, components, bridge components and the derived state
// sections the game keeps next to them. Compact files are rooted at <mc>
// and list components and <w> wires only.
//
// Parsing keeps enough of the source to write it back byte for byte: the
// literal spelling of every attribute, the document order of component
// children and any attribute or element the schema does not know about.
// Values changed through the model are written in canonical form, and
// attributes holding their default are omitted unless the source spelled
// them out.
//
//	mc, err := microcontroller.FromText(text)
//	if err != nil {
//		return err
//	}
//	mc.Name = "Autopilot"
//	out, err := mc.ToText()
//
// Connections are a first-class list. In game files they are stored on
// the input ports of the destination component, so emitting fails with an
// *EmitError when a connection names an input that does not exist.
// CheckConnections and Validate report inconsistencies without changing
// anything; neither runs implicitly.
package microcontroller
