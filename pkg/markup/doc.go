// Package markup reads and writes the XML subset used by microcontroller
// files.
//
// Parsing produces a Node tree that keeps attribute values exactly as they
// were written (still escaped) together with the document's prolog, epilog
// and indentation layout. Write is the inverse: for a consistently indented
// file, Write(Parse(text)) returns text unchanged.
//
// Whitespace between elements is not kept node by node. It is replaced on
// output by the layout detected from the first child of the root element,
// which is how the game lays out its files.
package markup
