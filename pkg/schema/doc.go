// Package schema holds the element tables shared by the microcontroller
// parser and emitter.
//
// Each Element lists its attributes in file order together with their value
// kind and omission rule, and the child tags it accepts. Component kinds are
// loaded from the embedded kinds.yaml table into a Registry, keyed by the
// numeric type used in game files and by the name used in compact files.
//
// Kinds missing from the table are still usable: their ports are recognised
// by the inN/outN tag pattern and their attributes are kept as raw text.
package schema
