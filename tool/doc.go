/*
Package tool defines the tool surface a model advertises to a provider.

A tool is described declaratively: a name, a human-readable description, and a
JSON schema for its input object. Definitions carry no executable code; the
executor package binds names to implementations at run time, so the same
definitions can be sent to any provider wire format.

A Registry holds the definitions a model carries between rounds. It preserves
insertion order so the tool list sent to a provider is stable across calls.
*/
package tool
