package tool

import (
	"fmt"

	"github.com/fogfish/opts"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Definition describes a single tool as advertised to a model. Parameters is
// the JSON schema for the tool's input object; a nil schema means the tool
// takes no input.
type Definition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Option configures a Definition during construction.
type Option = opts.Option[Definition]

// Description sets the human-readable description of a tool.
var Description = opts.ForName[Definition, string]("Description")

// Parameters sets the input schema of a tool.
var Parameters = opts.ForName[Definition, *jsonschema.Schema]("Parameters")

// New builds a tool definition. The name is required; everything else comes
// from options.
func New(name string, options ...Option) (Definition, error) {
	if name == "" {
		return Definition{}, fmt.Errorf("tool name is required")
	}

	def := Definition{Name: name}
	if err := opts.Apply(&def, options); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Must is like New but panics on error. Useful for package-level definitions.
func Must(name string, options ...Option) Definition {
	def, err := New(name, options...)
	if err != nil {
		panic(err)
	}
	return def
}

// Property describes one field of an object schema built with ObjectSchema.
type Property struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Enum        []any
}

// ObjectSchema builds an object schema from a list of properties, preserving
// declaration order. It covers the common case of flat parameter objects
// without hand-writing jsonschema structs.
func ObjectSchema(props ...Property) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: orderedmap.New[string, *jsonschema.Schema](),
	}

	var required []string
	for _, p := range props {
		prop := &jsonschema.Schema{
			Type:        p.Type,
			Description: p.Description,
		}
		if len(p.Enum) > 0 {
			prop.Enum = p.Enum
		}
		schema.Properties.Set(p.Name, prop)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	if len(required) > 0 {
		schema.Required = required
	}
	return schema
}
