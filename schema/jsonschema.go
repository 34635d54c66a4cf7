package schema

import "github.com/invopop/jsonschema"

var reflector = jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// JSONSchema reflects the JSON schema of v, using its json and jsonschema tags.
// The $schema keyword is dropped since llm providers reject it in tool parameters.
func JSONSchema(v any) *jsonschema.Schema {
	s := reflector.Reflect(v)
	s.Version = ""
	return s
}
