package schema

import "encoding/json"

// Schema is message schema interface
type Schema interface {
	String() string
}

// Unmarshaler is implemented by schemas that decode themselves from raw llm output
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Stringify returns the text representation of a schema, falling back to JSON
func Stringify(s Schema) string {
	if s == nil {
		return ""
	}
	if v, ok := s.(String); ok {
		return string(v)
	}
	if txt := s.String(); txt != "" {
		return txt
	}
	bs, _ := json.Marshal(s)
	return string(bs)
}

// ToBytes returns the raw bytes of a schema
func ToBytes(s Schema) []byte {
	return []byte(Stringify(s))
}
