package tools

import (
	"encoding/json"
	"fmt"
)

// DecodeInput converts the argument of RunAnonymous into *I.
// It accepts *I, I, or raw JSON arguments as produced by an llm tool call.
func DecodeInput[I any](input any) (*I, error) {
	switch v := input.(type) {
	case *I:
		if v == nil {
			return nil, fmt.Errorf("invalid tool input: nil %T", input)
		}
		return v, nil
	case I:
		return &v, nil
	case string:
		return unmarshalInput[I]([]byte(v))
	case []byte:
		return unmarshalInput[I](v)
	case json.RawMessage:
		return unmarshalInput[I](v)
	}
	return nil, fmt.Errorf("invalid tool input schema: %T", input)
}

func unmarshalInput[I any](bs []byte) (*I, error) {
	in := new(I)
	if err := json.Unmarshal(bs, in); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return in, nil
}
