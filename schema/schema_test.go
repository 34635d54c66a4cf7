package schema

import (
	"fmt"
	"slices"
	"testing"
)

func TestStringify(t *testing.T) {
	type payload struct {
		Base
		Value int `json:"value"`
	}
	cases := []struct {
		name   string
		in     Schema
		expect string
	}{
		{name: "string", in: String("plain"), expect: "plain"},
		{name: "output", in: NewOutput("hello"), expect: "hello"},
		{name: "json fallback", in: payload{Value: 3}, expect: `{"value":3}`},
		{name: "nil", in: nil, expect: ""},
	}
	for _, c := range cases {
		if got := Stringify(c.in); got != c.expect {
			t.Errorf("%s: expect %q, but got %q", c.name, c.expect, got)
		}
	}
}

func TestJSONSchema(t *testing.T) {
	type Args struct {
		Base
		Query string `json:"query" jsonschema:"title=query,description=Search query."`
		Limit int    `json:"limit,omitempty" jsonschema:"title=limit,description=Max results."`
	}
	s := JSONSchema(new(Args))
	if s.Version != "" {
		t.Errorf("expect $schema to be dropped, got %s", s.Version)
	}
	if s.Type != "object" {
		t.Fatalf("expect object type, got %s", s.Type)
	}
	prop, ok := s.Properties.Get("query")
	if !ok {
		t.Fatal("expect query property")
	}
	if prop.Description != "Search query." {
		t.Errorf("unexpected description %q", prop.Description)
	}
	if !slices.Contains(s.Required, "query") {
		t.Errorf("expect query to be required, got %v", s.Required)
	}
	if slices.Contains(s.Required, "limit") {
		t.Errorf("expect limit to be optional, got %v", s.Required)
	}
}

func ExampleStringify() {
	fmt.Println(Stringify(NewInput("What is the capital of France?")))
	// Output:
	// What is the capital of France?
}
