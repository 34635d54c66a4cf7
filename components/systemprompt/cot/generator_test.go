package cot

import (
	"strings"
	"testing"

	"github.com/bububa/research-crew/components/systemprompt"
)

func TestGeneratorContextProviders(t *testing.T) {
	g := New(WithSteps("Think step by step.", "  ", "- Cite sources."))
	g.AddContextProviders(
		systemprompt.NewStaticProvider("Topic", "AI"),
		systemprompt.NewStaticProvider("Topic", "duplicate"),
		systemprompt.NewStaticProvider("Empty", ""),
	)
	prompt := g.Generate()
	if !strings.HasPrefix(prompt, "# IDENTITY and PURPOSE") {
		t.Errorf("unexpected prompt start: %s", prompt)
	}
	if !strings.Contains(prompt, "# INTERNAL ASSISTANT STEPS\n- Think step by step.\n- Cite sources.\n") {
		t.Errorf("expect steps rendered as list items: %s", prompt)
	}
	if strings.Contains(prompt, "duplicate") {
		t.Error("expect duplicated provider title to be ignored")
	}
	if strings.Contains(prompt, "## Empty") {
		t.Error("expect empty provider to be skipped")
	}
	if _, err := g.ContextProvider("Topic"); err != nil {
		t.Fatal(err)
	}
	g.RemoveContextProviders("Topic")
	if _, err := g.ContextProvider("Topic"); err == nil {
		t.Error("expect provider to be removed")
	}
}
