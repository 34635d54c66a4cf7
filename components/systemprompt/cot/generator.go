package cot

import (
	"github.com/bububa/research-crew/components/systemprompt"
)

var sectionTitles = []string{"IDENTITY and PURPOSE", "INTERNAL ASSISTANT STEPS", "OUTPUT INSTRUCTIONS"}

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- This is a conversation with a helpful and friendly AI assistant."}
	}
	ret.outputInstructs = append(ret.outputInstructs, "- Always use the available additional information and context to enhance the response.")
	return ret
}

func (g *Generator) Generate() string {
	return g.Render(sectionTitles, map[string][]string{
		"IDENTITY and PURPOSE":     g.background,
		"INTERNAL ASSISTANT STEPS": g.steps,
		"OUTPUT INSTRUCTIONS":      g.outputInstructs,
	})
}
