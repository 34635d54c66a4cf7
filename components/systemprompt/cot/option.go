package cot

import (
	"strings"

	"github.com/bububa/research-crew/components/systemprompt"
)

type Option = func(g *Generator)

func items(lines []string) []string {
	ret := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if !strings.HasPrefix(line, "- ") {
			line = "- " + line
		}
		ret = append(ret, line)
	}
	return ret
}

// WithBackground replaces the default background lines
func WithBackground(background ...string) Option {
	return func(g *Generator) {
		g.background = items(background)
	}
}

// WithSteps replaces the default reasoning steps
func WithSteps(steps ...string) Option {
	return func(g *Generator) {
		g.steps = items(steps)
	}
}

// WithOutputInstructs replaces the default output instructions
func WithOutputInstructs(outputInstructs ...string) Option {
	return func(g *Generator) {
		g.outputInstructs = items(outputInstructs)
	}
}

func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
