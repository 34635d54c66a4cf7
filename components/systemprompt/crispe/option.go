package crispe

import (
	"strings"

	"github.com/bububa/research-crew/components/systemprompt"
)

type Option = func(g *Generator)

// bullets turns each non blank line into a "- " list item
func bullets(lines []string) []string {
	ret := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "- ") {
			line = "- " + line
		}
		ret = append(ret, line)
	}
	return ret
}

// WithCapacities appends the role the agent plays
func WithCapacities(capacities ...string) Option {
	return func(g *Generator) {
		g.capacities = append(g.capacities, bullets(capacities)...)
	}
}

// WithBackground appends background lines, a crew agent's backstory goes here
func WithBackground(background ...string) Option {
	return func(g *Generator) {
		g.background = append(g.background, bullets(background)...)
	}
}

// WithStatements appends what the agent is asked to achieve
func WithStatements(statements ...string) Option {
	return func(g *Generator) {
		g.statements = append(g.statements, bullets(statements)...)
	}
}

// WithPersonalities appends response style instructions
func WithPersonalities(personalities ...string) Option {
	return func(g *Generator) {
		g.personalities = append(g.personalities, bullets(personalities)...)
	}
}

// WithExperiments appends followup question instructions
func WithExperiments(experiments ...string) Option {
	return func(g *Generator) {
		g.experiments = append(g.experiments, bullets(experiments)...)
	}
}

func WithContextProviders(providers ...systemprompt.ContextProvider) Option {
	return func(g *Generator) {
		g.AddContextProviders(providers...)
	}
}
