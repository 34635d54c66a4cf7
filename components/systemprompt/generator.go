package systemprompt

import (
	"fmt"
	"strings"
)

// Generator is system prompt generator framework
type Generator interface {
	Generate() string
	// ContextProvider retrieves a context provider by name.
	// If the context provider is not found returns not found error
	ContextProvider(title string) (ContextProvider, error)
	// AddContextProviders registers new context providers
	AddContextProviders(providers ...ContextProvider)
	// RemoveContextProviders Unregisters an existing context provider.
	RemoveContextProviders(titles ...string)
}

type BaseGenerator struct {
	contextProviders []ContextProvider
}

func (g *BaseGenerator) ContextProviders() []ContextProvider {
	return g.contextProviders
}

// ContextProvider retrieves a context provider by name.
// If the context provider is not found returns not found error
func (g *BaseGenerator) ContextProvider(title string) (ContextProvider, error) {
	for _, p := range g.contextProviders {
		if p.Title() == title {
			return p, nil
		}
	}
	return nil, fmt.Errorf("context provider '%s' not found", title)
}

// AddContextProviders registers new context providers, skipping titles already registered
func (g *BaseGenerator) AddContextProviders(providers ...ContextProvider) {
	for _, provider := range providers {
		if _, err := g.ContextProvider(provider.Title()); err != nil {
			g.contextProviders = append(g.contextProviders, provider)
		}
	}
}

// RemoveContextProviders Unregisters an existing context provider.
func (g *BaseGenerator) RemoveContextProviders(titles ...string) {
	mp := make(map[string]struct{}, len(titles))
	for _, v := range titles {
		mp[v] = struct{}{}
	}
	providers := make([]ContextProvider, 0, len(g.contextProviders))
	for _, p := range g.contextProviders {
		if _, found := mp[p.Title()]; found {
			continue
		}
		providers = append(providers, p)
	}
	g.contextProviders = providers
}

// renderContextProviders appends the EXTRA INFORMATION section shared by all generators
func (g *BaseGenerator) renderContextProviders(parts []string) []string {
	providers := g.ContextProviders()
	if len(providers) == 0 {
		return parts
	}
	parts = append(parts, "# EXTRA INFORMATION AND CONTEXT")
	for _, provider := range providers {
		if info := provider.Info(); info != "" {
			parts = append(parts, fmt.Sprintf("## %s", provider.Title()), info, "")
		}
	}
	return parts
}

// Render builds a prompt out of ordered sections followed by the context providers
func (g *BaseGenerator) Render(titles []string, sections map[string][]string) string {
	var parts []string
	for _, title := range titles {
		content := sections[title]
		if len(content) > 0 {
			parts = append(parts, fmt.Sprintf("# %s", title))
			parts = append(parts, content...)
			parts = append(parts, "")
		}
	}
	parts = g.renderContextProviders(parts)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
