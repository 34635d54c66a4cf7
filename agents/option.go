package agents

import (
	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/components/systemprompt"
	"github.com/bububa/research-crew/tools"
)

type Option func(a *Config)

func WithClient(clt components.LLMClient) Option {
	return func(c *Config) {
		c.client = clt
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithMemory(m *components.Memory) Option {
	return func(c *Config) {
		c.memory = m
	}
}

func WithTools(list ...tools.AnonymousTool) Option {
	return func(c *Config) {
		c.tools = append(c.tools, list...)
	}
}

func WithModel(model string) Option {
	return func(c *Config) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

func WithMaxIterations(n int) Option {
	return func(c *Config) {
		c.maxIterations = n
	}
}

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}
