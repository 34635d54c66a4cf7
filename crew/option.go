package crew

import (
	"context"

	"go.uber.org/zap"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/tools"
)

type Option func(c *Crew)

// WithLLM binds one llm client to every agent without a client of its own
func WithLLM(clt components.LLMClient) Option {
	return func(c *Crew) {
		c.client = clt
	}
}

// WithAgentLLM binds a dedicated llm client to one agent
func WithAgentLLM(agentKey string, clt components.LLMClient) Option {
	return func(c *Crew) {
		c.agentClients[agentKey] = clt
	}
}

func WithModel(model string) Option {
	return func(c *Crew) {
		c.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Crew) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Crew) {
		c.maxTokens = maxTokens
	}
}

// WithAgentTools attaches tools to an agent
func WithAgentTools(agentKey string, list ...tools.AnonymousTool) Option {
	return func(c *Crew) {
		c.agentTools[agentKey] = append(c.agentTools[agentKey], list...)
	}
}

// WithTaskTools attaches tools to a task. Task tools replace the agent tools while the task runs.
func WithTaskTools(taskKey string, list ...tools.AnonymousTool) Option {
	return func(c *Crew) {
		c.taskTools[taskKey] = append(c.taskTools[taskKey], list...)
	}
}

// WithOutputDir resolves relative output_file paths against dir
func WithOutputDir(dir string) Option {
	return func(c *Crew) {
		c.outputDir = dir
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Crew) {
		c.logger = l
	}
}

// WithTaskStartHook registers a callback fired before each task runs
func WithTaskStartHook(fn func(ctx context.Context, task string, spec TaskSpec)) Option {
	return func(c *Crew) {
		c.taskStartHook = fn
	}
}

// WithTaskEndHook registers a callback fired after each task completes
func WithTaskEndHook(fn func(ctx context.Context, out TaskOutput)) Option {
	return func(c *Crew) {
		c.taskEndHook = fn
	}
}

// WithSpecs replaces the agent and task definitions
func WithSpecs(specs *Specs) Option {
	return func(c *Crew) {
		if specs != nil {
			c.specs = specs
		}
	}
}
