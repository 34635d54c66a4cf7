package tools

import (
	"context"
	"strings"
)

type Option func(c *Config)

// Hooks groups the lifecycle callbacks of a tool run, nil callbacks are left unset
type Hooks struct {
	Start func(ctx context.Context, tool AnonymousTool, input any)
	End   func(ctx context.Context, tool AnonymousTool, input any, output any)
	Error func(ctx context.Context, tool AnonymousTool, input any, err error)
}

// WithTitle sets the name the llm calls the tool by
func WithTitle(title string) Option {
	return func(c *Config) {
		c.SetTitle(strings.TrimSpace(title))
	}
}

// WithDescription sets the tool description shown to the llm
func WithDescription(desc string) Option {
	return func(c *Config) {
		c.SetDescription(strings.TrimSpace(desc))
	}
}

func WithStartHook(fn func(context.Context, AnonymousTool, any)) Option {
	return func(c *Config) {
		c.SetStartHook(fn)
	}
}

func WithEndHook(fn func(context.Context, AnonymousTool, any, any)) Option {
	return func(c *Config) {
		c.SetEndHook(fn)
	}
}

func WithErrorHook(fn func(context.Context, AnonymousTool, any, error)) Option {
	return func(c *Config) {
		c.SetErrorHook(fn)
	}
}

// WithHooks installs every non nil callback of h
func WithHooks(h Hooks) Option {
	return func(c *Config) {
		if h.Start != nil {
			c.SetStartHook(h.Start)
		}
		if h.End != nil {
			c.SetEndHook(h.End)
		}
		if h.Error != nil {
			c.SetErrorHook(h.Error)
		}
	}
}
