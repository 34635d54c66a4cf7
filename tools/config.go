package tools

import (
	"context"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/schema"
)

// Config class for tools
type Config struct {
	// title the default title of the tool
	title string
	// description the default description of the tool
	description string
	startHook   func(context.Context, AnonymousTool, any)
	endHook     func(context.Context, AnonymousTool, any, any)
	errorHook   func(context.Context, AnonymousTool, any, error)
}

func (c *Config) SetTitle(v string) {
	c.title = v
}

func (c Config) Title() string {
	return c.title
}

func (c *Config) SetDescription(v string) {
	c.description = v
}

func (c Config) Description() string {
	return c.description
}

func (c *Config) SetStartHook(fn func(context.Context, AnonymousTool, any)) {
	c.startHook = fn
}

func (c *Config) SetEndHook(fn func(context.Context, AnonymousTool, any, any)) {
	c.endHook = fn
}

func (c *Config) SetErrorHook(fn func(context.Context, AnonymousTool, any, error)) {
	c.errorHook = fn
}

// Definition builds a tool definition with the JSON schema of input as parameters
func (c Config) Definition(input any) components.ToolDefinition {
	return components.ToolDefinition{
		Name:        c.title,
		Description: c.description,
		Parameters:  schema.JSONSchema(input),
	}
}

// OnStart invokes the start hook if any
func (c Config) OnStart(ctx context.Context, t AnonymousTool, input any) {
	if fn := c.startHook; fn != nil {
		fn(ctx, t, input)
	}
}

// OnEnd invokes the end hook if any
func (c Config) OnEnd(ctx context.Context, t AnonymousTool, input any, output any) {
	if fn := c.endHook; fn != nil {
		fn(ctx, t, input, output)
	}
}

// OnError invokes the error hook if any
func (c Config) OnError(ctx context.Context, t AnonymousTool, input any, err error) {
	if fn := c.errorHook; fn != nil {
		fn(ctx, t, input, err)
	}
}
