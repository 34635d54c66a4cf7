package tools

import (
	"context"

	"github.com/bububa/research-crew/components"
)

type ITool interface {
	SetTitle(string)
	Title() string
	SetDescription(string)
	Description() string
	SetStartHook(fn func(context.Context, AnonymousTool, any))
	SetEndHook(fn func(context.Context, AnonymousTool, any, any))
	SetErrorHook(fn func(context.Context, AnonymousTool, any, error))
}

// Tool is a typed tool
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// AnonymousTool is a tool an agent can call with llm generated arguments
type AnonymousTool interface {
	ITool
	// Definition returns the name, description and argument schema exposed to the llm
	Definition() components.ToolDefinition
	RunAnonymous(context.Context, any) (any, error)
}
