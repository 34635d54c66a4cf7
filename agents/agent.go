package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/components/systemprompt"
	"github.com/bububa/research-crew/components/systemprompt/cot"
	"github.com/bububa/research-crew/schema"
	"github.com/bububa/research-crew/tools"
)

// DefaultMaxIterations bounds the tool call loop of a single Run
const DefaultMaxIterations = 15

var (
	// ErrMaxIterations is returned when the model keeps calling tools past the iteration limit
	ErrMaxIterations = errors.New("agent reached max iterations without a final answer")
	// ErrMissingClient is returned when an agent runs without a llm client
	ErrMissingClient = errors.New("agent has no llm client")
)

type IAgent interface {
	Name() string
}

// ChainableAgent is an agent which could be a step of a Chain
type ChainableAgent interface {
	IAgent
	RunForChain(context.Context, any, *components.LLMResponse) (any, error)
}

// Config represents general agents configuration
type Config struct {
	// client Client for interacting with the language model
	client components.LLMClient
	//	memory  Memory component for storing chat history.
	memory *components.Memory
	//	systemPromptGenerator Component for generating system prompts.
	systemPromptGenerator systemprompt.Generator
	// tools the model is allowed to call
	tools []tools.AnonymousTool
	// model llm model
	model string
	// temperature Temperature for response generation, typically ranging from 0 to 1.
	temperature float32
	// maxTokens Maximum number of tokens allowed in the response
	maxTokens int
	// maxIterations Maximum number of llm calls in a single run
	maxIterations int
	// name is Agent name presentation
	name string
}

// Agent class for chat agents.
// This class provides the core functionality for handling chat interactions, including managing memory,
// generating system prompts, calling tools and obtaining responses from a language model.
type Agent[I schema.Schema, O schema.Schema] struct {
	Config
	startHook    func(context.Context, *Agent[I, O], *I)
	endHook      func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)
	errorHook    func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)
	toolCallHook func(context.Context, *Agent[I, O], components.ToolCall, components.ToolCallback)
}

// NewAgent initializes the Agent
func NewAgent[I schema.Schema, O schema.Schema](options ...Option) *Agent[I, O] {
	ret := new(Agent[I, O])
	for _, opt := range options {
		opt(&ret.Config)
	}
	if ret.memory == nil {
		ret.memory = components.NewMemory(0)
	}
	if ret.systemPromptGenerator == nil {
		ret.systemPromptGenerator = cot.New()
	}
	if ret.maxIterations <= 0 {
		ret.maxIterations = DefaultMaxIterations
	}
	return ret
}

// ResetMemory resets the memory to its initial state
func (a *Agent[I, O]) ResetMemory() {
	a.memory.Reset()
}

func (a *Agent[I, O]) Client() components.LLMClient {
	return a.client
}

func (a *Agent[I, O]) SetClient(clt components.LLMClient) {
	a.client = clt
}

func (a *Agent[I, O]) Memory() *components.Memory {
	return a.memory
}

func (a *Agent[I, O]) SetMemory(m *components.Memory) {
	a.memory = m
}

func (a *Agent[I, O]) SetSystemPromptGenerator(g systemprompt.Generator) {
	a.systemPromptGenerator = g
}

func (a *Agent[I, O]) SetModel(model string) {
	a.model = model
}

func (a *Agent[I, O]) SetTemperature(temperature float32) {
	a.temperature = temperature
}

func (a *Agent[I, O]) SetMaxTokens(maxTokens int) {
	a.maxTokens = maxTokens
}

// Tools returns the tools the agent exposes to the model
func (a *Agent[I, O]) Tools() []tools.AnonymousTool {
	return a.tools
}

func (a *Agent[I, O]) SetTools(list ...tools.AnonymousTool) {
	a.tools = list
}

func (a Agent[I, O]) Name() string {
	return a.name
}

func (a *Agent[I, O]) SetName(name string) {
	a.name = name
}

func (a *Agent[I, O]) SetStartHook(fn func(context.Context, *Agent[I, O], *I)) {
	a.startHook = fn
}

func (a *Agent[I, O]) SetEndHook(fn func(context.Context, *Agent[I, O], *I, *O, *components.LLMResponse)) {
	a.endHook = fn
}

func (a *Agent[I, O]) SetErrorHook(fn func(context.Context, *Agent[I, O], *I, *components.LLMResponse, error)) {
	a.errorHook = fn
}

// SetToolCallHook registers a callback fired after every tool call the model requested
func (a *Agent[I, O]) SetToolCallHook(fn func(context.Context, *Agent[I, O], components.ToolCall, components.ToolCallback)) {
	a.toolCallHook = fn
}

// Run runs the chat agent with the given user input synchronously.
func (a *Agent[I, O]) Run(ctx context.Context, userInput *I, output *O, llmResp *components.LLMResponse) error {
	if fn := a.startHook; fn != nil {
		fn(ctx, a, userInput)
	}
	if llmResp == nil {
		llmResp = new(components.LLMResponse)
	}
	if userInput != nil {
		a.memory.NewTurn()
		a.memory.NewMessage(components.UserRole, *userInput)
	}
	if err := a.response(ctx, output, llmResp); err != nil {
		if fn := a.errorHook; fn != nil {
			fn(ctx, a, userInput, llmResp, err)
		}
		return err
	}
	a.memory.NewMessage(components.AssistantRole, *output)
	if fn := a.endHook; fn != nil {
		fn(ctx, a, userInput, output, llmResp)
	}
	return nil
}

// RunForChain runs the chat agent with the given user input for chain.
func (a *Agent[I, O]) RunForChain(ctx context.Context, userInput any, llmResp *components.LLMResponse) (any, error) {
	in, ok := userInput.(*I)
	if !ok {
		return nil, fmt.Errorf("invalid input schema for agent %s: %T", a.name, userInput)
	}
	out := new(O)
	if err := a.Run(ctx, in, out, llmResp); err != nil {
		return nil, err
	}
	return out, nil
}

// response asks the model until it answers without tool calls
func (a *Agent[I, O]) response(ctx context.Context, output *O, llmResp *components.LLMResponse) error {
	if a.client == nil {
		return ErrMissingClient
	}
	defs := make([]components.ToolDefinition, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, t.Definition())
	}
	for iter := 0; iter < a.maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		req := &components.ChatRequest{
			Model:       a.model,
			Temperature: a.temperature,
			MaxTokens:   a.maxTokens,
			System:      a.systemPromptGenerator.Generate(),
			Messages:    a.memory.History(),
			Tools:       defs,
		}
		resp, err := a.client.Chat(ctx, req)
		if err != nil {
			return err
		}
		llmResp.Merge(&resp.LLMResponse)
		if len(resp.ToolCalls) == 0 {
			return decodeOutput([]byte(resp.Content), output)
		}
		a.memory.AddMessage(components.NewToolCallsMessage(resp.Content, resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			cb := a.callTool(ctx, call)
			a.memory.AddMessage(components.NewToolCallbackMessage(cb))
			if fn := a.toolCallHook; fn != nil {
				fn(ctx, a, call, cb)
			}
		}
	}
	return ErrMaxIterations
}

// callTool runs the requested tool. Failures are reported back to the model instead of aborting the run.
func (a *Agent[I, O]) callTool(ctx context.Context, call components.ToolCall) components.ToolCallback {
	cb := components.ToolCallback{ID: call.ID, Name: call.Name}
	tool := a.tool(call.Name)
	if tool == nil {
		cb.Content = fmt.Sprintf("error: unknown tool %s", call.Name)
		cb.IsError = true
		return cb
	}
	args := call.Arguments
	if args == "" {
		args = "{}"
	}
	out, err := tool.RunAnonymous(ctx, args)
	if err != nil {
		cb.Content = fmt.Sprintf("error: %v", err)
		cb.IsError = true
		return cb
	}
	cb.Content = stringifyToolOutput(out)
	return cb
}

func (a *Agent[I, O]) tool(name string) tools.AnonymousTool {
	for _, t := range a.tools {
		if t.Title() == name {
			return t
		}
	}
	return nil
}

func stringifyToolOutput(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	case schema.Schema:
		return schema.Stringify(v)
	}
	bs, _ := json.Marshal(out)
	return string(bs)
}

// decodeOutput fills output with the model answer, stripping markdown code fences around JSON
func decodeOutput[O any](content []byte, output *O) error {
	if u, ok := any(output).(schema.Unmarshaler); ok {
		return u.Unmarshal(content)
	}
	content = bytes.TrimSpace(content)
	if bytes.HasPrefix(content, []byte("```")) {
		content = bytes.TrimPrefix(content, []byte("```json"))
		content = bytes.TrimPrefix(content, []byte("```"))
		content = bytes.TrimSuffix(bytes.TrimSpace(content), []byte("```"))
	}
	if err := json.Unmarshal(content, output); err != nil {
		return fmt.Errorf("decode llm response: %w", err)
	}
	return nil
}

func (a *Agent[I, O]) NewMessage(role components.MessageRole, content schema.Schema) *components.Message {
	return a.memory.NewMessage(role, content)
}

// SystemPromptContextProvider returns agent systemPromptGenerator's context provider
func (a *Agent[I, O]) SystemPromptContextProvider(title string) (systemprompt.ContextProvider, error) {
	return a.systemPromptGenerator.ContextProvider(title)
}

// RegisterSystemPromptContextProvider registers a new context provider
func (a *Agent[I, O]) RegisterSystemPromptContextProvider(provider systemprompt.ContextProvider) {
	a.systemPromptGenerator.AddContextProviders(provider)
}

// UnregisterSystemPromptContextProvider Unregisters an existing context provider.
func (a *Agent[I, O]) UnregisterSystemPromptContextProvider(title string) {
	a.systemPromptGenerator.RemoveContextProviders(title)
}

// SystemPrompt returns the system prompt
func (a *Agent[I, O]) SystemPrompt() string {
	return a.systemPromptGenerator.Generate()
}
