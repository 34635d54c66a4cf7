package crew

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bububa/research-crew/agents"
	"github.com/bububa/research-crew/components"
	"github.com/bububa/research-crew/components/systemprompt/crispe"
	"github.com/bububa/research-crew/schema"
	"github.com/bububa/research-crew/tools"
)

// Process is the way a crew schedules its tasks
type Process int

const (
	// ProcessSequential runs tasks one after another in declaration order
	ProcessSequential Process = iota
)

type taskAgent = agents.Agent[schema.String, schema.String]

// Crew runs declared tasks with their agents
type Crew struct {
	specs         *Specs
	process       Process
	client        components.LLMClient
	agentClients  map[string]components.LLMClient
	agentTools    map[string][]tools.AnonymousTool
	taskTools     map[string][]tools.AnonymousTool
	model         string
	temperature   float32
	maxTokens     int
	outputDir     string
	logger        *zap.Logger
	taskStartHook func(context.Context, string, TaskSpec)
	taskEndHook   func(context.Context, TaskOutput)
}

// New returns a Crew over specs, or over the embedded definitions when specs is nil
func New(specs *Specs, opts ...Option) (*Crew, error) {
	c := &Crew{
		specs:        specs,
		process:      ProcessSequential,
		agentClients: make(map[string]components.LLMClient),
		agentTools:   make(map[string][]tools.AnonymousTool),
		taskTools:    make(map[string][]tools.AnonymousTool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.specs == nil {
		var err error
		if c.specs, err = DefaultSpecs(); err != nil {
			return nil, err
		}
	}
	for key := range c.agentTools {
		if _, ok := c.specs.Agent(key); !ok {
			return nil, fmt.Errorf("tools bound to %w %s", ErrUnknownAgent, key)
		}
	}
	for key := range c.agentClients {
		if _, ok := c.specs.Agent(key); !ok {
			return nil, fmt.Errorf("llm bound to %w %s", ErrUnknownAgent, key)
		}
	}
	for key := range c.taskTools {
		if _, ok := c.specs.Task(key); !ok {
			return nil, fmt.Errorf("tools bound to %w %s", ErrUnknownTask, key)
		}
	}
	return c, nil
}

func (c *Crew) Specs() *Specs {
	return c.specs
}

func (c *Crew) Process() Process {
	return c.process
}

// Kickoff fills the {key} placeholders from inputs and runs every task in order.
// Each task sees the outputs of the tasks before it.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (*Output, error) {
	runID := uuid.NewString()
	logger := c.logger.With(zap.String("run_id", runID))
	steps, err := c.plan(inputs, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("crew kickoff", zap.Int("tasks", len(steps)))
	chain := agents.NewChain[runState, runState](steps...)
	var final runState
	if _, err := chain.Run(ctx, new(runState), &final); err != nil {
		logger.Error("crew failed", zap.Error(err))
		return nil, err
	}
	ret := &Output{RunID: runID, Tasks: final.outputs}
	for _, t := range final.outputs {
		ret.Usage.Merge(t.Usage)
	}
	if l := len(final.outputs); l > 0 {
		ret.Raw = final.outputs[l-1].Raw
	}
	logger.Info("crew completed", zap.Int64("input_tokens", ret.Usage.InputTokens), zap.Int64("output_tokens", ret.Usage.OutputTokens))
	return ret, nil
}

// plan resolves every task before anything runs, so bad inputs fail without any llm call
func (c *Crew) plan(inputs map[string]string, logger *zap.Logger) ([]agents.ChainableAgent, error) {
	keys := c.specs.TaskKeys()
	steps := make([]agents.ChainableAgent, 0, len(keys))
	for _, key := range keys {
		task, _ := c.specs.Task(key)
		if err := interpolateAll(inputs, &task.Description, &task.ExpectedOutput, &task.OutputFile); err != nil {
			return nil, fmt.Errorf("task %s: %w", key, err)
		}
		agent, err := c.newAgent(task.Agent, key, inputs, logger)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", key, err)
		}
		steps = append(steps, &taskStep{
			crew:   c,
			key:    key,
			spec:   task,
			agent:  agent,
			logger: logger.With(zap.String("task", key), zap.String("agent", task.Agent)),
		})
	}
	return steps, nil
}

func (c *Crew) newAgent(agentKey string, taskKey string, inputs map[string]string, logger *zap.Logger) (*taskAgent, error) {
	spec, ok := c.specs.Agent(agentKey)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownAgent, agentKey)
	}
	if err := interpolateAll(inputs, &spec.Role, &spec.Goal, &spec.Backstory); err != nil {
		return nil, fmt.Errorf("agent %s: %w", agentKey, err)
	}
	clt := c.agentClients[agentKey]
	if clt == nil {
		clt = c.client
	}
	if clt == nil {
		return nil, fmt.Errorf("agent %s: %w", agentKey, agents.ErrMissingClient)
	}
	model := spec.LLM
	if model == "" {
		model = c.model
	}
	toolset := c.taskTools[taskKey]
	if len(toolset) == 0 {
		toolset = c.agentTools[agentKey]
	}
	agent := agents.NewAgent[schema.String, schema.String](
		agents.WithName(spec.Role),
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithTemperature(c.temperature),
		agents.WithMaxTokens(c.maxTokens),
		agents.WithMaxIterations(spec.MaxIter),
		agents.WithTools(toolset...),
		agents.WithSystemPromptGenerator(crispe.New(
			crispe.WithCapacities(spec.Role),
			crispe.WithBackground(spec.Backstory),
			crispe.WithStatements("Your personal goal is: "+spec.Goal),
			crispe.WithPersonalities("Answer with the final content only, no preamble."),
		)),
	)
	level := zap.DebugLevel
	if spec.Verbose {
		level = zap.InfoLevel
	}
	toolLogger := logger.With(zap.String("agent", agentKey), zap.String("task", taskKey))
	agent.SetToolCallHook(func(_ context.Context, _ *taskAgent, call components.ToolCall, cb components.ToolCallback) {
		toolLogger.Log(level, "tool call", zap.String("tool", call.Name), zap.String("arguments", call.Arguments), zap.Bool("failed", cb.IsError))
	})
	return agent, nil
}

// runState carries task outputs from one chain step to the next
type runState struct {
	schema.Base
	outputs []TaskOutput
}

type taskStep struct {
	crew   *Crew
	key    string
	spec   TaskSpec
	agent  *taskAgent
	logger *zap.Logger
}

func (s *taskStep) Name() string {
	return s.key
}

func (s *taskStep) RunForChain(ctx context.Context, input any, llmResp *components.LLMResponse) (any, error) {
	state, ok := input.(*runState)
	if !ok {
		return nil, errors.New("invalid crew state")
	}
	if fn := s.crew.taskStartHook; fn != nil {
		fn(ctx, s.key, s.spec)
	}
	s.logger.Info("task started")
	prompt := schema.String(taskPrompt(s.spec, state.outputs))
	var out schema.String
	if err := s.agent.Run(ctx, &prompt, &out, llmResp); err != nil {
		return nil, err
	}
	result := TaskOutput{
		Name:        s.key,
		Agent:       s.agent.Name(),
		Description: s.spec.Description,
		Raw:         strings.TrimSpace(string(out)),
	}
	if llmResp != nil && llmResp.Usage != nil {
		usage := *llmResp.Usage
		result.Usage = &usage
	}
	if s.spec.OutputFile != "" {
		path, err := s.crew.writeOutput(s.spec.OutputFile, result.Raw)
		if err != nil {
			return nil, err
		}
		s.logger.Info("task output saved", zap.String("path", path))
	}
	s.logger.Info("task completed")
	if fn := s.crew.taskEndHook; fn != nil {
		fn(ctx, result)
	}
	return &runState{outputs: append(slices.Clone(state.outputs), result)}, nil
}

func (c *Crew) writeOutput(name string, content string) (string, error) {
	path := name
	if !filepath.IsAbs(path) && c.outputDir != "" {
		path = filepath.Join(c.outputDir, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write task output: %w", err)
	}
	return path, nil
}

// taskPrompt is the user message an agent receives for a task
func taskPrompt(spec TaskSpec, previous []TaskOutput) string {
	var b strings.Builder
	b.WriteString(spec.Description)
	b.WriteString("\n\nThis is the expected criteria for your final answer: ")
	b.WriteString(spec.ExpectedOutput)
	b.WriteString("\nYou MUST return the actual complete content as the final answer, not a summary.")
	if len(previous) > 0 {
		raws := make([]string, 0, len(previous))
		for _, o := range previous {
			raws = append(raws, o.Raw)
		}
		b.WriteString("\n\nThis is the context you're working with:\n")
		b.WriteString(strings.Join(raws, "\n\n----------\n\n"))
	}
	return b.String()
}
