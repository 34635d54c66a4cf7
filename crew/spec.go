package crew

import "errors"

var (
	// ErrUnknownAgent is returned when a task or a tool binding references an undeclared agent
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrUnknownTask is returned when a tool binding references an undeclared task
	ErrUnknownTask = errors.New("unknown task")
	// ErrMissingVariable is returned when a placeholder has no matching kickoff input
	ErrMissingVariable = errors.New("missing template variable")
)

// AgentSpec is a named role configuration
type AgentSpec struct {
	Role      string `yaml:"role" json:"role" validate:"required"`
	Goal      string `yaml:"goal" json:"goal" validate:"required"`
	Backstory string `yaml:"backstory" json:"backstory" validate:"required"`
	// LLM overrides the crew model for this agent
	LLM     string `yaml:"llm,omitempty" json:"llm,omitempty"`
	MaxIter int    `yaml:"max_iter,omitempty" json:"max_iter,omitempty" validate:"gte=0"`
	// Verbose promotes the agent's tool calls to info level logs
	Verbose         bool `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	AllowDelegation bool `yaml:"allow_delegation,omitempty" json:"allow_delegation,omitempty"`
}

// TaskSpec is a unit of work assigned to one agent
type TaskSpec struct {
	Description    string `yaml:"description" json:"description" validate:"required"`
	ExpectedOutput string `yaml:"expected_output" json:"expected_output" validate:"required"`
	// Agent is the key of the agent in agents.yaml
	Agent string `yaml:"agent" json:"agent" validate:"required"`
	// OutputFile receives the raw task output when set
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

// Specs holds agent and task definitions in declaration order
type Specs struct {
	agentKeys []string
	agents    map[string]AgentSpec
	taskKeys  []string
	tasks     map[string]TaskSpec
}

// AgentKeys returns agent keys in declaration order
func (s *Specs) AgentKeys() []string {
	return append([]string(nil), s.agentKeys...)
}

// TaskKeys returns task keys in declaration order, which is the execution order
func (s *Specs) TaskKeys() []string {
	return append([]string(nil), s.taskKeys...)
}

func (s *Specs) Agent(key string) (AgentSpec, bool) {
	v, ok := s.agents[key]
	return v, ok
}

func (s *Specs) Task(key string) (TaskSpec, bool) {
	v, ok := s.tasks[key]
	return v, ok
}
