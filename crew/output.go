package crew

import (
	"github.com/bububa/research-crew/components"
)

// TaskOutput is the result of a single task run
type TaskOutput struct {
	// Name is the task key
	Name string `json:"name"`
	// Agent is the role of the agent which ran the task
	Agent       string               `json:"agent"`
	Description string               `json:"description"`
	Raw         string               `json:"raw"`
	Usage       *components.LLMUsage `json:"usage,omitempty"`
}

func (o TaskOutput) String() string {
	return o.Raw
}

// Output is the result of a crew kickoff
type Output struct {
	// RunID identifies the kickoff
	RunID string       `json:"run_id"`
	Tasks []TaskOutput `json:"tasks"`
	// Raw is the output of the last task
	Raw   string              `json:"raw"`
	Usage components.LLMUsage `json:"usage"`
}

func (o Output) String() string {
	return o.Raw
}
