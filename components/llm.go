package components

import "context"

// LLMClient is the chat completion surface every provider adapter implements
type LLMClient interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a provider neutral chat completion request
type ChatRequest struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// System is the system prompt, kept apart since some providers take it out of band
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// ChatResponse is a provider neutral chat completion response
type ChatResponse struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
	LLMResponse
}

// LLMResponse provider chat response
type LLMResponse struct {
	ID        string      `json:"id,omitempty"`
	Role      MessageRole `json:"role,omitempty"`
	Model     string      `json:"model,omitempty"`
	Usage     *LLMUsage   `json:"usage,omitempty"`
	Timestamp int64       `json:"ts,omitempty"`
	Details   any         `json:"content,omitempty"`
}

// Merge accumulates usage from v and keeps the latest identity fields
func (r *LLMResponse) Merge(v *LLMResponse) {
	if v == nil {
		return
	}
	if v.ID != "" {
		r.ID = v.ID
	}
	if v.Role != "" {
		r.Role = v.Role
	}
	if v.Model != "" {
		r.Model = v.Model
	}
	if v.Timestamp > 0 {
		r.Timestamp = v.Timestamp
	}
	if v.Details != nil {
		r.Details = v.Details
	}
	if v.Usage != nil {
		if r.Usage == nil {
			r.Usage = new(LLMUsage)
		}
		r.Usage.Merge(v.Usage)
	}
}

type LLMUsage struct {
	InputTokens  int64 `json:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty"`
}

func (u *LLMUsage) Merge(v *LLMUsage) {
	if v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}
