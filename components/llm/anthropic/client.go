// Package anthropic adapts liushuangls/go-anthropic to components.LLMClient
package anthropic

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/research-crew/components"
)

// DefaultMaxTokens is sent when the request leaves MaxTokens unset, the messages api requires it
const DefaultMaxTokens = 4096

// Client is an anthropic messages api client
type Client struct {
	clt *anthropic.Client
}

var _ components.LLMClient = (*Client)(nil)

// New returns a Client, baseURL is optional
func New(authToken string, baseURL string) *Client {
	opts := make([]anthropic.ClientOption, 0, 1)
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &Client{clt: anthropic.NewClient(authToken, opts...)}
}

func (c *Client) Chat(ctx context.Context, req *components.ChatRequest) (*components.ChatResponse, error) {
	temperature := req.Temperature
	chatReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(req.Model),
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: &temperature,
		Messages:    toAnthropic(req.Messages),
	}
	if chatReq.MaxTokens <= 0 {
		chatReq.MaxTokens = DefaultMaxTokens
	}
	for _, def := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, anthropic.ToolDefinition{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.Parameters,
		})
	}
	res, err := c.clt.CreateMessages(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	ret := &components.ChatResponse{
		FinishReason: string(res.StopReason),
		LLMResponse: components.LLMResponse{
			ID:        res.ID,
			Role:      components.AssistantRole,
			Model:     string(res.Model),
			Timestamp: time.Now().Unix(),
			Usage: &components.LLMUsage{
				InputTokens:  int64(res.Usage.InputTokens),
				OutputTokens: int64(res.Usage.OutputTokens),
			},
			Details: res.Content,
		},
	}
	var texts []string
	for _, content := range res.Content {
		switch content.Type {
		case anthropic.MessagesContentTypeText:
			texts = append(texts, content.GetText())
		case anthropic.MessagesContentTypeToolUse:
			if content.MessageContentToolUse == nil {
				continue
			}
			ret.ToolCalls = append(ret.ToolCalls, components.ToolCall{
				ID:        content.MessageContentToolUse.ID,
				Name:      content.MessageContentToolUse.Name,
				Arguments: string(content.MessageContentToolUse.Input),
			})
		}
	}
	ret.Content = strings.Join(texts, "\n")
	return ret, nil
}

// toAnthropic converts the history, folding consecutive tool results into one user turn
// since the messages api expects all results of a tool_use turn together.
func toAnthropic(messages []components.Message) []anthropic.Message {
	ret := make([]anthropic.Message, 0, len(messages))
	for _, msg := range messages {
		if cb := msg.ToolCallback(); cb != nil {
			content := anthropic.NewToolResultMessageContent(cb.ID, cb.Content, cb.IsError)
			if l := len(ret); l > 0 && ret[l-1].Role == anthropic.RoleUser && isToolResults(ret[l-1]) {
				ret[l-1].Content = append(ret[l-1].Content, content)
				continue
			}
			ret = append(ret, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{content},
			})
			continue
		}
		switch msg.Role() {
		case components.AssistantRole:
			contents := make([]anthropic.MessageContent, 0, len(msg.ToolCalls())+1)
			if txt := msg.Text(); txt != "" {
				contents = append(contents, anthropic.NewTextMessageContent(txt))
			}
			for _, call := range msg.ToolCalls() {
				args := json.RawMessage(call.Arguments)
				if len(args) == 0 {
					args = json.RawMessage("{}")
				}
				contents = append(contents, anthropic.NewToolUseMessageContent(call.ID, call.Name, args))
			}
			ret = append(ret, anthropic.Message{Role: anthropic.RoleAssistant, Content: contents})
		default:
			ret = append(ret, anthropic.NewUserTextMessage(msg.Text()))
		}
	}
	return ret
}

func isToolResults(msg anthropic.Message) bool {
	for _, c := range msg.Content {
		if c.Type != anthropic.MessagesContentTypeToolResult {
			return false
		}
	}
	return len(msg.Content) > 0
}
