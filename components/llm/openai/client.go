// Package openai adapts sashabaranov/go-openai to components.LLMClient
package openai

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/bububa/research-crew/components"
)

// Client is an openai compatible chat client
type Client struct {
	clt *openai.Client
}

var _ components.LLMClient = (*Client)(nil)

// New returns a Client talking to the openai api, or a compatible endpoint when baseURL is set
func New(authToken string, baseURL string) *Client {
	cfg := openai.DefaultConfig(authToken)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{clt: openai.NewClientWithConfig(cfg)}
}

// NewWithClient wraps an existing go-openai client
func NewWithClient(clt *openai.Client) *Client {
	return &Client{clt: clt}
}

func (c *Client) Chat(ctx context.Context, req *components.ChatRequest) (*components.ChatResponse, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1),
	}
	if req.System != "" {
		chatReq.Messages = append(chatReq.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		chatReq.Messages = append(chatReq.Messages, toOpenAI(msg))
	}
	for _, def := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	res, err := c.clt.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	if len(res.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}
	choice := res.Choices[0]
	ret := &components.ChatResponse{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		LLMResponse: components.LLMResponse{
			ID:        res.ID,
			Role:      components.AssistantRole,
			Model:     res.Model,
			Timestamp: time.Now().Unix(),
			Usage: &components.LLMUsage{
				InputTokens:  int64(res.Usage.PromptTokens),
				OutputTokens: int64(res.Usage.CompletionTokens),
			},
			Details: res.Choices,
		},
	}
	for _, call := range choice.Message.ToolCalls {
		ret.ToolCalls = append(ret.ToolCalls, components.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return ret, nil
}

func toOpenAI(msg components.Message) openai.ChatCompletionMessage {
	ret := openai.ChatCompletionMessage{
		Role:    msg.Role(),
		Content: msg.Text(),
	}
	if cb := msg.ToolCallback(); cb != nil {
		ret.Role = openai.ChatMessageRoleTool
		ret.ToolCallID = cb.ID
		ret.Name = cb.Name
		return ret
	}
	for _, call := range msg.ToolCalls() {
		ret.ToolCalls = append(ret.ToolCalls, openai.ToolCall{
			ID:   call.ID,
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		})
	}
	return ret
}
