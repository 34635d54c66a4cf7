package components

import (
	"github.com/rs/xid"

	"github.com/bububa/research-crew/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'system', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message  Represents a message in the chat history.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'system', 'tool')
	role MessageRole
	//	turnID is Unique identifier for the turn this message belongs to.
	turnID string
	// toolCalls requested by the assistant in this message
	toolCalls []ToolCall
	// toolCallback is set on tool role messages
	toolCallback *ToolCallback
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// NewToolCallsMessage returns an assistant message carrying tool calls
func NewToolCallsMessage(content string, calls []ToolCall) *Message {
	return &Message{
		role:      AssistantRole,
		content:   schema.String(content),
		toolCalls: calls,
	}
}

// NewToolCallbackMessage returns a tool message answering a tool call
func NewToolCallbackMessage(cb ToolCallback) *Message {
	return &Message{
		role:         ToolRole,
		content:      schema.String(cb.Content),
		toolCallback: &cb,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// Text returns message content as text
func (m Message) Text() string {
	return schema.Stringify(m.content)
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// ToolCalls returns the tool calls requested by the assistant
func (m Message) ToolCalls() []ToolCall {
	return m.toolCalls
}

// ToolCallback returns the tool result carried by a tool message
func (m Message) ToolCallback() *ToolCallback {
	return m.toolCallback
}
