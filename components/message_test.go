package components

import (
	"testing"

	"github.com/bububa/research-crew/schema"
)

func TestMessage(t *testing.T) {
	msg := NewMessage(UserRole, schema.NewInput("test string schema")).SetTurnID("turn")
	if msg.Text() != "test string schema" {
		t.Errorf("string match error, expect:%s, got:%s", "test string schema", msg.Text())
	}
	if msg.Role() != UserRole || msg.TurnID() != "turn" {
		t.Errorf("unexpected message %+v", msg)
	}

	calls := []ToolCall{{ID: "call_1", Name: "search_the_internet", Arguments: `{"query":"go"}`}}
	assistant := NewToolCallsMessage("", calls)
	if assistant.Role() != AssistantRole || len(assistant.ToolCalls()) != 1 {
		t.Errorf("unexpected tool calls message %+v", assistant)
	}

	tool := NewToolCallbackMessage(ToolCallback{ID: "call_1", Name: "search_the_internet", Content: "no results"})
	if tool.Role() != ToolRole || tool.Text() != "no results" || tool.ToolCallback().ID != "call_1" {
		t.Errorf("unexpected tool message %+v", tool)
	}
}

func TestNewTurnID(t *testing.T) {
	a, b := NewTurnID(), NewTurnID()
	if a == "" || a == b {
		t.Errorf("expect unique turn ids, got %s and %s", a, b)
	}
}
