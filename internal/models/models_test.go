package models

import (
	"encoding/json"
	"testing"
)

func TestMessageConstructors(t *testing.T) {
	user := NewUserMessage("hello")
	if user.Kind != KindFinal || user.Role != RoleUser || user.Content != "hello" {
		t.Errorf("NewUserMessage() = %+v", user)
	}
	if user.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	reply := NewAssistantMessage("hi there")
	if reply.IsPending() || reply.Role != RoleAssistant {
		t.Errorf("NewAssistantMessage() = %+v", reply)
	}

	pending := NewPendingMessage()
	if !pending.IsPending() || pending.Role != RoleAssistant || pending.Content != "" {
		t.Errorf("NewPendingMessage() = %+v", pending)
	}
}

func TestRoleValid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("system").Valid() || Role("").Valid() {
		t.Error("unknown roles should be invalid")
	}
}

func TestChatRequestJSON(t *testing.T) {
	req := ChatRequest{
		Message: "Tell me about the projects",
		ChatHistory: []WireMessage{
			NewUserMessage("hi").Wire(),
			NewAssistantMessage("hello!").Wire(),
		},
	}

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"message":"Tell me about the projects","chat_history":[{"role":"user","content":"hi"},{"role":"assistant","content":"hello!"}]}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	data, _ = json.Marshal(ChatRequest{Message: "first"})
	if string(data) != `{"message":"first"}` {
		t.Errorf("empty history should be omitted, got %s", data)
	}
}

func TestContentResources(t *testing.T) {
	for name, path := range ContentResources {
		if name == "" || path == "" || path[0] != '/' {
			t.Errorf("bad resource %q -> %q", name, path)
		}
	}
	if ContentResources["projects"] != "/api/projects" {
		t.Error("projects resource missing")
	}
}
