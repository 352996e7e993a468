package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestChatMessage_RoundTrip(t *testing.T) {
	// Inputs are compact with sorted keys, the form encoding/json emits, so
	// a faithful round trip is byte-identical.
	tests := []struct {
		name string
		in   string
	}{
		{"plain text", `{"content":"hello","id":"1","role":"user"}`},
		{"parts only", `{"id":"1","parts":[{"text":"hi","type":"text"}],"role":"user"}`},
		{"array content", `{"content":[{"text":"hi","type":"text"},{"args":{"path":"/App.jsx"},"toolName":"str_replace_editor","type":"tool-call"}],"id":"2","role":"assistant"}`},
		{"empty content kept", `{"content":"","id":"3","role":"assistant"}`},
		{"null content kept", `{"content":null,"id":"4","role":"assistant"}`},
		{"numeric id", `{"content":"x","id":7,"role":"user"}`},
		{"extra fields", `{"content":"ok","createdAt":"2026-10-18T14:00:00Z","id":"5","role":"assistant","toolInvocations":[{"state":"result"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m ChatMessage
			if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			out, err := json.Marshal(m)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(out) != tt.in {
				t.Errorf("round trip changed message\n got: %s\nwant: %s", out, tt.in)
			}
		})
	}
}

func TestChatMessage_RoundTripUnsortedInput(t *testing.T) {
	in := `{"role": "user", "parts": [{"type": "text", "text": "hi"}], "id": "1"}`

	var m ChatMessage
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var want, got any
	_ = json.Unmarshal([]byte(in), &want)
	_ = json.Unmarshal(out, &got)
	if !reflect.DeepEqual(want, got) {
		t.Errorf("round trip changed message\n got: %s\nwant: %s", out, in)
	}
}

func TestChatMessage_KnownFields(t *testing.T) {
	var m ChatMessage
	in := `{"id":"1","role":"assistant","content":[{"type":"text","text":"hi"}]}`
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.ID != "1" || m.Role != "assistant" {
		t.Errorf("unexpected id/role %q/%q", m.ID, m.Role)
	}
	if m.Content != "" {
		t.Errorf("expected structured content to stay out of Content, got %q", m.Content)
	}
	if _, ok := m.Extra["content"]; !ok {
		t.Error("expected structured content in Extra")
	}
}

func TestChatMessage_MarshalFromFields(t *testing.T) {
	out, err := json.Marshal(ChatMessage{ID: "1", Role: "user"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"id":"1","role":"user"}` {
		t.Errorf("unexpected output %s", out)
	}
}

func TestChatMessage_RejectsNonObject(t *testing.T) {
	var m ChatMessage
	if err := json.Unmarshal([]byte(`"hello"`), &m); err == nil {
		t.Error("expected error for non-object message")
	}
}
