package gemini

import (
	"errors"
	"iter"
	"testing"

	"google.golang.org/genai"

	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

func TestToContents(t *testing.T) {
	messages := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "be brief"),
		protocol.NewMessage(protocol.RoleUser, "hello"),
		protocol.NewMessage(protocol.RoleAssistant, "Hi there"),
		protocol.NewMessage(protocol.RoleUser, "again"),
	}

	contents, system := toContents(messages)

	if system == nil || len(system.Parts) != 1 || system.Parts[0].Text != "be brief" {
		t.Fatalf("got system instruction %+v, want \"be brief\"", system)
	}
	if len(contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(contents))
	}

	wantRoles := []string{string(genai.RoleUser), string(genai.RoleModel), string(genai.RoleUser)}
	for i, c := range contents {
		if string(c.Role) != wantRoles[i] {
			t.Errorf("content %d: got role %q, want %q", i, c.Role, wantRoles[i])
		}
	}
	if contents[1].Parts[0].Text != "Hi there" {
		t.Errorf("got assistant text %q", contents[1].Parts[0].Text)
	}
}

func TestToContents_NoSystem(t *testing.T) {
	_, system := toContents([]protocol.Message{protocol.NewMessage(protocol.RoleUser, "hi")})
	if system != nil {
		t.Errorf("got system instruction %+v, want nil", system)
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

func TestStream(t *testing.T) {
	boom := errors.New("quota exceeded")
	var seq iter.Seq2[*genai.GenerateContentResponse, error] = func(yield func(*genai.GenerateContentResponse, error) bool) {
		if !yield(textResponse("Hi"), nil) {
			return
		}
		if !yield(textResponse(""), nil) {
			return
		}
		if !yield(textResponse(" there"), nil) {
			return
		}
		yield(nil, boom)
	}

	next, stop := iter.Pull2(seq)
	s := &stream{next: next, stop: stop, sel: endpoint.MustParse("gemini-2.5-flash@google")}
	defer s.Close()

	var got string
	for s.Next() {
		got += s.Current().Content
		if s.Current().Model != "gemini-2.5-flash@google" {
			t.Errorf("got model %q", s.Current().Model)
		}
	}

	if got != "Hi there" {
		t.Errorf("got %q, want %q", got, "Hi there")
	}
	if !errors.Is(s.Err(), boom) {
		t.Errorf("got error %v, want %v", s.Err(), boom)
	}
	if s.Next() {
		t.Error("Next returned true after the stream ended")
	}
}
