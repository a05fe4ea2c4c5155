package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tailored-agentic-units/chat/agent/mock"
	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

func drain(t *testing.T, a *mock.MockAgent, input string) ([]string, error) {
	t.Helper()
	s, err := a.Generate(context.Background(), endpoint.MustParse("m@p"), []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, input),
	})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	var got []string
	for s.Next() {
		got = append(got, s.Current().Content)
	}
	return got, s.Err()
}

func TestMockAgent_ScriptedThenEcho(t *testing.T) {
	a := mock.NewMockAgent(mock.WithReplies(mock.Reply{Fragments: []string{"Hi", " there"}}))

	got, err := drain(t, a, "hello")
	if err != nil || len(got) != 2 {
		t.Fatalf("scripted reply: got (%q, %v)", got, err)
	}

	got, err = drain(t, a, "echo me")
	if err != nil || len(got) != 1 || got[0] != "echo me" {
		t.Fatalf("echo reply: got (%q, %v)", got, err)
	}

	if len(a.Calls()) != 2 {
		t.Errorf("got %d calls, want 2", len(a.Calls()))
	}
}

func TestMockAgent_FailAfter(t *testing.T) {
	boom := errors.New("boom")
	a := mock.NewMockAgent(mock.WithReplies(mock.Reply{
		Fragments: []string{"a", "b", "c"},
		FailAfter: 1,
		Err:       boom,
	}))

	got, err := drain(t, a, "x")
	if !errors.Is(err, boom) {
		t.Errorf("got error %v, want %v", err, boom)
	}
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("got fragments %q, want [a]", got)
	}
}

func TestMockAgent_OpenErr(t *testing.T) {
	boom := errors.New("bad endpoint")
	a := mock.NewMockAgent(mock.WithReplies(mock.Reply{OpenErr: boom}))

	if _, err := drain(t, a, "x"); !errors.Is(err, boom) {
		t.Errorf("got %v, want %v", err, boom)
	}
}

func TestMockAgent_Balances(t *testing.T) {
	a := mock.NewMockAgent(mock.WithBalances(10, 9.5))
	ctx := context.Background()

	for _, want := range []float64{10, 9.5, 9.5} {
		got, err := a.CreditBalance(ctx)
		if err != nil {
			t.Fatalf("CreditBalance failed: %v", err)
		}
		if got != want {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
