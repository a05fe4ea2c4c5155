package endpoint_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/chat/core/endpoint"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantModel    string
		wantProvider string
		wantErr      bool
	}{
		{name: "routing mode", input: "llama-2-13b-chat@lowest-input-cost", wantModel: "llama-2-13b-chat", wantProvider: "lowest-input-cost"},
		{name: "concrete provider", input: "gpt-4-turbo@openai", wantModel: "gpt-4-turbo", wantProvider: "openai"},
		{name: "uploader prefix", input: "meta/llama-3-8b@together-ai", wantModel: "meta/llama-3-8b", wantProvider: "together-ai"},
		{name: "no separator", input: "gpt-4", wantErr: true},
		{name: "empty model", input: "@openai", wantErr: true},
		{name: "empty provider", input: "gpt-4@", wantErr: true},
		{name: "two separators", input: "a@b@c", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := endpoint.Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, endpoint.ErrMalformed) {
					t.Fatalf("Parse(%q) error = %v, want ErrMalformed", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if sel.Model() != tt.wantModel {
				t.Errorf("got model %q, want %q", sel.Model(), tt.wantModel)
			}
			if sel.Provider() != tt.wantProvider {
				t.Errorf("got provider %q, want %q", sel.Provider(), tt.wantProvider)
			}
			if sel.String() != tt.input {
				t.Errorf("String() = %q, want %q", sel.String(), tt.input)
			}
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse did not panic on malformed input")
		}
	}()
	endpoint.MustParse("no-separator")
}

func TestSelector_WithModel(t *testing.T) {
	sel := endpoint.MustParse("llama-2-13b-chat@lowest-input-cost")

	next, err := sel.WithModel("llama-2-70b-chat")
	if err != nil {
		t.Fatalf("WithModel failed: %v", err)
	}
	if next.String() != "llama-2-70b-chat@lowest-input-cost" {
		t.Errorf("got %q, want %q", next.String(), "llama-2-70b-chat@lowest-input-cost")
	}
	if sel.Model() != "llama-2-13b-chat" {
		t.Errorf("receiver was mutated: got model %q", sel.Model())
	}
}

func TestSelector_WithModel_NoProvider(t *testing.T) {
	sel := endpoint.New("gpt-4", "")

	next, err := sel.WithModel("gpt-4o")

	var incomplete *endpoint.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("got error %v, want *IncompleteError", err)
	}
	if incomplete.Missing != "provider" {
		t.Errorf("got missing %q, want %q", incomplete.Missing, "provider")
	}
	if next != sel {
		t.Errorf("selector changed on failure: got %q, want %q", next, sel)
	}
}

func TestSelector_WithProvider(t *testing.T) {
	sel := endpoint.MustParse("gpt-4-turbo@openai")

	next, err := sel.WithProvider("azure-ai")
	if err != nil {
		t.Fatalf("WithProvider failed: %v", err)
	}
	if next.Model() != "gpt-4-turbo" || next.Provider() != "azure-ai" {
		t.Errorf("got %q, want %q", next.String(), "gpt-4-turbo@azure-ai")
	}
}

func TestSelector_WithProvider_NoModel(t *testing.T) {
	sel := endpoint.New("", "openai")

	_, err := sel.WithProvider("anyscale")

	var incomplete *endpoint.IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("got error %v, want *IncompleteError", err)
	}
	if incomplete.Missing != "model" {
		t.Errorf("got missing %q, want %q", incomplete.Missing, "model")
	}
}

func TestSelector_EmptyArgument(t *testing.T) {
	sel := endpoint.MustParse("gpt-4@openai")

	if _, err := sel.WithModel(""); err == nil {
		t.Error("WithModel(\"\") succeeded, want error")
	}
	if _, err := sel.WithProvider(""); err == nil {
		t.Error("WithProvider(\"\") succeeded, want error")
	}
}

func TestSelector_Validate(t *testing.T) {
	tests := []struct {
		name        string
		sel         endpoint.Selector
		wantMissing string
	}{
		{name: "complete", sel: endpoint.New("m", "p")},
		{name: "no provider", sel: endpoint.New("m", ""), wantMissing: "provider"},
		{name: "no model", sel: endpoint.New("", "p"), wantMissing: "model"},
		{name: "zero", sel: endpoint.Selector{}, wantMissing: "model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sel.Validate()
			if tt.wantMissing == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				if !tt.sel.IsComplete() {
					t.Error("IsComplete() = false, want true")
				}
				return
			}
			var incomplete *endpoint.IncompleteError
			if !errors.As(err, &incomplete) {
				t.Fatalf("Validate() = %v, want *IncompleteError", err)
			}
			if incomplete.Missing != tt.wantMissing {
				t.Errorf("got missing %q, want %q", incomplete.Missing, tt.wantMissing)
			}
		})
	}
}

func TestSelector_String_Incomplete(t *testing.T) {
	tests := []struct {
		sel  endpoint.Selector
		want string
	}{
		{endpoint.Selector{}, ""},
		{endpoint.New("gpt-4", ""), "gpt-4@"},
		{endpoint.New("", "openai"), "@openai"},
	}

	for _, tt := range tests {
		if got := tt.sel.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
