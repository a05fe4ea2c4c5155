// Package gemini implements agent.Agent directly against the Gemini API.
// The provider half of the endpoint is not used for routing; the model half
// names the Gemini model. Gemini has no credit accounting.
package gemini

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/tailored-agentic-units/chat/agent"
	"github.com/tailored-agentic-units/chat/core/config"
	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Name is the backend name used in configuration.
const Name = "gemini"

func init() {
	if err := agent.Register(Name, func(ctx context.Context, cfg *config.AgentConfig, apiKey string) (agent.Agent, error) {
		return New(ctx, cfg, apiKey)
	}); err != nil {
		panic(err)
	}
}

// Client is the Gemini agent.
type Client struct {
	id          string
	client      *genai.Client
	maxTokens   int
	temperature *float64
}

// New creates a Client. cfg.Backend.BaseURL is honored only when it does not
// point at the Unify default.
func New(ctx context.Context, cfg *config.AgentConfig, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, agent.ErrMissingKey
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Backend.BaseURL != "" && cfg.Backend.BaseURL != config.DefaultBaseURL {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.Backend.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		id:          uuid.Must(uuid.NewV7()).String(),
		client:      client,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

var _ agent.Agent = (*Client)(nil)

func (c *Client) ID() string   { return c.id }
func (c *Client) Name() string { return Name }

// Generate streams a completion from the Gemini model named by sel.Model().
func (c *Client) Generate(ctx context.Context, sel endpoint.Selector, messages []protocol.Message) (agent.Stream, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	contents, system := toContents(messages)
	gc := &genai.GenerateContentConfig{SystemInstruction: system}
	if c.maxTokens > 0 {
		gc.MaxOutputTokens = int32(c.maxTokens)
	}
	if c.temperature != nil {
		gc.Temperature = genai.Ptr(float32(*c.temperature))
	}

	seq := c.client.Models.GenerateContentStream(ctx, sel.Model(), contents, gc)
	next, stop := iter.Pull2(seq)
	return &stream{next: next, stop: stop, sel: sel}, nil
}

// CreditBalance is not available on the Gemini API.
func (c *Client) CreditBalance(ctx context.Context) (float64, error) {
	return 0, agent.ErrCreditsUnsupported
}

// toContents converts the transcript into Gemini contents. System messages
// are folded into a single system instruction.
func toContents(messages []protocol.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, m := range messages {
		switch m.Role {
		case protocol.RoleSystem:
			system = append(system, m.Content)
		case protocol.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

type stream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
	sel  endpoint.Selector
	cur  protocol.Chunk
	err  error
	done bool
}

func (s *stream) Next() bool {
	for !s.done {
		resp, err, ok := s.next()
		if !ok {
			s.done = true
			return false
		}
		if err != nil {
			s.err = fmt.Errorf("gemini: stream: %w", err)
			s.done = true
			return false
		}
		text := responseText(resp)
		if text == "" {
			continue
		}
		s.cur = protocol.Chunk{Content: text, Model: s.sel.String()}
		return true
	}
	return false
}

func (s *stream) Current() protocol.Chunk { return s.cur }
func (s *stream) Err() error              { return s.err }

func (s *stream) Close() error {
	s.done = true
	s.stop()
	return nil
}
