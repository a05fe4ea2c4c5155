// Package unify implements agent.Agent against the Unify router. Unify
// exposes an OpenAI-compatible chat completions API where the model field is
// the compound "<model>@<provider>" endpoint, plus a credits endpoint for
// account balance.
package unify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
	"github.com/openai/openai-go/v3/shared"

	"github.com/tailored-agentic-units/chat/agent"
	"github.com/tailored-agentic-units/chat/core/config"
	"github.com/tailored-agentic-units/chat/core/endpoint"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// Name is the backend name used in configuration.
const Name = "unify"

func init() {
	if err := agent.Register(Name, func(ctx context.Context, cfg *config.AgentConfig, apiKey string) (agent.Agent, error) {
		return New(cfg, apiKey)
	}); err != nil {
		panic(err)
	}
}

// Client is the Unify agent.
type Client struct {
	id          string
	client      openai.Client
	maxTokens   int
	temperature *float64
}

// New creates a Client. Requests are never retried by the client; a failed
// turn is reported to the caller as-is.
func New(cfg *config.AgentConfig, apiKey string, opts ...option.RequestOption) (*Client, error) {
	if apiKey == "" {
		return nil, agent.ErrMissingKey
	}

	baseURL := cfg.Backend.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		id:          uuid.Must(uuid.NewV7()).String(),
		client:      openai.NewClient(reqOpts...),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

var _ agent.Agent = (*Client)(nil)

func (c *Client) ID() string   { return c.id }
func (c *Client) Name() string { return Name }

// Generate opens a streaming chat completion on sel.
func (c *Client) Generate(ctx context.Context, sel endpoint.Selector, messages []protocol.Message) (agent.Stream, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(sel.String()),
		Messages: toParams(messages),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}

	s := c.client.Chat.Completions.NewStreaming(ctx, params)
	if err := s.Err(); err != nil {
		s.Close()
		return nil, fmt.Errorf("unify: open stream for %s: %w", sel, err)
	}
	return &stream{s: s}, nil
}

type creditsResponse struct {
	ID      string  `json:"id"`
	Credits float64 `json:"credits"`
}

// CreditBalance queries the remaining account credits.
func (c *Client) CreditBalance(ctx context.Context) (float64, error) {
	var res creditsResponse
	if err := c.client.Get(ctx, "credits", nil, &res); err != nil {
		return 0, fmt.Errorf("unify: credits: %w", err)
	}
	return res.Credits, nil
}

func toParams(messages []protocol.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case protocol.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case protocol.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// stream adapts the SSE chunk stream to agent.Stream. Chunks without a
// content delta are skipped, but their model metadata is kept.
type stream struct {
	s     *ssestream.Stream[openai.ChatCompletionChunk]
	cur   protocol.Chunk
	model string
}

func (st *stream) Next() bool {
	for st.s.Next() {
		chunk := st.s.Current()
		if chunk.Model != "" {
			st.model = chunk.Model
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		st.cur = protocol.Chunk{
			Content: chunk.Choices[0].Delta.Content,
			Model:   st.model,
		}
		return true
	}
	return false
}

func (st *stream) Current() protocol.Chunk { return st.cur }

func (st *stream) Err() error {
	if err := st.s.Err(); err != nil {
		return fmt.Errorf("unify: stream: %w", err)
	}
	return nil
}

func (st *stream) Close() error { return st.s.Close() }
