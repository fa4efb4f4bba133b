// Package chat runs one conversation turn against the agent runtime and
// assembles the replies plus the ordered tool invocation log.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/miru0/miru/internal/tools"
)

const (
	// defaultMaxTurns caps the agentic loop when not configured.
	defaultMaxTurns = 5

	// fallbackReply is returned when the model produces no text at all.
	fallbackReply = "I apologize, but I couldn't generate a response. Please try rephrasing your question."
)

// ErrNoMessages indicates a conversation request without any messages.
var ErrNoMessages = errors.New("messages must not be empty")

// Message is one chat transcript entry. Structured content (arrays or
// objects from rich frontends) is flattened to its JSON encoding so the
// rest of the pipeline only ever sees strings.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// UnmarshalJSON accepts content as a plain string or as arbitrary JSON,
// serializing the latter back to a compact string.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Role = raw.Role

	if len(raw.Content) == 0 {
		m.Content = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Content, &s); err == nil {
		m.Content = s
		return nil
	}
	m.Content = string(raw.Content)
	return nil
}

// Options are the per-request conversation switches. The allow gates
// default to true when the request omits them.
type Options struct {
	DeepThinking   bool           `json:"deep_thinking"`
	AllowWebSearch bool           `json:"allow_web_search"`
	AllowImageTool bool           `json:"allow_image_tool"`
	EnableSearch   bool           `json:"enable_search"`
	SearchOptions  map[string]any `json:"search_options,omitempty"`
}

// DefaultOptions returns the options applied when a request carries none.
func DefaultOptions() Options {
	return Options{AllowWebSearch: true, AllowImageTool: true}
}

// UnmarshalJSON applies the default-true semantics of the allow gates.
func (o *Options) UnmarshalJSON(data []byte) error {
	aux := struct {
		DeepThinking   bool           `json:"deep_thinking"`
		AllowWebSearch *bool          `json:"allow_web_search"`
		AllowImageTool *bool          `json:"allow_image_tool"`
		EnableSearch   bool           `json:"enable_search"`
		SearchOptions  map[string]any `json:"search_options"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.DeepThinking = aux.DeepThinking
	o.EnableSearch = aux.EnableSearch
	o.SearchOptions = aux.SearchOptions
	o.AllowWebSearch = aux.AllowWebSearch == nil || *aux.AllowWebSearch
	o.AllowImageTool = aux.AllowImageTool == nil || *aux.AllowImageTool
	return nil
}

// ToolEvent is the per-call invocation record, re-exported so API
// consumers do not need to import the tools package.
type ToolEvent = tools.ToolEvent

// Result is the outcome of one conversation turn.
type Result struct {
	Replies    []Message   `json:"replies"`
	ToolEvents []ToolEvent `json:"tool_events"`
}

// Config contains all required parameters for the conversation service.
type Config struct {
	Genkit   *genkit.Genkit
	Registry *tools.Registry
	MCPTools []ai.Tool
	Logger   *slog.Logger

	// ModelName is the provider-qualified Genkit model name,
	// e.g. "openai/qwen3".
	ModelName string
	MaxTurns  int

	Backend Backend

	// Resilience (zero values use defaults).
	RetryConfig RetryConfig
	RateLimiter *rate.Limiter
}

func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return errors.New("genkit instance is required")
	}
	if cfg.Registry == nil {
		return errors.New("tool registry is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	if cfg.ModelName == "" {
		return errors.New("model name is required")
	}
	return nil
}

// Service orchestrates conversation turns. All configuration is captured
// immutably at construction, so a Service is safe for concurrent use.
type Service struct {
	g        *genkit.Genkit
	registry *tools.Registry
	mcpRefs  []ai.ToolRef
	logger   *slog.Logger

	modelName string
	maxTurns  int
	backend   Backend

	retryConfig RetryConfig
	rateLimiter *rate.Limiter
}

// New creates the conversation service.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	maxTurns := cfg.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	retryConfig := cfg.RetryConfig
	if retryConfig.MaxRetries == 0 {
		retryConfig = DefaultRetryConfig()
	}

	// Default: 10 requests/sec sustained, burst of 30.
	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	mcpRefs := make([]ai.ToolRef, len(cfg.MCPTools))
	for i, t := range cfg.MCPTools {
		mcpRefs[i] = t
	}

	s := &Service{
		g:           cfg.Genkit,
		registry:    cfg.Registry,
		mcpRefs:     mcpRefs,
		logger:      cfg.Logger,
		modelName:   cfg.ModelName,
		maxTurns:    maxTurns,
		backend:     cfg.Backend,
		retryConfig: retryConfig,
		rateLimiter: rl,
	}

	s.logger.Info("chat service initialized",
		"model", s.modelName,
		"local_tools", s.registry.Count(),
		"mcp_tools", len(s.mcpRefs),
		"max_turns", s.maxTurns,
	)
	return s, nil
}

// RunConversation executes a single turn of conversation. The returned
// result carries the assistant replies and one normalized ToolEvent per
// completed tool call, in runtime invocation order. A failed turn
// propagates its error and yields no events.
func (s *Service) RunConversation(ctx context.Context, messages []Message, lang string, opts Options, clientIP string) (*Result, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	params := BuildLLMParams(s.backend, opts)
	s.logger.Info("prepared llm params", "params", Redact(params))

	toolRefs := s.registry.Select(tools.FilterOptions{
		AllowImage:     opts.AllowImageTool,
		AllowWebSearch: opts.AllowWebSearch,
	})
	toolRefs = append(toolRefs, s.mcpRefs...)

	history, err := toGenkitMessages(messages)
	if err != nil {
		return nil, err
	}

	if clientIP != "" {
		ctx = tools.WithClientIP(ctx, clientIP)
	}

	genOpts := []ai.GenerateOption{
		ai.WithModelName(s.modelName),
		ai.WithSystem(systemPrompt(opts.DeepThinking, lang)),
		ai.WithMessages(history...),
		ai.WithMaxTurns(s.maxTurns),
	}
	if len(toolRefs) > 0 {
		genOpts = append(genOpts, ai.WithTools(toolRefs...))
	}
	if reqCfg := RequestConfig(params); reqCfg != nil {
		genOpts = append(genOpts, ai.WithConfig(reqCfg))
	}

	resp, err := s.generateWithRetry(ctx, genOpts)
	if err != nil {
		return nil, fmt.Errorf("running conversation: %w", err)
	}

	conversation := make([]*ai.Message, 0, len(resp.Request.Messages)+1)
	conversation = append(conversation, resp.Request.Messages...)
	conversation = append(conversation, resp.Message)
	events := tools.CollectEvents(conversation)

	replies := turnReplies(len(history), resp, thoughtInContent(params))
	if len(replies) == 0 {
		s.logger.Warn("model returned empty response")
		replies = []Message{{Role: "assistant", Content: fallbackReply}}
	}

	return &Result{
		Replies:    replies,
		ToolEvents: events,
	}, nil
}

// turnReplies reshapes the messages generated during this turn into
// {role, content} pairs: model messages become assistant replies, tool
// responses become function messages carrying the raw result. The
// injected system prompt and the submitted history are not echoed back.
func turnReplies(historyLen int, resp *ai.ModelResponse, includeThought bool) []Message {
	if resp == nil {
		return nil
	}

	var turn []*ai.Message
	if resp.Request != nil {
		msgs := resp.Request.Messages
		skip := historyLen
		if len(msgs) > 0 && msgs[0].Role == ai.RoleSystem {
			skip++
		}
		if skip < len(msgs) {
			turn = append(turn, msgs[skip:]...)
		}
	}
	if resp.Message != nil {
		turn = append(turn, resp.Message)
	}

	replies := make([]Message, 0, len(turn))
	for _, m := range turn {
		switch m.Role {
		case ai.RoleModel:
			replies = append(replies, Message{Role: "assistant", Content: messageText(m, includeThought)})
		case ai.RoleTool:
			for _, part := range m.Content {
				if part.IsToolResponse() {
					replies = append(replies, Message{Role: "function", Content: stringifyOutput(part.ToolResponse.Output)})
				}
			}
		}
	}
	return replies
}

// messageText flattens one model message to text. Reasoning parts are
// surfaced only when thought_in_content is set for the request.
func messageText(m *ai.Message, includeThought bool) string {
	var b strings.Builder
	for _, part := range m.Content {
		switch {
		case part.IsReasoning():
			if includeThought && strings.TrimSpace(part.Text) != "" {
				b.WriteString(part.Text)
				b.WriteString("\n\n")
			}
		case part.IsText():
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// stringifyOutput renders a tool output as the string content of a
// function message. Non-string outputs are JSON-encoded.
func stringifyOutput(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// toGenkitMessages converts transcript entries to runtime messages.
// Unknown roles are rejected before they reach the backend.
func toGenkitMessages(messages []Message) ([]*ai.Message, error) {
	out := make([]*ai.Message, 0, len(messages))
	for i, m := range messages {
		var role ai.Role
		switch m.Role {
		case "user":
			role = ai.RoleUser
		case "assistant":
			role = ai.RoleModel
		case "system":
			role = ai.RoleSystem
		default:
			return nil, fmt.Errorf("message %d: unsupported role %q", i, m.Role)
		}
		out = append(out, &ai.Message{
			Role:    role,
			Content: []*ai.Part{ai.NewTextPart(m.Content)},
		})
	}
	return out, nil
}
