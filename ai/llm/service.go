// Package llm wraps an OpenAI-compatible chat completion endpoint behind a
// streaming interface. Local ollama is the primary target; any provider
// speaking the same protocol works unchanged.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message represents a chat message. ToolCalls is set on assistant turns
// that requested a tool; ToolCallID links a tool-result turn back to the
// request that produced it.
type Message struct {
	Role       string // system, user, assistant, tool
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolDescriptor represents a function/tool available to the LLM.
type ToolDescriptor struct {
	Name        string
	Description string
	Parameters  string // JSON Schema string
}

// ToolCall represents a request to call a tool.
type ToolCall struct {
	ID       string
	Type     string
	Function FunctionCall
}

// FunctionCall represents the function details.
type FunctionCall struct {
	Name      string
	Arguments string
}

// CallStats carries token usage and timing metrics for a single call.
type CallStats struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// ThinkingDurationMs is the time from request start to first chunk.
	ThinkingDurationMs int64 `json:"thinking_duration_ms"`

	// GenerationDurationMs is the time from first chunk to last chunk.
	GenerationDurationMs int64 `json:"generation_duration_ms,omitempty"`

	TotalDurationMs int64 `json:"total_duration_ms"`
}

// StreamRequest describes one streaming completion.
type StreamRequest struct {
	// Model overrides the configured default when non-empty.
	Model    string
	Messages []Message
	// Tools are advertised to the model. Tool calls are accumulated from
	// the delta fragments and surfaced in the StreamResult only once the
	// stream has fully completed.
	Tools []ToolDescriptor
}

// StreamResult is the terminal summary of a streamed completion.
type StreamResult struct {
	Content   string
	ToolCalls []ToolCall
	Stats     *CallStats
}

// Service is the LLM service interface.
type Service interface {
	// Stream performs a streaming chat completion. Content deltas arrive on
	// the first channel as they are received; exactly one StreamResult or
	// one error follows on the other two.
	Stream(ctx context.Context, req *StreamRequest) (<-chan string, <-chan *StreamResult, <-chan error)

	// Warmup sends a lightweight ping request to establish and warm up the
	// upstream connection.
	Warmup(ctx context.Context)
}

// Config represents LLM service configuration.
type Config struct {
	Provider    string // ollama, openai, deepseek, siliconflow, openrouter
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 2048
	Temperature float32 // default: 0.7
	Timeout     int     // Request timeout in seconds (default: 300)
}

type service struct {
	client      *openai.Client
	model       string
	provider    string
	maxTokens   int
	temperature float32
	timeout     int
}

// NewService creates a new LLM Service.
func NewService(cfg *Config) (Service, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		switch cfg.Provider {
		case "ollama":
			baseURL = "http://localhost:11434/v1"
		case "openai":
			baseURL = "https://api.openai.com/v1"
		case "deepseek":
			baseURL = "https://api.deepseek.com"
		case "siliconflow":
			baseURL = "https://api.siliconflow.cn/v1"
		case "openrouter":
			baseURL = "https://openrouter.ai/api/v1"
		default:
			slog.Info("using generic OpenAI-compatible provider", "provider", cfg.Provider)
		}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	clientConfig.HTTPClient = newHTTPClient()

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 300
	}

	return &service{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		provider:    cfg.Provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

// toolCallAccumulator rebuilds tool calls from streamed fragments, keyed by
// the call index the provider assigns.
type toolCallAccumulator struct {
	calls map[int]*ToolCall
	order []int
}

func newToolCallAccumulator() *toolCallAccumulator {
	return &toolCallAccumulator{calls: map[int]*ToolCall{}}
}

func (a *toolCallAccumulator) add(tc openai.ToolCall) {
	idx := 0
	if tc.Index != nil {
		idx = *tc.Index
	}
	call, ok := a.calls[idx]
	if !ok {
		call = &ToolCall{}
		a.calls[idx] = call
		a.order = append(a.order, idx)
	}
	if tc.ID != "" {
		call.ID = tc.ID
	}
	if tc.Type != "" {
		call.Type = string(tc.Type)
	}
	call.Function.Name += tc.Function.Name
	call.Function.Arguments += tc.Function.Arguments
}

func (a *toolCallAccumulator) result() []ToolCall {
	out := make([]ToolCall, 0, len(a.order))
	for _, idx := range a.order {
		out = append(out, *a.calls[idx])
	}
	return out
}

func (s *service) Stream(ctx context.Context, req *StreamRequest) (<-chan string, <-chan *StreamResult, <-chan error) {
	contentChan := make(chan string, 10)
	resultChan := make(chan *StreamResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		defer close(resultChan)
		defer close(errChan)

		ctx, cancel := context.WithTimeout(ctx, time.Duration(s.timeout)*time.Second)
		defer cancel()

		model := req.Model
		if model == "" {
			model = s.model
		}

		chatReq := openai.ChatCompletionRequest{
			Model:         model,
			MaxTokens:     s.maxTokens,
			Temperature:   s.temperature,
			Messages:      convertMessages(req.Messages),
			StreamOptions: &openai.StreamOptions{IncludeUsage: true},
		}
		if len(req.Tools) > 0 {
			tools := make([]openai.Tool, len(req.Tools))
			for i, t := range req.Tools {
				tools[i] = openai.Tool{
					Type: openai.ToolTypeFunction,
					Function: &openai.FunctionDefinition{
						Name:        t.Name,
						Description: t.Description,
						Parameters:  json.RawMessage(t.Parameters),
					},
				}
			}
			chatReq.Tools = tools
		}

		startTime := time.Now()
		var firstChunkTime time.Time

		slog.Debug("llm stream starting", "model", model, "messages", len(req.Messages), "tools", len(req.Tools))
		stream, err := s.client.CreateChatCompletionStream(ctx, chatReq)
		if err != nil {
			slog.Error("llm stream failed to create", "error", err)
			errChan <- fmt.Errorf("create stream failed: %w", err)
			return
		}
		defer func() { _ = stream.Close() }()

		var content strings.Builder
		toolCalls := newToolCallAccumulator()
		chunkCount := 0
		var usage *CallStats

		finish := func() {
			totalDuration := time.Since(startTime)
			stats := usage
			if stats == nil {
				stats = &CallStats{}
			}
			if !firstChunkTime.IsZero() {
				stats.ThinkingDurationMs = firstChunkTime.Sub(startTime).Milliseconds()
				stats.GenerationDurationMs = time.Since(firstChunkTime).Milliseconds()
			}
			stats.TotalDurationMs = totalDuration.Milliseconds()

			slog.Debug("llm stream completed",
				"chunks", chunkCount,
				"tool_calls", len(toolCalls.order),
				"duration_ms", totalDuration.Milliseconds(),
			)
			resultChan <- &StreamResult{
				Content:   content.String(),
				ToolCalls: toolCalls.result(),
				Stats:     stats,
			}
		}

		for {
			response, err := stream.Recv()
			if err != nil {
				if strings.Contains(err.Error(), "EOF") {
					finish()
					return
				}
				slog.Error("llm stream receive error", "error", err, "chunks_so_far", chunkCount)
				errChan <- fmt.Errorf("stream recv failed: %w", err)
				return
			}

			if response.Usage != nil && response.Usage.TotalTokens > 0 {
				usage = &CallStats{
					PromptTokens:     response.Usage.PromptTokens,
					CompletionTokens: response.Usage.CompletionTokens,
					TotalTokens:      response.Usage.TotalTokens,
				}
			}

			// Fragments without a choice (keep-alives, usage-only frames,
			// malformed chunks the decoder salvaged) are skipped.
			if len(response.Choices) == 0 {
				continue
			}
			choice := response.Choices[0]

			for _, tc := range choice.Delta.ToolCalls {
				toolCalls.add(tc)
			}

			if delta := choice.Delta.Content; delta != "" {
				if firstChunkTime.IsZero() {
					firstChunkTime = time.Now()
				}
				chunkCount++
				select {
				case contentChan <- delta:
				case <-ctx.Done():
					slog.Warn("llm stream context cancelled during send", "chunks", chunkCount)
					errChan <- ctx.Err()
					return
				}
			}

			if choice.FinishReason != "" && choice.FinishReason != openai.FinishReasonNull {
				finish()
				return
			}
		}
	}()

	return contentChan, resultChan, errChan
}

func (s *service) Warmup(ctx context.Context) {
	warmupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	slog.Info("llm: starting connection warmup", "provider", s.provider, "model", s.model)
	startTime := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   1,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Hi"},
		},
	}
	_, err := s.client.CreateChatCompletion(warmupCtx, req)
	duration := time.Since(startTime)

	if err != nil {
		slog.Warn("llm: warmup ping failed (service will still work, first request may be slower)",
			"provider", s.provider,
			"error", err,
			"duration_ms", duration.Milliseconds(),
		)
		return
	}
	slog.Info("llm: connection warmed up", "provider", s.provider, "duration_ms", duration.Milliseconds())
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		cm := openai.ChatCompletionMessage{Content: m.Content}
		switch m.Role {
		case "system":
			cm.Role = openai.ChatMessageRoleSystem
		case "assistant":
			cm.Role = openai.ChatMessageRoleAssistant
			for _, tc := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolType(tc.Type),
					Function: openai.FunctionCall{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				})
			}
		case "tool":
			cm.Role = openai.ChatMessageRoleTool
			cm.ToolCallID = m.ToolCallID
		default:
			cm.Role = openai.ChatMessageRoleUser
		}
		out[i] = cm
	}
	return out
}

// newHTTPClient tunes the transport for long-lived streaming connections.
// There is no client-level timeout; every request carries a context
// deadline instead, so a slow stream is not cut off mid-body.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// Helper for creating system prompts.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// Helper for creating user messages.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// Helper for creating assistant messages.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// ToolResultMessage builds the tool-result turn for a completed call.
func ToolResultMessage(callID, content string) Message {
	return Message{Role: "tool", ToolCallID: callID, Content: content}
}
