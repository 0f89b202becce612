package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/ai/prompt"
	"github.com/grambharat/gramsathi/ai/tools"
	"github.com/grambharat/gramsathi/store"
)

// Fixed texts streamed and persisted when the model cannot answer. They are
// part of the wire contract with the clients.
const (
	apologyText  = "I'm having trouble connecting to the AI model. Please make sure Ollama is running with the configured model."
	fallbackText = "I apologize, but I couldn't generate a response."
)

type turnKind string

const (
	turnKindSend       turnKind = "send"
	turnKindRegenerate turnKind = "regenerate"
)

type turnRequest struct {
	Message     string `json:"message"`
	Model       string `json:"model"`
	Personality string `json:"personality"`
	ImageData   string `json:"imageData"`
}

// sseStream writes data-only server-sent events. Write errors mean the
// client is gone; the turn carries on regardless, so they are dropped.
type sseStream struct {
	resp *echo.Response
}

func newSSEStream(c echo.Context) *sseStream {
	resp := c.Response()
	h := resp.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	return &sseStream{resp: resp}
}

func (s *sseStream) send(payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.resp, "data: %s\n\n", data); err != nil {
		return
	}
	s.resp.Flush()
}

func (s *sseStream) token(t string) {
	s.send(map[string]any{"token": t})
}

func (s *sseStream) done() {
	s.send(map[string]any{"done": true})
}

// SendMessage appends the user message and streams the assistant response.
// The user message is durably persisted before any inference happens, so a
// failed turn never loses user input.
func (s *APIV1Service) SendMessage(c echo.Context) error {
	chatID := c.Param("chatId")
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	chat, err := s.Store.AppendUserMessage(c.Request().Context(), chatID, req.Message, req.ImageData)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("Chat not found"))
		}
		slog.Error("failed to append user message", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to process message"))
	}

	history := chat.Messages[:len(chat.Messages)-1]
	return s.streamTurn(c, chatID, &req, history, req.Message, turnKindSend)
}

// Regenerate replays the last user turn and records the new response as an
// alternative on the final assistant message.
func (s *APIV1Service) Regenerate(c echo.Context) error {
	chatID := c.Param("chatId")
	var req turnRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Invalid request body"))
	}

	chat, err := s.Store.GetChat(c.Request().Context(), chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, errorBody("Chat not found"))
		}
		slog.Error("failed to load chat", "chat_id", chatID, "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody("Failed to regenerate response"))
	}

	// Drop the assistant response being regenerated; the final user turn
	// becomes the current message again.
	msgs := chat.Messages
	if n := len(msgs); n > 0 {
		msgs = msgs[:n-1]
	}
	var history []store.Message
	var userContent string
	if n := len(msgs); n > 0 && msgs[n-1].Role == store.RoleUser {
		userContent = msgs[n-1].Text()
		history = msgs[:n-1]
	} else {
		history = msgs
	}

	return s.streamTurn(c, chatID, &req, history, userContent, turnKindRegenerate)
}

// streamTurn drives one completion turn over SSE: optional tool round trip,
// token relay, and persistence of exactly one assistant message.
func (s *APIV1Service) streamTurn(c echo.Context, chatID string, req *turnRequest, history []store.Message, userContent string, kind turnKind) error {
	// The turn must not die with the connection: inference continues and
	// the assistant message is persisted even when the client disconnects.
	ctx := context.WithoutCancel(c.Request().Context())

	sse := newSSEStream(c)

	if err := s.turnSemaphore.Acquire(ctx, 1); err != nil {
		sse.send(map[string]any{"error": "Server busy"})
		sse.done()
		return nil
	}
	defer s.turnSemaphore.Release(1)

	s.Metrics.TurnStarted()
	defer s.Metrics.TurnFinished()
	start := time.Now()

	model := req.Model
	if model == "" {
		model = s.Profile.LLMModel
	}

	persist := func(content string) {
		var err error
		if kind == turnKindRegenerate {
			_, err = s.Store.BranchLastAssistant(ctx, chatID, content)
		} else {
			_, err = s.Store.AppendAssistantMessage(ctx, chatID, content)
		}
		if err != nil {
			slog.Error("failed to persist assistant message", "chat_id", chatID, "error", err)
			sse.send(map[string]any{"error": "Failed to save response"})
		}
	}

	fail := func(phase string) error {
		s.Metrics.RecordLLMError(model, phase)
		sse.token(apologyText)
		persist(apologyText)
		sse.done()
		s.Metrics.RecordTurn(string(kind), time.Since(start), false)
		return nil
	}

	ctxRec, err := s.Store.GetContext(ctx)
	if err != nil {
		slog.Warn("failed to load context, continuing without", "error", err)
		ctxRec = &store.ContextRecord{}
	}
	memories, err := s.Store.ListMemories(ctx)
	if err != nil {
		slog.Warn("failed to load memories, continuing without", "error", err)
		memories = nil
	}

	messages := prompt.Build(req.Personality, ctxRec, memories, history, userContent)

	streamReq := &llm.StreamRequest{Model: model, Messages: messages}
	if kind == turnKindSend {
		streamReq.Tools = s.Dispatcher.Descriptors()
	}

	slog.Info("starting chat turn",
		"chat_id", chatID,
		"kind", kind,
		"model", model,
		"history", len(history),
	)

	result, ok := s.relay(ctx, sse, streamReq)
	if !ok {
		return fail("initial")
	}
	s.recordStats(model, result.Stats)

	final := result.Content

	if toolCall, toolResult := s.executeFirstTool(ctx, sse, result.ToolCalls); toolResult != nil {
		sse.send(map[string]any{"status": toolResult.Status, "toolCalling": true})
		if toolResult.MemorySaved {
			sse.send(map[string]any{"status": "Saved to memory.", "memorySaved": true})
		}
		doneStatus := "Generating response..."
		if tools.Kind(toolCall.Function.Name) == tools.KindLoanEligibility {
			doneStatus = "Calculation complete. Generating response..."
		}
		sse.send(map[string]any{"status": doneStatus, "toolCalling": true})

		// Second round trip carries the tool result back; tool calls the
		// model emits here are ignored, one round trip per turn.
		followUp := make([]llm.Message, 0, len(messages)+2)
		followUp = append(followUp, messages...)
		followUp = append(followUp,
			llm.Message{Role: "assistant", Content: result.Content, ToolCalls: []llm.ToolCall{*toolCall}},
			llm.ToolResultMessage(toolCall.ID, toolResult.Payload),
		)

		finalResult, ok := s.relay(ctx, sse, &llm.StreamRequest{Model: model, Messages: followUp})
		if !ok {
			return fail("final")
		}
		s.recordStats(model, finalResult.Stats)

		final = finalResult.Content
		if final == "" {
			final = toolFallbackText(tools.Kind(toolCall.Function.Name))
		}
	}

	if final == "" {
		final = fallbackText
	}
	persist(final)
	sse.done()

	s.Metrics.RecordTurn(string(kind), time.Since(start), true)
	slog.Info("chat turn completed", "chat_id", chatID, "kind", kind, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// executeFirstTool dispatches the first supported tool call. Unknown tool
// names are rejected with an in-band error event and skipped; a supported
// tool that fails hard becomes an in-band failure payload for the model to
// explain.
func (s *APIV1Service) executeFirstTool(ctx context.Context, sse *sseStream, calls []llm.ToolCall) (*llm.ToolCall, *tools.Result) {
	for i := range calls {
		call := &calls[i]
		result, err := s.Dispatcher.Dispatch(ctx, *call)
		if errors.Is(err, tools.ErrUnknownTool) {
			slog.Warn("rejected unknown tool call", "tool", call.Function.Name)
			sse.send(map[string]any{"error": "Unsupported tool requested: " + call.Function.Name})
			continue
		}
		if err != nil {
			s.Metrics.RecordToolCall(call.Function.Name, false)
			slog.Error("tool execution failed", "tool", call.Function.Name, "error", err)
			result = &tools.Result{
				Payload: `{"success": false, "error": "The tool failed unexpectedly."}`,
				Status:  "Tool failed. Generating response...",
			}
		} else {
			s.Metrics.RecordToolCall(call.Function.Name, true)
		}
		return call, result
	}
	return nil, nil
}

// relay forwards tokens to the client as they arrive and returns the
// terminal result. ok is false when the upstream failed at any point.
func (s *APIV1Service) relay(ctx context.Context, sse *sseStream, req *llm.StreamRequest) (*llm.StreamResult, bool) {
	contentChan, resultChan, errChan := s.LLM.Stream(ctx, req)
	for token := range contentChan {
		sse.token(token)
	}
	result, ok := <-resultChan
	if !ok {
		if err := <-errChan; err != nil {
			slog.Error("llm stream failed", "error", err)
		}
		return nil, false
	}
	return result, true
}

func (s *APIV1Service) recordStats(model string, stats *llm.CallStats) {
	if stats == nil {
		return
	}
	s.Metrics.RecordLLMTokens(model, stats.PromptTokens, stats.CompletionTokens)
}

func toolFallbackText(kind tools.Kind) string {
	if kind == tools.KindSaveMemory {
		return "I've saved that to memory."
	}
	return "I've checked the loan eligibility."
}
