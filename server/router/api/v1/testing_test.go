package v1

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/ai/metrics"
	"github.com/grambharat/gramsathi/internal/profile"
	"github.com/grambharat/gramsathi/store"
	"github.com/grambharat/gramsathi/store/db/file"
)

// scriptedStream is one canned upstream completion: tokens followed by
// either a terminal result or an error.
type scriptedStream struct {
	tokens []string
	result *llm.StreamResult
	err    error
}

// scriptedLLM replays canned streams in order and records every request it
// receives.
type scriptedLLM struct {
	mu       sync.Mutex
	streams  []scriptedStream
	requests []*llm.StreamRequest
}

func (s *scriptedLLM) Stream(_ context.Context, req *llm.StreamRequest) (<-chan string, <-chan *llm.StreamResult, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	script := scriptedStream{err: errors.New("no scripted stream left")}
	if len(s.streams) > 0 {
		script = s.streams[0]
		s.streams = s.streams[1:]
	}

	contentChan := make(chan string, len(script.tokens))
	resultChan := make(chan *llm.StreamResult, 1)
	errChan := make(chan error, 1)
	for _, token := range script.tokens {
		contentChan <- token
	}
	close(contentChan)
	if script.err != nil {
		errChan <- script.err
	} else {
		result := script.result
		if result == nil {
			result = &llm.StreamResult{}
		}
		resultChan <- result
	}
	close(resultChan)
	close(errChan)
	return contentChan, resultChan, errChan
}

func (s *scriptedLLM) Warmup(context.Context) {}

func newTestService(t *testing.T, llmService llm.Service) (*APIV1Service, string) {
	t.Helper()
	dataDir := t.TempDir()
	driver, err := file.NewDB(&profile.Profile{Data: dataDir})
	require.NoError(t, err)
	st := store.New(driver)
	t.Cleanup(func() { _ = st.Close() })

	p := &profile.Profile{
		Mode:        "demo",
		Data:        dataDir,
		LLMProvider: "ollama",
		LLMModel:    "llama3.1",
	}
	return NewAPIV1Service(p, st, llmService, metrics.NewPrometheusExporter(metrics.Config{})), dataDir
}

// invoke runs one handler through a fresh echo context and returns the
// recorded response.
func invoke(t *testing.T, handler echo.HandlerFunc, method, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		values := make([]string, 0, len(params))
		for name, value := range params {
			names = append(names, name)
			values = append(values, value)
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	require.NoError(t, handler(c))
	return rec
}

// parseSSE decodes every data event in a server-sent event body.
func parseSSE(t *testing.T, body string) []map[string]any {
	t.Helper()
	var events []map[string]any
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		events = append(events, event)
	}
	return events
}

// collectTokens joins the token events in order.
func collectTokens(events []map[string]any) string {
	var b strings.Builder
	for _, event := range events {
		if token, ok := event["token"].(string); ok {
			b.WriteString(token)
		}
	}
	return b.String()
}

func hasDone(events []map[string]any) bool {
	for _, event := range events {
		if done, ok := event["done"].(bool); ok && done {
			return true
		}
	}
	return false
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
