package llm

import (
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestToolCallAccumulatorRebuildsFragments(t *testing.T) {
	acc := newToolCallAccumulator()

	// Providers stream the call id and name first, then the arguments in
	// pieces, all under the same index.
	acc.add(openai.ToolCall{
		Index:    intPtr(0),
		ID:       "call-1",
		Type:     openai.ToolTypeFunction,
		Function: openai.FunctionCall{Name: "check_loan_eligibility"},
	})
	acc.add(openai.ToolCall{
		Index:    intPtr(0),
		Function: openai.FunctionCall{Arguments: `{"person_name": "Sita`},
	})
	acc.add(openai.ToolCall{
		Index:    intPtr(0),
		Function: openai.FunctionCall{Arguments: ` Devi"}`},
	})

	calls := acc.result()
	require.Len(t, calls, 1)
	require.Equal(t, "call-1", calls[0].ID)
	require.Equal(t, "function", calls[0].Type)
	require.Equal(t, "check_loan_eligibility", calls[0].Function.Name)
	require.Equal(t, `{"person_name": "Sita Devi"}`, calls[0].Function.Arguments)
}

func TestToolCallAccumulatorPreservesOrder(t *testing.T) {
	acc := newToolCallAccumulator()
	acc.add(openai.ToolCall{Index: intPtr(1), ID: "second", Function: openai.FunctionCall{Name: "b"}})
	acc.add(openai.ToolCall{Index: intPtr(0), ID: "first", Function: openai.FunctionCall{Name: "a"}})

	calls := acc.result()
	require.Len(t, calls, 2)
	require.Equal(t, "second", calls[0].ID)
	require.Equal(t, "first", calls[1].ID)
}

func TestToolCallAccumulatorNilIndex(t *testing.T) {
	acc := newToolCallAccumulator()
	acc.add(openai.ToolCall{ID: "only", Function: openai.FunctionCall{Name: "x"}})
	acc.add(openai.ToolCall{Function: openai.FunctionCall{Arguments: "{}"}})

	calls := acc.result()
	require.Len(t, calls, 1)
	require.Equal(t, "only", calls[0].ID)
	require.Equal(t, "{}", calls[0].Function.Arguments)
}

func TestConvertMessages(t *testing.T) {
	messages := []Message{
		SystemPrompt("be helpful"),
		UserMessage("hello"),
		{
			Role:    "assistant",
			Content: "",
			ToolCalls: []ToolCall{{
				ID:       "call-1",
				Type:     "function",
				Function: FunctionCall{Name: "save_to_memory", Arguments: "{}"},
			}},
		},
		ToolResultMessage("call-1", `{"success": true}`),
	}

	out := convertMessages(messages)
	require.Len(t, out, 4)

	require.Equal(t, openai.ChatMessageRoleSystem, out[0].Role)
	require.Equal(t, openai.ChatMessageRoleUser, out[1].Role)

	require.Equal(t, openai.ChatMessageRoleAssistant, out[2].Role)
	require.Len(t, out[2].ToolCalls, 1)
	require.Equal(t, "call-1", out[2].ToolCalls[0].ID)
	require.Equal(t, "save_to_memory", out[2].ToolCalls[0].Function.Name)

	require.Equal(t, openai.ChatMessageRoleTool, out[3].Role)
	require.Equal(t, "call-1", out[3].ToolCallID)
	require.Equal(t, `{"success": true}`, out[3].Content)
}

func TestConvertMessagesUnknownRoleBecomesUser(t *testing.T) {
	out := convertMessages([]Message{{Role: "narrator", Content: "x"}})
	require.Equal(t, openai.ChatMessageRoleUser, out[0].Role)
}

func TestNewServiceDefaults(t *testing.T) {
	svc, err := NewService(&Config{Provider: "ollama", Model: "llama3.1"})
	require.NoError(t, err)

	impl, ok := svc.(*service)
	require.True(t, ok)
	require.Equal(t, 2048, impl.maxTokens)
	require.InDelta(t, 0.7, impl.temperature, 0.001)
	require.Equal(t, 300, impl.timeout)
}
