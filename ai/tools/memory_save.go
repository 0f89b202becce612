package tools

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/store"
)

// MemorySaveTool lets the model persist a fact about the user for future
// conversations.
type MemorySaveTool struct {
	store *store.Store
}

type memorySaveArgs struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (t *MemorySaveTool) Descriptor() llm.ToolDescriptor {
	return llm.ToolDescriptor{
		Name: string(KindSaveMemory),
		Description: "Save an important fact about the user for future conversations, such as their name, " +
			"village, crops, family details, or preferences. Use this when the user shares lasting personal " +
			"information, not for one-off questions.",
		Parameters: `{
			"type": "object",
			"properties": {
				"content": {
					"type": "string",
					"description": "The fact to remember, phrased as a short statement about the user"
				},
				"category": {
					"type": "string",
					"enum": ["personal", "agricultural", "financial", "family", "preferences", "other"],
					"description": "The kind of fact being saved"
				}
			},
			"required": ["content"]
		}`,
	}
}

func (t *MemorySaveTool) Run(ctx context.Context, arguments string) (*Result, error) {
	var args memorySaveArgs
	if err := json.Unmarshal([]byte(arguments), &args); err != nil || strings.TrimSpace(args.Content) == "" {
		slog.Warn("memory tool: bad arguments", "arguments", arguments)
		return failure("A non-empty content field is required."), nil
	}

	record, err := t.store.AddMemory(ctx, strings.TrimSpace(args.Content), store.NormalizeMemoryCategory(args.Category))
	if err != nil {
		return nil, errors.Wrap(err, "save memory")
	}
	slog.Info("memory tool: saved", "id", record.ID, "category", record.Category)

	payload, _ := json.Marshal(map[string]any{
		"success": true,
		"id":      record.ID,
	})
	return &Result{
		Payload:     string(payload),
		Status:      "Saving to memory...",
		MemorySaved: true,
	}, nil
}
