// Package prompt assembles the message list sent to the model for one turn:
// an optional system message enriched with persona, ambient context, and
// remembered facts, followed by the conversation history and the user turn.
package prompt

import (
	"strings"

	"github.com/grambharat/gramsathi/ai/llm"
	"github.com/grambharat/gramsathi/store"
)

// Build assembles the messages for one completion. The system message is
// omitted entirely when persona, context, and memories are all empty, so a
// bare conversation reaches the model untouched.
func Build(personality string, ctxRec *store.ContextRecord, memories []*store.MemoryRecord, history []store.Message, userContent string) []llm.Message {
	messages := []llm.Message{}

	if system := systemContent(personality, ctxRec, memories); system != "" {
		messages = append(messages, llm.SystemPrompt(system))
	}

	for _, m := range history {
		switch m.Role {
		case store.RoleUser:
			messages = append(messages, llm.UserMessage(m.Text()))
		case store.RoleAssistant:
			messages = append(messages, llm.AssistantMessage(m.Text()))
		}
	}

	// Regeneration replays the history as-is; there is no fresh user turn.
	if userContent != "" {
		messages = append(messages, llm.UserMessage(userContent))
	}
	return messages
}

func systemContent(personality string, ctxRec *store.ContextRecord, memories []*store.MemoryRecord) string {
	var sections []string

	if p := strings.TrimSpace(personality); p != "" {
		sections = append(sections, p)
	}

	if !ctxRec.Empty() {
		var lines []string
		lines = append(lines, "Current context:")
		if ctxRec.Season != "" {
			lines = append(lines, "- Season: "+string(ctxRec.Season))
		}
		if ctxRec.Location != "" {
			lines = append(lines, "- Location: "+ctxRec.Location)
		}
		if ctxRec.CropCycle != "" {
			lines = append(lines, "- Crop cycle: "+ctxRec.CropCycle)
		}
		if ctxRec.Festival != "" {
			lines = append(lines, "- Festival: "+ctxRec.Festival)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	if len(memories) > 0 {
		var lines []string
		lines = append(lines, "Things you remember about the user:")
		for _, m := range memories {
			lines = append(lines, "- "+m.Content)
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	return strings.Join(sections, "\n\n")
}
