package store

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Switch validation errors, mapped to 400 by the API layer.
var (
	ErrInvalidMessageIndex = errors.New("invalid message index")
	ErrNoAlternatives      = errors.New("message has no alternatives")
	ErrInvalidAlternative  = errors.New("invalid alternative index")
)

// Chat is one conversation thread. The title is derived from the first user
// message and immutable afterwards.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single turn. For a regenerated assistant message the stored
// truth is Alternatives plus ActiveIndex and the content is derived; a plain
// message carries only Content. The invariant 0 <= ActiveIndex <
// len(Alternatives) holds by construction for any branched message.
type Message struct {
	Role         Role
	Content      string
	ImageData    string
	Alternatives []string
	ActiveIndex  int
	Timestamp    time.Time
}

// Branched reports whether the message carries regeneration alternatives.
func (m *Message) Branched() bool {
	return len(m.Alternatives) > 0
}

// Text returns the visible content: the active alternative for a branched
// message, Content otherwise.
func (m *Message) Text() string {
	if m.Branched() {
		return m.Alternatives[m.ActiveIndex]
	}
	return m.Content
}

// Branch records a regenerated variant. The first branch lazily seeds the
// alternatives with the existing content; the new variant becomes active.
func (m *Message) Branch(content string) {
	if !m.Branched() {
		m.Alternatives = []string{m.Content}
	}
	m.Alternatives = append(m.Alternatives, content)
	m.ActiveIndex = len(m.Alternatives) - 1
}

// Switch activates an existing alternative.
func (m *Message) Switch(index int) error {
	if !m.Branched() {
		return ErrNoAlternatives
	}
	if index < 0 || index >= len(m.Alternatives) {
		return ErrInvalidAlternative
	}
	m.ActiveIndex = index
	return nil
}

type messageJSON struct {
	Role         Role      `json:"role"`
	Content      string    `json:"content"`
	ImageData    string    `json:"imageData,omitempty"`
	Alternatives []string  `json:"alternatives,omitempty"`
	ActiveIndex  *int      `json:"activeIndex,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// MarshalJSON always emits content so clients never need to resolve the
// active alternative themselves.
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		Role:      m.Role,
		Content:   m.Text(),
		ImageData: m.ImageData,
		Timestamp: m.Timestamp,
	}
	if m.Branched() {
		out.Alternatives = m.Alternatives
		idx := m.ActiveIndex
		out.ActiveIndex = &idx
	}
	return json.Marshal(out)
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	m.Role = in.Role
	m.ImageData = in.ImageData
	m.Timestamp = in.Timestamp
	m.Alternatives = in.Alternatives
	m.ActiveIndex = 0
	if in.ActiveIndex != nil {
		m.ActiveIndex = *in.ActiveIndex
	}
	if m.Branched() {
		// Documents written before branching was introduced may carry a
		// stale activeIndex; clamp rather than fail the whole chat load.
		if m.ActiveIndex < 0 || m.ActiveIndex >= len(m.Alternatives) {
			m.ActiveIndex = len(m.Alternatives) - 1
		}
		m.Content = m.Alternatives[m.ActiveIndex]
	} else {
		m.Content = in.Content
	}
	return nil
}
