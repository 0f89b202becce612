package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/finance"
)

const defaultChatTitle = "New Chat"

// titleRuneLimit bounds the title derived from the first user message.
const titleRuneLimit = 50

// Store provides access to all persisted objects. It is the single writer
// for chats: every chat mutation is a load-mutate-save cycle under a
// per-chat mutex, so individual operations never clobber each other.
// Whole turns are not transactional; two concurrent turns on one chat
// resolve last-writer-wins at the message level.
type Store struct {
	driver Driver

	mu        sync.Mutex
	chatLocks map[string]*sync.Mutex
}

// New creates a new instance of Store.
func New(driver Driver) *Store {
	return &Store{
		driver:    driver,
		chatLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) chatLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.chatLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.chatLocks[id] = l
	}
	return l
}

// CreateChat persists a new empty chat with a placeholder title.
func (s *Store) CreateChat(ctx context.Context) (*Chat, error) {
	now := time.Now().UTC()
	chat := &Chat{
		ID:        uuid.NewString(),
		Title:     defaultChatTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.driver.SaveChat(ctx, chat); err != nil {
		return nil, errors.Wrap(err, "save chat")
	}
	return chat, nil
}

// ListChats returns all chats, most recently updated first.
func (s *Store) ListChats(ctx context.Context) ([]*Chat, error) {
	chats, err := s.driver.ListChats(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list chats")
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].UpdatedAt.After(chats[j].UpdatedAt)
	})
	return chats, nil
}

func (s *Store) GetChat(ctx context.Context, id string) (*Chat, error) {
	return s.driver.GetChat(ctx, id)
}

// DeleteChat removes a chat. Deleting an unknown id is a no-op.
func (s *Store) DeleteChat(ctx context.Context, id string) error {
	l := s.chatLock(id)
	l.Lock()
	defer l.Unlock()

	if err := s.driver.DeleteChat(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return errors.Wrap(err, "delete chat")
	}
	return nil
}

// AppendUserMessage appends a user turn and persists it. The first user
// message also fixes the chat title, truncated to 50 runes.
func (s *Store) AppendUserMessage(ctx context.Context, chatID, content, imageData string) (*Chat, error) {
	return s.mutateChat(ctx, chatID, func(chat *Chat) error {
		if chat.Title == defaultChatTitle && len(chat.Messages) == 0 {
			chat.Title = deriveTitle(content)
		}
		chat.Messages = append(chat.Messages, Message{
			Role:      RoleUser,
			Content:   content,
			ImageData: imageData,
			Timestamp: time.Now().UTC(),
		})
		return nil
	})
}

// AppendAssistantMessage appends a completed assistant turn.
func (s *Store) AppendAssistantMessage(ctx context.Context, chatID, content string) (*Chat, error) {
	return s.mutateChat(ctx, chatID, func(chat *Chat) error {
		chat.Messages = append(chat.Messages, Message{
			Role:      RoleAssistant,
			Content:   content,
			Timestamp: time.Now().UTC(),
		})
		return nil
	})
}

// BranchLastAssistant records content as a regenerated variant of the final
// assistant message and makes it active. A chat that does not end with an
// assistant message gets a plain appended message instead.
func (s *Store) BranchLastAssistant(ctx context.Context, chatID, content string) (*Chat, error) {
	return s.mutateChat(ctx, chatID, func(chat *Chat) error {
		if n := len(chat.Messages); n > 0 && chat.Messages[n-1].Role == RoleAssistant {
			chat.Messages[n-1].Branch(content)
			return nil
		}
		chat.Messages = append(chat.Messages, Message{
			Role:      RoleAssistant,
			Content:   content,
			Timestamp: time.Now().UTC(),
		})
		return nil
	})
}

// SwitchAlternative activates an existing alternative on the assistant
// message at msgIndex and returns the now-active content.
func (s *Store) SwitchAlternative(ctx context.Context, chatID string, msgIndex, altIndex int) (string, error) {
	var content string
	_, err := s.mutateChat(ctx, chatID, func(chat *Chat) error {
		m, err := assistantAt(chat, msgIndex)
		if err != nil {
			return err
		}
		if err := m.Switch(altIndex); err != nil {
			return err
		}
		content = m.Text()
		return nil
	})
	return content, err
}

// mutateChat runs a load-mutate-save cycle under the chat's mutex.
func (s *Store) mutateChat(ctx context.Context, chatID string, fn func(*Chat) error) (*Chat, error) {
	l := s.chatLock(chatID)
	l.Lock()
	defer l.Unlock()

	chat, err := s.driver.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if err := fn(chat); err != nil {
		return nil, err
	}
	chat.UpdatedAt = time.Now().UTC()
	if err := s.driver.SaveChat(ctx, chat); err != nil {
		return nil, errors.Wrap(err, "save chat")
	}
	return chat, nil
}

func assistantAt(chat *Chat, msgIndex int) (*Message, error) {
	if msgIndex < 0 || msgIndex >= len(chat.Messages) {
		return nil, ErrInvalidMessageIndex
	}
	m := &chat.Messages[msgIndex]
	if m.Role != RoleAssistant {
		return nil, ErrInvalidMessageIndex
	}
	return m, nil
}

func deriveTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleRuneLimit {
		return content
	}
	return string(runes[:titleRuneLimit]) + "..."
}

// AddMemory prepends a new memory record so the collection stays
// newest-first, and returns the stored record.
func (s *Store) AddMemory(ctx context.Context, content string, category MemoryCategory) (*MemoryRecord, error) {
	memories, err := s.driver.ListMemories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list memories")
	}
	record := &MemoryRecord{
		ID:        shortuuid.New(),
		Content:   content,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	memories = append([]*MemoryRecord{record}, memories...)
	if err := s.driver.SaveMemories(ctx, memories); err != nil {
		return nil, errors.Wrap(err, "save memories")
	}
	return record, nil
}

func (s *Store) ListMemories(ctx context.Context) ([]*MemoryRecord, error) {
	return s.driver.ListMemories(ctx)
}

// GetContext returns the ambient context record, or an empty record when
// none has been set yet.
func (s *Store) GetContext(ctx context.Context) (*ContextRecord, error) {
	record, err := s.driver.GetContext(ctx)
	if errors.Is(err, ErrNotFound) {
		return &ContextRecord{}, nil
	}
	return record, err
}

func (s *Store) SetContext(ctx context.Context, record *ContextRecord) error {
	return s.driver.SaveContext(ctx, record)
}

// FinancialProfile loads the read-only profile for a person by display name.
func (s *Store) FinancialProfile(ctx context.Context, name string) (*finance.Profile, error) {
	return s.driver.GetFinancialProfile(ctx, name)
}

// AvailableProfiles lists the display names of all stored profiles.
func (s *Store) AvailableProfiles(ctx context.Context) ([]string, error) {
	return s.driver.ListFinancialProfiles(ctx)
}
