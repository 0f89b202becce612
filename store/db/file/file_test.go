package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/grambharat/gramsathi/finance"
	"github.com/grambharat/gramsathi/internal/profile"
	"github.com/grambharat/gramsathi/store"
)

func newTestDB(t *testing.T) (store.Driver, string) {
	t.Helper()
	dataDir := t.TempDir()
	driver, err := NewDB(&profile.Profile{Data: dataDir})
	require.NoError(t, err)
	return driver, dataDir
}

func TestNewDBCreatesLayout(t *testing.T) {
	_, dataDir := newTestDB(t)

	for _, dir := range []string{"chats", "financial-profiles"} {
		info, err := os.Stat(filepath.Join(dataDir, dir))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}

func TestNewDBRequiresDataDir(t *testing.T) {
	_, err := NewDB(&profile.Profile{})
	require.Error(t, err)
}

func TestChatDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, dataDir := newTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	chat := &store.Chat{
		ID:    "abc-123",
		Title: "Loan question",
		Messages: []store.Message{
			{Role: store.RoleUser, Content: "can I get a loan?", Timestamp: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.SaveChat(ctx, chat))

	// The document on disk is well-formed JSON, never a partial write.
	data, err := os.ReadFile(filepath.Join(dataDir, "chats", "abc-123.json"))
	require.NoError(t, err)
	require.True(t, json.Valid(data))

	got, err := db.GetChat(ctx, "abc-123")
	require.NoError(t, err)
	require.Equal(t, chat.Title, got.Title)
	require.Len(t, got.Messages, 1)
	require.Equal(t, "can I get a loan?", got.Messages[0].Text())
}

func TestGetChatNotFound(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	_, err := db.GetChat(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	// Path traversal attempts resolve to not found, never to a file read.
	_, err = db.GetChat(ctx, "../context")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteChat(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	require.NoError(t, db.SaveChat(ctx, &store.Chat{ID: "gone"}))
	require.NoError(t, db.DeleteChat(ctx, "gone"))
	require.ErrorIs(t, db.DeleteChat(ctx, "gone"), store.ErrNotFound)
}

func TestListChatsSkipsForeignFiles(t *testing.T) {
	ctx := context.Background()
	db, dataDir := newTestDB(t)

	require.NoError(t, db.SaveChat(ctx, &store.Chat{ID: "one"}))
	require.NoError(t, db.SaveChat(ctx, &store.Chat{ID: "two"}))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "chats", "notes.txt"), []byte("x"), 0o644))

	chats, err := db.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 2)
}

func TestMemoriesMissingFile(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	memories, err := db.ListMemories(ctx)
	require.NoError(t, err)
	require.NotNil(t, memories)
	require.Empty(t, memories)
}

func TestContextNotSet(t *testing.T) {
	ctx := context.Background()
	db, _ := newTestDB(t)

	_, err := db.GetContext(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestFinancialProfileNameNormalization(t *testing.T) {
	ctx := context.Background()
	db, dataDir := newTestDB(t)

	p := &finance.Profile{PersonalInfo: finance.PersonalInfo{Name: "Ram Vilas"}}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "financial-profiles", "ram-vilas.json"), data, 0o644))

	got, err := db.GetFinancialProfile(ctx, "RAM  vilas")
	require.NoError(t, err)
	require.Equal(t, "Ram Vilas", got.PersonalInfo.Name)
}

func TestListFinancialProfilesSorted(t *testing.T) {
	ctx := context.Background()
	db, dataDir := newTestDB(t)

	for _, name := range []string{"Sita Devi", "Ram Vilas", "Lakshmi Bai"} {
		p := &finance.Profile{PersonalInfo: finance.PersonalInfo{Name: name}}
		data, err := json.Marshal(p)
		require.NoError(t, err)
		key := store.NormalizeProfileName(name)
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, "financial-profiles", key+".json"), data, 0o644))
	}

	names, err := db.ListFinancialProfiles(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Lakshmi Bai", "Ram Vilas", "Sita Devi"}, names)
}
