package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/store"
)

func (d *DB) chatPath(id string) string {
	return filepath.Join(d.chatsDir(), id+".json")
}

func (d *DB) GetChat(_ context.Context, id string) (*store.Chat, error) {
	if !validName(id) {
		return nil, store.ErrNotFound
	}
	chat := &store.Chat{}
	if err := readDocument(d.chatPath(id), chat); err != nil {
		return nil, err
	}
	return chat, nil
}

func (d *DB) ListChats(ctx context.Context) ([]*store.Chat, error) {
	entries, err := os.ReadDir(d.chatsDir())
	if err != nil {
		return nil, errors.Wrap(err, "read chats directory")
	}

	chats := make([]*store.Chat, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		chat, err := d.GetChat(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			// A file deleted between the directory scan and the read is
			// not an error for the listing.
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, nil
}

func (d *DB) SaveChat(_ context.Context, chat *store.Chat) error {
	if !validName(chat.ID) {
		return errors.Errorf("invalid chat id %q", chat.ID)
	}
	return writeDocument(d.chatPath(chat.ID), chat)
}

func (d *DB) DeleteChat(_ context.Context, id string) error {
	if !validName(id) {
		return store.ErrNotFound
	}
	if err := os.Remove(d.chatPath(id)); err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound
		}
		return errors.Wrap(err, "remove chat file")
	}
	return nil
}
