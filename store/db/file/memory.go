package file

import (
	"context"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/store"
)

func (d *DB) ListMemories(_ context.Context) ([]*store.MemoryRecord, error) {
	var memories []*store.MemoryRecord
	if err := readDocument(d.memoriesPath(), &memories); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return []*store.MemoryRecord{}, nil
		}
		return nil, err
	}
	return memories, nil
}

func (d *DB) SaveMemories(_ context.Context, memories []*store.MemoryRecord) error {
	return writeDocument(d.memoriesPath(), memories)
}
