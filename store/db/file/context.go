package file

import (
	"context"

	"github.com/grambharat/gramsathi/store"
)

func (d *DB) GetContext(_ context.Context) (*store.ContextRecord, error) {
	record := &store.ContextRecord{}
	if err := readDocument(d.contextPath(), record); err != nil {
		return nil, err
	}
	return record, nil
}

func (d *DB) SaveContext(_ context.Context, record *store.ContextRecord) error {
	return writeDocument(d.contextPath(), record)
}
