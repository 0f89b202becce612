// Package file implements the persistence driver on top of plain JSON
// documents: one file per chat plus singleton documents for memories and
// context. Every write replaces the whole document through a temp file and
// rename, so a crash never leaves a half-written record behind.
package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/internal/profile"
	"github.com/grambharat/gramsathi/store"
)

const (
	chatsDirName     = "chats"
	profilesDirName  = "financial-profiles"
	memoriesFileName = "memories.json"
	contextFileName  = "context.json"
)

type DB struct {
	root string
}

// NewDB prepares the data directory layout under the profile's data root.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.Data == "" {
		return nil, errors.New("data directory required")
	}
	db := &DB{root: profile.Data}
	for _, dir := range []string{db.root, db.chatsDir(), db.profilesDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create %s", dir)
		}
	}
	return db, nil
}

func (d *DB) Close() error {
	return nil
}

func (d *DB) chatsDir() string {
	return filepath.Join(d.root, chatsDirName)
}

func (d *DB) profilesDir() string {
	return filepath.Join(d.root, profilesDirName)
}

func (d *DB) memoriesPath() string {
	return filepath.Join(d.root, memoriesFileName)
}

func (d *DB) contextPath() string {
	return filepath.Join(d.root, contextFileName)
}

// validName rejects identifiers that could escape the data directory.
func validName(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

// writeDocument atomically replaces path with the JSON encoding of v.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal document")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}

// readDocument loads path into v, mapping a missing file to ErrNotFound.
func readDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound
		}
		return errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}
