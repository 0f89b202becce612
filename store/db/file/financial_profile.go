package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/finance"
	"github.com/grambharat/gramsathi/store"
)

func (d *DB) GetFinancialProfile(_ context.Context, name string) (*finance.Profile, error) {
	key := store.NormalizeProfileName(name)
	if !validName(key) {
		return nil, store.ErrNotFound
	}
	p := &finance.Profile{}
	if err := readDocument(filepath.Join(d.profilesDir(), key+".json"), p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListFinancialProfiles returns the display names of all stored profiles,
// read from each document's personalInfo, in stable order.
func (d *DB) ListFinancialProfiles(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.profilesDir())
	if err != nil {
		return nil, errors.Wrap(err, "read profiles directory")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		p := &finance.Profile{}
		if err := readDocument(filepath.Join(d.profilesDir(), entry.Name()), p); err != nil {
			continue
		}
		if p.PersonalInfo.Name != "" {
			names = append(names, p.PersonalInfo.Name)
		}
	}
	sort.Strings(names)
	return names, nil
}
