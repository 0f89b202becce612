package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/grambharat/gramsathi/finance"
)

// ErrNotFound is returned by drivers when the requested record does not
// exist. Callers map it to 404 or an in-band failure payload.
var ErrNotFound = errors.New("not found")

// Driver is the persistence backend. Implementations write whole documents;
// all read-modify-write coordination happens in Store.
type Driver interface {
	GetChat(ctx context.Context, id string) (*Chat, error)
	ListChats(ctx context.Context) ([]*Chat, error)
	SaveChat(ctx context.Context, chat *Chat) error
	DeleteChat(ctx context.Context, id string) error

	ListMemories(ctx context.Context) ([]*MemoryRecord, error)
	SaveMemories(ctx context.Context, memories []*MemoryRecord) error

	GetContext(ctx context.Context) (*ContextRecord, error)
	SaveContext(ctx context.Context, record *ContextRecord) error

	GetFinancialProfile(ctx context.Context, name string) (*finance.Profile, error)
	ListFinancialProfiles(ctx context.Context) ([]string, error)

	Close() error
}
