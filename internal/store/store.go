package store

import (
	"context"
	"net/http"
	"time"

	"github.com/me/bizdir/pkg/model"
)

// Store defines the client-side persistence layer: backend cookies, the
// last search of each owner, and web visitors. An owner is a CLI profile
// name or a web visitor ID.
type Store interface {
	// Backend cookies
	SaveCookies(ctx context.Context, owner string, cookies []*http.Cookie) error
	LoadCookies(ctx context.Context, owner string) ([]*http.Cookie, error)
	DeleteCookies(ctx context.Context, owner string) error

	// Search snapshots
	SaveSnapshot(ctx context.Context, owner string, snap model.SearchSnapshot) error
	LoadSnapshot(ctx context.Context, owner string) (*model.SearchSnapshot, error)
	ClearSnapshot(ctx context.Context, owner string) error

	// Web visitors
	CreateVisitor(ctx context.Context) (*model.Visitor, error)
	GetVisitor(ctx context.Context, id string) (*model.Visitor, error)
	TouchVisitor(ctx context.Context, id string) error
	DeleteExpiredVisitors(ctx context.Context, ttl time.Duration) (int64, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error
}
