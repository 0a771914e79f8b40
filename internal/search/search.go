// Package search orders search results for display and keeps the
// last-search snapshot that the home page restores.
package search

import (
	"context"
	"log/slog"
	"slices"

	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/pkg/model"
)

// PopularTypes are the quick-pick business types offered by the search form.
var PopularTypes = []string{
	"Restaurant",
	"Cafe",
	"Hotel",
	"Gym",
	"Salon",
	"Shop",
	"Hospital",
	"School",
}

// Order returns results with claimed businesses first. The backend order
// is kept within each group. The input slice is not modified.
func Order(results []model.Business) []model.Business {
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b model.Business) int {
		switch {
		case a.Claimed == b.Claimed:
			return 0
		case a.Claimed:
			return -1
		default:
			return 1
		}
	})
	return out
}

// SnapshotStore persists one snapshot per owner (CLI profile or web visitor).
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, owner string, snap model.SearchSnapshot) error
	LoadSnapshot(ctx context.Context, owner string) (*model.SearchSnapshot, error)
	ClearSnapshot(ctx context.Context, owner string) error
}

// Searcher is the part of the business service a search needs.
type Searcher interface {
	Search(ctx context.Context, area, businessType string) ([]model.Business, error)
}

// Run performs a search, orders the results and replaces the owner's
// snapshot. A failed search stores an empty, searched snapshot so the
// page does not restore stale results. Snapshot write failures are logged
// and do not fail the search. A nil store skips persistence.
func Run(ctx context.Context, s Searcher, store SnapshotStore, owner, area, businessType string, logger *slog.Logger) ([]model.Business, error) {
	results, err := s.Search(ctx, area, businessType)
	snap := model.SearchSnapshot{Searched: true, Location: area, Type: businessType}
	if err == nil {
		results = Order(results)
		snap.Results = results
	} else {
		results = nil
	}
	if store != nil && ctx.Err() == nil {
		if serr := store.SaveSnapshot(ctx, owner, snap); serr != nil {
			logging.Component(logger, "search").Warn("save search snapshot", "owner", owner, "error", serr)
		}
	}
	return results, err
}
