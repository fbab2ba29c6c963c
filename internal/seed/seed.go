// Package seed loads the initial activity catalog into an empty store.
package seed

import (
	"context"
	"fmt"

	"example.com/extracurricular/internal/domain"
)

// Store is the subset of the activity repository needed for seeding.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, activity domain.Activity) error
}

// EnsureSeeded inserts catalog when the store holds no activities and returns
// the number inserted. A store with any document is left untouched, even if it
// diverges from catalog.
func EnsureSeeded(ctx context.Context, store Store, catalog []domain.Activity) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, activity := range catalog {
		if err := store.Insert(ctx, activity); err != nil {
			return i, fmt.Errorf("insert %q: %w", activity.Name, err)
		}
	}
	return len(catalog), nil
}
