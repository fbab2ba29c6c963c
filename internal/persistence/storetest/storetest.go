// Package storetest holds the behavioural contract every activity store backend must satisfy.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/extracurricular/internal/domain"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) domain.ActivityRepository

// Run executes the contract suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("EmptyStore", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		count, err := store.Count(ctx)
		require.NoError(t, err)
		require.Zero(t, count)

		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Empty(t, all)

		got, err := store.Get(ctx, "Chess Club")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("InsertAndGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		want := chessClub()

		require.NoError(t, store.Insert(ctx, want))

		got, err := store.Get(ctx, want.Name)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, want, *got)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})

	t.Run("InsertWithoutParticipants", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, domain.Activity{Name: "Robotics", Description: "Build robots", Schedule: "Mondays", MaxParticipants: 8}))

		got, err := store.Get(ctx, "Robotics")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.Participants)
		require.Empty(t, got.Participants)
	})

	t.Run("InsertDuplicateName", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		require.NoError(t, store.Insert(ctx, chessClub()))
		err := store.Insert(ctx, chessClub())
		require.ErrorIs(t, err, domain.ErrDuplicateKey)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)
	})

	t.Run("NamesSharingAPrefix", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		suffixed := domain.Activity{
			Name:            "Chess Club:participants",
			Description:     "Look-alike name",
			Schedule:        "Mondays",
			MaxParticipants: 4,
			Participants:    []string{"first@mergington.edu"},
		}

		require.NoError(t, store.Insert(ctx, suffixed))
		require.NoError(t, store.Insert(ctx, chessClub()))

		got, err := store.Get(ctx, suffixed.Name)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, suffixed, *got)

		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)

		modified, err := store.AppendParticipant(ctx, "Chess Club", "new@mergington.edu")
		require.NoError(t, err)
		require.True(t, modified)

		got, err = store.Get(ctx, suffixed.Name)
		require.NoError(t, err)
		require.Equal(t, []string{"first@mergington.edu"}, got.Participants)
	})

	t.Run("ListAll", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		names := []string{"Science Club", "Art Club", "Mathletes"}
		for _, name := range names {
			require.NoError(t, store.Insert(ctx, domain.Activity{Name: name, MaxParticipants: 10, Participants: []string{"x@mergington.edu"}}))
		}

		all, err := store.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, len(names))

		got := make([]string, 0, len(all))
		for _, activity := range all {
			got = append(got, activity.Name)
			require.Equal(t, []string{"x@mergington.edu"}, activity.Participants)
		}
		require.ElementsMatch(t, names, got)
	})

	t.Run("AppendParticipant", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, chessClub()))

		modified, err := store.AppendParticipant(ctx, "Chess Club", "new@mergington.edu")
		require.NoError(t, err)
		require.True(t, modified)

		got, err := store.Get(ctx, "Chess Club")
		require.NoError(t, err)
		require.Equal(t, []string{"michael@mergington.edu", "daniel@mergington.edu", "new@mergington.edu"}, got.Participants)
	})

	t.Run("AppendExistingParticipantIsNoop", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, chessClub()))

		modified, err := store.AppendParticipant(ctx, "Chess Club", "michael@mergington.edu")
		require.NoError(t, err)
		require.False(t, modified)

		got, err := store.Get(ctx, "Chess Club")
		require.NoError(t, err)
		require.Equal(t, chessClub().Participants, got.Participants)
	})

	t.Run("AppendToMissingActivity", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		modified, err := store.AppendParticipant(ctx, "Unknown Club", "x@y.edu")
		require.NoError(t, err)
		require.False(t, modified)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("RemoveParticipant", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, chessClub()))

		modified, err := store.RemoveParticipant(ctx, "Chess Club", "michael@mergington.edu")
		require.NoError(t, err)
		require.True(t, modified)

		got, err := store.Get(ctx, "Chess Club")
		require.NoError(t, err)
		require.Equal(t, []string{"daniel@mergington.edu"}, got.Participants)
	})

	t.Run("RemoveLastParticipant", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, domain.Activity{Name: "Mathletes", MaxParticipants: 16, Participants: []string{"ethan@mergington.edu"}}))

		modified, err := store.RemoveParticipant(ctx, "Mathletes", "ethan@mergington.edu")
		require.NoError(t, err)
		require.True(t, modified)

		got, err := store.Get(ctx, "Mathletes")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got.Participants)
	})

	t.Run("RemoveAbsentParticipantIsNoop", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, chessClub()))

		modified, err := store.RemoveParticipant(ctx, "Chess Club", "nobody@mergington.edu")
		require.NoError(t, err)
		require.False(t, modified)

		modified, err = store.RemoveParticipant(ctx, "Unknown Club", "michael@mergington.edu")
		require.NoError(t, err)
		require.False(t, modified)
	})

	t.Run("ConcurrentAppendKeepsSingleEntry", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, chessClub()))

		const workers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				modified, err := store.AppendParticipant(ctx, "Chess Club", "race@mergington.edu")
				if err != nil {
					t.Errorf("append: %v", err)
					return
				}
				if modified {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, successes)
		got, err := store.Get(ctx, "Chess Club")
		require.NoError(t, err)
		require.Equal(t, 1, occurrences(got.Participants, "race@mergington.edu"))
	})

	t.Run("ConcurrentDistinctAppends", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		require.NoError(t, store.Insert(ctx, domain.Activity{Name: "Gym Class", MaxParticipants: 30}))

		const workers = 6
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				email := fmt.Sprintf("student%d@mergington.edu", i)
				// Optimistic backends may report a conflict; retry until the write lands.
				for attempt := 0; attempt < 20; attempt++ {
					modified, err := store.AppendParticipant(ctx, "Gym Class", email)
					if err != nil {
						t.Errorf("append %s: %v", email, err)
						return
					}
					if modified {
						return
					}
				}
				t.Errorf("append %s never applied", email)
			}(i)
		}
		wg.Wait()

		got, err := store.Get(ctx, "Gym Class")
		require.NoError(t, err)
		require.Len(t, got.Participants, workers)
	})
}

func chessClub() domain.Activity {
	return domain.Activity{
		Name:            "Chess Club",
		Description:     "Learn strategies and compete in chess tournaments",
		Schedule:        "Fridays, 3:30 PM - 5:00 PM",
		MaxParticipants: 12,
		Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
	}
}

func occurrences(list []string, value string) int {
	n := 0
	for _, v := range list {
		if v == value {
			n++
		}
	}
	return n
}
