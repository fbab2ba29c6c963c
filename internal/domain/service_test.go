package domain_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/extracurricular/internal/domain"
	"example.com/extracurricular/internal/persistence/memory"
	"example.com/extracurricular/internal/seed"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	_, err := seed.EnsureSeeded(context.Background(), store, seed.Catalog())
	require.NoError(t, err)
	return store
}

func participants(t *testing.T, repo domain.ActivityRepository, name string) []string {
	t.Helper()
	activity, err := repo.Get(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, activity)
	return activity.Participants
}

func TestUnknownActivityIsNotFound(t *testing.T) {
	service := domain.NewService(seededStore(t))
	ctx := context.Background()

	for _, name := range []string{"Unknown Club", "", "chess club"} {
		require.ErrorIs(t, service.Signup(ctx, name, "x@y.edu"), domain.ErrActivityNotFound)
		require.ErrorIs(t, service.Unregister(ctx, name, "x@y.edu"), domain.ErrActivityNotFound)
	}
}

func TestSignupExistingParticipantIsRejected(t *testing.T) {
	store := seededStore(t)
	service := domain.NewService(store)

	for _, activity := range seed.Catalog() {
		before := participants(t, store, activity.Name)
		for _, email := range activity.Participants {
			err := service.Signup(context.Background(), activity.Name, email)
			require.ErrorIs(t, err, domain.ErrAlreadyRegistered)
		}
		require.Equal(t, before, participants(t, store, activity.Name))
	}
}

func TestUnregisterAbsentParticipantIsRejected(t *testing.T) {
	store := seededStore(t)
	service := domain.NewService(store)

	before := participants(t, store, "Drama Society")
	err := service.Unregister(context.Background(), "Drama Society", "michael@mergington.edu")
	require.ErrorIs(t, err, domain.ErrNotRegistered)
	require.Equal(t, before, participants(t, store, "Drama Society"))
}

func TestSignupThenUnregisterRestoresRoster(t *testing.T) {
	store := seededStore(t)
	service := domain.NewService(store)
	ctx := context.Background()

	for _, activity := range seed.Catalog() {
		before := participants(t, store, activity.Name)

		require.NoError(t, service.Signup(ctx, activity.Name, "roundtrip@mergington.edu"))
		require.Equal(t, append(append([]string{}, before...), "roundtrip@mergington.edu"), participants(t, store, activity.Name))

		require.NoError(t, service.Unregister(ctx, activity.Name, "roundtrip@mergington.edu"))
		require.Equal(t, before, participants(t, store, activity.Name))
	}
}

func TestSignupIgnoresCapacity(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Insert(ctx, domain.Activity{
		Name:            "Tiny Club",
		MaxParticipants: 1,
		Participants:    []string{"first@mergington.edu"},
	}))

	require.NoError(t, domain.NewService(store).Signup(ctx, "Tiny Club", "second@mergington.edu"))
	require.Len(t, participants(t, store, "Tiny Club"), 2)
}

func TestListActivitiesIsReadOnly(t *testing.T) {
	service := domain.NewService(seededStore(t))
	ctx := context.Background()

	first, err := service.ListActivities(ctx)
	require.NoError(t, err)
	require.Len(t, first, 9)

	second, err := service.ListActivities(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestListActivitiesEmptyStore(t *testing.T) {
	activities, err := domain.NewService(memory.NewStore()).ListActivities(context.Background())
	require.NoError(t, err)
	require.Empty(t, activities)
}

func TestWriteWithNoEffectIsWriteFailed(t *testing.T) {
	repo := &noEffectRepo{ActivityRepository: seededStore(t)}
	service := domain.NewService(repo)
	ctx := context.Background()

	require.ErrorIs(t, service.Signup(ctx, "Chess Club", "newstudent@mergington.edu"), domain.ErrWriteFailed)
	require.ErrorIs(t, service.Unregister(ctx, "Chess Club", "michael@mergington.edu"), domain.ErrWriteFailed)
}

func TestStoreErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	service := domain.NewService(&brokenRepo{err: boom})
	ctx := context.Background()

	err := service.Signup(ctx, "Chess Club", "x@mergington.edu")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, domain.ErrActivityNotFound)

	_, err = service.ListActivities(ctx)
	require.ErrorIs(t, err, boom)
}

func TestCommittedChangesArePublished(t *testing.T) {
	publisher := &recordingPublisher{}
	now := time.Date(2025, time.September, 5, 15, 30, 0, 0, time.FixedZone("EDT", -4*3600))
	service := domain.NewService(seededStore(t),
		domain.WithPublisher(publisher),
		domain.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	require.NoError(t, service.Signup(ctx, "Chess Club", "newstudent@mergington.edu"))
	require.ErrorIs(t, service.Signup(ctx, "Chess Club", "newstudent@mergington.edu"), domain.ErrAlreadyRegistered)
	require.NoError(t, service.Unregister(ctx, "Chess Club", "newstudent@mergington.edu"))

	require.Equal(t, []domain.RosterChange{
		{Activity: "Chess Club", Email: "newstudent@mergington.edu", Action: domain.RosterActionSignedUp, OccurredAt: now.UTC()},
		{Activity: "Chess Club", Email: "newstudent@mergington.edu", Action: domain.RosterActionUnregistered, OccurredAt: now.UTC()},
	}, publisher.changes)
}

func TestPublishFailureDoesNotFailSignup(t *testing.T) {
	store := seededStore(t)
	service := domain.NewService(store, domain.WithPublisher(&recordingPublisher{err: errors.New("kafka down")}))

	require.NoError(t, service.Signup(context.Background(), "Art Club", "newstudent@mergington.edu"))
	require.Contains(t, participants(t, store, "Art Club"), "newstudent@mergington.edu")
}

func TestSlowPublisherDoesNotStallSignup(t *testing.T) {
	store := seededStore(t)
	service := domain.NewService(store,
		domain.WithPublisher(blockingPublisher{}),
		domain.WithPublishTimeout(20*time.Millisecond),
	)

	start := time.Now()
	require.NoError(t, service.Signup(context.Background(), "Art Club", "newstudent@mergington.edu"))
	require.Less(t, time.Since(start), time.Second)
	require.Contains(t, participants(t, store, "Art Club"), "newstudent@mergington.edu")
}

// The membership check and the write are separate steps, so concurrent
// signups for one email can all pass the check. The store's guarded append
// lets exactly one through; the rest see AlreadyRegistered or WriteFailed.
func TestConcurrentSignupsForSameEmail(t *testing.T) {
	store := seededStore(t)
	service := domain.NewService(store)

	const workers = 16
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = service.Signup(context.Background(), "Soccer Team", "race@mergington.edu")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrWriteFailed):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, succeeded)

	count := 0
	for _, p := range participants(t, store, "Soccer Team") {
		if p == "race@mergington.edu" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

type noEffectRepo struct {
	domain.ActivityRepository
}

func (noEffectRepo) AppendParticipant(context.Context, string, string) (bool, error) { return false, nil }

func (noEffectRepo) RemoveParticipant(context.Context, string, string) (bool, error) { return false, nil }

type brokenRepo struct {
	err error
}

func (r *brokenRepo) Count(context.Context) (int64, error) { return 0, r.err }
func (r *brokenRepo) Insert(context.Context, domain.Activity) error { return r.err }
func (r *brokenRepo) Get(context.Context, string) (*domain.Activity, error) {
	return nil, r.err
}
func (r *brokenRepo) ListAll(context.Context) ([]domain.Activity, error) { return nil, r.err }
func (r *brokenRepo) AppendParticipant(context.Context, string, string) (bool, error) {
	return false, r.err
}
func (r *brokenRepo) RemoveParticipant(context.Context, string, string) (bool, error) {
	return false, r.err
}

type recordingPublisher struct {
	mu      sync.Mutex
	changes []domain.RosterChange
	err     error
}

func (p *recordingPublisher) PublishRosterChange(_ context.Context, change domain.RosterChange) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.changes = append(p.changes, change)
	return nil
}

// blockingPublisher never completes until its context ends.
type blockingPublisher struct{}

func (blockingPublisher) PublishRosterChange(ctx context.Context, _ domain.RosterChange) error {
	<-ctx.Done()
	return ctx.Err()
}
