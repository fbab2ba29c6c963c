// Package domain defines the roster logic for the extracurricular activities service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"example.com/extracurricular/internal/observability"
)

var (
	// ErrActivityNotFound is returned when no activity carries the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadyRegistered is returned when a signup repeats an existing roster entry.
	ErrAlreadyRegistered = errors.New("already signed up for this activity")
	// ErrNotRegistered is returned when unregistering an email that is not on the roster.
	ErrNotRegistered = errors.New("participant not found in this activity")
	// ErrWriteFailed is returned when the store reports that a roster mutation changed nothing.
	ErrWriteFailed = errors.New("roster write had no effect")
	// ErrDuplicateKey is returned by stores when inserting a name that already exists.
	ErrDuplicateKey = errors.New("activity already exists")
)

// ActivityRepository captures persistence operations for activities.
type ActivityRepository interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, activity Activity) error
	// Get returns nil, nil when the activity does not exist.
	Get(ctx context.Context, name string) (*Activity, error)
	ListAll(ctx context.Context) ([]Activity, error)
	// AppendParticipant adds email only if absent and reports whether a document changed.
	AppendParticipant(ctx context.Context, name, email string) (bool, error)
	// RemoveParticipant removes email only if present and reports whether a document changed.
	RemoveParticipant(ctx context.Context, name, email string) (bool, error)
}

// RosterAction names the kind of roster mutation.
type RosterAction string

const (
	RosterActionSignedUp     RosterAction = "signed_up"
	RosterActionUnregistered RosterAction = "unregistered"
)

// RosterChange describes a committed roster mutation.
type RosterChange struct {
	Activity   string
	Email      string
	Action     RosterAction
	OccurredAt time.Time
}

// EventPublisher fans committed roster changes out to downstream consumers.
type EventPublisher interface {
	PublishRosterChange(ctx context.Context, change RosterChange) error
}

type noopPublisher struct{}

func (noopPublisher) PublishRosterChange(context.Context, RosterChange) error { return nil }

// DefaultPublishTimeout bounds how long a committed change waits on the publisher.
const DefaultPublishTimeout = 2 * time.Second

// Service orchestrates roster workflows.
type Service struct {
	repo      ActivityRepository
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time

	publishTimeout time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithPublisher sets the publisher notified after each committed roster change.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used to stamp roster changes.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPublishTimeout caps each publish attempt. Non-positive values are ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// NewService constructs a Service.
func NewService(repo ActivityRepository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: noopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns every stored activity.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	activities, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Signup adds email to the named activity's roster.
//
// Capacity (MaxParticipants) is informational and not enforced here.
func (s *Service) Signup(ctx context.Context, activityName, email string) error {
	activity, err := s.lookup(ctx, activityName)
	if err != nil {
		return err
	}
	if activity.HasParticipant(email) {
		return ErrAlreadyRegistered
	}

	modified, err := s.repo.AppendParticipant(ctx, activityName, email)
	if err != nil {
		return fmt.Errorf("append participant: %w", err)
	}
	if !modified {
		return ErrWriteFailed
	}

	s.committed(ctx, activityName, email, RosterActionSignedUp)
	return nil
}

// Unregister removes email from the named activity's roster.
func (s *Service) Unregister(ctx context.Context, activityName, email string) error {
	activity, err := s.lookup(ctx, activityName)
	if err != nil {
		return err
	}
	if !activity.HasParticipant(email) {
		return ErrNotRegistered
	}

	modified, err := s.repo.RemoveParticipant(ctx, activityName, email)
	if err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	if !modified {
		return ErrWriteFailed
	}

	s.committed(ctx, activityName, email, RosterActionUnregistered)
	return nil
}

func (s *Service) lookup(ctx context.Context, name string) (*Activity, error) {
	activity, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

func (s *Service) committed(ctx context.Context, activityName, email string, action RosterAction) {
	observability.RecordRosterChange(string(action))

	change := RosterChange{
		Activity:   activityName,
		Email:      email,
		Action:     action,
		OccurredAt: s.now().UTC(),
	}
	pubCtx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()
	if err := s.publisher.PublishRosterChange(pubCtx, change); err != nil {
		s.logger.WarnContext(ctx, "roster event publish failed",
			"activity", activityName,
			"action", action,
			"error", err,
		)
	}
}
