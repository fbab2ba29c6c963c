// Package redis stores activities in Redis: a set indexes activity names, a hash
// per activity (activity:<name>) holds its details and a list per activity
// (roster:<name>) holds the roster. The two families never share a key, whatever
// characters a name contains.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"example.com/extracurricular/internal/domain"
)

const (
	fieldDescription     = "description"
	fieldSchedule        = "schedule"
	fieldMaxParticipants = "max_participants"
)

var _ domain.ActivityRepository = (*Repository)(nil)

// Repository provides Redis-backed persistence for activities.
type Repository struct {
	client redis.UniversalClient
	prefix string
}

// NewRepository constructs a Repository. Every key is namespaced with prefix.
func NewRepository(client redis.UniversalClient, prefix string) *Repository {
	return &Repository{client: client, prefix: prefix}
}

func (r *Repository) indexKey() string { return r.prefix + "activities" }

func (r *Repository) detailsKey(name string) string { return r.prefix + "activity:" + name }

func (r *Repository) rosterKey(name string) string { return r.prefix + "roster:" + name }

// Count returns the number of indexed activities.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	n, err := r.client.SCard(ctx, r.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("scard activities: %w", err)
	}
	return n, nil
}

// Insert claims the name in the index, then writes details and roster.
func (r *Repository) Insert(ctx context.Context, activity domain.Activity) error {
	added, err := r.client.SAdd(ctx, r.indexKey(), activity.Name).Result()
	if err != nil {
		return fmt.Errorf("sadd activity: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, activity.Name)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.detailsKey(activity.Name),
			fieldDescription, activity.Description,
			fieldSchedule, activity.Schedule,
			fieldMaxParticipants, activity.MaxParticipants,
		)
		pipe.Del(ctx, r.rosterKey(activity.Name))
		if len(activity.Participants) > 0 {
			members := make([]interface{}, 0, len(activity.Participants))
			for _, p := range activity.Participants {
				members = append(members, p)
			}
			pipe.RPush(ctx, r.rosterKey(activity.Name), members...)
		}
		return nil
	})
	if err != nil {
		r.client.SRem(ctx, r.indexKey(), activity.Name)
		return fmt.Errorf("write activity: %w", err)
	}
	return nil
}

// Get retrieves an activity by name.
func (r *Repository) Get(ctx context.Context, name string) (*domain.Activity, error) {
	found, err := r.load(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// ListAll returns every indexed activity ordered by name.
func (r *Repository) ListAll(ctx context.Context) ([]domain.Activity, error) {
	names, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers activities: %w", err)
	}
	sort.Strings(names)
	return r.load(ctx, names)
}

func (r *Repository) load(ctx context.Context, names []string) ([]domain.Activity, error) {
	out := make([]domain.Activity, 0, len(names))
	if len(names) == 0 {
		return out, nil
	}

	details := make([]*redis.MapStringStringCmd, len(names))
	rosters := make([]*redis.StringSliceCmd, len(names))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, name := range names {
			details[i] = pipe.HGetAll(ctx, r.detailsKey(name))
			rosters[i] = pipe.LRange(ctx, r.rosterKey(name), 0, -1)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	for i, name := range names {
		fields := details[i].Val()
		if len(fields) == 0 {
			continue
		}
		capacity, err := strconv.Atoi(fields[fieldMaxParticipants])
		if err != nil {
			return nil, fmt.Errorf("activity %q: parse %s: %w", name, fieldMaxParticipants, err)
		}
		participants := rosters[i].Val()
		if participants == nil {
			participants = []string{}
		}
		out = append(out, domain.Activity{
			Name:            name,
			Description:     fields[fieldDescription],
			Schedule:        fields[fieldSchedule],
			MaxParticipants: capacity,
			Participants:    participants,
		})
	}
	return out, nil
}

// AppendParticipant pushes email under WATCH so a concurrent writer cannot
// slip a duplicate in between the membership check and the push. A lost
// optimistic race reports false.
func (r *Repository) AppendParticipant(ctx context.Context, name, email string) (bool, error) {
	roster := r.rosterKey(name)
	details := r.detailsKey(name)
	modified := false

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, details).Result()
		if err != nil {
			return err
		}
		if exists == 0 {
			return nil
		}
		members, err := tx.LRange(ctx, roster, 0, -1).Result()
		if err != nil {
			return err
		}
		if slices.Contains(members, email) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, roster, email)
			return nil
		})
		if err != nil {
			return err
		}
		modified = true
		return nil
	}, roster, details)

	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("append participant: %w", err)
	}
	return modified, nil
}

// RemoveParticipant deletes email from the roster with LREM.
func (r *Repository) RemoveParticipant(ctx context.Context, name, email string) (bool, error) {
	removed, err := r.client.LRem(ctx, r.rosterKey(name), 0, email).Result()
	if err != nil {
		return false, fmt.Errorf("remove participant: %w", err)
	}
	return removed > 0, nil
}
