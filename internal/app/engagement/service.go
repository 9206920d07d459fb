// Package engagement runs the LifeXP application flows on top of the pure
// progression engine: users, tasks, daily quests and completions.
//
// Every flow that changes a user's progression or a habit's streak is an
// optimistic read-modify-write: read the rows with their versions, compute
// the new state with the progression package, write everything in one
// transaction guarded by the versions, and start over if another writer got
// there first.
package engagement

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/cache"
	"github.com/lifexp-app/lifexp/internal/domain"
	"github.com/lifexp-app/lifexp/internal/infra/metrics"
)

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	// MaxWriteRetries bounds how often a conflicting write is retried.
	MaxWriteRetries int
	// DailyQuestCount is how many quests a user gets per day.
	DailyQuestCount int
	// DefaultTimezone applies to users created without one.
	DefaultTimezone string
	// Cache receives profiles after reads and is invalidated after writes.
	Cache cache.ProfileCache
	Logger *slog.Logger
	// Clock returns the current time; tests pin it.
	Clock func() time.Time
}

const (
	defaultMaxWriteRetries = 5
	defaultDailyQuestCount = 3
)

// Service is the application layer used by the API, the CLI and the scheduler.
type Service struct {
	store      domain.Store
	cache      cache.ProfileCache
	logger     *slog.Logger
	now        func() time.Time
	maxRetries int
	questCount int
	defaultTZ  string
}

// New creates a Service over store.
func New(store domain.Store, opts Options) *Service {
	s := &Service{
		store:      store,
		cache:      opts.Cache,
		logger:     opts.Logger,
		now:        opts.Clock,
		maxRetries: opts.MaxWriteRetries,
		questCount: opts.DailyQuestCount,
		defaultTZ:  opts.DefaultTimezone,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "engagement")
	if s.now == nil {
		s.now = time.Now
	}
	if s.maxRetries <= 0 {
		s.maxRetries = defaultMaxWriteRetries
	}
	if s.questCount <= 0 {
		s.questCount = defaultDailyQuestCount
	}
	if s.questCount > len(questPool) {
		s.questCount = len(questPool)
	}
	if s.defaultTZ == "" {
		s.defaultTZ = "UTC"
	}
	return s
}

// withRetry re-runs fn while it fails with domain.ErrStaleWrite.
// Once the retries are used up the failure surfaces as a Conflict.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	for attempt := 0; ; attempt++ {
		err := fn()
		if !errors.Is(err, domain.ErrStaleWrite) {
			return err
		}
		metrics.WriteConflicts.WithLabelValues(op).Inc()
		if attempt >= s.maxRetries {
			return domain.Conflict(op+": too many concurrent updates, try again", err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Debug("write conflict, retrying", "op", op, "attempt", attempt+1)
	}
}

// loadUser fetches a user or returns a NotFound error.
func (s *Service) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound(domain.ErrUserNotFound, userID)
	}
	u.Progression = progression.Derive(u.Progression)
	return u, nil
}

// localNow is the current time on the user's calendar.
func (s *Service) localNow(u *domain.User) time.Time {
	return s.now().In(u.Location())
}

func (s *Service) invalidate(userID string) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}
