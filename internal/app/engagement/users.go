package engagement

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lifexp-app/lifexp/internal/app/progression"
	"github.com/lifexp-app/lifexp/internal/domain"
)

// CreateUser registers a new user at level 1 with no XP.
func (s *Service) CreateUser(ctx context.Context, name, timezone string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, domain.InvalidArgument("name", "must be at least 2 characters")
	}
	if timezone == "" {
		timezone = s.defaultTZ
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, domain.InvalidArgument("timezone", err.Error())
	}

	u := domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Timezone:  timezone,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	u.Progression = progression.Derive(u.Progression)
	s.logger.Info("user created", "user", u.ID, "timezone", timezone)
	return &u, nil
}

// ListUsers returns every user with derived level and title.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Progression = progression.Derive(users[i].Progression)
	}
	return users, nil
}

// Profile returns the user's progression with level details.
// Served from the cache when possible.
func (s *Service) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	var gen uint64
	if s.cache != nil {
		if p, ok := s.cache.Get(userID); ok {
			return p, nil
		}
		gen = s.cache.Generation(userID)
	}

	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	p := profileOf(u)
	if s.cache != nil {
		s.cache.Put(p, gen)
	}
	return p, nil
}

// History returns the user's latest completions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]domain.Completion, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListCompletions(ctx, userID, limit)
}

func profileOf(u *domain.User) domain.Profile {
	state := progression.Derive(u.Progression)
	info := progression.ComputeLevel(state.TotalXP)
	return domain.Profile{
		ID:          u.ID,
		Name:        u.Name,
		Timezone:    u.Timezone,
		Progression: state,
		Next:        info,
		ProgressPct: info.ProgressPct(),
	}
}
