package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/observability"
	"github.com/shinyyama/trace-green-backend/internal/reqctx"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

type BadgeInput struct {
	Name        string
	Description string
	IconURL     *string
	Kind        model.CriteriaKind
	Threshold   float64
	Category    *string
	Active      *bool
}

type BadgeView struct {
	model.Badge
	Unlocked   bool
	UnlockedAt *time.Time
}

type BadgeService interface {
	// Evaluate awards every active badge whose criteria the user now meets and
	// returns the newly unlocked ones.
	Evaluate(ctx context.Context, uid string) ([]model.Badge, error)
	ListForUser(ctx context.Context, uid string) ([]BadgeView, error)
	CountUnlocked(ctx context.Context, uid string) (int, error)

	Create(ctx context.Context, in BadgeInput) (*model.Badge, error)
	Update(ctx context.Context, id uint64, in BadgeInput) (*model.Badge, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Badge, int64, error)
}

type badgeService struct {
	repo          repository.BadgeRepository
	activities    repository.ActivityRepository
	stats         statsLoader
	notifications NotificationService
	log           *zap.Logger
	now           func() time.Time
}

func NewBadgeService(
	repo repository.BadgeRepository,
	activities repository.ActivityRepository,
	streaks repository.StreakRepository,
	points repository.UserPointRepository,
	notifications NotificationService,
	log *zap.Logger,
) BadgeService {
	return &badgeService{
		repo:          repo,
		activities:    activities,
		stats:         statsLoader{activities: activities, streaks: streaks, points: points},
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

func (s *badgeService) Evaluate(ctx context.Context, uid string) ([]model.Badge, error) {
	badges, err := s.repo.ListActive(ctx)
	if err != nil || len(badges) == 0 {
		return nil, err
	}
	owned, err := s.repo.ListUserBadges(ctx, uid)
	if err != nil {
		return nil, err
	}
	have := make(map[uint64]bool, len(owned))
	for _, ub := range owned {
		have[ub.BadgeID] = true
	}
	now := s.now().UTC()
	stats, err := s.stats.load(ctx, uid, now)
	if err != nil {
		return nil, err
	}

	var unlocked []model.Badge
	for _, b := range badges {
		if have[b.ID] {
			continue
		}
		ok, err := s.meets(ctx, uid, b.Criteria, stats)
		if err != nil {
			return unlocked, err
		}
		if !ok {
			continue
		}
		created, err := s.repo.Award(ctx, uid, b.ID, now)
		if err != nil {
			return unlocked, err
		}
		if !created {
			continue
		}
		unlocked = append(unlocked, b)
		observability.RecordBadgeUnlocked()
		reqctx.Logger(ctx, s.log).Info("badge unlocked", zap.Uint64("badge_id", b.ID))
		s.notifications.Notify(ctx, uid, model.NotificationBadgeUnlocked,
			"Badge unlocked", fmt.Sprintf("You earned the %q badge.", b.Name),
			NotificationRef{BadgeID: uint64Ptr(b.ID)})
	}
	return unlocked, nil
}

func (s *badgeService) meets(ctx context.Context, uid string, c model.BadgeCriteria, st UserStats) (bool, error) {
	switch c.Kind {
	case model.CriteriaActivityCount:
		return float64(st.ActivityCount) >= c.Threshold, nil
	case model.CriteriaStreakDays:
		return float64(st.StreakDays) >= c.Threshold, nil
	case model.CriteriaTotalPoints:
		return st.TotalPoints >= c.Threshold, nil
	case model.CriteriaCarbonLoggedKg:
		return st.CarbonKg >= c.Threshold, nil
	case model.CriteriaCategoryCount:
		if c.Category == nil {
			return false, nil
		}
		n, err := s.activities.Count(ctx, uid, repository.ActivityFilter{Category: *c.Category})
		if err != nil {
			return false, err
		}
		return float64(n) >= c.Threshold, nil
	}
	return false, nil
}

func (s *badgeService) ListForUser(ctx context.Context, uid string) ([]BadgeView, error) {
	badges, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	owned, err := s.repo.ListUserBadges(ctx, uid)
	if err != nil {
		return nil, err
	}
	at := make(map[uint64]time.Time, len(owned))
	for _, ub := range owned {
		at[ub.BadgeID] = ub.UnlockedAt
	}
	out := make([]BadgeView, 0, len(badges))
	for _, b := range badges {
		v := BadgeView{Badge: b}
		if t, ok := at[b.ID]; ok {
			t := t
			v.Unlocked = true
			v.UnlockedAt = &t
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *badgeService) CountUnlocked(ctx context.Context, uid string) (int, error) {
	owned, err := s.repo.ListUserBadges(ctx, uid)
	if err != nil {
		return 0, err
	}
	return len(owned), nil
}

func (s *badgeService) Create(ctx context.Context, in BadgeInput) (*model.Badge, error) {
	b := &model.Badge{Active: true}
	if err := applyBadgeInput(b, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, conflict(err)
	}
	return b, nil
}

func (s *badgeService) Update(ctx context.Context, id uint64, in BadgeInput) (*model.Badge, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyBadgeInput(b, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, conflict(err)
	}
	return b, nil
}

func (s *badgeService) Delete(ctx context.Context, id uint64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *badgeService) List(ctx context.Context, limit, offset int) ([]model.Badge, int64, error) {
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.repo.List(ctx, limit, offset)
}

func applyBadgeInput(b *model.Badge, in BadgeInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return invalid("name", "must be 1-120 characters")
	}
	if !in.Kind.Valid() {
		return invalid("kind", fmt.Sprintf("unknown criteria kind %q", in.Kind))
	}
	if in.Threshold <= 0 {
		return invalid("threshold", "must be positive")
	}
	var category *string
	if in.Kind == model.CriteriaCategoryCount {
		if in.Category == nil || !emission.Category(*in.Category).Valid() {
			return invalid("category", "a known category is required")
		}
		c := *in.Category
		category = &c
	}
	b.Name = name
	b.Description = strings.TrimSpace(in.Description)
	b.IconURL = in.IconURL
	b.Criteria = model.BadgeCriteria{Kind: in.Kind, Threshold: in.Threshold, Category: category}
	if in.Active != nil {
		b.Active = *in.Active
	}
	return nil
}
