package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/footprint"
	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/observability"
	"github.com/shinyyama/trace-green-backend/internal/reqctx"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

type ChallengeInput struct {
	Title        string
	Description  string
	Kind         model.ChallengeRuleKind
	Category     *string
	Target       int
	RewardPoints float64
	StartsAt     time.Time
	EndsAt       time.Time
	Active       *bool
}

type ChallengeProgress struct {
	Challenge   model.Challenge
	Joined      bool
	Current     int
	Target      int
	Percent     float64
	CompletedAt *time.Time
}

type ChallengeService interface {
	ListOpen(ctx context.Context) ([]model.Challenge, error)
	Join(ctx context.Context, uid string, id uint64) (*model.ChallengeParticipant, error)
	Progress(ctx context.Context, uid string, id uint64) (*ChallengeProgress, error)
	// OnActivity completes joined open challenges that reached their target.
	OnActivity(ctx context.Context, uid string) ([]model.Challenge, error)

	Create(ctx context.Context, in ChallengeInput) (*model.Challenge, error)
	Update(ctx context.Context, id uint64, in ChallengeInput) (*model.Challenge, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Challenge, int64, error)
}

type challengeService struct {
	repo          repository.ChallengeRepository
	activities    repository.ActivityRepository
	streaks       repository.StreakRepository
	points        PointService
	notifications NotificationService
	log           *zap.Logger
	now           func() time.Time
}

func NewChallengeService(
	repo repository.ChallengeRepository,
	activities repository.ActivityRepository,
	streaks repository.StreakRepository,
	points PointService,
	notifications NotificationService,
	log *zap.Logger,
) ChallengeService {
	return &challengeService{
		repo:          repo,
		activities:    activities,
		streaks:       streaks,
		points:        points,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

func (s *challengeService) ListOpen(ctx context.Context) ([]model.Challenge, error) {
	return s.repo.ListOpen(ctx, s.now().UTC())
}

func (s *challengeService) Join(ctx context.Context, uid string, id uint64) (*model.ChallengeParticipant, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	now := s.now().UTC()
	if !c.Open(now) {
		return nil, ErrInactive
	}
	if _, err := s.repo.FindParticipant(ctx, id, uid); err == nil {
		return nil, ErrAlreadyJoined
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p := &model.ChallengeParticipant{ChallengeID: id, UserUID: uid, JoinedAt: now}
	if err := s.repo.AddParticipant(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyJoined
		}
		return nil, err
	}
	return p, nil
}

func (s *challengeService) Progress(ctx context.Context, uid string, id uint64) (*ChallengeProgress, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	out := &ChallengeProgress{Challenge: *c, Target: c.Rule.Target}
	p, err := s.repo.FindParticipant(ctx, id, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, err
	}
	out.Joined = true
	out.CompletedAt = p.CompletedAt
	cur, err := s.current(ctx, uid, c, p.JoinedAt)
	if err != nil {
		return nil, err
	}
	if p.CompletedAt != nil && cur < c.Rule.Target {
		cur = c.Rule.Target
	}
	out.Current = cur
	out.Percent = progressPercent(cur, c.Rule.Target)
	return out, nil
}

// current measures progress since the later of the challenge start and the
// moment the user joined.
func (s *challengeService) current(ctx context.Context, uid string, c *model.Challenge, joinedAt time.Time) (int, error) {
	switch c.Rule.Kind {
	case model.RuleStreakDays:
		st, err := s.streaks.Get(ctx, uid)
		if err != nil {
			return 0, err
		}
		return footprint.EffectiveStreak(streakState(st), s.now().UTC()), nil
	default:
		from := c.StartsAt
		if joinedAt.After(from) {
			from = joinedAt
		}
		f := repository.ActivityFilter{From: from, To: c.EndsAt}
		if c.Rule.Category != nil {
			f.Category = *c.Rule.Category
		}
		n, err := s.activities.Count(ctx, uid, f)
		return int(n), err
	}
}

func progressPercent(cur, target int) float64 {
	if target <= 0 {
		return 0
	}
	p := float64(cur) / float64(target) * 100
	if p > 100 {
		p = 100
	}
	return math.Round(p*10) / 10
}

func (s *challengeService) OnActivity(ctx context.Context, uid string) ([]model.Challenge, error) {
	now := s.now().UTC()
	joined, err := s.repo.ListJoinedOpen(ctx, uid, now)
	if err != nil {
		return nil, err
	}
	log := reqctx.Logger(ctx, s.log)
	var done []model.Challenge
	for i := range joined {
		c := &joined[i]
		p, err := s.repo.FindParticipant(ctx, c.ID, uid)
		if err != nil {
			return done, err
		}
		cur, err := s.current(ctx, uid, c, p.JoinedAt)
		if err != nil {
			return done, err
		}
		if cur < c.Rule.Target {
			continue
		}
		ok, err := s.repo.MarkCompleted(ctx, c.ID, uid, now)
		if err != nil {
			return done, err
		}
		if !ok {
			continue
		}
		done = append(done, *c)
		observability.RecordChallengeCompleted()
		log.Info("challenge completed", zap.Uint64("challenge_id", c.ID))
		if err := s.points.Add(ctx, uid, c.RewardPoints); err != nil {
			observability.RecordSideEffectFailure("challenge_points")
			log.Error("challenge reward failed", zap.Uint64("challenge_id", c.ID), zap.Error(err))
		}
		s.notifications.Notify(ctx, uid, model.NotificationChallengeCompleted,
			"Challenge completed", fmt.Sprintf("You completed %q and earned %.0f points.", c.Title, c.RewardPoints),
			NotificationRef{ChallengeID: uint64Ptr(c.ID)})
	}
	return done, nil
}

func (s *challengeService) Create(ctx context.Context, in ChallengeInput) (*model.Challenge, error) {
	c := &model.Challenge{Active: true}
	if err := applyChallengeInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *challengeService) Update(ctx context.Context, id uint64, in ChallengeInput) (*model.Challenge, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyChallengeInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *challengeService) Delete(ctx context.Context, id uint64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *challengeService) List(ctx context.Context, limit, offset int) ([]model.Challenge, int64, error) {
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.repo.List(ctx, limit, offset)
}

func applyChallengeInput(c *model.Challenge, in ChallengeInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 120 {
		return invalid("title", "must be 1-120 characters")
	}
	if !in.Kind.Valid() {
		return invalid("kind", fmt.Sprintf("unknown rule kind %q", in.Kind))
	}
	if in.Target <= 0 {
		return invalid("target", "must be positive")
	}
	if in.RewardPoints < 0 {
		return invalid("rewardPoints", "must not be negative")
	}
	if in.StartsAt.IsZero() || !in.EndsAt.After(in.StartsAt) {
		return invalid("endsAt", "must be after startsAt")
	}
	var category *string
	if in.Category != nil && *in.Category != "" {
		if in.Kind != model.RuleActivityCount {
			return invalid("category", "only activity_count rules take a category")
		}
		if !emission.Category(*in.Category).Valid() {
			return invalid("category", fmt.Sprintf("unknown category %q", *in.Category))
		}
		cat := *in.Category
		category = &cat
	}
	c.Title = title
	c.Description = strings.TrimSpace(in.Description)
	c.Rule = model.ChallengeRule{Kind: in.Kind, Category: category, Target: in.Target}
	c.RewardPoints = in.RewardPoints
	c.StartsAt = in.StartsAt.UTC()
	c.EndsAt = in.EndsAt.UTC()
	if in.Active != nil {
		c.Active = *in.Active
	}
	return nil
}
