package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/events"
	"github.com/shinyyama/trace-green-backend/internal/footprint"
	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/observability"
	"github.com/shinyyama/trace-green-backend/internal/reqctx"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

// maxClockSkew is how far in the future a client supplied loggedAt may be.
const maxClockSkew = 5 * time.Minute

type LogInput struct {
	Category     string
	ActivityType string
	Quantity     float64
	Note         *string
	LoggedAt     *time.Time
}

type LogResult struct {
	Record        model.ActivityRecord
	PointsAwarded float64
	Streak        int
	Badges        []model.Badge
	Challenges    []model.Challenge
}

type ListQuery struct {
	Window   string
	From     time.Time
	To       time.Time
	Category string
	Limit    int
	Offset   int
}

type SummaryView struct {
	Window       footprint.Window  `json:"window"`
	From         time.Time         `json:"from"`
	To           time.Time         `json:"to"`
	Summary      footprint.Summary `json:"summary"`
	GoalKg       float64           `json:"goalKg"`
	GoalProgress float64           `json:"goalProgress"`
}

type Dashboard struct {
	Today         SummaryView `json:"today"`
	Week          SummaryView `json:"week"`
	Month         SummaryView `json:"month"`
	Stats         UserStats   `json:"stats"`
	BalancePoints float64     `json:"balancePoints"`
	BadgeCount    int         `json:"badgeCount"`
}

type CatalogCategory struct {
	Category   emission.Category `json:"category"`
	Activities []emission.Factor `json:"activities"`
}

type ActivityService interface {
	Log(ctx context.Context, uid string, in LogInput) (*LogResult, error)
	List(ctx context.Context, uid string, q ListQuery) ([]model.ActivityRecord, int64, error)
	Summary(ctx context.Context, uid string, window string) (*SummaryView, error)
	Dashboard(ctx context.Context, uid string) (*Dashboard, error)
	Catalog() []CatalogCategory
	// Delete removes a record. Points and streaks already granted are kept.
	Delete(ctx context.Context, id uint64) error
}

// ActivityDeps wires the collaborators of the logging pipeline.
type ActivityDeps struct {
	Estimator         emission.Estimator
	Activities        repository.ActivityRepository
	Streaks           repository.StreakRepository
	Points            repository.UserPointRepository
	Profiles          repository.ProfileRepository
	PointService      PointService
	Badges            BadgeService
	Challenges        ChallengeService
	Publisher         events.Publisher
	Logger            *zap.Logger
	PointsPerActivity float64
}

type activityService struct {
	ActivityDeps
	stats statsLoader
	now   func() time.Time
}

func NewActivityService(d ActivityDeps) ActivityService {
	if d.Estimator == nil {
		d.Estimator = emission.NewEstimator()
	}
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &activityService{
		ActivityDeps: d,
		stats:        statsLoader{activities: d.Activities, streaks: d.Streaks, points: d.Points},
		now:          time.Now,
	}
}

func (s *activityService) Log(ctx context.Context, uid string, in LogInput) (*LogResult, error) {
	if uid == "" {
		return nil, ErrForbidden
	}
	now := s.now().UTC()
	at := now
	if in.LoggedAt != nil && !in.LoggedAt.IsZero() {
		at = in.LoggedAt.UTC()
		if at.After(now.Add(maxClockSkew)) {
			return nil, invalid("loggedAt", "must not be in the future")
		}
	}
	var note *string
	if in.Note != nil {
		if n := strings.TrimSpace(*in.Note); n != "" {
			if len(n) > 1000 {
				return nil, invalid("note", "must be at most 1000 characters")
			}
			note = &n
		}
	}

	est, err := s.Estimator.Estimate(emission.Category(strings.TrimSpace(in.Category)), strings.TrimSpace(in.ActivityType), in.Quantity)
	if err != nil {
		return nil, err
	}
	rec := &model.ActivityRecord{
		UserUID:      uid,
		Category:     string(est.Factor.Category),
		ActivityType: est.Factor.Activity,
		Quantity:     est.Quantity,
		Unit:         est.Factor.Unit,
		CarbonKg:     est.CarbonKg,
		Note:         note,
		LoggedAt:     at,
	}
	if err := s.Activities.Create(ctx, rec); err != nil {
		return nil, err
	}

	log := reqctx.Logger(ctx, s.Logger).With(zap.Uint64("record_id", rec.ID))
	log.Info("activity logged",
		zap.String("category", rec.Category),
		zap.String("activity", rec.ActivityType),
		zap.Float64("carbon_kg", rec.CarbonKg))
	observability.RecordActivity(rec.Category, rec.CarbonKg)

	res := &LogResult{Record: *rec}
	res.Streak = s.advanceStreak(ctx, log, uid, at, now)
	if err := s.PointService.Add(ctx, uid, s.PointsPerActivity); err != nil {
		observability.RecordSideEffectFailure("points")
		log.Error("award points failed", zap.Error(err))
	} else {
		res.PointsAwarded = s.PointsPerActivity
	}
	if done, err := s.Challenges.OnActivity(ctx, uid); err != nil {
		observability.RecordSideEffectFailure("challenge")
		log.Error("challenge evaluation failed", zap.Error(err))
	} else {
		res.Challenges = done
		for _, c := range done {
			res.PointsAwarded += c.RewardPoints
		}
	}
	if unlocked, err := s.Badges.Evaluate(ctx, uid); err != nil {
		observability.RecordSideEffectFailure("badge")
		log.Error("badge evaluation failed", zap.Error(err))
	} else {
		res.Badges = unlocked
	}
	s.publish(ctx, log, rec)
	return res, nil
}

func (s *activityService) advanceStreak(ctx context.Context, log *zap.Logger, uid string, at, now time.Time) int {
	st, err := s.Streaks.Get(ctx, uid)
	if err != nil {
		observability.RecordSideEffectFailure("streak")
		log.Error("load streak failed", zap.Error(err))
		return 0
	}
	next := footprint.AdvanceStreak(streakState(st), at)
	st.CurrentStreak = next.Current
	st.LongestStreak = next.Longest
	st.LastLoggedDay = next.LastDay
	if err := s.Streaks.Save(ctx, st); err != nil {
		observability.RecordSideEffectFailure("streak")
		log.Error("save streak failed", zap.Error(err))
	}
	return footprint.EffectiveStreak(next, now)
}

func (s *activityService) publish(ctx context.Context, log *zap.Logger, rec *model.ActivityRecord) {
	ctx, cancel := withShortDeadline(ctx)
	defer cancel()
	err := s.Publisher.Publish(ctx, events.ActivityLogged{
		RecordID:     rec.ID,
		UserUID:      rec.UserUID,
		Category:     rec.Category,
		ActivityType: rec.ActivityType,
		Quantity:     rec.Quantity,
		Unit:         rec.Unit,
		CarbonKg:     rec.CarbonKg,
		LoggedAt:     rec.LoggedAt,
	})
	if err != nil {
		observability.RecordSideEffectFailure("event")
		log.Warn("publish activity event failed", zap.Error(err))
	}
}

func (s *activityService) List(ctx context.Context, uid string, q ListQuery) ([]model.ActivityRecord, int64, error) {
	f := repository.ActivityFilter{From: q.From, To: q.To}
	if q.Window != "" {
		w, err := footprint.ParseWindow(q.Window)
		if err != nil {
			return nil, 0, invalid("window", err.Error())
		}
		f.From, f.To = w.Range(s.now().UTC())
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.To.After(f.From) {
		return nil, 0, invalid("to", "must be after from")
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		if !emission.Category(c).Valid() {
			return nil, 0, invalid("category", fmt.Sprintf("unknown category %q", c))
		}
		f.Category = c
	}
	limit, offset := clampPage(q.Limit, q.Offset, 20, 100)
	return s.Activities.ListByUser(ctx, uid, f, limit, offset)
}

func (s *activityService) Summary(ctx context.Context, uid string, window string) (*SummaryView, error) {
	w, err := footprint.ParseWindow(window)
	if err != nil {
		return nil, invalid("window", err.Error())
	}
	p, err := s.Profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	v, err := s.summarize(ctx, uid, w, p.DailyGoalKg, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *activityService) summarize(ctx context.Context, uid string, w footprint.Window, dailyGoal float64, now time.Time) (SummaryView, error) {
	from, to := w.Range(now)
	recs, err := s.Activities.ListInRange(ctx, uid, repository.ActivityFilter{From: from, To: to})
	if err != nil {
		return SummaryView{}, err
	}
	rows := make([]footprint.Record, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, footprint.Record{Category: emission.Category(r.Category), CarbonKg: r.CarbonKg, LoggedAt: r.LoggedAt})
	}
	sum := footprint.Summarize(rows, w.Days())
	goal := emission.Round2(dailyGoal * float64(w.Days()))
	return SummaryView{
		Window:       w,
		From:         from,
		To:           to,
		Summary:      sum,
		GoalKg:       goal,
		GoalProgress: footprint.GoalProgress(sum.TotalKg, goal),
	}, nil
}

func (s *activityService) Dashboard(ctx context.Context, uid string) (*Dashboard, error) {
	now := s.now().UTC()
	p, err := s.Profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	d := &Dashboard{}
	for _, slot := range []struct {
		w   footprint.Window
		dst *SummaryView
	}{
		{footprint.WindowToday, &d.Today},
		{footprint.WindowWeek, &d.Week},
		{footprint.WindowMonth, &d.Month},
	} {
		v, err := s.summarize(ctx, uid, slot.w, p.DailyGoalKg, now)
		if err != nil {
			return nil, err
		}
		*slot.dst = v
	}
	if d.Stats, err = s.stats.load(ctx, uid, now); err != nil {
		return nil, err
	}
	up, err := s.Points.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	d.BalancePoints = up.BalancePoints
	if d.BadgeCount, err = s.Badges.CountUnlocked(ctx, uid); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *activityService) Catalog() []CatalogCategory {
	cats := emission.Categories()
	out := make([]CatalogCategory, 0, len(cats))
	for _, c := range cats {
		rows, _ := emission.Activities(c)
		out = append(out, CatalogCategory{Category: c, Activities: rows})
	}
	return out
}

func (s *activityService) Delete(ctx context.Context, id uint64) error {
	return notFound(s.Activities.Delete(ctx, id))
}
