package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/model"
)

type harness struct {
	acts       *fakeActivities
	streaks    *fakeStreaks
	points     *fakePoints
	profiles   *fakeProfiles
	badges     *fakeBadges
	challenges *fakeChallenges
	notes      *fakeNotifier
	pub        *capturePublisher
	svc        ActivityService
}

func newHarness() *harness {
	h := &harness{
		acts:       &fakeActivities{},
		streaks:    newFakeStreaks(),
		points:     newFakePoints(),
		profiles:   newFakeProfiles(),
		badges:     &fakeBadges{},
		challenges: &fakeChallenges{},
		notes:      &fakeNotifier{},
		pub:        &capturePublisher{},
	}
	log := zap.NewNop()
	pointSvc := NewPointService(h.points)
	badgeSvc := NewBadgeService(h.badges, h.acts, h.streaks, h.points, h.notes, log).(*badgeService)
	badgeSvc.now = clock
	challengeSvc := NewChallengeService(h.challenges, h.acts, h.streaks, pointSvc, h.notes, log).(*challengeService)
	challengeSvc.now = clock
	svc := NewActivityService(ActivityDeps{
		Activities:        h.acts,
		Streaks:           h.streaks,
		Points:            h.points,
		Profiles:          h.profiles,
		PointService:      pointSvc,
		Badges:            badgeSvc,
		Challenges:        challengeSvc,
		Publisher:         h.pub,
		Logger:            log,
		PointsPerActivity: 10,
	}).(*activityService)
	svc.now = clock
	h.svc = svc
	return h
}

func at(t time.Time) *time.Time { return &t }

func TestActivityLog(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	res, err := h.svc.Log(ctx, "user-1", LogInput{
		Category:     "transportation",
		ActivityType: "Car (Petrol)",
		Quantity:     100,
	})
	require.NoError(t, err)

	assert.Equal(t, 21.0, res.Record.CarbonKg)
	assert.Equal(t, "km", res.Record.Unit)
	assert.Equal(t, fixedNow, res.Record.LoggedAt)
	assert.Equal(t, 10.0, res.PointsAwarded)
	assert.Equal(t, 1, res.Streak)

	require.Len(t, h.acts.rows, 1)
	assert.Equal(t, 10.0, h.points.rows["user-1"].TotalPoints)

	require.Len(t, h.pub.events, 1)
	assert.Equal(t, "user-1", h.pub.events[0].UserUID)
	assert.Equal(t, 21.0, h.pub.events[0].CarbonKg)
}

func TestActivityLogRejectsInvalidInput(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.svc.Log(ctx, "user-1", LogInput{Category: "transportation", ActivityType: "Teleporter", Quantity: 10})
	assert.ErrorIs(t, err, emission.ErrUnknownActivity)

	_, err = h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Rice", Quantity: -1})
	assert.ErrorIs(t, err, emission.ErrInvalidQuantity)

	_, err = h.svc.Log(ctx, "user-1", LogInput{
		Category: "food", ActivityType: "Rice", Quantity: 1,
		LoggedAt: at(fixedNow.Add(time.Hour)),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "loggedAt", verr.Field)

	_, err = h.svc.Log(ctx, "", LogInput{Category: "food", ActivityType: "Rice", Quantity: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, h.acts.rows)
	assert.Empty(t, h.pub.events)
}

func TestActivityLogUsesUTCDays(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	ist := time.FixedZone("IST", 5*3600+30*60)

	_, err := h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Rice", Quantity: 1,
		LoggedAt: at(fixedNow.AddDate(0, 0, -1))})
	require.NoError(t, err)

	// 01:00 on June 10 in IST is still June 9 in UTC.
	local := time.Date(2026, time.June, 10, 1, 0, 0, 0, ist)
	res, err := h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Rice", Quantity: 1, LoggedAt: &local})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, res.Record.LoggedAt.Location())
	assert.Equal(t, time.Date(2026, time.June, 9, 19, 30, 0, 0, time.UTC), res.Record.LoggedAt)
	assert.Equal(t, 1, res.Streak)

	res, err = h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Rice", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Streak)
}

func TestActivityLogSurvivesPublishFailure(t *testing.T) {
	h := newHarness()
	h.pub.err = errors.New("broker down")

	res, err := h.svc.Log(context.Background(), "user-1", LogInput{Category: "food", ActivityType: "Rice", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 2.7, res.Record.CarbonKg)
	assert.Len(t, h.acts.rows, 1)
}

func TestActivityLogUnlocksBadgeOnce(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	h.badges.badges = []model.Badge{
		{ID: 1, Name: "Getting started", Active: true, Criteria: model.BadgeCriteria{Kind: model.CriteriaActivityCount, Threshold: 2}},
		{ID: 2, Name: "Hidden", Active: false, Criteria: model.BadgeCriteria{Kind: model.CriteriaActivityCount, Threshold: 1}},
	}
	in := LogInput{Category: "food", ActivityType: "Vegetables", Quantity: 1}

	res, err := h.svc.Log(ctx, "user-1", in)
	require.NoError(t, err)
	assert.Empty(t, res.Badges)

	res, err = h.svc.Log(ctx, "user-1", in)
	require.NoError(t, err)
	require.Len(t, res.Badges, 1)
	assert.Equal(t, "Getting started", res.Badges[0].Name)

	res, err = h.svc.Log(ctx, "user-1", in)
	require.NoError(t, err)
	assert.Empty(t, res.Badges)

	assert.Equal(t, []string{model.NotificationBadgeUnlocked}, h.notes.types())
	assert.Len(t, h.badges.owned, 1)
}

func TestActivityLogCompletesChallenge(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	food := "food"
	h.challenges.items = []model.Challenge{{
		ID:           1,
		Title:        "Meat-free week",
		Active:       true,
		Rule:         model.ChallengeRule{Kind: model.RuleActivityCount, Category: &food, Target: 2},
		RewardPoints: 50,
		StartsAt:     fixedNow.AddDate(0, 0, -3),
		EndsAt:       fixedNow.AddDate(0, 0, 4),
	}}
	h.challenges.participants = []model.ChallengeParticipant{{ChallengeID: 1, UserUID: "user-1", JoinedAt: fixedNow.AddDate(0, 0, -1)}}

	_, err := h.svc.Log(ctx, "user-1", LogInput{Category: "transportation", ActivityType: "Bus", Quantity: 5})
	require.NoError(t, err)
	_, err = h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Vegetables", Quantity: 1})
	require.NoError(t, err)

	res, err := h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Fruits", Quantity: 1})
	require.NoError(t, err)
	require.Len(t, res.Challenges, 1)
	assert.Equal(t, 60.0, res.PointsAwarded)

	res, err = h.svc.Log(ctx, "user-1", LogInput{Category: "food", ActivityType: "Fruits", Quantity: 1})
	require.NoError(t, err)
	assert.Empty(t, res.Challenges)

	assert.Equal(t, 4*10.0+50, h.points.rows["user-1"].TotalPoints)
	assert.Equal(t, []string{model.NotificationChallengeCompleted}, h.notes.types())
}

func seedWindowActivities(t *testing.T, h *harness) {
	t.Helper()
	ctx := context.Background()
	for _, in := range []LogInput{
		{Category: "energy", ActivityType: "Electricity", Quantity: 10, LoggedAt: at(time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC))},
		{Category: "transportation", ActivityType: "Car (Petrol)", Quantity: 100, LoggedAt: at(time.Date(2026, time.June, 8, 9, 0, 0, 0, time.UTC))},
		{Category: "food", ActivityType: "Beef", Quantity: 2},
	} {
		_, err := h.svc.Log(ctx, "user-1", in)
		require.NoError(t, err)
	}
}

func TestActivitySummary(t *testing.T) {
	h := newHarness()
	h.profiles.rows["user-1"] = &model.Profile{UID: "user-1", DailyGoalKg: 5}
	seedWindowActivities(t, h)

	v, err := h.svc.Summary(context.Background(), "user-1", "week")
	require.NoError(t, err)
	assert.Equal(t, 2, v.Summary.Count)
	assert.Equal(t, 75.0, v.Summary.TotalKg)
	assert.Equal(t, 10.71, v.Summary.DailyAverageKg)
	assert.Equal(t, 35.0, v.GoalKg)
	assert.Equal(t, 214.3, v.GoalProgress)
	require.Len(t, v.Summary.Shares, 2)
	assert.Equal(t, emission.CategoryFood, v.Summary.Shares[0].Category)

	_, err = h.svc.Summary(context.Background(), "user-1", "decade")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestActivityDashboard(t *testing.T) {
	h := newHarness()
	seedWindowActivities(t, h)

	d, err := h.svc.Dashboard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 54.0, d.Today.Summary.TotalKg)
	assert.Equal(t, 75.0, d.Week.Summary.TotalKg)
	assert.Equal(t, 75.0, d.Month.Summary.TotalKg)
	assert.Equal(t, int64(3), d.Stats.ActivityCount)
	assert.InDelta(t, 83.2, d.Stats.CarbonKg, 1e-9)
	assert.Equal(t, 1, d.Stats.StreakDays)
	assert.Equal(t, 30.0, d.Stats.TotalPoints)
	assert.Equal(t, 30.0, d.BalancePoints)
	assert.Zero(t, d.BadgeCount)
}

func TestActivityList(t *testing.T) {
	h := newHarness()
	seedWindowActivities(t, h)
	ctx := context.Background()

	list, total, err := h.svc.List(ctx, "user-1", ListQuery{Window: "week"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Beef", list[0].ActivityType)

	_, total, err = h.svc.List(ctx, "user-1", ListQuery{Category: "energy"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, _, err = h.svc.List(ctx, "user-1", ListQuery{Category: "water"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestActivityDelete(t *testing.T) {
	h := newHarness()
	seedWindowActivities(t, h)

	require.NoError(t, h.svc.Delete(context.Background(), 1))
	assert.ErrorIs(t, h.svc.Delete(context.Background(), 1), ErrNotFound)
}

func TestActivityCatalog(t *testing.T) {
	cat := newHarness().svc.Catalog()
	require.Len(t, cat, 4)
	assert.Equal(t, emission.CategoryTransportation, cat[0].Category)
	assert.Len(t, cat[1].Activities, 5)
}
