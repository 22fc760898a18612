package service

import (
	"context"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/footprint"
	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

// UserStats are the all-time counters badge criteria are checked against.
type UserStats struct {
	ActivityCount int64   `json:"activityCount"`
	CarbonKg      float64 `json:"carbonKg"`
	StreakDays    int     `json:"streakDays"`
	LongestStreak int     `json:"longestStreak"`
	TotalPoints   float64 `json:"totalPoints"`
}

type statsLoader struct {
	activities repository.ActivityRepository
	streaks    repository.StreakRepository
	points     repository.UserPointRepository
}

func (l statsLoader) load(ctx context.Context, uid string, now time.Time) (UserStats, error) {
	totals, err := l.activities.Totals(ctx, uid)
	if err != nil {
		return UserStats{}, err
	}
	st, err := l.streaks.Get(ctx, uid)
	if err != nil {
		return UserStats{}, err
	}
	up, err := l.points.Get(ctx, uid)
	if err != nil {
		return UserStats{}, err
	}
	state := streakState(st)
	return UserStats{
		ActivityCount: totals.Count,
		CarbonKg:      totals.CarbonKg,
		StreakDays:    footprint.EffectiveStreak(state, now),
		LongestStreak: state.Longest,
		TotalPoints:   up.TotalPoints,
	}, nil
}

func streakState(st *model.Streak) footprint.StreakState {
	return footprint.StreakState{
		Current: st.CurrentStreak,
		Longest: st.LongestStreak,
		LastDay: st.LastLoggedDay,
	}
}
