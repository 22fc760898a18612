package service

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/footprint"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserUID     string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	TotalPoints float64 `json:"totalPoints"`
}

type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Me      *LeaderboardEntry  `json:"me,omitempty"`
	Players int64              `json:"players"`
}

type LeaderboardService interface {
	Get(ctx context.Context, uid string, limit int) (*Leaderboard, error)
}

type leaderboardService struct {
	points   repository.UserPointRepository
	profiles repository.ProfileRepository
}

func NewLeaderboardService(points repository.UserPointRepository, profiles repository.ProfileRepository) LeaderboardService {
	return &leaderboardService{points: points, profiles: profiles}
}

func (s *leaderboardService) Get(ctx context.Context, uid string, limit int) (*Leaderboard, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	top, err := s.points.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	scored := make([]footprint.Scored, 0, len(top))
	uids := make([]string, 0, len(top)+1)
	for _, p := range top {
		scored = append(scored, footprint.Scored{UserUID: p.UID, Score: p.TotalPoints})
		uids = append(uids, p.UID)
	}
	ranked := footprint.Rank(scored)

	var me *LeaderboardEntry
	if uid != "" {
		up, err := s.points.Get(ctx, uid)
		if err != nil {
			return nil, err
		}
		above, err := s.points.CountAbove(ctx, up.TotalPoints)
		if err != nil {
			return nil, err
		}
		me = &LeaderboardEntry{Rank: int(above) + 1, UserUID: uid, TotalPoints: up.TotalPoints}
		uids = append(uids, uid)
	}

	profiles, err := s.profiles.FindByUIDs(ctx, uids)
	if err != nil {
		return nil, err
	}
	byUID := make(map[string]int, len(profiles))
	for i, p := range profiles {
		byUID[p.UID] = i
	}
	decorate := func(e *LeaderboardEntry) {
		if i, ok := byUID[e.UserUID]; ok {
			e.DisplayName = profiles[i].DisplayName
			e.AvatarURL = profiles[i].AvatarURL
		}
	}

	entries := make([]LeaderboardEntry, 0, len(ranked))
	for _, r := range ranked {
		e := LeaderboardEntry{Rank: r.Rank, UserUID: r.UserUID, TotalPoints: r.Score}
		decorate(&e)
		entries = append(entries, e)
	}
	if me != nil {
		decorate(me)
	}
	players, err := s.points.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Leaderboard{Entries: entries, Me: me, Players: players}, nil
}
