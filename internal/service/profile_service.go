package service

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

// ProfileInput holds the editable profile fields; nil leaves a field unchanged.
type ProfileInput struct {
	DisplayName *string
	AvatarURL   *string
	Bio         *string
	Location    *string
	DailyGoalKg *float64
}

type ProfileService interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Update(ctx context.Context, uid string, in ProfileInput) (*model.Profile, error)
}

type profileService struct {
	repo repository.ProfileRepository
}

func NewProfileService(repo repository.ProfileRepository) ProfileService {
	return &profileService{repo: repo}
}

func (s *profileService) Get(ctx context.Context, uid string) (*model.Profile, error) {
	if uid == "" {
		return nil, ErrForbidden
	}
	return s.repo.Get(ctx, uid)
}

func (s *profileService) Update(ctx context.Context, uid string, in ProfileInput) (*model.Profile, error) {
	p, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > 80 {
			return nil, invalid("displayName", "must be 1-80 characters")
		}
		p.DisplayName = name
	}
	if in.AvatarURL != nil {
		u := strings.TrimSpace(*in.AvatarURL)
		if strings.HasPrefix(u, "data:") {
			return nil, invalid("avatarUrl", "must be a URL, not data URI")
		}
		if u == "" {
			p.AvatarURL = nil
		} else {
			p.AvatarURL = &u
		}
	}
	if in.Bio != nil {
		p.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Location != nil {
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.DailyGoalKg != nil {
		g := *in.DailyGoalKg
		if math.IsNaN(g) || math.IsInf(g, 0) || g < 0 {
			return nil, invalid("dailyGoalKg", "must be a non-negative number")
		}
		p.DailyGoalKg = g
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
