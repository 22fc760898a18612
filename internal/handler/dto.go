package handler

import (
	"github.com/shinyyama/trace-green-backend/internal/model"
)

type ActivityResponse struct {
	ID           uint64  `json:"id"`
	Category     string  `json:"category"`
	ActivityType string  `json:"activityType"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	CarbonKg     float64 `json:"carbonKg"`
	Note         *string `json:"note,omitempty"`
	LoggedAt     string  `json:"loggedAt"`
	CreatedAt    string  `json:"createdAt"`
}

func toActivityResponse(r model.ActivityRecord) ActivityResponse {
	return ActivityResponse{
		ID:           r.ID,
		Category:     r.Category,
		ActivityType: r.ActivityType,
		Quantity:     r.Quantity,
		Unit:         r.Unit,
		CarbonKg:     r.CarbonKg,
		Note:         r.Note,
		LoggedAt:     formatTime(r.LoggedAt),
		CreatedAt:    formatTime(r.CreatedAt),
	}
}

type ProfileResponse struct {
	UID         string  `json:"uid"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl"`
	Bio         string  `json:"bio"`
	Location    string  `json:"location"`
	DailyGoalKg float64 `json:"dailyGoalKg"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProfileResponse(p model.Profile) ProfileResponse {
	return ProfileResponse{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		AvatarURL:   p.AvatarURL,
		Bio:         p.Bio,
		Location:    p.Location,
		DailyGoalKg: p.DailyGoalKg,
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

type BadgeResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IconURL     *string `json:"iconUrl"`
	Kind        string  `json:"kind"`
	Threshold   float64 `json:"threshold"`
	Category    *string `json:"category,omitempty"`
	Active      bool    `json:"active"`
	Unlocked    *bool   `json:"unlocked,omitempty"`
	UnlockedAt  *string `json:"unlockedAt,omitempty"`
}

func toBadgeResponse(b model.Badge) BadgeResponse {
	return BadgeResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IconURL:     b.IconURL,
		Kind:        string(b.Criteria.Kind),
		Threshold:   b.Criteria.Threshold,
		Category:    b.Criteria.Category,
		Active:      b.Active,
	}
}

type ChallengeResponse struct {
	ID           uint64  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Kind         string  `json:"kind"`
	Category     *string `json:"category,omitempty"`
	Target       int     `json:"target"`
	RewardPoints float64 `json:"rewardPoints"`
	StartsAt     string  `json:"startsAt"`
	EndsAt       string  `json:"endsAt"`
	Active       bool    `json:"active"`
}

func toChallengeResponse(ch model.Challenge) ChallengeResponse {
	return ChallengeResponse{
		ID:           ch.ID,
		Title:        ch.Title,
		Description:  ch.Description,
		Kind:         string(ch.Rule.Kind),
		Category:     ch.Rule.Category,
		Target:       ch.Rule.Target,
		RewardPoints: ch.RewardPoints,
		StartsAt:     formatTime(ch.StartsAt),
		EndsAt:       formatTime(ch.EndsAt),
		Active:       ch.Active,
	}
}

type RewardResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	CostPoints  float64 `json:"costPoints"`
	Stock       *int    `json:"stock"`
	ImageURL    *string `json:"imageUrl"`
	Active      bool    `json:"active"`
}

func toRewardResponse(r model.Reward) RewardResponse {
	return RewardResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CostPoints:  r.CostPoints,
		Stock:       r.Stock,
		ImageURL:    r.ImageURL,
		Active:      r.Active,
	}
}

type RedemptionResponse struct {
	ID          uint64          `json:"id"`
	RewardID    uint64          `json:"rewardId"`
	UserUID     string          `json:"uid"`
	PointsSpent float64         `json:"pointsSpent"`
	Status      string          `json:"status"`
	FulfilledAt *string         `json:"fulfilledAt,omitempty"`
	CanceledAt  *string         `json:"canceledAt,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	Reward      *RewardResponse `json:"reward,omitempty"`
}

func toRedemptionResponse(r model.RewardRedemption) RedemptionResponse {
	return RedemptionResponse{
		ID:          r.ID,
		RewardID:    r.RewardID,
		UserUID:     r.UserUID,
		PointsSpent: r.PointsSpent,
		Status:      string(r.Status),
		FulfilledAt: formatTimePtr(r.FulfilledAt),
		CanceledAt:  formatTimePtr(r.CanceledAt),
		CreatedAt:   formatTime(r.CreatedAt),
	}
}

type ArticleResponse struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	Body        string  `json:"body,omitempty"`
	Category    *string `json:"category,omitempty"`
	ImageURL    *string `json:"imageUrl"`
	Published   bool    `json:"published"`
	PublishedAt *string `json:"publishedAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toArticleResponse(a model.Article, withBody bool) ArticleResponse {
	resp := ArticleResponse{
		ID:          a.ID,
		Title:       a.Title,
		Summary:     a.Summary,
		Category:    a.Category,
		ImageURL:    a.ImageURL,
		Published:   a.Published,
		PublishedAt: formatTimePtr(a.PublishedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
	if withBody {
		resp.Body = a.Body
	}
	return resp
}

type CommunityResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	MemberCount *int64  `json:"memberCount,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func toCommunityResponse(cm model.Community) CommunityResponse {
	return CommunityResponse{
		ID:          cm.ID,
		Name:        cm.Name,
		Description: cm.Description,
		ImageURL:    cm.ImageURL,
		CreatedAt:   formatTime(cm.CreatedAt),
	}
}

type MemberResponse struct {
	UserUID  string `json:"uid"`
	JoinedAt string `json:"joinedAt"`
}

type NotificationResponse struct {
	ID           uint64  `json:"id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Body         string  `json:"body"`
	BadgeID      *uint64 `json:"badgeId,omitempty"`
	ChallengeID  *uint64 `json:"challengeId,omitempty"`
	RedemptionID *uint64 `json:"redemptionId,omitempty"`
	Read         bool    `json:"read"`
	CreatedAt    string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		Type:         n.Type,
		Title:        n.Title,
		Body:         n.Body,
		BadgeID:      n.BadgeID,
		ChallengeID:  n.ChallengeID,
		RedemptionID: n.RedemptionID,
		Read:         n.ReadAt != nil,
		CreatedAt:    formatTime(n.CreatedAt),
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
