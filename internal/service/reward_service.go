package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/observability"
	"github.com/shinyyama/trace-green-backend/internal/reqctx"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

type RewardInput struct {
	Name        string
	Description string
	CostPoints  float64
	Stock       *int
	ImageURL    *string
	Active      *bool
}

type RedemptionWithReward struct {
	Redemption model.RewardRedemption
	Reward     *model.Reward
}

type RewardService interface {
	ListActive(ctx context.Context) ([]model.Reward, error)
	Redeem(ctx context.Context, uid string, rewardID uint64) (*model.RewardRedemption, error)
	ListMine(ctx context.Context, uid string) ([]RedemptionWithReward, error)
	Cancel(ctx context.Context, uid string, redemptionID uint64) (*model.RewardRedemption, error)

	Fulfill(ctx context.Context, redemptionID uint64) (*model.RewardRedemption, error)
	ListRedemptions(ctx context.Context, status model.RedemptionStatus, limit, offset int) ([]model.RewardRedemption, int64, error)
	Create(ctx context.Context, in RewardInput) (*model.Reward, error)
	Update(ctx context.Context, id uint64, in RewardInput) (*model.Reward, error)
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Reward, int64, error)
}

type rewardService struct {
	repo          repository.RewardRepository
	redemptions   repository.RedemptionRepository
	notifications NotificationService
	log           *zap.Logger
	now           func() time.Time
}

func NewRewardService(
	repo repository.RewardRepository,
	redemptions repository.RedemptionRepository,
	notifications NotificationService,
	log *zap.Logger,
) RewardService {
	return &rewardService{
		repo:          repo,
		redemptions:   redemptions,
		notifications: notifications,
		log:           log,
		now:           time.Now,
	}
}

func (s *rewardService) ListActive(ctx context.Context) ([]model.Reward, error) {
	return s.repo.ListActive(ctx)
}

func (s *rewardService) Redeem(ctx context.Context, uid string, rewardID uint64) (*model.RewardRedemption, error) {
	if uid == "" {
		return nil, ErrForbidden
	}
	red, err := s.redemptions.Redeem(ctx, uid, rewardID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			return nil, ErrInsufficientPoints
		case errors.Is(err, repository.ErrOutOfStock):
			return nil, ErrOutOfStock
		case errors.Is(err, repository.ErrRewardInactive):
			return nil, ErrInactive
		}
		return nil, notFound(err)
	}
	observability.RecordRedemption(string(model.RedemptionStatusPending))
	reqctx.Logger(ctx, s.log).Info("reward redeemed",
		zap.Uint64("reward_id", rewardID), zap.Uint64("redemption_id", red.ID), zap.Float64("points", red.PointsSpent))
	name := "a reward"
	if r, err := s.repo.FindByID(ctx, rewardID); err == nil {
		name = fmt.Sprintf("%q", r.Name)
	}
	s.notifications.Notify(ctx, uid, model.NotificationRewardRedeemed,
		"Reward redeemed", fmt.Sprintf("You redeemed %s for %.0f points.", name, red.PointsSpent),
		NotificationRef{RedemptionID: uint64Ptr(red.ID)})
	return red, nil
}

func (s *rewardService) ListMine(ctx context.Context, uid string) ([]RedemptionWithReward, error) {
	if uid == "" {
		return nil, ErrForbidden
	}
	list, err := s.redemptions.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	cache := map[uint64]*model.Reward{}
	resp := make([]RedemptionWithReward, 0, len(list))
	for _, red := range list {
		r, ok := cache[red.RewardID]
		if !ok {
			r, _ = s.repo.FindByID(ctx, red.RewardID)
			cache[red.RewardID] = r
		}
		resp = append(resp, RedemptionWithReward{Redemption: red, Reward: r})
	}
	return resp, nil
}

func (s *rewardService) Cancel(ctx context.Context, uid string, redemptionID uint64) (*model.RewardRedemption, error) {
	red, err := s.redemptions.FindByID(ctx, redemptionID)
	if err != nil {
		return nil, notFound(err)
	}
	if red.UserUID != uid {
		return nil, ErrForbidden
	}
	if red.Status != model.RedemptionStatusPending {
		return nil, ErrInvalidState
	}
	red, err = s.redemptions.Cancel(ctx, redemptionID, uid, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidState
		}
		return nil, notFound(err)
	}
	observability.RecordRedemption(string(model.RedemptionStatusCanceled))
	return red, nil
}

func (s *rewardService) Fulfill(ctx context.Context, redemptionID uint64) (*model.RewardRedemption, error) {
	red, err := s.redemptions.FindByID(ctx, redemptionID)
	if err != nil {
		return nil, notFound(err)
	}
	if red.Status == model.RedemptionStatusFulfilled {
		return red, nil
	}
	n, err := s.redemptions.MarkFulfilledIfPending(ctx, redemptionID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrInvalidState
	}
	red, err = s.redemptions.FindByID(ctx, redemptionID)
	if err != nil {
		return nil, err
	}
	observability.RecordRedemption(string(model.RedemptionStatusFulfilled))
	s.notifications.Notify(ctx, red.UserUID, model.NotificationRewardFulfilled,
		"Reward on its way", "Your reward redemption has been fulfilled.",
		NotificationRef{RedemptionID: uint64Ptr(red.ID)})
	return red, nil
}

func (s *rewardService) ListRedemptions(ctx context.Context, status model.RedemptionStatus, limit, offset int) ([]model.RewardRedemption, int64, error) {
	switch status {
	case "", model.RedemptionStatusPending, model.RedemptionStatusFulfilled, model.RedemptionStatusCanceled:
	default:
		return nil, 0, invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.redemptions.ListByStatus(ctx, status, limit, offset)
}

func (s *rewardService) Create(ctx context.Context, in RewardInput) (*model.Reward, error) {
	r := &model.Reward{Active: true}
	if err := applyRewardInput(r, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *rewardService) Update(ctx context.Context, id uint64, in RewardInput) (*model.Reward, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyRewardInput(r, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *rewardService) Delete(ctx context.Context, id uint64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *rewardService) List(ctx context.Context, limit, offset int) ([]model.Reward, int64, error) {
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.repo.List(ctx, limit, offset)
}

func applyRewardInput(r *model.Reward, in RewardInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return invalid("name", "must be 1-120 characters")
	}
	if in.CostPoints <= 0 {
		return invalid("costPoints", "must be positive")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return invalid("stock", "must not be negative")
	}
	if in.ImageURL != nil && strings.HasPrefix(strings.TrimSpace(*in.ImageURL), "data:") {
		return invalid("imageUrl", "must be a URL, not data URI")
	}
	r.Name = name
	r.Description = strings.TrimSpace(in.Description)
	r.CostPoints = in.CostPoints
	r.Stock = in.Stock
	r.ImageURL = in.ImageURL
	if in.Active != nil {
		r.Active = *in.Active
	}
	return nil
}
