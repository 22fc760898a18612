package repository

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type RewardRepository interface {
	Create(ctx context.Context, r *model.Reward) error
	FindByID(ctx context.Context, id uint64) (*model.Reward, error)
	Update(ctx context.Context, r *model.Reward) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Reward, int64, error)
	ListActive(ctx context.Context) ([]model.Reward, error)
}

type rewardRepository struct {
	crud[model.Reward]
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{crud[model.Reward]{db: db}}
}

func (r *rewardRepository) ListActive(ctx context.Context) ([]model.Reward, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Reward
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("cost_points asc, id asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
