package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOutOfStock          = errors.New("out of stock")
	ErrRewardInactive      = errors.New("reward inactive")
	ErrStatusConflict      = errors.New("redemption is not pending")
)

type RedemptionRepository interface {
	// Redeem spends the user's balance and one unit of stock and records a
	// pending redemption in a single transaction.
	Redeem(ctx context.Context, uid string, rewardID uint64) (*model.RewardRedemption, error)
	// Cancel refunds points and stock of a pending redemption owned by uid.
	Cancel(ctx context.Context, id uint64, uid string, at time.Time) (*model.RewardRedemption, error)
	MarkFulfilledIfPending(ctx context.Context, id uint64, at time.Time) (int64, error)
	FindByID(ctx context.Context, id uint64) (*model.RewardRedemption, error)
	ListByUser(ctx context.Context, uid string) ([]model.RewardRedemption, error)
	ListByStatus(ctx context.Context, status model.RedemptionStatus, limit, offset int) ([]model.RewardRedemption, int64, error)
}

type redemptionRepository struct {
	db *gorm.DB
}

func NewRedemptionRepository(db *gorm.DB) RedemptionRepository {
	return &redemptionRepository{db: db}
}

func (r *redemptionRepository) Redeem(ctx context.Context, uid string, rewardID uint64) (*model.RewardRedemption, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var out *model.RewardRedemption
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reward model.Reward
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&reward, rewardID).Error; err != nil {
			return err
		}
		if !reward.Active {
			return ErrRewardInactive
		}
		if reward.Stock != nil {
			if *reward.Stock <= 0 {
				return ErrOutOfStock
			}
			if err := tx.Model(&model.Reward{}).
				Where("id = ?", reward.ID).
				Update("stock", gorm.Expr("stock - 1")).Error; err != nil {
				return err
			}
		}
		if _, err := firstOrInsert(tx, uid, &model.UserPoint{UID: uid}); err != nil {
			return err
		}
		if err := deductPoints(tx, uid, reward.CostPoints); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInsufficientBalance
			}
			return err
		}
		red := &model.RewardRedemption{
			RewardID:    reward.ID,
			UserUID:     uid,
			PointsSpent: reward.CostPoints,
			Status:      model.RedemptionStatusPending,
		}
		if err := tx.Create(red).Error; err != nil {
			return err
		}
		out = red
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *redemptionRepository) Cancel(ctx context.Context, id uint64, uid string, at time.Time) (*model.RewardRedemption, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var red model.RewardRedemption
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_uid = ?", id, uid).
			First(&red).Error; err != nil {
			return err
		}
		if red.Status != model.RedemptionStatusPending {
			return ErrStatusConflict
		}
		red.Status = model.RedemptionStatusCanceled
		red.CanceledAt = &at
		if err := tx.Save(&red).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.UserPoint{}).
			Where("uid = ?", uid).
			Update("balance_points", gorm.Expr("balance_points + ?", red.PointsSpent)).Error; err != nil {
			return err
		}
		return tx.Model(&model.Reward{}).
			Where("id = ? AND stock IS NOT NULL", red.RewardID).
			Update("stock", gorm.Expr("stock + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *redemptionRepository) MarkFulfilledIfPending(ctx context.Context, id uint64, at time.Time) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.RewardRedemption{}).
		Where("id = ? AND status = ?", id, model.RedemptionStatusPending).
		Updates(map[string]interface{}{
			"status":       model.RedemptionStatusFulfilled,
			"fulfilled_at": at,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *redemptionRepository) FindByID(ctx context.Context, id uint64) (*model.RewardRedemption, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var red model.RewardRedemption
	if err := r.db.WithContext(ctx).First(&red, id).Error; err != nil {
		return nil, err
	}
	return &red, nil
}

func (r *redemptionRepository) ListByUser(ctx context.Context, uid string) ([]model.RewardRedemption, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.RewardRedemption
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", uid).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *redemptionRepository) ListByStatus(ctx context.Context, status model.RedemptionStatus, limit, offset int) ([]model.RewardRedemption, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []model.RewardRedemption
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.RewardRedemption{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
