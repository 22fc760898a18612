package repository

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type UserPointRepository interface {
	Add(ctx context.Context, uid string, points float64) error
	Deduct(ctx context.Context, uid string, points float64) error
	Get(ctx context.Context, uid string) (*model.UserPoint, error)
	Top(ctx context.Context, limit int) ([]model.UserPoint, error)
	CountAbove(ctx context.Context, total float64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type userPointRepository struct {
	db *gorm.DB
}

func NewUserPointRepository(db *gorm.DB) UserPointRepository {
	return &userPointRepository{db: db}
}

func (r *userPointRepository) Add(ctx context.Context, uid string, points float64) error {
	if points <= 0 {
		return nil
	}
	if r.db == nil {
		return ErrDBNotReady
	}
	tx := r.db.WithContext(ctx)
	if _, err := firstOrInsert(tx, uid, &model.UserPoint{UID: uid}); err != nil {
		return err
	}
	return tx.Model(&model.UserPoint{}).
		Where("uid = ?", uid).
		Updates(map[string]interface{}{
			"total_points":   gorm.Expr("total_points + ?", points),
			"balance_points": gorm.Expr("balance_points + ?", points),
		}).Error
}

// Deduct spends balance points; it returns gorm.ErrRecordNotFound when the
// balance is too low.
func (r *userPointRepository) Deduct(ctx context.Context, uid string, points float64) error {
	if points <= 0 {
		return nil
	}
	if r.db == nil {
		return ErrDBNotReady
	}
	return deductPoints(r.db.WithContext(ctx), uid, points)
}

func deductPoints(tx *gorm.DB, uid string, points float64) error {
	res := tx.Model(&model.UserPoint{}).
		Where("uid = ? AND balance_points >= ?", uid, points).
		Updates(map[string]interface{}{
			"balance_points": gorm.Expr("balance_points - ?", points),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userPointRepository) Get(ctx context.Context, uid string) (*model.UserPoint, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	return firstOrInsert(r.db.WithContext(ctx), uid, &model.UserPoint{UID: uid})
}

func (r *userPointRepository) Top(ctx context.Context, limit int) ([]model.UserPoint, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.UserPoint
	if err := r.db.WithContext(ctx).
		Order("total_points desc, uid asc").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *userPointRepository) CountAbove(ctx context.Context, total float64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.UserPoint{}).
		Where("total_points > ?", total).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *userPointRepository) Count(ctx context.Context) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.UserPoint{}).Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
