package repository

import (
	"context"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository interface {
	Create(ctx context.Context, b *model.Badge) error
	FindByID(ctx context.Context, id uint64) (*model.Badge, error)
	Update(ctx context.Context, b *model.Badge) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Badge, int64, error)
	ListActive(ctx context.Context) ([]model.Badge, error)
	// Award records the unlock once; it reports false when the user already had it.
	Award(ctx context.Context, uid string, badgeID uint64, at time.Time) (bool, error)
	ListUserBadges(ctx context.Context, uid string) ([]model.UserBadge, error)
}

type badgeRepository struct {
	crud[model.Badge]
}

func NewBadgeRepository(db *gorm.DB) BadgeRepository {
	return &badgeRepository{crud[model.Badge]{db: db}}
}

func (r *badgeRepository) ListActive(ctx context.Context) ([]model.Badge, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Badge
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *badgeRepository) Award(ctx context.Context, uid string, badgeID uint64, at time.Time) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.UserBadge{UserUID: uid, BadgeID: badgeID, UnlockedAt: at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *badgeRepository) ListUserBadges(ctx context.Context, uid string) ([]model.UserBadge, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.UserBadge
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", uid).
		Order("unlocked_at asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
