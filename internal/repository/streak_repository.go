package repository

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type StreakRepository interface {
	Get(ctx context.Context, uid string) (*model.Streak, error)
	Save(ctx context.Context, s *model.Streak) error
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Get(ctx context.Context, uid string) (*model.Streak, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	return firstOrInsert(r.db.WithContext(ctx), uid, &model.Streak{UID: uid})
}

func (r *streakRepository) Save(ctx context.Context, s *model.Streak) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(s).Error
}
