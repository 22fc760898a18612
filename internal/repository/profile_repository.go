package repository

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Get(ctx context.Context, uid string) (*model.Profile, error)
	Save(ctx context.Context, p *model.Profile) error
	FindByUIDs(ctx context.Context, uids []string) ([]model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Get returns the profile, creating an empty one on first access.
func (r *profileRepository) Get(ctx context.Context, uid string) (*model.Profile, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	return firstOrInsert(r.db.WithContext(ctx), uid, &model.Profile{UID: uid})
}

func (r *profileRepository) Save(ctx context.Context, p *model.Profile) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *profileRepository) FindByUIDs(ctx context.Context, uids []string) ([]model.Profile, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if len(uids) == 0 {
		return nil, nil
	}
	var list []model.Profile
	if err := r.db.WithContext(ctx).Where("uid IN ?", uids).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
