package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDBNotReady = errors.New("database not initialized")

// firstOrInsert loads the per-user row keyed by uid, inserting seed first when
// it does not exist. Concurrent first requests for the same uid both succeed.
func firstOrInsert[T any](tx *gorm.DB, uid string, seed *T) (*T, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(seed).Error; err != nil {
		return nil, err
	}
	var out T
	if err := tx.Where("uid = ?", uid).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// crud holds the whole-record operations shared by the admin managed tables.
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) Create(ctx context.Context, v *T) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(v).Error
}

func (r crud[T]) FindByID(ctx context.Context, id uint64) (*T, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var v T
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r crud[T]) Update(ctx context.Context, v *T) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(v).Error
}

func (r crud[T]) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	var v T
	res := r.db.WithContext(ctx).Delete(&v, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r crud[T]) List(ctx context.Context, limit, offset int) ([]T, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []T
		total int64
		zero  T
	)
	if err := r.db.WithContext(ctx).Model(&zero).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
