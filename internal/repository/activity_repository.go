package repository

import (
	"context"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

// ActivityFilter narrows activity queries. Zero times leave that bound open.
type ActivityFilter struct {
	From     time.Time
	To       time.Time
	Category string
}

func (f ActivityFilter) apply(q *gorm.DB) *gorm.DB {
	if !f.From.IsZero() {
		q = q.Where("logged_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("logged_at < ?", f.To)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	return q
}

// ActivityTotals are all-time aggregates of one user's records.
type ActivityTotals struct {
	Count    int64
	CarbonKg float64
}

type ActivityRepository interface {
	Create(ctx context.Context, rec *model.ActivityRecord) error
	FindByID(ctx context.Context, id uint64) (*model.ActivityRecord, error)
	Delete(ctx context.Context, id uint64) error
	ListByUser(ctx context.Context, uid string, f ActivityFilter, limit, offset int) ([]model.ActivityRecord, int64, error)
	ListInRange(ctx context.Context, uid string, f ActivityFilter) ([]model.ActivityRecord, error)
	Count(ctx context.Context, uid string, f ActivityFilter) (int64, error)
	Totals(ctx context.Context, uid string) (ActivityTotals, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, rec *model.ActivityRecord) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uint64) (*model.ActivityRecord, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rec model.ActivityRecord
	if err := r.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *activityRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).Delete(&model.ActivityRecord{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *activityRepository) ListByUser(ctx context.Context, uid string, f ActivityFilter, limit, offset int) ([]model.ActivityRecord, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []model.ActivityRecord
		total int64
	)
	base := f.apply(r.db.WithContext(ctx).Model(&model.ActivityRecord{}).Where("user_uid = ?", uid))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.apply(r.db.WithContext(ctx).Where("user_uid = ?", uid)).
		Order("logged_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *activityRepository) ListInRange(ctx context.Context, uid string, f ActivityFilter) ([]model.ActivityRecord, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ActivityRecord
	if err := f.apply(r.db.WithContext(ctx).Where("user_uid = ?", uid)).
		Order("logged_at asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *activityRepository) Count(ctx context.Context, uid string, f ActivityFilter) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := f.apply(r.db.WithContext(ctx).Model(&model.ActivityRecord{}).Where("user_uid = ?", uid)).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}

func (r *activityRepository) Totals(ctx context.Context, uid string) (ActivityTotals, error) {
	if r.db == nil {
		return ActivityTotals{}, ErrDBNotReady
	}
	var row struct {
		Count    int64
		CarbonKg float64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.ActivityRecord{}).
		Select("COUNT(*) AS count, COALESCE(SUM(carbon_kg), 0) AS carbon_kg").
		Where("user_uid = ?", uid).
		Scan(&row).Error; err != nil {
		return ActivityTotals{}, err
	}
	return ActivityTotals{Count: row.Count, CarbonKg: row.CarbonKg}, nil
}
