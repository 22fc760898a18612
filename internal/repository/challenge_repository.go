package repository

import (
	"context"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type ChallengeRepository interface {
	Create(ctx context.Context, c *model.Challenge) error
	FindByID(ctx context.Context, id uint64) (*model.Challenge, error)
	Update(ctx context.Context, c *model.Challenge) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Challenge, int64, error)
	ListOpen(ctx context.Context, at time.Time) ([]model.Challenge, error)
	AddParticipant(ctx context.Context, p *model.ChallengeParticipant) error
	FindParticipant(ctx context.Context, challengeID uint64, uid string) (*model.ChallengeParticipant, error)
	// ListJoinedOpen returns open challenges the user joined and has not completed.
	ListJoinedOpen(ctx context.Context, uid string, at time.Time) ([]model.Challenge, error)
	// MarkCompleted reports false when the participation was already completed.
	MarkCompleted(ctx context.Context, challengeID uint64, uid string, at time.Time) (bool, error)
	CountParticipants(ctx context.Context, challengeID uint64) (int64, error)
}

type challengeRepository struct {
	crud[model.Challenge]
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{crud[model.Challenge]{db: db}}
}

func (r *challengeRepository) ListOpen(ctx context.Context, at time.Time) ([]model.Challenge, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Challenge
	if err := r.db.WithContext(ctx).
		Where("active = ? AND starts_at <= ? AND ends_at > ?", true, at, at).
		Order("ends_at asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *challengeRepository) AddParticipant(ctx context.Context, p *model.ChallengeParticipant) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *challengeRepository) FindParticipant(ctx context.Context, challengeID uint64, uid string) (*model.ChallengeParticipant, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.ChallengeParticipant
	if err := r.db.WithContext(ctx).
		Where("challenge_id = ? AND user_uid = ?", challengeID, uid).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *challengeRepository) ListJoinedOpen(ctx context.Context, uid string, at time.Time) ([]model.Challenge, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Challenge
	if err := r.db.WithContext(ctx).
		Joins("JOIN challenge_participants cp ON cp.challenge_id = challenges.id").
		Where("cp.user_uid = ? AND cp.completed_at IS NULL", uid).
		Where("challenges.active = ? AND challenges.starts_at <= ? AND challenges.ends_at > ?", true, at, at).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *challengeRepository) MarkCompleted(ctx context.Context, challengeID uint64, uid string, at time.Time) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.ChallengeParticipant{}).
		Where("challenge_id = ? AND user_uid = ? AND completed_at IS NULL", challengeID, uid).
		Update("completed_at", at)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *challengeRepository) CountParticipants(ctx context.Context, challengeID uint64) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.ChallengeParticipant{}).
		Where("challenge_id = ?", challengeID).
		Count(&cnt).Error; err != nil {
		return 0, err
	}
	return cnt, nil
}
