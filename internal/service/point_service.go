package service

import (
	"context"
	"errors"

	"github.com/shinyyama/trace-green-backend/internal/repository"
	"gorm.io/gorm"
)

type PointService interface {
	Get(ctx context.Context, uid string) (total float64, balance float64, err error)
	Add(ctx context.Context, uid string, points float64) error
	Deduct(ctx context.Context, uid string, points float64) (float64, float64, error)
}

type pointService struct {
	repo repository.UserPointRepository
}

func NewPointService(repo repository.UserPointRepository) PointService {
	return &pointService{repo: repo}
}

func (s *pointService) Get(ctx context.Context, uid string) (float64, float64, error) {
	up, err := s.repo.Get(ctx, uid)
	if err != nil {
		return 0, 0, err
	}
	return up.TotalPoints, up.BalancePoints, nil
}

func (s *pointService) Add(ctx context.Context, uid string, points float64) error {
	if points <= 0 {
		return nil
	}
	return s.repo.Add(ctx, uid, points)
}

func (s *pointService) Deduct(ctx context.Context, uid string, points float64) (float64, float64, error) {
	if points <= 0 {
		return 0, 0, invalid("points", "must be positive")
	}
	if _, err := s.repo.Get(ctx, uid); err != nil {
		return 0, 0, err
	}
	if err := s.repo.Deduct(ctx, uid, points); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, ErrInsufficientPoints
		}
		return 0, 0, err
	}
	return s.Get(ctx, uid)
}
