package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/observability"
	"github.com/shinyyama/trace-green-backend/internal/reqctx"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

// NotificationRef links a notification to the record that caused it.
type NotificationRef struct {
	BadgeID      *uint64
	ChallengeID  *uint64
	RedemptionID *uint64
}

type NotificationService interface {
	Notify(ctx context.Context, userUID, typ, title, body string, ref NotificationRef)
	List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, userUID string, id uint64) error
	MarkAllRead(ctx context.Context, userUID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	log  *zap.Logger
}

func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger) NotificationService {
	return &notificationService{repo: repo, log: log}
}

// Notify is best-effort; failures are logged and never returned.
func (s *notificationService) Notify(ctx context.Context, userUID, typ, title, body string, ref NotificationRef) {
	if userUID == "" || typ == "" {
		return
	}
	ctx, cancel := withShortDeadline(ctx)
	defer cancel()
	n := &model.Notification{
		UserUID:      userUID,
		Type:         typ,
		Title:        title,
		Body:         body,
		BadgeID:      ref.BadgeID,
		ChallengeID:  ref.ChallengeID,
		RedemptionID: ref.RedemptionID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		observability.RecordSideEffectFailure("notification")
		reqctx.Logger(ctx, s.log).Warn("notify failed", zap.String("type", typ), zap.Error(err))
	}
}

func (s *notificationService) List(ctx context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if userUID == "" {
		return nil, 0, nil
	}
	list, err := s.repo.ListByUser(ctx, userUID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, userUID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userUID string, id uint64) error {
	if userUID == "" || id == 0 {
		return ErrNotFound
	}
	return notFound(s.repo.MarkRead(ctx, userUID, id))
}

func (s *notificationService) MarkAllRead(ctx context.Context, userUID string) error {
	if userUID == "" {
		return nil
	}
	return s.repo.MarkAllRead(ctx, userUID)
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}

func withShortDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 2*time.Second)
}
