package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/model"
)

type memNotifications struct {
	rows      []model.Notification
	createErr error
}

func (m *memNotifications) Create(_ context.Context, n *model.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, uid string, unreadOnly bool, _ int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range m.rows {
		if n.UserUID == uid && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, uid string, id uint64) error {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserUID == uid {
			now := fixedNow
			m.rows[i].ReadAt = &now
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memNotifications) MarkAllRead(_ context.Context, uid string) error {
	for i := range m.rows {
		if m.rows[i].UserUID == uid {
			now := fixedNow
			m.rows[i].ReadAt = &now
		}
	}
	return nil
}

func (m *memNotifications) CountUnread(_ context.Context, uid string) (int64, error) {
	var n int64
	for _, r := range m.rows {
		if r.UserUID == uid && r.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func TestNotificationFlow(t *testing.T) {
	repo := &memNotifications{}
	svc := NewNotificationService(repo, zap.NewNop())
	ctx := context.Background()

	svc.Notify(ctx, "user-1", model.NotificationBadgeUnlocked, "Badge", "", NotificationRef{BadgeID: uint64Ptr(3)})
	svc.Notify(ctx, "user-1", model.NotificationRewardRedeemed, "Reward", "", NotificationRef{})
	svc.Notify(ctx, "", model.NotificationRewardRedeemed, "ignored", "", NotificationRef{})

	list, unread, err := svc.List(ctx, "user-1", false, 10)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), unread)
	assert.Equal(t, uint64(3), *list[0].BadgeID)

	require.NoError(t, svc.MarkRead(ctx, "user-1", 1))
	assert.ErrorIs(t, svc.MarkRead(ctx, "user-2", 2), ErrNotFound)

	_, unread, err = svc.List(ctx, "user-1", true, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, svc.MarkAllRead(ctx, "user-1"))
	_, unread, _ = svc.List(ctx, "user-1", false, 10)
	assert.Zero(t, unread)
}

func TestNotifyLogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := NewNotificationService(&memNotifications{createErr: errors.New("db gone")}, zap.New(core))

	svc.Notify(context.Background(), "user-1", model.NotificationBadgeUnlocked, "Badge", "", NotificationRef{})

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "notify failed", logs.All()[0].Message)
}
