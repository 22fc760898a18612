package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

type fakeRewards struct {
	items []model.Reward
}

func (f *fakeRewards) find(id uint64) *model.Reward {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i]
		}
	}
	return nil
}

func (f *fakeRewards) Create(_ context.Context, r *model.Reward) error {
	r.ID = uint64(len(f.items) + 1)
	f.items = append(f.items, *r)
	return nil
}

func (f *fakeRewards) FindByID(_ context.Context, id uint64) (*model.Reward, error) {
	if r := f.find(id); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRewards) Update(_ context.Context, r *model.Reward) error {
	if cur := f.find(r.ID); cur != nil {
		*cur = *r
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRewards) Delete(_ context.Context, id uint64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeRewards) List(context.Context, int, int) ([]model.Reward, int64, error) {
	return f.items, int64(len(f.items)), nil
}

func (f *fakeRewards) ListActive(context.Context) ([]model.Reward, error) {
	var out []model.Reward
	for _, r := range f.items {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeRedemptions mirrors the transactional repository against fakeRewards
// and fakePoints.
type fakeRedemptions struct {
	rewards *fakeRewards
	points  *fakePoints
	rows    []model.RewardRedemption
}

func (f *fakeRedemptions) Redeem(_ context.Context, uid string, rewardID uint64) (*model.RewardRedemption, error) {
	r := f.rewards.find(rewardID)
	if r == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if !r.Active {
		return nil, repository.ErrRewardInactive
	}
	if r.Stock != nil && *r.Stock <= 0 {
		return nil, repository.ErrOutOfStock
	}
	p := f.points.get(uid)
	if p.BalancePoints < r.CostPoints {
		return nil, repository.ErrInsufficientBalance
	}
	p.BalancePoints -= r.CostPoints
	if r.Stock != nil {
		n := *r.Stock - 1
		r.Stock = &n
	}
	red := model.RewardRedemption{
		ID:          uint64(len(f.rows) + 1),
		RewardID:    rewardID,
		UserUID:     uid,
		PointsSpent: r.CostPoints,
		Status:      model.RedemptionStatusPending,
	}
	f.rows = append(f.rows, red)
	return &red, nil
}

func (f *fakeRedemptions) Cancel(_ context.Context, id uint64, uid string, at time.Time) (*model.RewardRedemption, error) {
	for i := range f.rows {
		red := &f.rows[i]
		if red.ID != id || red.UserUID != uid {
			continue
		}
		if red.Status != model.RedemptionStatusPending {
			return nil, repository.ErrStatusConflict
		}
		red.Status = model.RedemptionStatusCanceled
		red.CanceledAt = &at
		f.points.get(uid).BalancePoints += red.PointsSpent
		if r := f.rewards.find(red.RewardID); r != nil && r.Stock != nil {
			n := *r.Stock + 1
			r.Stock = &n
		}
		cp := *red
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRedemptions) MarkFulfilledIfPending(_ context.Context, id uint64, at time.Time) (int64, error) {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].Status == model.RedemptionStatusPending {
			f.rows[i].Status = model.RedemptionStatusFulfilled
			f.rows[i].FulfilledAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (f *fakeRedemptions) FindByID(_ context.Context, id uint64) (*model.RewardRedemption, error) {
	for _, r := range f.rows {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRedemptions) ListByUser(_ context.Context, uid string) ([]model.RewardRedemption, error) {
	var out []model.RewardRedemption
	for _, r := range f.rows {
		if r.UserUID == uid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRedemptions) ListByStatus(_ context.Context, status model.RedemptionStatus, _, _ int) ([]model.RewardRedemption, int64, error) {
	var out []model.RewardRedemption
	for _, r := range f.rows {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func intPtr(v int) *int { return &v }

func newRewardFixture() (*rewardService, *fakeRewards, *fakePoints, *fakeNotifier) {
	rewards := &fakeRewards{items: []model.Reward{
		{ID: 1, Name: "Bamboo toothbrush", CostPoints: 30, Stock: intPtr(1), Active: true},
		{ID: 2, Name: "Tree planted", CostPoints: 100, Active: true},
		{ID: 3, Name: "Retired", CostPoints: 1, Active: false},
	}}
	points := newFakePoints()
	notes := &fakeNotifier{}
	svc := NewRewardService(rewards, &fakeRedemptions{rewards: rewards, points: points}, notes, zap.NewNop()).(*rewardService)
	svc.now = clock
	return svc, rewards, points, notes
}

func TestRewardRedeem(t *testing.T) {
	svc, rewards, points, notes := newRewardFixture()
	ctx := context.Background()
	points.rows["user-1"] = &model.UserPoint{UID: "user-1", TotalPoints: 80, BalancePoints: 80}

	red, err := svc.Redeem(ctx, "user-1", 1)
	require.NoError(t, err)
	assert.Equal(t, model.RedemptionStatusPending, red.Status)
	assert.Equal(t, 30.0, red.PointsSpent)
	assert.Equal(t, 50.0, points.rows["user-1"].BalancePoints)
	assert.Equal(t, 80.0, points.rows["user-1"].TotalPoints)
	assert.Equal(t, 0, *rewards.find(1).Stock)
	assert.Equal(t, []string{model.NotificationRewardRedeemed}, notes.types())

	_, err = svc.Redeem(ctx, "user-1", 1)
	assert.ErrorIs(t, err, ErrOutOfStock)

	_, err = svc.Redeem(ctx, "user-1", 2)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	_, err = svc.Redeem(ctx, "user-1", 3)
	assert.ErrorIs(t, err, ErrInactive)

	_, err = svc.Redeem(ctx, "user-1", 99)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := svc.ListMine(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Bamboo toothbrush", mine[0].Reward.Name)
}

func TestRewardCancelRefunds(t *testing.T) {
	svc, rewards, points, _ := newRewardFixture()
	ctx := context.Background()
	points.rows["user-1"] = &model.UserPoint{UID: "user-1", TotalPoints: 30, BalancePoints: 30}

	red, err := svc.Redeem(ctx, "user-1", 1)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "user-2", red.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	canceled, err := svc.Cancel(ctx, "user-1", red.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RedemptionStatusCanceled, canceled.Status)
	assert.Equal(t, 30.0, points.rows["user-1"].BalancePoints)
	assert.Equal(t, 1, *rewards.find(1).Stock)

	_, err = svc.Cancel(ctx, "user-1", red.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRewardFulfill(t *testing.T) {
	svc, _, points, notes := newRewardFixture()
	ctx := context.Background()
	points.rows["user-1"] = &model.UserPoint{UID: "user-1", TotalPoints: 200, BalancePoints: 200}

	red, err := svc.Redeem(ctx, "user-1", 2)
	require.NoError(t, err)

	done, err := svc.Fulfill(ctx, red.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RedemptionStatusFulfilled, done.Status)
	require.NotNil(t, done.FulfilledAt)

	again, err := svc.Fulfill(ctx, red.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RedemptionStatusFulfilled, again.Status)

	_, err = svc.Cancel(ctx, "user-1", red.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, []string{model.NotificationRewardRedeemed, model.NotificationRewardFulfilled}, notes.types())
}

func TestRewardAdminValidation(t *testing.T) {
	svc, _, _, _ := newRewardFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, RewardInput{Name: " ", CostPoints: 10})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = svc.Create(ctx, RewardInput{Name: "Tote bag", CostPoints: 10, Stock: intPtr(-1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "stock", verr.Field)

	r, err := svc.Create(ctx, RewardInput{Name: "Tote bag", CostPoints: 10, Stock: intPtr(5)})
	require.NoError(t, err)
	assert.True(t, r.Active)

	inactive := false
	r, err = svc.Update(ctx, r.ID, RewardInput{Name: "Tote bag", CostPoints: 12, Active: &inactive})
	require.NoError(t, err)
	assert.False(t, r.Active)
	assert.Nil(t, r.Stock)

	_, _, err = svc.ListRedemptions(ctx, "lost", 10, 0)
	assert.ErrorAs(t, err, &verr)
}
