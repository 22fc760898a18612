package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/model"
)

type fakeCommunities struct {
	items   []model.Community
	members []model.CommunityMember
}

func (f *fakeCommunities) Create(_ context.Context, c *model.Community) error {
	for _, ex := range f.items {
		if ex.Name == c.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uint64(len(f.items) + 1)
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCommunities) FindByID(_ context.Context, id uint64) (*model.Community, error) {
	for _, c := range f.items {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCommunities) Update(_ context.Context, c *model.Community) error {
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCommunities) Delete(_ context.Context, id uint64) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCommunities) List(context.Context, int, int) ([]model.Community, int64, error) {
	return f.items, int64(len(f.items)), nil
}

func (f *fakeCommunities) AddMember(_ context.Context, m *model.CommunityMember) error {
	f.members = append(f.members, *m)
	return nil
}

func (f *fakeCommunities) RemoveMember(_ context.Context, id uint64, uid string) error {
	for i, m := range f.members {
		if m.CommunityID == id && m.UserUID == uid {
			f.members = append(f.members[:i], f.members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeCommunities) IsMember(_ context.Context, id uint64, uid string) (bool, error) {
	for _, m := range f.members {
		if m.CommunityID == id && m.UserUID == uid {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCommunities) ListMembers(_ context.Context, id uint64, _, _ int) ([]model.CommunityMember, int64, error) {
	var out []model.CommunityMember
	for _, m := range f.members {
		if m.CommunityID == id {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCommunities) MemberCounts(_ context.Context, ids []uint64) (map[uint64]int64, error) {
	out := map[uint64]int64{}
	for _, m := range f.members {
		out[m.CommunityID]++
	}
	return out, nil
}

func (f *fakeCommunities) ListJoined(_ context.Context, uid string) ([]model.Community, error) {
	var out []model.Community
	for _, m := range f.members {
		if m.UserUID != uid {
			continue
		}
		if c, err := f.FindByID(context.Background(), m.CommunityID); err == nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func TestCommunityMembership(t *testing.T) {
	repo := &fakeCommunities{}
	svc := NewCommunityService(repo).(*communityService)
	svc.now = clock
	ctx := context.Background()

	c, err := svc.Create(ctx, "admin-1", CommunityInput{Name: "Cyclists"})
	require.NoError(t, err)
	assert.Equal(t, "admin-1", c.CreatedBy)

	_, err = svc.Create(ctx, "admin-1", CommunityInput{Name: "Cyclists"})
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, svc.Join(ctx, "user-1", c.ID))
	require.NoError(t, svc.Join(ctx, "user-2", c.ID))
	assert.ErrorIs(t, svc.Join(ctx, "user-1", c.ID), ErrAlreadyMember)
	assert.ErrorIs(t, svc.Join(ctx, "user-1", 77), ErrNotFound)

	views, total, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(2), views[0].MemberCount)

	joined, err := svc.ListJoined(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, joined, 1)

	require.NoError(t, svc.Leave(ctx, "user-1", c.ID))
	assert.ErrorIs(t, svc.Leave(ctx, "user-1", c.ID), ErrNotFound)

	members, n, err := svc.ListMembers(ctx, c.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "user-2", members[0].UserUID)
	assert.Equal(t, fixedNow, members[0].JoinedAt)
}

func TestProfileUpdate(t *testing.T) {
	profiles := newFakeProfiles()
	svc := NewProfileService(profiles)
	ctx := context.Background()

	p, err := svc.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, p.DailyGoalKg)

	name, goal := "  Mika ", 12.5
	p, err = svc.Update(ctx, "user-1", ProfileInput{DisplayName: &name, DailyGoalKg: &goal})
	require.NoError(t, err)
	assert.Equal(t, "Mika", p.DisplayName)
	assert.Equal(t, 12.5, profiles.rows["user-1"].DailyGoalKg)

	neg := -1.0
	_, err = svc.Update(ctx, "user-1", ProfileInput{DailyGoalKg: &neg})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dailyGoalKg", verr.Field)

	data := "data:image/png;base64,AAAA"
	_, err = svc.Update(ctx, "user-1", ProfileInput{AvatarURL: &data})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrForbidden)
}
