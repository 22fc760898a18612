package repository

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type CommunityRepository interface {
	Create(ctx context.Context, c *model.Community) error
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
	Update(ctx context.Context, c *model.Community) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Community, int64, error)
	AddMember(ctx context.Context, m *model.CommunityMember) error
	// RemoveMember returns gorm.ErrRecordNotFound when the user was not a member.
	RemoveMember(ctx context.Context, communityID uint64, uid string) error
	IsMember(ctx context.Context, communityID uint64, uid string) (bool, error)
	ListMembers(ctx context.Context, communityID uint64, limit, offset int) ([]model.CommunityMember, int64, error)
	MemberCounts(ctx context.Context, ids []uint64) (map[uint64]int64, error)
	ListJoined(ctx context.Context, uid string) ([]model.Community, error)
}

type communityRepository struct {
	crud[model.Community]
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{crud[model.Community]{db: db}}
}

// Delete removes the community together with its memberships.
func (r *communityRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("community_id = ?", id).Delete(&model.CommunityMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *communityRepository) AddMember(ctx context.Context, m *model.CommunityMember) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *communityRepository) RemoveMember(ctx context.Context, communityID uint64, uid string) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Where("community_id = ? AND user_uid = ?", communityID, uid).
		Delete(&model.CommunityMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *communityRepository) IsMember(ctx context.Context, communityID uint64, uid string) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_uid = ?", communityID, uid).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *communityRepository) ListMembers(ctx context.Context, communityID uint64, limit, offset int) ([]model.CommunityMember, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []model.CommunityMember
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.CommunityMember{}).Where("community_id = ?", communityID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("joined_at asc, id asc").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *communityRepository) MemberCounts(ctx context.Context, ids []uint64) (map[uint64]int64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	out := make(map[uint64]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		CommunityID uint64
		Cnt         int64
	}
	if err := r.db.WithContext(ctx).
		Model(&model.CommunityMember{}).
		Select("community_id, COUNT(*) AS cnt").
		Where("community_id IN ?", ids).
		Group("community_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CommunityID] = row.Cnt
	}
	return out, nil
}

func (r *communityRepository) ListJoined(ctx context.Context, uid string) ([]model.Community, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Community
	if err := r.db.WithContext(ctx).
		Joins("JOIN community_members cm ON cm.community_id = communities.id").
		Where("cm.user_uid = ?", uid).
		Order("communities.name asc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
