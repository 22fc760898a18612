package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/repository"
)

type CommunityInput struct {
	Name        string
	Description string
	ImageURL    *string
}

type CommunityView struct {
	model.Community
	MemberCount int64
}

type CommunityService interface {
	List(ctx context.Context, limit, offset int) ([]CommunityView, int64, error)
	Join(ctx context.Context, uid string, id uint64) error
	Leave(ctx context.Context, uid string, id uint64) error
	ListMembers(ctx context.Context, id uint64, limit, offset int) ([]model.CommunityMember, int64, error)
	ListJoined(ctx context.Context, uid string) ([]model.Community, error)

	Create(ctx context.Context, createdBy string, in CommunityInput) (*model.Community, error)
	Update(ctx context.Context, id uint64, in CommunityInput) (*model.Community, error)
	Delete(ctx context.Context, id uint64) error
}

type communityService struct {
	repo repository.CommunityRepository
	now  func() time.Time
}

func NewCommunityService(repo repository.CommunityRepository) CommunityService {
	return &communityService{repo: repo, now: time.Now}
}

func (s *communityService) List(ctx context.Context, limit, offset int) ([]CommunityView, int64, error) {
	limit, offset = clampPage(limit, offset, 20, 100)
	list, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint64, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	counts, err := s.repo.MemberCounts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CommunityView, 0, len(list))
	for _, c := range list {
		out = append(out, CommunityView{Community: c, MemberCount: counts[c.ID]})
	}
	return out, total, nil
}

func (s *communityService) Join(ctx context.Context, uid string, id uint64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err)
	}
	member, err := s.repo.IsMember(ctx, id, uid)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyMember
	}
	err = s.repo.AddMember(ctx, &model.CommunityMember{CommunityID: id, UserUID: uid, JoinedAt: s.now().UTC()})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyMember
	}
	return err
}

func (s *communityService) Leave(ctx context.Context, uid string, id uint64) error {
	return notFound(s.repo.RemoveMember(ctx, id, uid))
}

func (s *communityService) ListMembers(ctx context.Context, id uint64, limit, offset int) ([]model.CommunityMember, int64, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, 0, notFound(err)
	}
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.repo.ListMembers(ctx, id, limit, offset)
}

func (s *communityService) ListJoined(ctx context.Context, uid string) ([]model.Community, error) {
	return s.repo.ListJoined(ctx, uid)
}

func (s *communityService) Create(ctx context.Context, createdBy string, in CommunityInput) (*model.Community, error) {
	c := &model.Community{CreatedBy: createdBy}
	if err := applyCommunityInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, conflict(err)
	}
	return c, nil
}

func (s *communityService) Update(ctx context.Context, id uint64, in CommunityInput) (*model.Community, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyCommunityInput(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, conflict(err)
	}
	return c, nil
}

func (s *communityService) Delete(ctx context.Context, id uint64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func applyCommunityInput(c *model.Community, in CommunityInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 120 {
		return invalid("name", "must be 1-120 characters")
	}
	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	c.ImageURL = in.ImageURL
	return nil
}
