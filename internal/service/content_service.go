package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shinyyama/trace-green-backend/internal/emission"
	"github.com/shinyyama/trace-green-backend/internal/model"
	"github.com/shinyyama/trace-green-backend/internal/repository"
	"github.com/shinyyama/trace-green-backend/internal/storage"
)

type ArticleInput struct {
	Title     string
	Summary   string
	Body      string
	Category  *string
	ImageURL  *string
	Published bool
}

type ContentService interface {
	ListPublished(ctx context.Context, category string, limit, offset int) ([]model.Article, int64, error)
	GetPublished(ctx context.Context, id uint64) (*model.Article, error)

	Get(ctx context.Context, id uint64) (*model.Article, error)
	List(ctx context.Context, limit, offset int) ([]model.Article, int64, error)
	Create(ctx context.Context, in ArticleInput) (*model.Article, error)
	Update(ctx context.Context, id uint64, in ArticleInput) (*model.Article, error)
	Delete(ctx context.Context, id uint64) error
	// UploadImage stores an image under prefix and returns its public URL.
	UploadImage(ctx context.Context, prefix, contentType string, r io.Reader) (string, error)
}

type contentService struct {
	repo     repository.ArticleRepository
	uploader storage.Uploader
	now      func() time.Time
}

func NewContentService(repo repository.ArticleRepository, uploader storage.Uploader) ContentService {
	return &contentService{repo: repo, uploader: uploader, now: time.Now}
}

func (s *contentService) ListPublished(ctx context.Context, category string, limit, offset int) ([]model.Article, int64, error) {
	category = strings.TrimSpace(category)
	if category != "" && !emission.Category(category).Valid() {
		return nil, 0, invalid("category", fmt.Sprintf("unknown category %q", category))
	}
	limit, offset = clampPage(limit, offset, 20, 100)
	return s.repo.ListPublished(ctx, category, limit, offset)
}

func (s *contentService) GetPublished(ctx context.Context, id uint64) (*model.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Published {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *contentService) Get(ctx context.Context, id uint64) (*model.Article, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

func (s *contentService) List(ctx context.Context, limit, offset int) ([]model.Article, int64, error) {
	limit, offset = clampPage(limit, offset, 50, 200)
	return s.repo.List(ctx, limit, offset)
}

func (s *contentService) Create(ctx context.Context, in ArticleInput) (*model.Article, error) {
	a := &model.Article{}
	if err := s.apply(a, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *contentService) Update(ctx context.Context, id uint64, in ArticleInput) (*model.Article, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(a, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *contentService) Delete(ctx context.Context, id uint64) error {
	return notFound(s.repo.Delete(ctx, id))
}

func (s *contentService) UploadImage(ctx context.Context, prefix, contentType string, r io.Reader) (string, error) {
	switch prefix {
	case "articles", "badges", "rewards", "communities":
	default:
		return "", invalid("kind", fmt.Sprintf("unknown upload kind %q", prefix))
	}
	url, err := s.uploader.Upload(ctx, prefix, contentType, r)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return "", invalid("file", "only png, jpeg, webp or gif images are accepted")
	}
	return url, err
}

func (s *contentService) apply(a *model.Article, in ArticleInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 200 {
		return invalid("title", "must be 1-200 characters")
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return invalid("body", "is required")
	}
	var category *string
	if in.Category != nil && *in.Category != "" {
		if !emission.Category(*in.Category).Valid() {
			return invalid("category", fmt.Sprintf("unknown category %q", *in.Category))
		}
		c := *in.Category
		category = &c
	}
	a.Title = title
	a.Summary = strings.TrimSpace(in.Summary)
	a.Body = body
	a.Category = category
	a.ImageURL = in.ImageURL
	if in.Published && !a.Published {
		now := s.now().UTC()
		a.PublishedAt = &now
	}
	if !in.Published {
		a.PublishedAt = nil
	}
	a.Published = in.Published
	return nil
}
