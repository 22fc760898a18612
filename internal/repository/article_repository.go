package repository

import (
	"context"

	"github.com/shinyyama/trace-green-backend/internal/model"
	"gorm.io/gorm"
)

type ArticleRepository interface {
	Create(ctx context.Context, a *model.Article) error
	FindByID(ctx context.Context, id uint64) (*model.Article, error)
	Update(ctx context.Context, a *model.Article) error
	Delete(ctx context.Context, id uint64) error
	List(ctx context.Context, limit, offset int) ([]model.Article, int64, error)
	ListPublished(ctx context.Context, category string, limit, offset int) ([]model.Article, int64, error)
}

type articleRepository struct {
	crud[model.Article]
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{crud[model.Article]{db: db}}
}

func (r *articleRepository) ListPublished(ctx context.Context, category string, limit, offset int) ([]model.Article, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	var (
		list  []model.Article
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Article{}).Where("published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("published_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
