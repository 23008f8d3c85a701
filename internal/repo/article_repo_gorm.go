package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/core/query"
	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/feature/article"
)

type ArticleRepo struct{ db *gorm.DB }

func NewArticleRepo(db *gorm.DB) *ArticleRepo { return &ArticleRepo{db: db} }

var _ domain.ArticleRepository = (*ArticleRepo)(nil)

func (r *ArticleRepo) Create(ctx context.Context, a *domain.Article) error {
	m := article.FromDomain(a)
	if err := r.db.WithContext(ctx).Omit("Author").Create(m).Error; err != nil {
		return err
	}
	a.CreatedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *ArticleRepo) FindByID(ctx context.Context, id string) (*domain.Article, error) {
	var m article.ArticleModel
	err := r.db.WithContext(ctx).Preload("Tags").Preload("Author").First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// Update 标题、正文与标签整体替换，在一个事务内完成
func (r *ArticleRepo) Update(ctx context.Context, a *domain.Article) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&article.ArticleModel{}).Where("id = ?", a.ID).Updates(map[string]any{
			"title": a.Title,
			"body":  a.Body,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("article not found")
		}
		if err := tx.Where("article_id = ?", a.ID).Delete(&article.ArticleTagModel{}).Error; err != nil {
			return err
		}
		if len(a.Tags) > 0 {
			if err := tx.Create(article.TagModels(a.ID, a.Tags)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ArticleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&article.ArticleTagModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&article.ArticleModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("article not found")
		}
		return nil
	})
}

func (r *ArticleRepo) List(ctx context.Context, d query.Descriptor, p query.Predicate[domain.Article], authorID string) ([]domain.Article, int64, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&article.ArticleModel{}).Scopes(p.Scope)
		if authorID != "" {
			q = q.Where("articles.author_id = ?", authorID)
		}
		return q
	}
	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var ms []article.ArticleModel
	err := base().Preload("Tags").Preload("Author").
		Order(d.OrderClause()).Offset(d.Skip).Limit(d.Limit).
		Find(&ms).Error
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Article, 0, len(ms))
	for i := range ms {
		out = append(out, *ms[i].ToDomain())
	}
	return out, total, nil
}
