package domain

import (
	"context"
	"time"

	"go-gin-article-api/internal/core/query"
)

// Author 文章作者的公开信息
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	AuthorID  string    `json:"authorId"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ArticleQuery 文章列表：searchTerm 搜索标题与正文，tag 按成员关系过滤
var ArticleQuery = query.Schema[Article]{
	Searchable: []query.Field[Article]{
		{Key: "title", Column: "articles.title", Get: func(a *Article) string { return a.Title }},
		{Key: "body", Column: "articles.body", Get: func(a *Article) string { return a.Body }},
	},
	Filters: []query.Field[Article]{
		{
			Key:    "tag",
			Many:   func(a *Article) []string { return a.Tags },
			Member: &query.Membership{Table: "article_tags", FK: "article_id", Column: "tag", Parent: "articles.id"},
		},
	},
	Sortable: map[string]string{
		"createdAt": "articles.created_at",
		"updatedAt": "articles.updated_at",
		"title":     "articles.title",
	},
	DefaultSort: "createdAt",
}

// ArticleRepository 未找到时 FindByID 返回 (nil, nil)
type ArticleRepository interface {
	Create(ctx context.Context, a *Article) error
	FindByID(ctx context.Context, id string) (*Article, error)
	Update(ctx context.Context, a *Article) error
	Delete(ctx context.Context, id string) error
	// List authorID 为空时不按作者过滤
	List(ctx context.Context, d query.Descriptor, p query.Predicate[Article], authorID string) ([]Article, int64, error)
}
