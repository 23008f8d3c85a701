package article

import (
	"time"

	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/feature/user"
)

type ArticleModel struct {
	ID       string `gorm:"primaryKey;type:varchar(32)"`
	Title    string `gorm:"size:100;not null"`
	Body     string `gorm:"type:text;not null"`
	AuthorID string `gorm:"type:varchar(32);index;not null"`

	Author user.UserModel    `gorm:"foreignKey:AuthorID"`
	Tags   []ArticleTagModel `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ArticleModel) TableName() string { return "articles" }

// ArticleTagModel 标签以 (article_id, tag) 为联合主键
type ArticleTagModel struct {
	ArticleID string `gorm:"primaryKey;type:varchar(32)"`
	Tag       string `gorm:"primaryKey;size:64;index"`
}

func (ArticleTagModel) TableName() string { return "article_tags" }

func TagModels(articleID string, tags []string) []ArticleTagModel {
	out := make([]ArticleTagModel, 0, len(tags))
	for _, t := range tags {
		out = append(out, ArticleTagModel{ArticleID: articleID, Tag: t})
	}
	return out
}

func FromDomain(a *domain.Article) *ArticleModel {
	return &ArticleModel{
		ID:        a.ID,
		Title:     a.Title,
		Body:      a.Body,
		AuthorID:  a.AuthorID,
		Tags:      TagModels(a.ID, a.Tags),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (m *ArticleModel) ToDomain() *domain.Article {
	a := &domain.Article{
		ID:        m.ID,
		Title:     m.Title,
		Body:      m.Body,
		AuthorID:  m.AuthorID,
		Tags:      make([]string, 0, len(m.Tags)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, t := range m.Tags {
		a.Tags = append(a.Tags, t.Tag)
	}
	if m.Author.ID != "" {
		a.Author = &domain.Author{ID: m.Author.ID, Name: m.Author.Name, Email: m.Author.Email}
	}
	return a
}

// Models 供 AutoMigrate 使用
func Models() []any {
	return []any{&user.UserModel{}, &ArticleModel{}, &ArticleTagModel{}}
}
