package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/core/cache"
	"go-gin-article-api/internal/domain"
	"go-gin-article-api/internal/summary"
	"go-gin-article-api/pkg/utils"
)

type ArticleService struct {
	repo       domain.ArticleRepository
	cache      *cache.Cache
	summarizer summary.Summarizer
	log        *zap.Logger
	newID      func() string
}

type ArticleDeps struct {
	Repo       domain.ArticleRepository
	Cache      *cache.Cache // nil = 不缓存
	Summarizer summary.Summarizer
	Log        *zap.Logger
	NewID      func() string
}

func NewArticleService(d ArticleDeps) *ArticleService {
	s := &ArticleService{repo: d.Repo, cache: d.Cache, summarizer: d.Summarizer, log: d.Log, newID: d.NewID}
	if s.summarizer == nil {
		s.summarizer = summary.Mock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.newID == nil {
		s.newID = utils.NewID
	}
	return s
}

type ArticleInput struct {
	Title string
	Body  string
	Tags  []string
}

func articleKey(id string) string { return "article:" + id }

func (s *ArticleService) Create(ctx context.Context, authorID string, in ArticleInput) (*domain.Article, error) {
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	a := &domain.Article{
		ID:       s.newID(),
		Title:    strings.TrimSpace(in.Title),
		Body:     strings.TrimSpace(in.Body),
		Tags:     tags,
		AuthorID: authorID,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperr.Internal("create article", err)
	}
	return a, nil
}

func (s *ArticleService) List(ctx context.Context, raw url.Values) (Page[domain.Article], error) {
	return s.list(ctx, raw, "")
}

// ListOwn 只列出 authorID 的文章
func (s *ArticleService) ListOwn(ctx context.Context, authorID string, raw url.Values) (Page[domain.Article], error) {
	return s.list(ctx, raw, authorID)
}

func (s *ArticleService) list(ctx context.Context, raw url.Values, authorID string) (Page[domain.Article], error) {
	d, p, err := domain.ArticleQuery.Build(raw)
	if err != nil {
		return Page[domain.Article]{}, err
	}
	items, total, err := s.repo.List(ctx, d, p, authorID)
	if err != nil {
		return Page[domain.Article]{}, apperr.Internal("list articles", err)
	}
	if items == nil {
		items = []domain.Article{}
	}
	return Page[domain.Article]{Meta: newMeta(d, total), Items: items}, nil
}

// Get 配置了 redis 时读穿缓存
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.Article, error) {
	a, err := cache.GetOrLoadJSON(s.cache, ctx, articleKey(id), 0, func(ctx context.Context) (*domain.Article, error) {
		return s.repo.FindByID(ctx, id)
	})
	if err != nil {
		return nil, apperr.Internal("find article", err)
	}
	if a == nil {
		return nil, apperr.NotFound("article not found")
	}
	return a, nil
}

// owned 不走缓存，确保作者校验基于最新数据
func (s *ArticleService) owned(ctx context.Context, callerID, id string) (*domain.Article, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("find article", err)
	}
	if a == nil {
		return nil, apperr.NotFound("article not found")
	}
	if a.AuthorID != callerID {
		return nil, apperr.Forbidden("only the author can modify this article")
	}
	return a, nil
}

func (s *ArticleService) Update(ctx context.Context, callerID, id string, in ArticleInput) (*domain.Article, error) {
	a, err := s.owned(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}
	a.Title, a.Body, a.Tags = strings.TrimSpace(in.Title), strings.TrimSpace(in.Body), tags
	if err := s.repo.Update(ctx, a); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		return nil, apperr.Internal("update article", err)
	}
	s.invalidate(ctx, id)
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil || updated == nil {
		return a, nil
	}
	return updated, nil
}

func (s *ArticleService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.owned(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return err
		}
		return apperr.Internal("delete article", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// Summarize 摘要按文章版本（updatedAt）缓存，文章修改后自然失效
func (s *ArticleService) Summarize(ctx context.Context, id string) (string, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", apperr.Internal("find article", err)
	}
	if a == nil {
		return "", apperr.NotFound("article not found")
	}
	key := fmt.Sprintf("summary:%s:%d", a.ID, a.UpdatedAt.UnixNano())
	b, err := s.cache.GetOrLoad(ctx, key, 0, func(ctx context.Context) ([]byte, error) {
		sum, err := s.summarizer.Summarize(ctx, a.Title, a.Body)
		if err != nil {
			return nil, err
		}
		return []byte(sum), nil
	})
	if err != nil {
		s.log.Error("summarize article", zap.String("articleId", id), zap.Error(err))
		return "", apperr.Internal("summarize article", err)
	}
	return string(b), nil
}

func (s *ArticleService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, articleKey(id)); err != nil {
		s.log.Warn("cache invalidate", zap.String("articleId", id), zap.Error(err))
	}
}

// normalizeTags 去空白、去重并保持顺序；至少保留一个
func normalizeTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, apperr.Validation("invalid article", apperr.FieldError{Path: "tags", Message: "at least one tag is required"})
	}
	return out, nil
}
