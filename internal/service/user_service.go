package service

import (
	"context"
	"net/url"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/domain"
)

// UserService 后台用户管理
type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService { return &UserService{users: users} }

func (s *UserService) List(ctx context.Context, raw url.Values) (Page[domain.Profile], error) {
	d, p, err := domain.UserQuery.Build(raw)
	if err != nil {
		return Page[domain.Profile]{}, err
	}
	users, total, err := s.users.List(ctx, d, p)
	if err != nil {
		return Page[domain.Profile]{}, apperr.Internal("list users", err)
	}
	items := make([]domain.Profile, 0, len(users))
	for i := range users {
		items = append(items, users[i].Profile())
	}
	return Page[domain.Profile]{Meta: newMeta(d, total), Items: items}, nil
}
