package domain

import (
	"context"
	"time"

	"go-gin-article-api/internal/core/query"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID                string
	Email             string
	Name              string
	PasswordHash      string
	Role              string
	PasswordChangedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Profile 对外可见的用户信息，不含口令哈希
type Profile struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	PasswordChangedAt *time.Time `json:"passwordChangedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

// UserQuery 后台用户列表可用的搜索、过滤与排序字段
var UserQuery = query.Schema[User]{
	Searchable: []query.Field[User]{
		{Key: "email", Column: "email", Get: func(u *User) string { return u.Email }},
		{Key: "name", Column: "name", Get: func(u *User) string { return u.Name }},
	},
	Filters: []query.Field[User]{
		{Key: "role", Column: "role", Get: func(u *User) string { return u.Role }},
	},
	Sortable: map[string]string{
		"createdAt": "created_at",
		"email":     "email",
		"name":      "name",
	},
	DefaultSort: "createdAt",
}

// UserRepository 未找到时 Find* 返回 (nil, nil)
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// UpdatePassword 在同一条 UPDATE 中写入新哈希与改密时间
	UpdatePassword(ctx context.Context, id, hash string, changedAt time.Time) error
	List(ctx context.Context, d query.Descriptor, p query.Predicate[User]) ([]User, int64, error)
}
