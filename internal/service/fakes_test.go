package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-gin-article-api/internal/core/apperr"
	"go-gin-article-api/internal/core/query"
	"go-gin-article-api/internal/domain"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	err   error
	calls int // UpdatePassword 调用次数
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return apperr.Conflict("email already used")
		}
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	u, ok := m.byID[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (m *memUsers) List(_ context.Context, d query.Descriptor, p query.Predicate[domain.User]) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.User
	for _, u := range m.byID {
		if p.Match(u) {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return window(all, d), int64(len(all)), nil
}

func (m *memUsers) get(id string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memArticles struct {
	mu    sync.Mutex
	byID  map[string]*domain.Article
	seq   int
	err   error
	finds int
}

func newMemArticles() *memArticles { return &memArticles{byID: map[string]*domain.Article{}} }

func (m *memArticles) tick() time.Time {
	m.seq++
	return time.Date(2026, 1, 1, 0, 0, m.seq, 0, time.UTC)
}

func (m *memArticles) Create(_ context.Context, a *domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	a.CreatedAt = m.tick()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memArticles) FindByID(_ context.Context, id string) (*domain.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	if m.err != nil {
		return nil, m.err
	}
	if a, ok := m.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memArticles) Update(_ context.Context, a *domain.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[a.ID]
	if !ok {
		return apperr.NotFound("article not found")
	}
	cur.Title, cur.Body, cur.Tags = a.Title, a.Body, a.Tags
	cur.UpdatedAt = m.tick()
	return nil
}

func (m *memArticles) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return apperr.NotFound("article not found")
	}
	delete(m.byID, id)
	return nil
}

func (m *memArticles) List(_ context.Context, d query.Descriptor, p query.Predicate[domain.Article], authorID string) ([]domain.Article, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	var all []domain.Article
	for _, a := range m.byID {
		if authorID != "" && a.AuthorID != authorID {
			continue
		}
		if p.Match(a) {
			all = append(all, *a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return window(all, d), int64(len(all)), nil
}

func window[T any](all []T, d query.Descriptor) []T {
	if d.Skip >= len(all) {
		return []T{}
	}
	end := d.Skip + d.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[d.Skip:end]
}

type sentMail struct{ to, subject, html string }

type memMailer struct {
	sent []sentMail
	err  error
}

func (m *memMailer) Send(_ context.Context, to, subject, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, html})
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }
