package query

import (
	"slices"
	"strings"

	"gorm.io/gorm"
)

// Predicate 搜索（OR）与过滤条件（AND）的组合；零条件时匹配一切
type Predicate[T any] struct {
	search *search[T]
	conds  []cond[T]
}

type search[T any] struct {
	term   string
	fields []Field[T]
}

type cond[T any] struct {
	field Field[T]
	value string
}

func (p Predicate[T]) Empty() bool { return p.search == nil && len(p.conds) == 0 }

// Match 在内存中求值，语义与 Scope 生成的 SQL 一致
func (p Predicate[T]) Match(v *T) bool {
	if p.search != nil {
		term := strings.ToLower(p.search.term)
		hit := false
		for _, f := range p.search.fields {
			if f.Get != nil && strings.Contains(strings.ToLower(f.Get(v)), term) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	for _, c := range p.conds {
		if c.field.Many != nil {
			if !slices.Contains(c.field.Many(v), c.value) {
				return false
			}
			continue
		}
		if c.field.Get == nil || c.field.Get(v) != c.value {
			return false
		}
	}
	return true
}

// Scope 作为 gorm Scope 使用：db.Scopes(p.Scope)
func (p Predicate[T]) Scope(db *gorm.DB) *gorm.DB {
	if p.search != nil && len(p.search.fields) > 0 {
		like := "%" + escapeLike(strings.ToLower(p.search.term)) + "%"
		parts := make([]string, 0, len(p.search.fields))
		args := make([]any, 0, len(p.search.fields))
		for _, f := range p.search.fields {
			parts = append(parts, "LOWER("+f.Column+") LIKE ? ESCAPE '!'")
			args = append(args, like)
		}
		db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
	}
	for _, c := range p.conds {
		if m := c.field.Member; m != nil {
			db = db.Where("EXISTS (SELECT 1 FROM "+m.Table+" WHERE "+m.Table+"."+m.FK+" = "+m.Parent+
				" AND "+m.Table+"."+m.Column+" = ?)", c.value)
			continue
		}
		db = db.Where(c.field.Column+" = ?", c.value)
	}
	return db
}

// escapeLike 以 ! 作为 ESCAPE 字符，postgres 与 mysql 写法一致
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
