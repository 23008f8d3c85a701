// Package query turns raw list-endpoint parameters into a pagination
// descriptor and a filter predicate. Only keys declared in a Schema are read.
package query

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go-gin-article-api/internal/core/apperr"
)

const (
	KeyPage       = "page"
	KeyLimit      = "limit"
	KeySortBy     = "sortBy"
	KeySortOrder  = "sortOrder"
	KeySearchTerm = "searchTerm"

	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Descriptor 分页与排序；SortBy 是 sortBy 参数，SortColumn 是对应的列名
type Descriptor struct {
	Page       int
	Limit      int
	Skip       int
	SortBy     string
	SortColumn string
	SortOrder  Order
}

// OrderClause 形如 "created_at desc"，列名只来自 Schema 白名单
func (d Descriptor) OrderClause() string {
	return d.SortColumn + " " + string(d.SortOrder)
}

// TotalPage 向上取整
func (d Descriptor) TotalPage(total int64) int64 {
	if d.Limit <= 0 {
		return 0
	}
	return (total + int64(d.Limit) - 1) / int64(d.Limit)
}

// Field 一个可搜索或可过滤的字段：Column 用于 SQL，Get/Many 用于内存匹配
type Field[T any] struct {
	Key    string
	Column string
	Get    func(*T) string
	// Many 非空表示数组字段，过滤按“包含”语义
	Many func(*T) []string
	// Member 数组字段在库里的关联表
	Member *Membership
}

// Membership 数组字段存放在关联表中：EXISTS (SELECT 1 FROM Table WHERE FK = Parent AND Column = ?)
type Membership struct {
	Table  string
	FK     string
	Column string
	Parent string
}

type Schema[T any] struct {
	Searchable  []Field[T]
	Filters     []Field[T]
	Sortable    map[string]string // sortBy 参数 → 列名
	DefaultSort string
	MaxLimit    int
}

// Build 只读取白名单键；sortBy / sortOrder 非法时返回 Validation 错误
func (s Schema[T]) Build(raw url.Values) (Descriptor, Predicate[T], error) {
	d := Descriptor{
		Page:      positive(raw.Get(KeyPage), DefaultPage),
		Limit:     positive(raw.Get(KeyLimit), DefaultLimit),
		SortBy:    s.DefaultSort,
		SortOrder: Desc,
	}
	maxLimit := s.MaxLimit
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if d.Limit > maxLimit {
		d.Limit = maxLimit
	}
	// skip 不超过 int32，避免溢出成负数
	if maxPage := math.MaxInt32 / d.Limit; d.Page > maxPage {
		d.Page = maxPage
	}
	d.Skip = (d.Page - 1) * d.Limit

	var fields []apperr.FieldError
	if v := strings.TrimSpace(raw.Get(KeySortBy)); v != "" {
		d.SortBy = v
	}
	col, ok := s.Sortable[d.SortBy]
	if !ok {
		fields = append(fields, apperr.FieldError{Path: KeySortBy, Message: "unsupported sort field " + strconv.Quote(d.SortBy)})
	}
	d.SortColumn = col
	if v := strings.ToLower(strings.TrimSpace(raw.Get(KeySortOrder))); v != "" {
		switch Order(v) {
		case Asc, Desc:
			d.SortOrder = Order(v)
		default:
			fields = append(fields, apperr.FieldError{Path: KeySortOrder, Message: "sortOrder must be asc or desc"})
		}
	}
	if len(fields) > 0 {
		return Descriptor{}, Predicate[T]{}, apperr.Validation("invalid query", fields...)
	}

	var p Predicate[T]
	if term := strings.TrimSpace(raw.Get(KeySearchTerm)); term != "" && len(s.Searchable) > 0 {
		p.search = &search[T]{term: term, fields: s.Searchable}
	}
	for _, f := range s.Filters {
		v := strings.TrimSpace(raw.Get(f.Key))
		if v == "" {
			continue
		}
		p.conds = append(p.conds, cond[T]{field: f, value: v})
	}
	return d, p, nil
}

// positive 非数字或 < 1 时取默认值；超出 int 范围的正数按最大值处理
func positive(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n
	}
	if err != nil || n < 1 {
		return def
	}
	return n
}
