package service

import "go-gin-article-api/internal/core/query"

type Meta struct {
	Page      int   `json:"page"`
	Limit     int   `json:"limit"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

type Page[T any] struct {
	Meta  Meta
	Items []T
}

func newMeta(d query.Descriptor, total int64) Meta {
	return Meta{Page: d.Page, Limit: d.Limit, Total: total, TotalPage: d.TotalPage(total)}
}

// Envelope 供 HTTP 层把 meta 与数据分开写入响应
func (p Page[T]) Envelope() (meta any, items any) { return p.Meta, p.Items }
