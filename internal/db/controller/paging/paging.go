// Package paging implements the paginated list envelope of the collections API.
package paging

import "gorm.io/gorm"

// Limits of a page.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params of a list request. Page is 1 based.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page and limit into their valid range.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}

	switch {
	case p.Limit < 1:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}

	return p
}

// Offset of the first row of the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Page is one page of documents.
type Page[T any] struct {
	Docs        []T   `json:"docs"`
	TotalDocs   int64 `json:"totalDocs"`
	Limit       int   `json:"limit"`
	Page        int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrevPage"`
	HasNextPage bool  `json:"hasNextPage"`
}

// Find counts the rows matched by q and loads the requested page of them.
func Find[T any](q *gorm.DB, p Params, order string) (*Page[T], error) {
	p = p.Normalize()
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	docs := make([]T, 0, p.Limit)

	if total > 0 {
		if err := q.Order(order).Offset(p.Offset()).Limit(p.Limit).Find(&docs).Error; err != nil {
			return nil, err
		}
	}

	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))

	return &Page[T]{
		Docs:        docs,
		TotalDocs:   total,
		Limit:       p.Limit,
		Page:        p.Page,
		TotalPages:  pages,
		HasPrevPage: p.Page > 1,
		HasNextPage: p.Page < pages,
	}, nil
}
