// Package domain contains core business types and interfaces.
//
// This file defines pagination parameters and a generic paginated result.
package domain

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// PageParams is the offset/limit window for list queries.
type PageParams struct {
	Limit  int32 // Max results to return
	Offset int32 // Number of results to skip
}

// Normalize clamps the window into the supported range.
func (p PageParams) Normalize() PageParams {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Page contains the result of a paginated list query.
type Page[T any] struct {
	Results []T   `json:"results"`
	Total   int64 `json:"total"`
	Limit   int32 `json:"limit"`
	Offset  int32 `json:"offset"`
}

// HasMore returns true if there are more results available.
func (p *Page[T]) HasMore() bool {
	return int64(p.Offset)+int64(p.Limit) < p.Total
}
