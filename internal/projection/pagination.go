package projection

import (
	"math"

	"github.com/vidtube/backend/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageRequest is a normalized 1-based page selection.
type PageRequest struct {
	Page  int
	Limit int
}

// NormalizePage clamps page to at least 1 and limit into [1, MaxLimit], defaulting to DefaultLimit.
func NormalizePage(page, limit int) PageRequest {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// Offset is the number of records preceding the page. It saturates at
// math.MaxInt instead of wrapping negative for absurdly large pages.
func (p PageRequest) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

// NewPage wraps one already-sliced page of items. Items is never nil so that an
// out-of-range page serializes as an empty list.
func NewPage[T any](items []T, req PageRequest, total int64) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return models.Page[T]{
		Items:       items,
		Page:        req.Page,
		Limit:       req.Limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNextPage: req.Page < totalPages,
	}
}
