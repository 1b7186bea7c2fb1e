package service

import "math"

// SortField names a listing order. Unknown values fall back to SortCreatedAt.
type SortField string

const (
	SortCreatedAt    SortField = "createdAt"
	SortLikeCount    SortField = "likeCount"
	SortCommentCount SortField = "commentCount"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PageLimits bounds every listing. Max is the hard ceiling on rows a single call reads.
type PageLimits struct {
	Default int
	Max     int
}

var limits = PageLimits{Default: 10, Max: 100}

// maxOffset keeps (page-1)*pageSize representable on every platform; any page
// past it is already beyond the end of every listing.
const maxOffset = math.MaxInt32

// SetPageLimits overrides the default and maximum page size. Call before serving.
func SetPageLimits(l PageLimits) {
	if l.Max <= 0 {
		return
	}
	if l.Default <= 0 || l.Default > l.Max {
		l.Default = min(10, l.Max)
	}
	limits = l
}

// PageQuery is the pagination and ordering input shared by all listings.
// Page is 1-indexed.
type PageQuery struct {
	Page     int
	PageSize int
	Sort     SortField
	Order    SortOrder
}

// normalize clamps the query in place of rejecting it: page < 1 becomes 1, a
// non-positive size becomes the default, oversized requests are capped, and a sort
// field outside allowed becomes SortCreatedAt. Huge pages are cut to the last page
// whose offset fits maxOffset, which still reads nothing.
func (q PageQuery) normalize(allowed ...SortField) PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = limits.Default
	}
	if q.PageSize > limits.Max {
		q.PageSize = limits.Max
	}
	if last := maxOffset/q.PageSize + 1; q.Page > last {
		q.Page = last
	}
	ok := q.Sort == SortCreatedAt
	for _, f := range allowed {
		if q.Sort == f {
			ok = true
			break
		}
	}
	if !ok {
		q.Sort = SortCreatedAt
	}
	if q.Order != SortAsc {
		q.Order = SortDesc
	}
	return q
}

func (q PageQuery) offset() int { return (q.Page - 1) * q.PageSize }

func (q PageQuery) desc() bool { return q.Order != SortAsc }

// Page is one slice of a listing. Items is never nil so it encodes as [].
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func newPage[T any](items []T, q PageQuery) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Page: q.Page, PageSize: q.PageSize}
}
