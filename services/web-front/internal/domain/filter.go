package domain

import (
	"net/url"
	"strconv"
)

const (
	SortByCreatedAt = "created_at"
	SortByRating    = "rating"
	SortByName      = "name"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// Pagination is the cursor of a paginated list.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// HasPrev and HasNext drive the pager; callers never request pages outside [1, TotalPages].
func (p Pagination) HasPrev() bool { return p.Page > 1 }
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// Pages lists the page numbers for rendering.
func (p Pagination) Pages() []int {
	pages := make([]int, 0, p.TotalPages)
	for i := 1; i <= p.TotalPages; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ReviewFilters is the active filter set. Exactly one sort pair is active.
type ReviewFilters struct {
	Rating       *int   `json:"rating,omitempty"`
	FeaturedOnly bool   `json:"featured_only,omitempty"`
	Search       string `json:"search,omitempty"`
	SortBy       string `json:"sort_by"`
	SortOrder    string `json:"sort_order"`
}

func DefaultFilters() ReviewFilters {
	return ReviewFilters{SortBy: SortByCreatedAt, SortOrder: SortDesc}
}

// FilterPatch carries a partial filter update; nil fields are left alone.
type FilterPatch struct {
	Rating       *int
	ClearRating  bool
	FeaturedOnly *bool
	Search       *string
	SortBy       *string
	SortOrder    *string
}

// Merge applies the patch and re-establishes the single sort pair.
func (f ReviewFilters) Merge(p FilterPatch) ReviewFilters {
	out := f
	if p.ClearRating {
		out.Rating = nil
	}
	if p.Rating != nil {
		r := *p.Rating
		out.Rating = &r
	}
	if p.FeaturedOnly != nil {
		out.FeaturedOnly = *p.FeaturedOnly
	}
	if p.Search != nil {
		out.Search = *p.Search
	}
	if p.SortBy != nil {
		out.SortBy = *p.SortBy
	}
	if p.SortOrder != nil {
		out.SortOrder = *p.SortOrder
	}
	return out.normalized()
}

func (f ReviewFilters) normalized() ReviewFilters {
	switch f.SortBy {
	case SortByCreatedAt, SortByRating, SortByName:
	default:
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		f.SortOrder = SortDesc
	}
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		f.Rating = nil
	}
	return f
}

// ReviewQuery is one list request: filters plus the requested page.
type ReviewQuery struct {
	ReviewFilters
	Page    int
	PerPage int
}

// Values encodes the query the way GET /api/reviews expects it.
func (q ReviewQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.Rating != nil {
		v.Set("rating", strconv.Itoa(*q.Rating))
	}
	if q.FeaturedOnly {
		v.Set("featured_only", "true")
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sort_order", q.SortOrder)
	}
	return v
}
