package domain

import (
	"testing"
	"time"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestMergeKeepsUntouchedFields(t *testing.T) {
	f := DefaultFilters().Merge(FilterPatch{SortBy: strPtr(SortByRating), SortOrder: strPtr(SortAsc)})
	f = f.Merge(FilterPatch{Rating: intPtr(4)})

	if f.Rating == nil || *f.Rating != 4 {
		t.Errorf("rating = %v", f.Rating)
	}
	if f.SortBy != SortByRating || f.SortOrder != SortAsc {
		t.Errorf("sort = %s %s", f.SortBy, f.SortOrder)
	}

	f = f.Merge(FilterPatch{ClearRating: true, FeaturedOnly: boolPtr(true), Search: strPtr("garden")})
	if f.Rating != nil || !f.FeaturedOnly || f.Search != "garden" {
		t.Errorf("after clear: %+v", f)
	}
}

func TestMergeNormalizes(t *testing.T) {
	f := DefaultFilters().Merge(FilterPatch{Rating: intPtr(9), SortBy: strPtr("id; drop"), SortOrder: strPtr("up")})
	if f.Rating != nil {
		t.Errorf("out of range rating kept: %d", *f.Rating)
	}
	if f.SortBy != SortByCreatedAt || f.SortOrder != SortDesc {
		t.Errorf("sort = %s %s", f.SortBy, f.SortOrder)
	}
}

func TestMergeDoesNotAlias(t *testing.T) {
	r := 3
	f := DefaultFilters().Merge(FilterPatch{Rating: &r})
	r = 5
	if *f.Rating != 3 {
		t.Errorf("filter follows the caller's variable: %d", *f.Rating)
	}
}

func TestQueryValues(t *testing.T) {
	q := ReviewQuery{ReviewFilters: DefaultFilters(), Page: 1, PerPage: 10}
	if got := q.Values().Encode(); got != "page=1&per_page=10&sort_by=created_at&sort_order=desc" {
		t.Errorf("defaults encode to %s", got)
	}
	q.Rating = intPtr(5)
	q.FeaturedOnly = true
	q.Search = "tea & cake"
	v := q.Values()
	if v.Get("rating") != "5" || v.Get("featured_only") != "true" || v.Get("search") != "tea & cake" {
		t.Errorf("values = %v", v)
	}
}

func TestPagination(t *testing.T) {
	p := Pagination{Page: 1, TotalPages: 3}
	if p.HasPrev() || !p.HasNext() {
		t.Errorf("first page: prev=%v next=%v", p.HasPrev(), p.HasNext())
	}
	p.Page = 3
	if !p.HasPrev() || p.HasNext() {
		t.Errorf("last page: prev=%v next=%v", p.HasPrev(), p.HasNext())
	}
	if got := p.Pages(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Errorf("Pages = %v", got)
	}
	if got := (Pagination{}).Pages(); len(got) != 0 {
		t.Errorf("empty Pages = %v", got)
	}
}

func TestExportFilename(t *testing.T) {
	ts := time.Date(2025, 1, 9, 23, 59, 0, 0, time.UTC)
	if got := ExportFilename(ts); got != "guestbook-full-export-2025-01-09.json" {
		t.Errorf("ExportFilename = %s", got)
	}
}
