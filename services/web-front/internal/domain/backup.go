package domain

import (
	"encoding/json"
	"time"
)

// FullExport is the complete backup document: reviews with their comments.
type FullExport struct {
	Reviews       []json.RawMessage `json:"reviews"`
	Comments      []json.RawMessage `json:"comments"`
	TotalReviews  int               `json:"total_reviews"`
	TotalComments int               `json:"total_comments"`
	ExportedAt    string            `json:"exported_at"`
}

// FullImport is what POST /api/admin/import/full accepts. Entries are
// forwarded untouched so fields the front does not know survive a round trip.
type FullImport struct {
	Reviews  []json.RawMessage `json:"reviews"`
	Comments []json.RawMessage `json:"comments,omitempty"`
}

type ImportResult struct {
	ImportedReviews  int      `json:"imported_reviews"`
	ImportedComments int      `json:"imported_comments"`
	Errors           []string `json:"errors"`
}

// LegacyExport is the payload of GET /api/admin/export.
type LegacyExport struct {
	Reviews    []Review     `json:"reviews"`
	Stats      *ReviewStats `json:"stats,omitempty"`
	ExportedAt string       `json:"exported_at"`
}

// ExportFilename names a full export taken at t.
func ExportFilename(t time.Time) string {
	return "guestbook-full-export-" + t.Format("2006-01-02") + ".json"
}
