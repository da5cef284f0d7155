package domain

import (
	"io"
	"strings"
	"time"
)

type Review struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Rating       int        `json:"rating"`
	Title        string     `json:"title,omitempty"`
	Content      string     `json:"content"`
	ImagePath    string     `json:"image_path,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	IsApproved   bool       `json:"is_approved"`
	IsFeatured   bool       `json:"is_featured,omitempty"`
	CommentCount int        `json:"comment_count,omitempty"`
	AdminNotes   string     `json:"admin_notes,omitempty"`
}

type ReviewList struct {
	Reviews    []Review `json:"reviews"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PerPage    int      `json:"per_page"`
	TotalPages int      `json:"total_pages"`
}

// Pagination returns the cursor carried by the list response.
func (l *ReviewList) Pagination() Pagination {
	return Pagination{Page: l.Page, PerPage: l.PerPage, Total: l.Total, TotalPages: l.TotalPages}
}

type ReviewStats struct {
	TotalReviews       int            `json:"total_reviews"`
	ApprovedReviews    int            `json:"approved_reviews,omitempty"`
	PendingReviews     int            `json:"pending_reviews,omitempty"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// ImageUpload is an image attached to a review submission.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

type ReviewForm struct {
	Name    string       `json:"name" validate:"required,max=100"`
	Email   string       `json:"email,omitempty" validate:"omitempty,email"`
	Rating  int          `json:"rating" validate:"min=1,max=5"`
	Title   string       `json:"title,omitempty" validate:"max=200"`
	Content string       `json:"content" validate:"required,max=5000"`
	Image   *ImageUpload `json:"-" validate:"-"`
}

// Normalize trims the free-text fields.
func (f *ReviewForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

type ReviewUpdate struct {
	Name       *string `json:"name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Rating     *int    `json:"rating,omitempty"`
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	IsApproved *bool   `json:"is_approved,omitempty"`
	IsFeatured *bool   `json:"is_featured,omitempty"`
	AdminNotes *string `json:"admin_notes,omitempty"`
}

// ImportedReview is one entry of the legacy review import payload.
type ImportedReview struct {
	Name         string `json:"name"`
	Rating       int    `json:"rating"`
	Content      string `json:"content"`
	Title        string `json:"title,omitempty"`
	Email        string `json:"email,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	ImportSource string `json:"import_source,omitempty"`
	ExternalID   string `json:"external_id,omitempty"`
}

type ReviewImport struct {
	Reviews []ImportedReview `json:"reviews"`
	Source  string           `json:"source"`
}

type ReviewImportResult struct {
	Message       string `json:"message"`
	ImportedCount int    `json:"imported_count"`
}
