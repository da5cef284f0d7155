package domain

import (
	"strings"
	"time"
)

type Comment struct {
	ID         int        `json:"id"`
	ReviewID   int        `json:"review_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email,omitempty"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	IsApproved bool       `json:"is_approved"`
	AdminNotes string     `json:"admin_notes,omitempty"`
}

// AdminComment is a comment with a summary of its parent review.
type AdminComment struct {
	Comment
	ReviewAuthor string `json:"review_author"`
	ReviewTitle  string `json:"review_title,omitempty"`
	ReviewRating int    `json:"review_rating"`
}

type CommentList struct {
	Comments   []Comment `json:"comments"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
}

type AdminCommentList struct {
	Comments   []AdminComment `json:"comments"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

func (l *AdminCommentList) Pagination() Pagination {
	return Pagination{Page: l.Page, PerPage: l.PerPage, Total: l.Total, TotalPages: l.TotalPages}
}

type CommentCount struct {
	Count int `json:"count"`
}

type CommentForm struct {
	ReviewID int    `json:"review_id" validate:"min=1"`
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Content  string `json:"content" validate:"required,max=2000"`
}

func (f *CommentForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Content = strings.TrimSpace(f.Content)
}
