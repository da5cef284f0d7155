package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

func pageValues(page, perPage int) url.Values {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		v.Set("per_page", strconv.Itoa(perPage))
	}
	return v
}

// AdminListReviews lists all reviews; approvedOnly narrows to one visibility state.
func (c *Client) AdminListReviews(ctx context.Context, page, perPage int, approvedOnly *bool) (*domain.ReviewList, error) {
	q := pageValues(page, perPage)
	if approvedOnly != nil {
		q.Set("approved_only", strconv.FormatBool(*approvedOnly))
	}
	var out domain.ReviewList
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/reviews", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminGetReview(ctx context.Context, id int) (*domain.Review, error) {
	var out domain.Review
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/admin/reviews/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PendingReviews(ctx context.Context, page, perPage int) (*domain.ReviewList, error) {
	var out domain.ReviewList
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/reviews/pending", pageValues(page, perPage), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateReview(ctx context.Context, id int, in domain.ReviewUpdate) (*domain.Review, error) {
	var out domain.Review
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/admin/reviews/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReview(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/reviews/%d", id), nil, nil, nil)
}

func (c *Client) ApproveReview(ctx context.Context, id int) (*domain.Review, error) {
	var out domain.Review
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/admin/reviews/%d/approve", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RejectReview(ctx context.Context, id int) (*domain.Review, error) {
	var out domain.Review
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/admin/reviews/%d/reject", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminStats(ctx context.Context) (*domain.ReviewStats, error) {
	var out domain.ReviewStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users

func (c *Client) ListUsers(ctx context.Context, page, perPage int) (*domain.AdminUserList, error) {
	var out domain.AdminUserList
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", pageValues(page, perPage), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id int) (*domain.AdminUser, error) {
	var out domain.AdminUser
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateUser(ctx context.Context, in domain.AdminUserCreate) (*domain.AdminUser, error) {
	var out domain.AdminUser
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/users", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, in domain.AdminUserUpdate) (*domain.AdminUser, error) {
	var out domain.AdminUser
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/admin/users/%d", id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", id), nil, nil, nil)
}

func (c *Client) ActivateUser(ctx context.Context, id int) (*domain.AdminUser, error) {
	var out domain.AdminUser
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/activate", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeactivateUser(ctx context.Context, id int) (*domain.AdminUser, error) {
	var out domain.AdminUser
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/deactivate", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Backup

func (c *Client) Export(ctx context.Context) (*domain.LegacyExport, error) {
	var out domain.LegacyExport
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/export", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ExportFull(ctx context.Context) (*domain.FullExport, error) {
	var out domain.FullExport
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/export/full", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImportFull posts a complete backup. replaceExisting wipes current data first.
func (c *Client) ImportFull(ctx context.Context, in domain.FullImport, replaceExisting bool) (*domain.ImportResult, error) {
	q := url.Values{}
	q.Set("replace_existing", strconv.FormatBool(replaceExisting))
	var out domain.ImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/import/full", q, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ImportReviews(ctx context.Context, in domain.ReviewImport) (*domain.ReviewImportResult, error) {
	var out domain.ReviewImportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/reviews/import", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportRaw returns the legacy export body untouched, for file downloads.
func (c *Client) ExportRaw(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/export", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
