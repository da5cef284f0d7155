package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

func (c *Client) ReviewComments(ctx context.Context, reviewID, page, perPage int) (*domain.CommentList, error) {
	var out domain.CommentList
	path := fmt.Sprintf("/api/reviews/%d/comments", reviewID)
	if err := c.doJSON(ctx, http.MethodGet, path, pageValues(page, perPage), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateComment(ctx context.Context, form domain.CommentForm) (*domain.Comment, error) {
	var out domain.Comment
	path := fmt.Sprintf("/api/reviews/%d/comments", form.ReviewID)
	if err := c.doJSON(ctx, http.MethodPost, path, nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminComments(ctx context.Context, page, perPage int) (*domain.AdminCommentList, error) {
	var out domain.AdminCommentList
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/comments", pageValues(page, perPage), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) PendingComments(ctx context.Context, page, perPage int) (*domain.AdminCommentList, error) {
	var out domain.AdminCommentList
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/comments/pending", pageValues(page, perPage), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CountAllComments(ctx context.Context) (int, error) {
	var out domain.CommentCount
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/comments/count/all", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) CountPendingComments(ctx context.Context) (int, error) {
	var out domain.CommentCount
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/comments/count/pending", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) ApproveComment(ctx context.Context, id int) (*domain.Comment, error) {
	var out domain.Comment
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/admin/comments/%d/approve", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, id int) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/comments/%d", id), nil, nil, nil)
}
