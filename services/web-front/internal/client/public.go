package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

type ImagePath struct {
	ImagePath string `json:"image_path"`
}

func (c *Client) ListReviews(ctx context.Context, q domain.ReviewQuery) (*domain.ReviewList, error) {
	var out domain.ReviewList
	if err := c.doJSON(ctx, http.MethodGet, "/api/reviews", q.Values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetReview(ctx context.Context, id int) (*domain.Review, error) {
	var out domain.Review
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/reviews/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateReview(ctx context.Context, form domain.ReviewForm) (*domain.Review, error) {
	var out domain.Review
	if err := c.doJSON(ctx, http.MethodPost, "/api/reviews", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadReviewImage attaches an image to an existing review.
func (c *Client) UploadReviewImage(ctx context.Context, reviewID int, filename string, r io.Reader) (*ImagePath, error) {
	var out ImagePath
	if err := c.upload(ctx, fmt.Sprintf("/api/reviews/%d/image", reviewID), "file", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (*domain.ReviewStats, error) {
	var out domain.ReviewStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
