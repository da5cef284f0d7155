package client

import (
	"context"
	"net/http"

	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

func (c *Client) Login(ctx context.Context, form domain.LoginForm) (*domain.Token, error) {
	var out domain.Token
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", nil, form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.Token, error) {
	var out domain.Token
	in := map[string]string{"refresh_token": refreshToken}
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/refresh", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the profile of the admin the current token belongs to.
func (c *Client) Me(ctx context.Context) (*domain.AdminUser, error) {
	var out domain.AdminUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, in domain.PasswordChange) (*domain.Message, error) {
	var out domain.Message
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/change-password", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
