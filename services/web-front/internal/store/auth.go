package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
)

var ErrNotAuthenticated = errors.New("not authenticated")

const storageTimeout = 5 * time.Second

// authSnapshot is the JSON stored under auth-storage.
type authSnapshot struct {
	Token string            `json:"token"`
	User  *domain.AdminUser `json:"user"`
}

// AuthStore owns the admin session of one workspace. Every other component
// asks it whether a user is logged in.
type AuthStore struct {
	api   *client.Client
	store storage.Storage
	log   *logger.Logger

	mu           sync.Mutex
	token        string
	refreshToken string
	user         *domain.AdminUser
	loading      bool
	err          string
	gen          uint64
	listeners    []func(token string)
}

func NewAuthStore(api *client.Client, store storage.Storage, log *logger.Logger) *AuthStore {
	return &AuthStore{api: api, store: store, log: log}
}

// OnTokenChange registers fn to be called with the new token whenever it
// changes. An empty token means logged out.
func (a *AuthStore) OnTokenChange(fn func(token string)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *AuthStore) notify(token string) {
	a.mu.Lock()
	fns := append([]func(string){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range fns {
		fn(token)
	}
}

// Login exchanges credentials for tokens and loads the admin profile.
// A failing profile request does not fail the login unless it ended the
// session.
func (a *AuthStore) Login(ctx context.Context, form domain.LoginForm) bool {
	if err := domain.Validate(&form); err != nil {
		a.setError(err.Error())
		return false
	}
	a.mu.Lock()
	a.loading, a.err = true, ""
	a.mu.Unlock()

	tok, err := a.api.Login(ctx, form)
	if err != nil {
		a.log.Infof("login failed for %s: %v", form.Username, err)
		a.mu.Lock()
		a.loading, a.err = false, client.Message(err)
		a.mu.Unlock()
		return false
	}

	a.mu.Lock()
	a.token, a.refreshToken = tok.AccessToken, tok.RefreshToken
	a.gen++
	a.mu.Unlock()

	user, err := a.api.Me(ctx)
	if err != nil {
		a.log.Warnf("profile fetch after login failed: %v", err)
		user = &domain.AdminUser{Username: form.Username, Role: domain.RoleModerator, IsActive: true}
	}

	a.mu.Lock()
	// the profile request may have ended the session already
	if a.token != tok.AccessToken {
		a.loading, a.err = false, "Session could not be established"
		a.mu.Unlock()
		return false
	}
	a.user = user
	a.loading = false
	a.mu.Unlock()

	a.persist(ctx)
	a.log.Infof("admin %s logged in", form.Username)
	a.notify(tok.AccessToken)
	return true
}

// Logout clears the session in memory and in storage. It reports whether a
// token was present.
func (a *AuthStore) Logout() bool {
	a.mu.Lock()
	had := a.token != ""
	a.token, a.refreshToken, a.user, a.err = "", "", nil, ""
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := a.store.Delete(ctx, storage.KeyAdminToken, storage.KeyRefreshToken, storage.KeyAuthSnapshot); err != nil {
		a.log.Warnf("clear persisted session: %v", err)
	}
	if had {
		a.notify("")
	}
	return had
}

// CheckAuth refreshes the profile of a restored session. Auth failures end
// the session silently; other failures keep the token.
func (a *AuthStore) CheckAuth(ctx context.Context) {
	if a.Token() == "" {
		return
	}
	user, err := a.api.Me(ctx)
	if err != nil {
		if client.IsAuthError(err) {
			a.Logout()
			return
		}
		a.log.Warnf("check auth: %v", err)
		return
	}
	a.mu.Lock()
	a.user = user
	a.mu.Unlock()
	a.persist(ctx)
}

// ValidateSession probes the server with the current token. Only an explicit
// 401/403 counts as invalid.
func (a *AuthStore) ValidateSession(ctx context.Context) bool {
	if a.Token() == "" {
		return false
	}
	if _, err := a.api.Me(ctx); err != nil {
		if client.IsAuthError(err) {
			a.Logout()
			return false
		}
		a.log.Debugf("validate session: %v", err)
	}
	return true
}

// RefreshSession trades the refresh token for a new access token and keeps the user.
func (a *AuthStore) RefreshSession(ctx context.Context) bool {
	rt := a.RefreshToken()
	if rt == "" {
		return false
	}
	tok, err := a.api.Refresh(ctx, rt)
	if err != nil {
		if client.IsAuthError(err) {
			a.Logout()
		} else {
			a.log.Warnf("refresh session: %v", err)
		}
		return false
	}
	a.mu.Lock()
	if a.token == "" {
		// logged out while the refresh was in flight
		a.mu.Unlock()
		return false
	}
	a.token = tok.AccessToken
	if tok.RefreshToken != "" {
		a.refreshToken = tok.RefreshToken
	}
	a.mu.Unlock()

	a.persist(ctx)
	a.notify(tok.AccessToken)
	return true
}

// Restore loads a session persisted by an earlier workspace. It reports
// whether a token was found.
func (a *AuthStore) Restore(ctx context.Context) bool {
	var snap authSnapshot
	if raw, ok, err := a.store.Get(ctx, storage.KeyAuthSnapshot); err == nil && ok {
		if err := json.Unmarshal([]byte(raw), &snap); err != nil {
			a.log.Warnf("discarding unreadable auth snapshot: %v", err)
			snap = authSnapshot{}
		}
	}
	if snap.Token == "" {
		if tok, ok, err := a.store.Get(ctx, storage.KeyAdminToken); err == nil && ok {
			snap.Token = tok
		}
	}
	if snap.Token == "" {
		return false
	}
	rt, _, _ := a.store.Get(ctx, storage.KeyRefreshToken)

	a.mu.Lock()
	a.token, a.refreshToken, a.user = snap.Token, rt, snap.User
	a.gen++
	a.mu.Unlock()
	a.notify(snap.Token)
	return true
}

func (a *AuthStore) persist(ctx context.Context) {
	a.mu.Lock()
	token, rt := a.token, a.refreshToken
	snap := authSnapshot{Token: a.token, User: a.user}
	a.mu.Unlock()
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storageTimeout)
	defer cancel()

	if err := a.store.Set(ctx, storage.KeyAdminToken, token); err != nil {
		a.log.Warnf("persist token: %v", err)
	}
	if rt != "" {
		if err := a.store.Set(ctx, storage.KeyRefreshToken, rt); err != nil {
			a.log.Warnf("persist refresh token: %v", err)
		}
	} else if err := a.store.Delete(ctx, storage.KeyRefreshToken); err != nil {
		a.log.Warnf("clear refresh token: %v", err)
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := a.store.Set(ctx, storage.KeyAuthSnapshot, string(raw)); err != nil {
		a.log.Warnf("persist auth snapshot: %v", err)
	}
}

func (a *AuthStore) setError(msg string) {
	a.mu.Lock()
	a.err = msg
	a.mu.Unlock()
}

func (a *AuthStore) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

func (a *AuthStore) RefreshToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshToken
}

// User returns a copy of the logged-in admin, or nil.
func (a *AuthStore) User() *domain.AdminUser {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// Session returns the token together with the login generation it belongs to.
func (a *AuthStore) Session() (string, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token, a.gen
}

func (a *AuthStore) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

func (a *AuthStore) IsAuthenticated() bool {
	return a.Token() != ""
}

func (a *AuthStore) Error() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *AuthStore) ClearError() {
	a.setError("")
}

func (a *AuthStore) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}
