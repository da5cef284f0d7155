package store

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
)

func newAuth(b *backend) (*AuthStore, storage.Storage) {
	st := storage.NewMemory()
	api := b.client()
	a := NewAuthStore(api, st, logger.Discard())
	api.SetTokenSource(a.Token)
	return a, st
}

func loginRoutes(b *backend, meStatus int) {
	b.handle("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "access-1", "refresh_token": "refresh-1", "token_type": "bearer"})
	})
	b.handle("GET /api/admin/me", func(w http.ResponseWriter, r *http.Request) {
		if meStatus != http.StatusOK {
			writeJSON(w, meStatus, map[string]string{"detail": "nope"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer access-1" && r.Header.Get("Authorization") != "Bearer access-2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "missing token"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "username": "root", "email": "root@example.com", "is_active": true, "role": "superuser"})
	})
}

func TestLoginPersistsSession(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusOK)
	a, st := newAuth(b)

	var seen []string
	a.OnTokenChange(func(tok string) { seen = append(seen, tok) })

	if !a.Login(context.Background(), domain.LoginForm{Username: "root", Password: "pw"}) {
		t.Fatalf("Login failed: %s", a.Error())
	}
	if a.Token() != "access-1" || a.RefreshToken() != "refresh-1" {
		t.Errorf("tokens = %q %q", a.Token(), a.RefreshToken())
	}
	if u := a.User(); u == nil || u.Role != domain.RoleSuperuser {
		t.Errorf("user = %+v", u)
	}
	if _, gen := a.Session(); gen != 1 {
		t.Errorf("generation = %d, want 1", gen)
	}
	if len(seen) != 1 || seen[0] != "access-1" {
		t.Errorf("token listeners saw %v", seen)
	}

	ctx := context.Background()
	if v, _, _ := st.Get(ctx, storage.KeyAdminToken); v != "access-1" {
		t.Errorf("admin_token = %q", v)
	}
	if v, _, _ := st.Get(ctx, storage.KeyRefreshToken); v != "refresh-1" {
		t.Errorf("refresh_token = %q", v)
	}
	raw, ok, _ := st.Get(ctx, storage.KeyAuthSnapshot)
	if !ok {
		t.Fatal("auth-storage missing")
	}
	var snap authSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil || snap.Token != "access-1" || snap.User == nil || snap.User.Username != "root" {
		t.Errorf("auth-storage = %s (%v)", raw, err)
	}
}

func TestLoginReplacesPreviousRefreshToken(t *testing.T) {
	b := newBackend(t)
	logins := 0
	b.handle("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		if logins == 1 {
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "access-1", "refresh_token": "refresh-1", "token_type": "bearer"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "access-2", "token_type": "bearer"})
	})
	b.handle("GET /api/admin/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 8, "username": "mod", "is_active": true, "role": "moderator"})
	})
	a, st := newAuth(b)
	ctx := context.Background()

	if !a.Login(ctx, domain.LoginForm{Username: "root", Password: "pw"}) {
		t.Fatalf("first Login failed: %s", a.Error())
	}
	if !a.Login(ctx, domain.LoginForm{Username: "mod", Password: "pw"}) {
		t.Fatalf("second Login failed: %s", a.Error())
	}
	if a.Token() != "access-2" || a.RefreshToken() != "" {
		t.Errorf("tokens = %q %q, want access-2 and no refresh token", a.Token(), a.RefreshToken())
	}
	if _, ok, _ := st.Get(ctx, storage.KeyRefreshToken); ok {
		t.Error("refresh_token of the previous login still persisted")
	}
}

func TestLoginFallsBackToLeastPrivilege(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusInternalServerError)
	a, _ := newAuth(b)

	if !a.Login(context.Background(), domain.LoginForm{Username: "mod", Password: "pw"}) {
		t.Fatal("profile failure failed the login")
	}
	u := a.User()
	if u == nil || u.Username != "mod" || u.Role != domain.RoleModerator {
		t.Errorf("fallback user = %+v", u)
	}
}

func TestLoginFailsWhenProfileEndsSession(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusUnauthorized)
	st := storage.NewMemory()
	api := b.client()
	a := NewAuthStore(api, st, logger.Discard())
	api.SetTokenSource(a.Token)
	api.SetAuthFailureHandler(func(*client.APIError) { a.Logout() })

	if a.Login(context.Background(), domain.LoginForm{Username: "root", Password: "pw"}) {
		t.Fatal("Login succeeded after the session was ended")
	}
	if a.IsAuthenticated() {
		t.Error("still authenticated")
	}
	if a.Error() != "Session could not be established" {
		t.Errorf("Error() = %q", a.Error())
	}
	if _, ok, _ := st.Get(context.Background(), storage.KeyAdminToken); ok {
		t.Error("token persisted")
	}
}

func TestLoginFailureRecordsMessage(t *testing.T) {
	b := newBackend(t)
	b.handle("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	})
	a, st := newAuth(b)

	if a.Login(context.Background(), domain.LoginForm{Username: "x", Password: "y"}) {
		t.Fatal("Login succeeded")
	}
	if a.Error() != "Incorrect username or password" {
		t.Errorf("Error() = %q", a.Error())
	}
	if a.IsAuthenticated() {
		t.Error("authenticated after failure")
	}
	if _, ok, _ := st.Get(context.Background(), storage.KeyAdminToken); ok {
		t.Error("token persisted after failure")
	}
	a.ClearError()
	if a.Error() != "" {
		t.Error("ClearError kept the message")
	}
}

func TestLoginValidation(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusOK)
	a, _ := newAuth(b)

	if a.Login(context.Background(), domain.LoginForm{Username: "root"}) {
		t.Fatal("Login without password succeeded")
	}
	if b.count("POST /api/admin/login") != 0 {
		t.Error("invalid form reached the network")
	}
}

func TestLogoutIdempotent(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusOK)
	a, st := newAuth(b)
	a.Login(context.Background(), domain.LoginForm{Username: "root", Password: "pw"})

	var cleared int
	a.OnTokenChange(func(tok string) {
		if tok == "" {
			cleared++
		}
	})
	if !a.Logout() {
		t.Error("first Logout reported no session")
	}
	if a.Logout() {
		t.Error("second Logout reported a session")
	}
	if cleared != 1 {
		t.Errorf("logout notifications = %d, want 1", cleared)
	}
	for _, k := range []string{storage.KeyAdminToken, storage.KeyRefreshToken, storage.KeyAuthSnapshot} {
		if _, ok, _ := st.Get(context.Background(), k); ok {
			t.Errorf("%s still persisted", k)
		}
	}
	if a.User() != nil {
		t.Error("user kept after logout")
	}
}

func TestValidateSession(t *testing.T) {
	cases := []struct {
		name      string
		status    int
		wantValid bool
		wantAuth  bool
	}{
		{"ok", http.StatusOK, true, true},
		{"unauthorized", http.StatusUnauthorized, false, false},
		{"forbidden", http.StatusForbidden, false, false},
		{"server error", http.StatusBadGateway, true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := newBackend(t)
			b.handle("GET /api/admin/me", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, map[string]interface{}{"id": 1, "username": "root"})
			})
			a, st := newAuth(b)
			_ = st.Set(context.Background(), storage.KeyAdminToken, "tok")
			a.Restore(context.Background())

			if got := a.ValidateSession(context.Background()); got != tc.wantValid {
				t.Errorf("ValidateSession = %v, want %v", got, tc.wantValid)
			}
			if a.IsAuthenticated() != tc.wantAuth {
				t.Errorf("IsAuthenticated = %v, want %v", a.IsAuthenticated(), tc.wantAuth)
			}
		})
	}
}

func TestRefreshSession(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusOK)
	b.handle("POST /api/admin/refresh", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "refresh-1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "bad refresh"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": "access-2"})
	})
	a, st := newAuth(b)
	a.Login(context.Background(), domain.LoginForm{Username: "root", Password: "pw"})

	if !a.RefreshSession(context.Background()) {
		t.Fatal("RefreshSession failed")
	}
	if a.Token() != "access-2" || a.RefreshToken() != "refresh-1" {
		t.Errorf("tokens after refresh = %q %q", a.Token(), a.RefreshToken())
	}
	if u := a.User(); u == nil || u.Username != "root" {
		t.Errorf("user lost on refresh: %+v", u)
	}
	if _, gen := a.Session(); gen != 1 {
		t.Errorf("refresh changed the generation to %d", gen)
	}
	if v, _, _ := st.Get(context.Background(), storage.KeyAdminToken); v != "access-2" {
		t.Errorf("persisted token = %q", v)
	}
}

func TestRefreshSessionRejected(t *testing.T) {
	b := newBackend(t)
	loginRoutes(b, http.StatusOK)
	b.handle("POST /api/admin/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	})
	a, _ := newAuth(b)
	a.Login(context.Background(), domain.LoginForm{Username: "root", Password: "pw"})

	if a.RefreshSession(context.Background()) {
		t.Fatal("RefreshSession succeeded")
	}
	if a.IsAuthenticated() {
		t.Error("rejected refresh kept the session")
	}
}

func TestCheckAuth(t *testing.T) {
	for _, tc := range []struct {
		status   int
		wantAuth bool
	}{
		{http.StatusForbidden, false},
		{http.StatusServiceUnavailable, true},
	} {
		b := newBackend(t)
		b.handle("GET /api/admin/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, map[string]string{"detail": "x"})
		})
		a, st := newAuth(b)
		_ = st.Set(context.Background(), storage.KeyAdminToken, "stale")
		a.Restore(context.Background())
		a.CheckAuth(context.Background())

		if a.IsAuthenticated() != tc.wantAuth {
			t.Errorf("status %d: IsAuthenticated = %v", tc.status, a.IsAuthenticated())
		}
		if a.Error() != "" {
			t.Errorf("status %d: CheckAuth surfaced %q", tc.status, a.Error())
		}
	}
}

func TestRestoreFromSnapshot(t *testing.T) {
	b := newBackend(t)
	a, st := newAuth(b)
	ctx := context.Background()
	_ = st.Set(ctx, storage.KeyAuthSnapshot, `{"token":"snap","user":{"id":3,"username":"eva","role":"admin"}}`)
	_ = st.Set(ctx, storage.KeyRefreshToken, "r")

	if !a.Restore(ctx) {
		t.Fatal("Restore found nothing")
	}
	if a.Token() != "snap" || a.RefreshToken() != "r" {
		t.Errorf("tokens = %q %q", a.Token(), a.RefreshToken())
	}
	if u := a.User(); u == nil || u.Role != domain.RoleAdmin {
		t.Errorf("user = %+v", u)
	}
}

func TestRestoreIgnoresBrokenSnapshot(t *testing.T) {
	b := newBackend(t)
	a, st := newAuth(b)
	ctx := context.Background()
	_ = st.Set(ctx, storage.KeyAuthSnapshot, `{not json`)

	if a.Restore(ctx) {
		t.Error("Restore accepted a broken snapshot")
	}
	_ = st.Set(ctx, storage.KeyAdminToken, "plain")
	if !a.Restore(ctx) || a.Token() != "plain" {
		t.Errorf("Restore from admin_token: %q", a.Token())
	}
}
