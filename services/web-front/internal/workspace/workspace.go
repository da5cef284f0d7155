package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/session"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
	"github.com/baronblk/guestbook-project/services/web-front/internal/store"
)

// Flash levels.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

type Flash struct {
	Level   string
	Message string
}

// Workspace is the state one browser keeps between requests: its session,
// its lists and the notices waiting to be shown.
type Workspace struct {
	ID string

	API          *client.Client
	Storage      storage.Storage
	Auth         *store.AuthStore
	Reviews      *store.ReviewStore
	AdminReviews *store.ReviewStore
	Pending      *store.ReviewStore
	Comments     *store.CommentPanel
	Users        *store.UserStore
	Backup       *store.BackupService
	Timer        *session.Timer
	Monitor      *session.Monitor
	Signal       *session.ExpirySignal
	Session      *session.Manager

	cfg *config.WebConfig
	log *logger.Logger

	boot sync.Once

	mu       sync.Mutex
	path     string
	flashes  []Flash
	redirect string
	threads  map[int]*store.CommentThread
	lastSeen time.Time
	closed   bool
}

// New wires a workspace on top of base, with every key scoped to id.
func New(id string, cfg *config.WebConfig, base storage.Storage, log *logger.Logger) *Workspace {
	log = log.WithField("workspace", shortID(id))
	st := storage.Namespace(base, id)
	api := client.New(cfg.ApiBaseURL, cfg.RequestTimeout, log)

	ws := &Workspace{
		ID:       id,
		API:      api,
		Storage:  st,
		cfg:      cfg,
		log:      log,
		path:     "/",
		threads:  make(map[int]*store.CommentThread),
		lastSeen: time.Now(),
	}
	ws.Auth = store.NewAuthStore(api, st, log)
	ws.Reviews = store.NewReviewStore(api, store.ScopePublic, cfg.ReviewsPerPage, log)
	ws.Reviews.SetMaxImageBytes(cfg.MaxImageBytes)
	ws.AdminReviews = store.NewReviewStore(api, store.ScopeAdmin, cfg.ReviewsPerPage, log)
	ws.Pending = store.NewReviewStore(api, store.ScopePending, cfg.ReviewsPerPage, log)
	ws.Comments = store.NewCommentPanel(api, st, cfg.CommentsPerPage, log)
	ws.Users = store.NewUserStore(api, 20, log)
	ws.Backup = store.NewBackupService(api, ws.AdminReviews, log)

	ws.Timer = session.NewTimer()
	ws.Signal = session.NewExpirySignal()
	ws.Session = session.NewManager(ws.Auth, st, ws.Signal, ws, log)
	ws.Monitor = session.NewMonitor(ws.Auth, ws.Timer, session.MonitorConfig{
		Interval:    cfg.SessionCheckInterval,
		AutoRefresh: cfg.SessionAutoRefresh,
		OnWarning: func(w session.Warning) {
			ws.Flash(FlashWarning, w.Message)
		},
		OnExpire: func(reason string) {
			ws.Session.Expire(reason)
		},
	}, log)

	api.SetTokenSource(ws.Auth.Token)
	api.SetAuthFailureHandler(func(e *client.APIError) {
		log.Debugf("auth failure %d, expiring session", e.StatusCode)
		ws.Session.Expire(session.ReasonUnauthorized)
	})
	ws.Auth.OnTokenChange(ws.tokenChanged)
	return ws
}

// tokenChanged keeps the timer and monitor in step with the session. A
// closed workspace never starts them again.
func (ws *Workspace) tokenChanged(token string) {
	ws.mu.Lock()
	closed := ws.closed
	ws.mu.Unlock()
	if token == "" || closed {
		ws.Timer.SetToken("")
		ws.Monitor.Stop()
		return
	}
	ws.Timer.SetToken(token)
	ws.Monitor.Start()
}

// Bootstrap restores a persisted session, consumes a pending expiry flag
// and revalidates the profile. It runs once per workspace.
func (ws *Workspace) Bootstrap(ctx context.Context) {
	ws.boot.Do(func() {
		if ws.Auth.Restore(ctx) {
			ws.log.Debug("session restored from storage")
		}
		ws.Session.Bootstrap(ctx)
		ws.Auth.CheckAuth(ctx)
	})
}

// Visit records the view the browser is on.
func (ws *Workspace) Visit(path string) {
	ws.mu.Lock()
	ws.path = path
	ws.lastSeen = time.Now()
	ws.mu.Unlock()
}

func (ws *Workspace) CurrentPath() string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.path
}

func (ws *Workspace) Flash(level, message string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, f := range ws.flashes {
		if f == (Flash{Level: level, Message: message}) {
			return
		}
	}
	ws.flashes = append(ws.flashes, Flash{Level: level, Message: message})
}

// Flashes drains the queued notices.
func (ws *Workspace) Flashes() []Flash {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	out := ws.flashes
	ws.flashes = nil
	return out
}

func (ws *Workspace) Redirect(path string) {
	ws.mu.Lock()
	ws.redirect = path
	ws.mu.Unlock()
}

// TakeRedirect returns and clears a redirect queued by the session manager.
func (ws *Workspace) TakeRedirect() (string, bool) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	p := ws.redirect
	ws.redirect = ""
	return p, p != ""
}

// Thread returns the comment thread of a review, creating it on first use.
func (ws *Workspace) Thread(reviewID int) *store.CommentThread {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	t, ok := ws.threads[reviewID]
	if !ok {
		t = store.NewCommentThread(ws.API, reviewID, ws.cfg.CommentsPerPage, ws.log)
		ws.threads[reviewID] = t
	}
	return t
}

// Extend keeps the session alive: with a refresh token a new access token is
// obtained, otherwise the current one is revalidated.
func (ws *Workspace) Extend(ctx context.Context) bool {
	if ws.Auth.RefreshToken() != "" {
		return ws.Auth.RefreshSession(ctx)
	}
	return ws.Auth.ValidateSession(ctx)
}

// SessionStatus is the countdown reported to the browser.
type SessionStatus struct {
	Authenticated bool   `json:"authenticated"`
	TimeLeft      int    `json:"time_left"`
	Formatted     string `json:"formatted"`
	Known         bool   `json:"known"`
	ExpiringSoon  bool   `json:"expiring_soon"`
	Expired       bool   `json:"expired"`
	State         string `json:"state"`
	Redirect      string `json:"redirect,omitempty"`
}

func (ws *Workspace) Status() SessionStatus {
	st := SessionStatus{
		Authenticated: ws.Auth.IsAuthenticated(),
		TimeLeft:      ws.Timer.TimeLeft(),
		Formatted:     ws.Timer.FormatTimeLeft(),
		Known:         ws.Timer.Known(),
		ExpiringSoon:  ws.Timer.IsExpiringSoon(),
		Expired:       ws.Timer.IsExpired(),
		State:         ws.Monitor.State().String(),
	}
	if !st.Authenticated {
		st.State = session.StateLoggedOut.String()
	}
	return st
}

func (ws *Workspace) touch(now time.Time) {
	ws.mu.Lock()
	ws.lastSeen = now
	ws.mu.Unlock()
}

func (ws *Workspace) idleSince(now time.Time) time.Duration {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return now.Sub(ws.lastSeen)
}

// Close stops the background work of the workspace.
func (ws *Workspace) Close() {
	ws.mu.Lock()
	ws.closed = true
	ws.mu.Unlock()
	ws.Monitor.Stop()
	ws.Timer.Stop()
	ws.Session.Close()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
