package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
)

const (
	LoginPath       = "/admin/login"
	ExpiredMessage  = "Your session has expired. Please log in again."
	flagValue       = "true"
	storageDeadline = 5 * time.Second
)

// IsProtectedPath reports whether path is part of the admin area, login excluded.
func IsProtectedPath(path string) bool {
	if path != "/admin" && !strings.HasPrefix(path, "/admin/") {
		return false
	}
	return path != LoginPath
}

// Auth is the part of the auth store the manager drives.
type Auth interface {
	Logout() bool
	Generation() uint64
}

// Navigator is the view side of a workspace.
type Navigator interface {
	CurrentPath() string
	Flash(level, message string)
	Redirect(path string)
}

// Manager turns expiry signals into a logout, a notice and a redirect to the login view.
type Manager struct {
	auth   Auth
	store  storage.Storage
	signal *ExpirySignal
	nav    Navigator
	log    *logger.Logger
	now    func() time.Time

	mu          sync.Mutex
	signalled   bool
	lastGen     uint64
	unsubscribe func()
}

func NewManager(auth Auth, store storage.Storage, signal *ExpirySignal, nav Navigator, log *logger.Logger) *Manager {
	m := &Manager{
		auth:   auth,
		store:  store,
		signal: signal,
		nav:    nav,
		log:    log,
		now:    time.Now,
	}
	m.unsubscribe = signal.Subscribe(m.handle)
	return m
}

// Expire ends the current session. The one-shot flag is written and the
// signal published at most once per session generation, and only while the
// user is on a protected view. It reports whether a signal was published.
func (m *Manager) Expire(reason string) bool {
	gen := m.auth.Generation()
	m.auth.Logout()

	path := m.nav.CurrentPath()
	if !IsProtectedPath(path) {
		return false
	}
	m.mu.Lock()
	if m.signalled && m.lastGen == gen {
		m.mu.Unlock()
		return false
	}
	m.signalled, m.lastGen = true, gen
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storageDeadline)
	defer cancel()
	if err := m.store.Set(ctx, storage.KeySessionExpired, flagValue); err != nil {
		m.log.Warnf("persist session_expired flag: %v", err)
	}
	m.log.Infof("session expired (%s) on %s", reason, path)
	m.signal.Publish(ExpiryEvent{Reason: reason, Path: path, At: m.now()})
	return true
}

func (m *Manager) handle(ev ExpiryEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), storageDeadline)
	defer cancel()
	if !m.consumeFlag(ctx) {
		return
	}
	m.nav.Flash("error", ExpiredMessage)
	m.nav.Redirect(LoginPath)
}

// Bootstrap consumes a flag left behind by an earlier process.
func (m *Manager) Bootstrap(ctx context.Context) bool {
	if !m.consumeFlag(ctx) {
		return false
	}
	m.auth.Logout()
	m.nav.Flash("error", ExpiredMessage)
	if IsProtectedPath(m.nav.CurrentPath()) {
		m.nav.Redirect(LoginPath)
	}
	return true
}

func (m *Manager) consumeFlag(ctx context.Context) bool {
	v, ok, err := m.store.Get(ctx, storage.KeySessionExpired)
	if err != nil {
		m.log.Warnf("read session_expired flag: %v", err)
		return false
	}
	if !ok || v != flagValue {
		return false
	}
	if err := m.store.Delete(ctx, storage.KeySessionExpired); err != nil {
		m.log.Warnf("clear session_expired flag: %v", err)
	}
	return true
}

// Close detaches the manager from its signal.
func (m *Manager) Close() {
	m.mu.Lock()
	unsub := m.unsubscribe
	m.unsubscribe = nil
	m.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
