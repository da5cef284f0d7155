package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
)

type fakeAuth struct {
	mu           sync.Mutex
	token        string
	refreshToken string
	valid        bool
	refreshOK    bool
	onRefresh    func()
	validations  int
	refreshes    int
	logouts      int
	gen          uint64
}

func (a *fakeAuth) ValidateSession(context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.validations++
	if !a.valid {
		a.token = ""
	}
	return a.valid
}

func (a *fakeAuth) RefreshSession(context.Context) bool {
	a.mu.Lock()
	a.refreshes++
	ok := a.refreshOK
	if !ok {
		a.token = ""
	}
	fn := a.onRefresh
	a.mu.Unlock()
	if ok && fn != nil {
		fn()
	}
	return ok
}

func (a *fakeAuth) RefreshToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshToken
}

func (a *fakeAuth) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token != ""
}

func (a *fakeAuth) Logout() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logouts++
	had := a.token != ""
	a.token = ""
	return had
}

func (a *fakeAuth) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

type fakeCountdown struct {
	mu    sync.Mutex
	left  int
	known bool
}

func (c *fakeCountdown) TimeLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

func (c *fakeCountdown) Known() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.known
}

func (c *fakeCountdown) set(left int) {
	c.mu.Lock()
	c.left, c.known = left, true
	c.mu.Unlock()
}

type recorder struct {
	mu       sync.Mutex
	warnings []Warning
	expiries []string
}

func (r *recorder) warn(w Warning) {
	r.mu.Lock()
	r.warnings = append(r.warnings, w)
	r.mu.Unlock()
}

func (r *recorder) expire(reason string) {
	r.mu.Lock()
	r.expiries = append(r.expiries, reason)
	r.mu.Unlock()
}

func (r *recorder) count(s State) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, w := range r.warnings {
		if w.State == s {
			n++
		}
	}
	return n
}

func newTestMonitor(auth *fakeAuth, clock *fakeCountdown, autoRefresh bool) (*Monitor, *recorder) {
	rec := &recorder{}
	m := NewMonitor(auth, clock, MonitorConfig{
		Interval:    time.Hour,
		AutoRefresh: autoRefresh,
		OnWarning:   rec.warn,
		OnExpire:    rec.expire,
	}, logger.Discard())
	return m, rec
}

func TestMonitorTenMinuteWarningOncePerBand(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: true}
	clock := &fakeCountdown{}
	m, rec := newTestMonitor(auth, clock, false)
	ctx := context.Background()

	clock.set(900)
	if s := m.Check(ctx); s != StateActive {
		t.Fatalf("state = %v, want active", s)
	}
	clock.set(590)
	m.Check(ctx)
	clock.set(560)
	if s := m.Check(ctx); s != StateWarning10 {
		t.Fatalf("state = %v, want warning10", s)
	}
	if n := rec.count(StateWarning10); n != 1 {
		t.Fatalf("10-minute warnings = %d, want 1", n)
	}

	// lifted above ten minutes, then back into the band
	clock.set(1800)
	m.Check(ctx)
	clock.set(500)
	m.Check(ctx)
	if n := rec.count(StateWarning10); n != 2 {
		t.Errorf("10-minute warnings after re-entry = %d, want 2", n)
	}
}

func TestMonitorFiveMinuteWarningEveryTick(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: true}
	clock := &fakeCountdown{}
	m, rec := newTestMonitor(auth, clock, false)

	clock.set(200)
	m.Check(context.Background())
	clock.set(100)
	if s := m.Check(context.Background()); s != StateWarning5 {
		t.Fatalf("state = %v, want warning5", s)
	}
	if n := rec.count(StateWarning5); n != 2 {
		t.Errorf("5-minute warnings = %d, want 2", n)
	}
}

func TestMonitorExpiry(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: true}
	clock := &fakeCountdown{}
	m, rec := newTestMonitor(auth, clock, false)

	clock.set(0)
	if s := m.Check(context.Background()); s != StateLoggedOut {
		t.Fatalf("state = %v, want logged_out", s)
	}
	if len(rec.expiries) != 1 || rec.expiries[0] != ReasonExpired {
		t.Errorf("expiries = %v", rec.expiries)
	}

	// no more warnings or signals until restarted
	clock.set(100)
	m.Check(context.Background())
	if len(rec.warnings) != 0 || len(rec.expiries) != 1 {
		t.Errorf("monitor kept acting after logout: %v %v", rec.warnings, rec.expiries)
	}
}

func TestMonitorInvalidSession(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: false}
	clock := &fakeCountdown{}
	m, rec := newTestMonitor(auth, clock, false)
	clock.set(3000)

	if s := m.Check(context.Background()); s != StateLoggedOut {
		t.Fatalf("state = %v", s)
	}
	if len(rec.expiries) != 1 || rec.expiries[0] != ReasonInvalid {
		t.Errorf("expiries = %v", rec.expiries)
	}
}

func TestMonitorAutoRefresh(t *testing.T) {
	clock := &fakeCountdown{}
	auth := &fakeAuth{token: "t", refreshToken: "r", valid: true, refreshOK: true}
	auth.onRefresh = func() { clock.set(3600) }
	m, rec := newTestMonitor(auth, clock, true)

	clock.set(400)
	if s := m.Check(context.Background()); s != StateActive {
		t.Fatalf("state after refresh = %v, want active", s)
	}
	if auth.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", auth.refreshes)
	}
	if len(rec.warnings) != 0 {
		t.Errorf("warnings after successful refresh: %v", rec.warnings)
	}
}

func TestMonitorAutoRefreshRejected(t *testing.T) {
	clock := &fakeCountdown{}
	auth := &fakeAuth{token: "t", refreshToken: "r", valid: true, refreshOK: false}
	m, rec := newTestMonitor(auth, clock, true)

	clock.set(400)
	if s := m.Check(context.Background()); s != StateLoggedOut {
		t.Fatalf("state = %v, want logged_out", s)
	}
	if len(rec.expiries) != 1 || rec.expiries[0] != ReasonRefreshFail {
		t.Errorf("expiries = %v", rec.expiries)
	}
}

func TestMonitorNoRefreshWithoutRefreshToken(t *testing.T) {
	clock := &fakeCountdown{}
	auth := &fakeAuth{token: "t", valid: true, refreshOK: true}
	m, _ := newTestMonitor(auth, clock, true)

	clock.set(400)
	m.Check(context.Background())
	if auth.refreshes != 0 {
		t.Errorf("refreshes = %d without a refresh token", auth.refreshes)
	}
}

func TestMonitorStartStopIdempotent(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: true}
	clock := &fakeCountdown{}
	clock.set(3600)
	m, _ := newTestMonitor(auth, clock, false)

	m.Start()
	m.Start()
	if !m.Running() {
		t.Fatal("not running after Start")
	}
	m.Stop()
	m.Stop()
	m.Wait()
	if m.Running() {
		t.Error("still running after Stop")
	}
	auth.mu.Lock()
	defer auth.mu.Unlock()
	if auth.validations != 1 {
		t.Errorf("validations = %d, want exactly the initial check", auth.validations)
	}
}

func TestMonitorStopFromOwnCallback(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: true}
	clock := &fakeCountdown{}
	clock.set(0)
	var m *Monitor
	done := make(chan struct{})
	m = NewMonitor(auth, clock, MonitorConfig{
		Interval: time.Hour,
		OnExpire: func(string) {
			m.Stop()
			close(done)
		},
	}, logger.Discard())

	m.Start()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback never ran")
	}
	m.Wait()
	if m.State() != StateLoggedOut {
		t.Errorf("state = %v", m.State())
	}
}

func TestMonitorRefocus(t *testing.T) {
	auth := &fakeAuth{token: "t", valid: true}
	clock := &fakeCountdown{}
	clock.set(3600)
	m, _ := newTestMonitor(auth, clock, false)

	m.Refocus(context.Background())
	if auth.validations != 0 {
		t.Fatal("Refocus checked a stopped monitor")
	}
	m.Start()
	defer func() { m.Stop(); m.Wait() }()
	m.Refocus(context.Background())
	auth.mu.Lock()
	n := auth.validations
	auth.mu.Unlock()
	if n < 1 {
		t.Errorf("validations = %d after refocus", n)
	}
}
