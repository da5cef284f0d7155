package session

import (
	"context"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
)

type State int

const (
	StateActive State = iota
	StateWarning10
	StateWarning5
	StateExpired
	StateLoggedOut
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateWarning10:
		return "warning10"
	case StateWarning5:
		return "warning5"
	case StateExpired:
		return "expired"
	case StateLoggedOut:
		return "logged_out"
	}
	return "unknown"
}

const (
	warnTenSeconds  = 10 * 60
	warnFiveSeconds = 5 * 60

	DefaultCheckInterval = 5 * time.Minute

	WarningTenMessage  = "Your session expires in less than 10 minutes."
	WarningFiveMessage = "Your session expires in less than 5 minutes! Please extend your session."
)

// Validator is the part of the auth store the monitor polls.
type Validator interface {
	ValidateSession(ctx context.Context) bool
	RefreshSession(ctx context.Context) bool
	RefreshToken() string
	IsAuthenticated() bool
}

// Countdown exposes the seconds left on the current token.
type Countdown interface {
	TimeLeft() int
	Known() bool
}

type Warning struct {
	State    State
	TimeLeft int
	Message  string
}

type MonitorConfig struct {
	Interval    time.Duration
	AutoRefresh bool
	OnWarning   func(Warning)
	OnExpire    func(reason string)
}

// Monitor periodically validates the session, refreshes it when it is about
// to run out, and emits warnings as expiry approaches.
type Monitor struct {
	auth  Validator
	clock Countdown
	cfg   MonitorConfig
	log   *logger.Logger

	check sync.Mutex

	mu       sync.Mutex
	state    State
	warned10 bool
	running  bool
	stop     chan struct{}
	done     chan struct{}
}

func NewMonitor(auth Validator, clock Countdown, cfg MonitorConfig, log *logger.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultCheckInterval
	}
	if cfg.OnWarning == nil {
		cfg.OnWarning = func(Warning) {}
	}
	if cfg.OnExpire == nil {
		cfg.OnExpire = func(string) {}
	}
	return &Monitor{auth: auth, clock: clock, cfg: cfg, log: log, state: StateActive}
}

// Start begins periodic checks with an immediate first one. Calling Start on
// a running monitor does nothing.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.state = StateActive
	m.warned10 = false
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(m.stop, m.done)
}

func (m *Monitor) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	m.Check(context.Background())
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			m.Check(context.Background())
		}
	}
}

// Stop ends periodic checks without waiting for the loop to exit, so it can
// be called from a callback running inside a check.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	close(m.stop)
	m.running = false
}

// Wait blocks until the loop started by the last Start has exited.
func (m *Monitor) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Monitor) setState(s State) State {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
	return s
}

// Refocus runs one check when the user comes back to the page.
func (m *Monitor) Refocus(ctx context.Context) State {
	if !m.Running() {
		return m.State()
	}
	return m.Check(ctx)
}

// Check runs a single monitoring step and returns the resulting state.
func (m *Monitor) Check(ctx context.Context) State {
	m.check.Lock()
	defer m.check.Unlock()

	if m.State() == StateLoggedOut || !m.auth.IsAuthenticated() {
		return m.setState(StateLoggedOut)
	}
	if !m.auth.ValidateSession(ctx) {
		m.log.Info("session rejected by server")
		m.setState(StateLoggedOut)
		m.cfg.OnExpire(ReasonInvalid)
		return StateLoggedOut
	}

	if m.cfg.AutoRefresh && m.clock.Known() && m.clock.TimeLeft() <= warnTenSeconds && m.auth.RefreshToken() != "" {
		if !m.auth.RefreshSession(ctx) && !m.auth.IsAuthenticated() {
			m.log.Info("session refresh rejected")
			m.setState(StateLoggedOut)
			m.cfg.OnExpire(ReasonRefreshFail)
			return StateLoggedOut
		}
	}

	if !m.clock.Known() {
		return m.setState(StateActive)
	}
	left := m.clock.TimeLeft()
	switch {
	case left <= 0:
		m.setState(StateExpired)
		m.log.Info("session expired")
		m.cfg.OnExpire(ReasonExpired)
		return m.setState(StateLoggedOut)
	case left <= warnFiveSeconds:
		m.setState(StateWarning5)
		m.cfg.OnWarning(Warning{State: StateWarning5, TimeLeft: left, Message: WarningFiveMessage})
		return StateWarning5
	case left <= warnTenSeconds:
		m.mu.Lock()
		m.state = StateWarning10
		first := !m.warned10
		m.warned10 = true
		m.mu.Unlock()
		if first {
			m.cfg.OnWarning(Warning{State: StateWarning10, TimeLeft: left, Message: WarningTenMessage})
		}
		return StateWarning10
	default:
		m.mu.Lock()
		m.state = StateActive
		m.warned10 = false
		m.mu.Unlock()
		return StateActive
	}
}
