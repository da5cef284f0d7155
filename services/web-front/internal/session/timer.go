package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/jwt"
)

// ExpiringSoonThreshold is the window in which the countdown turns into a warning.
const ExpiringSoonThreshold = 600

// Timer counts down to the expiry of the current access token.
// The expiry is read from the unverified token payload: it drives display and
// refresh timing only, never access decisions.
type Timer struct {
	now    func() time.Time
	period time.Duration

	mu       sync.Mutex
	expiry   time.Time
	known    bool
	timeLeft int
	stop     chan struct{}
}

func NewTimer() *Timer {
	return NewTimerWithClock(time.Now, time.Second)
}

// NewTimerWithClock builds a timer reading time from now and refreshing every period.
func NewTimerWithClock(now func() time.Time, period time.Duration) *Timer {
	return &Timer{now: now, period: period}
}

// SetToken decodes the expiry of token and starts the countdown. An empty
// token clears the expiry and stops the countdown.
func (t *Timer) SetToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if token == "" {
		t.expiry, t.known, t.timeLeft = time.Time{}, false, 0
		t.stopLocked()
		return
	}
	t.expiry, t.known = jwt.ParseExpiry(token)
	t.updateLocked()
	if t.stop == nil {
		t.stop = make(chan struct{})
		go t.run(t.stop)
	}
}

func (t *Timer) run(stop chan struct{}) {
	ticker := time.NewTicker(t.period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.update()
		}
	}
}

func (t *Timer) update() {
	t.mu.Lock()
	t.updateLocked()
	t.mu.Unlock()
}

func (t *Timer) updateLocked() {
	if !t.known {
		t.timeLeft = 0
		return
	}
	t.timeLeft = jwt.TimeLeft(t.expiry, t.now())
}

// Stop halts the countdown. It is safe to call more than once.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.stopLocked()
	t.mu.Unlock()
}

func (t *Timer) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// TimeLeft returns the seconds left as of the last tick.
func (t *Timer) TimeLeft() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeLeft
}

// Known reports whether the current token carried a readable expiry.
func (t *Timer) Known() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.known
}

func (t *Timer) Expiry() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiry, t.known
}

func (t *Timer) IsExpiringSoon() bool {
	left := t.TimeLeft()
	return left > 0 && left <= ExpiringSoonThreshold
}

func (t *Timer) IsExpired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.known && t.timeLeft <= 0
}

func (t *Timer) FormatTimeLeft() string {
	return FormatDuration(t.TimeLeft())
}

// FormatDuration renders seconds as MM:SS, or HH:MM:SS from one hour on.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "00:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
