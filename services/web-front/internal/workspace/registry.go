package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
)

const minSweepInterval = time.Minute

// Registry holds the live workspaces keyed by browser id and evicts the
// ones that have been idle for too long. Persisted state survives eviction.
type Registry struct {
	cfg  *config.WebConfig
	base storage.Storage
	log  *logger.Logger
	idle time.Duration
	now  func() time.Time

	mu    sync.Mutex
	items map[string]*Workspace
}

func NewRegistry(cfg *config.WebConfig, base storage.Storage, log *logger.Logger) *Registry {
	return &Registry{
		cfg:   cfg,
		base:  base,
		log:   log,
		idle:  cfg.WorkspaceIdle,
		now:   time.Now,
		items: make(map[string]*Workspace),
	}
}

// Get returns the workspace of id, creating and bootstrapping it when needed.
// The workspace counts as seen from this moment, so a concurrent sweep keeps it.
func (r *Registry) Get(ctx context.Context, id string) *Workspace {
	r.mu.Lock()
	ws, ok := r.items[id]
	if !ok {
		ws = New(id, r.cfg, r.base, r.log)
		r.items[id] = ws
		r.log.Debugf("workspace %s created (%d live)", shortID(id), len(r.items))
	}
	ws.touch(r.now())
	r.mu.Unlock()

	ws.Bootstrap(ctx)
	return ws
}

// Sweep closes and forgets workspaces idle for longer than the configured
// limit. It returns how many were evicted.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	now := r.now()
	var evicted []*Workspace
	r.mu.Lock()
	for id, ws := range r.items {
		if ws.idleSince(now) > r.idle {
			evicted = append(evicted, ws)
			delete(r.items, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range evicted {
		ws.Close()
	}
	if len(evicted) > 0 {
		r.log.Infof("evicted %d idle workspaces", len(evicted))
	}
	return len(evicted)
}

// Run sweeps periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idle / 4
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Close shuts every live workspace down.
func (r *Registry) Close() {
	r.mu.Lock()
	items := r.items
	r.items = make(map[string]*Workspace)
	r.mu.Unlock()
	for _, ws := range items {
		ws.Close()
	}
}
