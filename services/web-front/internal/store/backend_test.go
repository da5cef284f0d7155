package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
)

// backend is a scripted REST API that counts the requests it receives.
type backend struct {
	mu      sync.Mutex
	calls   map[string]int
	queries map[string][]url.Values
	mux     *http.ServeMux
	srv     *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		calls:   make(map[string]int),
		queries: make(map[string][]url.Values),
		mux:     http.NewServeMux(),
	}
	b.srv = httptest.NewServer(b.mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) handle(pattern string, h http.HandlerFunc) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[pattern]++
		b.queries[pattern] = append(b.queries[pattern], r.URL.Query())
		b.mu.Unlock()
		h(w, r)
	})
}

func (b *backend) count(pattern string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[pattern]
}

func (b *backend) lastQuery(pattern string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	qs := b.queries[pattern]
	if len(qs) == 0 {
		return nil
	}
	return qs[len(qs)-1]
}

func (b *backend) client() *client.Client {
	return client.New(b.srv.URL, 5*time.Second, logger.Discard())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func reviewPage(page, totalPages int, reviews ...map[string]interface{}) map[string]interface{} {
	if reviews == nil {
		reviews = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"reviews":     reviews,
		"total":       len(reviews),
		"page":        page,
		"per_page":    10,
		"total_pages": totalPages,
	}
}

func review(id int, approved bool) map[string]interface{} {
	return map[string]interface{}{
		"id":          id,
		"name":        "Maria",
		"rating":      5,
		"content":     "Great stay!!",
		"created_at":  "2024-05-01T10:00:00Z",
		"is_approved": approved,
	}
}
