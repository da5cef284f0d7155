package store

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
)

const (
	allPattern       = "GET /api/admin/comments"
	pendingPattern   = "GET /api/admin/comments/pending"
	countAllPattern  = "GET /api/admin/comments/count/all"
	countPendPattern = "GET /api/admin/comments/count/pending"
)

func adminComment(id int, approved bool) map[string]interface{} {
	return map[string]interface{}{
		"id":            id,
		"review_id":     1,
		"name":          "Jonas",
		"content":       "Agreed",
		"created_at":    "2024-05-02T09:00:00Z",
		"is_approved":   approved,
		"review_author": "Maria",
		"review_rating": 5,
	}
}

func commentPage(page int, comments ...map[string]interface{}) map[string]interface{} {
	if comments == nil {
		comments = []map[string]interface{}{}
	}
	return map[string]interface{}{"comments": comments, "total": len(comments), "page": page, "per_page": 10, "total_pages": 2}
}

type commentBackend struct {
	*backend
	countStatus int
}

func newCommentBackend(t *testing.T) *commentBackend {
	cb := &commentBackend{backend: newBackend(t), countStatus: http.StatusOK}
	cb.handle(pendingPattern, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, commentPage(page, adminComment(1, false), adminComment(2, false)))
	})
	cb.handle(allPattern, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, commentPage(page, adminComment(1, false), adminComment(3, true)))
	})
	cb.handle(countAllPattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, cb.countStatus, map[string]int{"count": 12})
	})
	cb.handle(countPendPattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, cb.countStatus, map[string]int{"count": 4})
	})
	cb.handle("POST /api/admin/comments/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.Atoi(r.PathValue("id"))
		writeJSON(w, http.StatusOK, adminComment(id, true))
	})
	cb.handle("DELETE /api/admin/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return cb
}

func TestSwitchTabFetchesListAndCounts(t *testing.T) {
	b := newCommentBackend(t)
	st := storage.NewMemory()
	p := NewCommentPanel(b.client(), st, 10, logger.Discard())
	ctx := context.Background()

	if err := p.SwitchTab(ctx, TabAll); err != nil {
		t.Fatal(err)
	}
	if b.count(allPattern) != 1 || b.count(pendingPattern) != 0 {
		t.Errorf("list fetches all=%d pending=%d", b.count(allPattern), b.count(pendingPattern))
	}
	if b.count(countAllPattern) != 1 || b.count(countPendPattern) != 1 {
		t.Errorf("count fetches all=%d pending=%d", b.count(countAllPattern), b.count(countPendPattern))
	}
	if q := b.lastQuery(allPattern); q.Get("page") != "1" {
		t.Errorf("page = %q", q.Get("page"))
	}
	if v, _, _ := st.Get(ctx, storage.KeyCommentsTab); v != "all" {
		t.Errorf("persisted tab = %q", v)
	}
	snap := p.Snapshot()
	if snap.Tab != TabAll || snap.AllCount != 12 || snap.PendingCount != 4 || len(snap.Comments) != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSwitchTabRejectsUnknownTab(t *testing.T) {
	b := newCommentBackend(t)
	p := NewCommentPanel(b.client(), storage.NewMemory(), 10, logger.Discard())
	if err := p.SwitchTab(context.Background(), CommentTab("spam")); err == nil {
		t.Fatal("unknown tab accepted")
	}
	if p.Tab() != TabPending {
		t.Errorf("tab = %q", p.Tab())
	}
}

func TestLoadRestoresPersistedTab(t *testing.T) {
	b := newCommentBackend(t)
	st := storage.NewMemory()
	ctx := context.Background()
	_ = st.Set(ctx, storage.KeyCommentsTab, "all")
	p := NewCommentPanel(b.client(), st, 10, logger.Discard())

	if err := p.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Tab() != TabAll || b.count(allPattern) != 1 {
		t.Errorf("tab = %q, all fetches = %d", p.Tab(), b.count(allPattern))
	}

	_ = st.Set(ctx, storage.KeyCommentsTab, "garbage")
	if err := p.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if p.Tab() != TabPending {
		t.Errorf("invalid persisted tab gave %q", p.Tab())
	}
}

func TestSetPageLeavesCounts(t *testing.T) {
	b := newCommentBackend(t)
	p := NewCommentPanel(b.client(), storage.NewMemory(), 10, logger.Discard())
	ctx := context.Background()
	_ = p.SwitchTab(ctx, TabPending)

	if err := p.SetPage(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if b.count(pendingPattern) != 2 {
		t.Errorf("pending fetches = %d", b.count(pendingPattern))
	}
	if b.count(countAllPattern) != 1 {
		t.Errorf("SetPage refreshed counts")
	}
	if got := p.Snapshot().Pagination.Page; got != 2 {
		t.Errorf("page = %d", got)
	}
}

func TestCountFailureKeepsPreviousValues(t *testing.T) {
	b := newCommentBackend(t)
	p := NewCommentPanel(b.client(), storage.NewMemory(), 10, logger.Discard())
	ctx := context.Background()
	_ = p.SwitchTab(ctx, TabPending)

	b.countStatus = http.StatusInternalServerError
	if err := p.SwitchTab(ctx, TabAll); err != nil {
		t.Fatalf("count failure surfaced: %v", err)
	}
	snap := p.Snapshot()
	if snap.AllCount != 12 || snap.PendingCount != 4 {
		t.Errorf("counts = %d/%d", snap.AllCount, snap.PendingCount)
	}
	if snap.Error != "" {
		t.Errorf("Error = %q", snap.Error)
	}
}

func TestApproveFromPendingTab(t *testing.T) {
	b := newCommentBackend(t)
	p := NewCommentPanel(b.client(), storage.NewMemory(), 10, logger.Discard())
	ctx := context.Background()
	_ = p.SwitchTab(ctx, TabPending)

	if err := p.Approve(ctx, 1); err != nil {
		t.Fatal(err)
	}
	snap := p.Snapshot()
	if len(snap.Comments) != 1 || snap.Comments[0].ID != 2 {
		t.Errorf("pending list = %+v", snap.Comments)
	}
	if b.count(allPattern) != 1 || b.lastQuery(allPattern).Get("page") != "1" {
		t.Errorf("all tab fetches = %d", b.count(allPattern))
	}
	if b.count(countAllPattern) != 2 || b.count(countPendPattern) != 2 {
		t.Errorf("counts not refreshed")
	}
}

func TestDeleteFromCurrentTab(t *testing.T) {
	b := newCommentBackend(t)
	p := NewCommentPanel(b.client(), storage.NewMemory(), 10, logger.Discard())
	ctx := context.Background()
	_ = p.SwitchTab(ctx, TabAll)

	if err := p.Delete(ctx, 3); err != nil {
		t.Fatal(err)
	}
	snap := p.Snapshot()
	if len(snap.Comments) != 1 || snap.Comments[0].ID != 1 {
		t.Errorf("all list = %+v", snap.Comments)
	}
	if b.count(countAllPattern) != 2 {
		t.Errorf("counts not refreshed after delete")
	}
}

func TestCommentThreadPaging(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/reviews/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		c := map[string]interface{}{"id": page, "review_id": 7, "name": "Jonas", "content": "p" + strconv.Itoa(page), "created_at": "2024-05-02T09:00:00Z", "is_approved": true}
		writeJSON(w, http.StatusOK, map[string]interface{}{"comments": []interface{}{c}, "total": 2, "page": page, "per_page": 1, "total_pages": 2})
	})
	th := NewCommentThread(b.client(), 7, 1, logger.Discard())
	ctx := context.Background()

	if err := th.Fetch(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if st := th.Snapshot(); !st.HasMore || len(st.Comments) != 1 {
		t.Fatalf("after page 1: %+v", st)
	}
	if err := th.LoadMore(ctx); err != nil {
		t.Fatal(err)
	}
	st := th.Snapshot()
	if len(st.Comments) != 2 || st.HasMore || st.Page != 2 {
		t.Errorf("after page 2: %+v", st)
	}
	if err := th.LoadMore(ctx); err != nil {
		t.Fatal(err)
	}
	if got := b.count("GET /api/reviews/{id}/comments"); got != 2 {
		t.Errorf("fetches = %d, want 2", got)
	}
	if err := th.Fetch(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if got := len(th.Snapshot().Comments); got != 1 {
		t.Errorf("page 1 appended instead of replacing: %d comments", got)
	}
}

func TestCommentThreadCreate(t *testing.T) {
	b := newBackend(t)
	b.handle("GET /api/reviews/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"comments": []interface{}{}, "total": 0, "page": 1, "per_page": 10, "total_pages": 0})
	})
	b.handle("POST /api/reviews/{id}/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			t.Errorf("posted to review %s", r.PathValue("id"))
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": 1, "review_id": 7, "name": "Jonas", "content": "Agreed"})
	})
	th := NewCommentThread(b.client(), 7, 10, logger.Discard())
	ctx := context.Background()

	if err := th.Create(ctx, domain.CommentForm{Name: "Jonas", Content: "  "}); !domain.IsValidationError(err) {
		t.Fatalf("empty content: %v", err)
	}
	if th.Snapshot().FormErrors["Content"] == "" {
		t.Error("no field error for Content")
	}
	if b.count("POST /api/reviews/{id}/comments") != 0 {
		t.Error("invalid comment reached the network")
	}

	if err := th.Create(ctx, domain.CommentForm{Name: "Jonas", Content: "Agreed"}); err != nil {
		t.Fatal(err)
	}
	if b.count("GET /api/reviews/{id}/comments") != 1 {
		t.Error("thread not reloaded after create")
	}
	if th.Snapshot().FormErrors != nil {
		t.Error("form errors kept after a valid submit")
	}
}
