package store

import (
	"context"
	"errors"
	"sync"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/storage"
)

type CommentTab string

const (
	TabPending CommentTab = "pending"
	TabAll     CommentTab = "all"
)

func ParseCommentTab(s string) (CommentTab, bool) {
	switch CommentTab(s) {
	case TabPending, TabAll:
		return CommentTab(s), true
	}
	return "", false
}

type commentList struct {
	comments   []domain.AdminComment
	pagination domain.Pagination
}

type CommentPanelState struct {
	Tab          CommentTab
	Comments     []domain.AdminComment
	Pagination   domain.Pagination
	AllCount     int
	PendingCount int
	Loading      bool
	Error        string
}

// CommentPanel is the admin moderation view over comments: a pending and an
// all tab, each paginated on its own, plus a count badge per tab.
type CommentPanel struct {
	api     *client.Client
	store   storage.Storage
	log     *logger.Logger
	perPage int

	mu           sync.Mutex
	tab          CommentTab
	lists        map[CommentTab]*commentList
	allCount     int
	pendingCount int
	loading      bool
	err          string
}

func NewCommentPanel(api *client.Client, store storage.Storage, perPage int, log *logger.Logger) *CommentPanel {
	if perPage <= 0 {
		perPage = 10
	}
	return &CommentPanel{
		api:     api,
		store:   store,
		log:     log,
		perPage: perPage,
		tab:     TabPending,
		lists: map[CommentTab]*commentList{
			TabPending: {pagination: domain.Pagination{Page: 1, PerPage: perPage}},
			TabAll:     {pagination: domain.Pagination{Page: 1, PerPage: perPage}},
		},
	}
}

// Load restores the last selected tab and opens it.
func (p *CommentPanel) Load(ctx context.Context) error {
	tab := TabPending
	if v, ok, err := p.store.Get(ctx, storage.KeyCommentsTab); err == nil && ok {
		if t, valid := ParseCommentTab(v); valid {
			tab = t
		}
	}
	return p.SwitchTab(ctx, tab)
}

// SwitchTab selects tab, remembers the choice, fetches its first page and
// refreshes both counts.
func (p *CommentPanel) SwitchTab(ctx context.Context, tab CommentTab) error {
	if _, ok := ParseCommentTab(string(tab)); !ok {
		return errors.New("unknown comment tab: " + string(tab))
	}
	p.mu.Lock()
	p.tab = tab
	p.mu.Unlock()
	if err := p.store.Set(ctx, storage.KeyCommentsTab, string(tab)); err != nil {
		p.log.Warnf("persist comment tab: %v", err)
	}

	err := p.fetch(ctx, tab, 1)
	p.refreshCounts(ctx)
	return err
}

// SetPage fetches another page of the current tab. Counts are left alone.
func (p *CommentPanel) SetPage(ctx context.Context, page int) error {
	p.mu.Lock()
	tab := p.tab
	p.mu.Unlock()
	return p.fetch(ctx, tab, page)
}

func (p *CommentPanel) fetch(ctx context.Context, tab CommentTab, page int) error {
	p.mu.Lock()
	p.loading, p.err = true, ""
	p.mu.Unlock()

	var (
		list *domain.AdminCommentList
		err  error
	)
	if tab == TabPending {
		list, err = p.api.PendingComments(ctx, page, p.perPage)
	} else {
		list, err = p.api.AdminComments(ctx, page, p.perPage)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.err = client.Message(err)
		return err
	}
	p.lists[tab] = &commentList{comments: list.Comments, pagination: list.Pagination()}
	return nil
}

// refreshCounts reloads both badges in parallel. A failing count keeps its old value.
func (p *CommentPanel) refreshCounts(ctx context.Context) {
	var (
		wg              sync.WaitGroup
		all, pending    int
		allErr, pendErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		all, allErr = p.api.CountAllComments(ctx)
	}()
	go func() {
		defer wg.Done()
		pending, pendErr = p.api.CountPendingComments(ctx)
	}()
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if allErr == nil {
		p.allCount = all
	} else {
		p.log.Debugf("count all comments: %v", allErr)
	}
	if pendErr == nil {
		p.pendingCount = pending
	} else {
		p.log.Debugf("count pending comments: %v", pendErr)
	}
}

// Approve publishes a comment. It leaves the pending list at once and both
// the all tab and the counts are reloaded.
func (p *CommentPanel) Approve(ctx context.Context, id int) error {
	if _, err := p.api.ApproveComment(ctx, id); err != nil {
		p.setError(client.Message(err))
		return err
	}
	p.mu.Lock()
	if p.tab == TabPending {
		p.removeLocked(TabPending, id)
	}
	p.mu.Unlock()

	err := p.fetch(ctx, TabAll, 1)
	p.refreshCounts(ctx)
	return err
}

// Delete removes a comment from the displayed list and reloads the counts.
func (p *CommentPanel) Delete(ctx context.Context, id int) error {
	if err := p.api.DeleteComment(ctx, id); err != nil {
		p.setError(client.Message(err))
		return err
	}
	p.mu.Lock()
	p.removeLocked(p.tab, id)
	p.mu.Unlock()
	p.refreshCounts(ctx)
	return nil
}

func (p *CommentPanel) removeLocked(tab CommentTab, id int) {
	l := p.lists[tab]
	for i := range l.comments {
		if l.comments[i].ID == id {
			l.comments = append(l.comments[:i:i], l.comments[i+1:]...)
			if l.pagination.Total > 0 {
				l.pagination.Total--
			}
			return
		}
	}
}

func (p *CommentPanel) setError(msg string) {
	p.mu.Lock()
	p.err = msg
	p.mu.Unlock()
}

func (p *CommentPanel) ClearError() {
	p.setError("")
}

func (p *CommentPanel) Tab() CommentTab {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}

func (p *CommentPanel) Snapshot() CommentPanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	l := p.lists[p.tab]
	return CommentPanelState{
		Tab:          p.tab,
		Comments:     append([]domain.AdminComment(nil), l.comments...),
		Pagination:   l.pagination,
		AllCount:     p.allCount,
		PendingCount: p.pendingCount,
		Loading:      p.loading,
		Error:        p.err,
	}
}

type CommentThreadState struct {
	ReviewID   int
	Comments   []domain.Comment
	Page       int
	TotalPages int
	Total      int
	HasMore    bool
	Loading    bool
	Error      string
	FormErrors map[string]string
}

// CommentThread is the public comment list below one review.
type CommentThread struct {
	api      *client.Client
	log      *logger.Logger
	reviewID int
	perPage  int

	mu         sync.Mutex
	comments   []domain.Comment
	page       int
	totalPages int
	total      int
	loading    bool
	err        string
	formErrors map[string]string
}

func NewCommentThread(api *client.Client, reviewID, perPage int, log *logger.Logger) *CommentThread {
	if perPage <= 0 {
		perPage = 10
	}
	return &CommentThread{api: api, log: log, reviewID: reviewID, perPage: perPage}
}

// Fetch loads page. The first page replaces the list, later pages append to it.
func (t *CommentThread) Fetch(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	t.mu.Lock()
	t.loading, t.err = true, ""
	t.mu.Unlock()

	list, err := t.api.ReviewComments(ctx, t.reviewID, page, t.perPage)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false
	if err != nil {
		t.err = client.Message(err)
		return err
	}
	if page == 1 {
		t.comments = list.Comments
	} else {
		t.comments = append(t.comments, list.Comments...)
	}
	t.page, t.totalPages, t.total = page, list.TotalPages, list.Total
	return nil
}

func (t *CommentThread) LoadMore(ctx context.Context) error {
	t.mu.Lock()
	next := t.page + 1
	more := t.page < t.totalPages
	t.mu.Unlock()
	if !more {
		return nil
	}
	return t.Fetch(ctx, next)
}

// Create validates and posts a comment, then reloads the first page.
func (t *CommentThread) Create(ctx context.Context, form domain.CommentForm) error {
	form.ReviewID = t.reviewID
	if err := domain.ValidateCommentForm(&form); err != nil {
		var ve *domain.ValidationError
		t.mu.Lock()
		if errors.As(err, &ve) {
			t.formErrors = ve.Fields
		}
		t.mu.Unlock()
		return err
	}
	t.mu.Lock()
	t.formErrors = nil
	t.mu.Unlock()

	if _, err := t.api.CreateComment(ctx, form); err != nil {
		t.mu.Lock()
		t.err = client.Message(err)
		t.mu.Unlock()
		return err
	}
	return t.Fetch(ctx, 1)
}

func (t *CommentThread) Snapshot() CommentThreadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := CommentThreadState{
		ReviewID:   t.reviewID,
		Comments:   append([]domain.Comment(nil), t.comments...),
		Page:       t.page,
		TotalPages: t.totalPages,
		Total:      t.total,
		HasMore:    t.page < t.totalPages,
		Loading:    t.loading,
		Error:      t.err,
	}
	if t.formErrors != nil {
		st.FormErrors = make(map[string]string, len(t.formErrors))
		for k, v := range t.formErrors {
			st.FormErrors[k] = v
		}
	}
	return st
}
