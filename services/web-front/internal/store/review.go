package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
)

var ErrReviewNotLoaded = errors.New("review is not in the current list")

// DefaultFilterDebounce delays the refetch scheduled by UpdateFilters.
const DefaultFilterDebounce = 100 * time.Millisecond

// ReviewScope selects which listing endpoint a ReviewStore reads from.
type ReviewScope int

const (
	ScopePublic ReviewScope = iota
	ScopeAdmin
	ScopePending
)

type ReviewState struct {
	Reviews      []domain.Review
	Pagination   domain.Pagination
	Filters      domain.ReviewFilters
	ApprovedOnly *bool
	Stats        *domain.ReviewStats
	Loading      bool
	Error        string
	FormErrors   map[string]string
}

// ReviewStore holds one paginated review list. Local state is a projection
// of the server: every mutation ends with the server's answer or a refetch.
type ReviewStore struct {
	api      *client.Client
	log      *logger.Logger
	scope    ReviewScope
	perPage  int
	debounce time.Duration

	mu           sync.Mutex
	reviews      []domain.Review
	pagination   domain.Pagination
	filters      domain.ReviewFilters
	approvedOnly *bool
	stats        *domain.ReviewStats
	loading      bool
	err          string
	formErrors   map[string]string
	maxImage     int64

	// fetches are numbered; an answer older than the last applied one is dropped
	seq     uint64
	applied uint64
	pending *pendingFetch
}

type pendingFetch struct {
	timer *time.Timer
	once  sync.Once
	done  chan struct{}
	err   error
}

func (p *pendingFetch) run(fn func() error) {
	p.once.Do(func() {
		p.err = fn()
		close(p.done)
	})
}

func NewReviewStore(api *client.Client, scope ReviewScope, perPage int, log *logger.Logger) *ReviewStore {
	if perPage <= 0 {
		perPage = 10
	}
	return &ReviewStore{
		api:        api,
		log:        log,
		scope:      scope,
		perPage:    perPage,
		debounce:   DefaultFilterDebounce,
		filters:    domain.DefaultFilters(),
		pagination: domain.Pagination{Page: 1, PerPage: perPage},
	}
}

// SetDebounce changes the delay of filter-triggered refetches.
func (s *ReviewStore) SetDebounce(d time.Duration) {
	s.mu.Lock()
	s.debounce = d
	s.mu.Unlock()
}

// SetMaxImageBytes limits images attached through CreateReview.
func (s *ReviewStore) SetMaxImageBytes(n int64) {
	s.mu.Lock()
	s.maxImage = n
	s.mu.Unlock()
}

func (s *ReviewStore) list(ctx context.Context, q domain.ReviewQuery, approvedOnly *bool) (*domain.ReviewList, error) {
	switch s.scope {
	case ScopeAdmin:
		return s.api.AdminListReviews(ctx, q.Page, q.PerPage, approvedOnly)
	case ScopePending:
		return s.api.PendingReviews(ctx, q.Page, q.PerPage)
	}
	return s.api.ListReviews(ctx, q)
}

// FetchReviews loads one page built from the current filters and page,
// overlaid with the non-zero fields of override.
func (s *ReviewStore) FetchReviews(ctx context.Context, override *domain.ReviewQuery) error {
	s.mu.Lock()
	q := domain.ReviewQuery{ReviewFilters: s.filters, Page: s.pagination.Page, PerPage: s.perPage}
	if override != nil {
		mergeQuery(&q, override)
	}
	approvedOnly := s.approvedOnly
	s.seq++
	seq := s.seq
	s.loading, s.err = true, ""
	s.mu.Unlock()

	list, err := s.list(ctx, q, approvedOnly)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.seq {
		s.loading = false
	}
	if seq < s.applied {
		s.log.Debugf("dropping stale review page (seq %d < %d)", seq, s.applied)
		return nil
	}
	s.applied = seq
	if err != nil {
		s.err = client.Message(err)
		return err
	}
	s.reviews = list.Reviews
	s.pagination = list.Pagination()
	return nil
}

func mergeQuery(q *domain.ReviewQuery, o *domain.ReviewQuery) {
	if o.Page > 0 {
		q.Page = o.Page
	}
	if o.PerPage > 0 {
		q.PerPage = o.PerPage
	}
	if o.Rating != nil {
		q.Rating = o.Rating
	}
	if o.FeaturedOnly {
		q.FeaturedOnly = true
	}
	if o.Search != "" {
		q.Search = o.Search
	}
	if o.SortBy != "" {
		q.SortBy = o.SortBy
	}
	if o.SortOrder != "" {
		q.SortOrder = o.SortOrder
	}
}

// FetchAdminReviews loads a page of the admin listing; approvedOnly narrows it
// to visible (true) or hidden (false) reviews.
func (s *ReviewStore) FetchAdminReviews(ctx context.Context, page int, approvedOnly *bool) error {
	s.mu.Lock()
	if approvedOnly != nil {
		v := *approvedOnly
		s.approvedOnly = &v
	} else {
		s.approvedOnly = nil
	}
	if page < 1 {
		page = 1
	}
	s.pagination.Page = page
	s.mu.Unlock()
	return s.FetchReviews(ctx, nil)
}

func (s *ReviewStore) FetchStats(ctx context.Context) error {
	var (
		stats *domain.ReviewStats
		err   error
	)
	if s.scope == ScopePublic {
		stats, err = s.api.Stats(ctx)
	} else {
		stats, err = s.api.AdminStats(ctx)
	}
	if err != nil {
		s.log.Debugf("fetch stats: %v", err)
		return err
	}
	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

// CreateReview validates and submits a review, then uploads its image if one
// is attached. The list is refetched whenever the review itself was created.
// It returns true only if every step succeeded.
func (s *ReviewStore) CreateReview(ctx context.Context, form domain.ReviewForm) bool {
	s.mu.Lock()
	maxImage := s.maxImage
	s.mu.Unlock()

	if err := domain.ValidateReviewForm(&form, maxImage); err != nil {
		s.mu.Lock()
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.formErrors = ve.Fields
		}
		s.err = err.Error()
		s.mu.Unlock()
		return false
	}
	s.mu.Lock()
	s.formErrors = nil
	s.mu.Unlock()

	review, err := s.api.CreateReview(ctx, form)
	if err != nil {
		s.setError(client.Message(err))
		return false
	}
	var uploadErr error
	if form.Image != nil {
		if _, uploadErr = s.api.UploadReviewImage(ctx, review.ID, form.Image.Filename, form.Image.Data); uploadErr != nil {
			s.log.Warnf("image upload for review %d failed: %v", review.ID, uploadErr)
		}
	}
	if err := s.FetchReviews(ctx, nil); err != nil {
		s.log.Debugf("refetch after create: %v", err)
	}
	if uploadErr != nil {
		s.setError(fmt.Sprintf("Review saved, but the image could not be uploaded: %s", client.Message(uploadErr)))
		return false
	}
	return true
}

// DeleteReview removes a review. Errors are returned to the caller.
func (s *ReviewStore) DeleteReview(ctx context.Context, id int) error {
	if err := s.api.DeleteReview(ctx, id); err != nil {
		s.setError(client.Message(err))
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			s.reviews = append(s.reviews[:i:i], s.reviews[i+1:]...)
			if s.pagination.Total > 0 {
				s.pagination.Total--
			}
			break
		}
	}
	return nil
}

// ToggleReviewVisibility asks the server to invert the cached approval flag
// and applies the review it answers with. Nothing changes locally on failure.
func (s *ReviewStore) ToggleReviewVisibility(ctx context.Context, id int) error {
	s.mu.Lock()
	current, ok := s.find(id)
	s.mu.Unlock()
	if !ok {
		return ErrReviewNotLoaded
	}
	next := !current.IsApproved
	updated, err := s.api.UpdateReview(ctx, id, domain.ReviewUpdate{IsApproved: &next})
	if err != nil {
		s.setError(client.Message(err))
		return err
	}
	s.settle(ctx, id, updated)
	return nil
}

// UpdateReview edits a review and applies the server's version.
func (s *ReviewStore) UpdateReview(ctx context.Context, id int, in domain.ReviewUpdate) error {
	updated, err := s.api.UpdateReview(ctx, id, in)
	if err != nil {
		s.setError(client.Message(err))
		return err
	}
	s.settle(ctx, id, updated)
	return nil
}

func (s *ReviewStore) ApproveReview(ctx context.Context, id int) error {
	updated, err := s.api.ApproveReview(ctx, id)
	if err != nil {
		s.setError(client.Message(err))
		return err
	}
	s.settle(ctx, id, updated)
	return nil
}

func (s *ReviewStore) RejectReview(ctx context.Context, id int) error {
	updated, err := s.api.RejectReview(ctx, id)
	if err != nil {
		s.setError(client.Message(err))
		return err
	}
	s.settle(ctx, id, updated)
	return nil
}

// settle applies the server's answer to a successful mutation of review id.
// An answer that does not carry the review reloads the list instead.
func (s *ReviewStore) settle(ctx context.Context, id int, updated *domain.Review) {
	if updated != nil && updated.ID == id {
		s.apply(*updated)
		return
	}
	if err := s.FetchReviews(ctx, nil); err != nil {
		s.log.Warnf("reload after update of review %d: %v", id, err)
	}
}

// apply replaces the cached copy of r, or drops it when it no longer belongs
// to this list.
func (s *ReviewStore) apply(r domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID != r.ID {
			continue
		}
		if s.belongs(r) {
			s.reviews[i] = r
		} else {
			s.reviews = append(s.reviews[:i:i], s.reviews[i+1:]...)
			if s.pagination.Total > 0 {
				s.pagination.Total--
			}
		}
		return
	}
}

func (s *ReviewStore) belongs(r domain.Review) bool {
	switch s.scope {
	case ScopePending:
		return !r.IsApproved
	case ScopeAdmin:
		return s.approvedOnly == nil || *s.approvedOnly == r.IsApproved
	}
	return true
}

func (s *ReviewStore) find(id int) (domain.Review, bool) {
	for _, r := range s.reviews {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Review{}, false
}

// Review returns the cached review with the given id.
func (s *ReviewStore) Review(id int) (domain.Review, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(id)
}

// UpdateFilters merges patch into the filters, goes back to page 1 and
// schedules a refetch. A newer update replaces a refetch that has not started.
func (s *ReviewStore) UpdateFilters(patch domain.FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.Merge(patch)
	s.pagination.Page = 1
	if s.pending != nil {
		s.pending.timer.Stop()
	}
	p := &pendingFetch{done: make(chan struct{})}
	p.timer = time.AfterFunc(s.debounce, func() {
		p.run(func() error { return s.FetchReviews(context.Background(), nil) })
	})
	s.pending = p
}

// HasPending reports whether a filter change is waiting to be fetched.
func (s *ReviewStore) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// FlushPending runs a scheduled refetch now, or waits for one already
// running, and returns its error.
func (s *ReviewStore) FlushPending(ctx context.Context) error {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return nil
	}
	if p.timer.Stop() {
		p.run(func() error { return s.FetchReviews(ctx, nil) })
	}
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetPage moves to page and fetches it right away.
func (s *ReviewStore) SetPage(ctx context.Context, page int) error {
	s.mu.Lock()
	s.pagination.Page = page
	s.mu.Unlock()
	return s.FetchReviews(ctx, nil)
}

func (s *ReviewStore) setError(msg string) {
	s.mu.Lock()
	s.err = msg
	s.mu.Unlock()
}

func (s *ReviewStore) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.formErrors = nil
	s.mu.Unlock()
}

func (s *ReviewStore) Snapshot() ReviewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ReviewState{
		Reviews:    append([]domain.Review(nil), s.reviews...),
		Pagination: s.pagination,
		Filters:    s.filters,
		Stats:      s.stats,
		Loading:    s.loading,
		Error:      s.err,
	}
	if s.approvedOnly != nil {
		v := *s.approvedOnly
		st.ApprovedOnly = &v
	}
	if s.formErrors != nil {
		st.FormErrors = make(map[string]string, len(s.formErrors))
		for k, v := range s.formErrors {
			st.FormErrors[k] = v
		}
	}
	return st
}
