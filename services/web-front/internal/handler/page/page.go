package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

const (
	ReviewThanks  = "Thank you for your review! It will be published once a moderator has approved it."
	CommentThanks = "Thank you! Your comment will appear after moderation."
)

type reviewInput struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Rating  int    `form:"rating"`
	Title   string `form:"title"`
	Content string `form:"content"`
}

type commentInput struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Content string `form:"content"`
}

type SortOption struct {
	Value string
	Label string
}

var SortOptions = []SortOption{
	{"created_at:desc", "Newest first"},
	{"created_at:asc", "Oldest first"},
	{"rating:desc", "Best rated"},
	{"rating:asc", "Lowest rated"},
	{"name:asc", "Name A-Z"},
	{"name:desc", "Name Z-A"},
}

type PageHandler interface {
	Index(c *gin.Context)
	Filter(c *gin.Context)
	CreateReview(c *gin.Context)
	Review(c *gin.Context)
	CreateComment(c *gin.Context)
	Error(c *gin.Context)
}

type pageHandler struct {
	cfg *config.WebConfig
	log *logger.Logger
}

func NewPageHandler(cfg *config.WebConfig, log *logger.Logger) PageHandler {
	return &pageHandler{cfg: cfg, log: log}
}

// Index shows the approved reviews with the current filters. A filter change
// that is still waiting is fetched instead of the page.
func (h *pageHandler) Index(c *gin.Context) {
	ws := view.Workspace(c)
	ctx := c.Request.Context()
	var err error
	switch {
	case ws.Reviews.HasPending():
		err = ws.Reviews.FlushPending(ctx)
	case c.Query("page") != "":
		err = ws.Reviews.SetPage(ctx, util.GetPage(c))
	default:
		err = ws.Reviews.FetchReviews(ctx, nil)
	}
	if err != nil {
		h.log.Warnf("list reviews: %v", err)
	}
	if err := ws.Reviews.FetchStats(ctx); err != nil {
		h.log.Debugf("stats: %v", err)
	}
	h.renderIndex(c, http.StatusOK, reviewInput{Rating: 5}, nil)
}

func (h *pageHandler) renderIndex(c *gin.Context, status int, form reviewInput, formErrors map[string]string) {
	ws := view.Workspace(c)
	st := ws.Reviews.Snapshot()
	sort := st.Filters.SortBy + ":" + st.Filters.SortOrder
	view.Render(c, status, "index.html", gin.H{
		"reviews":     st,
		"form":        form,
		"formErrors":  formErrors,
		"sort":        sort,
		"sortOptions": SortOptions,
		"maxImageMB":  h.cfg.MaxImageBytes / (1024 * 1024),
		"imageBase":   h.cfg.ImageBaseURL,
	})
}

// Filter applies the filter form. The refetch is debounced and picked up by
// the index view the browser is sent back to.
func (h *pageHandler) Filter(c *gin.Context) {
	ws := view.Workspace(c)
	var patch domain.FilterPatch
	if v := strings.TrimSpace(c.PostForm("rating")); v == "" {
		patch.ClearRating = true
	} else if n, err := strconv.Atoi(v); err == nil {
		patch.Rating = &n
	}
	featured := c.PostForm("featured") != ""
	patch.FeaturedOnly = &featured
	search := strings.TrimSpace(c.PostForm("search"))
	patch.Search = &search
	if by, order, ok := strings.Cut(c.PostForm("sort"), ":"); ok {
		patch.SortBy, patch.SortOrder = &by, &order
	}
	ws.Reviews.UpdateFilters(patch)
	view.Redirect(c, "/")
}

func (h *pageHandler) CreateReview(c *gin.Context) {
	ws := view.Workspace(c)
	ctx := c.Request.Context()
	var in reviewInput
	if err := c.ShouldBind(&in); err != nil {
		h.log.Debugf("bind review form: %v", err)
	}
	form := domain.ReviewForm{
		Name:    in.Name,
		Email:   in.Email,
		Rating:  in.Rating,
		Title:   in.Title,
		Content: in.Content,
	}
	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err != nil {
			h.log.Warnf("open uploaded image: %v", err)
			view.Notify(c, workspace.FlashError, "The image could not be read.")
			view.Redirect(c, "/")
			return
		}
		defer f.Close()
		form.Image = &domain.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Data:        f,
		}
	}

	if ws.Reviews.CreateReview(ctx, form) {
		h.log.Infof("review by %q submitted", form.Name)
		view.Notify(c, workspace.FlashSuccess, ReviewThanks)
		view.Redirect(c, "/")
		return
	}
	st := ws.Reviews.Snapshot()
	ws.Reviews.ClearError()
	if len(st.FormErrors) > 0 {
		h.renderIndex(c, http.StatusUnprocessableEntity, in, st.FormErrors)
		return
	}
	view.Notify(c, workspace.FlashError, st.Error)
	view.Redirect(c, "/")
}

// Review shows one review with its comments. ?page=n keeps the first n pages
// of the thread loaded.
func (h *pageHandler) Review(c *gin.Context) {
	id, ok := util.GetIntParam(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	h.renderReview(c, id, http.StatusOK, commentInput{}, nil)
}

func (h *pageHandler) renderReview(c *gin.Context, id, status int, form commentInput, formErrors map[string]string) {
	ws := view.Workspace(c)
	ctx := c.Request.Context()
	review, err := ws.API.GetReview(ctx, id)
	if err != nil {
		if client.StatusCode(err) == http.StatusNotFound {
			h.notFound(c)
			return
		}
		h.log.Warnf("get review %d: %v", id, err)
		view.Render(c, http.StatusBadGateway, "error.html", gin.H{"message": client.Message(err)})
		return
	}
	thread := ws.Thread(id)
	if status == http.StatusOK {
		h.loadThread(ctx, ws, id, util.GetPage(c))
	}
	view.Render(c, status, "review.html", gin.H{
		"review":     review,
		"thread":     thread.Snapshot(),
		"form":       form,
		"formErrors": formErrors,
		"imageBase":  h.cfg.ImageBaseURL,
	})
}

func (h *pageHandler) loadThread(ctx context.Context, ws *workspace.Workspace, id, pages int) {
	thread := ws.Thread(id)
	if err := thread.Fetch(ctx, 1); err != nil {
		h.log.Debugf("comments of review %d: %v", id, err)
		return
	}
	for p := 2; p <= pages && thread.Snapshot().HasMore; p++ {
		if err := thread.LoadMore(ctx); err != nil {
			return
		}
	}
}

func (h *pageHandler) CreateComment(c *gin.Context) {
	id, ok := util.GetIntParam(c, "id")
	if !ok {
		h.notFound(c)
		return
	}
	ws := view.Workspace(c)
	var in commentInput
	if err := c.ShouldBind(&in); err != nil {
		h.log.Debugf("bind comment form: %v", err)
	}
	thread := ws.Thread(id)
	err := thread.Create(c.Request.Context(), domain.CommentForm{
		Name:    in.Name,
		Email:   in.Email,
		Content: in.Content,
	})
	switch {
	case err == nil:
		view.Notify(c, workspace.FlashSuccess, CommentThanks)
	case domain.IsValidationError(err):
		h.renderReview(c, id, http.StatusUnprocessableEntity, in, thread.Snapshot().FormErrors)
		return
	default:
		view.Fail(c, err)
	}
	view.Redirect(c, "/reviews/"+strconv.Itoa(id))
}

func (h *pageHandler) Error(c *gin.Context) {
	view.Render(c, http.StatusOK, "error.html", gin.H{"message": c.Query("message")})
}

func (h *pageHandler) notFound(c *gin.Context) {
	view.Render(c, http.StatusNotFound, "error.html", gin.H{"message": "This review does not exist."})
}
