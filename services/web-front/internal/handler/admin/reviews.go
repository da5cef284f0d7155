package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/store"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

func positive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// reviewID reads :id, flashing an error and going back when it is malformed.
func reviewID(c *gin.Context) (int, bool) {
	id, ok := util.GetIntParam(c, "id")
	if !ok {
		view.Notify(c, workspace.FlashError, "Unknown review.")
		view.Redirect(c, view.AdminReturn(c))
	}
	return id, ok
}

// ToggleReview flips the visibility of a review. The cached approval flag is
// used when the review is on the current page, the server's copy otherwise.
func (h *adminHandler) ToggleReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	ctx := c.Request.Context()
	err := ws.AdminReviews.ToggleReviewVisibility(ctx, id)
	if errors.Is(err, store.ErrReviewNotLoaded) {
		var current *domain.Review
		if current, err = ws.API.AdminGetReview(ctx, id); err == nil {
			next := !current.IsApproved
			err = ws.AdminReviews.UpdateReview(ctx, id, domain.ReviewUpdate{IsApproved: &next})
		}
	}
	ws.AdminReviews.ClearError()
	if err != nil {
		view.Fail(c, err)
	} else if r, ok := ws.AdminReviews.Review(id); ok && !r.IsApproved {
		view.Notify(c, workspace.FlashSuccess, "Review hidden.")
	} else {
		view.Notify(c, workspace.FlashSuccess, "Review visibility changed.")
	}
	view.Redirect(c, view.AdminReturn(c))
}

// UpdateReview saves the moderator fields of a review.
func (h *adminHandler) UpdateReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	featured := c.PostForm("featured") != ""
	notes := strings.TrimSpace(c.PostForm("admin_notes"))
	in := domain.ReviewUpdate{IsFeatured: &featured, AdminNotes: &notes}
	if title, ok := c.GetPostForm("title"); ok {
		title = strings.TrimSpace(title)
		in.Title = &title
	}
	err := ws.AdminReviews.UpdateReview(c.Request.Context(), id, in)
	ws.AdminReviews.ClearError()
	h.done(c, err, "Review updated.")
}

func (h *adminHandler) DeleteReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	err := ws.AdminReviews.DeleteReview(c.Request.Context(), id)
	ws.AdminReviews.ClearError()
	if err == nil {
		h.log.Infof("review %d deleted", id)
	}
	h.done(c, err, "Review deleted.")
}

func (h *adminHandler) ApproveReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	err := ws.Pending.ApproveReview(c.Request.Context(), id)
	ws.Pending.ClearError()
	h.done(c, err, "Review approved.")
}

func (h *adminHandler) RejectReview(c *gin.Context) {
	id, ok := reviewID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	err := ws.Pending.RejectReview(c.Request.Context(), id)
	ws.Pending.ClearError()
	h.done(c, err, "Review rejected.")
}

// done reports the outcome of an action and returns to the admin view.
func (h *adminHandler) done(c *gin.Context, err error, success string) {
	if err != nil {
		view.Fail(c, err)
	} else {
		view.Notify(c, workspace.FlashSuccess, success)
	}
	view.Redirect(c, view.AdminReturn(c))
}
