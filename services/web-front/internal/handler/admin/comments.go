package handler

import (
	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

func commentID(c *gin.Context) (int, bool) {
	id, ok := util.GetIntParam(c, "id")
	if !ok {
		view.Notify(c, workspace.FlashError, "Unknown comment.")
		view.Redirect(c, view.AdminReturn(c))
	}
	return id, ok
}

func (h *adminHandler) ApproveComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	err := ws.Comments.Approve(c.Request.Context(), id)
	ws.Comments.ClearError()
	h.done(c, err, "Comment approved.")
}

func (h *adminHandler) DeleteComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}
	ws := view.Workspace(c)
	err := ws.Comments.Delete(c.Request.Context(), id)
	ws.Comments.ClearError()
	h.done(c, err, "Comment deleted.")
}
