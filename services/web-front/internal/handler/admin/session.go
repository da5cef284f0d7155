package handler

import (
	"net/http"

	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/session"
	"github.com/gin-gonic/gin"
)

// SessionStatus reports the countdown polled by the admin pages. A redirect
// queued by the expiry flow is handed to the script.
func (h *adminHandler) SessionStatus(c *gin.Context) {
	ws := view.Workspace(c)
	st := ws.Status()
	if to, ok := ws.TakeRedirect(); ok {
		st.Redirect = to
	}
	c.JSON(http.StatusOK, st)
}

// SessionPing runs a check when the admin page becomes visible again.
func (h *adminHandler) SessionPing(c *gin.Context) {
	ws := view.Workspace(c)
	ws.Monitor.Refocus(c.Request.Context())
	h.SessionStatus(c)
}

// SessionExtend refreshes or revalidates the session on request.
func (h *adminHandler) SessionExtend(c *gin.Context) {
	ws := view.Workspace(c)
	if !ws.Extend(c.Request.Context()) {
		st := ws.Status()
		st.Redirect = session.LoginPath
		if to, ok := ws.TakeRedirect(); ok {
			st.Redirect = to
		}
		c.JSON(http.StatusUnauthorized, st)
		return
	}
	c.JSON(http.StatusOK, ws.Status())
}
