package handler

import (
	"net/http"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/session"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

const LoggedOutMessage = "You have been logged out."

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type AuthHandler interface {
	Login(c *gin.Context)
	LoginPost(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	cfg *config.WebConfig
	log *logger.Logger
}

func NewAuthHandler(cfg *config.WebConfig, log *logger.Logger) AuthHandler {
	return &authHandler{cfg: cfg, log: log}
}

func (h *authHandler) Login(c *gin.Context) {
	ws := view.Workspace(c)
	if ws.Auth.IsAuthenticated() {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	view.Render(c, http.StatusOK, "login.html", gin.H{"username": ""})
}

func (h *authHandler) LoginPost(c *gin.Context) {
	ws := view.Workspace(c)
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.log.Debugf("bind login form: %v", err)
	}
	if !ws.Auth.Login(c.Request.Context(), domain.LoginForm{Username: req.Username, Password: req.Password}) {
		msg := ws.Auth.Error()
		ws.Auth.ClearError()
		view.Render(c, http.StatusUnauthorized, "login.html", gin.H{
			"username": req.Username,
			"error":    msg,
		})
		return
	}
	view.Notify(c, workspace.FlashSuccess, "Welcome back, "+ws.Auth.User().Username+"!")
	c.Redirect(http.StatusFound, "/admin")
}

func (h *authHandler) Logout(c *gin.Context) {
	ws := view.Workspace(c)
	if ws.Auth.Logout() {
		view.Notify(c, workspace.FlashInfo, LoggedOutMessage)
	}
	c.Redirect(http.StatusFound, session.LoginPath)
}
