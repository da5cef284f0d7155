package handler

import (
	"context"
	"net/http"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/store"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
)

// Review list filters of the reviews tab.
const (
	FilterAll      = "all"
	FilterApproved = "approved"
	FilterHidden   = "hidden"
)

type AdminHandler interface {
	Dashboard(c *gin.Context)

	ToggleReview(c *gin.Context)
	UpdateReview(c *gin.Context)
	DeleteReview(c *gin.Context)
	ApproveReview(c *gin.Context)
	RejectReview(c *gin.Context)

	ApproveComment(c *gin.Context)
	DeleteComment(c *gin.Context)

	CreateUser(c *gin.Context)
	UpdateUser(c *gin.Context)
	ActivateUser(c *gin.Context)
	DeactivateUser(c *gin.Context)
	DeleteUser(c *gin.Context)
	ChangePassword(c *gin.Context)

	Export(c *gin.Context)
	ExportLegacy(c *gin.Context)
	Import(c *gin.Context)

	SessionStatus(c *gin.Context)
	SessionPing(c *gin.Context)
	SessionExtend(c *gin.Context)
}

type adminHandler struct {
	cfg *config.WebConfig
	log *logger.Logger
}

func NewAdminHandler(cfg *config.WebConfig, log *logger.Logger) AdminHandler {
	return &adminHandler{cfg: cfg, log: log}
}

// Dashboard renders one section of the admin area, chosen by ?tab=.
func (h *adminHandler) Dashboard(c *gin.Context) {
	ws := view.Workspace(c)
	user := ws.Auth.User()
	section := domain.SectionModeration
	for _, s := range domain.Sections {
		if string(s) == c.Query("tab") {
			section = s
		}
	}
	if !user.Can(section) {
		view.Notify(c, workspace.FlashError, "You do not have permission to access "+section.Label()+".")
		view.Redirect(c, "/admin")
		return
	}

	data := gin.H{"section": section, "return": c.Request.URL.RequestURI()}
	ctx := c.Request.Context()
	switch section {
	case domain.SectionModeration:
		h.loadModeration(ctx, c, ws, data)
	case domain.SectionReviews:
		h.loadReviews(ctx, c, ws, data)
	case domain.SectionComments:
		h.loadComments(ctx, c, ws, data)
	case domain.SectionAdminManagement:
		view.Fail(c, ws.Users.Fetch(ctx, util.GetPage(c)))
		data["users"] = ws.Users.Snapshot()
		data["roles"] = []domain.Role{domain.RoleModerator, domain.RoleAdmin, domain.RoleSuperuser}
		ws.Users.ClearError()
	case domain.SectionImportExport:
		h.loadStats(ctx, c, ws, data)
	case domain.SectionSecurity:
		if exp, ok := ws.Timer.Expiry(); ok {
			data["expiresAt"] = exp
		}
	}
	view.Render(c, http.StatusOK, "admin.html", data)
}

func (h *adminHandler) loadStats(ctx context.Context, c *gin.Context, ws *workspace.Workspace, data gin.H) {
	if err := ws.AdminReviews.FetchStats(ctx); err != nil {
		h.log.Debugf("admin stats: %v", err)
	}
	data["stats"] = ws.AdminReviews.Snapshot().Stats
}

func (h *adminHandler) loadModeration(ctx context.Context, c *gin.Context, ws *workspace.Workspace, data gin.H) {
	view.Fail(c, ws.Pending.FetchAdminReviews(ctx, util.GetPage(c), nil))
	ws.Pending.ClearError()
	data["pending"] = ws.Pending.Snapshot()
	h.loadStats(ctx, c, ws, data)
}

func (h *adminHandler) loadReviews(ctx context.Context, c *gin.Context, ws *workspace.Workspace, data gin.H) {
	filter := c.DefaultQuery("filter", FilterAll)
	var approvedOnly *bool
	switch filter {
	case FilterApproved:
		v := true
		approvedOnly = &v
	case FilterHidden:
		v := false
		approvedOnly = &v
	default:
		filter = FilterAll
	}
	view.Fail(c, ws.AdminReviews.FetchAdminReviews(ctx, util.GetPage(c), approvedOnly))
	ws.AdminReviews.ClearError()
	data["filter"] = filter
	data["reviews"] = ws.AdminReviews.Snapshot()
}

// loadComments opens the requested comment tab, the requested page of the
// current tab, or the tab remembered from the last visit.
func (h *adminHandler) loadComments(ctx context.Context, c *gin.Context, ws *workspace.Workspace, data gin.H) {
	var err error
	switch {
	case c.Query("ctab") != "":
		tab, ok := store.ParseCommentTab(c.Query("ctab"))
		if !ok {
			tab = store.TabPending
		}
		err = ws.Comments.SwitchTab(ctx, tab)
	case c.Query("cpage") != "":
		page := 1
		if n, ok := positive(c.Query("cpage")); ok {
			page = n
		}
		err = ws.Comments.SetPage(ctx, page)
	default:
		err = ws.Comments.Load(ctx)
	}
	view.Fail(c, err)
	ws.Comments.ClearError()
	data["comments"] = ws.Comments.Snapshot()
}
