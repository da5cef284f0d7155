package handler

import (
	"html/template"
	"net/http"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/pkg/middleware"
	"github.com/baronblk/guestbook-project/services/web-front/internal/config"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	admin "github.com/baronblk/guestbook-project/services/web-front/internal/handler/admin"
	auth "github.com/baronblk/guestbook-project/services/web-front/internal/handler/auth"
	page "github.com/baronblk/guestbook-project/services/web-front/internal/handler/page"
	"github.com/baronblk/guestbook-project/services/web-front/internal/handler/view"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/baronblk/guestbook-project/services/web-front/templates"
	"github.com/gin-gonic/gin"
)

// cookieMaxAge keeps the browser id well beyond workspace eviction so a
// returning browser finds its persisted session.
const cookieMaxAge = 30 * 24 * 60 * 60

// LoadTemplates parses the embedded views with the view helpers.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(view.Funcs()).ParseFS(templates.FS, "html/*.html")
}

// NewRouter builds the gin engine serving the guestbook front.
func NewRouter(cfg *config.WebConfig, reg *workspace.Registry, log *logger.Logger) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	r := gin.Default()
	r.SetHTMLTemplate(tmpl)

	pageH := page.NewPageHandler(cfg, log)
	authH := auth.NewAuthHandler(cfg, log)
	adminH := admin.NewAdminHandler(cfg, log)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		log.Debug("health check OK")
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"workspaces": reg.Len(),
		})
	})

	app := r.Group("/", middleware.BrowserSession(cookieMaxAge, cfg.CookieSecure), view.Resolve(reg, log))
	app.GET("/", pageH.Index)
	app.POST("/reviews", pageH.CreateReview)
	app.POST("/reviews/filter", pageH.Filter)
	app.GET("/reviews/:id", pageH.Review)
	app.POST("/reviews/:id/comments", pageH.CreateComment)
	app.GET("/error", pageH.Error)

	app.GET("/admin/login", authH.Login)
	app.POST("/admin/login", authH.LoginPost)
	app.POST("/admin/logout", authH.Logout)

	protected := app.Group("/admin", view.RequireAdmin())
	protected.GET("", adminH.Dashboard)
	protected.POST("/password", adminH.ChangePassword)
	protected.GET("/session", adminH.SessionStatus)
	protected.POST("/session/ping", adminH.SessionPing)
	protected.POST("/session/extend", adminH.SessionExtend)

	moderation := protected.Group("/reviews/:id", view.RequireSection(domain.SectionModeration))
	moderation.POST("/approve", adminH.ApproveReview)
	moderation.POST("/reject", adminH.RejectReview)

	reviews := protected.Group("/reviews/:id", view.RequireSection(domain.SectionReviews))
	reviews.POST("/toggle", adminH.ToggleReview)
	reviews.POST("/update", adminH.UpdateReview)
	reviews.POST("/delete", adminH.DeleteReview)

	comments := protected.Group("/comments/:id", view.RequireSection(domain.SectionComments))
	comments.POST("/approve", adminH.ApproveComment)
	comments.POST("/delete", adminH.DeleteComment)

	users := protected.Group("/users", view.RequireSection(domain.SectionAdminManagement))
	users.POST("", adminH.CreateUser)
	users.POST("/:id", adminH.UpdateUser)
	users.POST("/:id/activate", adminH.ActivateUser)
	users.POST("/:id/deactivate", adminH.DeactivateUser)
	users.POST("/:id/delete", adminH.DeleteUser)

	backup := protected.Group("", view.RequireSection(domain.SectionImportExport))
	backup.GET("/export", adminH.Export)
	backup.GET("/export/legacy", adminH.ExportLegacy)
	backup.POST("/import", adminH.Import)

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{"message": "Page not found."})
	})
	return r, nil
}
