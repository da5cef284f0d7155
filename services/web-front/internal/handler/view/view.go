package view

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/baronblk/guestbook-project/pkg/logger"
	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/baronblk/guestbook-project/services/web-front/internal/client"
	"github.com/baronblk/guestbook-project/services/web-front/internal/domain"
	"github.com/baronblk/guestbook-project/services/web-front/internal/session"
	"github.com/baronblk/guestbook-project/services/web-front/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

const workspaceKey = "workspace"

// ErrNoWorkspace is returned when a handler runs outside the workspace middleware.
var ErrNoWorkspace = errors.New("no workspace bound to request")

// Resolve binds the browser's workspace to the request and records the view.
func Resolve(reg *workspace.Registry, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := util.GetSessionID(c)
		if !ok {
			log.Error("request without browser id")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ws := reg.Get(c.Request.Context(), sid)
		ws.Visit(c.Request.URL.Path)
		c.Set(workspaceKey, ws)
		c.Next()
	}
}

// Workspace returns the workspace bound by Resolve.
func Workspace(c *gin.Context) *workspace.Workspace {
	v, ok := c.Get(workspaceKey)
	if !ok {
		panic(ErrNoWorkspace)
	}
	return v.(*workspace.Workspace)
}

// RequireAdmin sends anonymous browsers to the login view.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := Workspace(c)
		if ws.Auth.IsAuthenticated() {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"authenticated": false,
				"redirect":      session.LoginPath,
			})
			return
		}
		to, ok := ws.TakeRedirect()
		if !ok {
			to = session.LoginPath
		}
		c.Redirect(http.StatusFound, to)
		c.Abort()
	}
}

// RequireSection rejects users whose role does not open section.
func RequireSection(section domain.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := Workspace(c)
		if ws.Auth.User().Can(section) {
			c.Next()
			return
		}
		msg := fmt.Sprintf("You do not have permission to access %s.", section.Label())
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": msg})
			return
		}
		ws.Flash(workspace.FlashError, msg)
		c.Redirect(http.StatusFound, "/admin")
		c.Abort()
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/admin/session") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// Render executes a template with the data every page needs. A redirect
// queued by the session manager wins over the page.
func Render(c *gin.Context, status int, name string, data gin.H) {
	ws := Workspace(c)
	if to, ok := ws.TakeRedirect(); ok && to != c.Request.URL.Path {
		c.Redirect(http.StatusFound, to)
		return
	}
	if data == nil {
		data = gin.H{}
	}
	user := ws.Auth.User()
	data["path"] = c.Request.URL.Path
	data["flashes"] = ws.Flashes()
	data["user"] = user
	data["authenticated"] = ws.Auth.IsAuthenticated()
	data["session"] = ws.Status()
	data["sections"] = domain.VisibleSections(user)
	c.HTML(status, name, data)
}

// Redirect sends the browser to to, unless the session manager queued the login view.
func Redirect(c *gin.Context, to string) {
	if pending, ok := Workspace(c).TakeRedirect(); ok {
		to = pending
	}
	c.Redirect(http.StatusFound, to)
}

// Fail reports err as a notice. Auth failures are left to the expiry flow.
func Fail(c *gin.Context, err error) {
	if err == nil || client.IsAuthError(err) {
		return
	}
	Workspace(c).Flash(workspace.FlashError, client.Message(err))
}

// Notify queues a notice for the next rendered page.
func Notify(c *gin.Context, level, msg string) {
	Workspace(c).Flash(level, msg)
}

// AdminReturn picks the admin view to go back to after an action.
func AdminReturn(c *gin.Context) string {
	to := c.PostForm("return")
	if to == "/admin" || strings.HasPrefix(to, "/admin?") {
		return to
	}
	return "/admin"
}

var policy = bluemonday.StrictPolicy()

// Sanitize strips every tag from user supplied text. The result is escaped
// HTML and is inserted into templates as is.
func Sanitize(s string) template.HTML {
	return template.HTML(policy.Sanitize(s))
}

// Funcs are the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"clean":      Sanitize,
		"paragraphs": func(s string) []template.HTML {
			var out []template.HTML
			for _, p := range strings.Split(s, "\n") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, Sanitize(p))
				}
			}
			return out
		},
		"stars": func(n int) string {
			if n < 0 {
				n = 0
			}
			if n > 5 {
				n = 5
			}
			return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("02.01.2006 15:04")
		},
		"roleLabel":    func(r domain.Role) string { return r.Label() },
		"sectionLabel": func(s domain.Section) string { return s.Label() },
		"add":          func(a, b int) int { return a + b },
		"sub":          func(a, b int) int { return a - b },
		"deref":        func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"ratings": func() []int { return []int{5, 4, 3, 2, 1} },
		"pager":   func(p domain.Pagination, base, param string) map[string]interface{} {
			return map[string]interface{}{"p": p, "base": base, "param": param}
		},
	}
}
