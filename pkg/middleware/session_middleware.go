package middleware

import (
	"net/http"

	"github.com/baronblk/guestbook-project/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie is the cookie that identifies a browser.
const SessionCookie = "gb_sid"

// BrowserSession returns a Gin middleware that makes sure every request
// carries a browser id. A missing or malformed gb_sid cookie is replaced by a
// fresh random id; the id is injected into the context for downstream handlers.
func BrowserSession(maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || !validID(sid) {
			sid = uuid.NewString()
		}
		// refresh the cookie on every request so idle browsers keep their id
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sid, maxAge, "/", "", secure, true)
		util.SetSessionID(c, sid)
		c.Next()
	}
}

func validID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
