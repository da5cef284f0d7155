package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const sessionIDKey = "session_id"

// SetSessionID stores the browser id resolved by the session middleware.
func SetSessionID(c *gin.Context, id string) {
	c.Set(sessionIDKey, id)
}

// GetSessionID extracts the browser id set by the session middleware
func GetSessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(sessionIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// GetIntParam extracts a positive integer path parameter
func GetIntParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// GetPage extracts the page query parameter, defaulting to 1
func GetPage(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
