package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextKeyReadOnly is set for templates so that forms can be hidden.
const ContextKeyReadOnly = "read_only"

const readOnlyMessage = "The library is in read-only mode"

// ReadOnly blocks write operations during maintenance. Reads are always
// allowed.
type ReadOnly struct {
	enabled bool
}

func NewReadOnly(enabled bool) *ReadOnly {
	return &ReadOnly{enabled: enabled}
}

// Handler returns a Gin middleware that blocks write operations.
func (m *ReadOnly) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyReadOnly, m.enabled)

		if !m.enabled {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		m.respondBlocked(c)
	}
}

// respondBlocked sends a 403 response in the format the caller expects.
func (m *ReadOnly) respondBlocked(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, APIPrefix) || strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     readOnlyMessage,
			"read_only": true,
		})
		return
	}

	c.String(http.StatusForbidden, readOnlyMessage)
	c.Abort()
}
