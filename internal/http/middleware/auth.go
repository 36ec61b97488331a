package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"rideshare/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

// TokenParser turns a bearer token into the caller identity.
type TokenParser func(raw string) (domain.RequestContext, error)

// AuthRequired rejects requests without a valid bearer token and stores the
// caller in the gin context.
func AuthRequired(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		rc, err := parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(userIDKey, int64(rc.UserID))
		c.Set(userEmailKey, rc.Email)
		c.Next()
	}
}

// RequireSameUser only lets the authenticated user act on their own :param record.
func RequireSameUser(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := CurrentUserID(c)
		if !ok {
			abortUnauthorized(c, "unauthorized")
			return
		}
		target, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || target != uid {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden: you can only modify your own account",
				"code":       "forbidden",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by AuthRequired.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func CurrentUserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
