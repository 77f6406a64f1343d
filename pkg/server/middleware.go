package server

import (
	"github.com/gin-gonic/gin"
	"github.com/sheetsage/sheetsage/pkg/model"
)

const currentUserKey = "currentUser"

// resolveSession resolves the session cookie into the current user exactly
// once per request. Core logic receives the result explicitly; an absent or
// expired session yields an anonymous request, never an error. A session
// store failure is treated the same way: the error is logged and the request
// proceeds anonymously, so endpoints that work without a principal keep
// working while history endpoints reject via their own principal check.
func (h *Handler) resolveSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := h.auth.Resolve(c.Request.Context(), model.SessionToken(token))
		if err != nil {
			h.logger.Error("failed to resolve session", "error", err)
		}

		if user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

// currentUser returns the resolved principal, or nil for anonymous requests
func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return user
}
