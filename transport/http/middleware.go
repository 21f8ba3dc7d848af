package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/idemlab/aegis/core"
	"github.com/idemlab/aegis/service"
)

// Context keys set by the session middleware.
const (
	ContextSubjectID    = "subjectID"
	ContextSessionToken = "sessionToken"
)

// SessionMiddleware creates middleware that validates bearer session tokens.
func SessionMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		token := auth[7:]

		session, err := authService.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			}
			return
		}

		c.Set(ContextSubjectID, session.SubjectID)
		c.Set(ContextSessionToken, token)

		c.Next()
	}
}
