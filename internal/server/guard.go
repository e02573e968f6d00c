package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"task-manager/internal/model"
)

const userKey = "user"

// guard resolves the bearer token to an active user and stores it on the context.
// allowQuery also accepts the token from the "token" query parameter.
func (s *Server) guard(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQuery {
			token = strings.TrimSpace(c.Query("token"))
		}

		user, err := s.svc.Auth.Authorize(c.Request.Context(), token)
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the user stored by guard.
func currentUser(c *gin.Context) *model.User {
	return c.MustGet(userKey).(*model.User)
}
