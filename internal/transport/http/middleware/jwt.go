package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bloglist-api/internal/app"
	"bloglist-api/internal/model"
)

const (
	ContextTokenKey = "token"
	ContextUserKey  = "user"

	bearerPrefix = "Bearer "
)

// ExtractToken returns the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-sensitively with exactly one space;
// anything else yields "".
func ExtractToken(authorization string) string {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(authorization, bearerPrefix)
}

// TokenExtractor stores the bearer token, or "", for every request. Missing
// tokens are normal on public routes and are not an error here.
func TokenExtractor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextTokenKey, ExtractToken(c.GetHeader("Authorization")))
		c.Next()
	}
}

// UserExtractor guards a route: the extracted token must resolve to an
// existing user, which is then stored in the context.
func UserExtractor(authService *app.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authService.Authenticate(c.Request.Context(), c.GetString(ContextTokenKey))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok && user != nil
}
