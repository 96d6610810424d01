package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"claimdesk/internal/auth"
	"claimdesk/internal/models"
	"claimdesk/internal/storage"
)

// actorKey is the gin context key holding the authenticated actor.
const actorKey = "actor"

// GetActor extracts the authenticated actor from the context. The zero Actor
// (empty role, denied everywhere) is returned if authentication never ran.
func GetActor(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

// RequireAuth validates the bearer token and loads the current user. The
// actor's role comes from the database, not the token, so a role change or
// deactivation takes effect on the user's next request.
func RequireAuth(jwtManager *auth.JWTManager, store storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortError(c, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortError(c, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			abortError(c, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		user, err := store.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil || !user.Active {
			abortError(c, http.StatusUnauthorized, auth.ErrInvalidToken.Error())
			return
		}

		c.Set(actorKey, user.Actor())
		c.Next()
	}
}

// RequireRole allows the request through only for the listed roles. Must be
// chained after RequireAuth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		abortError(c, http.StatusForbidden, "you do not have permission to perform this action")
	}
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
