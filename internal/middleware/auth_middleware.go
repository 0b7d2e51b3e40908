package middleware

import (
	"strings"

	"sikseb/internal/mockapi"
	"sikseb/internal/models"
	"sikseb/pkg/jwt"
	"sikseb/pkg/response"

	"github.com/gin-gonic/gin"
)

const unauthenticated = "Unauthenticated."

// AuthMiddleware guards the stub backend routes with bearer JWTs.
type AuthMiddleware struct {
	store      *mockapi.Store
	jwtManager *jwt.JWTManager
}

func NewAuthMiddleware(store *mockapi.Store, jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		store:      store,
		jwtManager: jwtManager,
	}
}

// RequireLogin verifies the bearer token and loads the user into the context.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, unauthenticated)
			return
		}

		claims, err := m.jwtManager.VerifyToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			response.Unauthorized(c, unauthenticated)
			return
		}

		user, ok := m.store.UserByID(claims.UserID)
		if !ok || user.Status != models.UserStatusActive {
			response.Unauthorized(c, unauthenticated)
			return
		}

		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("claims", claims)
		c.Next()
	}
}

// RequirePermission needs RequireLogin earlier in the chain.
func (m *AuthMiddleware) RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("user")
		if !exists {
			response.Unauthorized(c, unauthenticated)
			return
		}
		user := value.(models.User)
		for _, p := range user.Permissions {
			if p == code {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Anda tidak memiliki izin: "+code)
	}
}

// CombineMiddleware is RequireLogin followed by RequirePermission.
func (m *AuthMiddleware) CombineMiddleware(code string) []gin.HandlerFunc {
	return []gin.HandlerFunc{m.RequireLogin(), m.RequirePermission(code)}
}
