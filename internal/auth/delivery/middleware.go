package delivery

import (
	"strings"

	"inboxpilot-backend/internal/apperror"
	authdomain "inboxpilot-backend/internal/auth/domain"
	"inboxpilot-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	// SessionCookie carries the identity token on browser redirects (OAuth callback).
	SessionCookie = "session"
)

// AuthMiddleware accepts only an Authorization: Bearer token.
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return authenticate(authUsecase, false)
}

// CallbackAuthMiddleware also accepts the session cookie. It is meant for the
// OAuth callback only, which the browser reaches through a redirect.
func CallbackAuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return authenticate(authUsecase, true)
}

func authenticate(authUsecase usecase.AuthUsecase, allowCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c, allowCookie)
		if !ok {
			apperror.Respond(c, apperror.Unauthorized())
			return
		}

		identity, err := authUsecase.ValidateToken(token)
		if err != nil {
			apperror.Respond(c, apperror.Unauthorized())
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowCookie bool) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if !allowCookie {
		return "", false
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

// CurrentIdentity returns the identity set by AuthMiddleware.
func CurrentIdentity(c *gin.Context) (*authdomain.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*authdomain.Identity)
	if !ok || identity == nil || identity.UserID == "" {
		return nil, false
	}
	return identity, true
}

// RequireIdentity is CurrentIdentity for handlers: it writes 401 when absent.
func RequireIdentity(c *gin.Context) (*authdomain.Identity, bool) {
	identity, ok := CurrentIdentity(c)
	if !ok {
		apperror.Respond(c, apperror.Unauthorized())
		return nil, false
	}
	return identity, true
}
