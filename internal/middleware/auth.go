package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/security"
	"github.com/TristanBrian/MamaCare/internal/service"
)

// Authenticator resolves bearer tokens to live sessions.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.User, *security.AccessClaims, error)
	Touch(ctx context.Context, sessionID, ip, userAgent string)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// Auth requires a valid session and stores the user and claims on the
// context.
func Auth(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			Abort(c, http.StatusUnauthorized, "not_authenticated")
			return
		}
		if !authenticate(c, auth, token, log) {
			return
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a token is present and leaves the
// request anonymous otherwise. A presented but invalid token is rejected.
func OptionalAuth(auth Authenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" && !authenticate(c, auth, token, log) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, auth Authenticator, token string, log zerolog.Logger) bool {
	user, claims, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			Abort(c, http.StatusUnauthorized, "not_authenticated")
			return false
		}
		log.Error().Err(err).Msg("authenticate request")
		Abort(c, http.StatusInternalServerError, "internal")
		return false
	}

	auth.Touch(c.Request.Context(), claims.SessionID, c.ClientIP(), c.GetHeader("User-Agent"))

	c.Set(ctxAccessClaims, claims)
	c.Set(ctxCurrentUser, user)
	return true
}
