package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/TristanBrian/MamaCare/internal/i18n"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/security"
)

const (
	ctxCurrentUser  = "current_user"
	ctxAccessClaims = "access_claims"
	ctxLocale       = "locale"
)

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxCurrentUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func AccessClaims(c *gin.Context) (*security.AccessClaims, bool) {
	v, ok := c.Get(ctxAccessClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*security.AccessClaims)
	return claims, ok && claims != nil
}

// Locale returns the language negotiated for the request, English by
// default.
func Locale(c *gin.Context) language.Tag {
	if v, ok := c.Get(ctxLocale); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return i18n.English
}

// ErrorBody is the JSON error envelope: a stable code plus a message in the
// request's language.
func ErrorBody(c *gin.Context, code string) gin.H {
	return gin.H{"error": code, "message": i18n.T(Locale(c), "error."+code)}
}

func Abort(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, ErrorBody(c, code))
}
