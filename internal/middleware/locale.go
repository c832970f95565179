package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/TristanBrian/MamaCare/internal/i18n"
)

// LocaleSelector picks the response language from ?lang= or Accept-Language.
func LocaleSelector(fallback language.Tag) gin.HandlerFunc {
	return func(c *gin.Context) {
		tag, ok := i18n.Parse(c.Query("lang"))
		if !ok {
			tag = i18n.Match(c.GetHeader("Accept-Language"), fallback)
		}
		c.Set(ctxLocale, tag)
		c.Header("Content-Language", tag.String())
		c.Next()
	}
}
