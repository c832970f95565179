package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/access"
)

// SessionState reports how far the request's identity resolved. Requests
// are fully resolved by the time handlers run, so Loading never occurs.
func SessionState(c *gin.Context) access.State {
	if _, ok := CurrentUser(c); ok {
		return access.StateAuthenticated
	}
	return access.StateAnonymous
}

// Gate enforces req for the request's session: anonymous callers get 401,
// authenticated callers outside req get 403.
func Gate(req access.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := CurrentUser(c)
		decision := access.Decide(SessionState(c), user.Role, req)

		switch decision.Outcome {
		case access.OutcomeAllow:
			c.Next()
		case access.OutcomeDenyLogin:
			Abort(c, http.StatusUnauthorized, "not_authenticated")
		default:
			body := ErrorBody(c, "not_authorized")
			body["redirect"] = decision.Redirect
			c.AbortWithStatusJSON(http.StatusForbidden, body)
		}
	}
}
