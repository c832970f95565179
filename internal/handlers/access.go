package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/access"
	"github.com/TristanBrian/MamaCare/internal/middleware"
)

type accessCheckResponse struct {
	State    string          `json:"state"`
	Decision access.Decision `json:"decision"`
}

// CheckAccess evaluates a route requirement for the caller so the client
// can redirect early. Handlers enforce the same rules independently.
func (h HandlerSet) CheckAccess(c *gin.Context) {
	var req access.Requirement
	if !bindJSON(c, &req) {
		return
	}
	for i, role := range req.Roles {
		if !role.Valid() {
			invalid(c, "requiredRoles["+strconv.Itoa(i)+"]", "must be one of: admin hospital doctor patient")
			return
		}
	}

	user, _ := middleware.CurrentUser(c)
	state := middleware.SessionState(c)

	c.JSON(http.StatusOK, accessCheckResponse{
		State:    state.String(),
		Decision: access.Decide(state, user.Role, req),
	})
}
