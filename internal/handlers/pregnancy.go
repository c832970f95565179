package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/middleware"
	"github.com/TristanBrian/MamaCare/internal/service"
)

func (h HandlerSet) PregnancyProgress(c *gin.Context) {
	progress, err := h.pregnancy.Progress(currentUser(c), c.Query("dueDate"), middleware.Locale(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h HandlerSet) Assistant(c *gin.Context) {
	var req service.AssistantInput
	if !bindJSON(c, &req) {
		return
	}

	reply, err := service.Reply(req, middleware.Locale(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reply)
}
