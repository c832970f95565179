package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/service"
)

func (h HandlerSet) ScheduleAppointment(c *gin.Context) {
	var req service.ScheduleInput
	if !bindJSON(c, &req) {
		return
	}

	appt, err := h.appointments.Schedule(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": appt,
	})
}

func (h HandlerSet) ListAppointments(c *gin.Context) {
	items, err := h.appointments.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if items == nil {
		items = []models.Appointment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
	})
}

func (h HandlerSet) GetAppointment(c *gin.Context) {
	appt, err := h.appointments.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointment": appt,
	})
}
