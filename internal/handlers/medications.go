package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/service"
)

func (h HandlerSet) ListMedications(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	items, err := h.medications.List(ctx, user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	today, err := h.medications.Today(ctx, user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"today": today,
	})
}

func (h HandlerSet) AddMedication(c *gin.Context) {
	var req service.MedicationInput
	if !bindJSON(c, &req) {
		return
	}

	med, err := h.medications.Add(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"medication": med,
	})
}

func (h HandlerSet) GetMedication(c *gin.Context) {
	med, err := h.medications.Get(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medication": med,
	})
}

func (h HandlerSet) UpdateMedication(c *gin.Context) {
	var req service.MedicationInput
	if !bindJSON(c, &req) {
		return
	}

	med, err := h.medications.Update(c.Request.Context(), currentUser(c).ID, c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medication": med,
	})
}

func (h HandlerSet) DeleteMedication(c *gin.Context) {
	if err := h.medications.Delete(c.Request.Context(), currentUser(c).ID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ToggleMedication(c *gin.Context) {
	med, err := h.medications.ToggleTakenToday(c.Request.Context(), currentUser(c).ID, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"medication": med,
	})
}
