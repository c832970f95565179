package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/middleware"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/service"
)

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrNotAuthenticated, http.StatusUnauthorized, "not_authenticated"},
	{service.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{service.ErrTooManyAttempts, http.StatusTooManyRequests, "too_many_attempts"},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable, "storage_unavailable"},
	{service.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, "unsupported_media"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
}

func (h HandlerSet) respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		invalid(c, ve.Field, ve.Message)
		return
	}
	if errors.Is(err, service.ErrValidation) {
		middleware.Abort(c, http.StatusBadRequest, "validation_failed")
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			middleware.Abort(c, e.status, e.code)
			return
		}
	}

	h.log.Error().Err(err).
		Str("route", c.FullPath()).
		Str("request_id", c.Writer.Header().Get("X-Request-Id")).
		Msg("request failed")
	_ = c.Error(err)
	middleware.Abort(c, http.StatusInternalServerError, "internal")
}

func invalid(c *gin.Context, field, detail string) {
	body := middleware.ErrorBody(c, "validation_failed")
	body["field"] = field
	body["detail"] = detail
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// bindJSON decodes the body into v, answering 400 on malformed input.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		invalid(c, "body", "must be a valid JSON document")
		return false
	}
	return true
}

// currentUser is only called behind middleware.Auth.
func currentUser(c *gin.Context) models.User {
	user, _ := middleware.CurrentUser(c)
	return user
}
