package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TristanBrian/MamaCare/internal/middleware"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/service"
)

// Registration fields that are not profile attributes.
var registerControlKeys = []string{"email", "password", "fullName", "role", "deviceId", "deviceName"}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// RegisterUser accepts the account fields plus any role-specific profile
// attributes in one flat JSON object.
func (h HandlerSet) RegisterUser(c *gin.Context) {
	var body map[string]any
	if !bindJSON(c, &body) {
		return
	}

	profile := make(map[string]any, len(body))
	for k, v := range body {
		profile[k] = v
	}
	for _, k := range registerControlKeys {
		delete(profile, k)
	}

	var actor *models.User
	if user, ok := middleware.CurrentUser(c); ok {
		actor = &user
	}

	result, err := h.auth.Register(c.Request.Context(), actor, service.RegisterInput{
		Email:    stringField(body, "email"),
		Password: stringField(body, "password"),
		FullName: stringField(body, "fullName"),
		Role:     models.UserRole(stringField(body, "role")),
		Profile:  profile,
		Device:   h.device(c, stringField(body, "deviceId"), stringField(body, "deviceName")),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h HandlerSet) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user": currentUser(c),
	})
}

func (h HandlerSet) UpdateProfile(c *gin.Context) {
	var partial map[string]any
	if !bindJSON(c, &partial) {
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, partial)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h HandlerSet) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		invalid(c, "file", "is required")
		return
	}
	defer file.Close()

	user, err := h.avatars.Upload(c.Request.Context(), currentUser(c), service.AvatarInput{
		File:         file,
		DeclaredType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

func (h HandlerSet) ListUsers(c *gin.Context) {
	limit := 50
	offset := 0

	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 {
			offset = (v - 1) * limit
		}
	}

	users, err := h.auth.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": users,
	})
}
