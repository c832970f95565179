package models

import (
	"slices"
	"time"
)

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleHospital UserRole = "hospital"
	UserRoleDoctor   UserRole = "doctor"
	UserRolePatient  UserRole = "patient"
)

// UserRoles lists every role in a stable order.
var UserRoles = []UserRole{UserRoleAdmin, UserRoleHospital, UserRoleDoctor, UserRolePatient}

func (r UserRole) Valid() bool {
	return slices.Contains(UserRoles, r)
}

// User is a portal account. Role is fixed at registration.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash []byte         `json:"-"`
	FullName     string         `json:"fullName"`
	Role         UserRole       `json:"role"`
	ProfileData  map[string]any `json:"profileData,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ProfileString returns a string attribute from the profile, or "".
func (u User) ProfileString(key string) string {
	if u.ProfileData == nil {
		return ""
	}
	if v, ok := u.ProfileData[key].(string); ok {
		return v
	}
	return ""
}

type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	DeviceID         string    `json:"deviceId"`
	DeviceName       string    `json:"deviceName"`
	RefreshTokenHash []byte    `json:"-"`
	IPAddress        string    `json:"ipAddress"`
	UserAgent        string    `json:"userAgent"`
	CreatedAt        time.Time `json:"createdAt"`
	LastSeenAt       time.Time `json:"lastSeenAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}
