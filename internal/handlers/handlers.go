package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/access"
	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/middleware"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/service"
)

// HealthCheck pings one backing dependency.
type HealthCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type Services struct {
	Auth          *service.AuthService
	Appointments  *service.AppointmentService
	Notifications *service.NotificationService
	Medications   *service.MedicationService
	Pregnancy     *service.PregnancyService
	Avatars       *service.AvatarService
}

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	auth          *service.AuthService
	appointments  *service.AppointmentService
	notifications *service.NotificationService
	medications   *service.MedicationService
	pregnancy     *service.PregnancyService
	avatars       *service.AvatarService
	limiter       *middleware.RateLimiter
	idempotency   middleware.IdempotencyStore
	checks        []HealthCheck
}

// NewHandlerSet wires the HTTP surface. idempotency may be nil.
func NewHandlerSet(log zerolog.Logger, cfg *config.AppConfig, svc Services, limiter *middleware.RateLimiter, idempotency middleware.IdempotencyStore, checks ...HealthCheck) HandlerSet {
	return HandlerSet{
		log:           log,
		cfg:           cfg,
		auth:          svc.Auth,
		appointments:  svc.Appointments,
		notifications: svc.Notifications,
		medications:   svc.Medications,
		pregnancy:     svc.Pregnancy,
		avatars:       svc.Avatars,
		limiter:       limiter,
		idempotency:   idempotency,
		checks:        checks,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	requireSession := middleware.Auth(h.auth, h.log)
	optionalSession := middleware.OptionalAuth(h.auth, h.log)
	throttle := middleware.RateLimit(h.limiter)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", throttle, h.Login)
		sessions.POST("/refresh", throttle, h.Refresh)
		sessions.GET("", requireSession, h.ListSessions)
		sessions.DELETE("", requireSession, h.Logout)
	}

	users := router.Group("/users")
	{
		users.POST("", throttle, optionalSession, h.RegisterUser)
		users.GET("", requireSession, middleware.Gate(access.SuperAdmin()), h.ListUsers)
		users.GET("/me", requireSession, h.Me)
		users.PATCH("/me", requireSession, h.UpdateProfile)
		users.PUT("/me/avatar", requireSession, h.UploadAvatar)
	}

	router.POST("/access/check", optionalSession, h.CheckAccess)

	appointments := router.Group("/appointments", requireSession)
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("",
			middleware.Gate(access.Roles(models.UserRoleDoctor, models.UserRoleHospital)),
			middleware.Idempotency(h.idempotency, h.log),
			h.ScheduleAppointment,
		)
	}

	notifications := router.Group("/notifications", requireSession)
	{
		notifications.GET("", h.ListNotifications)
		notifications.PATCH("/:id", h.MarkNotificationRead)
		notifications.POST("/read-all", h.MarkAllNotificationsRead)
	}

	medications := router.Group("/medications", requireSession)
	{
		medications.GET("", h.ListMedications)
		medications.POST("", h.AddMedication)
		medications.GET("/:id", h.GetMedication)
		medications.PUT("/:id", h.UpdateMedication)
		medications.DELETE("/:id", h.DeleteMedication)
		medications.POST("/:id/toggle", h.ToggleMedication)
	}

	router.GET("/pregnancy/progress", requireSession, middleware.Gate(access.Roles(models.UserRolePatient)), h.PregnancyProgress)
	router.POST("/assistant", h.Assistant)
}
