package repository

import (
	"context"
	"errors"
	"time"

	"github.com/TristanBrian/MamaCare/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	// FindByEmail matches case-insensitively.
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, fullName string, profile map[string]any) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error
	DeleteByID(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	Touch(ctx context.Context, sessionID string, ip string, userAgent string) error
}

type AppointmentRepository interface {
	// CreateWithNotification stores the appointment and the patient's
	// notification in one atomic write.
	CreateWithNotification(ctx context.Context, appointment models.Appointment, notification models.Notification) error
	GetByID(ctx context.Context, id string) (models.Appointment, error)
	List(ctx context.Context) ([]models.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification models.Notification) error
	GetByID(ctx context.Context, id string) (models.Notification, error)
	// ListByUser returns notifications in creation order.
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

type MedicationRepository interface {
	Create(ctx context.Context, medication models.Medication) error
	GetByID(ctx context.Context, id string) (models.Medication, error)
	Update(ctx context.Context, medication models.Medication) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Medication, error)
	ListAll(ctx context.Context) ([]models.Medication, error)
}

// Set is the Record Store: one repository per entity plus lifecycle hooks
// of the backing engine.
type Set struct {
	Users         UserRepository
	Sessions      SessionRepository
	Appointments  AppointmentRepository
	Notifications NotificationRepository
	Medications   MedicationRepository

	Ping  func(ctx context.Context) error
	Close func() error
}
