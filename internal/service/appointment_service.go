package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/ids"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type AppointmentService struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	log          zerolog.Logger
	now          func() time.Time
}

func NewAppointmentService(users repository.UserRepository, appointments repository.AppointmentRepository, log zerolog.Logger) *AppointmentService {
	return &AppointmentService{users: users, appointments: appointments, log: log, now: time.Now}
}

type ScheduleInput struct {
	PatientID   string `json:"patientId" validate:"required"`
	PatientName string `json:"patientName" validate:"max=200"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,datetime=15:04"`
	Purpose     string `json:"purpose" validate:"required,max=500"`
	Notes       string `json:"notes" validate:"max=2000"`
}

func canSchedule(role models.UserRole) bool {
	switch role {
	case models.UserRoleDoctor, models.UserRoleHospital:
		return true
	}
	return false
}

// Schedule books an appointment and notifies the patient in the same write.
func (s *AppointmentService) Schedule(ctx context.Context, actor models.User, input ScheduleInput) (models.Appointment, error) {
	if !canSchedule(actor.Role) {
		return models.Appointment{}, ErrNotAuthorized
	}

	input.PatientID = strings.TrimSpace(input.PatientID)
	input.PatientName = strings.TrimSpace(input.PatientName)
	input.Purpose = strings.TrimSpace(input.Purpose)
	input.Notes = strings.TrimSpace(input.Notes)
	if err := validateStruct(input); err != nil {
		return models.Appointment{}, err
	}

	patient, err := s.users.GetByID(ctx, input.PatientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}
	if patient.Role != models.UserRolePatient {
		return models.Appointment{}, invalid("patientId", "must reference a patient")
	}
	if input.PatientName == "" {
		input.PatientName = patient.FullName
	}

	now := s.now().UTC()
	appt := models.Appointment{
		ID:          ids.New(),
		PatientID:   patient.ID,
		PatientName: input.PatientName,
		Date:        input.Date,
		Time:        normalizeClock(input.Time),
		Purpose:     input.Purpose,
		Notes:       input.Notes,
		DoctorID:    actor.ID,
		DoctorName:  actor.FullName,
		CreatedAt:   now,
	}
	stored := appt
	notification := models.Notification{
		ID:          ids.New(),
		UserID:      patient.ID,
		Type:        models.NotificationTypeAppointment,
		Date:        now,
		Appointment: &stored,
	}

	if err := s.appointments.CreateWithNotification(ctx, appt, notification); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}

	s.log.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", actor.ID).
		Str("patient_id", patient.ID).
		Msg("appointment scheduled")
	return appt, nil
}

// List returns the appointments visible to actor.
func (s *AppointmentService) List(ctx context.Context, actor models.User) ([]models.Appointment, error) {
	switch actor.Role {
	case models.UserRoleDoctor:
		return s.appointments.ListByDoctor(ctx, actor.ID)
	case models.UserRolePatient:
		return s.appointments.ListByPatient(ctx, actor.ID)
	case models.UserRoleAdmin, models.UserRoleHospital:
		return s.appointments.List(ctx)
	}
	return []models.Appointment{}, nil
}

func (s *AppointmentService) Get(ctx context.Context, actor models.User, id string) (models.Appointment, error) {
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}
	switch {
	case actor.Role == models.UserRoleAdmin, actor.Role == models.UserRoleHospital:
	case appt.DoctorID == actor.ID, appt.PatientID == actor.ID:
	default:
		return models.Appointment{}, ErrNotAuthorized
	}
	return appt, nil
}
