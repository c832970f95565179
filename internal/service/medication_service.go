package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/ids"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type MedicationService struct {
	users       repository.UserRepository
	medications repository.MedicationRepository
	location    *time.Location
	log         zerolog.Logger
	now         func() time.Time

	// toggles are read-modify-write on the taken map.
	toggleMu sync.Mutex
}

// NewMedicationService uses loc as the calendar for users without a
// profile time zone.
func NewMedicationService(users repository.UserRepository, medications repository.MedicationRepository, loc *time.Location, log zerolog.Logger) *MedicationService {
	if loc == nil {
		loc = time.UTC
	}
	return &MedicationService{users: users, medications: medications, location: loc, log: log, now: time.Now}
}

type MedicationInput struct {
	Name      string           `json:"name" validate:"required,max=200"`
	Dosage    string           `json:"dosage" validate:"required,max=200"`
	Frequency models.Frequency `json:"frequency" validate:"required,oneof=daily twice_daily weekly monthly"`
	StartDate string           `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string           `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Notes     string           `json:"notes" validate:"max=2000"`
	Time      []string         `json:"time" validate:"min=1,max=5,dive,required,datetime=15:04"`
}

func (in *MedicationInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Dosage = strings.TrimSpace(in.Dosage)
	in.Notes = strings.TrimSpace(in.Notes)
	in.StartDate = strings.TrimSpace(in.StartDate)
	in.EndDate = strings.TrimSpace(in.EndDate)
	for i := range in.Time {
		in.Time[i] = strings.TrimSpace(in.Time[i])
	}

	if err := validateStruct(*in); err != nil {
		return err
	}
	if in.EndDate != "" && in.EndDate < in.StartDate {
		return invalid("endDate", "must not be before startDate")
	}
	for i := range in.Time {
		in.Time[i] = normalizeClock(in.Time[i])
	}
	return nil
}

func (s *MedicationService) Add(ctx context.Context, userID string, input MedicationInput) (models.Medication, error) {
	if err := input.normalize(); err != nil {
		return models.Medication{}, err
	}

	now := s.now().UTC()
	med := models.Medication{
		ID:        ids.New(),
		UserID:    userID,
		Name:      input.Name,
		Dosage:    input.Dosage,
		Frequency: input.Frequency,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		Notes:     input.Notes,
		Time:      input.Time,
		Taken:     map[string]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.medications.Create(ctx, med); err != nil {
		return models.Medication{}, err
	}
	s.log.Info().Str("user_id", userID).Str("medication_id", med.ID).Msg("medication added")
	return med, nil
}

// Get loads a medication owned by userID.
func (s *MedicationService) Get(ctx context.Context, userID, id string) (models.Medication, error) {
	med, err := s.medications.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Medication{}, ErrNotFound
		}
		return models.Medication{}, err
	}
	if med.UserID != userID {
		return models.Medication{}, ErrNotAuthorized
	}
	return med, nil
}

func (s *MedicationService) List(ctx context.Context, userID string) ([]models.Medication, error) {
	meds, err := s.medications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []models.Medication{}
	}
	return meds, nil
}

// Update replaces the editable fields; the taken history is kept.
func (s *MedicationService) Update(ctx context.Context, userID, id string, input MedicationInput) (models.Medication, error) {
	if err := input.normalize(); err != nil {
		return models.Medication{}, err
	}

	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	med, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Medication{}, err
	}
	med.Name = input.Name
	med.Dosage = input.Dosage
	med.Frequency = input.Frequency
	med.StartDate = input.StartDate
	med.EndDate = input.EndDate
	med.Notes = input.Notes
	med.Time = input.Time
	med.UpdatedAt = s.now().UTC()

	if err := s.medications.Update(ctx, med); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Medication{}, ErrNotFound
		}
		return models.Medication{}, err
	}
	return med, nil
}

func (s *MedicationService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.medications.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info().Str("user_id", userID).Str("medication_id", id).Msg("medication deleted")
	return nil
}

// ToggleTakenToday flips taken[today] where today is the owner's local date.
func (s *MedicationService) ToggleTakenToday(ctx context.Context, userID, id string) (models.Medication, error) {
	s.toggleMu.Lock()
	defer s.toggleMu.Unlock()

	med, err := s.Get(ctx, userID, id)
	if err != nil {
		return models.Medication{}, err
	}

	today, err := s.Today(ctx, userID)
	if err != nil {
		return models.Medication{}, err
	}

	taken := make(map[string]bool, len(med.Taken)+1)
	for day, v := range med.Taken {
		taken[day] = v
	}
	taken[today] = !taken[today]
	med.Taken = taken
	med.UpdatedAt = s.now().UTC()

	if err := s.medications.Update(ctx, med); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Medication{}, ErrNotFound
		}
		return models.Medication{}, err
	}
	return med, nil
}

// Today is the current calendar date (YYYY-MM-DD) for userID.
func (s *MedicationService) Today(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotAuthenticated
		}
		return "", err
	}
	return s.now().In(UserLocation(user, s.location)).Format(models.DateLayout), nil
}

// UserLocation resolves the user's profile time zone, or fallback.
func UserLocation(user models.User, fallback *time.Location) *time.Location {
	if tz := user.ProfileString("timeZone"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	if fallback == nil {
		return time.UTC
	}
	return fallback
}
