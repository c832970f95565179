package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

// ReminderService turns medication time slots into reminder notifications.
type ReminderService struct {
	users         repository.UserRepository
	medications   repository.MedicationRepository
	notifications *NotificationService
	location      *time.Location
	log           zerolog.Logger
}

func NewReminderService(users repository.UserRepository, medications repository.MedicationRepository, notifications *NotificationService, loc *time.Location, log zerolog.Logger) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{users: users, medications: medications, notifications: notifications, location: loc, log: log}
}

// Dispatch creates a reminder for every medication with a slot at the
// owner's local minute of at that is not yet taken that day. It returns
// the number of reminders created.
func (s *ReminderService) Dispatch(ctx context.Context, at time.Time) (int, error) {
	meds, err := s.medications.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	locations := make(map[string]*time.Location)
	sent := 0
	for _, med := range meds {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		loc, ok := locations[med.UserID]
		if !ok {
			user, err := s.users.GetByID(ctx, med.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					locations[med.UserID] = nil
					continue
				}
				return sent, err
			}
			loc = UserLocation(user, s.location)
			locations[med.UserID] = loc
		}
		if loc == nil {
			continue
		}

		local := at.In(loc)
		slot, due := Due(med, local)
		if !due {
			continue
		}

		_, err := s.notifications.CreateReminder(ctx, med.UserID, models.MedicationReminder{
			MedicationID: med.ID,
			Name:         med.Name,
			Dosage:       med.Dosage,
			Slot:         slot,
			Date:         local.Format(models.DateLayout),
		})
		if err != nil {
			return sent, err
		}
		sent++
	}

	if sent > 0 {
		s.log.Info().Int("count", sent).Time("at", at).Msg("medication reminders sent")
	}
	return sent, nil
}

// Due reports whether med has a dose at local's minute and returns the slot.
func Due(med models.Medication, local time.Time) (string, bool) {
	date := local.Format(models.DateLayout)
	if !med.ActiveOn(date) || med.Taken[date] {
		return "", false
	}

	clock := local.Format(models.TimeOfDayLayout)
	slot := ""
	for _, t := range med.Time {
		if t == clock {
			slot = t
			break
		}
	}
	if slot == "" {
		return "", false
	}

	start, err := time.ParseInLocation(models.DateLayout, med.StartDate, local.Location())
	if err != nil {
		return "", false
	}
	switch med.Frequency {
	case models.FrequencyWeekly:
		if local.Weekday() != start.Weekday() {
			return "", false
		}
	case models.FrequencyMonthly:
		if local.Day() != monthlyDay(start.Day(), local) {
			return "", false
		}
	}
	return slot, true
}

// monthlyDay clamps day to the last day of local's month, so a course
// started on the 31st fires on the 30th or the 28th/29th in shorter months.
func monthlyDay(day int, local time.Time) int {
	last := time.Date(local.Year(), local.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return min(day, last)
}
