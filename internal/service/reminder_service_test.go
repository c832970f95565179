package service

import (
	"context"
	"testing"
	"time"

	"github.com/TristanBrian/MamaCare/internal/models"
)

func TestDue(t *testing.T) {
	base := models.Medication{
		Frequency: models.FrequencyDaily,
		StartDate: "2024-03-01",
		EndDate:   "2024-03-31",
		Time:      []string{"08:00", "20:00"},
	}
	at := func(day, hour, minute int) time.Time {
		return time.Date(2024, 3, day, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name string
		med  func() models.Medication
		at   time.Time
		want bool
	}{
		{"slot matches", func() models.Medication { return base }, at(5, 8, 0), true},
		{"between slots", func() models.Medication { return base }, at(5, 8, 1), false},
		{"before start", func() models.Medication { return base }, time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC), false},
		{"after end", func() models.Medication { return base }, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), false},
		{"already taken", func() models.Medication {
			m := base
			m.Taken = map[string]bool{"2024-03-05": true}
			return m
		}, at(5, 20, 0), false},
		{"weekly on start weekday", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyWeekly
			return m
		}, at(8, 8, 0), true},
		{"weekly off day", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyWeekly
			return m
		}, at(9, 8, 0), false},
		{"monthly on start day", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyMonthly
			m.EndDate = ""
			return m
		}, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), true},
		{"monthly from the 31st in february", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyMonthly
			m.StartDate = "2024-01-31"
			m.EndDate = ""
			return m
		}, time.Date(2024, 2, 29, 8, 0, 0, 0, time.UTC), true},
		{"monthly from the 31st in april", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyMonthly
			m.StartDate = "2024-01-31"
			m.EndDate = ""
			return m
		}, time.Date(2024, 4, 30, 8, 0, 0, 0, time.UTC), true},
		{"monthly from the 31st not early", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyMonthly
			m.StartDate = "2024-01-31"
			m.EndDate = ""
			return m
		}, time.Date(2024, 2, 28, 8, 0, 0, 0, time.UTC), false},
		{"monthly off day", func() models.Medication {
			m := base
			m.Frequency = models.FrequencyMonthly
			return m
		}, at(2, 8, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := Due(tt.med(), tt.at); got != tt.want {
				t.Errorf("Due = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatchCreatesReminders(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	mary := env.register(t, "mary@x.com", "Mary", models.UserRolePatient)
	if _, err := env.auth.UpdateProfile(ctx, mary.ID, map[string]any{"timeZone": "Africa/Nairobi"}); err != nil {
		t.Fatalf("set time zone: %v", err)
	}

	if _, err := env.medications.Add(ctx, jane.ID, folicAcid()); err != nil {
		t.Fatalf("add jane: %v", err)
	}
	if _, err := env.medications.Add(ctx, mary.ID, folicAcid()); err != nil {
		t.Fatalf("add mary: %v", err)
	}

	// 08:00 UTC is 11:00 in Nairobi, so only Jane is due.
	n, err := env.reminders.Dispatch(ctx, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if n != 1 {
		t.Fatalf("sent = %d, want 1", n)
	}

	list, _ := env.notifications.List(ctx, jane.ID)
	if len(list.Items) != 1 {
		t.Fatalf("jane notifications = %d", len(list.Items))
	}
	r := list.Items[0]
	if r.Type != models.NotificationTypeReminder || r.Reminder == nil || r.Reminder.Slot != "08:00" || r.Reminder.Date != "2024-03-05" {
		t.Fatalf("unexpected reminder %+v", r)
	}

	// 17:00 UTC is 20:00 in Nairobi.
	if n, err := env.reminders.Dispatch(ctx, time.Date(2024, 3, 5, 17, 0, 0, 0, time.UTC)); err != nil || n != 1 {
		t.Fatalf("evening dispatch: n=%d err=%v", n, err)
	}
	list, _ = env.notifications.List(ctx, mary.ID)
	if len(list.Items) != 1 || list.Items[0].Reminder.Slot != "20:00" {
		t.Fatalf("mary notifications = %+v", list.Items)
	}
}
