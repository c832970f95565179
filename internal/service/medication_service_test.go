package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TristanBrian/MamaCare/internal/models"
)

func folicAcid() MedicationInput {
	return MedicationInput{
		Name:      "Folic acid",
		Dosage:    "400mcg",
		Frequency: models.FrequencyTwiceDaily,
		StartDate: "2024-03-01",
		Time:      []string{"08:00", "20:00"},
	}
}

func TestToggleTakenTodayIsInvolution(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	env.medications.now = fixedClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	med, err := env.medications.Add(ctx, jane.ID, folicAcid())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	med, err = env.medications.ToggleTakenToday(ctx, jane.ID, med.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !med.Taken["2024-03-05"] {
		t.Fatalf("taken = %v", med.Taken)
	}

	med, err = env.medications.ToggleTakenToday(ctx, jane.ID, med.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if v, ok := med.Taken["2024-03-05"]; !ok || v {
		t.Fatalf("taken after second toggle = %v", med.Taken)
	}

	stored, err := env.medications.Get(ctx, jane.ID, med.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Taken["2024-03-05"] {
		t.Fatal("stored state differs from returned state")
	}
}

func TestToggleUsesOwnerTimeZone(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	if _, err := env.auth.UpdateProfile(ctx, jane.ID, map[string]any{"timeZone": "Africa/Nairobi"}); err != nil {
		t.Fatalf("set time zone: %v", err)
	}
	// 22:30 UTC is already the next day in Nairobi (UTC+3).
	env.medications.now = fixedClock(time.Date(2024, 3, 5, 22, 30, 0, 0, time.UTC))

	med, _ := env.medications.Add(ctx, jane.ID, folicAcid())
	med, err := env.medications.ToggleTakenToday(ctx, jane.ID, med.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !med.Taken["2024-03-06"] {
		t.Fatalf("taken = %v, want 2024-03-06", med.Taken)
	}
}

func TestMedicationValidation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)

	tests := []struct {
		name   string
		mutate func(*MedicationInput)
		field  string
	}{
		{"no name", func(in *MedicationInput) { in.Name = "" }, "name"},
		{"no dosage", func(in *MedicationInput) { in.Dosage = " " }, "dosage"},
		{"bad frequency", func(in *MedicationInput) { in.Frequency = "hourly" }, "frequency"},
		{"bad start", func(in *MedicationInput) { in.StartDate = "March 1" }, "startDate"},
		{"end before start", func(in *MedicationInput) { in.EndDate = "2024-02-01" }, "endDate"},
		{"no slots", func(in *MedicationInput) { in.Time = nil }, "time"},
		{"too many slots", func(in *MedicationInput) { in.Time = []string{"01:00", "02:00", "03:00", "04:00", "05:00", "06:00"} }, "time"},
		{"bad slot", func(in *MedicationInput) { in.Time = []string{"08:00", "8pm"} }, "time[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := folicAcid()
			tt.mutate(&in)
			_, err := env.medications.Add(ctx, jane.ID, in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestUpdatePreservesTakenHistory(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	env.medications.now = fixedClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))

	med, _ := env.medications.Add(ctx, jane.ID, folicAcid())
	if _, err := env.medications.ToggleTakenToday(ctx, jane.ID, med.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	in := folicAcid()
	in.Dosage = "800mcg"
	in.Time = []string{"7:30"}
	updated, err := env.medications.Update(ctx, jane.ID, med.ID, in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Dosage != "800mcg" || len(updated.Time) != 1 || updated.Time[0] != "07:30" {
		t.Fatalf("update not applied: %+v", updated)
	}
	if !updated.Taken["2024-03-05"] || !updated.CreatedAt.Equal(med.CreatedAt) {
		t.Fatalf("update lost history: %+v", updated)
	}

	if _, err := env.medications.Update(ctx, jane.ID, "missing", in); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
}

func TestMedicationOwnership(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	mary := env.register(t, "mary@x.com", "Mary", models.UserRolePatient)

	med, _ := env.medications.Add(ctx, jane.ID, folicAcid())

	if _, err := env.medications.Get(ctx, mary.ID, med.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("foreign get: %v", err)
	}
	if _, err := env.medications.ToggleTakenToday(ctx, mary.ID, med.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("foreign toggle: %v", err)
	}
	if err := env.medications.Delete(ctx, mary.ID, med.ID); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("foreign delete: %v", err)
	}

	list, _ := env.medications.List(ctx, mary.ID)
	if len(list) != 0 {
		t.Errorf("mary sees %d medications", len(list))
	}

	if err := env.medications.Delete(ctx, jane.ID, med.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.medications.Get(ctx, jane.ID, med.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if err := env.medications.Delete(ctx, jane.ID, med.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}
