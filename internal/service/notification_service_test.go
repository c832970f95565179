package service

import (
	"context"
	"errors"
	"testing"

	"github.com/TristanBrian/MamaCare/internal/models"
)

func TestMarkRead(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@x.com", "Doc", models.UserRoleDoctor)
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)
	mary := env.register(t, "mary@x.com", "Mary", models.UserRolePatient)

	if _, err := env.appointments.Schedule(ctx, doctor, ScheduleInput{PatientID: jane.ID, Date: "2024-03-01", Time: "09:00", Purpose: "Checkup"}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	list, _ := env.notifications.List(ctx, jane.ID)
	id := list.Items[0].ID

	if _, err := env.notifications.MarkRead(ctx, mary.ID, id); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("foreign mark: %v", err)
	}
	if _, err := env.notifications.MarkRead(ctx, jane.ID, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing mark: %v", err)
	}
	for i := 0; i < 2; i++ {
		n, err := env.notifications.MarkRead(ctx, jane.ID, id)
		if err != nil || !n.Read {
			t.Fatalf("mark %d: read=%v err=%v", i, n.Read, err)
		}
	}
	list, _ = env.notifications.List(ctx, jane.ID)
	if list.Unread != 0 {
		t.Fatalf("unread = %d", list.Unread)
	}
}

func TestMarkAllReadLeavesNothingUnread(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@x.com", "Doc", models.UserRoleDoctor)
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)

	for i := 0; i < 4; i++ {
		if _, err := env.appointments.Schedule(ctx, doctor, ScheduleInput{PatientID: jane.ID, Date: "2024-03-01", Time: "09:00", Purpose: "Checkup"}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	if _, err := env.notifications.CreateReminder(ctx, jane.ID, models.MedicationReminder{Name: "Iron", Slot: "08:00", Date: "2024-03-01"}); err != nil {
		t.Fatalf("reminder: %v", err)
	}

	n, err := env.notifications.MarkAllRead(ctx, jane.ID)
	if err != nil || n != 5 {
		t.Fatalf("mark all: n=%d err=%v", n, err)
	}
	list, err := env.notifications.List(ctx, jane.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, item := range list.Items {
		if !item.Read {
			t.Fatalf("notification %s still unread", item.ID)
		}
	}
	if list.Unread != 0 || len(list.Items) != 5 {
		t.Fatalf("list = %+v", list)
	}
}

func TestListCountsUnread(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	doctor := env.register(t, "doc@x.com", "Doc", models.UserRoleDoctor)
	jane := env.register(t, "jane@x.com", "Jane", models.UserRolePatient)

	for i := 0; i < 3; i++ {
		if _, err := env.appointments.Schedule(ctx, doctor, ScheduleInput{PatientID: jane.ID, Date: "2024-03-01", Time: "09:00", Purpose: "Checkup"}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}
	list, _ := env.notifications.List(ctx, jane.ID)
	if _, err := env.notifications.MarkRead(ctx, jane.ID, list.Items[1].ID); err != nil {
		t.Fatalf("mark: %v", err)
	}

	list, err := env.notifications.List(ctx, jane.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list.Unread != 2 || len(list.Items) != 3 {
		t.Fatalf("unread = %d of %d", list.Unread, len(list.Items))
	}

	empty, err := env.notifications.List(ctx, doctor.ID)
	if err != nil || empty.Unread != 0 || empty.Items == nil {
		t.Fatalf("empty list = %+v err=%v", empty, err)
	}
}
