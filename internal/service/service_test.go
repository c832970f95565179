package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"github.com/TristanBrian/MamaCare/internal/config"
	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
	"github.com/TristanBrian/MamaCare/internal/repository/levelstore"
	"github.com/TristanBrian/MamaCare/internal/security"
)

var fastArgon2 = security.Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

type testEnv struct {
	set           *repository.Set
	attempts      *memAttempts
	auth          *AuthService
	appointments  *AppointmentService
	notifications *NotificationService
	medications   *MedicationService
	reminders     *ReminderService
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	set, err := levelstore.OpenMem()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { set.Close() })

	log := zerolog.Nop()
	cfg := config.SecurityConfig{
		JWTAccessSecret: "test-secret",
		JWTAccessTTL:    15 * time.Minute,
		JWTRefreshTTL:   24 * time.Hour,
		MaxSessions:     3,
	}
	attempts := &memAttempts{limit: 3, counts: map[string]int{}}
	auth := NewAuthService(set.Users, set.Sessions, attempts,
		security.NewPasswordHasher(fastArgon2),
		security.NewTokenIssuer(cfg.JWTAccessSecret, cfg.JWTAccessTTL),
		cfg, log)
	notifications := NewNotificationService(set.Notifications, log)

	return &testEnv{
		set:           set,
		attempts:      attempts,
		auth:          auth,
		appointments:  NewAppointmentService(set.Users, set.Appointments, log),
		notifications: notifications,
		medications:   NewMedicationService(set.Users, set.Medications, time.UTC, log),
		reminders:     NewReminderService(set.Users, set.Medications, notifications, time.UTC, log),
	}
}

func (e *testEnv) register(t *testing.T, email, name string, role models.UserRole) models.User {
	t.Helper()
	admin := models.User{Role: models.UserRoleAdmin}
	res, err := e.auth.Register(context.Background(), &admin, RegisterInput{
		Email:    email,
		Password: "password123",
		FullName: name,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res.User
}

type memAttempts struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
}

func (m *memAttempts) Locked(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[strings.ToLower(email)] >= m.limit, nil
}

func (m *memAttempts) Fail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[strings.ToLower(email)]++
	return nil
}

func (m *memAttempts) Reset(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, strings.ToLower(email))
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
