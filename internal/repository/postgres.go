package repository

import "github.com/jackc/pgx/v5/pgxpool"

// NewPostgresSet backs every repository with the same pool. Close releases
// the pool.
func NewPostgresSet(pool *pgxpool.Pool) *Set {
	return &Set{
		Users:         NewUserRepository(pool),
		Sessions:      NewSessionRepository(pool),
		Appointments:  NewAppointmentRepository(pool),
		Notifications: NewNotificationRepository(pool),
		Medications:   NewMedicationRepository(pool),
		Ping:          pool.Ping,
		Close: func() error {
			pool.Close()
			return nil
		},
	}
}

var (
	_ UserRepository         = (*PGUserRepository)(nil)
	_ SessionRepository      = (*PGSessionRepository)(nil)
	_ AppointmentRepository  = (*PGAppointmentRepository)(nil)
	_ NotificationRepository = (*PGNotificationRepository)(nil)
	_ MedicationRepository   = (*PGMedicationRepository)(nil)
)
