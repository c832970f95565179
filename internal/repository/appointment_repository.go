package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TristanBrian/MamaCare/internal/models"
)

type PGAppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *PGAppointmentRepository {
	return &PGAppointmentRepository{pool: pool}
}

const appointmentColumns = `
	id, patient_id, patient_name,
	to_char(appt_date, 'YYYY-MM-DD'), to_char(appt_time, 'HH24:MI'),
	purpose, notes, doctor_id, doctor_name, created_at`

func (r *PGAppointmentRepository) CreateWithNotification(ctx context.Context, a models.Appointment, n models.Notification) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// The patient's row lock serializes concurrent schedulers writing to the
	// same notification list.
	var locked string
	if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, a.PatientID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (
			id, patient_id, patient_name, appt_date, appt_time, purpose, notes, doctor_id, doctor_name, created_at
		) VALUES (
			$1, $2, $3, $4::text::date, $5::text::time, $6, $7, $8, $9, $10
		)`,
		a.ID, a.PatientID, a.PatientName, a.Date, a.Time, a.Purpose, a.Notes, a.DoctorID, a.DoctorName, a.CreatedAt,
	)
	if err != nil {
		return err
	}

	if err := insertNotification(ctx, tx, n); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGAppointmentRepository) GetByID(ctx context.Context, id string) (models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	var a models.Appointment
	if err := scanAppointment(r.pool.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Appointment{}, ErrNotFound
		}
		return models.Appointment{}, err
	}
	return a, nil
}

func (r *PGAppointmentRepository) List(ctx context.Context) ([]models.Appointment, error) {
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY created_at, id`)
}

func (r *PGAppointmentRepository) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE doctor_id = $1 ORDER BY created_at, id`, doctorID)
}

func (r *PGAppointmentRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1 ORDER BY created_at, id`, patientID)
}

func (r *PGAppointmentRepository) query(ctx context.Context, query string, args ...any) ([]models.Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Appointment
	for rows.Next() {
		var a models.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row, a *models.Appointment) error {
	return row.Scan(
		&a.ID, &a.PatientID, &a.PatientName,
		&a.Date, &a.Time,
		&a.Purpose, &a.Notes, &a.DoctorID, &a.DoctorName, &a.CreatedAt,
	)
}
