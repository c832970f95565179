package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TristanBrian/MamaCare/internal/models"
)

type PGMedicationRepository struct {
	pool *pgxpool.Pool
}

func NewMedicationRepository(pool *pgxpool.Pool) *PGMedicationRepository {
	return &PGMedicationRepository{pool: pool}
}

const medicationColumns = `
	id, user_id, name, dosage, frequency,
	to_char(start_date, 'YYYY-MM-DD'), COALESCE(to_char(end_date, 'YYYY-MM-DD'), ''),
	notes, time_slots, taken, created_at, updated_at`

func (r *PGMedicationRepository) Create(ctx context.Context, m models.Medication) error {
	const query = `
		INSERT INTO medications (
			id, user_id, name, dosage, frequency, start_date, end_date, notes, time_slots, taken, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6::text::date, NULLIF($7::text, '')::date, $8, $9, $10, $11, $11
		)
	`
	_, err := r.pool.Exec(ctx, query,
		m.ID, m.UserID, m.Name, m.Dosage, m.Frequency,
		m.StartDate, m.EndDate, m.Notes, m.Time, takenOrEmpty(m.Taken), m.CreatedAt,
	)
	return err
}

func (r *PGMedicationRepository) GetByID(ctx context.Context, id string) (models.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1`
	return scanMedication(r.pool.QueryRow(ctx, query, id))
}

func (r *PGMedicationRepository) Update(ctx context.Context, m models.Medication) error {
	const query = `
		UPDATE medications
		SET name = $2,
		    dosage = $3,
		    frequency = $4,
		    start_date = $5::text::date,
		    end_date = NULLIF($6::text, '')::date,
		    notes = $7,
		    time_slots = $8,
		    taken = $9,
		    updated_at = $10
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Dosage, m.Frequency, m.StartDate, m.EndDate,
		m.Notes, m.Time, takenOrEmpty(m.Taken), m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGMedicationRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGMedicationRepository) ListByUser(ctx context.Context, userID string) ([]models.Medication, error) {
	return r.query(ctx, `SELECT `+medicationColumns+` FROM medications WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (r *PGMedicationRepository) ListAll(ctx context.Context) ([]models.Medication, error) {
	return r.query(ctx, `SELECT `+medicationColumns+` FROM medications ORDER BY user_id, created_at, id`)
}

func (r *PGMedicationRepository) query(ctx context.Context, query string, args ...any) ([]models.Medication, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func takenOrEmpty(taken map[string]bool) map[string]bool {
	if taken == nil {
		return map[string]bool{}
	}
	return taken
}

func scanMedication(row pgx.Row) (models.Medication, error) {
	var m models.Medication
	if err := row.Scan(
		&m.ID, &m.UserID, &m.Name, &m.Dosage, &m.Frequency,
		&m.StartDate, &m.EndDate,
		&m.Notes, &m.Time, &m.Taken, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Medication{}, ErrNotFound
		}
		return models.Medication{}, err
	}
	if m.Taken == nil {
		m.Taken = map[string]bool{}
	}
	return m, nil
}
