package levelstore

import (
	"context"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type appointmentRepo struct{ *Store }

func (r *appointmentRepo) CreateWithNotification(_ context.Context, a models.Appointment, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.has(prefixUser + a.PatientID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}

	b := new(leveldb.Batch)
	seq := r.nextSeq(b)
	if err := putJSON(b, prefixAppt+a.ID, a); err != nil {
		return err
	}
	b.Put([]byte(prefixApptAll+seq), []byte(a.ID))
	b.Put([]byte(prefixApptDoctor+a.DoctorID+":"+seq), []byte(a.ID))
	b.Put([]byte(prefixApptPatient+a.PatientID+":"+seq), []byte(a.ID))

	if err := r.putNotification(b, n); err != nil {
		return err
	}
	return r.db.Write(b, nil)
}

func (r *appointmentRepo) GetByID(_ context.Context, id string) (models.Appointment, error) {
	var a models.Appointment
	if err := r.get(prefixAppt+id, &a); err != nil {
		return models.Appointment{}, err
	}
	return a, nil
}

func (r *appointmentRepo) List(ctx context.Context) ([]models.Appointment, error) {
	return r.byIndex(ctx, prefixApptAll)
}

func (r *appointmentRepo) ListByDoctor(ctx context.Context, doctorID string) ([]models.Appointment, error) {
	return r.byIndex(ctx, prefixApptDoctor+doctorID+":")
}

func (r *appointmentRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return r.byIndex(ctx, prefixApptPatient+patientID+":")
}

func (r *appointmentRepo) byIndex(ctx context.Context, prefix string) ([]models.Appointment, error) {
	ids, err := r.indexIDs(prefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.Appointment, 0, len(ids))
	for _, id := range ids {
		a, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
