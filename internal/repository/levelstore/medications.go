package levelstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type medicationRepo struct{ *Store }

func (r *medicationRepo) Create(_ context.Context, m models.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.Taken == nil {
		m.Taken = map[string]bool{}
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}

	b := new(leveldb.Batch)
	seq := r.nextSeq(b)
	if err := putJSON(b, prefixMed+m.ID, m); err != nil {
		return err
	}
	b.Put([]byte(prefixMedUser+m.UserID+":"+seq), []byte(m.ID))
	return r.db.Write(b, nil)
}

func (r *medicationRepo) GetByID(_ context.Context, id string) (models.Medication, error) {
	var m models.Medication
	if err := r.get(prefixMed+id, &m); err != nil {
		return models.Medication{}, err
	}
	if m.Taken == nil {
		m.Taken = map[string]bool{}
	}
	return m, nil
}

func (r *medicationRepo) Update(_ context.Context, m models.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.has(prefixMed + m.ID)
	if err != nil {
		return err
	}
	if !exists {
		return repository.ErrNotFound
	}

	b := new(leveldb.Batch)
	if err := putJSON(b, prefixMed+m.ID, m); err != nil {
		return err
	}
	return r.db.Write(b, nil)
}

func (r *medicationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	b := new(leveldb.Batch)
	b.Delete([]byte(prefixMed + id))
	if key, err := r.indexKey(prefixMedUser+m.UserID+":", id); err == nil {
		b.Delete([]byte(key))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return r.db.Write(b, nil)
}

func (r *medicationRepo) ListByUser(ctx context.Context, userID string) ([]models.Medication, error) {
	ids, err := r.indexIDs(prefixMedUser + userID + ":")
	if err != nil {
		return nil, err
	}
	out := make([]models.Medication, 0, len(ids))
	for _, id := range ids {
		m, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *medicationRepo) ListAll(_ context.Context) ([]models.Medication, error) {
	iter := r.db.NewIterator(util.BytesPrefix([]byte(prefixMed)), nil)
	defer iter.Release()

	var out []models.Medication
	for iter.Next() {
		var m models.Medication
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
