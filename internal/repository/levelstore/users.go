package levelstore

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type userRepo struct{ *Store }

func (r *userRepo) Create(_ context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	taken, err := r.has(emailKey(user.Email))
	if err != nil {
		return err
	}
	if taken {
		return repository.ErrDuplicate
	}

	if user.ProfileData == nil {
		user.ProfileData = map[string]any{}
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = user.CreatedAt
	}

	b := new(leveldb.Batch)
	if err := putJSON(b, prefixUser+user.ID, userRecord{User: user, PasswordHash: user.PasswordHash}); err != nil {
		return err
	}
	b.Put([]byte(emailKey(user.Email)), []byte(user.ID))
	return r.db.Write(b, nil)
}

func (r *userRepo) GetByID(_ context.Context, id string) (models.User, error) {
	var rec userRecord
	if err := r.get(prefixUser+id, &rec); err != nil {
		return models.User{}, err
	}
	return rec.model(), nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	id, err := r.getString(emailKey(email))
	if err != nil {
		return models.User{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *userRepo) UpdateProfile(ctx context.Context, id string, fullName string, profile map[string]any) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if profile == nil {
		profile = map[string]any{}
	}
	user.FullName = fullName
	user.ProfileData = profile
	user.UpdatedAt = r.now().UTC()

	b := new(leveldb.Batch)
	if err := putJSON(b, prefixUser+id, userRecord{User: user, PasswordHash: user.PasswordHash}); err != nil {
		return models.User{}, err
	}
	if err := r.db.Write(b, nil); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]models.User, error) {
	iter := r.db.NewIterator(util.BytesPrefix([]byte(prefixUser)), nil)
	defer iter.Release()

	var users []models.User
	for iter.Next() {
		var rec userRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return nil, err
		}
		users = append(users, rec.model())
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	if offset >= len(users) {
		return nil, nil
	}
	users = users[offset:]
	if limit > 0 && limit < len(users) {
		users = users[:limit]
	}
	return users, nil
}
