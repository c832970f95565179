package levelstore

import (
	"context"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type notificationRepo struct{ *Store }

// putNotification must be called with mu held.
func (s *Store) putNotification(b *leveldb.Batch, n models.Notification) error {
	seq := s.nextSeq(b)
	if err := putJSON(b, prefixNotif+n.ID, n); err != nil {
		return err
	}
	b.Put([]byte(prefixNotifUser+n.UserID+":"+seq), []byte(n.ID))
	return nil
}

func (r *notificationRepo) Create(_ context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := new(leveldb.Batch)
	if err := r.putNotification(b, n); err != nil {
		return err
	}
	return r.db.Write(b, nil)
}

func (r *notificationRepo) GetByID(_ context.Context, id string) (models.Notification, error) {
	var n models.Notification
	if err := r.get(prefixNotif+id, &n); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	ids, err := r.indexIDs(prefixNotifUser + userID + ":")
	if err != nil {
		return nil, err
	}
	out := make([]models.Notification, 0, len(ids))
	for _, id := range ids {
		n, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, userID string, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return repository.ErrNotFound
	}
	if n.Read {
		return nil
	}
	n.Read = true

	b := new(leveldb.Batch)
	if err := putJSON(b, prefixNotif+n.ID, n); err != nil {
		return err
	}
	return r.db.Write(b, nil)
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	b := new(leveldb.Batch)
	changed := 0
	for _, n := range list {
		if n.Read {
			continue
		}
		n.Read = true
		if err := putJSON(b, prefixNotif+n.ID, n); err != nil {
			return 0, err
		}
		changed++
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, r.db.Write(b, nil)
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return unread, nil
}
