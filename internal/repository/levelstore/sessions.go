package levelstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

type sessionRepo struct{ *Store }

func sessionUserKey(userID, sessionID string) string {
	return prefixSessionUser + userID + ":" + sessionID
}

func sessionDeviceKey(userID, deviceID string) string {
	return prefixSessionDevice + userID + ":" + deviceID
}

// Create replaces any existing session for the same user and device.
func (r *sessionRepo) Create(ctx context.Context, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	session.CreatedAt = now
	session.LastSeenAt = now

	b := new(leveldb.Batch)

	prevID, err := r.getString(sessionDeviceKey(session.UserID, session.DeviceID))
	switch {
	case err == nil:
		if prev, err := r.GetByID(ctx, prevID); err == nil {
			session.CreatedAt = prev.CreatedAt
		}
		b.Delete([]byte(prefixSession + prevID))
		b.Delete([]byte(sessionUserKey(session.UserID, prevID)))
	case errors.Is(err, repository.ErrNotFound):
	default:
		return err
	}

	if err := putJSON(b, prefixSession+session.ID, sessionRecord{Session: session, RefreshTokenHash: session.RefreshTokenHash}); err != nil {
		return err
	}
	b.Put([]byte(sessionUserKey(session.UserID, session.ID)), []byte(session.ID))
	b.Put([]byte(sessionDeviceKey(session.UserID, session.DeviceID)), []byte(session.ID))
	return r.db.Write(b, nil)
}

func (r *sessionRepo) GetByID(_ context.Context, id string) (models.Session, error) {
	var rec sessionRecord
	if err := r.get(prefixSession+id, &rec); err != nil {
		return models.Session{}, err
	}
	return rec.model(), nil
}

func (r *sessionRepo) FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error) {
	sessions, err := r.ListByUser(ctx, userID)
	if err != nil {
		return models.Session{}, err
	}
	for _, s := range sessions {
		if bytes.Equal(s.RefreshTokenHash, refreshHash) {
			return s, nil
		}
	}
	return models.Session{}, repository.ErrNotFound
}

// ListByUser returns the user's sessions, most recently seen first.
func (r *sessionRepo) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	ids, err := r.indexIDs(prefixSessionUser + userID + ":")
	if err != nil {
		return nil, err
	}

	sessions := make([]models.Session, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastSeenAt.After(sessions[j].LastSeenAt)
	})
	return sessions, nil
}

func (r *sessionRepo) CountByUser(_ context.Context, userID string) (int, error) {
	ids, err := r.indexIDs(prefixSessionUser + userID + ":")
	return len(ids), err
}

func (r *sessionRepo) DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessions, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	if keepLatest < 0 {
		keepLatest = 0
	}
	if len(sessions) <= keepLatest {
		return nil
	}

	b := new(leveldb.Batch)
	for _, s := range sessions[keepLatest:] {
		deleteSession(b, s)
	}
	return r.db.Write(b, nil)
}

func (r *sessionRepo) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	b := new(leveldb.Batch)
	deleteSession(b, session)
	return r.db.Write(b, nil)
}

func (r *sessionRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	iter := r.db.NewIterator(util.BytesPrefix([]byte(prefixSession)), nil)
	b := new(leveldb.Batch)
	removed := 0
	for iter.Next() {
		var rec sessionRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			iter.Release()
			return 0, err
		}
		if s := rec.model(); s.ExpiresAt.Before(now) {
			deleteSession(b, s)
			removed++
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, r.db.Write(b, nil)
}

func (r *sessionRepo) Touch(ctx context.Context, sessionID string, ip string, userAgent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.LastSeenAt = r.now().UTC()
	if ip != "" {
		session.IPAddress = ip
	}
	if userAgent != "" {
		session.UserAgent = userAgent
	}

	b := new(leveldb.Batch)
	if err := putJSON(b, prefixSession+session.ID, sessionRecord{Session: session, RefreshTokenHash: session.RefreshTokenHash}); err != nil {
		return err
	}
	return r.db.Write(b, nil)
}

func deleteSession(b *leveldb.Batch, s models.Session) {
	b.Delete([]byte(prefixSession + s.ID))
	b.Delete([]byte(sessionUserKey(s.UserID, s.ID)))
	b.Delete([]byte(sessionDeviceKey(s.UserID, s.DeviceID)))
}
