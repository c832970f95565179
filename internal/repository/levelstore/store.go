// Package levelstore is the embedded Record Store: every entity is kept as a
// JSON document in LevelDB with secondary keys for the lookups the services
// need.
package levelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/TristanBrian/MamaCare/internal/models"
	"github.com/TristanBrian/MamaCare/internal/repository"
)

// Key layout. Secondary keys embed a zero-padded sequence so that prefix
// iteration yields creation order.
const (
	keySeq = "meta:seq"

	prefixUser      = "user:"
	prefixUserEmail = "user_email:"

	prefixSession       = "session:"
	prefixSessionUser   = "session_user:"
	prefixSessionDevice = "session_device:"

	prefixAppt        = "appt:"
	prefixApptAll     = "appt_all:"
	prefixApptDoctor  = "appt_doctor:"
	prefixApptPatient = "appt_patient:"

	prefixNotif     = "notif:"
	prefixNotifUser = "notif_user:"

	prefixMed     = "med:"
	prefixMedUser = "med_user:"
)

// Store serializes writes behind one mutex; LevelDB batches make each
// operation atomic on disk.
type Store struct {
	db  *leveldb.DB
	mu  sync.Mutex
	seq uint64
	now func() time.Time
}

// Open opens (or creates) the database directory at path.
func Open(path string) (*repository.Set, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return newSet(db)
}

// OpenMem returns a Set backed by an in-memory LevelDB.
func OpenMem() (*repository.Set, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return newSet(db)
}

func newSet(db *leveldb.DB) (*repository.Set, error) {
	s := &Store{db: db, now: time.Now}

	raw, err := db.Get([]byte(keySeq), nil)
	switch {
	case err == nil:
		s.seq, err = strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("corrupt sequence %q: %w", raw, err)
		}
	case errors.Is(err, leveldb.ErrNotFound):
	default:
		db.Close()
		return nil, err
	}

	return &repository.Set{
		Users:         &userRepo{s},
		Sessions:      &sessionRepo{s},
		Appointments:  &appointmentRepo{s},
		Notifications: &notificationRepo{s},
		Medications:   &medicationRepo{s},
		Ping: func(context.Context) error {
			_, err := db.GetProperty("leveldb.num-files-at-level0")
			return err
		},
		Close: db.Close,
	}, nil
}

// nextSeq must be called with mu held. The new value is written into b so it
// only persists together with the records that use it.
func (s *Store) nextSeq(b *leveldb.Batch) string {
	s.seq++
	b.Put([]byte(keySeq), []byte(strconv.FormatUint(s.seq, 10)))
	return fmt.Sprintf("%020d", s.seq)
}

func (s *Store) get(key string, v any) error {
	raw, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return repository.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *Store) has(key string) (bool, error) {
	return s.db.Has([]byte(key), nil)
}

func (s *Store) getString(key string) (string, error) {
	raw, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", repository.ErrNotFound
		}
		return "", err
	}
	return string(raw), nil
}

// indexIDs returns the values stored under prefix in key order.
func (s *Store) indexIDs(prefix string) ([]string, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	var ids []string
	for iter.Next() {
		ids = append(ids, string(iter.Value()))
	}
	return ids, iter.Error()
}

// indexKey finds the secondary key under prefix that points at id.
func (s *Store) indexKey(prefix, id string) (string, error) {
	iter := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	for iter.Next() {
		if string(iter.Value()) == id {
			return string(iter.Key()), nil
		}
	}
	if err := iter.Error(); err != nil {
		return "", err
	}
	return "", repository.ErrNotFound
}

func putJSON(b *leveldb.Batch, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	b.Put([]byte(key), raw)
	return nil
}

func emailKey(email string) string {
	return prefixUserEmail + strings.ToLower(email)
}

// Hashes are hidden from API JSON, so the stored documents carry them
// explicitly.
type userRecord struct {
	models.User
	PasswordHash []byte `json:"passwordHash"`
}

func (r userRecord) model() models.User {
	u := r.User
	u.PasswordHash = r.PasswordHash
	return u
}

type sessionRecord struct {
	models.Session
	RefreshTokenHash []byte `json:"refreshTokenHash"`
}

func (r sessionRecord) model() models.Session {
	s := r.Session
	s.RefreshTokenHash = r.RefreshTokenHash
	return s
}
