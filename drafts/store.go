// Package drafts persists booking wizard sessions in badger so a booking can
// be filled in across several requests.
package drafts

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"logitrack-api/statemachine"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("booking draft not found")


// Record is one stored wizard; OwnerID is 0 for guests
type Record struct {
	ID        string              `json:"id"`
	OwnerID   uint                `json:"owner_id"`
	Wizard    statemachine.Wizard `json:"wizard"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type Store struct {
	db  *badger.DB
	ttl time.Duration

	mu    sync.Mutex
	locks map[string]*draftLock
}

type draftLock struct {
	mu   sync.Mutex
	refs int
}

// Open opens a draft store in dir; an empty dir keeps drafts in memory
func Open(dir string, ttl time.Duration) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open draft store: %w", err)
	}
	return &Store{db: db, ttl: ttl, locks: make(map[string]*draftLock)}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func draftKey(id string) []byte {
	return []byte("draft:" + id)
}

func submittedKey(id string) []byte {
	return []byte("submitted:" + id)
}

// Lock serializes changes to one draft. Callers must call the returned func.
func (s *Store) Lock(id string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &draftLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Create starts a fresh wizard for ownerID
func (s *Store) Create(ownerID uint) (Record, error) {
	rec := Record{
		ID:      uuid.NewString(),
		OwnerID: ownerID,
		Wizard:  *statemachine.NewWizard(),
	}
	if err := s.Save(&rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Store) Get(id string) (Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(draftKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read draft %s: %w", id, err)
	}
	return rec, nil
}

// Save writes the record and restarts its expiry clock
func (s *Store) Save(rec *Record) error {
	rec.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", rec.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(draftKey(rec.ID), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("store draft %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(draftKey(id))
	})
}

// Complete removes the draft and remembers the LR number it was booked under
// for as long as a draft would have lived.
func (s *Store) Complete(id, lrNo string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(draftKey(id)); err != nil {
			return err
		}
		e := badger.NewEntry(submittedKey(id), []byte(lrNo))
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("complete draft %s: %w", id, err)
	}
	return nil
}

// SubmittedAs returns the LR number of a completed draft
func (s *Store) SubmittedAs(id string) (string, error) {
	var lrNo string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(submittedKey(id))
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		lrNo = string(val)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read submitted draft %s: %w", id, err)
	}
	return lrNo, nil
}
