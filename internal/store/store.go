package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/rezonia/cfdi-reader/internal/model"
)

const bucketName = "extractions"

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("extraction not found")

// Record is one stored extraction
type Record struct {
	ID          string                `json:"id"`
	Source      string                `json:"source"`
	ExtractedAt time.Time             `json:"extractedAt"`
	Summary     *model.InvoiceSummary `json:"summary"`
}

// Store defines the interface for extraction history
type Store interface {
	// Save stores summary under a new id and returns the record
	Save(source string, summary *model.InvoiceSummary) (*Record, error)

	// Get retrieves a record by id
	Get(id string) (*Record, error)

	// List returns all records, oldest first
	List() ([]*Record, error)

	// Delete removes a record
	Delete(id string) error

	// Close closes the database
	Close() error
}

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the history database at path
func Open(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db, now: time.Now}, nil
}

// Save stores summary under a new time-ordered id
func (s *BoltStore) Save(source string, summary *model.InvoiceSummary) (*Record, error) {
	if summary == nil {
		return nil, fmt.Errorf("saving extraction: nil summary")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating id: %w", err)
	}

	record := &Record{
		ID:          id.String(),
		Source:      source,
		ExtractedAt: s.now().UTC(),
		Summary:     summary,
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshaling extraction: %w", err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(record.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Get retrieves a record by id
func (s *BoltStore) Get(id string) (*Record, error) {
	var record *Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns all records in id order, which is also insertion order
func (s *BoltStore) List() ([]*Record, error) {
	records := make([]*Record, 0)
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(k, v []byte) error {
			var record Record
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("unmarshaling extraction %s: %w", k, err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Delete removes a record
func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return bucket.Delete([]byte(id))
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
