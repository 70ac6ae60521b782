package deploy

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var bucketDeployments = []byte("deployments")

// BoltRecordStore persists deployment records in a bbolt database.
type BoltRecordStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ RecordStore = (*BoltRecordStore)(nil)

// OpenBoltRecordStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltRecordStore(dbPath string) (*BoltRecordStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("deploy: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("deploy: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDeployments)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("deploy: create bucket: %w", err)
	}

	return &BoltRecordStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltRecordStore) Close() error { return s.db.Close() }

// Get returns the record for the round, or ErrRecordNotFound.
func (s *BoltRecordStore) Get(roundID string) (*DeploymentRecord, error) {
	var record DeploymentRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDeployments).Get([]byte(roundID))
		if data == nil {
			return fmt.Errorf("%w: round %s", ErrRecordNotFound, roundID)
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&record); err != nil {
			return fmt.Errorf("deploy: decode record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Put inserts or replaces the record for its round.
func (s *BoltRecordStore) Put(record *DeploymentRecord) error {
	if record == nil {
		return ErrNilRecord
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(record); err != nil {
		return fmt.Errorf("deploy: encode record: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketDeployments).Put([]byte(record.RoundID), buf.Bytes()); err != nil {
			return fmt.Errorf("deploy: put record: %w", err)
		}
		return nil
	})
}

// List returns all records in key order.
func (s *BoltRecordStore) List() ([]*DeploymentRecord, error) {
	var records []*DeploymentRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDeployments).ForEach(func(k, v []byte) error {
			var record DeploymentRecord
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&record); err != nil {
				return fmt.Errorf("deploy: decode record in list: %w", err)
			}
			records = append(records, &record)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("deploy: list records: %w", err)
	}
	return records, nil
}
