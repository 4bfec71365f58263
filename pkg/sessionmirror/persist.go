package sessionmirror

import (
	"encoding/json"
	"errors"

	"go.etcd.io/bbolt"
)

var (
	bucketName  = []byte("session_mirror")
	snapshotKey = []byte("snapshot")
)

// Persistence saves and restores mirror snapshots across restarts.
type Persistence interface {
	Load() (Snapshot, bool, error)
	Save(Snapshot) error
}

// BoltPersistence keeps the snapshot in a bbolt file. Good enough for a
// process-local mirror: one bucket, one key, crash-safe writes.
type BoltPersistence struct {
	db *bbolt.DB
}

// OpenBolt opens (or creates) the snapshot database at path.
func OpenBolt(path string) (*BoltPersistence, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Join(errors.New("sessionmirror: open snapshot db"), err)
	}
	return &BoltPersistence{db: db}, nil
}

// Load returns the persisted snapshot, if any.
func (p *BoltPersistence) Load() (Snapshot, bool, error) {
	var (
		snapshot Snapshot
		found    bool
	)
	err := p.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}
		data := b.Get(snapshotKey)
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return Snapshot{}, false, err
	}
	return snapshot, found, nil
}

// Save overwrites the persisted snapshot.
func (p *BoltPersistence) Save(s Snapshot) error {
	return p.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		data, err := json.Marshal(s)
		if err != nil {
			return err
		}
		return b.Put(snapshotKey, data)
	})
}

// Close closes the underlying database.
func (p *BoltPersistence) Close() error {
	return p.db.Close()
}
