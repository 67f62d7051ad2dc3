package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"brewery/internal/config"

	"go.etcd.io/bbolt"
)

// Buckets: entries is ordered by time, ids maps an entry ID to its entries key.
var (
	bucketEntries = []byte("entries")
	bucketIDs     = []byte("ids")
)

// keyTimeLayout sorts lexically in time order.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z"

var (
	// ErrEntryNotFound is returned when no entry matches the requested ID.
	ErrEntryNotFound = errors.New("history entry not found")
	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("history entry ID is ambiguous")
)

// Store keeps the activity log across dashboard sessions in a bbolt file.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the history database in the data directory.
func Open() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return OpenAt(config.HistoryPath())
}

// OpenAt opens or creates a history database at path. A second dashboard
// holding the file makes this fail after a second rather than hang.
func OpenAt(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Update(createBuckets); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}
	return &Store{db: db}, nil
}

func createBuckets(tx *bbolt.Tx) error {
	for _, name := range [][]byte{bucketEntries, bucketIDs} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func timeKey(t time.Time) []byte {
	return []byte(t.UTC().Format(keyTimeLayout))
}

// entryKey is the timestamp followed by the ID, so entries recorded in the
// same instant stay distinct.
func entryKey(e Entry) []byte {
	return append(append(timeKey(e.Timestamp), '/'), e.ID...)
}

// idOf extracts the entry ID from an entries key.
func idOf(key []byte) []byte {
	if i := bytes.IndexByte(key, '/'); i >= 0 {
		return key[i+1:]
	}
	return nil
}

// Record saves an entry and indexes its ID.
func (s *Store) Record(e Entry) error {
	if e.ID == "" {
		return errors.New("history entry has no ID")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s entry: %w", e.Operation, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		key := entryKey(e)
		if err := tx.Bucket(bucketEntries).Put(key, data); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}
		if err := tx.Bucket(bucketIDs).Put([]byte(e.ID), key); err != nil {
			return fmt.Errorf("failed to index entry: %w", err)
		}
		return nil
	})
}

// List returns up to limit entries, newest first; limit <= 0 returns all.
// When kinds are given only entries of those kinds are returned, and the
// limit counts matches.
func (s *Store) List(limit int, kinds ...Kind) ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketEntries).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(entries) == limit {
				break
			}
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if len(kinds) > 0 && !slices.Contains(kinds, e.Kind) {
				continue
			}
			entries = append(entries, e)
		}
		return nil
	})
	return entries, err
}

// Get returns the entry whose ID is id or, failing that, the only entry
// whose ID starts with id.
func (s *Store) Get(id string) (Entry, error) {
	var e Entry
	if id == "" {
		return e, ErrEntryNotFound
	}

	err := s.db.View(func(tx *bbolt.Tx) error {
		key, err := resolveID(tx.Bucket(bucketIDs), []byte(id))
		if err != nil {
			return err
		}
		data := tx.Bucket(bucketEntries).Get(key)
		if data == nil {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
		}
		return json.Unmarshal(data, &e)
	})
	return e, err
}

// resolveID maps an exact ID or unique ID prefix to its entries key.
func resolveID(ids *bbolt.Bucket, prefix []byte) ([]byte, error) {
	if key := ids.Get(prefix); key != nil {
		return key, nil
	}

	var matches [][]byte
	c := ids.Cursor()
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		matches = append(matches, v)
		if len(matches) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, prefix)
	}
	return matches[0], nil
}

// Count returns the total number of entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketEntries).Stats().KeyN
		return nil
	})
	return n, err
}

// Clear removes all history entries.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketEntries, bucketIDs} {
			if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
				return err
			}
		}
		return createBuckets(tx)
	})
}

// Prune removes entries older than maxAge and returns how many were deleted.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	return s.PruneBefore(time.Now().Add(-maxAge))
}

// PruneBefore removes entries recorded before cutoff. Keys sort by time, so
// only the leading run of the bucket is visited.
func (s *Store) PruneBefore(cutoff time.Time) (int, error) {
	limit := timeKey(cutoff)
	var deleted int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		entries, ids := tx.Bucket(bucketEntries), tx.Bucket(bucketIDs)

		var stale [][]byte
		c := entries.Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, limit) < 0; k, _ = c.Next() {
			stale = append(stale, bytes.Clone(k))
		}

		for _, k := range stale {
			if err := entries.Delete(k); err != nil {
				return err
			}
			if err := ids.Delete(idOf(k)); err != nil {
				return err
			}
		}
		deleted = len(stale)
		return nil
	})
	return deleted, err
}
