package theme

import (
	"context"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const DefaultStorageKey = "portfolio-theme"

var preferencesBucket = []byte("preferences")

// Store persists the theme chosen by the user. Load reports false when no
// preference was saved yet.
type Store interface {
	Load(ctx context.Context) (Theme, bool, error)
	Save(ctx context.Context, t Theme) error
	Clear(ctx context.Context) error
}

type MemoryStore struct {
	mu    sync.Mutex
	theme Theme
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (Theme, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme, s.theme != "", nil
}

func (s *MemoryStore) Save(ctx context.Context, t Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = t
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = ""
	return nil
}

// Database is a bbolt file holding theme preferences under string keys.
type Database struct {
	db *bolt.DB
}

func OpenDatabase(path string) (*Database, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second * 5})
	if err != nil {
		return nil, err
	}

	return &Database{
		db: db,
	}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Store returns the store for a single preference key.
func (d *Database) Store(key string) *BoltStore {
	return &BoltStore{db: d.db, key: []byte(key)}
}

type BoltStore struct {
	db  *bolt.DB
	key []byte
}

func (s *BoltStore) Load(ctx context.Context) (Theme, bool, error) {
	var raw []byte

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(preferencesBucket)
		if b == nil {
			return nil
		}

		if v := b.Get(s.key); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil || raw == nil {
		return "", false, err
	}

	t, err := Parse(string(raw))
	if err != nil {
		return "", false, err
	}

	return t, true, nil
}

func (s *BoltStore) Save(ctx context.Context, t Theme) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(preferencesBucket)
		if err != nil {
			return err
		}

		return b.Put(s.key, []byte(t))
	})
}

func (s *BoltStore) Clear(ctx context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(preferencesBucket)
		if b == nil {
			return nil
		}

		return b.Delete(s.key)
	})
}
