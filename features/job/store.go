package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
)

var ErrNotFound = errors.New("job not found")

// Store is the durable key-value map from job ID to Job record. The
// access pattern is read-modify-write with no compare-and-swap; callers
// must serialize writes per job (the pipeline does this via per-job
// delivery ordering and job locks).
type Store interface {
	Get(ctx context.Context, id string) (*Job, error)
	Put(ctx context.Context, j *Job) error
}

// PostgresStore keeps jobs in a single table keyed by the bare job ID,
// with the record itself as a JSONB document.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Job, error) {
	var data []byte
	query := `SELECT data FROM jobs WHERE id = $1`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	j := &Job{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *PostgresStore) Put(ctx context.Context, j *Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	query := `INSERT INTO jobs (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`
	_, err = s.db.ExecContext(ctx, query, j.ID, data)
	return err
}

// MemoryStore is a mutex-guarded in-process Store for tests and local
// runs. Records round-trip through JSON so callers never share memory
// with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Job, error) {
	s.mu.RLock()
	data, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	j := &Job{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *MemoryStore) Put(ctx context.Context, j *Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobs[j.ID] = data
	s.mu.Unlock()
	return nil
}
