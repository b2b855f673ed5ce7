package params

import (
	"context"
	"errors"
	"sync"
)

// StatusKey is the params key holding the shared status code.
const StatusKey = "CEStatus"

// ErrClosed is returned by a register used after Close.
var ErrClosed = errors.New("params: register closed")

// #region memory
// MemoryRegister is an in-process register for tests and single-process runs.
type MemoryRegister struct {
	mu     sync.Mutex
	value  int
	closed bool

	// ReadErr and WriteErr, when set, are returned instead of touching the value.
	ReadErr  error
	WriteErr error
}

// NewMemoryRegister creates a register holding initial.
func NewMemoryRegister(initial int) *MemoryRegister {
	return &MemoryRegister{value: initial}
}

// ReadStatus returns the held value.
func (r *MemoryRegister) ReadStatus(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrClosed
	}
	if r.ReadErr != nil {
		return 0, r.ReadErr
	}
	return r.value, nil
}

// WriteStatus replaces the held value.
func (r *MemoryRegister) WriteStatus(ctx context.Context, v int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if r.WriteErr != nil {
		return r.WriteErr
	}
	r.value = v
	return nil
}

// Set replaces the held value regardless of injected errors, the way another
// process would.
func (r *MemoryRegister) Set(v int) {
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
}

// Value returns the held value regardless of injected errors.
func (r *MemoryRegister) Value() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// Close marks the register closed.
func (r *MemoryRegister) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return nil
}

// #endregion memory

// #region sqlite
// SQLiteRegister exposes one key of a Store as a status register.
type SQLiteRegister struct {
	store *Store
	key   string
}

// Register returns a status register backed by key.
func (s *Store) Register(key string) *SQLiteRegister {
	return &SQLiteRegister{store: s, key: key}
}

// ReadStatus reads the key; unset reads as 0.
func (r *SQLiteRegister) ReadStatus(ctx context.Context) (int, error) {
	return r.store.GetInt(ctx, r.key)
}

// WriteStatus upserts the key.
func (r *SQLiteRegister) WriteStatus(ctx context.Context, v int) error {
	return r.store.PutInt(ctx, r.key, v)
}

// #endregion sqlite
