// Package storage persists the task list in a durable key-value slot.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// DefaultKey is the slot key the task list is stored under.
const DefaultKey = "lab-b-todo-tasks"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// ErrNotFound is returned by Slot.Get when nothing is stored under the key.
var ErrNotFound = errors.New("slot not found")

// Slot is a durable key-value area. Put replaces the whole value; readers
// never observe a partially written value.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options selects and configures a slot backend.
type Options struct {
	Backend string
	// Dir holds one JSON file per key for the file backend.
	Dir string
	// SQLitePath is the database file for the sqlite backend.
	SQLitePath string
	// Redis settings. URL overrides Addr/Password/DB.
	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Timeout bounds connection checks when opening remote backends.
	Timeout time.Duration
}

// Open creates the slot described by opts.
func Open(ctx context.Context, opts Options) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileSlot(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "tasklist.db")
		}
		return NewSQLiteSlot(path)
	case BackendRedis:
		return NewRedisSlot(ctx, RedisOptions{
			URL:      opts.RedisURL,
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Timeout:  opts.Timeout,
		})
	case BackendMemory:
		return NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (expected file|sqlite|redis|memory)", opts.Backend)
	}
}

// PersistError reports a failed write to the slot.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistError) Unwrap() error {
	return e.Err
}

// MalformedError reports slot content that could not be read as a task list.
type MalformedError struct {
	Key string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedError) Unwrap() error {
	return e.Err
}
