// Package storage provides the key-value byte stores the task list is
// persisted to. A store holds opaque blobs under string keys; it knows
// nothing about tasks.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrCircuitOpen = errors.New("storage circuit breaker is open")
)

type KeyValueStore interface {
	// Get returns ErrNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites whatever is stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Health(ctx context.Context) error
	Close() error
}

// Backend names accepted in configuration.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)
