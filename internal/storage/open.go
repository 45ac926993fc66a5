package storage

import (
	"errors"
	"fmt"

	"todo-list/backend/internal/database"
)

type Options struct {
	Backend string
	// Dir is where the file backend keeps its blobs.
	Dir      string
	Database *database.PoolConfig
	Redis    *RedisConfig
	Breaker  *BreakerConfig
}

// Stack is the configured store with its instrumentation. Remote backends
// sit behind a circuit breaker.
type Stack struct {
	KeyValueStore

	backend string
	metrics *Metrics
	breaker *Breaker
	redis   *RedisStore
	pool    *database.DatabasePool
}

func Open(opts Options) (*Stack, error) {
	stack := &Stack{backend: opts.Backend, metrics: NewMetrics()}

	var base KeyValueStore
	switch opts.Backend {
	case BackendMemory:
		base = NewMemoryStore()
	case BackendFile:
		fs, err := NewFileStore(opts.Dir)
		if err != nil {
			return nil, err
		}
		base = fs
	case BackendRedis:
		stack.redis = NewRedisStore(opts.Redis)
		base = stack.redis
	case BackendSQLite, BackendPostgres:
		config := database.DefaultPoolConfig()
		if opts.Database != nil {
			*config = *opts.Database
		}
		config.Driver = opts.Backend
		pool, err := database.NewDatabasePool(config)
		if err != nil {
			return nil, err
		}
		sqlStore, err := NewSQLStore(pool.DB)
		if err != nil {
			pool.Close()
			return nil, err
		}
		stack.pool = pool
		base = sqlStore
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}

	if stack.remote() {
		guarded := NewBreakerStore(base, opts.Breaker)
		stack.breaker = guarded.Breaker()
		base = guarded
	}

	stack.KeyValueStore = NewInstrumentedStore(base, stack.metrics)
	return stack, nil
}

func (s *Stack) remote() bool {
	return s.backend == BackendRedis || s.backend == BackendPostgres
}

func (s *Stack) Backend() string {
	return s.backend
}

func (s *Stack) Metrics() *Metrics {
	return s.metrics
}

// Stats describes the stack for the metrics endpoint.
func (s *Stack) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"backend": s.backend,
		"traffic": s.metrics.Snapshot(),
	}
	if s.breaker != nil {
		stats["breaker"] = s.breaker.Stats()
	}
	if s.redis != nil {
		stats["redis"] = s.redis.Stats()
	}
	if s.pool != nil {
		stats["database"] = s.pool.Stats()
	}
	return stats
}

func (s *Stack) Close() error {
	err := s.KeyValueStore.Close()
	if s.pool != nil {
		err = errors.Join(err, s.pool.Close())
	}
	return err
}
