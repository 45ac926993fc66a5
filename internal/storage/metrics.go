package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

type Metrics struct {
	Reads  int64 `json:"reads"`
	Misses int64 `json:"misses"`
	Writes int64 `json:"writes"`
	Errors int64 `json:"errors"`

	StartTime int64 `json:"start_time"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now().Unix(),
	}
}

func (m *Metrics) RecordRead() {
	atomic.AddInt64(&m.Reads, 1)
}

func (m *Metrics) RecordMiss() {
	atomic.AddInt64(&m.Misses, 1)
}

func (m *Metrics) RecordWrite() {
	atomic.AddInt64(&m.Writes, 1)
}

func (m *Metrics) RecordError() {
	atomic.AddInt64(&m.Errors, 1)
}

func (m *Metrics) Snapshot() Metrics {
	return Metrics{
		Reads:     atomic.LoadInt64(&m.Reads),
		Misses:    atomic.LoadInt64(&m.Misses),
		Writes:    atomic.LoadInt64(&m.Writes),
		Errors:    atomic.LoadInt64(&m.Errors),
		StartTime: atomic.LoadInt64(&m.StartTime),
	}
}

func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.Reads, 0)
	atomic.StoreInt64(&m.Misses, 0)
	atomic.StoreInt64(&m.Writes, 0)
	atomic.StoreInt64(&m.Errors, 0)
	atomic.StoreInt64(&m.StartTime, time.Now().Unix())
}

// InstrumentedStore counts traffic to the wrapped store.
type InstrumentedStore struct {
	next    KeyValueStore
	metrics *Metrics
}

func NewInstrumentedStore(next KeyValueStore, metrics *Metrics) *InstrumentedStore {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &InstrumentedStore{next: next, metrics: metrics}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.metrics.RecordRead()
	value, err := s.next.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		s.metrics.RecordMiss()
	case err != nil:
		s.metrics.RecordError()
	}
	return value, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	s.metrics.RecordWrite()
	err := s.next.Set(ctx, key, value)
	if err != nil {
		s.metrics.RecordError()
	}
	return err
}

func (s *InstrumentedStore) Health(ctx context.Context) error {
	return s.next.Health(ctx)
}

func (s *InstrumentedStore) Metrics() *Metrics {
	return s.metrics
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}
