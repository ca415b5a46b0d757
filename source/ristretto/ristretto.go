// Package ristretto serves cache values from a dgraph-io/ristretto cache.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/IvanBrykalov/stablecache/source"
)

type Store struct {
	c *rc.Cache
}

var _ source.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto source: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// not ours; drop it
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set admits value with cost len(value). Ristretto applies writes
// asynchronously and may reject them; call Wait to flush.
func (s *Store) Set(key string, value []byte, ttl time.Duration) bool {
	return s.c.SetWithTTL(key, value, int64(len(value)), ttl)
}

func (s *Store) Wait() { s.c.Wait() }

func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }

func (s *Store) Close() {
	s.c.Wait()
	s.c.Close()
}
