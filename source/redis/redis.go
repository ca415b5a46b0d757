// Package redis reads cache values from Redis.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/IvanBrykalov/stablecache/source"
)

var ErrNilClient = errors.New("redis source: nil client")

// Getter is the slice of the go-redis client API the store needs.
// *goredis.Client, *goredis.ClusterClient and goredis.UniversalClient satisfy it.
type Getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

type Store struct {
	rdb Getter
}

var _ source.Store = (*Store)(nil)

func New(rdb Getter) (*Store, error) {
	if rdb == nil {
		return nil, ErrNilClient
	}
	return &Store{rdb: rdb}, nil
}

// NewClient dials nothing; go-redis connects lazily on first command.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
