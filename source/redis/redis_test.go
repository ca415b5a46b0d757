package redis

import (
	"context"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/IvanBrykalov/stablecache/cache"
	"github.com/IvanBrykalov/stablecache/source"
	"github.com/IvanBrykalov/stablecache/source/codec"
)

type fakeRedis map[string]string

func (f fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	if key == "broken" {
		return goredis.NewStringResult("", errors.New("READONLY"))
	}
	v, ok := f[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func TestStore_Get(t *testing.T) {
	t.Parallel()

	s, err := New(fakeRedis{"a": "1"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if b, ok, err := s.Get(ctx, "a"); err != nil || !ok || string(b) != "1" {
		t.Fatalf("hit: %q %v %v", b, ok, err)
	}
	if _, ok, err := s.Get(ctx, "b"); err != nil || ok {
		t.Fatalf("redis.Nil must be a clean miss: %v %v", ok, err)
	}
	if _, _, err := s.Get(ctx, "broken"); err == nil {
		t.Fatal("server error must surface")
	}
	if _, err := New(nil); !errors.Is(err, ErrNilClient) {
		t.Fatalf("want ErrNilClient, got %v", err)
	}
}

func TestStore_BacksCache(t *testing.T) {
	t.Parallel()

	s, _ := New(fakeRedis{"cfg:limits": `{"rps":100}`})
	p := source.MustNew(source.Config[map[string]int]{
		Store:  s,
		Codec:  codec.JSON[map[string]int]{},
		Prefix: "cfg:",
	})
	c := cache.NewWithProvider(p)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	ref, err := c.GetOrInsert("limits")
	if err != nil || ref.Value()["rps"] != 100 {
		t.Fatalf("got %v err=%v", ref.Value(), err)
	}
	if _, err := c.GetOrInsert("missing"); !errors.Is(err, source.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestNewClient_SatisfiesGetter(t *testing.T) {
	t.Parallel()

	rdb := NewClient("127.0.0.1:0", "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	if _, err := New(rdb); err != nil {
		t.Fatal(err)
	}
}
