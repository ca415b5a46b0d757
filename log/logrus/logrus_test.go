package logrus

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/IvanBrykalov/stablecache/cache"
)

func TestLogrusLogger_ReceivesCacheEvents(t *testing.T) {
	t.Parallel()

	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	c := cache.New(cache.Options[string, int]{
		Logger:            LogrusLogger{E: logrus.NewEntry(base)},
		DisableCoalescing: true,
	})

	if _, err := c.GetOrInsertWith("k", func(string) (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}

	last := hook.LastEntry()
	if last == nil || last.Message != "cache cleared" || last.Level != logrus.InfoLevel {
		t.Fatalf("unexpected last entry %+v", last)
	}
	if got := last.Data["released"]; got != 1 {
		t.Fatalf("released field = %v, want 1", got)
	}
}
