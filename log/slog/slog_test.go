package slog

import (
	"bytes"
	"context"
	"encoding/json"
	stdslog "log/slog"
	"testing"

	"github.com/IvanBrykalov/stablecache/cache"
)

func TestLogger_WritesStructuredRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := stdslog.New(stdslog.NewJSONHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))
	c := cache.New(cache.Options[int, int]{Logger: Logger{L: l}})

	if _, err := c.GetOrInsertWith(1, func(int) (int, error) { return 1, nil }); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatal(err)
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if rec["msg"] != "cache closed" || rec["level"] != "INFO" || rec["released"] != float64(1) {
		t.Fatalf("unexpected record %v", rec)
	}
}
