package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
)

func TestHistoryKey(t *testing.T) {
	if got := HistoryKey("1", 4); got != "history:1:4" {
		t.Errorf("HistoryKey = %q, want history:1:4", got)
	}
	if got := SubjectHistoryPrefix("2"); got != "history:2:" {
		t.Errorf("SubjectHistoryPrefix = %q, want history:2:", got)
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	value := []byte(`{"a":1}`)
	if err := m.Set(ctx, "history:1:4", value); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value[0] = 'x'

	got, err := m.Get(ctx, "history:1:4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get = %q, stored value was aliased", got)
	}

	_ = m.Set(ctx, "history:1:5", nil)
	_ = m.Set(ctx, "history:2:1", nil)
	_ = m.Set(ctx, ProgressionKey, nil)

	keys, err := m.Keys(ctx, SubjectHistoryPrefix("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "history:1:4" || keys[1] != "history:1:5" {
		t.Errorf("Keys = %v, want [history:1:4 history:1:5]", keys)
	}

	if err := m.Delete(ctx, "history:1:4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Delete(ctx, "history:1:4"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := m.Get(ctx, "history:1:4"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete error = %v, want ErrNotFound", err)
	}
}

func TestRedisNamespace(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	r := NewRedisWithClient(client, "")
	if got := r.key(ProgressionKey); got != "quizrace:progression" {
		t.Errorf("key = %q, want quizrace:progression", got)
	}

	r = NewRedisWithClient(client, "test:")
	if got := r.key(HistoryKey("1", 4)); got != "test:history:1:4" {
		t.Errorf("key = %q, want test:history:1:4", got)
	}
}
