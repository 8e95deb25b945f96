package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%v, %v, %v), want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	tests := []struct {
		name string
		a, b string
	}{
		{"graph mode", k.GraphKey("sequence", 6, GraphKeyOpts{}), k.GraphKey("inverse", 6, GraphKeyOpts{})},
		{"graph start", k.GraphKey("sequence", 6, GraphKeyOpts{}), k.GraphKey("sequence", 7, GraphKeyOpts{})},
		{"graph depth", k.GraphKey("inverse", 16, GraphKeyOpts{Depth: 2}), k.GraphKey("inverse", 16, GraphKeyOpts{Depth: 3})},
		{"layout graph", k.LayoutKey("h1", LayoutKeyOpts{}), k.LayoutKey("h2", LayoutKeyOpts{})},
		{"layout spacing", k.LayoutKey("h", LayoutKeyOpts{HorizontalSpacing: 120}), k.LayoutKey("h", LayoutKeyOpts{HorizontalSpacing: 100})},
		{"artifact format", k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}), k.ArtifactKey("h", ArtifactKeyOpts{Format: "png"})},
		{"artifact radius", k.ArtifactKey("h", ArtifactKeyOpts{NodeRadius: 20}), k.ArtifactKey("h", ArtifactKeyOpts{})},
		{"layout detailed", k.LayoutKey("h", LayoutKeyOpts{Detailed: true}), k.LayoutKey("h", LayoutKeyOpts{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a == tt.b {
				t.Errorf("keys should differ: %s", tt.a)
			}
		})
	}

	if a, b := k.GraphKey("sequence", 27, GraphKeyOpts{}), k.GraphKey("sequence", 27, GraphKeyOpts{}); a != b {
		t.Error("GraphKey should be deterministic")
	}
	if key := k.GraphKey("sequence", 27, GraphKeyOpts{}); !strings.HasPrefix(key, "graph:") {
		t.Errorf("GraphKey = %q, want graph: prefix", key)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(inner, "collatz:")

	want := "collatz:" + inner.LayoutKey("h", LayoutKeyOpts{VizType: "levels"})
	if got := k.LayoutKey("h", LayoutKeyOpts{VizType: "levels"}); got != want {
		t.Errorf("LayoutKey = %q, want %q", got, want)
	}
	if got := NewScopedKeyer(nil, "p:").GraphKey("sequence", 1, GraphKeyOpts{}); !strings.HasPrefix(got, "p:graph:") {
		t.Errorf("nil inner keyer: %q", got)
	}
}

func TestKeyType(t *testing.T) {
	k := NewScopedKeyer(nil, "collatz:")
	tests := map[string]string{
		k.GraphKey("sequence", 1, GraphKeyOpts{}):         KeyTypeGraph,
		k.LayoutKey("h", LayoutKeyOpts{}):                 KeyTypeLayout,
		k.ArtifactKey("h", ArtifactKeyOpts{}):             KeyTypeArtifact,
		NewDefaultKeyer().LayoutKey("h", LayoutKeyOpts{}): KeyTypeLayout,
		"something-else":                                  "",
	}
	for key, want := range tests {
		if got := KeyType(key); got != want {
			t.Errorf("KeyType(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = (%v, %v), want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = (%q, %v, %v), want value", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl should not expire")
	}
}

func TestFileCache_Corrupt(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	_ = c.Set(ctx, "key", []byte("x"), 0)
	if err := os.WriteFile(c.path("key"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want clean miss", hit, err)
	}
}

func TestFileCache_ClearAndStats(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, size, err := c.Stats()
	if err != nil || n != 3 || size == 0 {
		t.Errorf("Stats = (%d, %d, %v), want 3 entries", n, size, err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n, _, _ := c.Stats(); n != 0 {
		t.Errorf("entries after Clear = %d", n)
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("root directory should survive Clear: %v", err)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
	ctx := context.Background()

	t.Run("SucceedsAfterRetry", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 2 {
				return Retryable(ErrNetwork)
			}
			return nil
		})
		if err != nil || calls != 2 {
			t.Errorf("err=%v calls=%d, want nil after 2", err, calls)
		}
	})

	t.Run("GivesUp", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return Retryable(ErrNetwork)
		})
		if calls != 3 || !errors.Is(err, ErrNetwork) {
			t.Errorf("err=%v calls=%d, want ErrNetwork after 3", err, calls)
		}
	})

	t.Run("NonRetryable", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return boom
		})
		if calls != 1 || err != boom {
			t.Errorf("err=%v calls=%d, want boom after 1", err, calls)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := RetryWithBackoff(cctx, func() error { return Retryable(ErrNetwork) })
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
	if err := Retryable(ErrNetwork); !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should be retryable and unwrap to ErrNetwork")
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, "127.0.0.1:1", "collatz:"); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestRedisCache_ClearRequiresPrefix(t *testing.T) {
	c := &RedisCache{}
	if err := c.Clear(context.Background()); err == nil {
		t.Error("Clear without prefix should fail")
	}
}
