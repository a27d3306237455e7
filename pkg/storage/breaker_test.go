package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/sony/gobreaker"
)

type flakyStore struct {
	putErr  error
	puts    int
	readURL string
}

func (f *flakyStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	f.puts++
	return f.putErr
}

func (f *flakyStore) Delete(ctx context.Context, key string) error { return nil }

func (f *flakyStore) ReadURL(ctx context.Context, key string) (string, error) {
	return f.readURL + key, nil
}

func (f *flakyStore) Ping(ctx context.Context) error { return nil }

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	backend := &flakyStore{putErr: errors.New("bucket down"), readURL: "/uploads/"}
	breaker := NewBreaker(backend, config.BreakerConfig{
		MaxConsecutiveFailures: 2,
		OpenTimeout:            time.Minute,
	}, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := breaker.Put(ctx, "k", "image/png", strings.NewReader("x"), 1)
		if err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("attempt %d: expected backend error, got %v", i, err)
		}
	}
	if breaker.State() != gobreaker.StateOpen {
		t.Fatalf("expected breaker to be open, got %s", breaker.State())
	}

	err := breaker.Put(ctx, "k", "image/png", strings.NewReader("x"), 1)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable while open, got %v", err)
	}
	if backend.puts != 2 {
		t.Fatalf("open breaker must not reach the backend, puts=%d", backend.puts)
	}

	u, err := breaker.ReadURL(ctx, "a.jpg")
	if err != nil || u != "/uploads/a.jpg" {
		t.Fatalf("read urls should keep working while open, got %q %v", u, err)
	}
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	backend := &flakyStore{}
	breaker := NewBreaker(backend, config.BreakerConfig{}, nil)
	if err := breaker.Put(context.Background(), "k", "image/png", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := breaker.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("unexpected delete error: %v", err)
	}
	if err := breaker.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestNewBuildsLocalDriver(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverLocal},
		Local:   config.LocalStorageConfig{Dir: t.TempDir(), PublicBaseURL: "/uploads"},
	}
	store, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	cfg.Storage.Driver = "ftp"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected unknown driver to fail")
	}
}
