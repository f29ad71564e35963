package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientWithConfigAppliesPoolSize(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClientWithConfig(context.Background(), Config{
		URL:         fmt.Sprintf("redis://%s/2", s.Addr()),
		PoolSize:    3,
		DialTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if got := client.Options().PoolSize; got != 3 {
		t.Fatalf("expected pool size 3, got %d", got)
	}
	if got := client.Options().DB; got != 2 {
		t.Fatalf("expected db 2 from the URL, got %d", got)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	if _, err := NewClient(context.Background(), "://bad-url"); err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientUnreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	if _, err := NewClient(context.Background(), "redis://"+addr); err == nil {
		t.Fatalf("expected ping error for a closed server")
	}
}
