package redis

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// newTestCache returns a Cache on a fresh miniredis server. The client is
// closed when the test ends.
func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	client, mr := newTestClient(t)
	return NewCache(client), mr
}

// newTestIdempotencyStore returns an IdempotencyStore on a fresh miniredis
// server.
func newTestIdempotencyStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	client, mr := newTestClient(t)
	return NewIdempotencyStore(client), mr
}

func newTestClient(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}
