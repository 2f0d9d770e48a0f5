package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

// Set TWICK_TEST_REDIS_ADDR to run against a live server.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TWICK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TWICK_TEST_REDIS_ADDR not set")
	}
	s, err := Open(context.Background(), Options{Addr: addr, Prefix: "twick-test:" + uuid.NewString() + ":"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx, "main")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, s.Save(ctx, "main", []byte("one")))
	require.NoError(t, s.Save(ctx, "main", []byte("two")))
	got, err := s.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	require.NoError(t, s.Delete(ctx, "main"))
	_, err = s.Load(ctx, "main")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestKeyPrefix(t *testing.T) {
	s := New(nil, Options{})
	assert.Equal(t, DefaultPrefix+"main", s.key("main"))
	assert.NoError(t, s.Close())

	s = New(nil, Options{Prefix: "p:"})
	assert.Equal(t, "p:main", s.key("main"))
	assert.Error(t, s.Save(context.Background(), "", nil))
}
