package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "twick.db")
	s, err := Open(ctx, path)
	require.NoError(t, err)

	_, err = s.Load(ctx, "main")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, s.Save(ctx, "main", []byte("one")))
	require.NoError(t, s.Save(ctx, "main", []byte("two")))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.Load(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))

	require.NoError(t, s.Delete(ctx, "main"))
	_, err = s.Load(ctx, "main")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}
