package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

func TestRegistryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := document.NewStore()
	reg := NewRegistry(store, WithDefaultDuration(2))

	a, err := reg.Open(ctx, "a")
	require.NoError(t, err)
	b, err := reg.Open(ctx, "b", WithMaxUndoEntries(5))
	require.NoError(t, err)
	assert.Same(t, store, reg.Store())

	_, err = reg.Open(ctx, "a")
	assert.ErrorIs(t, err, ErrContextOpen)

	assert.Equal(t, []string{"a", "b"}, reg.Contexts())
	got, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	track, _ := a.AddTrack(ctx, "main")
	el, err := a.AddElement(ctx, track.ID(), text("x", 0, 1))
	require.NoError(t, err)
	el2, err := a.AddElement(ctx, track.ID(), timeline.NewText("y"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, el2.End())
	assert.NotEqual(t, el.ID(), el2.ID())

	assert.Equal(t, uint64(3), store.Get("a").Version)
	assert.Equal(t, uint64(0), b.Version())

	require.NoError(t, reg.Close(ctx, "a"))
	assert.ErrorIs(t, reg.Close(ctx, "a"), ErrContextNotFound)
	_, ok = reg.Lookup("a")
	assert.False(t, ok)
	assert.False(t, store.Has("a"))

	require.NoError(t, reg.CloseAll(ctx))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryOpenFailure(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Open(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyContext)
	assert.Empty(t, reg.Contexts())
}
