package history

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/memory"
)

func doc(v uint64) document.Document {
	return document.Document{Tracks: []*timeline.Track{}, Version: v}
}

func newHistory(t *testing.T, max int, opts ...Option) *History {
	t.Helper()
	h := New(max, opts...)
	_, resumed, err := h.Init(context.Background(), doc(0), true)
	require.NoError(t, err)
	require.False(t, resumed)
	return h
}

func TestNewDefaults(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultMaxEntries, h.MaxEntries())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	_, ok := h.Present()
	assert.False(t, ok)
}

func TestUndoRedoEmpty(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	_, err := h.Undo(ctx)
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = h.Redo(ctx)
	assert.ErrorIs(t, err, ErrNothingToRedo)

	present, ok := h.Present()
	require.True(t, ok)
	assert.Equal(t, uint64(0), present.Version)
}

func TestCommitUndoRedo(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	h.Commit(ctx, doc(1), "add track")
	h.Commit(ctx, doc(2), "add element")
	assert.Equal(t, 2, h.UndoCount())

	info, ok := h.PeekUndo()
	require.True(t, ok)
	assert.Equal(t, uint64(1), info.Version)
	assert.Equal(t, "add track", info.Label)

	got, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Version)
	assert.Equal(t, 1, h.RedoCount())

	got, err = h.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)
	assert.False(t, h.CanRedo())
}

func TestCommitAfterUndoDiscardsFuture(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	h.Commit(ctx, doc(1), "a")
	h.Commit(ctx, doc(2), "b")
	_, err := h.Undo(ctx)
	require.NoError(t, err)
	require.True(t, h.CanRedo())

	h.Commit(ctx, doc(3), "c")
	assert.False(t, h.CanRedo())
	_, err = h.Redo(ctx)
	assert.ErrorIs(t, err, ErrNothingToRedo)
}

func TestMaxEntriesDropsOldest(t *testing.T) {
	h := newHistory(t, 3)
	ctx := context.Background()

	for v := uint64(1); v <= 5; v++ {
		h.Commit(ctx, doc(v), "")
	}
	assert.Equal(t, 3, h.UndoCount())

	var versions []uint64
	for _, e := range h.UndoInfo() {
		versions = append(versions, e.Version)
	}
	assert.Equal(t, []uint64{2, 3, 4}, versions)

	h.SetMaxEntries(1)
	assert.Equal(t, 1, h.UndoCount())
	got, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), got.Version)
}

func TestGroupIsOneUndoUnit(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	h.Commit(ctx, doc(1), "before")
	h.BeginGroup("script")
	h.BeginGroup("nested")
	assert.True(t, h.IsGrouping())
	h.Commit(ctx, doc(2), "x")
	h.Commit(ctx, doc(3), "y")
	h.Commit(ctx, doc(4), "z")
	h.EndGroup(ctx)
	assert.False(t, h.IsGrouping())

	assert.Equal(t, 2, h.UndoCount())
	present, _ := h.Present()
	assert.Equal(t, uint64(4), present.Version)

	got, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Version)

	info, ok := h.PeekRedo()
	require.True(t, ok)
	assert.Equal(t, "script", info.Label)
}

func TestEmptyGroupLeavesHistory(t *testing.T) {
	h := newHistory(t, 0)
	h.BeginGroup("noop")
	h.EndGroup(context.Background())
	assert.False(t, h.CanUndo())
}

func TestRollbackDiscardsGroup(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	h.Commit(ctx, doc(1), "base")
	h.BeginGroup("batch")
	h.Commit(ctx, doc(2), "x")
	h.Commit(ctx, doc(3), "y")

	got, changed := h.Rollback(ctx)
	require.True(t, changed)
	assert.Equal(t, uint64(1), got.Version)
	assert.False(t, h.IsGrouping())
	assert.Equal(t, 1, h.UndoCount())
	assert.False(t, h.CanRedo())

	present, _ := h.Present()
	assert.Equal(t, uint64(1), present.Version)
}

func TestRollbackRestoresFuture(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	h.Commit(ctx, doc(1), "a")
	h.Commit(ctx, doc(2), "b")
	_, err := h.Undo(ctx)
	require.NoError(t, err)

	h.BeginGroup("batch")
	_, err = h.Undo(ctx)
	require.NoError(t, err)
	h.Commit(ctx, doc(3), "c")

	got, changed := h.Rollback(ctx)
	require.True(t, changed)
	assert.Equal(t, uint64(1), got.Version)
	assert.Equal(t, 1, h.UndoCount())
	require.Equal(t, 1, h.RedoCount())

	next, err := h.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Version)
}

func TestRollbackOfCleanGroup(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	_, changed := h.Rollback(ctx)
	assert.False(t, changed)

	h.Commit(ctx, doc(1), "a")
	h.BeginGroup("noop")
	_, changed = h.Rollback(ctx)
	assert.False(t, changed)
	assert.False(t, h.IsGrouping())
	assert.Equal(t, 1, h.UndoCount())
}

func TestUndoRedoInsideGroup(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()

	h.Commit(ctx, doc(1), "a")
	h.Commit(ctx, doc(2), "b")

	h.BeginGroup("batch")
	got, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Version)
	got, err = h.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)
	assert.True(t, h.IsGrouping())

	h.Commit(ctx, doc(3), "c")
	_, err = h.Undo(ctx)
	assert.ErrorIs(t, err, ErrGroupChanged)
	_, err = h.Redo(ctx)
	assert.ErrorIs(t, err, ErrGroupChanged)
	assert.True(t, h.IsGrouping())

	h.EndGroup(ctx)
	got, err = h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.Version)
}

func TestRollbackPersists(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	h := newHistory(t, 0, WithStore(store, "ctx"))
	h.Commit(ctx, doc(1), "base")
	h.BeginGroup("batch")
	h.Commit(ctx, doc(2), "x")
	_, changed := h.Rollback(ctx)
	require.True(t, changed)

	resumed := New(0, WithStore(store, "ctx"))
	present, ok, err := resumed.Init(ctx, doc(99), true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1), present.Version)
	assert.False(t, resumed.CanRedo())
}

func TestClearKeepsPresent(t *testing.T) {
	h := newHistory(t, 0)
	ctx := context.Background()
	h.Commit(ctx, doc(1), "")
	h.Commit(ctx, doc(2), "")
	_, _ = h.Undo(ctx)

	h.Clear(ctx)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	present, _ := h.Present()
	assert.Equal(t, uint64(1), present.Version)
}

func TestPersistAndResume(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	tr := timeline.NewTrack("A")
	_, err := timeline.Add(tr, timeline.NewText("hello"), timeline.AddOptions{})
	require.NoError(t, err)

	h := newHistory(t, 0, WithStore(store, "ctx"))
	h.Commit(ctx, document.Document{Tracks: []*timeline.Track{tr}, Version: 1}, "add")
	h.Commit(ctx, doc(2), "clear")
	_, err = h.Undo(ctx)
	require.NoError(t, err)

	resumed := New(0, WithStore(store, "ctx"))
	present, ok, err := resumed.Init(ctx, doc(99), true)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, uint64(1), present.Version)
	require.Len(t, present.Tracks, 1)
	assert.Equal(t, tr.ID(), present.Tracks[0].ID())
	assert.Equal(t, tr.Elements(), present.Tracks[0].Elements())
	assert.Equal(t, 1, resumed.UndoCount())
	assert.Equal(t, 1, resumed.RedoCount())

	next, err := resumed.Redo(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.Version)
}

func TestPersistKeepsParentSize(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	v := timeline.NewVideo("clip.mp4")
	v.SetParentSize(timeline.Size{Width: 1920, Height: 1080})
	img := timeline.NewImage("still.png")
	img.SetParentSize(timeline.Size{Width: 720, Height: 1280})
	tr := timeline.NewTrack("A")
	addedVideo, err := timeline.Add(tr, v, timeline.AddOptions{})
	require.NoError(t, err)
	addedImage, err := timeline.Add(tr, img, timeline.AddOptions{})
	require.NoError(t, err)
	_, err = timeline.Add(tr, timeline.NewText("plain"), timeline.AddOptions{})
	require.NoError(t, err)

	h := newHistory(t, 0, WithStore(store, "ctx"))
	h.Commit(ctx, document.Document{Tracks: []*timeline.Track{tr}, Version: 1}, "add")

	resumed := New(0, WithStore(store, "ctx"))
	present, ok, err := resumed.Init(ctx, doc(99), true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, present.Tracks, 1)
	assert.Equal(t, tr.ID(), present.Tracks[0].ID())
	assert.Equal(t, tr.Elements(), present.Tracks[0].Elements())

	gotVideo, ok := present.Tracks[0].ElementByID(addedVideo.ID())
	require.True(t, ok)
	assert.Equal(t, timeline.Size{Width: 1920, Height: 1080}, gotVideo.(*timeline.Video).ParentSize())
	gotImage, ok := present.Tracks[0].ElementByID(addedImage.ID())
	require.True(t, ok)
	assert.Equal(t, timeline.Size{Width: 720, Height: 1280}, gotImage.(*timeline.Image).ParentSize())
}

func TestInitWithoutResumeReplacesSnapshot(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	h := newHistory(t, 0, WithStore(store, "ctx"))
	h.Commit(ctx, doc(5), "")

	fresh := New(0, WithStore(store, "ctx"))
	present, resumed, err := fresh.Init(ctx, doc(7), false)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, uint64(7), present.Version)

	again := New(0, WithStore(store, "ctx"))
	present, resumed, err = again.Init(ctx, doc(0), true)
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, uint64(7), present.Version)
	assert.False(t, again.CanUndo())
}

func TestCorruptSnapshotFallsBackToInitial(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.Save(ctx, "ctx", []byte("{not json")))

	h := New(0, WithStore(store, "ctx"))
	present, resumed, err := h.Init(ctx, doc(3), true)
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, uint64(3), present.Version)

	data, err := store.Load(ctx, "ctx")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format":1`)
}

type failingStore struct {
	memory.Store
	loadErr error
	saves   int
}

func (f *failingStore) Load(context.Context, string) ([]byte, error) { return nil, f.loadErr }

func (f *failingStore) Save(context.Context, string, []byte) error {
	f.saves++
	return errors.New("disk full")
}

func TestPersistenceFailureDoesNotBlockEdits(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{loadErr: snapshot.ErrNotFound}

	h := newHistory(t, 0, WithStore(store, "ctx"))
	h.Commit(ctx, doc(1), "")
	_, err := h.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, store.saves)
}

func TestInitReportsLoadErrors(t *testing.T) {
	store := &failingStore{loadErr: errors.New("connection refused")}
	h := New(0, WithStore(store, "ctx"))
	_, _, err := h.Init(context.Background(), doc(0), true)
	assert.ErrorContains(t, err, "connection refused")
}

func TestHistoryLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("undo N times walks back to the initial state and redo replays", prop.ForAll(
		func(n int) bool {
			ctx := context.Background()
			h := New(n)
			if _, _, err := h.Init(ctx, doc(0), false); err != nil {
				return false
			}
			for v := 1; v <= n; v++ {
				h.Commit(ctx, doc(uint64(v)), "")
			}
			for want := n - 1; want >= 0; want-- {
				got, err := h.Undo(ctx)
				if err != nil || got.Version != uint64(want) {
					return false
				}
			}
			if _, err := h.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
				return false
			}
			for want := 1; want <= n; want++ {
				got, err := h.Redo(ctx)
				if err != nil || got.Version != uint64(want) {
					return false
				}
			}
			return !h.CanRedo()
		},
		gen.IntRange(1, 40),
	))

	properties.Property("past never exceeds the configured depth", prop.ForAll(
		func(depth, commits int) bool {
			ctx := context.Background()
			h := New(depth)
			for v := 1; v <= commits; v++ {
				h.Commit(ctx, doc(uint64(v)), "")
				if h.UndoCount() > depth {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 25),
		gen.IntRange(0, 60),
	))

	properties.Property("a commit after any number of undos clears redo", prop.ForAll(
		func(n, undos int) bool {
			ctx := context.Background()
			h := New(0)
			for v := 1; v <= n; v++ {
				h.Commit(ctx, doc(uint64(v)), "")
			}
			for i := 0; i < undos; i++ {
				_, _ = h.Undo(ctx)
			}
			h.Commit(ctx, doc(1000), "")
			return !h.CanRedo()
		},
		gen.IntRange(1, 15),
		gen.IntRange(0, 20),
	))

	properties.TestingRun(t)
}
