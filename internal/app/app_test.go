package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/config"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/probe"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot/memory"
)

func newApp(t *testing.T, cfg *config.Config, opts Options) *Application {
	t.Helper()
	if opts.LogOutput == nil && opts.Logger == nil {
		opts.LogOutput = &bytes.Buffer{}
	}
	a, err := New(context.Background(), cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func TestNew_Defaults(t *testing.T) {
	a := newApp(t, nil, Options{})

	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Bus())
	assert.True(t, a.Bus().IsRunning())
	assert.Nil(t, a.Snapshots())
	assert.Equal(t, 0, a.Editors().Len())
}

func TestOpen_AppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.History.Depth = 2
	cfg.Editor.DefaultDuration = 3 * time.Second
	a := newApp(t, cfg, Options{})
	ctx := context.Background()

	ed, err := a.Open(ctx, "ctx-1")
	require.NoError(t, err)

	tr, err := ed.AddTrack(ctx, "main")
	require.NoError(t, err)
	el, err := ed.AddElement(ctx, tr.ID(), timeline.NewText("hello"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, el.End()-el.Start())

	_, err = ed.AddTrack(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, 2, ed.UndoCount())

	_, err = a.Open(ctx, "ctx-1")
	require.Error(t, err)
}

func TestOpen_ResumesFromSnapshots(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	first := newApp(t, nil, Options{Snapshots: store})
	ed, err := first.Open(ctx, "proj")
	require.NoError(t, err)
	_, err = ed.AddTrack(ctx, "main")
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	// The store was supplied by the caller so Close leaves it usable.
	second := newApp(t, nil, Options{Snapshots: store})
	ed, err = second.Open(ctx, "proj")
	require.NoError(t, err)
	assert.True(t, ed.Resumed())
	require.Len(t, ed.Tracks(), 1)
	assert.Equal(t, "main", ed.Tracks()[0].Name())
}

func TestOpen_FileDriverRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Persistence.Driver = string(snapshot.DriverFile)
	cfg.Persistence.Path = dir
	cfg.Persistence.Key = "demo"
	ctx := context.Background()

	first := newApp(t, cfg, Options{})
	ed, err := first.Open(ctx, "proj")
	require.NoError(t, err)
	_, err = ed.AddTrack(ctx, "voice")
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second := newApp(t, cfg, Options{})
	ed, err = second.Open(ctx, "proj")
	require.NoError(t, err)
	require.True(t, ed.Resumed())
	assert.Equal(t, "voice", ed.Tracks()[0].Name())
}

func TestOpen_AfterClose(t *testing.T) {
	a := newApp(t, nil, Options{})
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	_, err := a.Open(context.Background(), "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestProbeManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.json")
	data, err := json.Marshal(map[string]probe.Metadata{"clip.mp4": {Duration: 7.5}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg := config.Default()
	cfg.Probe.Manifest = path
	a := newApp(t, cfg, Options{})
	ctx := context.Background()

	ed, err := a.Open(ctx, "media")
	require.NoError(t, err)
	tr, err := ed.AddTrack(ctx, "video")
	require.NoError(t, err)
	el, err := ed.AddElement(ctx, tr.ID(), timeline.NewVideo("clip.mp4"))
	require.NoError(t, err)
	assert.Equal(t, 7.5, el.End())
}

func TestProbeManifest_Missing(t *testing.T) {
	cfg := config.Default()
	cfg.Probe.Manifest = filepath.Join(t.TempDir(), "nope.json")

	_, err := New(context.Background(), cfg, Options{LogOutput: &bytes.Buffer{}})
	var ierr *InitError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "prober", ierr.Component)
}

func TestEventsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Logging.Level = "debug"
	a := newApp(t, cfg, Options{LogOutput: &buf})
	ctx := context.Background()

	ed, err := a.Open(ctx, "logged")
	require.NoError(t, err)
	_, err = ed.AddTrack(ctx, "main")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "timeline event")
	assert.Contains(t, out, "topic=timeline.track.added")
	assert.Contains(t, out, "context=logged")
}

func TestMetricsGathered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newApp(t, nil, Options{Registry: reg})
	ctx := context.Background()

	ed, err := a.Open(ctx, "m")
	require.NoError(t, err)
	_, err = ed.AddTrack(ctx, "main")
	require.NoError(t, err)

	families, err := a.Gatherer().Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "twick_editor_operations_total")
	assert.Contains(t, names, "twick_document_version")
}

func TestRunner(t *testing.T) {
	a := newApp(t, nil, Options{})
	ctx := context.Background()
	ed, err := a.Open(ctx, "scripted")
	require.NoError(t, err)

	err = a.Runner(ed).Run(ctx, "setup", `tl.add_track("from script")`)
	require.NoError(t, err)
	require.Len(t, ed.Tracks(), 1)
	assert.Equal(t, "from script", ed.Tracks()[0].Name())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.Logging{Level: "info", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	out := strings.TrimSpace(buf.String())
	require.NotContains(t, out, "hidden")
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	_, err = NewLogger(config.Logging{Level: "info", Format: "xml"}, &buf)
	require.Error(t, err)
}

func TestOpenSnapshots(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		p       config.Persistence
		wantNil bool
	}{
		{"none", config.Persistence{Driver: "none"}, true},
		{"empty", config.Persistence{}, true},
		{"memory", config.Persistence{Driver: "memory"}, false},
		{"file", config.Persistence{Driver: "file", Path: filepath.Join(dir, "files")}, false},
		{"sqlite", config.Persistence{Driver: "sqlite", Path: filepath.Join(dir, "twick.db")}, false},
		{"bolt", config.Persistence{Driver: "bolt", Path: filepath.Join(dir, "twick.bolt")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenSnapshots(ctx, tt.p)
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, store)
				return
			}
			require.NotNil(t, store)
			defer store.Close()

			require.NoError(t, store.Save(ctx, "k", []byte("v")))
			got, err := store.Load(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), got)
		})
	}

	_, err := OpenSnapshots(ctx, config.Persistence{Driver: "tape"})
	require.Error(t, err)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "ctx", SnapshotKey(config.Persistence{}, "ctx"))
	assert.Equal(t, "proj:ctx", SnapshotKey(config.Persistence{Key: "proj"}, "ctx"))
}
