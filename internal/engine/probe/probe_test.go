package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest(t *testing.T) {
	m := NewManifest(map[string]Metadata{"a.mp4": {Duration: 12, Width: 1920, Height: 1080}})

	md, err := m.Probe(context.Background(), "a.mp4")
	require.NoError(t, err)
	assert.Equal(t, 12.0, md.Duration)

	_, err = m.Probe(context.Background(), "b.mp4")
	assert.ErrorIs(t, err, ErrUnknownSource)

	m.Set("b.mp4", Metadata{Duration: 3})
	md, err = m.Probe(context.Background(), "b.mp4")
	require.NoError(t, err)
	assert.Equal(t, 3.0, md.Duration)
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"intro.mp4":{"duration":7.5,"width":640,"height":360}}`), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	md, err := m.Probe(context.Background(), "intro.mp4")
	require.NoError(t, err)
	assert.Equal(t, Metadata{Duration: 7.5, Width: 640, Height: 360}, md)

	require.NoError(t, os.WriteFile(path, []byte(`[`), 0o600))
	_, err = LoadManifest(path)
	assert.Error(t, err)
}

func TestCacheMemoizes(t *testing.T) {
	var calls atomic.Int32
	c, err := NewCache(Func(func(ctx context.Context, src string) (Metadata, error) {
		calls.Add(1)
		if src == "bad" {
			return Metadata{}, errors.New("unreadable")
		}
		return Metadata{Duration: 4}, nil
	}), 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		md, err := c.Probe(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, 4.0, md.Duration)
	}
	assert.Equal(t, int32(1), calls.Load())

	_, err = c.Probe(context.Background(), "bad")
	assert.Error(t, err)
	_, err = c.Probe(context.Background(), "bad")
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCacheCollapsesConcurrentProbes(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	c, err := NewCache(Func(func(ctx context.Context, src string) (Metadata, error) {
		calls.Add(1)
		<-release
		return Metadata{Duration: 9}, nil
	}), 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			md, err := c.Probe(context.Background(), "shared")
			assert.NoError(t, err)
			assert.Equal(t, 9.0, md.Duration)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}
