// Package probe is the boundary to media metadata discovery. The editor
// never inspects media itself; a host supplies a Prober that reports the
// duration and dimensions of a source, and the editor uses the duration as
// the default length of newly added video and audio elements.
package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrUnknownSource is returned when a prober has no metadata for a source.
var ErrUnknownSource = errors.New("unknown media source")

// Metadata describes a media source.
type Metadata struct {
	Duration float64 `json:"duration" yaml:"duration"`
	Width    int     `json:"width,omitempty" yaml:"width,omitempty"`
	Height   int     `json:"height,omitempty" yaml:"height,omitempty"`
}

// Prober reports metadata for a media source.
type Prober interface {
	Probe(ctx context.Context, src string) (Metadata, error)
}

// Func adapts a function to Prober.
type Func func(ctx context.Context, src string) (Metadata, error)

// Probe calls f.
func (f Func) Probe(ctx context.Context, src string) (Metadata, error) { return f(ctx, src) }

// Manifest is a static prober backed by a source -> metadata table. The CLI
// loads one from a JSON file so scripts can add media with known lengths.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]Metadata
}

// NewManifest creates a manifest from entries.
func NewManifest(entries map[string]Metadata) *Manifest {
	m := &Manifest{entries: make(map[string]Metadata, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// LoadManifest reads a JSON object of source -> metadata.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read probe manifest: %w", err)
	}
	var entries map[string]Metadata
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse probe manifest %s: %w", path, err)
	}
	return NewManifest(entries), nil
}

// Set records metadata for src.
func (m *Manifest) Set(src string, md Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[src] = md
}

// Probe returns the recorded metadata for src.
func (m *Manifest) Probe(ctx context.Context, src string) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.entries[src]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrUnknownSource, src)
	}
	return md, nil
}
