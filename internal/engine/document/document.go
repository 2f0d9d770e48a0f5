// Package document holds the per-context timeline documents an Editor
// mutates.
//
// A Document is a list of tracks plus a version counter. The Store maps an
// opaque context id to the current Document of that context. Documents held
// by the Store are treated as immutable: callers replace the track list as a
// whole through Set or Restore rather than editing tracks in place, which lets
// history snapshots share track values with the store.
package document

import (
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

// Document is the full editable state of one context.
type Document struct {
	Tracks  []*timeline.Track
	Version uint64
}

// Track returns the track with the given id.
func (d Document) Track(id string) (*timeline.Track, bool) {
	for _, t := range d.Tracks {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

// TrackIndex returns the position of the track with the given id, or -1.
func (d Document) TrackIndex(id string) int {
	for i, t := range d.Tracks {
		if t.ID() == id {
			return i
		}
	}
	return -1
}

// FindElement returns the track holding the element with the given id and a
// detached copy of the element.
func (d Document) FindElement(id string) (*timeline.Track, timeline.Element, bool) {
	for _, t := range d.Tracks {
		if el, ok := t.ElementByID(id); ok {
			return t, el, true
		}
	}
	return nil, nil, false
}

// ElementCount returns the number of elements across all tracks.
func (d Document) ElementCount() int {
	n := 0
	for _, t := range d.Tracks {
		n += t.Len()
	}
	return n
}

// Duration returns the largest element end time across all tracks.
func (d Document) Duration() float64 {
	var out float64
	for _, t := range d.Tracks {
		if td := t.Duration(); td > out {
			out = td
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{Version: d.Version}
	if d.Tracks != nil {
		out.Tracks = make([]*timeline.Track, len(d.Tracks))
		for i, t := range d.Tracks {
			out.Tracks[i] = t.Clone()
		}
	}
	return out
}

// WithTrack returns a copy of d whose track list has t in place of the track
// with the same id. The other tracks are shared, not copied.
func (d Document) WithTrack(t *timeline.Track) Document {
	tracks := make([]*timeline.Track, len(d.Tracks))
	copy(tracks, d.Tracks)
	if i := d.TrackIndex(t.ID()); i >= 0 {
		tracks[i] = t
	}
	return Document{Tracks: tracks, Version: d.Version}
}
