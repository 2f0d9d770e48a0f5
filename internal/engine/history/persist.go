package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/wire"
)

// snapshotFormat is bumped when the stored layout changes.
const snapshotFormat = 1

var errCorrupt = errors.New("corrupt history snapshot")

type storedEntry struct {
	Label     string        `json:"label,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Document  wire.Document `json:"document"`

	// ParentSizes holds the container sizes of video and image elements by
	// element id. The wire form has no place for them.
	ParentSizes map[string]timeline.Size `json:"parentSizes,omitempty"`
}

// storedHistory is the persisted triple. Future is ordered like the
// in-memory stack: the last element is the next redo.
type storedHistory struct {
	Format  int           `json:"format"`
	Past    []storedEntry `json:"past"`
	Present *storedEntry  `json:"present"`
	Future  []storedEntry `json:"future"`
}

type state struct {
	past    []*entry
	present *entry
	future  []*entry
}

func (h *History) persistLocked(ctx context.Context) {
	if h.store == nil {
		return
	}
	data, err := h.encodeLocked()
	if err == nil {
		err = h.store.Save(ctx, h.key, data)
	}
	if err != nil {
		h.logger.Warn("history snapshot not saved", "key", h.key, "error", err)
	}
}

func (h *History) encodeLocked() ([]byte, error) {
	st := storedHistory{Format: snapshotFormat}
	var err error
	if st.Past, err = encodeEntries(h.past); err != nil {
		return nil, err
	}
	if st.Future, err = encodeEntries(h.future); err != nil {
		return nil, err
	}
	if h.present != nil {
		p, err := encodeEntry(h.present)
		if err != nil {
			return nil, err
		}
		st.Present = &p
	}
	return json.Marshal(st)
}

func (h *History) loadLocked(ctx context.Context) (state, error) {
	data, err := h.store.Load(ctx, h.key)
	if err != nil {
		return state{}, err
	}
	var st storedHistory
	if err := json.Unmarshal(data, &st); err != nil {
		return state{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if st.Format != snapshotFormat {
		return state{}, fmt.Errorf("%w: unsupported format %d", errCorrupt, st.Format)
	}
	if st.Present == nil {
		return state{}, fmt.Errorf("%w: no present document", errCorrupt)
	}

	var out state
	if out.past, err = decodeEntries(st.Past); err != nil {
		return state{}, err
	}
	if out.future, err = decodeEntries(st.Future); err != nil {
		return state{}, err
	}
	if out.present, err = decodeEntry(*st.Present); err != nil {
		return state{}, err
	}
	return out, nil
}

func encodeEntry(e *entry) (storedEntry, error) {
	doc, err := wire.EncodeDocument(e.doc)
	if err != nil {
		return storedEntry{}, err
	}
	return storedEntry{
		Label:       e.label,
		Timestamp:   e.timestamp,
		Document:    doc,
		ParentSizes: parentSizes(e.doc),
	}, nil
}

func encodeEntries(entries []*entry) ([]storedEntry, error) {
	out := make([]storedEntry, 0, len(entries))
	for _, e := range entries {
		se, err := encodeEntry(e)
		if err != nil {
			return nil, err
		}
		out = append(out, se)
	}
	return out, nil
}

func decodeEntry(se storedEntry) (*entry, error) {
	doc, err := wire.DecodeDocument(se.Document)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if doc, err = withParentSizes(doc, se.ParentSizes); err != nil {
		return nil, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	return &entry{doc: doc, label: se.Label, timestamp: se.Timestamp}, nil
}

func decodeEntries(ses []storedEntry) ([]*entry, error) {
	if len(ses) == 0 {
		return nil, nil
	}
	out := make([]*entry, 0, len(ses))
	for _, se := range ses {
		e, err := decodeEntry(se)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// sized is implemented by elements that carry a container size outside
// their property bag.
type sized interface {
	ParentSize() timeline.Size
	SetParentSize(timeline.Size)
}

func parentSizes(doc document.Document) map[string]timeline.Size {
	var out map[string]timeline.Size
	for _, t := range doc.Tracks {
		for _, el := range t.Elements() {
			s, ok := el.(sized)
			if !ok || s.ParentSize() == (timeline.Size{}) {
				continue
			}
			if out == nil {
				out = make(map[string]timeline.Size)
			}
			out[el.ID()] = s.ParentSize()
		}
	}
	return out
}

// withParentSizes rebuilds the tracks of a decoded doc that hold sized
// elements listed in sizes.
func withParentSizes(doc document.Document, sizes map[string]timeline.Size) (document.Document, error) {
	if len(sizes) == 0 {
		return doc, nil
	}
	for i, t := range doc.Tracks {
		els := t.Elements()
		touched := false
		for _, el := range els {
			size, ok := sizes[el.ID()]
			if !ok {
				continue
			}
			if s, ok := el.(sized); ok {
				s.SetParentSize(size)
				touched = true
			}
		}
		if !touched {
			continue
		}
		nt, err := timeline.RestoreTrack(t.ID(), t.Name(), t.Type(), els)
		if err != nil {
			return doc, err
		}
		doc.Tracks[i] = nt
	}
	return doc, nil
}
