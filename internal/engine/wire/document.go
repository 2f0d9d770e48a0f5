package wire

import (
	"encoding/json"
	"fmt"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

// Track is the wire form of a timeline track.
type Track struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Elements []Element `json:"elements"`
}

// Document is the wire form of a document.
type Document struct {
	Tracks  []Track `json:"tracks"`
	Version uint64  `json:"version"`
}

// EncodeTrack converts t to its wire form.
func EncodeTrack(t *timeline.Track) (Track, error) {
	out := Track{ID: t.ID(), Name: t.Name(), Type: t.Type(), Elements: []Element{}}
	for _, el := range t.Elements() {
		w, err := EncodeElement(el)
		if err != nil {
			return Track{}, fmt.Errorf("track %s: %w", t.ID(), err)
		}
		out.Elements = append(out.Elements, w)
	}
	return out, nil
}

// DecodeTrack rebuilds a track from its wire form. A missing track id is
// minted; every element is validated on insertion.
func DecodeTrack(w Track) (*timeline.Track, error) {
	id := w.ID
	if id == "" {
		id = timeline.NewTrackID()
	}
	elements := make([]timeline.Element, 0, len(w.Elements))
	for i, we := range w.Elements {
		el, err := DecodeElement(we)
		if err != nil {
			return nil, fmt.Errorf("track %s element %d: %w", id, i, err)
		}
		elements = append(elements, el)
	}
	t, err := timeline.RestoreTrack(id, w.Name, w.Type, elements)
	if err != nil {
		return nil, fmt.Errorf("track %s: %w", id, err)
	}
	return t, nil
}

// EncodeTracks converts a track list to its wire form.
func EncodeTracks(tracks []*timeline.Track) ([]Track, error) {
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		w, err := EncodeTrack(t)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// DecodeTracks rebuilds a track list. Track ids must be unique.
func DecodeTracks(ws []Track) ([]*timeline.Track, error) {
	out := make([]*timeline.Track, 0, len(ws))
	seen := make(map[string]bool, len(ws))
	for _, w := range ws {
		t, err := DecodeTrack(w)
		if err != nil {
			return nil, err
		}
		if seen[t.ID()] {
			return nil, &timeline.Error{Code: timeline.CodeDuplicateID, Op: "decode", ID: t.ID(), Err: timeline.ErrDuplicateID}
		}
		seen[t.ID()] = true
		out = append(out, t)
	}
	return out, nil
}

// EncodeDocument converts doc to its wire form.
func EncodeDocument(doc document.Document) (Document, error) {
	tracks, err := EncodeTracks(doc.Tracks)
	if err != nil {
		return Document{}, err
	}
	return Document{Tracks: tracks, Version: doc.Version}, nil
}

// DecodeDocument rebuilds a document from its wire form.
func DecodeDocument(w Document) (document.Document, error) {
	tracks, err := DecodeTracks(w.Tracks)
	if err != nil {
		return document.Document{}, err
	}
	return document.Document{Tracks: tracks, Version: w.Version}, nil
}

// Marshal encodes doc as wire JSON.
func Marshal(doc document.Document) ([]byte, error) {
	w, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// MarshalIndent encodes doc as indented wire JSON.
func MarshalIndent(doc document.Document) ([]byte, error) {
	w, err := EncodeDocument(doc)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(w, "", "  ")
}

// Unmarshal decodes wire JSON into a document.
func Unmarshal(data []byte) (document.Document, error) {
	var w Document
	if err := json.Unmarshal(data, &w); err != nil {
		return document.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return DecodeDocument(w)
}

// UnmarshalStrict checks data against the document schema before decoding.
func UnmarshalStrict(data []byte) (document.Document, error) {
	if err := ValidateSchema(data); err != nil {
		return document.Document{}, err
	}
	return Unmarshal(data)
}
