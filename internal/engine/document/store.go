package document

import (
	"sort"
	"sync"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

// Store maps context ids to documents.
//
// The store only guards its map; it does not serialize edits of one
// context. One logical actor (an Editor) owns each context.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Get returns the document of contextID, creating an empty version 0
// document on first access.
func (s *Store) Get(contextID string) Document {
	s.mu.RLock()
	doc, ok := s.docs[contextID]
	s.mu.RUnlock()
	if ok {
		return doc
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[contextID]; ok {
		return doc
	}
	doc = Document{Tracks: []*timeline.Track{}}
	s.docs[contextID] = doc
	return doc
}

// Set replaces the track list of contextID and bumps its version by one.
func (s *Store) Set(contextID string, tracks []*timeline.Track) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Document{Tracks: tracks, Version: s.docs[contextID].Version + 1}
	s.docs[contextID] = doc
	return doc
}

// Restore replaces the document of contextID using version verbatim.
// Undo and redo use it to reinstate a historical snapshot.
func (s *Store) Restore(contextID string, tracks []*timeline.Track, version uint64) Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := Document{Tracks: tracks, Version: version}
	s.docs[contextID] = doc
	return doc
}

// Has reports whether contextID has a document.
func (s *Store) Has(contextID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.docs[contextID]
	return ok
}

// Clear drops the document of contextID.
func (s *Store) Clear(contextID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, contextID)
}

// Contexts returns the known context ids in sorted order.
func (s *Store) Contexts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.docs))
	for id := range s.docs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
