package history

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/snapshot"
)

// DefaultMaxEntries is the default depth of the past stack.
const DefaultMaxEntries = 20

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrGroupChanged is returned by Undo and Redo while the open group
	// holds uncommitted changes.
	ErrGroupChanged = errors.New("cannot undo or redo inside a group with changes")
)

// entry wraps a document with metadata.
type entry struct {
	doc       document.Document
	label     string
	timestamp time.Time
}

// stacks is a copy of the three stacks taken when a group opens.
type stacks struct {
	past    []*entry
	present *entry
	future  []*entry
}

// EntryInfo describes a history entry without exposing its document.
type EntryInfo struct {
	Label     string
	Version   uint64
	Timestamp time.Time
}

// History manages undo/redo state for one context.
type History struct {
	mu sync.Mutex

	past    []*entry
	present *entry
	future  []*entry

	// Grouping state
	grouping   bool
	groupName  string
	groupDirty bool
	groupMoved bool
	groupBase  *stacks

	// Configuration
	maxEntries int
	store      snapshot.Store
	key        string
	logger     *slog.Logger
}

// Option configures a History.
type Option func(*History)

// WithStore enables durable snapshots under key.
func WithStore(store snapshot.Store, key string) Option {
	return func(h *History) {
		h.store = store
		h.key = key
	}
}

// WithLogger sets the logger used for persistence diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(h *History) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// New creates a history manager. A non-positive maxEntries selects
// DefaultMaxEntries.
func New(maxEntries int, opts ...Option) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	h := &History{maxEntries: maxEntries, logger: slog.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Init installs the starting state. When resume is true and a snapshot is
// stored under the configured key, the stored triple is restored and its
// present is returned with resumed set; the initial document is ignored.
// Otherwise initial becomes present with empty past and future, replacing
// any stored snapshot.
func (h *History) Init(ctx context.Context, initial document.Document, resume bool) (document.Document, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store != nil && resume {
		st, err := h.loadLocked(ctx)
		switch {
		case err == nil:
			h.past, h.present, h.future = st.past, st.present, st.future
			h.trimLocked()
			h.logger.Info("history resumed",
				"key", h.key,
				"version", h.present.doc.Version,
				"undo", len(h.past),
				"redo", len(h.future))
			return h.present.doc, true, nil
		case errors.Is(err, snapshot.ErrNotFound):
		case errors.Is(err, errCorrupt):
			h.logger.Warn("discarding unreadable history snapshot", "key", h.key, "error", err)
		default:
			return document.Document{}, false, err
		}
	}

	h.past = nil
	h.future = nil
	h.present = &entry{doc: initial, label: "init", timestamp: time.Now()}
	h.resetGroupLocked()
	h.persistLocked(ctx)
	return initial, false, nil
}

// Commit records doc as the new present.
func (h *History) Commit(ctx context.Context, doc document.Document, label string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := &entry{doc: doc, label: label, timestamp: time.Now()}
	if h.grouping {
		if h.groupDirty {
			h.present = next
			h.present.label = h.groupName
			return
		}
		h.groupDirty = true
		next.label = h.groupName
	}

	if h.present != nil {
		h.past = append(h.past, h.present)
	}
	h.present = next
	h.future = nil
	h.trimLocked()
	if !h.grouping {
		h.persistLocked(ctx)
	}
}

// Undo makes the most recent past document present and returns it.
// Inside a group Undo is allowed only before the group's first commit; the
// group stays open.
func (h *History) Undo(ctx context.Context) (document.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping && h.groupDirty {
		return document.Document{}, ErrGroupChanged
	}
	if len(h.past) == 0 {
		return document.Document{}, ErrNothingToUndo
	}

	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	if h.present != nil {
		h.future = append(h.future, h.present)
	}
	h.present = prev
	if h.grouping {
		h.groupMoved = true
	}
	h.persistLocked(ctx)
	return prev.doc, nil
}

// Redo makes the most recently undone document present and returns it.
// It follows the same group rule as Undo.
func (h *History) Redo(ctx context.Context) (document.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping && h.groupDirty {
		return document.Document{}, ErrGroupChanged
	}
	if len(h.future) == 0 {
		return document.Document{}, ErrNothingToRedo
	}

	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	if h.present != nil {
		h.past = append(h.past, h.present)
	}
	h.present = next
	if h.grouping {
		h.groupMoved = true
	}
	h.trimLocked()
	h.persistLocked(ctx)
	return next.doc, nil
}

// Present returns the current document.
func (h *History) Present() (document.Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.present == nil {
		return document.Document{}, false
	}
	return h.present.doc, true
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future)
}

// BeginGroup starts a group. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupDirty = false
	h.groupMoved = false
	h.groupBase = &stacks{
		past:    slices.Clone(h.past),
		present: h.present,
		future:  slices.Clone(h.future),
	}
}

// EndGroup closes the current group and persists the result.
func (h *History) EndGroup(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	dirty := h.groupDirty
	h.resetGroupLocked()
	if dirty {
		h.persistLocked(ctx)
	}
}

// Rollback closes the open group and reinstates the stacks as they were
// when it began. Nothing the group did is left on the past or future
// stack. It returns the restored present and whether anything changed.
func (h *History) Rollback(ctx context.Context) (document.Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping || h.groupBase == nil {
		return document.Document{}, false
	}
	changed := h.groupDirty || h.groupMoved
	base := h.groupBase
	h.resetGroupLocked()
	if !changed {
		return document.Document{}, false
	}
	h.past, h.present, h.future = base.past, base.present, base.future
	h.persistLocked(ctx)
	if h.present == nil {
		return document.Document{}, true
	}
	return h.present.doc, true
}

// IsGrouping returns true if a group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear drops past and future, keeping present.
func (h *History) Clear(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.past = nil
	h.future = nil
	h.resetGroupLocked()
	h.persistLocked(ctx)
}

// UndoInfo describes the past stack, oldest first.
func (h *History) UndoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return describe(h.past)
}

// RedoInfo describes the future stack, oldest undo first.
func (h *History) RedoInfo() []EntryInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return describe(h.future)
}

// PeekUndo describes the entry Undo would restore.
func (h *History) PeekUndo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.past) == 0 {
		return EntryInfo{}, false
	}
	return info(h.past[len(h.past)-1]), true
}

// PeekRedo describes the entry Redo would restore.
func (h *History) PeekRedo() (EntryInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.future) == 0 {
		return EntryInfo{}, false
	}
	return info(h.future[len(h.future)-1]), true
}

// SetMaxEntries changes the depth of the past stack, dropping the oldest
// entries if it is now too deep.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = DefaultMaxEntries
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max
	h.trimLocked()
}

// MaxEntries returns the depth of the past stack.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}

func (h *History) resetGroupLocked() {
	h.grouping, h.groupDirty, h.groupMoved = false, false, false
	h.groupBase = nil
}

func (h *History) trimLocked() {
	if len(h.past) > h.maxEntries {
		excess := len(h.past) - h.maxEntries
		h.past = h.past[excess:]
	}
}

func describe(entries []*entry) []EntryInfo {
	out := make([]EntryInfo, len(entries))
	for i, e := range entries {
		out[i] = info(e)
	}
	return out
}

func info(e *entry) EntryInfo {
	return EntryInfo{Label: e.label, Version: e.doc.Version, Timestamp: e.timestamp}
}
