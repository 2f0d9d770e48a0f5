package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
)

// Registry tracks the live editors of a process. Editors are created by
// Open and destroyed by Close; Lookup and Contexts are read-only.
type Registry struct {
	mu      sync.RWMutex
	store   *document.Store
	editors map[string]*Editor
	opts    []Option
}

// NewRegistry creates a registry whose editors share store. opts apply to
// every editor before the per-call options of Open.
func NewRegistry(store *document.Store, opts ...Option) *Registry {
	if store == nil {
		store = document.NewStore()
	}
	return &Registry{store: store, editors: make(map[string]*Editor), opts: opts}
}

// Store returns the shared document store.
func (r *Registry) Store() *document.Store { return r.store }

// Open creates the editor for contextID.
func (r *Registry) Open(ctx context.Context, contextID string, opts ...Option) (*Editor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.editors[contextID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrContextOpen, contextID)
	}
	all := make([]Option, 0, len(r.opts)+len(opts)+1)
	all = append(all, r.opts...)
	all = append(all, opts...)
	all = append(all, WithDocumentStore(r.store))

	e, err := New(ctx, contextID, all...)
	if err != nil {
		return nil, err
	}
	r.editors[contextID] = e
	return e, nil
}

// Lookup returns the live editor for contextID.
func (r *Registry) Lookup(contextID string) (*Editor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.editors[contextID]
	return e, ok
}

// Contexts returns the ids of the live editors in sorted order.
func (r *Registry) Contexts() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.editors))
	for id := range r.editors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of live editors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.editors)
}

// Close closes and forgets the editor for contextID.
func (r *Registry) Close(ctx context.Context, contextID string) error {
	r.mu.Lock()
	e, ok := r.editors[contextID]
	delete(r.editors, contextID)
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrContextNotFound, contextID)
	}
	return e.Close(ctx)
}

// CloseAll closes every live editor.
func (r *Registry) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range r.Contexts() {
		if err := r.Close(ctx, id); err != nil && !errors.Is(err, ErrContextNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
