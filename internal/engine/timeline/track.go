package timeline

// DefaultTrackType is the informational type tag of new tracks.
const DefaultTrackType = "element"

// Track is an ordered container of elements.
//
// Insertion order is significant for default placement but is not a timing
// guarantee: elements may be stored out of temporal order. Element ids are
// unique within a track.
type Track struct {
	id       string
	name     string
	kind     string
	elements []Element
}

// NewTrack creates an empty track with a fresh id.
func NewTrack(name string) *Track {
	return &Track{id: NewTrackID(), name: name, kind: DefaultTrackType}
}

// RestoreTrack rebuilds a track from stored data. Every element goes through
// Add with validation, so a restored track holds only valid elements.
func RestoreTrack(id, name, kind string, elements []Element) (*Track, error) {
	if err := ValidateTrackID(id); err != nil {
		return nil, err
	}
	if kind == "" {
		kind = DefaultTrackType
	}
	t := &Track{id: id, name: name, kind: kind}
	for _, el := range elements {
		if _, err := Add(t, el, AddOptions{}); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ID returns the track id.
func (t *Track) ID() string { return t.id }

// Name returns the track name.
func (t *Track) Name() string { return t.name }

// Type returns the informational type tag.
func (t *Track) Type() string { return t.kind }

// Len returns the number of elements.
func (t *Track) Len() int { return len(t.elements) }

// Elements returns detached copies of the elements in insertion order.
func (t *Track) Elements() []Element {
	out := make([]Element, len(t.elements))
	for i, el := range t.elements {
		out[i] = Clone(el, false)
	}
	return out
}

// ElementByID returns a detached copy of the element with the given id.
func (t *Track) ElementByID(id string) (Element, bool) {
	i := t.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return Clone(t.elements[i], false), true
}

// Contains reports whether the track holds an element with the given id.
func (t *Track) Contains(id string) bool {
	return t.indexOf(id) >= 0
}

// LastEnd returns the end time of the last element in insertion order,
// or 0 for an empty track.
func (t *Track) LastEnd() float64 {
	if len(t.elements) == 0 {
		return 0
	}
	return t.elements[len(t.elements)-1].End()
}

// Duration returns the largest end time on the track.
func (t *Track) Duration() float64 {
	var d float64
	for _, el := range t.elements {
		if el.End() > d {
			d = el.End()
		}
	}
	return d
}

// Clone returns a deep copy with the same track and element ids.
func (t *Track) Clone() *Track {
	cp := &Track{id: t.id, name: t.name, kind: t.kind, elements: make([]Element, len(t.elements))}
	for i, el := range t.elements {
		cp.elements[i] = Clone(el, false)
	}
	return cp
}

// WithName returns a deep copy carrying a new name.
func (t *Track) WithName(name string) *Track {
	cp := t.Clone()
	cp.name = name
	return cp
}

func (t *Track) indexOf(id string) int {
	for i, el := range t.elements {
		if el.ID() == id {
			return i
		}
	}
	return -1
}

// privileged returns the raw mutation accessor. Only operation visitors in
// this package call it, after they have validated their input.
func (t *Track) privileged() *access {
	return &access{t: t}
}

// access performs unvalidated mutation of a track's element list.
type access struct {
	t *Track
}

// addRaw inserts el at position at, or appends when at is out of range.
func (a *access) addRaw(el Element, at int) {
	el.base().trackID = a.t.id
	if at < 0 || at >= len(a.t.elements) {
		a.t.elements = append(a.t.elements, el)
		return
	}
	a.t.elements = append(a.t.elements, nil)
	copy(a.t.elements[at+1:], a.t.elements[at:])
	a.t.elements[at] = el
}

// removeRaw deletes the element with the given id and reports whether it existed.
func (a *access) removeRaw(id string) bool {
	i := a.t.indexOf(id)
	if i < 0 {
		return false
	}
	a.t.elements = append(a.t.elements[:i], a.t.elements[i+1:]...)
	return true
}

// updateRaw replaces the element with el's id and reports whether it existed.
func (a *access) updateRaw(el Element) bool {
	i := a.t.indexOf(el.ID())
	if i < 0 {
		return false
	}
	el.base().trackID = a.t.id
	a.t.elements[i] = el
	return true
}

func (a *access) indexOf(id string) int {
	return a.t.indexOf(id)
}
