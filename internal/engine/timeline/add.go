package timeline

// DefaultDuration is the length, in seconds, of an element added without an
// end time and without a known media duration.
const DefaultDuration = 1.0

// AddOptions configures Add.
type AddOptions struct {
	// SkipValidation inserts the element without structural checks.
	SkipValidation bool
	// DefaultDuration overrides DefaultDuration when positive.
	DefaultDuration float64
	// MediaDuration is the probed source length for video and audio. When
	// positive it replaces the default duration.
	MediaDuration float64
}

// Add inserts a copy of el at the end of t and returns a detached copy of
// the stored element.
//
// A missing id is minted. A missing start defaults to the end of the track's
// last element; a missing end defaults to start plus the media duration
// (video/audio) or the default duration. On validation failure the track is
// unchanged and a *ValidationError is returned.
func Add(t *Track, el Element, opts AddOptions) (Element, error) {
	if el == nil {
		return nil, &Error{Code: CodeInvalidType, Op: "add", Err: ErrInvalidType}
	}
	if id := el.ID(); id != "" {
		if err := ValidateElementID(id); err != nil {
			return nil, err
		}
		if t.Contains(id) {
			return nil, &Error{Code: CodeDuplicateID, Op: "add", ID: id, Err: ErrDuplicateID}
		}
	}

	v := &addVisitor{track: t, opts: opts}
	if err := Clone(el, false).Accept(v); err != nil {
		return nil, err
	}
	return Clone(v.added, false), nil
}

type addVisitor struct {
	track *Track
	opts  AddOptions
	added Element
}

func (v *addVisitor) defaultDuration() float64 {
	if v.opts.DefaultDuration > 0 {
		return v.opts.DefaultDuration
	}
	return DefaultDuration
}

// place fills in id, track id and default timing.
func (v *addVisitor) place(el Element, length float64) {
	b := el.base()
	if b.id == "" {
		b.id = NewElementID()
	}
	b.trackID = v.track.id
	if !b.hasStart {
		b.SetStart(v.track.LastEnd())
	}
	if !b.hasEnd {
		b.SetEnd(b.start + length)
	}
}

func (v *addVisitor) commit(el Element) error {
	if !v.opts.SkipValidation {
		if err := Validate(el); err != nil {
			return err
		}
	}
	v.track.privileged().addRaw(el, -1)
	v.added = el
	return nil
}

func (v *addVisitor) mediaLength(p *MediaProps) float64 {
	if v.opts.MediaDuration > 0 {
		p.MediaDuration = v.opts.MediaDuration
	}
	if p.MediaDuration > 0 {
		return p.MediaDuration
	}
	return v.defaultDuration()
}

func (v *addVisitor) VisitVideo(e *Video) error {
	v.place(e, v.mediaLength(&e.props.MediaProps))
	return v.commit(e)
}

func (v *addVisitor) VisitAudio(e *Audio) error {
	v.place(e, v.mediaLength(&e.props.MediaProps))
	return v.commit(e)
}

func (v *addVisitor) VisitImage(e *Image) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}

func (v *addVisitor) VisitText(e *Text) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}

func (v *addVisitor) VisitCaption(e *Caption) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}

func (v *addVisitor) VisitCircle(e *Circle) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}

func (v *addVisitor) VisitRect(e *Rect) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}

func (v *addVisitor) VisitIcon(e *Icon) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}

func (v *addVisitor) VisitPlaceholder(e *Placeholder) error {
	v.place(e, v.defaultDuration())
	return v.commit(e)
}
