package timeline

// UpdateOptions configures Update.
type UpdateOptions struct {
	SkipValidation bool
}

// Update validates el and then replaces the element with the same id in t.
// It returns false without error when the id is absent. On validation
// failure the track is unchanged.
func Update(t *Track, el Element, opts UpdateOptions) (bool, error) {
	if el == nil {
		return false, &Error{Code: CodeInvalidType, Op: "update", Err: ErrInvalidType}
	}
	v := &updateVisitor{track: t, opts: opts}
	if err := Clone(el, false).Accept(v); err != nil {
		return false, err
	}
	return v.updated, nil
}

type updateVisitor struct {
	track   *Track
	opts    UpdateOptions
	updated bool
}

func (v *updateVisitor) update(el Element) error {
	el.base().trackID = v.track.id
	if !v.opts.SkipValidation {
		if err := Validate(el); err != nil {
			return err
		}
	}
	v.updated = v.track.privileged().updateRaw(el)
	return nil
}

func (v *updateVisitor) VisitVideo(e *Video) error             { return v.update(e) }
func (v *updateVisitor) VisitAudio(e *Audio) error             { return v.update(e) }
func (v *updateVisitor) VisitImage(e *Image) error             { return v.update(e) }
func (v *updateVisitor) VisitText(e *Text) error               { return v.update(e) }
func (v *updateVisitor) VisitCaption(e *Caption) error         { return v.update(e) }
func (v *updateVisitor) VisitCircle(e *Circle) error           { return v.update(e) }
func (v *updateVisitor) VisitRect(e *Rect) error               { return v.update(e) }
func (v *updateVisitor) VisitIcon(e *Icon) error               { return v.update(e) }
func (v *updateVisitor) VisitPlaceholder(e *Placeholder) error { return v.update(e) }
