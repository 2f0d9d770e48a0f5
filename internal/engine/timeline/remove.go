package timeline

// Remove deletes el from t by id. It is a no-op returning false when the id
// is absent.
func Remove(t *Track, el Element) bool {
	if el == nil {
		return false
	}
	v := &removeVisitor{track: t}
	_ = el.Accept(v)
	return v.removed
}

// RemoveByID deletes the element with the given id from t.
func RemoveByID(t *Track, id string) bool {
	i := t.indexOf(id)
	if i < 0 {
		return false
	}
	return Remove(t, t.elements[i])
}

type removeVisitor struct {
	track   *Track
	removed bool
}

func (v *removeVisitor) remove(b *Base) error {
	v.removed = v.track.privileged().removeRaw(b.id)
	return nil
}

func (v *removeVisitor) VisitVideo(e *Video) error             { return v.remove(&e.Base) }
func (v *removeVisitor) VisitAudio(e *Audio) error             { return v.remove(&e.Base) }
func (v *removeVisitor) VisitImage(e *Image) error             { return v.remove(&e.Base) }
func (v *removeVisitor) VisitText(e *Text) error               { return v.remove(&e.Base) }
func (v *removeVisitor) VisitCaption(e *Caption) error         { return v.remove(&e.Base) }
func (v *removeVisitor) VisitCircle(e *Circle) error           { return v.remove(&e.Base) }
func (v *removeVisitor) VisitRect(e *Rect) error               { return v.remove(&e.Base) }
func (v *removeVisitor) VisitIcon(e *Icon) error               { return v.remove(&e.Base) }
func (v *removeVisitor) VisitPlaceholder(e *Placeholder) error { return v.remove(&e.Base) }
