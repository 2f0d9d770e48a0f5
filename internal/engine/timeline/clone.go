package timeline

// Clone returns a deep copy of el. When newID is true the copy receives a
// fresh element id; otherwise it keeps el's id. Auxiliary fields that are not
// part of the serialized property bag (parent size) are copied too.
func Clone(el Element, newID bool) Element {
	if el == nil {
		return nil
	}
	c := &cloneVisitor{}
	_ = el.Accept(c)
	if newID {
		c.result.SetID(NewElementID())
	}
	return c.result
}

type cloneVisitor struct {
	result Element
}

func (c *cloneVisitor) VisitVideo(e *Video) error {
	c.result = &Video{Base: e.Base.clone(), props: e.props.clone(), parentSize: e.parentSize}
	return nil
}

func (c *cloneVisitor) VisitAudio(e *Audio) error {
	c.result = &Audio{Base: e.Base.clone(), props: e.props}
	return nil
}

func (c *cloneVisitor) VisitImage(e *Image) error {
	c.result = &Image{Base: e.Base.clone(), props: e.props, parentSize: e.parentSize}
	return nil
}

func (c *cloneVisitor) VisitText(e *Text) error {
	c.result = &Text{Base: e.Base.clone(), props: e.props}
	return nil
}

func (c *cloneVisitor) VisitCaption(e *Caption) error {
	c.result = &Caption{Base: e.Base.clone(), props: e.props}
	return nil
}

func (c *cloneVisitor) VisitCircle(e *Circle) error {
	c.result = &Circle{Base: e.Base.clone(), props: e.props}
	return nil
}

func (c *cloneVisitor) VisitRect(e *Rect) error {
	c.result = &Rect{Base: e.Base.clone(), props: e.props}
	return nil
}

func (c *cloneVisitor) VisitIcon(e *Icon) error {
	c.result = &Icon{Base: e.Base.clone(), props: e.props}
	return nil
}

func (c *cloneVisitor) VisitPlaceholder(e *Placeholder) error {
	c.result = &Placeholder{Base: e.Base.clone(), props: e.props}
	return nil
}
