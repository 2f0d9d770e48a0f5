package timeline

// Validate checks el and returns a *ValidationError if any blocking error
// was found. Warnings alone do not fail validation; use Check to see them.
func Validate(el Element) error {
	report := Check(el)
	if report.HasErrors() {
		return &report
	}
	return nil
}

// Check runs every structural check on el and returns the full report.
func Check(el Element) ValidationError {
	v := &validator{}
	if el == nil {
		v.report.fail(CodeInvalidType, "element is nil")
		return v.report
	}
	v.checkBase(el)
	_ = el.Accept(v)
	return v.report
}

// validator layers the basic checks shared by all variants under the
// variant-specific checks implemented by its Visit methods.
type validator struct {
	report ValidationError
}

func (v *validator) checkBase(el Element) {
	b := el.base()
	switch {
	case b.id == "":
		v.report.fail(CodeMalformedID, "id is required")
	case !IsElementID(b.id):
		v.report.fail(CodeMalformedID, "id %q must start with %q", b.id, ElementIDPrefix)
	}
	if !el.Type().Valid() {
		v.report.fail(CodeInvalidType, "unknown element type %q", el.Type())
	}
	switch {
	case !b.hasStart || !b.hasEnd:
		v.report.fail(CodeInvalidTiming, "start and end are required")
	case b.start < 0:
		v.report.fail(CodeInvalidTiming, "start %.3f must not be negative", b.start)
	case b.end <= b.start:
		v.report.fail(CodeInvalidTiming, "end %.3f must be greater than start %.3f", b.end, b.start)
	}
	if b.name == "" {
		v.report.warn("name is empty")
	}
	if b.trackID == "" {
		v.report.warn("track id is empty")
	}
	for i, fe := range b.frameEffects {
		if fe.End <= fe.Start {
			v.report.fail(CodeInvalidTiming, "frame effect %d: end must be greater than start", i)
		}
	}
}

func (v *validator) checkMedia(p MediaProps) {
	if p.Src == "" {
		v.report.fail(CodeInvalidProps, "src is required")
	}
	if p.Volume < 0 || p.Volume > 1 {
		v.report.fail(CodeInvalidProps, "volume %.3f must be within [0, 1]", p.Volume)
	}
	if p.PlaybackRate <= 0 {
		v.report.fail(CodeInvalidProps, "playback rate %.3f must be positive", p.PlaybackRate)
	}
	if p.MediaStartOffset < 0 {
		v.report.fail(CodeInvalidProps, "media start offset %.3f must not be negative", p.MediaStartOffset)
	}
}

func (v *validator) checkPositive(field string, value float64) {
	if value <= 0 {
		v.report.fail(CodeInvalidProps, "%s %.3f must be positive", field, value)
	}
}

func (v *validator) VisitVideo(e *Video) error {
	v.checkMedia(e.props.MediaProps)
	return nil
}

func (v *validator) VisitAudio(e *Audio) error {
	v.checkMedia(e.props.MediaProps)
	return nil
}

func (v *validator) VisitImage(e *Image) error {
	if e.props.Src == "" {
		v.report.fail(CodeInvalidProps, "src is required")
	}
	return nil
}

func (v *validator) VisitText(e *Text) error {
	if e.props.Text == "" {
		v.report.fail(CodeInvalidProps, "text content is required")
	}
	return nil
}

func (v *validator) VisitCaption(e *Caption) error {
	if e.props.Text == "" {
		v.report.fail(CodeInvalidProps, "caption content is required")
	}
	return nil
}

func (v *validator) VisitCircle(e *Circle) error {
	v.checkPositive("radius", e.props.Radius)
	return nil
}

func (v *validator) VisitRect(e *Rect) error {
	v.checkPositive("width", e.props.Width)
	v.checkPositive("height", e.props.Height)
	return nil
}

func (v *validator) VisitIcon(e *Icon) error {
	if e.props.Src == "" {
		v.report.fail(CodeInvalidProps, "icon src is required")
	}
	v.checkPositive("size", e.props.Size)
	return nil
}

func (v *validator) VisitPlaceholder(e *Placeholder) error {
	v.checkPositive("width", e.props.Width)
	v.checkPositive("height", e.props.Height)
	return nil
}
