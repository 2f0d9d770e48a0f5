package timeline

// TextProps is the text property bag.
type TextProps struct {
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	FontWeight int     `json:"fontWeight,omitempty"`
	FontStyle  string  `json:"fontStyle,omitempty"`
	Fill       string  `json:"fill,omitempty"`
	Stroke     string  `json:"stroke,omitempty"`
	LineWidth  float64 `json:"lineWidth,omitempty"`
	TextAlign  string  `json:"textAlign,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Rotation   float64 `json:"rotation,omitempty"`
	Opacity    float64 `json:"opacity"`
}

// Text is a styled text block.
type Text struct {
	Base
	props TextProps
}

// NewText creates a text element.
func NewText(content string) *Text {
	return &Text{props: TextProps{Text: content, FontSize: 48, Fill: "#FFFFFF", Opacity: 1}}
}

// Type returns TypeText.
func (t *Text) Type() Type { return TypeText }

// Props returns a copy of the property bag.
func (t *Text) Props() TextProps { return t.props }

// SetProps replaces the property bag.
func (t *Text) SetProps(p TextProps) { t.props = p }

// Accept dispatches to VisitText.
func (t *Text) Accept(vis Visitor) error { return vis.VisitText(t) }

// CaptionProps is the caption property bag.
type CaptionProps struct {
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Fill       string  `json:"fill,omitempty"`
	Stroke     string  `json:"stroke,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
}

// Caption is a timed subtitle.
type Caption struct {
	Base
	props CaptionProps
}

// NewCaption creates a caption element.
func NewCaption(content string) *Caption {
	return &Caption{props: CaptionProps{Text: content, FontSize: 40, Fill: "#FFFFFF"}}
}

// Type returns TypeCaption.
func (c *Caption) Type() Type { return TypeCaption }

// Props returns a copy of the property bag.
func (c *Caption) Props() CaptionProps { return c.props }

// SetProps replaces the property bag.
func (c *Caption) SetProps(p CaptionProps) { c.props = p }

// Accept dispatches to VisitCaption.
func (c *Caption) Accept(vis Visitor) error { return vis.VisitCaption(c) }
