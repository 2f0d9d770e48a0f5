package timeline

// CircleProps is the circle property bag.
type CircleProps struct {
	Radius    float64 `json:"radius"`
	Fill      string  `json:"fill,omitempty"`
	Stroke    string  `json:"stroke,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Opacity   float64 `json:"opacity"`
}

// Circle is a filled circle.
type Circle struct {
	Base
	props CircleProps
}

// NewCircle creates a circle element.
func NewCircle(radius float64) *Circle {
	return &Circle{props: CircleProps{Radius: radius, Fill: "#000000", Opacity: 1}}
}

// Type returns TypeCircle.
func (c *Circle) Type() Type { return TypeCircle }

// Props returns a copy of the property bag.
func (c *Circle) Props() CircleProps { return c.props }

// SetProps replaces the property bag.
func (c *Circle) SetProps(p CircleProps) { c.props = p }

// Accept dispatches to VisitCircle.
func (c *Circle) Accept(vis Visitor) error { return vis.VisitCircle(c) }

// RectProps is the rectangle property bag.
type RectProps struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Fill         string  `json:"fill,omitempty"`
	Stroke       string  `json:"stroke,omitempty"`
	LineWidth    float64 `json:"lineWidth,omitempty"`
	CornerRadius float64 `json:"cornerRadius,omitempty"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Rotation     float64 `json:"rotation,omitempty"`
	Opacity      float64 `json:"opacity"`
}

// Rect is a filled rectangle.
type Rect struct {
	Base
	props RectProps
}

// NewRect creates a rectangle element.
func NewRect(width, height float64) *Rect {
	return &Rect{props: RectProps{Width: width, Height: height, Fill: "#000000", Opacity: 1}}
}

// Type returns TypeRect.
func (r *Rect) Type() Type { return TypeRect }

// Props returns a copy of the property bag.
func (r *Rect) Props() RectProps { return r.props }

// SetProps replaces the property bag.
func (r *Rect) SetProps(p RectProps) { r.props = p }

// Accept dispatches to VisitRect.
func (r *Rect) Accept(vis Visitor) error { return vis.VisitRect(r) }

// IconProps is the icon property bag.
type IconProps struct {
	Src  string  `json:"src"`
	Size float64 `json:"size"`
	Fill string  `json:"fill,omitempty"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Icon is a vector icon.
type Icon struct {
	Base
	props IconProps
}

// NewIcon creates an icon element.
func NewIcon(src string, size float64) *Icon {
	return &Icon{props: IconProps{Src: src, Size: size}}
}

// Type returns TypeIcon.
func (i *Icon) Type() Type { return TypeIcon }

// Props returns a copy of the property bag.
func (i *Icon) Props() IconProps { return i.props }

// SetProps replaces the property bag.
func (i *Icon) SetProps(p IconProps) { i.props = p }

// Accept dispatches to VisitIcon.
func (i *Icon) Accept(vis Visitor) error { return vis.VisitIcon(i) }

// PlaceholderProps is the placeholder property bag.
type PlaceholderProps struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Placeholder reserves a region for media that has not been chosen yet.
type Placeholder struct {
	Base
	props PlaceholderProps
}

// NewPlaceholder creates a placeholder element.
func NewPlaceholder(width, height float64) *Placeholder {
	return &Placeholder{props: PlaceholderProps{Width: width, Height: height}}
}

// Type returns TypePlaceholder.
func (p *Placeholder) Type() Type { return TypePlaceholder }

// Props returns a copy of the property bag.
func (p *Placeholder) Props() PlaceholderProps { return p.props }

// SetProps replaces the property bag.
func (p *Placeholder) SetProps(pp PlaceholderProps) { p.props = pp }

// Accept dispatches to VisitPlaceholder.
func (p *Placeholder) Accept(vis Visitor) error { return vis.VisitPlaceholder(p) }
