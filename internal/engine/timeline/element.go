package timeline

// Type tags an element variant.
type Type string

// Element variant tags.
const (
	TypeVideo       Type = "video"
	TypeAudio       Type = "audio"
	TypeImage       Type = "image"
	TypeText        Type = "text"
	TypeCaption     Type = "caption"
	TypeCircle      Type = "circle"
	TypeRect        Type = "rect"
	TypeIcon        Type = "icon"
	TypePlaceholder Type = "placeholder"
)

// Types lists every variant tag.
var Types = []Type{
	TypeVideo, TypeAudio, TypeImage, TypeText, TypeCaption,
	TypeCircle, TypeRect, TypeIcon, TypePlaceholder,
}

// Valid returns true if t names a known variant.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Splittable returns true for the variants Split is defined on.
func (t Type) Splittable() bool {
	return t == TypeVideo || t == TypeAudio || t == TypeCaption
}

// IsMedia returns true for variants backed by an external media source.
func (t Type) IsMedia() bool {
	return t == TypeVideo || t == TypeAudio
}

// Element is a single timed item on a track.
//
// The interface is sealed: only the variants in this package implement it.
// Setters are meant for detached copies (new elements, clones returned by
// accessors). Stored elements are never handed out.
type Element interface {
	ID() string
	Type() Type
	Start() float64
	End() float64
	Duration() float64
	HasStart() bool
	HasEnd() bool
	TrackID() string
	Name() string
	Animation() *Animation
	TextEffect() *TextEffect
	FrameEffects() []FrameEffect

	SetID(id string)
	SetTrackID(id string)
	SetName(name string)
	SetStart(start float64)
	SetEnd(end float64)
	SetTiming(start, end float64)
	SetAnimation(a *Animation)
	SetTextEffect(t *TextEffect)
	SetFrameEffects(effects []FrameEffect)

	// Accept dispatches to the visitor method for the concrete variant.
	Accept(v Visitor) error

	base() *Base
}

// Animation describes an entry/exit animation applied to an element.
type Animation struct {
	Name      string  `json:"name"`
	Interval  float64 `json:"interval,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Intensity float64 `json:"intensity,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Mode      string  `json:"mode,omitempty"`
}

// TextEffect describes a text reveal effect.
type TextEffect struct {
	Name       string  `json:"name"`
	Duration   float64 `json:"duration,omitempty"`
	Delay      float64 `json:"delay,omitempty"`
	BufferTime float64 `json:"bufferTime,omitempty"`
}

// FrameEffect is a time-bounded effect on an element's frame.
type FrameEffect struct {
	Start float64        `json:"s"`
	End   float64        `json:"e"`
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Visual holds placement fields shared by visual variants.
type Visual struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Rotation  float64 `json:"rotation,omitempty"`
	Opacity   float64 `json:"opacity"`
	ObjectFit string  `json:"objectFit,omitempty"`
}

// Base holds the fields every variant shares.
type Base struct {
	id           string
	trackID      string
	name         string
	start        float64
	end          float64
	hasStart     bool
	hasEnd       bool
	animation    *Animation
	textEffect   *TextEffect
	frameEffects []FrameEffect
}

// ID returns the element id.
func (b *Base) ID() string { return b.id }

// TrackID returns the id of the owning track, if any.
func (b *Base) TrackID() string { return b.trackID }

// Name returns the display name.
func (b *Base) Name() string { return b.name }

// Start returns the start time in seconds.
func (b *Base) Start() float64 { return b.start }

// End returns the end time in seconds.
func (b *Base) End() float64 { return b.end }

// Duration returns end - start.
func (b *Base) Duration() float64 { return b.end - b.start }

// HasStart returns true if a start time was set.
func (b *Base) HasStart() bool { return b.hasStart }

// HasEnd returns true if an end time was set.
func (b *Base) HasEnd() bool { return b.hasEnd }

// Animation returns a copy of the animation, or nil.
func (b *Base) Animation() *Animation {
	if b.animation == nil {
		return nil
	}
	a := *b.animation
	return &a
}

// TextEffect returns a copy of the text effect, or nil.
func (b *Base) TextEffect() *TextEffect {
	if b.textEffect == nil {
		return nil
	}
	t := *b.textEffect
	return &t
}

// FrameEffects returns a copy of the frame effects.
func (b *Base) FrameEffects() []FrameEffect {
	return copyFrameEffects(b.frameEffects)
}

// SetID sets the element id.
func (b *Base) SetID(id string) { b.id = id }

// SetTrackID sets the owning track back-reference. Add and Update overwrite
// it with the id of the track the element is stored in.
func (b *Base) SetTrackID(id string) { b.trackID = id }

// SetName sets the display name.
func (b *Base) SetName(name string) { b.name = name }

// SetStart sets the start time.
func (b *Base) SetStart(start float64) {
	b.start = start
	b.hasStart = true
}

// SetEnd sets the end time.
func (b *Base) SetEnd(end float64) {
	b.end = end
	b.hasEnd = true
}

// SetTiming sets both start and end.
func (b *Base) SetTiming(start, end float64) {
	b.SetStart(start)
	b.SetEnd(end)
}

// SetAnimation sets or clears the animation.
func (b *Base) SetAnimation(a *Animation) {
	if a == nil {
		b.animation = nil
		return
	}
	cp := *a
	b.animation = &cp
}

// SetTextEffect sets or clears the text effect.
func (b *Base) SetTextEffect(t *TextEffect) {
	if t == nil {
		b.textEffect = nil
		return
	}
	cp := *t
	b.textEffect = &cp
}

// SetFrameEffects replaces the frame effects.
func (b *Base) SetFrameEffects(effects []FrameEffect) {
	b.frameEffects = copyFrameEffects(effects)
}

func (b *Base) base() *Base { return b }

// clone returns a deep copy of the shared fields.
func (b *Base) clone() Base {
	cp := *b
	cp.animation = b.Animation()
	cp.textEffect = b.TextEffect()
	cp.frameEffects = copyFrameEffects(b.frameEffects)
	return cp
}

func copyFrameEffects(effects []FrameEffect) []FrameEffect {
	if effects == nil {
		return nil
	}
	out := make([]FrameEffect, len(effects))
	for i, fe := range effects {
		out[i] = fe
		out[i].Props = copyMap(fe.Props)
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = copyMap(vv)
		case []any:
			s := make([]any, len(vv))
			copy(s, vv)
			out[k] = s
		default:
			out[k] = v
		}
	}
	return out
}
