package wire

import (
	"encoding/json"
	"fmt"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

// Element is the wire form of a timeline element. S and E are pointers so a
// partially specified element (no timing) survives decoding and picks up the
// default placement of timeline.Add.
type Element struct {
	ID           string                 `json:"id"`
	Type         string                 `json:"type"`
	S            *float64               `json:"s,omitempty"`
	E            *float64               `json:"e,omitempty"`
	Name         string                 `json:"name,omitempty"`
	TrackID      string                 `json:"trackId,omitempty"`
	Props        json.RawMessage        `json:"props,omitempty"`
	Animation    *timeline.Animation    `json:"animation,omitempty"`
	TextEffect   *timeline.TextEffect   `json:"textEffect,omitempty"`
	FrameEffects []timeline.FrameEffect `json:"frameEffects,omitempty"`
}

// EncodeElement converts el to its wire form.
func EncodeElement(el timeline.Element) (Element, error) {
	if el == nil {
		return Element{}, &timeline.Error{Code: timeline.CodeInvalidType, Op: "encode", Err: timeline.ErrInvalidType}
	}
	enc := &encoder{}
	if err := el.Accept(enc); err != nil {
		return Element{}, err
	}

	out := Element{
		ID:           el.ID(),
		Type:         string(el.Type()),
		Name:         el.Name(),
		TrackID:      el.TrackID(),
		Props:        enc.props,
		Animation:    el.Animation(),
		TextEffect:   el.TextEffect(),
		FrameEffects: el.FrameEffects(),
	}
	if el.HasStart() {
		s := el.Start()
		out.S = &s
	}
	if el.HasEnd() {
		e := el.End()
		out.E = &e
	}
	return out, nil
}

// DecodeElement converts a wire element to a timeline element. An unknown
// type tag yields a timeline.Error with CodeInvalidType. No structural
// validation is done here.
func DecodeElement(w Element) (timeline.Element, error) {
	el, err := blank(timeline.Type(w.Type))
	if err != nil {
		return nil, err
	}
	if len(w.Props) > 0 && string(w.Props) != "null" {
		if err := el.Accept(&decoder{raw: w.Props}); err != nil {
			return nil, &timeline.Error{Code: timeline.CodeInvalidProps, Op: "decode", ID: w.ID, Err: err}
		}
	}

	el.SetID(w.ID)
	el.SetName(w.Name)
	el.SetTrackID(w.TrackID)
	if w.S != nil {
		el.SetStart(*w.S)
	}
	if w.E != nil {
		el.SetEnd(*w.E)
	}
	el.SetAnimation(w.Animation)
	el.SetTextEffect(w.TextEffect)
	el.SetFrameEffects(w.FrameEffects)
	return el, nil
}

func blank(t timeline.Type) (timeline.Element, error) {
	switch t {
	case timeline.TypeVideo:
		return timeline.NewVideo(""), nil
	case timeline.TypeAudio:
		return timeline.NewAudio(""), nil
	case timeline.TypeImage:
		return timeline.NewImage(""), nil
	case timeline.TypeText:
		return timeline.NewText(""), nil
	case timeline.TypeCaption:
		return timeline.NewCaption(""), nil
	case timeline.TypeCircle:
		return timeline.NewCircle(0), nil
	case timeline.TypeRect:
		return timeline.NewRect(0, 0), nil
	case timeline.TypeIcon:
		return timeline.NewIcon("", 0), nil
	case timeline.TypePlaceholder:
		return timeline.NewPlaceholder(0, 0), nil
	}
	return nil, &timeline.Error{
		Code: timeline.CodeInvalidType,
		Op:   "decode",
		Err:  fmt.Errorf("%w: %q", timeline.ErrInvalidType, t),
	}
}

// encoder is the serialize visitor.
type encoder struct {
	props json.RawMessage
}

func (e *encoder) marshal(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	e.props = data
	return nil
}

func (e *encoder) VisitVideo(el *timeline.Video) error             { return e.marshal(el.Props()) }
func (e *encoder) VisitAudio(el *timeline.Audio) error             { return e.marshal(el.Props()) }
func (e *encoder) VisitImage(el *timeline.Image) error             { return e.marshal(el.Props()) }
func (e *encoder) VisitText(el *timeline.Text) error               { return e.marshal(el.Props()) }
func (e *encoder) VisitCaption(el *timeline.Caption) error         { return e.marshal(el.Props()) }
func (e *encoder) VisitCircle(el *timeline.Circle) error           { return e.marshal(el.Props()) }
func (e *encoder) VisitRect(el *timeline.Rect) error               { return e.marshal(el.Props()) }
func (e *encoder) VisitIcon(el *timeline.Icon) error               { return e.marshal(el.Props()) }
func (e *encoder) VisitPlaceholder(el *timeline.Placeholder) error { return e.marshal(el.Props()) }

// decoder is the deserialize visitor. Each method overlays raw onto the
// variant's current props.
type decoder struct {
	raw json.RawMessage
}

func (d *decoder) VisitVideo(el *timeline.Video) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitAudio(el *timeline.Audio) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitImage(el *timeline.Image) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitText(el *timeline.Text) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitCaption(el *timeline.Caption) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitCircle(el *timeline.Circle) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitRect(el *timeline.Rect) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitIcon(el *timeline.Icon) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

func (d *decoder) VisitPlaceholder(el *timeline.Placeholder) error {
	p := el.Props()
	if err := json.Unmarshal(d.raw, &p); err != nil {
		return err
	}
	el.SetProps(p)
	return nil
}

var (
	_ timeline.Visitor = (*encoder)(nil)
	_ timeline.Visitor = (*decoder)(nil)
)
