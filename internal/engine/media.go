package engine

import (
	"github.com/ncounterspecialist/twick-sub001/internal/engine/probe"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

// mediaSource returns the source of a video or audio element and its
// already known media duration.
func mediaSource(el timeline.Element) (string, float64) {
	var v sourceVisitor
	_ = el.Accept(&v)
	return v.src, v.duration
}

type sourceVisitor struct {
	src      string
	duration float64
}

func (v *sourceVisitor) media(p timeline.MediaProps) error {
	v.src, v.duration = p.Src, p.MediaDuration
	return nil
}

func (v *sourceVisitor) VisitVideo(e *timeline.Video) error           { return v.media(e.Props().MediaProps) }
func (v *sourceVisitor) VisitAudio(e *timeline.Audio) error           { return v.media(e.Props().MediaProps) }
func (v *sourceVisitor) VisitImage(*timeline.Image) error             { return nil }
func (v *sourceVisitor) VisitText(*timeline.Text) error               { return nil }
func (v *sourceVisitor) VisitCaption(*timeline.Caption) error         { return nil }
func (v *sourceVisitor) VisitCircle(*timeline.Circle) error           { return nil }
func (v *sourceVisitor) VisitRect(*timeline.Rect) error               { return nil }
func (v *sourceVisitor) VisitIcon(*timeline.Icon) error               { return nil }
func (v *sourceVisitor) VisitPlaceholder(*timeline.Placeholder) error { return nil }

// seedVideoSize gives an unsized video the probed source dimensions.
func seedVideoSize(el timeline.Element, md probe.Metadata) {
	v, ok := el.(*timeline.Video)
	if !ok || md.Width <= 0 || md.Height <= 0 {
		return
	}
	p := v.Props()
	if p.Width != 0 || p.Height != 0 {
		return
	}
	p.Width, p.Height = float64(md.Width), float64(md.Height)
	v.SetProps(p)
}
