package timeline

// MediaProps are the playback fields shared by video and audio.
type MediaProps struct {
	Src          string  `json:"src"`
	PlaybackRate float64 `json:"playbackRate"`
	// MediaStartOffset is the position in the source media, in seconds,
	// that plays at the element's start.
	MediaStartOffset float64 `json:"mediaStartOffset"`
	Volume           float64 `json:"volume"`
	// MediaDuration is the probed length of the source, 0 when unknown.
	MediaDuration float64 `json:"mediaDuration,omitempty"`
}

// DefaultMediaProps returns media props with unit rate and full volume.
func DefaultMediaProps(src string) MediaProps {
	return MediaProps{Src: src, PlaybackRate: 1, Volume: 1}
}

// Crop is a source-space crop rectangle.
type Crop struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// VideoProps is the video property bag.
type VideoProps struct {
	MediaProps
	Visual
	Frame *Crop `json:"frame,omitempty"`
}

func (p VideoProps) clone() VideoProps {
	if p.Frame != nil {
		f := *p.Frame
		p.Frame = &f
	}
	return p
}

// Video is a video clip.
type Video struct {
	Base
	props VideoProps
	// parentSize is the container the video is fitted into. It is not part
	// of the serialized property bag.
	parentSize Size
}

// NewVideo creates a video element with default playback and placement.
func NewVideo(src string) *Video {
	return &Video{props: VideoProps{
		MediaProps: DefaultMediaProps(src),
		Visual:     Visual{Opacity: 1},
	}}
}

// Type returns TypeVideo.
func (v *Video) Type() Type { return TypeVideo }

// Props returns a copy of the property bag.
func (v *Video) Props() VideoProps { return v.props.clone() }

// SetProps replaces the property bag.
func (v *Video) SetProps(p VideoProps) { v.props = p.clone() }

// ParentSize returns the container size used for object-fit.
func (v *Video) ParentSize() Size { return v.parentSize }

// SetParentSize sets the container size used for object-fit.
func (v *Video) SetParentSize(s Size) { v.parentSize = s }

// Accept dispatches to VisitVideo.
func (v *Video) Accept(vis Visitor) error { return vis.VisitVideo(v) }

// AudioProps is the audio property bag.
type AudioProps struct {
	MediaProps
}

// Audio is an audio clip.
type Audio struct {
	Base
	props AudioProps
}

// NewAudio creates an audio element with default playback.
func NewAudio(src string) *Audio {
	return &Audio{props: AudioProps{MediaProps: DefaultMediaProps(src)}}
}

// Type returns TypeAudio.
func (a *Audio) Type() Type { return TypeAudio }

// Props returns a copy of the property bag.
func (a *Audio) Props() AudioProps { return a.props }

// SetProps replaces the property bag.
func (a *Audio) SetProps(p AudioProps) { a.props = p }

// Accept dispatches to VisitAudio.
func (a *Audio) Accept(vis Visitor) error { return vis.VisitAudio(a) }

// ImageProps is the image property bag.
type ImageProps struct {
	Src string `json:"src"`
	Visual
}

// Image is a still image.
type Image struct {
	Base
	props      ImageProps
	parentSize Size
}

// NewImage creates an image element.
func NewImage(src string) *Image {
	return &Image{props: ImageProps{Src: src, Visual: Visual{Opacity: 1}}}
}

// Type returns TypeImage.
func (i *Image) Type() Type { return TypeImage }

// Props returns a copy of the property bag.
func (i *Image) Props() ImageProps { return i.props }

// SetProps replaces the property bag.
func (i *Image) SetProps(p ImageProps) { i.props = p }

// ParentSize returns the container size used for object-fit.
func (i *Image) ParentSize() Size { return i.parentSize }

// SetParentSize sets the container size used for object-fit.
func (i *Image) SetParentSize(s Size) { i.parentSize = s }

// Accept dispatches to VisitImage.
func (i *Image) Accept(vis Visitor) error { return vis.VisitImage(i) }
