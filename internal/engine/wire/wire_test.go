package wire

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncounterspecialist/twick-sub001/internal/engine/document"
	"github.com/ncounterspecialist/twick-sub001/internal/engine/timeline"
)

func sampleDocument(t *testing.T) document.Document {
	t.Helper()
	tr := timeline.NewTrack("main")

	v := timeline.NewVideo("https://cdn.example.com/a.mp4")
	p := v.Props()
	p.MediaStartOffset = 2
	p.Frame = &timeline.Crop{Width: 640, Height: 360}
	v.SetProps(p)
	v.SetTiming(0, 5)
	v.SetName("intro")
	v.SetAnimation(&timeline.Animation{Name: "fade", Duration: 0.5})
	_, err := timeline.Add(tr, v, timeline.AddOptions{})
	require.NoError(t, err)

	c := timeline.NewCaption("hello there")
	c.SetTextEffect(&timeline.TextEffect{Name: "typewriter", Delay: 0.1})
	c.SetFrameEffects([]timeline.FrameEffect{{Start: 0, End: 1, Name: "glow", Props: map[string]any{"strength": 0.5}}})
	_, err = timeline.Add(tr, c, timeline.AddOptions{})
	require.NoError(t, err)

	return document.Document{Tracks: []*timeline.Track{tr, timeline.NewTrack("empty")}, Version: 9}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := sampleDocument(t)

	data, err := Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, ValidateSchema(data))

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Version, got.Version)
	require.Len(t, got.Tracks, 2)
	for i := range doc.Tracks {
		assert.Equal(t, doc.Tracks[i].ID(), got.Tracks[i].ID())
		assert.Equal(t, doc.Tracks[i].Name(), got.Tracks[i].Name())
		assert.Equal(t, doc.Tracks[i].Elements(), got.Tracks[i].Elements())
	}
}

func TestEncodeElementShape(t *testing.T) {
	tx := timeline.NewText("hi")
	tx.SetID("e-1")
	tx.SetTiming(1, 2)

	w, err := EncodeElement(tx)
	require.NoError(t, err)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "e-1", m["id"])
	assert.Equal(t, "text", m["type"])
	assert.Equal(t, 1.0, m["s"])
	assert.Equal(t, 2.0, m["e"])
	assert.NotContains(t, m, "animation")
	props := m["props"].(map[string]any)
	assert.Equal(t, "hi", props["text"])
}

func TestDecodeKeepsConstructorDefaults(t *testing.T) {
	s, e := 0.0, 3.0
	el, err := DecodeElement(Element{
		ID:    "e-1",
		Type:  "audio",
		S:     &s,
		E:     &e,
		Props: json.RawMessage(`{"src":"a.mp3"}`),
	})
	require.NoError(t, err)

	a := el.(*timeline.Audio)
	assert.Equal(t, "a.mp3", a.Props().Src)
	assert.Equal(t, 1.0, a.Props().PlaybackRate)
	assert.Equal(t, 1.0, a.Props().Volume)
	assert.NoError(t, timeline.Validate(withTrack(el)))
}

func withTrack(el timeline.Element) timeline.Element {
	el.SetTrackID("t-1")
	return el
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeElement(Element{ID: "e-1", Type: "hologram"})
	require.Error(t, err)
	assert.Equal(t, timeline.CodeInvalidType, timeline.CodeOf(err))
	assert.True(t, errors.Is(err, timeline.ErrInvalidType))
}

func TestDecodeBadProps(t *testing.T) {
	_, err := DecodeElement(Element{ID: "e-1", Type: "text", Props: json.RawMessage(`{"text": 5}`)})
	assert.Equal(t, timeline.CodeInvalidProps, timeline.CodeOf(err))
}

func TestDecodePartialElementGetsDefaultTiming(t *testing.T) {
	data := []byte(`{"tracks":[{"id":"t-1","name":"A","type":"element","elements":[
		{"id":"e-1","type":"text","props":{"text":"one"}},
		{"id":"e-2","type":"text","props":{"text":"two"}}
	]}],"version":3}`)

	doc, err := Unmarshal(data)
	require.NoError(t, err)
	els := doc.Tracks[0].Elements()
	require.Len(t, els, 2)
	assert.Equal(t, 1.0, els[1].Start())
	assert.Equal(t, 2.0, els[1].End())
	assert.Equal(t, "t-1", els[0].TrackID())

	_, err = UnmarshalStrict(data)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestDecodeRejectsInvalidElements(t *testing.T) {
	data := []byte(`{"tracks":[{"id":"t-1","elements":[
		{"id":"e-1","type":"text","s":2,"e":1,"props":{"text":"x"}}
	]}]}`)
	_, err := Unmarshal(data)
	assert.ErrorIs(t, err, timeline.ErrInvalidTiming)
}

func TestDecodeRejectsDuplicateTracks(t *testing.T) {
	data := []byte(`{"tracks":[{"id":"t-1","elements":[]},{"id":"t-1","elements":[]}]}`)
	_, err := Unmarshal(data)
	assert.Equal(t, timeline.CodeDuplicateID, timeline.CodeOf(err))
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name string
		data string
		ok   bool
	}{
		{"empty document", `{"tracks":[],"version":0}`, true},
		{"missing tracks", `{"version":0}`, false},
		{"track id namespace", `{"tracks":[{"id":"e-1","elements":[]}]}`, false},
		{"unknown element type", `{"tracks":[{"id":"t-1","elements":[{"id":"e-1","type":"blob","s":0,"e":1}]}]}`, false},
		{"negative start", `{"tracks":[{"id":"t-1","elements":[{"id":"e-1","type":"text","s":-1,"e":1}]}]}`, false},
		{"not json", `{"tracks":`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchema([]byte(tt.data))
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrSchema)
			}
		})
	}
}
