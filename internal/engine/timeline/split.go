package timeline

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// SplitResult is the outcome of a split. Success is false when the element
// type is not splittable, the split time is not strictly inside the element,
// the element does not exist, or it is a caption of fewer than two words. None of these are errors: callers may probe
// splittability freely.
type SplitResult struct {
	Success bool
	First   Element
	Second  Element
}

// SplitElement divides el at the given time into two detached halves with
// fresh ids. The first half keeps el's start, the second keeps its end.
// Media halves are rebased so the second continues where the source would be
// at time at; caption text is divided on a word boundary in proportion to the
// split position.
func SplitElement(el Element, at float64) SplitResult {
	if el == nil || !el.Type().Splittable() {
		return SplitResult{}
	}
	if !(el.Start() < at && at < el.End()) {
		return SplitResult{}
	}
	v := &splitVisitor{at: at}
	_ = el.Accept(v)
	return v.result
}

// Split replaces the element with the given id in t by its two halves. The
// halves take the original's position in insertion order. If any step fails
// the track is unchanged.
func Split(t *Track, id string, at float64) (SplitResult, error) {
	a := t.privileged()
	i := a.indexOf(id)
	if i < 0 {
		return SplitResult{}, nil
	}
	res := SplitElement(t.elements[i], at)
	if !res.Success {
		return res, nil
	}
	if err := Validate(res.First); err != nil {
		return SplitResult{}, err
	}
	if err := Validate(res.Second); err != nil {
		return SplitResult{}, err
	}

	a.addRaw(res.First, i+1)
	a.addRaw(res.Second, i+2)
	a.removeRaw(id)

	return SplitResult{
		Success: true,
		First:   Clone(res.First, false),
		Second:  Clone(res.Second, false),
	}, nil
}

type splitVisitor struct {
	at     float64
	result SplitResult
}

// halves clones el twice and applies the shared timing cut.
func (v *splitVisitor) halves(el Element) (Element, Element) {
	first := Clone(el, true)
	second := Clone(el, true)
	first.SetEnd(v.at)
	second.SetStart(v.at)
	return first, second
}

func (v *splitVisitor) rebase(orig Element, p MediaProps) MediaProps {
	p.MediaStartOffset += (v.at - orig.Start()) * p.PlaybackRate
	return p
}

func (v *splitVisitor) VisitVideo(e *Video) error {
	first, second := v.halves(e)
	s := second.(*Video)
	s.props.MediaProps = v.rebase(e, e.props.MediaProps)
	v.result = SplitResult{Success: true, First: first, Second: s}
	return nil
}

func (v *splitVisitor) VisitAudio(e *Audio) error {
	first, second := v.halves(e)
	s := second.(*Audio)
	s.props.MediaProps = v.rebase(e, e.props.MediaProps)
	v.result = SplitResult{Success: true, First: first, Second: s}
	return nil
}

func (v *splitVisitor) VisitCaption(e *Caption) error {
	if len(strings.Fields(e.props.Text)) < 2 {
		return nil
	}
	first, second := v.halves(e)
	ratio := (v.at - e.Start()) / (e.End() - e.Start())
	head, tail := SplitWords(e.props.Text, ratio)
	first.(*Caption).props.Text = head
	second.(*Caption).props.Text = tail
	v.result = SplitResult{Success: true, First: first, Second: second}
	return nil
}

func (v *splitVisitor) VisitImage(*Image) error             { return nil }
func (v *splitVisitor) VisitText(*Text) error               { return nil }
func (v *splitVisitor) VisitCircle(*Circle) error           { return nil }
func (v *splitVisitor) VisitRect(*Rect) error               { return nil }
func (v *splitVisitor) VisitIcon(*Icon) error               { return nil }
func (v *splitVisitor) VisitPlaceholder(*Placeholder) error { return nil }

// SplitWords divides text at the word boundary whose character position is
// closest to ratio of the whole. Both parts are whitespace-joined words and
// each holds at least one word. Text with fewer than two words cannot be
// divided, so it all goes to the first part and the second is empty.
func SplitWords(text string, ratio float64) (string, string) {
	words := strings.Fields(norm.NFC.String(text))
	if len(words) < 2 {
		return strings.Join(words, " "), ""
	}

	total := len(words) - 1
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	target := ratio * float64(total)

	cut, best := 1, math.Inf(1)
	pos := 0
	for i := 0; i < len(words)-1; i++ {
		if i > 0 {
			pos++
		}
		pos += utf8.RuneCountInString(words[i])
		if d := math.Abs(float64(pos) - target); d < best {
			best = d
			cut = i + 1
		}
	}
	return strings.Join(words[:cut], " "), strings.Join(words[cut:], " ")
}
