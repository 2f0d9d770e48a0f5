package timeline

// Visitor implements one operation for every element variant.
type Visitor interface {
	VisitVideo(*Video) error
	VisitAudio(*Audio) error
	VisitImage(*Image) error
	VisitText(*Text) error
	VisitCaption(*Caption) error
	VisitCircle(*Circle) error
	VisitRect(*Rect) error
	VisitIcon(*Icon) error
	VisitPlaceholder(*Placeholder) error
}

// Compile-time checks that every variant is an Element.
var (
	_ Element = (*Video)(nil)
	_ Element = (*Audio)(nil)
	_ Element = (*Image)(nil)
	_ Element = (*Text)(nil)
	_ Element = (*Caption)(nil)
	_ Element = (*Circle)(nil)
	_ Element = (*Rect)(nil)
	_ Element = (*Icon)(nil)
	_ Element = (*Placeholder)(nil)
)
