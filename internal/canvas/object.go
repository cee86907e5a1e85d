package canvas

import (
	"image"

	"github.com/youruser/backdrop/internal/catalog"
)

// Kind distinguishes drawable object types.
type Kind int

const (
	KindText Kind = iota
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// RefKind says which definition an object was created from.
type RefKind int

const (
	RefNone RefKind = iota
	RefPlaceholder
	RefBadge
)

// DefinitionRef is the back-reference from a live object to the design-space
// definition it was created from. At most one field is set.
type DefinitionRef struct {
	Placeholder *catalog.Placeholder
	Badge       *catalog.BadgeDefinition
}

// Kind reports which definition r points at.
func (r DefinitionRef) Kind() RefKind {
	switch {
	case r.Placeholder != nil:
		return RefPlaceholder
	case r.Badge != nil:
		return RefBadge
	}
	return RefNone
}

// TextStyle is the font and paint of a text object.
type TextStyle struct {
	FontFamily string
	Fill       string
	Align      catalog.Align
	LineHeight float64
}

// DefaultLineHeight is applied to text objects that do not set one.
const DefaultLineHeight = 1.16

// Object is a drawable entity on a canvas. Text objects wrap inside Width;
// image objects draw Image scaled by ScaleX/ScaleY from (Left, Top).
type Object struct {
	Name string
	Kind Kind
	Ref  DefinitionRef

	Left     float64
	Top      float64
	Width    float64
	FontSize float64
	ScaleX   float64
	ScaleY   float64

	Text  string
	Style TextStyle
	Image image.Image
}

// NewText creates an unplaced text object.
func NewText(name, text string, style TextStyle, ref DefinitionRef) *Object {
	if style.LineHeight == 0 {
		style.LineHeight = DefaultLineHeight
	}
	return &Object{Name: name, Kind: KindText, Ref: ref, Text: text, Style: style, ScaleX: 1, ScaleY: 1}
}

// NewImage creates an unplaced image object.
func NewImage(name string, img image.Image, ref DefinitionRef) *Object {
	return &Object{Name: name, Kind: KindImage, Ref: ref, Image: img, ScaleX: 1, ScaleY: 1}
}

// ImageSize returns the pixel size of an image object's source, or zero.
func (o *Object) ImageSize() (int, int) {
	if o.Image == nil {
		return 0, 0
	}
	b := o.Image.Bounds()
	return b.Dx(), b.Dy()
}

// PlaceholderStyle returns the text style declared by p.
func PlaceholderStyle(p *catalog.Placeholder) TextStyle {
	return TextStyle{FontFamily: p.FontFamily, Fill: p.Fill, Align: p.Align}
}

// BadgeStyle returns the label style declared by b.
func BadgeStyle(b *catalog.BadgeDefinition) TextStyle {
	return TextStyle{FontFamily: b.FontFamily, Fill: b.Fill, Align: b.Align, LineHeight: b.LineHeight}
}
