// Package layout maps design-space coordinates (native pixels of a background)
// onto a display canvas using a uniform contain fit.
//
// Every function here is pure. Callers apply the results to live canvas
// objects and always project from the catalog definition, never from the
// object's current geometry, so repeated resizes do not accumulate error.
package layout

import (
	"math"

	"github.com/youruser/backdrop/internal/catalog"
)

// Size is a width/height pair in pixels.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether s has no area.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Metrics is the contain-fit transform from design space to display space.
type Metrics struct {
	Scale   float64 `json:"scale"`
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
}

// Identity is the transform used when composing at native resolution.
var Identity = Metrics{Scale: 1}

// ComputeMetrics fits native inside canvas without cropping and centres it.
// It returns false when either size has no area.
func ComputeMetrics(canvas, native Size) (Metrics, bool) {
	if canvas.Empty() || native.Empty() {
		return Metrics{}, false
	}
	scale := math.Min(canvas.Width/native.Width, canvas.Height/native.Height)
	return Metrics{
		Scale:   scale,
		OriginX: canvas.Width/2 - native.Width*scale/2,
		OriginY: canvas.Height/2 - native.Height*scale/2,
	}, true
}

// Point maps a design-space point to display space.
func (m Metrics) Point(x, y float64) (float64, float64) {
	return m.OriginX + x*m.Scale, m.OriginY + y*m.Scale
}

// Unpoint maps a display-space point back to design space.
func (m Metrics) Unpoint(x, y float64) (float64, float64) {
	return (x - m.OriginX) / m.Scale, (y - m.OriginY) / m.Scale
}

// TextBox is the display geometry of a text overlay.
type TextBox struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	FontSize float64 `json:"font_size"`
}

// ProjectPlaceholder places a placeholder's text box on the display canvas.
func ProjectPlaceholder(p *catalog.Placeholder, m Metrics) TextBox {
	left, top := m.Point(p.X, p.Y)
	return TextBox{
		Left:     left,
		Top:      top,
		Width:    p.Width * m.Scale,
		FontSize: p.FontSize * m.Scale,
	}
}

// Unproject recovers the design-space box that projects to b under m.
func (m Metrics) Unproject(b TextBox) TextBox {
	x, y := m.Unpoint(b.Left, b.Top)
	return TextBox{
		Left:     x,
		Top:      y,
		Width:    b.Width / m.Scale,
		FontSize: b.FontSize / m.Scale,
	}
}

// BadgeBox is the display geometry of the badge image and its label.
type BadgeBox struct {
	ImageLeft    float64 `json:"image_left"`
	ImageTop     float64 `json:"image_top"`
	ImageScale   float64 `json:"image_scale"`
	TextLeft     float64 `json:"text_left"`
	TextTop      float64 `json:"text_top"`
	TextFontSize float64 `json:"text_font_size"`
	TextWidth    float64 `json:"text_width"`
}

// ProjectBadge places the badge pair. imageWidth is the badge image's own pixel
// width; a non-positive value leaves ImageScale at zero.
func ProjectBadge(b *catalog.BadgeDefinition, m Metrics, imageWidth float64) BadgeBox {
	box := BadgeBox{
		TextFontSize: b.FontSize * m.Scale,
		TextWidth:    b.TextWidth * m.Scale,
	}
	box.ImageLeft, box.ImageTop = m.Point(b.X, b.Y)
	if imageWidth > 0 {
		box.ImageScale = b.Width * m.Scale / imageWidth
	}
	box.TextLeft = m.OriginX + (b.X+b.Width)*m.Scale + b.TextOffsetX*m.Scale
	box.TextTop = m.OriginY + b.Y*m.Scale + b.TextOffsetY*m.Scale
	return box
}
