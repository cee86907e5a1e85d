package imagepkg

import (
	"image"
	"image/draw"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/youruser/backdrop/internal/canvas"
	"github.com/youruser/backdrop/internal/catalog"
)

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func measure(face font.Face, s string) float64 {
	return toFloat(font.MeasureString(face, s))
}

// wrapLines splits text on newlines and then greedily on spaces so each line
// fits width. A single word wider than width gets a line of its own.
func wrapLines(face font.Face, text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 || width <= 0 {
			lines = append(lines, strings.TrimSpace(para))
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			candidate := line + " " + w
			if measure(face, candidate) <= width {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

func alignOffset(align catalog.Align, boxWidth, lineWidth float64) float64 {
	if boxWidth <= 0 {
		return 0
	}
	switch align {
	case catalog.AlignCenter:
		return (boxWidth - lineWidth) / 2
	case catalog.AlignRight:
		return boxWidth - lineWidth
	}
	return 0
}

// drawText paints a text object with its top-left corner at (Left, Top).
func drawText(dst draw.Image, o *canvas.Object, faces *faceSet) error {
	size := o.FontSize * o.ScaleY
	if o.Text == "" || size <= 0 {
		return nil
	}
	col, err := ParseHexColor(o.Style.Fill)
	if err != nil {
		return err
	}
	face, err := faces.face(o.Style.FontFamily, size)
	if err != nil {
		return err
	}

	width := o.Width * o.ScaleX
	ascent := toFloat(face.Metrics().Ascent)
	advance := size * o.Style.LineHeight
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: face}
	for i, line := range wrapLines(face, o.Text, width) {
		if line == "" {
			continue
		}
		x := o.Left + alignOffset(o.Style.Align, width, measure(face, line))
		y := o.Top + ascent + float64(i)*advance
		d.Dot = fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
		d.DrawString(line)
	}
	return nil
}
