package imagepkg

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/youruser/backdrop/internal/canvas"
)

// Rasterize paints the canvas into a new image of the canvas size: fill, then
// the background, then every object in paint order.
func Rasterize(c *canvas.Canvas, fonts *Fonts, fill color.Color) (*image.NRGBA, error) {
	w, h := c.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rasterize: empty canvas %dx%d", w, h)
	}
	dst := imaging.New(w, h, fill)

	if bg, r := c.Background(); bg != nil {
		dst = overlay(dst, bg, r)
	}

	faces := fonts.newFaceSet()
	defer faces.Close()
	for _, o := range c.Objects() {
		switch o.Kind {
		case canvas.KindImage:
			if o.Image == nil {
				continue
			}
			iw, ih := o.ImageSize()
			dst = overlay(dst, o.Image, canvas.Rect{
				Left:   o.Left,
				Top:    o.Top,
				Width:  float64(iw) * o.ScaleX,
				Height: float64(ih) * o.ScaleY,
			})
		case canvas.KindText:
			if err := drawText(dst, o, faces); err != nil {
				return nil, fmt.Errorf("rasterize %q: %w", o.Name, err)
			}
		}
	}
	return dst, nil
}

// overlay resamples src to r and alpha-blends it onto dst.
func overlay(dst *image.NRGBA, src image.Image, r canvas.Rect) *image.NRGBA {
	w, h := int(math.Round(r.Width)), int(math.Round(r.Height))
	if w <= 0 || h <= 0 {
		return dst
	}
	if b := src.Bounds(); b.Dx() != w || b.Dy() != h {
		src = imaging.Resize(src, w, h, imaging.Lanczos)
	}
	return imaging.Overlay(dst, src, image.Pt(int(math.Round(r.Left)), int(math.Round(r.Top))), 1.0)
}

// EncodePNG writes img losslessly.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}

// Thumbnail crops and scales img to exactly width x height.
func Thumbnail(img image.Image, width, height int) *image.NRGBA {
	return imaging.Thumbnail(img, width, height, imaging.Lanczos)
}
