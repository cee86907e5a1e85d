// Package canvas holds the explicit canvas handle, its drawable objects and
// the overlay registry that tracks them by name.
package canvas

import "image"

// Canvas is an ordered display list with a background image. Every component
// that draws receives the handle explicitly; there is no global canvas.
type Canvas struct {
	width  int
	height int

	background image.Image
	bgRect     Rect

	objects []*Object
}

// New returns an empty canvas of the given pixel size.
func New(width, height int) *Canvas {
	return &Canvas{width: width, height: height}
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) { return c.width, c.height }

// SetDimensions changes the canvas size. Objects are not moved.
func (c *Canvas) SetDimensions(width, height int) {
	c.width, c.height = width, height
}

// Rect is a floating-point placement on the canvas.
type Rect struct {
	Left, Top, Width, Height float64
}

// SetBackground sets the background image at its own pixel size in the top-left
// corner; nil removes it.
func (c *Canvas) SetBackground(img image.Image) {
	c.background = img
	c.bgRect = Rect{}
	if img != nil {
		b := img.Bounds()
		c.bgRect = Rect{Width: float64(b.Dx()), Height: float64(b.Dy())}
	}
}

// PlaceBackground sets where the background is drawn.
func (c *Canvas) PlaceBackground(r Rect) { c.bgRect = r }

// Background returns the background image and its placement.
func (c *Canvas) Background() (image.Image, Rect) { return c.background, c.bgRect }

// Add appends objects in paint order.
func (c *Canvas) Add(objs ...*Object) {
	c.objects = append(c.objects, objs...)
}

// Remove deletes o if present.
func (c *Canvas) Remove(o *Object) bool {
	for i, cur := range c.objects {
		if cur == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return true
		}
	}
	return false
}

// Objects returns the live objects in paint order. The slice is a copy; the
// objects are not.
func (c *Canvas) Objects() []*Object {
	out := make([]*Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// Len returns the number of objects.
func (c *Canvas) Len() int { return len(c.objects) }

// Dispose drops the background and every object.
func (c *Canvas) Dispose() {
	c.background = nil
	for i := range c.objects {
		c.objects[i] = nil
	}
	c.objects = nil
}
