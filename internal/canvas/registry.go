package canvas

import (
	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/layout"
)

// Names of the badge pair. Text overlays are named after their placeholder id.
const (
	BadgeImageName = "badge-image"
	BadgeTextName  = "badge-text"
)

// Registry tracks the overlays on a canvas by name. It never infers a
// definition from geometry: each overlay is placed from its Ref.
type Registry struct {
	canvas *Canvas

	created int
	removed int
}

// NewRegistry wraps c.
func NewRegistry(c *Canvas) *Registry {
	return &Registry{canvas: c}
}

// Canvas returns the handle the registry manages.
func (r *Registry) Canvas() *Canvas { return r.canvas }

// Find returns the overlay with the given name.
func (r *Registry) Find(name string) (*Object, bool) {
	for _, o := range r.canvas.objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// UpsertText sets the content of the overlay named id. An existing overlay only
// has its text replaced; a new one is bound to p, added, and placed with m when
// ok is true. created reports which path was taken.
func (r *Registry) UpsertText(id, content string, p *catalog.Placeholder, m layout.Metrics, ok bool) (obj *Object, created bool) {
	if o, found := r.Find(id); found {
		o.Text = content
		return o, false
	}
	o := NewText(id, content, PlaceholderStyle(p), DefinitionRef{Placeholder: p})
	r.Add(o)
	if ok {
		PlaceText(o, m)
	}
	return o, true
}

// Add puts objects on the canvas and counts them as created.
func (r *Registry) Add(objs ...*Object) {
	r.canvas.Add(objs...)
	r.created += len(objs)
}

// Remove deletes the overlay named name. Missing names are ignored.
func (r *Registry) Remove(name string) bool {
	o, found := r.Find(name)
	if !found {
		return false
	}
	r.canvas.Remove(o)
	r.removed++
	return true
}

// Clear removes every overlay.
func (r *Registry) Clear() {
	r.removed += len(r.canvas.objects)
	r.canvas.objects = nil
}

// Badge returns whichever halves of the badge pair are present.
func (r *Registry) Badge() (img, text *Object) {
	img, _ = r.Find(BadgeImageName)
	text, _ = r.Find(BadgeTextName)
	return img, text
}

// RemoveBadge deletes both halves of the badge pair.
func (r *Registry) RemoveBadge() {
	r.Remove(BadgeImageName)
	r.Remove(BadgeTextName)
}

// Counts returns how many overlays have been created and removed so far.
func (r *Registry) Counts() (created, removed int) { return r.created, r.removed }

// Layout re-places every overlay from its definition.
func (r *Registry) Layout(m layout.Metrics) {
	img, text := r.Badge()
	for _, o := range r.canvas.objects {
		if o.Ref.Kind() == RefPlaceholder {
			PlaceText(o, m)
		}
	}
	PlaceBadge(img, text, m)
}

// PlaceText positions a placeholder-bound text object. Scale is baked into the
// geometry and the object's own scale reset to 1.
func PlaceText(o *Object, m layout.Metrics) {
	if o == nil || o.Ref.Placeholder == nil {
		return
	}
	box := layout.ProjectPlaceholder(o.Ref.Placeholder, m)
	o.Left, o.Top, o.Width, o.FontSize = box.Left, box.Top, box.Width, box.FontSize
	o.ScaleX, o.ScaleY = 1, 1
}

// PlaceBadge positions the badge pair from the definition carried by either
// half. Missing halves are skipped.
func PlaceBadge(img, text *Object, m layout.Metrics) {
	def := badgeRef(img, text)
	if def == nil {
		return
	}
	var imgWidth float64
	if img != nil {
		w, _ := img.ImageSize()
		imgWidth = float64(w)
	}
	box := layout.ProjectBadge(def, m, imgWidth)
	if img != nil && box.ImageScale > 0 {
		img.Left, img.Top = box.ImageLeft, box.ImageTop
		img.ScaleX, img.ScaleY = box.ImageScale, box.ImageScale
	}
	if text != nil {
		text.Left, text.Top = box.TextLeft, box.TextTop
		text.FontSize, text.Width = box.TextFontSize, box.TextWidth
		text.ScaleX, text.ScaleY = 1, 1
	}
}

func badgeRef(objs ...*Object) *catalog.BadgeDefinition {
	for _, o := range objs {
		if o != nil && o.Ref.Badge != nil {
			return o.Ref.Badge
		}
	}
	return nil
}
