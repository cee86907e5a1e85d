package compose

import (
	"github.com/youruser/backdrop/internal/canvas"
	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/layout"
)

// OverlayView is a read-only copy of a live overlay.
type OverlayView struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	Text     string  `json:"text,omitempty"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
}

// Snapshot is the state a client needs to reflect the session.
type Snapshot struct {
	State        State               `json:"state"`
	BackgroundID string              `json:"background_id,omitempty"`
	Error        string              `json:"error,omitempty"`
	Badge        catalog.BadgeStatus `json:"badge"`
	Fields       map[string]string   `json:"fields"`
	Canvas       layout.Size         `json:"canvas"`
	Native       layout.Size         `json:"native"`
	Metrics      *layout.Metrics     `json:"metrics,omitempty"`
	Overlays     []OverlayView       `json:"overlays"`
}

// Snapshot copies the current session state.
func (r *Renderer) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := r.canvas.Size()
	s := Snapshot{
		State:    r.state,
		Error:    r.errMsg,
		Badge:    r.badge,
		Fields:   make(map[string]string, len(r.fields)),
		Canvas:   layout.Size{Width: float64(w), Height: float64(h)},
		Native:   r.native,
		Overlays: []OverlayView{},
	}
	if r.selected != nil {
		s.BackgroundID = r.selected.ID
	}
	for k, v := range r.fields {
		s.Fields[k] = v
	}
	if r.metricsOK {
		m := r.metrics
		s.Metrics = &m
	}
	for _, o := range r.canvas.Objects() {
		s.Overlays = append(s.Overlays, OverlayView{
			Name:     o.Name,
			Kind:     o.Kind.String(),
			Text:     o.Text,
			Left:     o.Left,
			Top:      o.Top,
			Width:    o.Width,
			FontSize: o.FontSize,
			ScaleX:   o.ScaleX,
			ScaleY:   o.ScaleY,
		})
	}
	return s
}

// ExportState is what the export engine reads from a session.
type ExportState struct {
	Background *catalog.BackgroundDefinition
	Native     layout.Size
	Overlays   []canvas.Object
	Badge      catalog.BadgeStatus
}

// ExportState copies the selection, native size, live overlays and badge
// status. The overlays are value copies; the live canvas is not shared.
func (r *Renderer) ExportState() ExportState {
	r.mu.Lock()
	defer r.mu.Unlock()

	es := ExportState{Native: r.native, Badge: r.badge}
	if r.state == StateReady {
		es.Background = r.selected
	}
	for _, o := range r.canvas.Objects() {
		es.Overlays = append(es.Overlays, *o)
	}
	return es
}
