// Package compose drives the live display canvas: background selection, text
// and badge overlays, and resize. All mutations are serialised by the
// renderer's mutex; asset fetches run outside it and re-enter with a request
// token so results for a superseded selection are dropped.
package compose

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"go.uber.org/zap"

	"github.com/youruser/backdrop/internal/canvas"
	"github.com/youruser/backdrop/internal/catalog"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/layout"
)

// State is the renderer's lifecycle state.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateError
)

var stateNames = [...]string{"empty", "loading", "ready", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ErrMissingDefinition is returned internally when an update names a
// placeholder the current background does not have. Callers never see it.
var ErrMissingDefinition = errors.New("compose: no such placeholder")

const badgeLoadFailed = "Failed to load the badge image. Please try again."

// DefaultMaxDimension bounds each canvas side when Options leaves it unset.
const DefaultMaxDimension = 8192

// Options configures a Renderer.
type Options struct {
	Loader      imagepkg.Loader
	BadgeSource string
	Logger      *zap.Logger
	// MaxWidth and MaxHeight clamp the display canvas.
	MaxWidth  int
	MaxHeight int
}

// Renderer owns one display canvas and the session state behind it.
type Renderer struct {
	mu sync.Mutex

	loader   imagepkg.Loader
	badgeSrc string
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	canvas *canvas.Canvas
	reg    *canvas.Registry

	state     State
	selected  *catalog.BackgroundDefinition
	native    layout.Size
	metrics   layout.Metrics
	metricsOK bool
	fields    map[string]string
	badge     catalog.BadgeStatus
	errMsg    string

	generation uint64
	badgeSeq   uint64
	badgeToken uint64

	pendingResize *image.Point
	maxW, maxH    int

	busy int
	idle chan struct{}
}

// New returns a renderer with an empty canvas of the given size.
func New(width, height int, opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxW, maxH := opts.MaxWidth, opts.MaxHeight
	if maxW <= 0 {
		maxW = DefaultMaxDimension
	}
	if maxH <= 0 {
		maxH = DefaultMaxDimension
	}
	width, height = clampSize(width, height, maxW, maxH)

	ctx, cancel := context.WithCancel(context.Background())
	c := canvas.New(width, height)
	idle := make(chan struct{})
	close(idle)
	return &Renderer{
		maxW:     maxW,
		maxH:     maxH,
		loader:   opts.Loader,
		badgeSrc: opts.BadgeSource,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		canvas:   c,
		reg:      canvas.NewRegistry(c),
		fields:   map[string]string{},
		idle:     idle,
	}
}

// Close abandons in-flight fetches. The renderer must not be used afterwards.
func (r *Renderer) Close() {
	r.cancel()
}

// track marks an async fetch as started and returns its completion func.
// r.mu must be held.
func (r *Renderer) track() func() {
	if r.busy == 0 {
		r.idle = make(chan struct{})
	}
	r.busy++
	return func() {
		r.mu.Lock()
		r.busy--
		if r.busy == 0 {
			close(r.idle)
		}
		r.mu.Unlock()
	}
}

// Wait blocks until every in-flight fetch has been applied or dropped.
func (r *Renderer) Wait(ctx context.Context) error {
	r.mu.Lock()
	idle := r.idle
	r.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SelectBackground clears the canvas and starts loading def. Any earlier
// selection still loading is superseded.
func (r *Renderer) SelectBackground(def *catalog.BackgroundDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.generation++
	gen := r.generation
	r.reg.Clear()
	r.canvas.SetBackground(nil)
	r.selected = def
	r.state = StateLoading
	r.errMsg = ""
	r.native = layout.Size{}
	r.metricsOK = false
	r.badgeToken = 0

	r.log.Debug("background selected", zap.String("background", def.ID), zap.Uint64("generation", gen))

	done := r.track()
	go func() {
		defer done()
		asset, err := r.loader.Load(r.ctx, def.Source)
		r.backgroundLoaded(gen, def, asset, err)
	}()
}

func (r *Renderer) backgroundLoaded(gen uint64, def *catalog.BackgroundDefinition, asset *imagepkg.Asset, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || r.selected != def {
		r.log.Debug("stale background load dropped", zap.String("background", def.ID), zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		r.state = StateError
		r.errMsg = fmt.Sprintf("Failed to load image: %s. Please try a different image.", def.Name)
		r.log.Warn("background load failed", zap.String("background", def.ID), zap.Error(err))
		return
	}

	r.canvas.SetBackground(asset.Image)
	if def.HasNativeSize() {
		r.native = layout.Size{Width: float64(def.NativeWidth), Height: float64(def.NativeHeight)}
	} else {
		r.native = layout.Size{Width: float64(asset.Width), Height: float64(asset.Height)}
	}
	r.state = StateReady
	r.relayout()

	for i := range def.Placeholders {
		p := &def.Placeholders[i]
		if v := r.fields[p.ID]; v != "" {
			r.reg.UpsertText(p.ID, v, p, r.metrics, r.metricsOK)
		}
	}
	if r.badge.Active() && def.Badge != nil {
		r.startBadgeAdd()
	}
	r.log.Info("background ready",
		zap.String("background", def.ID),
		zap.Float64("native_width", r.native.Width),
		zap.Float64("native_height", r.native.Height),
	)
}

// relayout recomputes metrics and re-places the background and every overlay.
// r.mu must be held.
func (r *Renderer) relayout() {
	w, h := r.canvas.Size()
	m, ok := layout.ComputeMetrics(layout.Size{Width: float64(w), Height: float64(h)}, r.native)
	r.metrics, r.metricsOK = m, ok
	if !ok {
		return
	}
	r.canvas.PlaceBackground(canvas.Rect{
		Left:   m.OriginX,
		Top:    m.OriginY,
		Width:  r.native.Width * m.Scale,
		Height: r.native.Height * m.Scale,
	})
	r.reg.Layout(m)
}

// SetFieldText records text for placeholder id and shows it. Ids the current
// background does not define are ignored.
func (r *Renderer) SetFieldText(id, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fields[id] = text
	if r.state != StateReady {
		return
	}
	if err := r.upsertField(id, text); err != nil {
		r.log.Debug("field update ignored", zap.String("field", id), zap.Error(err))
	}
}

func (r *Renderer) upsertField(id, text string) error {
	p := r.selected.Placeholder(id)
	if p == nil {
		return fmt.Errorf("%w: %q on background %q", ErrMissingDefinition, id, r.selected.ID)
	}
	if _, exists := r.reg.Find(id); !exists && text == "" {
		return nil
	}
	if _, created := r.reg.UpsertText(id, text, p, r.metrics, r.metricsOK); created {
		r.relayout()
	}
	return nil
}

// SetBadgeStatus shows, relabels or removes the badge pair.
func (r *Renderer) SetBadgeStatus(status catalog.BadgeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.badge = status
	if r.state != StateReady || r.selected.Badge == nil {
		return
	}
	if !status.Active() {
		r.reg.RemoveBadge()
		r.badgeToken = 0
		return
	}
	img, text := r.reg.Badge()
	if img != nil && text != nil {
		text.Text = status.Text()
		return
	}
	r.reg.RemoveBadge()
	if r.badgeToken != 0 {
		// an add is already in flight and labels itself with the status current
		// when it lands
		return
	}
	r.startBadgeAdd()
}

// startBadgeAdd fetches the badge image. r.mu must be held.
func (r *Renderer) startBadgeAdd() {
	r.badgeSeq++
	tok := r.badgeSeq
	r.badgeToken = tok
	gen := r.generation
	def := r.selected

	done := r.track()
	go func() {
		defer done()
		asset, err := r.loader.Load(r.ctx, r.badgeSrc)
		r.badgeLoaded(gen, tok, def, asset, err)
	}()
}

func (r *Renderer) badgeLoaded(gen, tok uint64, def *catalog.BackgroundDefinition, asset *imagepkg.Asset, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation || tok != r.badgeToken {
		r.log.Debug("stale badge load dropped", zap.Uint64("generation", gen))
		return
	}
	r.badgeToken = 0
	if err != nil {
		r.errMsg = badgeLoadFailed
		r.log.Warn("badge load failed", zap.String("src", r.badgeSrc), zap.Error(err))
		return
	}
	if r.errMsg == badgeLoadFailed {
		r.errMsg = ""
	}
	if !r.badge.Active() || r.state != StateReady {
		return
	}

	r.reg.RemoveBadge()
	ref := canvas.DefinitionRef{Badge: def.Badge}
	img := canvas.NewImage(canvas.BadgeImageName, asset.Image, ref)
	text := canvas.NewText(canvas.BadgeTextName, r.badge.Text(), canvas.BadgeStyle(def.Badge), ref)
	r.reg.Add(img, text)
	if r.metricsOK {
		canvas.PlaceBadge(img, text, r.metrics)
	}
}

// Resize changes the canvas size and re-places everything at once.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resize(width, height)
}

func clampSize(width, height, maxW, maxH int) (int, int) {
	return max(0, min(width, maxW)), max(0, min(height, maxH))
}

func (r *Renderer) resize(width, height int) {
	r.pendingResize = nil
	width, height = clampSize(width, height, r.maxW, r.maxH)
	r.canvas.SetDimensions(width, height)
	if r.state == StateReady {
		r.relayout()
	}
}

// RequestResize records a size to apply on the next Frame. Only the latest
// request survives.
func (r *Renderer) RequestResize(width, height int) {
	r.mu.Lock()
	r.pendingResize = &image.Point{X: width, Y: height}
	r.mu.Unlock()
}

// Frame applies a pending resize, reporting whether there was one.
func (r *Renderer) Frame() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame()
}

func (r *Renderer) frame() bool {
	p := r.pendingResize
	if p == nil {
		return false
	}
	r.resize(p.X, p.Y)
	return true
}

// Preview applies any pending resize and rasterizes the display canvas.
func (r *Renderer) Preview(fonts *imagepkg.Fonts, fill color.Color) (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame()
	return imagepkg.Rasterize(r.canvas, fonts, fill)
}
