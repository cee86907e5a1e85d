// Package export rebuilds a session's composition at the background's native
// resolution, independent of the live display canvas, and rasterizes it.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/youruser/backdrop/internal/canvas"
	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/compose"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/layout"
)

// ErrPrecondition means there is nothing to export yet: no background is
// ready or its native size is unknown.
var ErrPrecondition = errors.New("export: no background loaded")

const (
	filenameSuffix = "-Personalised"
	ContentType    = "image/png"
)

// Engine renders exports.
type Engine struct {
	loader   imagepkg.Loader
	fonts    *imagepkg.Fonts
	badgeSrc string
	log      *zap.Logger
}

// NewEngine returns an export engine that fetches assets through loader.
func NewEngine(loader imagepkg.Loader, fonts *imagepkg.Fonts, badgeSrc string, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{loader: loader, fonts: fonts, badgeSrc: badgeSrc, log: log}
}

// Result is an encoded export ready to hand to the client.
type Result struct {
	Filename string
	Data     []byte
}

// Export renders st and encodes it as PNG.
func (e *Engine) Export(ctx context.Context, st compose.ExportState) (*Result, error) {
	img, err := e.Render(ctx, st.Background, st.Native, st.Overlays, st.Badge)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imagepkg.EncodePNG(&buf, img); err != nil {
		return nil, fmt.Errorf("export: encode: %w", err)
	}
	e.log.Info("export rendered",
		zap.String("background", st.Background.ID),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("bytes", buf.Len()),
	)
	return &Result{Filename: Filename(st.Background), Data: buf.Bytes()}, nil
}

// Render builds the native-resolution composition and rasterizes it. The
// offscreen canvas is disposed before returning.
func (e *Engine) Render(ctx context.Context, def *catalog.BackgroundDefinition, native layout.Size, overlays []canvas.Object, status catalog.BadgeStatus) (*image.NRGBA, error) {
	c, err := e.Compose(ctx, def, native, overlays, status)
	if err != nil {
		return nil, err
	}
	defer c.Dispose()

	img, err := imagepkg.Rasterize(c, e.fonts, color.Transparent)
	if err != nil {
		return nil, fmt.Errorf("export %q: %w", def.ID, err)
	}
	return img, nil
}

// Compose builds the offscreen canvas without rasterizing it. Text is placed
// from each overlay's placeholder, never from the overlay's display geometry.
func (e *Engine) Compose(ctx context.Context, def *catalog.BackgroundDefinition, native layout.Size, overlays []canvas.Object, status catalog.BadgeStatus) (*canvas.Canvas, error) {
	if def == nil || native.Empty() {
		return nil, ErrPrecondition
	}
	withBadge := status.Active() && def.Badge != nil

	var bgAsset, badgeAsset *imagepkg.Asset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := e.loader.Load(gctx, def.Source)
		bgAsset = a
		return err
	})
	if withBadge {
		g.Go(func() error {
			a, err := e.loader.Load(gctx, e.badgeSrc)
			badgeAsset = a
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export %q: %w", def.ID, err)
	}

	c := canvas.New(int(math.Round(native.Width)), int(math.Round(native.Height)))
	c.SetBackground(bgAsset.Image)
	c.PlaceBackground(canvas.Rect{Width: native.Width, Height: native.Height})

	for i := range overlays {
		p := overlays[i].Ref.Placeholder
		if overlays[i].Kind != canvas.KindText || p == nil {
			continue
		}
		t := canvas.NewText(p.ID, overlays[i].Text, canvas.PlaceholderStyle(p), canvas.DefinitionRef{Placeholder: p})
		canvas.PlaceText(t, layout.Identity)
		c.Add(t)
	}

	if withBadge {
		ref := canvas.DefinitionRef{Badge: def.Badge}
		img := canvas.NewImage(canvas.BadgeImageName, badgeAsset.Image, ref)
		text := canvas.NewText(canvas.BadgeTextName, status.Text(), canvas.BadgeStyle(def.Badge), ref)
		c.Add(img, text)
		canvas.PlaceBadge(img, text, layout.Identity)
	}
	return c, nil
}

// Filename derives the download name from the background's source:
// "backgrounds/Team-Dark.png" becomes "Team-Dark-Personalised.png".
func Filename(def *catalog.BackgroundDefinition) string {
	src := def.Source
	if u, err := url.Parse(src); err == nil && u.Scheme != "" {
		src = u.Path
	}
	base := path.Base(strings.ReplaceAll(src, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = def.ID
	}
	return base + filenameSuffix + ".png"
}
