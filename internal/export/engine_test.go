package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/youruser/backdrop/internal/canvas"
	"github.com/youruser/backdrop/internal/catalog"
	"github.com/youruser/backdrop/internal/compose"
	imagepkg "github.com/youruser/backdrop/internal/image"
	"github.com/youruser/backdrop/internal/layout"
)

const badgeSrc = "overlays/badge.png"

type fakeLoader struct {
	mu    sync.Mutex
	sizes map[string]image.Point
}

func (f *fakeLoader) Load(ctx context.Context, src string) (*imagepkg.Asset, error) {
	f.mu.Lock()
	size, ok := f.sizes[src]
	f.mu.Unlock()
	if !ok {
		return nil, &imagepkg.AssetLoadError{Resource: src, Err: errors.New("not found")}
	}
	img := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	return &imagepkg.Asset{Source: src, Image: img, Width: size.X, Height: size.Y}, nil
}

func newLoader() *fakeLoader {
	return &fakeLoader{sizes: map[string]image.Point{
		"backgrounds/Team-Dark.png": {X: 100, Y: 50},
		badgeSrc:                    {X: 20, Y: 20},
	}}
}

func testDefinition(t *testing.T) *catalog.BackgroundDefinition {
	t.Helper()
	c, err := catalog.Parse([]byte(`
backgrounds:
  - id: dark
    name: Team Dark
    src: backgrounds/Team-Dark.png
    placeholders:
      - {id: name, x: 10, y: 5, width: 60, font_size: 8}
      - {id: title, x: 10, y: 20, width: 60, font_size: 5}
    badge: {x: 70, y: 30, width: 10, text_offset_x: 2, text_offset_y: 1, font_size: 4}
`), catalog.BuiltinDefaults())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	def, _ := c.Get("dark")
	return def
}

func newEngine(t *testing.T, loader imagepkg.Loader) *Engine {
	t.Helper()
	fonts, err := imagepkg.NewFonts()
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(loader, fonts, badgeSrc, nil)
}

func settle(t *testing.T, r *compose.Renderer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func find(c *canvas.Canvas, name string) *canvas.Object {
	for _, o := range c.Objects() {
		if o.Name == name {
			return o
		}
	}
	return nil
}

func TestComposeUsesNativeGeometry(t *testing.T) {
	loader := newLoader()
	def := testDefinition(t)

	r := compose.New(1000, 500, compose.Options{Loader: loader, BadgeSource: badgeSrc})
	defer r.Close()
	r.SelectBackground(def)
	settle(t, r)
	r.SetFieldText("name", "Jane Doe")
	r.SetBadgeStatus(catalog.BadgeLearner)
	settle(t, r)
	r.Resize(333, 77)

	st := r.ExportState()
	c, err := newEngine(t, loader).Compose(context.Background(), st.Background, st.Native, st.Overlays, st.Badge)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	defer c.Dispose()

	if w, h := c.Size(); w != 100 || h != 50 {
		t.Errorf("canvas size = %dx%d, want 100x50", w, h)
	}
	_, rect := c.Background()
	if rect != (canvas.Rect{Width: 100, Height: 50}) {
		t.Errorf("background rect = %+v", rect)
	}

	name := find(c, "name")
	if name == nil {
		t.Fatal("name overlay missing")
	}
	if name.Text != "Jane Doe" || name.Left != 10 || name.Top != 5 || name.FontSize != 8 || name.Width != 60 {
		t.Errorf("name overlay = %+v", name)
	}
	if find(c, "title") != nil {
		t.Error("empty title exported")
	}

	img, text := find(c, canvas.BadgeImageName), find(c, canvas.BadgeTextName)
	if img == nil || text == nil {
		t.Fatal("badge pair missing")
	}
	if img.Left != 70 || img.Top != 30 || img.ScaleX != 0.5 {
		t.Errorf("badge image = left %v top %v scale %v", img.Left, img.Top, img.ScaleX)
	}
	if text.Left != 82 || text.Top != 31 || text.Text != catalog.BadgeLearner.Text() {
		t.Errorf("badge text = %+v", text)
	}
}

func TestComposeWithoutBadge(t *testing.T) {
	def := testDefinition(t)
	overlays := []canvas.Object{*canvas.NewText("name", "A", canvas.PlaceholderStyle(def.Placeholder("name")),
		canvas.DefinitionRef{Placeholder: def.Placeholder("name")})}

	c, err := newEngine(t, newLoader()).Compose(context.Background(), def, layout.Size{Width: 100, Height: 50}, overlays, catalog.BadgeNone)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("objects = %d, want 1", c.Len())
	}
}

func TestPrecondition(t *testing.T) {
	e := newEngine(t, newLoader())
	def := testDefinition(t)
	tests := []struct {
		name   string
		def    *catalog.BackgroundDefinition
		native layout.Size
	}{
		{"no background", nil, layout.Size{Width: 10, Height: 10}},
		{"no native size", def, layout.Size{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Render(context.Background(), tt.def, tt.native, nil, catalog.BadgeNone)
			if !errors.Is(err, ErrPrecondition) {
				t.Errorf("Render() error = %v, want ErrPrecondition", err)
			}
		})
	}

	r := compose.New(10, 10, compose.Options{Loader: newLoader()})
	defer r.Close()
	if _, err := e.Export(context.Background(), r.ExportState()); !errors.Is(err, ErrPrecondition) {
		t.Errorf("Export() before selection error = %v", err)
	}
}

func TestExportEncodesNativePNG(t *testing.T) {
	loader := newLoader()
	def := testDefinition(t)
	st := compose.ExportState{Background: def, Native: layout.Size{Width: 100, Height: 50}, Badge: catalog.BadgeFluent}

	res, err := newEngine(t, loader).Export(context.Background(), st)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if res.Filename != "Team-Dark-Personalised.png" {
		t.Errorf("Filename = %q", res.Filename)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("png = %dx%d, want 100x50", cfg.Width, cfg.Height)
	}
}

func TestExportLoadFailure(t *testing.T) {
	def := testDefinition(t)
	loader := &fakeLoader{sizes: map[string]image.Point{}}
	_, err := newEngine(t, loader).Render(context.Background(), def, layout.Size{Width: 100, Height: 50}, nil, catalog.BadgeNone)
	var le *imagepkg.AssetLoadError
	if !errors.As(err, &le) {
		t.Errorf("Render() error = %v, want AssetLoadError", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		src, id, want string
	}{
		{"backgrounds/DHCWTeamsBackground-Blue.png", "1", "DHCWTeamsBackground-Blue-Personalised.png"},
		{"https://cdn.example.com/img/Wave.jpg?v=3", "2", "Wave-Personalised.png"},
		{"plain", "3", "plain-Personalised.png"},
		{`dir\win.png`, "4", "win-Personalised.png"},
		{"", "5", "5-Personalised.png"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Filename(&catalog.BackgroundDefinition{ID: tt.id, Source: tt.src})
			if got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}
