package imagepkg

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Fonts maps family names to parsed fonts. Unknown families fall back to Go
// Regular, which also stands in for the generic "sans-serif".
type Fonts struct {
	mu       sync.RWMutex
	families map[string]*opentype.Font
	fallback *opentype.Font
}

// NewFonts returns a registry with only the fallback font.
func NewFonts() (*Fonts, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse fallback font: %w", err)
	}
	return &Fonts{families: map[string]*opentype.Font{}, fallback: f}, nil
}

func familyKey(family string) string {
	return strings.ToLower(strings.TrimSpace(family))
}

// Register parses TrueType/OpenType data under family.
func (f *Fonts) Register(family string, data []byte) error {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", family, err)
	}
	f.mu.Lock()
	f.families[familyKey(family)] = parsed
	f.mu.Unlock()
	return nil
}

// RegisterFile reads and registers a font file.
func (f *Fonts) RegisterFile(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %q: %w", family, err)
	}
	return f.Register(family, data)
}

// Lookup returns the font for family, or the fallback.
func (f *Fonts) Lookup(family string) *opentype.Font {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if parsed, ok := f.families[familyKey(family)]; ok {
		return parsed
	}
	return f.fallback
}

type faceKey struct {
	font *opentype.Font
	size float64
}

// faceSet creates faces on demand for a single rasterization and closes them
// all when done.
type faceSet struct {
	fonts *Fonts
	faces map[faceKey]font.Face
}

func (f *Fonts) newFaceSet() *faceSet {
	return &faceSet{fonts: f, faces: map[faceKey]font.Face{}}
}

func (s *faceSet) face(family string, size float64) (font.Face, error) {
	key := faceKey{font: s.fonts.Lookup(family), size: size}
	if face, ok := s.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(key.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("create face %q at %.2f: %w", family, size, err)
	}
	s.faces[key] = face
	return face, nil
}

func (s *faceSet) Close() {
	for k, face := range s.faces {
		_ = face.Close()
		delete(s.faces, k)
	}
}
