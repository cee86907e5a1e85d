package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the immutable table of backgrounds.
type Catalog struct {
	backgrounds []BackgroundDefinition
	byID        map[string]int
}

type fileCatalog struct {
	Defaults    Defaults               `yaml:"defaults"`
	Backgrounds []BackgroundDefinition `yaml:"backgrounds"`
}

// Load reads a catalog file. An empty path or a missing file yields the bundled
// table, so a fresh checkout runs without any catalog on disk.
func Load(path string, defaults Defaults) (*Catalog, bool, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Builtin(defaults), false, nil
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Builtin(defaults), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog %q: %w", path, err)
	}
	c, err := Parse(content, defaults)
	if err != nil {
		return nil, false, fmt.Errorf("catalog %q: %w", path, err)
	}
	return c, true, nil
}

// Parse decodes a YAML catalog. Defaults declared in the file take precedence over
// the ones passed in.
func Parse(content []byte, defaults Defaults) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	var raw fileCatalog
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(raw.Backgrounds) == 0 {
		return nil, errors.New("no backgrounds defined")
	}
	return newCatalog(raw.Backgrounds, defaults.merge(raw.Defaults))
}

func newCatalog(bgs []BackgroundDefinition, defaults Defaults) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(bgs))}
	for _, bg := range bgs {
		bg.ID = strings.TrimSpace(bg.ID)
		if bg.ID == "" {
			return nil, fmt.Errorf("background %q has no id", bg.Name)
		}
		if _, dup := c.byID[bg.ID]; dup {
			return nil, fmt.Errorf("duplicate background id %q", bg.ID)
		}
		if strings.TrimSpace(bg.Source) == "" {
			return nil, fmt.Errorf("background %q has no src", bg.ID)
		}
		if bg.NativeWidth < 0 || bg.NativeHeight < 0 {
			return nil, fmt.Errorf("background %q has negative native size", bg.ID)
		}
		if bg.Name == "" {
			bg.Name = bg.ID
		}

		seen := map[string]bool{}
		phs := make([]Placeholder, 0, len(bg.Placeholders))
		for _, p := range bg.Placeholders {
			if p.ID == "" {
				return nil, fmt.Errorf("background %q: placeholder without id", bg.ID)
			}
			if seen[p.ID] {
				return nil, fmt.Errorf("background %q: duplicate placeholder id %q", bg.ID, p.ID)
			}
			seen[p.ID] = true
			p = fillPlaceholder(p, defaults.Placeholder)
			if err := validateStyle(p.Align, p.Fill); err != nil {
				return nil, fmt.Errorf("background %q placeholder %q: %w", bg.ID, p.ID, err)
			}
			phs = append(phs, p)
		}
		bg.Placeholders = phs

		if bg.Badge != nil {
			b := fillBadge(*bg.Badge, defaults.Badge)
			if b.Width <= 0 {
				return nil, fmt.Errorf("background %q: badge width must be positive", bg.ID)
			}
			if err := validateStyle(b.Align, b.Fill); err != nil {
				return nil, fmt.Errorf("background %q badge: %w", bg.ID, err)
			}
			bg.Badge = &b
		}

		c.byID[bg.ID] = len(c.backgrounds)
		c.backgrounds = append(c.backgrounds, bg)
	}
	return c, nil
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

func validateStyle(a Align, fill string) error {
	switch a {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return fmt.Errorf("unknown align %q", a)
	}
	if !hexColor.MatchString(fill) {
		return fmt.Errorf("fill %q is not a hex color", fill)
	}
	return nil
}

// Get returns the background with the given id.
func (c *Catalog) Get(id string) (*BackgroundDefinition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	return &c.backgrounds[i], true
}

// All returns every background in catalog order.
func (c *Catalog) All() []BackgroundDefinition {
	out := make([]BackgroundDefinition, len(c.backgrounds))
	copy(out, c.backgrounds)
	return out
}

// Len returns the number of backgrounds.
func (c *Catalog) Len() int { return len(c.backgrounds) }
