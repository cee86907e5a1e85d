package catalog

// Align is the horizontal alignment of a text box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Placeholder is a text slot on a background, in the background's native pixels.
type Placeholder struct {
	ID         string  `yaml:"id" json:"id"`
	X          float64 `yaml:"x" json:"x"`
	Y          float64 `yaml:"y" json:"y"`
	Width      float64 `yaml:"width" json:"width"`
	FontFamily string  `yaml:"font" json:"font"`
	FontSize   float64 `yaml:"font_size" json:"font_size"`
	Fill       string  `yaml:"fill" json:"fill"`
	Align      Align   `yaml:"align" json:"align"`
}

// BadgeDefinition places the badge image and its label, in native pixels.
// The label is anchored to the right edge of the image.
type BadgeDefinition struct {
	X           float64 `yaml:"x" json:"x"`
	Y           float64 `yaml:"y" json:"y"`
	Width       float64 `yaml:"width" json:"width"`
	TextOffsetX float64 `yaml:"text_offset_x" json:"text_offset_x"`
	TextOffsetY float64 `yaml:"text_offset_y" json:"text_offset_y"`
	FontFamily  string  `yaml:"font" json:"font"`
	FontSize    float64 `yaml:"font_size" json:"font_size"`
	Fill        string  `yaml:"fill" json:"fill"`
	Align       Align   `yaml:"align" json:"align"`
	TextWidth   float64 `yaml:"text_width" json:"text_width"`
	LineHeight  float64 `yaml:"line_height" json:"line_height"`
}

// BackgroundDefinition is one selectable background.
type BackgroundDefinition struct {
	ID           string           `yaml:"id" json:"id"`
	Name         string           `yaml:"name" json:"name"`
	Source       string           `yaml:"src" json:"src"`
	NativeWidth  int              `yaml:"native_width,omitempty" json:"native_width,omitempty"`
	NativeHeight int              `yaml:"native_height,omitempty" json:"native_height,omitempty"`
	Placeholders []Placeholder    `yaml:"placeholders" json:"placeholders"`
	Badge        *BadgeDefinition `yaml:"badge,omitempty" json:"badge,omitempty"`
}

// Placeholder returns the placeholder with the given id, or nil.
func (b *BackgroundDefinition) Placeholder(id string) *Placeholder {
	for i := range b.Placeholders {
		if b.Placeholders[i].ID == id {
			return &b.Placeholders[i]
		}
	}
	return nil
}

// HasNativeSize reports whether the native dimensions are known statically.
func (b *BackgroundDefinition) HasNativeSize() bool {
	return b.NativeWidth > 0 && b.NativeHeight > 0
}
