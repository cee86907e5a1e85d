package catalog

const (
	DefaultFontFamily       = "Sans-serif"
	DefaultFill             = "#ffffff"
	DefaultAlign            = AlignLeft
	DefaultNameFontSize     = 90
	DefaultTitleFontSize    = 50
	DefaultPlaceholderWidth = 1800

	DefaultBadgeWidth       = 200
	DefaultBadgeTextOffsetX = 75
	DefaultBadgeTextOffsetY = 50
	DefaultBadgeFontSize    = 45
	DefaultBadgeTextWidth   = 50
	DefaultBadgeLineHeight  = 1.1
)

// Defaults fill zero-valued fields of placeholders and badges.
type Defaults struct {
	Placeholder Placeholder     `yaml:"placeholder"`
	Badge       BadgeDefinition `yaml:"badge"`
}

// BuiltinDefaults returns the stock styling used by the bundled backgrounds.
func BuiltinDefaults() Defaults {
	return Defaults{
		Placeholder: Placeholder{
			Width:      DefaultPlaceholderWidth,
			FontFamily: DefaultFontFamily,
			FontSize:   DefaultTitleFontSize,
			Fill:       DefaultFill,
			Align:      DefaultAlign,
		},
		Badge: BadgeDefinition{
			Width:       DefaultBadgeWidth,
			TextOffsetX: DefaultBadgeTextOffsetX,
			TextOffsetY: DefaultBadgeTextOffsetY,
			FontFamily:  DefaultFontFamily,
			FontSize:    DefaultBadgeFontSize,
			Fill:        DefaultFill,
			Align:       DefaultAlign,
			TextWidth:   DefaultBadgeTextWidth,
			LineHeight:  DefaultBadgeLineHeight,
		},
	}
}

// merge returns d with every zero field of override taking d's value.
func (d Defaults) merge(override Defaults) Defaults {
	out := d
	out.Placeholder = fillPlaceholder(override.Placeholder, d.Placeholder)
	out.Badge = fillBadge(override.Badge, d.Badge)
	return out
}

func fillPlaceholder(p, def Placeholder) Placeholder {
	if p.Width == 0 {
		p.Width = def.Width
	}
	if p.FontFamily == "" {
		p.FontFamily = def.FontFamily
	}
	if p.FontSize == 0 {
		p.FontSize = def.FontSize
	}
	if p.Fill == "" {
		p.Fill = def.Fill
	}
	if p.Align == "" {
		p.Align = def.Align
	}
	return p
}

func fillBadge(b, def BadgeDefinition) BadgeDefinition {
	if b.Width == 0 {
		b.Width = def.Width
	}
	if b.TextOffsetX == 0 {
		b.TextOffsetX = def.TextOffsetX
	}
	if b.TextOffsetY == 0 {
		b.TextOffsetY = def.TextOffsetY
	}
	if b.FontFamily == "" {
		b.FontFamily = def.FontFamily
	}
	if b.FontSize == 0 {
		b.FontSize = def.FontSize
	}
	if b.Fill == "" {
		b.Fill = def.Fill
	}
	if b.Align == "" {
		b.Align = def.Align
	}
	if b.TextWidth == 0 {
		b.TextWidth = def.TextWidth
	}
	if b.LineHeight == 0 {
		b.LineHeight = def.LineHeight
	}
	return b
}

// standardPlaceholders builds the name and title pair every bundled background uses.
func standardPlaceholders(nameX, nameY, titleX, titleY float64, override Placeholder) []Placeholder {
	name := override
	name.ID, name.X, name.Y = "name", nameX, nameY
	if name.FontSize == 0 {
		name.FontSize = DefaultNameFontSize
	}
	title := override
	title.ID, title.X, title.Y = "title", titleX, titleY
	if title.FontSize == 0 {
		title.FontSize = DefaultTitleFontSize
	}
	return []Placeholder{name, title}
}

func standardBadge(x, y float64, override BadgeDefinition) *BadgeDefinition {
	b := override
	b.X, b.Y = x, y
	return &b
}

// Builtin returns the bundled background table.
func Builtin(defaults Defaults) *Catalog {
	light := "#325083"
	bgs := []BackgroundDefinition{
		{
			ID:           "1",
			Name:         "Normal Dark 2024",
			Source:       "backgrounds/DHCWTeamsBackground-2024-Dark.png",
			Placeholders: standardPlaceholders(744, 430, 744, 585, Placeholder{}),
			Badge:        standardBadge(3200, 1650, BadgeDefinition{}),
		},
		{
			ID:           "2",
			Name:         "Normal Light 2024",
			Source:       "backgrounds/DHCWTeamsBackground-2024-Light.png",
			Placeholders: standardPlaceholders(744, 430, 744, 585, Placeholder{Fill: light}),
			Badge:        standardBadge(3200, 1650, BadgeDefinition{Fill: light}),
		},
		{
			ID:           "3",
			Name:         "Pride 2024",
			Source:       "backgrounds/DHCWTeamsBackground-2024-Pride.png",
			Placeholders: standardPlaceholders(1050, 430, 1050, 585, Placeholder{FontFamily: "Arial", Width: 2000}),
			Badge:        standardBadge(3200, 1650, BadgeDefinition{}),
		},
		{
			ID:           "4",
			Name:         "Values 2025",
			Source:       "backgrounds/DHCWTeamsBackground-2025-Values.png",
			Placeholders: standardPlaceholders(870, 180, 870, 300, Placeholder{Width: 2000}),
			Badge:        standardBadge(150, 800, BadgeDefinition{}),
		},
		{
			ID:           "5",
			Name:         "Christmas 2024",
			Source:       "backgrounds/DHCWTeamsBackground-2024-Christmas.png",
			Placeholders: standardPlaceholders(744, 160, 744, 300, Placeholder{Width: 2000}),
			Badge:        standardBadge(3200, 1650, BadgeDefinition{}),
		},
		{
			ID:           "6",
			Name:         "Christmas 2025",
			Source:       "backgrounds/DHCWTeamsBackground-2025-Christmas.png",
			Placeholders: standardPlaceholders(3000, 1180, 3000, 1300, Placeholder{Width: 900}),
			Badge:        standardBadge(3200, 1450, BadgeDefinition{}),
		},
	}
	c, err := newCatalog(bgs, defaults)
	if err != nil {
		// the bundled table is static; a failure here is a programming error
		panic(err)
	}
	return c
}
