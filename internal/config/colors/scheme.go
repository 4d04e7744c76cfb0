package colors

// ColorScheme holds the banner colors as foreground/background pairs
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome", "kanagawa")
	Preset string `yaml:"preset"`

	InfoFg    string `yaml:"info_fg"`
	InfoBg    string `yaml:"info_bg"`
	SuccessFg string `yaml:"success_fg"`
	SuccessBg string `yaml:"success_bg"`
	WarningFg string `yaml:"warning_fg"`
	WarningBg string `yaml:"warning_bg"`
	ErrorFg   string `yaml:"error_fg"`
	ErrorBg   string `yaml:"error_bg"`
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	case "kanagawa":
		return Kanagawa()
	case "kanagawa-lotus":
		return KanagawaLotus()
	default:
		return Default()
	}
}

// ApplyDefaults fills in missing color values using the preset as base
func (c *ColorScheme) ApplyDefaults() {
	preset := GetPreset(c.Preset)
	if c.Preset == "" {
		c.Preset = preset.Preset
	}

	fill(&c.InfoFg, preset.InfoFg)
	fill(&c.InfoBg, preset.InfoBg)
	fill(&c.SuccessFg, preset.SuccessFg)
	fill(&c.SuccessBg, preset.SuccessBg)
	fill(&c.WarningFg, preset.WarningFg)
	fill(&c.WarningBg, preset.WarningBg)
	fill(&c.ErrorFg, preset.ErrorFg)
	fill(&c.ErrorBg, preset.ErrorBg)
}

// MergeFrom overrides c with every non-empty value in other
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	if other.Preset != "" && other.Preset != c.Preset {
		// switching presets drops colors inherited from the old one
		*c = ColorScheme{Preset: other.Preset}
	}
	override(&c.InfoFg, other.InfoFg)
	override(&c.InfoBg, other.InfoBg)
	override(&c.SuccessFg, other.SuccessFg)
	override(&c.SuccessBg, other.SuccessBg)
	override(&c.WarningFg, other.WarningFg)
	override(&c.WarningBg, other.WarningBg)
	override(&c.ErrorFg, other.ErrorFg)
	override(&c.ErrorBg, other.ErrorBg)
	c.ApplyDefaults()
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
