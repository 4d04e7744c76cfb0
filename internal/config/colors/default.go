package colors

// Default returns the default color scheme
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		InfoFg:    "#00AFFF",
		InfoBg:    "#00005F",
		SuccessFg: "#5FD75F",
		SuccessBg: "#005F00",
		WarningFg: "#FFD700",
		WarningBg: "#875F00",
		ErrorFg:   "#FF0000",
		ErrorBg:   "#5F0000",
	}
}
