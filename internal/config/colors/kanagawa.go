package colors

// Kanagawa returns the dark Kanagawa scheme
func Kanagawa() *ColorScheme {
	return &ColorScheme{
		Preset: "kanagawa",

		InfoFg:    "#658594", // dragonBlue
		InfoBg:    "#252535", // winterBlue
		SuccessFg: "#98BB6C", // springGreen
		SuccessBg: "#2B3328", // winterGreen
		WarningFg: "#FF9E3B", // roninYellow
		WarningBg: "#49443C", // winterYellow
		ErrorFg:   "#E82424", // samuraiRed
		ErrorBg:   "#43242B", // winterRed
	}
}

// KanagawaLotus returns the light Kanagawa scheme
func KanagawaLotus() *ColorScheme {
	return &ColorScheme{
		Preset: "kanagawa-lotus",

		InfoFg:    "#5A7785",
		InfoBg:    "#B5CBD2",
		SuccessFg: "#6F894E",
		SuccessBg: "#B7D0AE",
		WarningFg: "#E98A00",
		WarningBg: "#F9E7C0",
		ErrorFg:   "#C84053",
		ErrorBg:   "#D9A594",
	}
}
