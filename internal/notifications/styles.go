package notifications

import (
	"sync"

	"github.com/thenoetrevino/pasosync/internal/config/colors"
)

type style struct {
	icon             string
	title            string
	foreground       string
	background       string
	borderForeground string
}

var (
	paletteMu sync.RWMutex
	palette   = *colors.Default()
)

// Init sets the colors banners are rendered with
func Init(scheme colors.ColorScheme) {
	scheme.ApplyDefaults()

	paletteMu.Lock()
	defer paletteMu.Unlock()
	palette = scheme
}

func (s Severity) style() style {
	paletteMu.RLock()
	p := palette
	paletteMu.RUnlock()

	switch s {
	case Success:
		return style{
			icon:             "✓",
			title:            "Success",
			foreground:       p.SuccessFg,
			background:       p.SuccessBg,
			borderForeground: p.SuccessBg,
		}
	case Warning:
		return style{
			icon:             "⚠",
			title:            "Warning",
			foreground:       p.WarningFg,
			background:       p.WarningBg,
			borderForeground: p.WarningBg,
		}
	case Error:
		return style{
			icon:             "✕",
			title:            "Error",
			foreground:       p.ErrorFg,
			background:       p.ErrorBg,
			borderForeground: p.ErrorBg,
		}
	default:
		return style{
			icon:             "🔔",
			title:            "Info",
			foreground:       p.InfoFg,
			background:       p.InfoBg,
			borderForeground: p.InfoBg,
		}
	}
}
