package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/assessor/internal/ui/theme"
)

const bannerArt = `
  █████╗ ███████╗███████╗███████╗███████╗███████╗ ██████╗ ██████╗
 ██╔══██╗██╔════╝██╔════╝██╔════╝██╔════╝██╔════╝██╔═══██╗██╔══██╗
 ███████║███████╗███████╗█████╗  ███████╗███████╗██║   ██║██████╔╝
 ██╔══██║╚════██║╚════██║██╔══╝  ╚════██║╚════██║██║   ██║██╔══██╗
 ██║  ██║███████║███████║███████╗███████║███████║╚██████╔╝██║  ██║
 ╚═╝  ╚═╝╚══════╝╚══════╝╚══════╝╚══════╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝`

const bannerCompact = "A S S E S S O R"

// bannerMinWidth is the narrowest terminal the full banner fits in.
const bannerMinWidth = 70

// RenderBanner returns the banner styled in the primary color, with a
// compact fallback for narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
