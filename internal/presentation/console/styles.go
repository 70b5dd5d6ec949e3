package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lilycand/eldig/internal/domain/dialysis"
)

var (
	colorGray   = lipgloss.Color("#6272A4")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorYellow = lipgloss.Color("#F1FA8C")
	colorRed    = lipgloss.Color("#FF5555")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorWhite  = lipgloss.Color("#F8F8F2")
)

// styles holds the styles bound to one lipgloss renderer.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	tiers  map[dialysis.Tier]lipgloss.Style
}

// newStyles binds the palette to a renderer writing to w. With color false
// every style renders plain text.
func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		title:  r.NewStyle().Bold(true).Foreground(colorCyan),
		header: r.NewStyle().Bold(true).Foreground(colorWhite),
		label:  r.NewStyle().Foreground(colorGray),
		value:  r.NewStyle().Foreground(colorWhite),
		tiers: map[dialysis.Tier]lipgloss.Style{
			dialysis.TierIdle:     r.NewStyle().Foreground(colorGray),
			dialysis.TierNominal:  r.NewStyle().Foreground(colorGreen),
			dialysis.TierWarning:  r.NewStyle().Foreground(colorYellow),
			dialysis.TierCritical: r.NewStyle().Bold(true).Foreground(colorRed),
		},
	}
}

// tier returns the style of a severity tier.
func (s styles) tier(t dialysis.Tier) lipgloss.Style {
	if style, ok := s.tiers[t]; ok {
		return style
	}

	return s.value
}
