package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/followcheck/internal/domain"
)

// palette holds the styles of one rendered reconciliation.
type palette struct {
	heading    lipgloss.Style
	totals     lipgloss.Style
	target     lipgloss.Style
	block      lipgloss.Style
	member     lipgloss.Style
	overflow   lipgloss.Style
	caution    lipgloss.Style
	listName   lipgloss.Style
	provenance lipgloss.Style
	gaugeEdge  lipgloss.Style
	gaugeFull  lipgloss.Style
	gaugeOpen  lipgloss.Style
	category   map[domain.Category]lipgloss.Style
}

func newPalette() palette {
	return palette{
		heading:    lipgloss.NewStyle().Bold(true).Underline(true),
		totals:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		target:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		block:      lipgloss.NewStyle().MarginTop(1),
		member:     lipgloss.NewStyle().PaddingLeft(2),
		overflow:   lipgloss.NewStyle().PaddingLeft(2).Italic(true).Faint(true),
		caution:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		listName:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		provenance: lipgloss.NewStyle().Faint(true),
		gaugeEdge:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		gaugeFull:  lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		gaugeOpen:  lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		category: map[domain.Category]lipgloss.Style{
			domain.CategoryMutual:                   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
			domain.CategoryFollowedNotFollowingBack: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			domain.CategoryFollowerNotFollowedBack:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("221")),
		},
	}
}

// categoryTitle styles a category heading by what it means for the user:
// mutuals green, unreturned follows red, unreturned followers amber.
func (p palette) categoryTitle(category domain.Category) lipgloss.Style {
	if style, ok := p.category[category]; ok {
		return style
	}
	return p.heading
}
