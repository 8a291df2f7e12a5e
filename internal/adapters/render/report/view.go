package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/bnema/followcheck/internal/application"
	"github.com/bnema/followcheck/internal/domain"
)

const (
	defaultPreview = 15
	barWidth       = 24
)

type RenderOptions struct {
	// Preview caps the identifiers listed per category; zero uses the default, negative lists all.
	Preview int
}

func (o RenderOptions) limit() int {
	if o.Preview == 0 {
		return defaultPreview
	}
	return o.Preview
}

func compose(r application.Report, preview int, p palette) string {
	lines := []string{
		p.heading.Render("Follow Check"),
		p.totals.Render(fmt.Sprintf("followers: %s  following: %s",
			humanize.Comma(int64(r.Followers)), humanize.Comma(int64(r.Following)))),
	}
	if r.Account != "" {
		lines = append(lines, p.target.Render("@"+string(r.Account)))
	}

	if len(r.Stats) > 0 {
		coverage := make([]string, 0, len(r.Stats))
		for _, stats := range r.Stats {
			coverage = append(coverage, coverageLine(stats, p))
		}
		lines = append(lines, p.block.Render(lipgloss.JoinVertical(lipgloss.Left, coverage...)))
	}

	for _, file := range r.Files() {
		lines = append(lines, p.block.Render(categoryBlock(file, preview, p)))
	}

	if r.BestEffort() {
		lines = append(lines, p.block.Render(p.caution.Render("[best effort] some accounts did not load; results may be incomplete")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func categoryBlock(file application.ReportFile, limit int, p palette) string {
	parts := []string{
		p.categoryTitle(file.Category).Render(fmt.Sprintf("%s (%s)", file.Title, humanize.Comma(int64(len(file.Members))))),
	}

	if len(file.Members) == 0 {
		parts = append(parts, p.overflow.Render("none"))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for i, id := range file.Members {
		if limit >= 0 && i == limit {
			parts = append(parts, p.overflow.Render(fmt.Sprintf("...and %s more", humanize.Comma(int64(len(file.Members)-limit)))))
			break
		}
		parts = append(parts, p.member.Render("• "+string(id)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func coverageLine(stats domain.ListStats, p palette) string {
	label := p.listName.Render(fmt.Sprintf("%-9s", string(stats.Kind)+":"))

	var count string
	if stats.Expected > 0 {
		count = fmt.Sprintf("%s of %s", humanize.Comma(int64(stats.Collected)), humanize.Comma(int64(stats.Expected)))
	} else {
		count = humanize.Comma(int64(stats.Collected))
	}
	percent := coveragePercent(stats)
	countStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	meta := p.provenance.Render(fmt.Sprintf("(%s, %s)", tierLabel(stats.Tiers), stopLabel(stats.StopReason)))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		gauge(percent, barWidth, p),
		" ",
		countStyle.Render(count),
		" ",
		meta,
	)
}

// coveragePercent treats an unknown expected count as fully covered.
func coveragePercent(stats domain.ListStats) float64 {
	if stats.Expected <= 0 {
		return 100
	}
	return clampPercent(100 * float64(stats.Collected) / float64(stats.Expected))
}

func gauge(percent float64, width int, p palette) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		p.gaugeEdge.Render("["),
		p.gaugeFull.Render(strings.Repeat("=", filled)),
		p.gaugeOpen.Render(strings.Repeat("-", width-filled)),
		p.gaugeEdge.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func tierLabel(tiers []domain.CollectionTier) string {
	if len(tiers) == 0 {
		return "no list view"
	}
	names := make([]string, 0, len(tiers))
	for _, tier := range tiers {
		names = append(names, strings.ReplaceAll(string(tier), "_", " "))
	}
	return strings.Join(names, " → ")
}

func stopLabel(reason domain.StopReason) string {
	switch reason {
	case domain.StopExpectedReached:
		return "complete"
	case domain.StopStable:
		return "stopped growing"
	case domain.StopIterationBound:
		return "iteration limit"
	case domain.StopBudget:
		return "time budget"
	default:
		return "n/a"
	}
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, faded at min and bright at max.
	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
