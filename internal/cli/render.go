package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/concurrentcube"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// cellStyles colors cells by face, in Faces order.
var cellStyles = func() []lipgloss.Style {
	bg := []string{"255", "208", "34", "196", "21", "226"}
	styles := make([]lipgloss.Style, len(bg))
	for i, c := range bg {
		styles[i] = lipgloss.NewStyle().
			Background(lipgloss.Color(c)).
			Foreground(lipgloss.Color("0"))
	}
	return styles
}()

// RenderNet draws a snapshot as an unfolded cube: Top above the
// Left/Front/Right/Back band, Bottom below. In plain mode each cell is its
// color digit and no styling is applied.
func RenderNet(s concurrentcube.Snapshot, plain bool) string {
	n := s.Size()
	cellWidth := 3
	if plain {
		cellWidth = 1
	}
	indent := strings.Repeat(" ", n*cellWidth+1)

	var lines []string
	row := func(face concurrentcube.Face, r int) string {
		var b strings.Builder
		for col := 0; col < n; col++ {
			b.WriteString(renderCell(s.At(face, r, col), plain))
		}
		return b.String()
	}

	for r := 0; r < n; r++ {
		lines = append(lines, indent+row(concurrentcube.Top, r))
	}
	band := []concurrentcube.Face{concurrentcube.Left, concurrentcube.Front, concurrentcube.Right, concurrentcube.Back}
	for r := 0; r < n; r++ {
		parts := make([]string, len(band))
		for i, face := range band {
			parts[i] = row(face, r)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	for r := 0; r < n; r++ {
		lines = append(lines, indent+row(concurrentcube.Bottom, r))
	}
	return strings.Join(lines, "\n")
}

func renderCell(c concurrentcube.Color, plain bool) string {
	sym := string(c.Symbol())
	if plain || int(c) >= len(cellStyles) {
		return sym
	}
	return cellStyles[c].Render(" " + sym + " ")
}
