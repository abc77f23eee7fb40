package cli

import (
	"fmt"
	"strings"
)

// Session states shown in the mode rail.
var typeModes = []string{"Paused", "Typing", "Training"}

const (
	modePaused = iota
	modeTyping
	modeTraining
)

func renderModeRail(theme tuiTheme, modes []string, current int) string {
	if len(modes) == 0 {
		return ""
	}
	segments := make([]string, 0, len(modes))
	for i, mode := range modes {
		if i == current {
			segments = append(segments, theme.railCurrent.Render("["+mode+"]"))
			continue
		}
		segments = append(segments, theme.railPending.Render(" "+mode+" "))
	}
	return strings.Join(segments, theme.railPending.Render("·"))
}

func renderActionCard(theme tuiTheme, title, why, action string, width int) string {
	if width < 20 {
		width = 20
	}
	body := strings.Builder{}
	body.WriteString(theme.subtitle.Render(title))
	body.WriteString("\n")
	body.WriteString(theme.text.Render(why))
	body.WriteString("\n")
	body.WriteString(theme.highlight.Render(action))
	return theme.panel.Width(width).Render(body.String())
}

func renderSelectableList(theme tuiTheme, title string, items []string, selected int, width, height int) string {
	if width < 20 {
		width = 20
	}
	maxRows := height - 3
	if maxRows < 1 {
		maxRows = 1
	}

	start := 0
	if selected >= maxRows {
		start = selected - maxRows + 1
	}
	end := min(start+maxRows, len(items))

	lines := make([]string, 0, maxRows+1)
	lines = append(lines, theme.subtitle.Render(title))
	for i := start; i < end; i++ {
		line := truncateRunes(items[i], width-6)
		if i == selected {
			lines = append(lines, "> "+theme.highlight.Render(line))
			continue
		}
		lines = append(lines, "  "+theme.text.Render(line))
	}
	return theme.panel.Width(width).Render(strings.Join(lines, "\n"))
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return fmt.Sprintf("%s...", string(r[:limit-3]))
}

// tailRunes keeps the last limit runes of s, marking the cut.
func tailRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[len(r)-limit:])
	}
	return "..." + string(r[len(r)-limit+3:])
}

// canvasHeights splits the rows below the header between the canvas and
// the log ledger, giving the canvas most of them.
func canvasHeights(total int) (int, int) {
	if total < 12 {
		return total, 0
	}
	ledger := total / 4
	if ledger < 4 {
		ledger = 4
	}
	if ledger > 10 {
		ledger = 10
	}
	return total - ledger, ledger
}
