package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

const ledgerLimit = 300

type ledgerEntry struct {
	at    time.Time
	level string
	text  string
}

// ledgerModel is a scrolling panel of captured log lines.
type ledgerModel struct {
	viewport   viewport.Model
	entries    []ledgerEntry
	theme      tuiTheme
	paused     bool
	autoScroll bool
}

func newLedgerModel(theme tuiTheme) ledgerModel {
	return ledgerModel{
		viewport:   viewport.New(0, 0),
		entries:    make([]ledgerEntry, 0, ledgerLimit),
		theme:      theme,
		autoScroll: true,
	}
}

func (m ledgerModel) Update(msg tea.Msg) (ledgerModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "pgup":
			m.autoScroll = false
		case "pgdown":
			if m.viewport.AtBottom() {
				m.autoScroll = true
			}
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if m.viewport.AtBottom() {
		m.autoScroll = true
	}
	return m, cmd
}

func (m *ledgerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = h
	m.updateContent()
}

func (m *ledgerModel) setTheme(theme tuiTheme) {
	m.theme = theme
	m.updateContent()
}

func (m *ledgerModel) addEntry(e ledgerEntry) {
	m.entries = append(m.entries, e)
	if len(m.entries) > ledgerLimit {
		m.entries = m.entries[len(m.entries)-ledgerLimit:]
	}
	m.updateContent()
}

func (m *ledgerModel) togglePause() {
	m.paused = !m.paused
}

func (m *ledgerModel) updateContent() {
	m.viewport.SetContent(m.renderContent())
	if m.autoScroll && !m.paused {
		m.viewport.GotoBottom()
	}
}

func (m ledgerModel) renderContent() string {
	var b strings.Builder
	for _, e := range m.entries {
		levelStyle := m.theme.info
		switch e.level {
		case "warn":
			levelStyle = m.theme.warn
		case "error":
			levelStyle = m.theme.danger
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			m.theme.muted.Render(e.at.Format("15:04:05")),
			levelStyle.Render(strings.ToUpper(e.level)),
			e.text)
	}
	return b.String()
}

func (m ledgerModel) View() string {
	return m.viewport.View()
}

// logLevel classifies a captured log line by its wording.
func logLevel(line string) string {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
		return "error"
	}
	if strings.Contains(lower, "warn") || strings.Contains(lower, "not used") {
		return "warn"
	}
	return "info"
}
