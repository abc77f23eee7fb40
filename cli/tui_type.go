package cli

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/event"
	"github.com/yoanbernabeu/zoomtype/filter"
	"github.com/yoanbernabeu/zoomtype/session"
)

const (
	typeFramePeriod = 20 * time.Millisecond
	speedStep       = 10
	minSpeed        = 10
	maxSpeed        = gaugeMaxBitrate

	// Rows above the canvas: header panel and output panel.
	canvasTop = 7
	// Rows of chrome outside canvas and ledger.
	typeChromeRows = 14
)

type typeFrameMsg struct {
	at time.Time
}

type typeLedgerMsg struct {
	level string
	text  string
}

// typeStats counts symbols written since navigation last started. It is
// shared by value copies of the Bubble Tea model.
type typeStats struct {
	written int
}

type typeUIModel struct {
	theme  tuiTheme
	width  int
	height int

	sess    *session.Session
	params  *config.Store
	screen  *termScreen
	editbox *textEditbox
	input   string
	pointer *filter.Pointer
	dynamic *filter.Dynamic
	backOff bool
	stats   *typeStats

	ledger ledgerModel
	gauge  gaugeModel

	started time.Time
	lastT   int64

	picking   bool
	pickIndex int
	alphabets []string

	showHelp bool
}

// newTypeUIModel binds the terminal screen, editbox and input filter to
// sess and realizes it.
func newTypeUIModel(sess *session.Session, params *config.Store, input string, started time.Time) typeUIModel {
	theme := newTUITheme(nil)
	m := typeUIModel{
		theme:   theme,
		sess:    sess,
		params:  params,
		screen:  newTermScreen(80, 20),
		editbox: newTextEditbox(),
		input:   input,
		stats:   &typeStats{},
		ledger:  newLedgerModel(theme),
		gauge:   newGaugeModel(theme),
		started: started,
	}

	sess.ChangeEditbox(m.editbox)
	sess.ChangeScreen(m.screen)
	if input == inputSwitches {
		m.dynamic = filter.NewDynamic(params, sess)
		sess.SetInput(m.dynamic)
	} else {
		m.pointer = filter.NewPointer(params, sess)
		sess.SetInput(m.pointer)
	}

	stats := m.stats
	sess.Events().Register(event.HandlerFunc(func(e event.Event) {
		switch e.(type) {
		case event.Started:
			stats.written = 0
		case event.EditInserted:
			stats.written++
		case event.EditDeleted:
			if stats.written > 0 {
				stats.written--
			}
		}
	}))

	sess.Realize()
	m.applyTheme()
	return m
}

func typeFrameCmd() tea.Cmd {
	return tea.Tick(typeFramePeriod, func(at time.Time) tea.Msg {
		return typeFrameMsg{at: at}
	})
}

func (m typeUIModel) Init() tea.Cmd {
	return typeFrameCmd()
}

func (m typeUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalculateLayout()
		return m, nil

	case typeFrameMsg:
		m.lastT = msg.at.Sub(m.started).Milliseconds()
		m.sess.NewFrame(m.lastT)
		m.gauge.setSpeed(m.params.GetLong(config.LongMaxBitrate))
		m.gauge.setInformation(m.sess.GetNats(), m.stats.written, m.sess.NumberSymbols())
		return m, typeFrameCmd()

	case typeLedgerMsg:
		m.ledger.addEntry(ledgerEntry{at: time.Now(), level: msg.level, text: msg.text})
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		if m.picking {
			return m.handlePickerKey(msg), nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m typeUIModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case " ", "enter":
		m.sess.KeyDown(m.lastT, filter.SwitchPrimary)
		m.sess.KeyUp(m.lastT, filter.SwitchPrimary)
	case "b", "backspace":
		if m.backOff {
			m.sess.KeyUp(m.lastT, filter.SwitchBackOff)
		} else {
			m.sess.KeyDown(m.lastT, filter.SwitchBackOff)
		}
		m.backOff = !m.backOff
	case "+", "=":
		m.setSpeed(m.params.GetLong(config.LongMaxBitrate) + speedStep)
	case "-", "_":
		m.setSpeed(m.params.GetLong(config.LongMaxBitrate) - speedStep)
	case "a":
		m.openPicker()
	case "c":
		m.cycleColours()
	case "r":
		m.sess.ScheduleRetrain()
	case "p":
		m.ledger.togglePause()
	case "?":
		m.showHelp = !m.showHelp
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.ledger, cmd = m.ledger.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m typeUIModel) handleMouse(msg tea.MouseMsg) typeUIModel {
	if m.pointer == nil {
		return m
	}
	cols, rows := m.screen.size()
	col, row := msg.X-1, msg.Y-canvasTop
	if col < 0 || col >= cols || row < 0 || row >= rows {
		return m
	}
	x, y := m.screen.ScreenToNavigation(col, row)
	m.pointer.Move(x, y)
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		m.sess.KeyDown(m.lastT, filter.SwitchPrimary)
	}
	return m
}

func (m *typeUIModel) setSpeed(v int64) {
	m.params.SetLong(config.LongMaxBitrate, max(minSpeed, min(maxSpeed, v)))
}

func (m *typeUIModel) openPicker() {
	m.alphabets = m.sess.Alphabets()
	m.pickIndex = 0
	current := m.params.GetString(config.StringAlphabetID)
	for i, id := range m.alphabets {
		if id == current {
			m.pickIndex = i
		}
	}
	m.picking = true
}

func (m typeUIModel) handlePickerKey(msg tea.KeyMsg) typeUIModel {
	switch msg.String() {
	case "up", "k":
		if m.pickIndex > 0 {
			m.pickIndex--
		}
	case "down", "j":
		if m.pickIndex < len(m.alphabets)-1 {
			m.pickIndex++
		}
	case "enter":
		m.picking = false
		if m.pickIndex < len(m.alphabets) {
			m.sess.ChangeAlphabet(m.alphabets[m.pickIndex])
			m.applyTheme()
		}
	case "esc", "q", "a":
		m.picking = false
	}
	return m
}

func (m *typeUIModel) cycleColours() {
	ids := m.sess.Colours()
	if len(ids) == 0 {
		return
	}
	current := m.params.GetString(config.StringColourID)
	next := ids[0]
	for i, id := range ids {
		if id == current {
			next = ids[(i+1)%len(ids)]
		}
	}
	m.params.SetString(config.StringColourID, next)
	m.applyTheme()
}

func (m *typeUIModel) applyTheme() {
	m.theme = newTUITheme(m.sess.ColourScheme())
	m.ledger.setTheme(m.theme)
	m.gauge.theme = m.theme
}

func (m *typeUIModel) recalculateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	canvasRows, ledgerRows := canvasHeights(m.height - typeChromeRows)
	if ledgerRows > 0 {
		ledgerRows -= 3
	}
	m.screen.resize(m.width-2, max(canvasRows, 1))
	m.ledger.setSize(m.width-6, ledgerRows)
	m.gauge.setWidth(m.width - 4)
	m.sess.RequestFullRedraw()
}

func (m typeUIModel) mode() int {
	switch {
	case m.params.GetBool(config.BoolTraining):
		return modeTraining
	case m.params.GetBool(config.BoolPaused):
		return modePaused
	default:
		return modeTyping
	}
}

func (m typeUIModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading zoomtype..."
	}

	parts := []string{m.renderHeader(), m.renderOutput()}
	if m.picking {
		_, rows := m.screen.size()
		parts = append(parts, renderSelectableList(m.theme, "Alphabet", m.alphabets, m.pickIndex, m.width-2, rows))
	} else {
		parts = append(parts, " "+strings.ReplaceAll(m.screen.String(), "\n", "\n "))
	}
	parts = append(parts, m.theme.panel.Width(m.width-2).Render(m.gauge.View()))
	if _, ledgerRows := canvasHeights(m.height - typeChromeRows); ledgerRows > 0 {
		parts = append(parts, m.renderLedgerPanel())
	}
	if m.showHelp {
		parts = append(parts, renderActionCard(m.theme, "Controls",
			m.controlsHelp(),
			"a alphabet | c colours | +/- speed | r retrain | p pause log | q quit",
			m.width-2))
	}
	parts = append(parts, m.renderFooter())
	return m.theme.canvas.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m typeUIModel) controlsHelp() string {
	if m.input == inputSwitches {
		return "space switches target and starts; b holds back-off until pressed again"
	}
	return "steer with the mouse; click or space to start and stop"
}

func (m typeUIModel) renderHeader() string {
	title := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.title.Render("zoomtype  "),
		renderModeRail(m.theme, typeModes, m.mode()),
	)
	model := "none"
	if nm := m.sess.Model(); nm != nil {
		model = fmt.Sprintf("order %d", nm.Language().Order())
	}
	meta := m.theme.muted.Render(fmt.Sprintf("alphabet=%s  colours=%s  model=%s  input=%s  uptime=%s",
		m.params.GetString(config.StringAlphabetID),
		m.params.GetString(config.StringColourID),
		model,
		m.input,
		time.Since(m.started).Round(time.Second),
	))
	return m.theme.panel.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, meta))
}

func (m typeUIModel) renderOutput() string {
	text := tailRunes(m.editbox.String(), m.width-8)
	return m.theme.panel.Width(m.width - 2).Render(m.theme.output.Render(text) + m.theme.info.Render("▌"))
}

func (m typeUIModel) renderLedgerPanel() string {
	label := m.theme.subtitle.Render("Log")
	if m.ledger.paused {
		label += m.theme.warn.Render(" [paused]")
	}
	return m.theme.panel.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, label, m.ledger.View()))
}

func (m typeUIModel) renderFooter() string {
	parts := []string{
		m.theme.help.Render("q quit"),
		m.theme.help.Render("space start/stop"),
		m.theme.help.Render("? help"),
		m.theme.muted.Render(fmt.Sprintf("written=%d", m.stats.written)),
	}
	if m.backOff {
		parts = append(parts, m.theme.warn.Render("backing off"))
	}
	if m.dynamic != nil && m.dynamic.Pulsing() {
		parts = append(parts, m.theme.info.Render("pulsing"))
	}
	return m.theme.panel.Width(m.width - 2).Render(strings.Join(parts, "  |  "))
}

// typeLogForwarder turns log output into ledger messages, one per line.
// Lines are queued and delivered by a pump goroutine, since the session
// logs from inside Update where a direct send would block the program.
type typeLogForwarder struct {
	send    func(tea.Msg)
	mu      sync.Mutex
	pending string
	queue   chan typeLedgerMsg
	done    chan struct{}
}

const typeLogQueue = 256

func newTypeLogForwarder(send func(tea.Msg)) *typeLogForwarder {
	w := &typeLogForwarder{
		send:  send,
		queue: make(chan typeLedgerMsg, typeLogQueue),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		for msg := range w.queue {
			w.send(msg)
		}
	}()
	return w
}

func (w *typeLogForwarder) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending += string(p)
	for {
		newline := strings.IndexByte(w.pending, '\n')
		if newline < 0 {
			break
		}
		line := strings.TrimSpace(w.pending[:newline])
		w.pending = w.pending[newline+1:]
		w.emit(line)
	}
	return len(p), nil
}

// close emits any unterminated line and waits for the queue to drain.
func (w *typeLogForwarder) close() {
	w.mu.Lock()
	line := strings.TrimSpace(w.pending)
	w.pending = ""
	w.emit(line)
	close(w.queue)
	w.mu.Unlock()
	<-w.done
}

func (w *typeLogForwarder) emit(line string) {
	if line == "" {
		return
	}
	select {
	case w.queue <- typeLedgerMsg{level: logLevel(line), text: line}:
	default:
		// Ledger is behind; drop rather than stall the frame loop.
	}
}

// captureTypeUILogs redirects the standard logger into the ledger until
// the returned function is called.
func captureTypeUILogs(send func(tea.Msg)) func() {
	oldWriter := log.Writer()
	oldFlags := log.Flags()
	oldPrefix := log.Prefix()

	forwarder := newTypeLogForwarder(send)
	log.SetFlags(0)
	log.SetPrefix("")
	log.SetOutput(forwarder)

	return func() {
		log.SetOutput(oldWriter)
		log.SetFlags(oldFlags)
		log.SetPrefix(oldPrefix)
		forwarder.close()
	}
}
