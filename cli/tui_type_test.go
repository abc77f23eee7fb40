package cli

import (
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/session"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func newTestTypeUI(t *testing.T, input string) typeUIModel {
	t.Helper()
	params := config.NewStore()
	params.SetString(config.StringUserLoc, t.TempDir())
	sess := session.New(session.Options{
		Params:  params,
		Catalog: alphabet.NewCatalog(),
		Logger:  log.New(io.Discard, "", 0),
		Sink:    session.NewFileSink(params),
		NewView: newViewFactory(params),
	})
	t.Cleanup(func() { sess.Close() })
	return newTypeUIModel(sess, params, input, time.Unix(0, 0))
}

func pressKey(t *testing.T, m typeUIModel, key tea.KeyMsg) typeUIModel {
	t.Helper()
	next, _ := m.Update(key)
	return next.(typeUIModel)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestTypeUIFrameAdvancesClock(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)

	next, cmd := m.Update(typeFrameMsg{at: time.Unix(0, 0).Add(500 * time.Millisecond)})
	m = next.(typeUIModel)
	if m.lastT != 500 {
		t.Fatalf("lastT = %d, want 500", m.lastT)
	}
	if cmd == nil {
		t.Fatal("expected the next frame to be scheduled")
	}
	if !m.sess.ModelLoaded() {
		t.Fatal("expected a model after realize")
	}
}

func TestTypeUILedgerLimit(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)

	total := ledgerLimit + 25
	for i := 0; i < total; i++ {
		next, _ := m.Update(typeLedgerMsg{level: "info", text: fmt.Sprintf("event-%d", i)})
		m = next.(typeUIModel)
	}

	if len(m.ledger.entries) != ledgerLimit {
		t.Fatalf("ledger size = %d, want %d", len(m.ledger.entries), ledgerLimit)
	}
	if got := m.ledger.entries[len(m.ledger.entries)-1].text; got != fmt.Sprintf("event-%d", total-1) {
		t.Fatalf("last ledger event = %q", got)
	}
}

func TestTypeUIPauseKeyTogglesLedger(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)

	m = pressKey(t, m, runeKey('p'))
	if !m.ledger.paused {
		t.Fatal("expected paused ledger after pressing 'p'")
	}
	next, _ := m.Update(typeLedgerMsg{level: "info", text: "while paused"})
	m = next.(typeUIModel)
	if len(m.ledger.entries) != 1 {
		t.Fatalf("expected entries to be recorded while paused, got %d", len(m.ledger.entries))
	}
	m = pressKey(t, m, runeKey('p'))
	if m.ledger.paused {
		t.Fatal("expected ledger to resume after pressing 'p' again")
	}
}

func TestTypeUISpeedKeysClamp(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)
	start := m.params.GetLong(config.LongMaxBitrate)

	m = pressKey(t, m, runeKey('+'))
	if got := m.params.GetLong(config.LongMaxBitrate); got != start+speedStep {
		t.Fatalf("speed = %d, want %d", got, start+speedStep)
	}

	m.params.SetLong(config.LongMaxBitrate, maxSpeed)
	m = pressKey(t, m, runeKey('+'))
	if got := m.params.GetLong(config.LongMaxBitrate); got != maxSpeed {
		t.Fatalf("speed = %d, want clamp at %d", got, maxSpeed)
	}

	m.params.SetLong(config.LongMaxBitrate, minSpeed)
	m = pressKey(t, m, runeKey('-'))
	if got := m.params.GetLong(config.LongMaxBitrate); got != minSpeed {
		t.Fatalf("speed = %d, want clamp at %d", got, minSpeed)
	}
}

func TestTypeUISpaceStartsAndStopsPointer(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)
	if m.mode() != modePaused {
		t.Fatalf("mode = %d, want paused", m.mode())
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.sess.Paused() {
		t.Fatal("expected space to start navigation")
	}
	if m.mode() != modeTyping {
		t.Fatalf("mode = %d, want typing", m.mode())
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if !m.sess.Paused() {
		t.Fatal("expected second space to stop navigation")
	}
}

func TestTypeUISwitchesFlipTargetAndBackOff(t *testing.T) {
	m := newTestTypeUI(t, inputSwitches)
	if m.dynamic == nil {
		t.Fatal("expected the dynamic filter in switch mode")
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.sess.Paused() {
		t.Fatal("expected first press to unpause")
	}
	if m.dynamic.ActiveTarget() != 0 {
		t.Fatalf("target = %d, want 0 after unpausing", m.dynamic.ActiveTarget())
	}

	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.dynamic.ActiveTarget() != 1 {
		t.Fatalf("target = %d, want 1 after second press", m.dynamic.ActiveTarget())
	}

	m = pressKey(t, m, runeKey('b'))
	if !m.backOff {
		t.Fatal("expected back-off to be held")
	}
	if x, y := m.dynamic.Target(m.lastT); x != 3096 || y != 2048 {
		t.Fatalf("back-off target = (%d, %d), want (3096, 2048)", x, y)
	}
	m = pressKey(t, m, runeKey('b'))
	if m.backOff {
		t.Fatal("expected second 'b' to release back-off")
	}
}

func TestTypeUIAlphabetPicker(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)

	m = pressKey(t, m, runeKey('a'))
	if !m.picking {
		t.Fatal("expected picker to open")
	}
	want := -1
	for i, id := range m.alphabets {
		if id == "Numbers" {
			want = i
		}
	}
	if want < 0 {
		t.Fatalf("Numbers missing from %v", m.alphabets)
	}
	for m.pickIndex < want {
		m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	for m.pickIndex > want {
		m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	m = pressKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.picking {
		t.Fatal("expected picker to close on enter")
	}
	if got := m.sess.Alphabet().ID(); got != "Numbers" {
		t.Fatalf("alphabet = %q, want Numbers", got)
	}
	if got := m.params.GetString(config.StringColourID); got != "Rainbow" {
		t.Fatalf("colours = %q, want the alphabet's palette", got)
	}
}

func TestTypeUIColourKeyCycles(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)
	before := m.params.GetString(config.StringColourID)

	m = pressKey(t, m, runeKey('c'))
	after := m.params.GetString(config.StringColourID)
	if after == before {
		t.Fatalf("expected colour scheme to change from %q", before)
	}
	if m.sess.ColourScheme().ID != after {
		t.Fatalf("session colours = %q, want %q", m.sess.ColourScheme().ID, after)
	}
}

func TestTypeUIViewShowsStatus(t *testing.T) {
	m := newTestTypeUI(t, inputMouse)
	if got := m.View(); got != "Loading zoomtype..." {
		t.Fatalf("View before size = %q", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(typeUIModel)
	next, _ = m.Update(typeFrameMsg{at: time.Unix(0, 0).Add(20 * time.Millisecond)})
	m = next.(typeUIModel)

	out := stripANSI(m.View())
	for _, want := range []string{"zoomtype", "alphabet=English with limited punctuation", "[Paused]", "Speed"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{line: "Warning: failed to save training text", want: "error"},
		{line: "Warning: alphabet \"x\" not loaded", want: "warn"},
		{line: "Training file /tmp/x.txt not used: missing", want: "warn"},
		{line: "Trained on 12 symbols from /tmp/x.txt", want: "info"},
	}

	for _, tc := range tests {
		if got := logLevel(tc.line); got != tc.want {
			t.Fatalf("logLevel(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}

func TestTypeLogForwarderSplitsLines(t *testing.T) {
	var mu sync.Mutex
	var got []string
	w := newTypeLogForwarder(func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg.(typeLedgerMsg).text)
	})

	fmt.Fprint(w, "one\ntw")
	fmt.Fprint(w, "o\n\n")
	fmt.Fprint(w, "three")
	w.close()

	mu.Lock()
	defer mu.Unlock()
	want := []string{"one", "two", "three"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("lines = %v, want %v", got, want)
	}
}
