package cli

import (
	"strings"
	"testing"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/event"
	"github.com/yoanbernabeu/zoomtype/lm"
	"github.com/yoanbernabeu/zoomtype/nav"
)

func TestTermScreenCoordinatesRoundTrip(t *testing.T) {
	for _, mirror := range []bool{false, true} {
		s := newTermScreen(80, 20)
		s.mirror = mirror
		for row := 0; row < 20; row++ {
			for col := 0; col < 80; col++ {
				x, y := s.ScreenToNavigation(col, row)
				gotCol, gotRow := s.NavigationToScreen(x, y)
				if gotCol != col || gotRow != row {
					t.Fatalf("mirror=%v (%d,%d) -> (%d,%d) -> (%d,%d)", mirror, col, row, x, y, gotCol, gotRow)
				}
			}
		}
	}
}

func TestTermScreenDrawRectangle(t *testing.T) {
	s := newTermScreen(10, 5)
	s.DrawRectangle(5, 3, 2, 1, 7, colourOutline, 1)

	for row := 0; row < 5; row++ {
		for col := 0; col < 10; col++ {
			ch, fg, bg := s.Cell(col, row)
			inside := col >= 2 && col < 5 && row >= 1 && row < 3
			if inside && bg != 7 {
				t.Fatalf("cell (%d,%d) bg = %d, want 7", col, row, bg)
			}
			if !inside && bg != colourBackground {
				t.Fatalf("cell (%d,%d) bg = %d, want background", col, row, bg)
			}
			if inside && col == 2 && (ch != '▏' || fg != colourOutline) {
				t.Fatalf("cell (%d,%d) = %q fg %d, want outline", col, row, ch, fg)
			}
		}
	}
}

func TestTermScreenDrawTextClips(t *testing.T) {
	s := newTermScreen(10, 2)
	s.DrawText(8, 0, "abcd", colourText)
	s.DrawText(-1, 1, "xy", colourText)
	s.DrawText(0, 5, "nope", colourText)

	if ch, _, _ := s.Cell(8, 0); ch != 'a' {
		t.Fatalf("cell (8,0) = %q, want a", ch)
	}
	if ch, _, _ := s.Cell(9, 0); ch != 'b' {
		t.Fatalf("cell (9,0) = %q, want b", ch)
	}
	if ch, _, _ := s.Cell(0, 1); ch != 'y' {
		t.Fatalf("cell (0,1) = %q, want y", ch)
	}
	if ch, fg, _ := s.Cell(10, 0); ch != 0 || fg != noColour {
		t.Fatalf("out of range cell = %q %d", ch, fg)
	}
}

func abcModel(t *testing.T, params *config.Store) *nav.Model {
	t.Helper()
	a := alphabet.New(alphabet.Info{
		ID:      "abc",
		Symbols: []alphabet.SymbolInfo{{Text: "a"}, {Text: "b"}, {Text: "c"}},
	})
	m := nav.New(lm.NewUniform(a.NumberSymbols()), a, params)
	m.Start()
	return m
}

func TestBoxViewRendersTree(t *testing.T) {
	params := config.NewStore()
	screen := newTermScreen(40, 10)
	v := newViewFactory(params)(1, screen, abcModel(t, params))

	if !v.Render(1000, 1000, true) {
		t.Fatal("expected first render to report a change")
	}
	if v.Render(1000, 1000, false) {
		t.Fatal("expected unchanged render to report no change")
	}

	out := stripANSI(screen.String())
	for _, want := range []string{"a", "b", "c", "┼", "●"} {
		if !strings.Contains(out, want) {
			t.Fatalf("screen missing %q:\n%s", want, out)
		}
	}
	cx, cy := screen.NavigationToScreen(nav.CrossX, nav.CrossY)
	if ch, _, _ := screen.Cell(cx, cy); ch != '┼' {
		t.Fatalf("crosshair cell = %q", ch)
	}
	px, py := screen.NavigationToScreen(1000, 1000)
	if ch, _, _ := screen.Cell(px, py); ch != '●' {
		t.Fatalf("pointer cell = %q", ch)
	}
}

func TestBoxViewStartOnMouse(t *testing.T) {
	params := config.NewStore()
	params.SetLong(config.LongMousePosBox, 1)
	v := &boxView{params: params, holdSince: -1, lastX: nav.CrossX, lastY: nav.CrossY}

	if v.HandleStartOnMouse(0) {
		t.Fatal("expected no start on first frame in the box")
	}
	if v.HandleStartOnMouse(startHoldMS - 1) {
		t.Fatal("expected no start before the hold time")
	}
	if !v.HandleStartOnMouse(startHoldMS) {
		t.Fatal("expected start after holding")
	}

	v.lastX = nav.CrossX + 2*startBoxHalf
	if v.HandleStartOnMouse(5000) {
		t.Fatal("expected no start outside the box")
	}

	v.lastX = nav.CrossX
	params.SetLong(config.LongMousePosBox, -1)
	v.HandleStartOnMouse(6000)
	if v.HandleStartOnMouse(6000 + startHoldMS) {
		t.Fatal("expected no start while the box is hidden")
	}
}

func TestTextEditbox(t *testing.T) {
	e := newTextEditbox()
	e.HandleEvent(event.EditInserted{Text: "ab"})
	e.HandleEvent(event.EditInserted{Text: "c"})
	e.HandleEvent(event.EditDeleted{Text: "c"})
	if got := e.String(); got != "ab" {
		t.Fatalf("text = %q, want ab", got)
	}

	e.HandleEvent(event.EditDeleted{Text: "x"})
	if got := e.String(); got != "ab" {
		t.Fatalf("mismatched delete changed text to %q", got)
	}

	e.Reset()
	if got := e.String(); got != "" {
		t.Fatalf("text after reset = %q", got)
	}
}

func TestTextHelpers(t *testing.T) {
	if got := truncateRunes("abcdefgh", 6); got != "abc..." {
		t.Fatalf("truncateRunes = %q", got)
	}
	if got := tailRunes("abcdefgh", 6); got != "...fgh" {
		t.Fatalf("tailRunes = %q", got)
	}
	if got := tailRunes("abc", 6); got != "abc" {
		t.Fatalf("tailRunes short = %q", got)
	}
	if canvas, ledger := canvasHeights(8); canvas != 8 || ledger != 0 {
		t.Fatalf("canvasHeights(8) = %d, %d", canvas, ledger)
	}
	if canvas, ledger := canvasHeights(40); canvas+ledger != 40 || ledger != 10 {
		t.Fatalf("canvasHeights(40) = %d, %d", canvas, ledger)
	}
}

func TestGaugeEfficiency(t *testing.T) {
	g := newGaugeModel(newTUITheme(nil))
	if g.efficiency() != 0 {
		t.Fatal("expected zero efficiency before any text")
	}
	g.setInformation(3.0, 3, 27)
	if got := g.natsPerSymbol(); got != 1.0 {
		t.Fatalf("natsPerSymbol = %v, want 1", got)
	}
	if got := g.efficiency(); got <= 0 || got >= 1 {
		t.Fatalf("efficiency = %v, want between 0 and 1", got)
	}
}
