package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/nav"
	"github.com/yoanbernabeu/zoomtype/session"
)

// Horizontal navigation range drawn on screen. x grows to the left; the
// strip right of x=0 holds the switch guides.
const (
	screenMinX int64 = -256
	screenMaxX int64 = nav.MaxY
)

// Palette indices used by the terminal screen.
const (
	colourBackground = 0
	colourOutline    = 3
	colourText       = 4
	colourCrosshair  = 5
	colourRoot       = 7
	noColour         = -1
)

type screenCell struct {
	ch rune
	fg int
	bg int
}

// termScreen is a grid of terminal cells that views and filters draw
// onto in navigation coordinates.
type termScreen struct {
	cols    int
	rows    int
	cells   []screenCell
	colours *alphabet.ColourScheme
	mirror  bool
	styles  map[[2]int]lipgloss.Style
}

func newTermScreen(cols, rows int) *termScreen {
	s := &termScreen{styles: make(map[[2]int]lipgloss.Style)}
	s.resize(cols, rows)
	return s
}

func (s *termScreen) resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	s.cols, s.rows = cols, rows
	s.cells = make([]screenCell, cols*rows)
	s.clear()
}

func (s *termScreen) size() (int, int) { return s.cols, s.rows }

func (s *termScreen) clear() {
	for i := range s.cells {
		s.cells[i] = screenCell{ch: ' ', fg: colourText, bg: colourBackground}
	}
}

func (s *termScreen) SetColourScheme(cs *alphabet.ColourScheme) {
	s.colours = cs
	s.styles = make(map[[2]int]lipgloss.Style)
}

// NavigationToScreen maps navigation coordinates to a column and row,
// which may fall outside the grid.
func (s *termScreen) NavigationToScreen(x, y int64) (int, int) {
	col := int((screenMaxX - x) * int64(s.cols) / (screenMaxX - screenMinX))
	if s.mirror {
		col = s.cols - 1 - col
	}
	row := int(y * int64(s.rows) / nav.MaxY)
	return col, row
}

// ScreenToNavigation is the inverse of NavigationToScreen for a cell centre.
func (s *termScreen) ScreenToNavigation(col, row int) (int64, int64) {
	if s.mirror {
		col = s.cols - 1 - col
	}
	x := screenMaxX - (int64(col)*2+1)*(screenMaxX-screenMinX)/(int64(s.cols)*2)
	y := (int64(row)*2 + 1) * nav.MaxY / (int64(s.rows) * 2)
	return x, y
}

// DrawRectangle fills the cells between the two corners. A negative
// colour leaves that part untouched; the outline is drawn on the edge
// farthest from the crosshair.
func (s *termScreen) DrawRectangle(x1, y1, x2, y2 int, fillColour, outlineColour int, thickness int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if x2 == x1 {
		x2++
	}
	if y2 == y1 {
		y2++
	}
	edge := x1
	if s.mirror {
		edge = x2 - 1
	}
	for row := max(y1, 0); row < min(y2, s.rows); row++ {
		for col := max(x1, 0); col < min(x2, s.cols); col++ {
			c := &s.cells[row*s.cols+col]
			if fillColour >= 0 {
				c.bg = fillColour
				c.ch = ' '
			}
			if thickness > 0 && outlineColour >= 0 && col == edge {
				c.ch = '▏'
				if s.mirror {
					c.ch = '▕'
				}
				c.fg = outlineColour
			}
		}
	}
}

// DrawText writes text from (col, row) rightwards, clipped to the grid.
func (s *termScreen) DrawText(col, row int, text string, colour int) {
	if row < 0 || row >= s.rows {
		return
	}
	for _, r := range text {
		if col >= s.cols {
			return
		}
		if col >= 0 {
			c := &s.cells[row*s.cols+col]
			c.ch = r
			if colour >= 0 {
				c.fg = colour
			}
		}
		col++
	}
}

// Cell returns the rune at (col, row), for tests and hit checks.
func (s *termScreen) Cell(col, row int) (rune, int, int) {
	if col < 0 || col >= s.cols || row < 0 || row >= s.rows {
		return 0, noColour, noColour
	}
	c := s.cells[row*s.cols+col]
	return c.ch, c.fg, c.bg
}

func (s *termScreen) style(fg, bg int) lipgloss.Style {
	key := [2]int{fg, bg}
	if st, ok := s.styles[key]; ok {
		return st
	}
	st := lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.colours.Colour(fg).Hex())).
		Background(lipgloss.Color(s.colours.Colour(bg).Hex()))
	s.styles[key] = st
	return st
}

// String renders the grid, one styled run per stretch of equal colours.
func (s *termScreen) String() string {
	var b strings.Builder
	var run []rune
	for row := 0; row < s.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		first := s.cells[row*s.cols]
		fg, bg := first.fg, first.bg
		run = run[:0]
		for col := 0; col < s.cols; col++ {
			c := s.cells[row*s.cols+col]
			if c.fg != fg || c.bg != bg {
				b.WriteString(s.style(fg, bg).Render(string(run)))
				run = run[:0]
				fg, bg = c.fg, c.bg
			}
			run = append(run, c.ch)
		}
		b.WriteString(s.style(fg, bg).Render(string(run)))
	}
	return b.String()
}

var _ session.Screen = (*termScreen)(nil)
