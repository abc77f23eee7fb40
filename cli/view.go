package cli

import (
	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/nav"
	"github.com/yoanbernabeu/zoomtype/session"
)

// Start box for mouse-position mode, in navigation units around the
// crosshair, and how long the pointer must rest in it.
const (
	startBoxHalf = 256
	startHoldMS  = 1000
)

// boxView draws the visible part of the tree as nested boxes, labelled
// with their symbols, plus the crosshair and the pointer.
type boxView struct {
	params *config.Store
	screen session.Screen
	model  *nav.Model

	lastCursor nav.Cursor
	lastX      int64
	lastY      int64
	drawn      bool
	holdSince  int64
}

// newViewFactory returns the session.ViewFactory for the terminal.
func newViewFactory(params *config.Store) session.ViewFactory {
	return func(id int64, screen session.Screen, model *nav.Model) session.View {
		return &boxView{params: params, screen: screen, model: model, holdSince: -1}
	}
}

func (v *boxView) ChangeScreen(s session.Screen) {
	v.screen = s
	v.drawn = false
}

func (v *boxView) ResetAccumulators() {
	v.holdSince = -1
}

func (v *boxView) Render(x, y int64, force bool) bool {
	cur := v.model.Cursor()
	if !force && v.drawn && cur.Root == v.lastCursor.Root &&
		cur.Min == v.lastCursor.Min && cur.Max == v.lastCursor.Max &&
		x == v.lastX && y == v.lastY {
		return false
	}
	v.lastCursor, v.lastX, v.lastY, v.drawn = cur, x, y, true

	ts, ok := v.screen.(*termScreen)
	if !ok {
		return true
	}
	ts.mirror = v.params.GetLong(config.LongRealOrientation) == config.OrientationRightToLeft
	ts.clear()

	_, rows := ts.size()
	minHeight := float64(nav.MaxY) / float64(rows)
	a := v.model.Alphabet()
	controls := v.model.Controls()

	v.model.Walk(minHeight, func(nv nav.NodeView) bool {
		height := nv.Max - nv.Min
		left := int64(height)
		if left > screenMaxX {
			left = screenMaxX
		}
		x1, y1 := ts.NavigationToScreen(left, int64(nv.Min))
		x2, y2 := ts.NavigationToScreen(0, int64(nv.Max))
		fill, label := v.boxStyle(nv.Node, a, controls)
		ts.DrawRectangle(x1, y1, x2, y2, fill, colourOutline, 1)

		if label != "" {
			top := max(y1, 0)
			bottom := min(y2, rows)
			col := min(x1, x2) + 1
			if ts.mirror {
				col = max(x1, x2) - 1 - len([]rune(label))
			}
			ts.DrawText(col, (top+bottom)/2, label, colourText)
		}
		return true
	})

	if v.params.GetLong(config.LongMousePosBox) >= 0 {
		bx1, by1 := ts.NavigationToScreen(nav.CrossX+startBoxHalf, nav.CrossY-startBoxHalf)
		bx2, by2 := ts.NavigationToScreen(nav.CrossX-startBoxHalf, nav.CrossY+startBoxHalf)
		ts.DrawRectangle(bx1, by1, bx2, by2, noColour, colourCrosshair, 1)
	}

	cx, _ := ts.NavigationToScreen(nav.CrossX, 0)
	for row := 0; row < rows; row++ {
		ts.DrawText(cx, row, "┊", colourCrosshair)
	}
	_, cy := ts.NavigationToScreen(0, nav.CrossY)
	ts.DrawText(cx, cy, "┼", colourCrosshair)

	px, py := ts.NavigationToScreen(x, y)
	ts.DrawText(px, py, "●", colourCrosshair)
	return true
}

func (v *boxView) boxStyle(n *nav.Node, a *alphabet.Alphabet, controls *nav.ControlGraph) (int, string) {
	switch {
	case n.IsControl():
		return controls.Colour(n.ControlID()), controls.Label(n.ControlID())
	case n.Symbol() == alphabet.NoSymbol:
		return colourRoot, ""
	default:
		return a.TextColour(n.Symbol()), a.DisplayText(n.Symbol())
	}
}

// Display is a no-op: the Bubble Tea model prints the screen in View.
func (v *boxView) Display() {}

func (v *boxView) HandleStartOnMouse(t int64) bool {
	inBox := v.lastX >= nav.CrossX-startBoxHalf && v.lastX <= nav.CrossX+startBoxHalf &&
		v.lastY >= nav.CrossY-startBoxHalf && v.lastY <= nav.CrossY+startBoxHalf
	if !inBox || v.params.GetLong(config.LongMousePosBox) < 0 {
		v.holdSince = -1
		return false
	}
	if v.holdSince < 0 {
		v.holdSince = t
		return false
	}
	if t-v.holdSince >= startHoldMS {
		v.holdSince = -1
		return true
	}
	return false
}

var _ session.View = (*boxView)(nil)
