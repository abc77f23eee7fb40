// Package nav implements the zooming probability tree the user steers
// through to write text.
package nav

import (
	"math"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/lm"
)

// Navigation space geometry.
const (
	MaxY          = 4096
	CrossX        = 2048
	CrossY        = 2048
	Normalization = 1 << 16
	Hysteresis    = 64

	// MaxHistory bounds how many committed ancestors stay reachable.
	MaxHistory = 256
	// ControlShare is the slice of a text node given to its control child.
	ControlShare = Normalization / 20

	maxFrameDelta   = 200 // ms
	maxStepsInFrame = 1024
	minRamp         = 0.1
)

// FrameResult reports what one frame committed or undid.
type FrameResult struct {
	Committed []alphabet.Symbol
	Deleted   int
	// Removed lists the deleted symbols, most recent first.
	Removed  []alphabet.Symbol
	Controls []int
}

// Empty reports whether the frame changed nothing the caller must act on.
func (r FrameResult) Empty() bool {
	return len(r.Committed) == 0 && r.Deleted == 0 && len(r.Controls) == 0
}

// Cursor is the current view onto the tree.
type Cursor struct {
	Root *Node
	// Min and Max are the root's screen range in navigation units.
	Min, Max float64
	Nats     float64
}

// NodeView is a node with its current screen range, as passed to Walk.
type NodeView struct {
	Node     *Node
	Min, Max float64
	Depth    int
}

// Model owns the tree, the cursor and the entropy counter. It is driven
// from a single goroutine.
type Model struct {
	lm       lm.Model
	alphabet *alphabet.Alphabet
	params   *config.Store
	controls *ControlGraph

	context []alphabet.Symbol
	root    *Node
	depth   int
	min     float64
	max     float64
	nats    float64

	lastFrame int64
	haveFrame bool
	rampStart int64
}

// New builds a model over m using a's symbols. Call Start before the
// first frame.
func New(m lm.Model, a *alphabet.Alphabet, params *config.Store) *Model {
	return &Model{
		lm:       m,
		alphabet: a,
		params:   params,
		controls: NewControlGraph(),
	}
}

func (m *Model) Language() lm.Model           { return m.lm }
func (m *Model) Alphabet() *alphabet.Alphabet { return m.alphabet }
func (m *Model) Controls() *ControlGraph      { return m.controls }

// ContextSensitive reports whether predictions depend on preceding text.
func (m *Model) ContextSensitive() bool { return m.lm.ContextSensitive() }

// Start rebuilds the root at the current context over the whole screen.
func (m *Model) Start() {
	m.root = &Node{
		symbol:  alphabet.NoSymbol,
		lo:      0,
		hi:      Normalization,
		context: append([]alphabet.Symbol(nil), m.context...),
	}
	m.depth = 0
	m.min, m.max = 0, MaxY
	m.haveFrame = false
	m.expand(m.root)
}

// Halt forgets the last frame time, so the next frame moves nothing.
func (m *Model) Halt() {
	m.haveFrame = false
}

// ResetFramerate restarts the slow-start ramp at t (ms).
func (m *Model) ResetFramerate(t int64) {
	m.rampStart = t
	m.lastFrame = t
	m.haveFrame = true
}

// SetContext converts text into the context for new roots and restarts.
func (m *Model) SetContext(text string) {
	syms, _ := m.alphabet.Symbols(text, false)
	order := m.lm.Order()
	if len(syms) > order {
		syms = syms[len(syms)-order:]
	}
	m.context = append([]alphabet.Symbol(nil), syms...)
	m.Start()
}

// Context returns the symbols the current root grew from.
func (m *Model) Context() []alphabet.Symbol {
	return append([]alphabet.Symbol(nil), m.context...)
}

// Train learns syms as one stream. The live tree keeps its sizes until
// the next Start.
func (m *Model) Train(syms []alphabet.Symbol) {
	lm.Train(m.lm, syms)
}

// Trainer returns a stream trainer for the language model.
func (m *Model) Trainer() *lm.Trainer {
	return lm.NewTrainer(m.lm)
}

func (m *Model) RegisterControlNode(id int, label string, colour int) {
	m.controls.Register(id, label, colour)
}

func (m *Model) ConnectControlNode(child, parent, after int) {
	m.controls.Connect(child, parent, after)
}

// Nats returns the information gathered since the last ResetNats.
func (m *Model) Nats() float64 { return m.nats }

func (m *Model) ResetNats() { m.nats = 0 }

func (m *Model) Root() *Node { return m.root }

func (m *Model) Cursor() Cursor {
	return Cursor{Root: m.root, Min: m.min, Max: m.max, Nats: m.nats}
}

// Children expands n if needed and returns its children.
func (m *Model) Children(n *Node) []*Node {
	m.expand(n)
	return n.children
}

// AdvanceFrame moves the cursor toward (x, y) for the time since the
// previous frame, then commits or undoes nodes as they cross the screen.
func (m *Model) AdvanceFrame(t, x, y int64) FrameResult {
	var res FrameResult
	if m.root == nil {
		return res
	}
	if !m.haveFrame {
		m.lastFrame = t
		m.haveFrame = true
		return res
	}
	dt := t - m.lastFrame
	m.lastFrame = t
	if dt <= 0 {
		return res
	}
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}
	if x == CrossX && y == CrossY {
		return res
	}

	step := m.rate(t) * float64(dt) / 1000
	fx := clamp(float64(x), 0, 2*CrossX)
	fy := clamp(float64(y), 0, MaxY)
	lnk := step * (CrossX - fx) / CrossX
	k := math.Exp(lnk)
	a := math.Min(1, step)
	target := fy + (CrossY-fy)*a

	m.min = target + (m.min-fy)*k
	m.max = target + (m.max-fy)*k

	m.rebalance(&res)
	m.addNats(lnk + m.clampRoot())
	return res
}

func (m *Model) rate(t int64) float64 {
	r := float64(m.params.GetLong(config.LongMaxBitrate)) / 100
	if !m.params.GetBool(config.BoolSlowStart) {
		return r
	}
	span := m.params.GetLong(config.LongSlowStartTime)
	if span <= 0 {
		return r
	}
	ramp := float64(t-m.rampStart) / float64(span)
	return r * clamp(ramp, minRamp, 1)
}

func (m *Model) addNats(d float64) {
	m.nats += d
	if m.nats < 0 {
		m.nats = 0
	}
}

func (m *Model) rebalance(res *FrameResult) {
	for i := 0; i < maxStepsInFrame; i++ {
		if m.commit(res) || m.backOff(res) {
			continue
		}
		return
	}
}

// commit promotes the root's crosshair child once it spans the screen
// plus the hysteresis margin.
func (m *Model) commit(res *FrameResult) bool {
	m.expand(m.root)
	height := m.max - m.min
	for _, c := range m.root.children {
		cmin := m.min + height*float64(c.lo)/Normalization
		cmax := m.min + height*float64(c.hi)/Normalization
		if cmin > CrossY || cmax <= CrossY {
			continue
		}
		if cmin > -Hysteresis || cmax < MaxY+Hysteresis {
			return false
		}
		m.root.children = nil
		m.root = c
		m.min, m.max = cmin, cmax
		m.depth++
		m.trimHistory()
		switch {
		case c.control:
			if c.controlID != ControlRoot {
				res.Controls = append(res.Controls, c.controlID)
			}
		case c.symbol != alphabet.NoSymbol:
			res.Committed = append(res.Committed, c.symbol)
		}
		return true
	}
	return false
}

// backOff returns to the parent once the root is shorter than the screen
// or has slid off the crosshair.
func (m *Model) backOff(res *FrameResult) bool {
	old := m.root
	p := old.parent
	if p == nil || m.holds() {
		return false
	}
	width := float64(old.hi - old.lo)
	if width <= 0 {
		return false
	}
	pHeight := (m.max - m.min) * Normalization / width
	pMin := m.min - pHeight*float64(old.lo)/Normalization

	m.expand(p)
	for i, c := range p.children {
		if c.sameSlot(old) {
			p.children[i] = old
			break
		}
	}
	m.root = p
	m.depth--
	m.min, m.max = pMin, pMin+pHeight

	if old.control {
		if n := len(res.Controls); n > 0 && res.Controls[n-1] == old.controlID {
			res.Controls = res.Controls[:n-1]
		}
		return true
	}
	if old.symbol == alphabet.NoSymbol {
		return true
	}
	if n := len(res.Committed); n > 0 && res.Committed[n-1] == old.symbol {
		res.Committed = res.Committed[:n-1]
	} else {
		res.Deleted++
		res.Removed = append(res.Removed, old.symbol)
	}
	return true
}

// clampRoot keeps a parentless root at least screen tall and over the
// crosshair. It returns the log of any rescaling applied.
func (m *Model) clampRoot() float64 {
	if m.root.parent != nil {
		return 0
	}
	var scaled float64
	if h := m.max - m.min; h < MaxY {
		scaled = math.Log(MaxY / h)
		mid := (m.min + m.max) / 2
		m.min, m.max = mid-MaxY/2, mid+MaxY/2
	}
	if m.min > CrossY {
		m.max -= m.min - CrossY
		m.min = CrossY
	}
	if m.max < CrossY {
		m.min += CrossY - m.max
		m.max = CrossY
	}
	return scaled
}

func (m *Model) holds() bool {
	return m.max-m.min >= MaxY && m.min <= CrossY && m.max >= CrossY
}

func (m *Model) trimHistory() {
	if m.depth <= MaxHistory {
		return
	}
	n := m.root
	for i := 0; i < MaxHistory && n.parent != nil; i++ {
		n = n.parent
	}
	n.parent = nil
	m.depth = MaxHistory
}

func (m *Model) controlMode() bool {
	return m.params.GetBool(config.BoolControlMode) && len(m.controls.Children(ControlRoot)) > 0
}

// expand fills n's children when they are missing.
func (m *Model) expand(n *Node) {
	if n.children != nil {
		return
	}
	if n.control {
		if kids := m.controls.Children(n.controlID); len(kids) > 0 {
			weights := make([]uint64, len(kids))
			for i := range weights {
				weights[i] = 1
			}
			spans := tile(weights, Normalization)
			n.children = make([]*Node, len(kids))
			for i, id := range kids {
				n.children[i] = &Node{
					symbol:    alphabet.NoSymbol,
					lo:        spans[i][0],
					hi:        spans[i][1],
					parent:    n,
					control:   true,
					controlID: id,
					context:   n.context,
				}
			}
			return
		}
	}

	dist := rank(m.lm.Distribution(n.context))
	space := int64(Normalization)
	withControl := !n.control && m.controlMode()
	if withControl {
		space -= ControlShare
	}
	weights := make([]uint64, len(dist))
	for i, p := range dist {
		weights[i] = uint64(p.Weight)
	}
	spans := tile(weights, space)
	order := m.lm.Order()

	n.children = make([]*Node, 0, len(dist)+1)
	for i, p := range dist {
		n.children = append(n.children, &Node{
			symbol:  p.Symbol,
			lo:      spans[i][0],
			hi:      spans[i][1],
			parent:  n,
			context: childContext(n.context, p.Symbol, order),
		})
	}
	if withControl {
		n.children = append(n.children, &Node{
			symbol:    alphabet.NoSymbol,
			lo:        space,
			hi:        Normalization,
			parent:    n,
			control:   true,
			controlID: ControlRoot,
			context:   n.context,
		})
	}
}

// Range returns n's current screen range, if n is the root or below it.
func (m *Model) Range(n *Node) (float64, float64, bool) {
	var path []*Node
	for c := n; c != m.root; c = c.parent {
		if c == nil {
			return 0, 0, false
		}
		path = append(path, c)
	}
	lo, hi := m.min, m.max
	for i := len(path) - 1; i >= 0; i-- {
		h := hi - lo
		c := path[i]
		lo, hi = lo+h*float64(c.lo)/Normalization, lo+h*float64(c.hi)/Normalization
	}
	return lo, hi, true
}

// Walk visits the root and every descendant that is on screen and at
// least minHeight tall, parents before children. Returning false from fn
// skips the node's children.
func (m *Model) Walk(minHeight float64, fn func(NodeView) bool) {
	if m.root == nil {
		return
	}
	if minHeight < 1 {
		minHeight = 1
	}
	m.walk(NodeView{Node: m.root, Min: m.min, Max: m.max}, minHeight, fn)
}

func (m *Model) walk(v NodeView, minHeight float64, fn func(NodeView) bool) {
	if !fn(v) {
		return
	}
	h := v.Max - v.Min
	for _, c := range m.Children(v.Node) {
		cmin := v.Min + h*float64(c.lo)/Normalization
		cmax := v.Min + h*float64(c.hi)/Normalization
		if cmax < 0 || cmin > MaxY || cmax-cmin < minHeight {
			continue
		}
		m.walk(NodeView{Node: c, Min: cmin, Max: cmax, Depth: v.Depth + 1}, minHeight, fn)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
