package nav

import "sync"

// Well-known control node ids.
const (
	ControlNone  = -1
	ControlRoot  = 0
	ControlStop  = 1
	ControlPause = 2
)

type controlEntry struct {
	id       int
	label    string
	colour   int
	children []int
}

// ControlGraph is the set of registered control actions and how they
// nest. Entries are addressed by id, never by pointer.
type ControlGraph struct {
	mu      sync.RWMutex
	entries []controlEntry
	index   map[int]int
}

// NewControlGraph returns a graph holding only the control root.
func NewControlGraph() *ControlGraph {
	g := &ControlGraph{index: make(map[int]int)}
	g.Register(ControlRoot, "Control", 6)
	return g
}

// Register adds or relabels a control node. Negative ids are ignored.
func (g *ControlGraph) Register(id int, label string, colour int) {
	if id < 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if i, ok := g.index[id]; ok {
		g.entries[i].label = label
		g.entries[i].colour = colour
		return
	}
	g.index[id] = len(g.entries)
	g.entries = append(g.entries, controlEntry{id: id, label: label, colour: colour})
}

// Connect places child under parent, right after the sibling after, or
// first when after is ControlNone. Unknown ids leave the graph unchanged.
func (g *ControlGraph) Connect(child, parent, after int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.index[parent]
	if !ok {
		return
	}
	if _, ok := g.index[child]; !ok || child == parent {
		return
	}
	kids := g.entries[pi].children
	pos := 0
	if after != ControlNone {
		pos = -1
		for i, k := range kids {
			if k == after {
				pos = i + 1
				break
			}
		}
		if pos < 0 {
			return
		}
	}

	out := make([]int, 0, len(kids)+1)
	for i, k := range kids {
		if i == pos {
			out = append(out, child)
		}
		if k != child {
			out = append(out, k)
		}
	}
	if pos >= len(kids) {
		out = append(out, child)
	}
	g.entries[pi].children = out
}

// Disconnect removes child from parent's children.
func (g *ControlGraph) Disconnect(child, parent int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.index[parent]
	if !ok {
		return
	}
	kids := g.entries[pi].children[:0:0]
	for _, k := range g.entries[pi].children {
		if k != child {
			kids = append(kids, k)
		}
	}
	g.entries[pi].children = kids
}

// Children returns the ordered child ids of id.
func (g *ControlGraph) Children(id int) []int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return append([]int(nil), g.entries[i].children...)
}

func (g *ControlGraph) Has(id int) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.index[id]
	return ok
}

func (g *ControlGraph) Label(id int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i, ok := g.index[id]; ok {
		return g.entries[i].label
	}
	return ""
}

func (g *ControlGraph) Colour(id int) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if i, ok := g.index[id]; ok {
		return g.entries[i].colour
	}
	return 0
}

// RegisterDefaults adds the stop and pause actions under the root.
func (g *ControlGraph) RegisterDefaults() {
	g.Register(ControlStop, "Stop", 6)
	g.Register(ControlPause, "Pause", 6)
	g.Connect(ControlStop, ControlRoot, ControlNone)
	g.Connect(ControlPause, ControlRoot, ControlStop)
}
