package nav

import (
	"sort"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/lm"
)

// Node is one symbol's share of its parent's probability interval.
type Node struct {
	symbol    alphabet.Symbol
	lo, hi    int64
	parent    *Node
	children  []*Node
	control   bool
	controlID int
	// context holds the symbols the language model sees after this node.
	context []alphabet.Symbol
}

func (n *Node) Symbol() alphabet.Symbol { return n.symbol }

// Lo and Hi bound the node inside its parent, in units of Normalization.
func (n *Node) Lo() int64 { return n.lo }
func (n *Node) Hi() int64 { return n.hi }

func (n *Node) Parent() *Node { return n.parent }

// Children returns the expanded children, nil when not expanded yet.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) IsControl() bool { return n.control }

// ControlID is meaningful only for control nodes.
func (n *Node) ControlID() int { return n.controlID }

// Context returns a copy of the symbols preceding this node's children.
func (n *Node) Context() []alphabet.Symbol {
	return append([]alphabet.Symbol(nil), n.context...)
}

// sameSlot reports whether o occupies the place n had in their parent.
func (n *Node) sameSlot(o *Node) bool {
	return n.lo == o.lo && n.hi == o.hi && n.symbol == o.symbol &&
		n.control == o.control && n.controlID == o.controlID
}

func childContext(parent []alphabet.Symbol, s alphabet.Symbol, order int) []alphabet.Symbol {
	if order <= 0 {
		return nil
	}
	ctx := make([]alphabet.Symbol, 0, order)
	start := len(parent) + 1 - order
	if start < 0 {
		start = 0
	}
	if start < len(parent) {
		ctx = append(ctx, parent[start:]...)
	}
	return append(ctx, s)
}

// rank orders a distribution by descending weight, ties by symbol id.
func rank(dist []lm.Prob) []lm.Prob {
	out := append([]lm.Prob(nil), dist...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// tile splits [0, space) among weights so that the pieces are contiguous
// and their union is exactly [0, space).
func tile(weights []uint64, space int64) [][2]int64 {
	var total uint64
	for _, w := range weights {
		total += w
	}
	out := make([][2]int64, len(weights))
	if total == 0 {
		return out
	}
	var cum uint64
	lo := int64(0)
	for i, w := range weights {
		cum += w
		hi := int64(cum * uint64(space) / total)
		if i == len(weights)-1 {
			hi = space
		}
		out[i] = [2]int64{lo, hi}
		lo = hi
	}
	return out
}
