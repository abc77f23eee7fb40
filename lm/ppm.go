package lm

import (
	"math"
	"sync"

	"github.com/yoanbernabeu/zoomtype/alphabet"
)

// weightScale converts probabilities into integer weights.
const weightScale = 1 << 20

// TrieNode counts how often each symbol followed one context.
type TrieNode struct {
	Total    uint32
	Children map[alphabet.Symbol]*TrieNode
	Count    uint32
}

func (n *TrieNode) child(s alphabet.Symbol, create bool) *TrieNode {
	if c, ok := n.Children[s]; ok {
		return c
	}
	if !create {
		return nil
	}
	if n.Children == nil {
		n.Children = make(map[alphabet.Symbol]*TrieNode)
	}
	c := &TrieNode{}
	n.Children[s] = c
	return c
}

// PPM is a prediction-by-partial-match model using escape method C,
// blended with a uniform floor. Safe for concurrent use.
type PPM struct {
	mu         sync.RWMutex
	order      int
	numSymbols int
	uniform    float64
	root       *TrieNode
}

// NewPPM returns an untrained model. uniformPerMille is the share of
// probability mass spread evenly over all symbols.
func NewPPM(numSymbols, order, uniformPerMille int) *PPM {
	if order < 0 {
		order = 0
	}
	if uniformPerMille < 1 {
		uniformPerMille = 1
	}
	if uniformPerMille > 1000 {
		uniformPerMille = 1000
	}
	return &PPM{
		order:      order,
		numSymbols: numSymbols,
		uniform:    float64(uniformPerMille) / 1000,
		root:       &TrieNode{},
	}
}

func (m *PPM) Order() int             { return m.order }
func (m *PPM) NumSymbols() int        { return m.numSymbols }
func (m *PPM) ContextSensitive() bool { return m.order > 0 }

// Learn updates the counts of s under every suffix of context up to the
// model order.
func (m *PPM) Learn(context []alphabet.Symbol, s alphabet.Symbol) {
	if s < 1 || int(s) > m.numSymbols {
		return
	}
	context = trim(context, m.order)

	m.mu.Lock()
	defer m.mu.Unlock()
	for k := 0; k <= len(context); k++ {
		node := m.root
		for _, c := range context[len(context)-k:] {
			node = node.child(c, true)
		}
		node.child(s, true).Count++
		node.Total++
	}
}

// Distribution blends the predictions of every context order from the
// longest down, each lower order receiving the escape mass of the one above.
func (m *PPM) Distribution(context []alphabet.Symbol) []Prob {
	context = trim(context, m.order)
	probs := make([]float64, m.numSymbols+1)
	escape := 1.0

	m.mu.RLock()
	for k := len(context); k >= 0; k-- {
		node := m.root
		for _, c := range context[len(context)-k:] {
			if node = node.child(c, false); node == nil {
				break
			}
		}
		if node == nil || node.Total == 0 {
			continue
		}
		distinct := 0.0
		for _, c := range node.Children {
			if c.Count > 0 {
				distinct++
			}
		}
		denom := float64(node.Total) + distinct
		for s, c := range node.Children {
			if int(s) <= m.numSymbols {
				probs[s] += escape * float64(c.Count) / denom
			}
		}
		escape *= distinct / denom
	}
	m.mu.RUnlock()

	out := make([]Prob, m.numSymbols)
	n := float64(m.numSymbols)
	for i := range out {
		s := alphabet.Symbol(i + 1)
		p := (1-m.uniform)*(probs[s]+escape/n) + m.uniform/n
		w := math.Round(p * weightScale)
		if w < 1 {
			w = 1
		}
		out[i] = Prob{Symbol: s, Weight: uint32(w)}
	}
	return out
}

// Contexts returns the number of distinct contexts stored.
func (m *PPM) Contexts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countNodes(m.root)
}

func countNodes(n *TrieNode) int {
	total := 1
	for _, c := range n.Children {
		total += countNodes(c)
	}
	return total
}

// Observations returns how many symbols the model has learned.
func (m *PPM) Observations() uint32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root.Total
}

func trim(context []alphabet.Symbol, order int) []alphabet.Symbol {
	if len(context) > order {
		return context[len(context)-order:]
	}
	return context
}
