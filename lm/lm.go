// Package lm provides the language models that size navigation nodes.
package lm

import (
	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
)

// Prob is one symbol's unnormalised weight in a distribution.
type Prob struct {
	Symbol alphabet.Symbol
	Weight uint32
}

// Model predicts the next symbol from the symbols before it.
type Model interface {
	// Distribution returns a weight for every symbol 1..NumSymbols, in
	// symbol order. Every weight is at least 1.
	Distribution(context []alphabet.Symbol) []Prob
	// Learn records that s followed context.
	Learn(context []alphabet.Symbol, s alphabet.Symbol)
	// Order is the number of preceding symbols the model looks at.
	Order() int
	NumSymbols() int
	ContextSensitive() bool
}

// Trainer feeds a stream of symbols into a model, carrying the context
// across calls. Discard it once the stream is finished.
type Trainer struct {
	m       Model
	context []alphabet.Symbol
}

// NewTrainer starts a training stream with an empty context.
func NewTrainer(m Model) *Trainer {
	return &Trainer{m: m}
}

// Train learns every symbol of syms in order.
func (t *Trainer) Train(syms []alphabet.Symbol) {
	order := t.m.Order()
	for _, s := range syms {
		if s < 1 || int(s) > t.m.NumSymbols() {
			continue
		}
		t.m.Learn(t.context, s)
		if order == 0 {
			continue
		}
		t.context = append(t.context, s)
		if len(t.context) > order {
			t.context = append(t.context[:0], t.context[len(t.context)-order:]...)
		}
	}
}

// Train learns syms as one stream starting from an empty context.
func Train(m Model, syms []alphabet.Symbol) {
	NewTrainer(m).Train(syms)
}

// New builds the model kind selected by config.LongLanguageModelID.
// Unknown kinds fall back to PPM.
func New(kind int64, numSymbols, order int, uniformPerMille int) Model {
	switch kind {
	case config.ModelUniform:
		return NewUniform(numSymbols)
	case config.ModelBigram:
		return NewPPM(numSymbols, 1, uniformPerMille)
	default:
		return NewPPM(numSymbols, order, uniformPerMille)
	}
}

// Uniform gives every symbol the same weight and learns nothing.
type Uniform struct {
	n int
}

// NewUniform returns a uniform model over n symbols.
func NewUniform(n int) *Uniform {
	return &Uniform{n: n}
}

func (u *Uniform) Distribution([]alphabet.Symbol) []Prob {
	out := make([]Prob, u.n)
	for i := range out {
		out[i] = Prob{Symbol: alphabet.Symbol(i + 1), Weight: 1}
	}
	return out
}

func (u *Uniform) Learn([]alphabet.Symbol, alphabet.Symbol) {}
func (u *Uniform) Order() int                               { return 0 }
func (u *Uniform) NumSymbols() int                          { return u.n }
func (u *Uniform) ContextSensitive() bool                   { return false }
