// Package alphabet maps symbol identifiers to text and colours.
package alphabet

import (
	"strings"
	"unicode/utf8"
)

// Symbol identifies one entry of an Alphabet. Valid symbols start at 1.
type Symbol int

// NoSymbol marks nodes that carry no text (the root and control nodes).
const NoSymbol Symbol = 0

// DefaultTextColour is returned for symbols that have no colour.
const DefaultTextColour = 4

// Type classifies the script of an alphabet.
type Type int

const (
	TypeWestern Type = iota
	TypeHebrew
	TypeNumeric
)

func (t Type) String() string {
	switch t {
	case TypeWestern:
		return "western"
	case TypeHebrew:
		return "hebrew"
	case TypeNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// SymbolInfo describes one symbol.
type SymbolInfo struct {
	Text    string // inserted into the editor
	Display string // drawn in the box, Text when empty
	Colour  int
}

// Info is the static description of an alphabet.
type Info struct {
	ID           string
	TrainingFile string
	GameModeFile string
	Palette      string
	Orientation  int64
	Type         Type
	// FoldCase lowercases input runes that have no exact symbol.
	FoldCase bool
	Symbols  []SymbolInfo
}

// Alphabet is an immutable symbol table built from an Info.
type Alphabet struct {
	info       Info
	byText     map[string]Symbol
	prefixes   map[string]bool
	maxTextLen int
}

// New builds an Alphabet. Symbol i+1 is info.Symbols[i]; entries with
// empty text or text already taken are unreachable from Symbols.
func New(info Info) *Alphabet {
	a := &Alphabet{
		info:     info,
		byText:   make(map[string]Symbol, len(info.Symbols)),
		prefixes: make(map[string]bool),
	}
	for i, s := range info.Symbols {
		if s.Text == "" {
			continue
		}
		if _, dup := a.byText[s.Text]; dup {
			continue
		}
		a.byText[s.Text] = Symbol(i + 1)
		r := []rune(s.Text)
		if len(r) > a.maxTextLen {
			a.maxTextLen = len(r)
		}
		for n := 1; n < len(r); n++ {
			a.prefixes[string(r[:n])] = true
		}
	}
	return a
}

func (a *Alphabet) ID() string           { return a.info.ID }
func (a *Alphabet) TrainingFile() string { return a.info.TrainingFile }
func (a *Alphabet) GameModeFile() string { return a.info.GameModeFile }
func (a *Alphabet) Palette() string      { return a.info.Palette }
func (a *Alphabet) Orientation() int64   { return a.info.Orientation }
func (a *Alphabet) Type() Type           { return a.info.Type }

// NumberSymbols returns the count of symbols, excluding NoSymbol.
func (a *Alphabet) NumberSymbols() int {
	return len(a.info.Symbols)
}

// All returns every symbol in id order.
func (a *Alphabet) All() []Symbol {
	out := make([]Symbol, len(a.info.Symbols))
	for i := range out {
		out[i] = Symbol(i + 1)
	}
	return out
}

func (a *Alphabet) lookup(s Symbol) (SymbolInfo, bool) {
	if s < 1 || int(s) > len(a.info.Symbols) {
		return SymbolInfo{}, false
	}
	return a.info.Symbols[s-1], true
}

// Text returns the edit text of s, "" if s is not in the alphabet.
func (a *Alphabet) Text(s Symbol) string {
	info, _ := a.lookup(s)
	return info.Text
}

// DisplayText returns the label drawn for s.
func (a *Alphabet) DisplayText(s Symbol) string {
	info, ok := a.lookup(s)
	if !ok {
		return ""
	}
	if info.Display != "" {
		return info.Display
	}
	return info.Text
}

// TextColour returns the colour index of s.
func (a *Alphabet) TextColour(s Symbol) int {
	info, ok := a.lookup(s)
	if !ok {
		return DefaultTextColour
	}
	return info.Colour
}

// SymbolFor returns the symbol whose edit text is exactly text.
func (a *Alphabet) SymbolFor(text string) (Symbol, bool) {
	s, ok := a.byText[text]
	return s, ok
}

// Symbols decodes text into symbols using longest match. Runes with no
// symbol are skipped. When more is true the input is a chunk of a longer
// stream: a trailing incomplete UTF-8 sequence, or a tail that may still
// grow into a multi-rune symbol, is returned unconsumed.
func (a *Alphabet) Symbols(text string, more bool) ([]Symbol, string) {
	var held string
	if more {
		text, held = splitIncompleteRune(text)
	}

	runes := []rune(text)
	out := make([]Symbol, 0, len(runes))
	for i := 0; i < len(runes); {
		if more && a.maxTextLen > 1 && len(runes)-i < a.maxTextLen && a.prefixes[string(runes[i:])] {
			return out, string(runes[i:]) + held
		}
		n, s := a.match(runes[i:])
		if n == 0 {
			i++
			continue
		}
		out = append(out, s)
		i += n
	}
	return out, held
}

func (a *Alphabet) match(runes []rune) (int, Symbol) {
	limit := a.maxTextLen
	if limit > len(runes) {
		limit = len(runes)
	}
	for n := limit; n > 0; n-- {
		chunk := string(runes[:n])
		if s, ok := a.byText[chunk]; ok {
			return n, s
		}
		if a.info.FoldCase {
			if s, ok := a.byText[strings.ToLower(chunk)]; ok {
				return n, s
			}
		}
	}
	return 0, NoSymbol
}

func splitIncompleteRune(text string) (string, string) {
	for k := 1; k <= utf8.UTFMax && k <= len(text); k++ {
		start := len(text) - k
		if !utf8.RuneStart(text[start]) {
			continue
		}
		if !utf8.FullRuneInString(text[start:]) {
			return text[:start], text[start:]
		}
		break
	}
	return text, ""
}

// String renders syms as edit text.
func (a *Alphabet) String(syms []Symbol) string {
	var b strings.Builder
	for _, s := range syms {
		b.WriteString(a.Text(s))
	}
	return b.String()
}
