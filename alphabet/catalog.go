package alphabet

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yoanbernabeu/zoomtype/config"
)

var (
	// ErrUnknownAlphabet indicates an alphabet id missing from the catalog.
	ErrUnknownAlphabet = errors.New("unknown alphabet")

	// ErrUnknownColours indicates a colour scheme id missing from the catalog.
	ErrUnknownColours = errors.New("unknown colour scheme")
)

// Catalog holds the alphabets and colour schemes a session can switch to.
type Catalog struct {
	mu        sync.RWMutex
	alphabets map[string]Info
	colours   map[string]ColourScheme
}

// NewCatalog returns a catalog preloaded with the built-in alphabets and
// colour schemes.
func NewCatalog() *Catalog {
	c := &Catalog{
		alphabets: make(map[string]Info),
		colours:   make(map[string]ColourScheme),
	}
	for _, info := range builtinAlphabets() {
		c.Register(info)
	}
	for _, cs := range builtinColours() {
		c.RegisterColours(cs)
	}
	return c
}

// Register adds or replaces an alphabet description.
func (c *Catalog) Register(info Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alphabets[info.ID] = info
}

// RegisterColours adds or replaces a colour scheme.
func (c *Catalog) RegisterColours(cs ColourScheme) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colours[cs.ID] = cs
}

// Info returns the description of the alphabet id.
func (c *Catalog) Info(id string) (Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.alphabets[id]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownAlphabet, id)
	}
	return info, nil
}

// Delete removes an alphabet. Built-ins may be deleted too.
func (c *Catalog) Delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.alphabets, id)
}

// Alphabets returns the registered alphabet ids, sorted.
func (c *Catalog) Alphabets() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.alphabets))
	for id := range c.alphabets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Colours returns the registered colour scheme ids, sorted.
func (c *Catalog) Colours() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.colours))
	for id := range c.colours {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ColourScheme returns the colour scheme id.
func (c *Catalog) ColourScheme(id string) (*ColourScheme, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cs, ok := c.colours[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColours, id)
	}
	return &cs, nil
}

func letters(from, to rune, colourA, colourB int) []SymbolInfo {
	out := make([]SymbolInfo, 0, to-from+1)
	for r := from; r <= to; r++ {
		colour := colourA
		if (r-from)%2 == 1 {
			colour = colourB
		}
		out = append(out, SymbolInfo{Text: string(r), Colour: colour})
	}
	return out
}

func builtinAlphabets() []Info {
	english := letters('a', 'z', 10, 11)
	english = append(english,
		SymbolInfo{Text: " ", Display: "_", Colour: 9},
		SymbolInfo{Text: ".", Colour: 8},
		SymbolInfo{Text: ",", Colour: 8},
		SymbolInfo{Text: "'", Colour: 8},
		SymbolInfo{Text: "?", Colour: 8},
		SymbolInfo{Text: "!", Colour: 8},
		SymbolInfo{Text: "\n", Display: "¶", Colour: 9},
	)

	numbers := letters('0', '9', 12, 13)
	numbers = append(numbers,
		SymbolInfo{Text: " ", Display: "_", Colour: 9},
		SymbolInfo{Text: ".", Colour: 8},
		SymbolInfo{Text: "+", Colour: 8},
		SymbolInfo{Text: "-", Colour: 8},
	)

	hebrew := letters('א', 'ת', 10, 11)
	hebrew = append(hebrew,
		SymbolInfo{Text: " ", Display: "_", Colour: 9},
		SymbolInfo{Text: ".", Colour: 8},
	)

	return []Info{
		{
			ID:           "English with limited punctuation",
			TrainingFile: "training_english_GB.txt",
			GameModeFile: "gamemode_english_GB.txt",
			Palette:      "European/Asian",
			Orientation:  config.OrientationLeftToRight,
			Type:         TypeWestern,
			FoldCase:     true,
			Symbols:      english,
		},
		{
			ID:           "Numbers",
			TrainingFile: "training_numbers.txt",
			Palette:      "Rainbow",
			Orientation:  config.OrientationLeftToRight,
			Type:         TypeNumeric,
			Symbols:      numbers,
		},
		{
			ID:           "Hebrew",
			TrainingFile: "training_hebrew_IL.txt",
			Orientation:  config.OrientationRightToLeft,
			Type:         TypeHebrew,
			Symbols:      hebrew,
		},
	}
}
