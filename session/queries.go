package session

import (
	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/event"
	"github.com/yoanbernabeu/zoomtype/nav"
)

// The queries below return defaults while no alphabet is loaded.

func (s *Session) NumberSymbols() int {
	if s.alphabet == nil {
		return 0
	}
	return s.alphabet.NumberSymbols()
}

func (s *Session) DisplayText(sym alphabet.Symbol) string {
	if s.alphabet == nil {
		return ""
	}
	return s.alphabet.DisplayText(sym)
}

func (s *Session) EditText(sym alphabet.Symbol) string {
	if s.alphabet == nil {
		return ""
	}
	return s.alphabet.Text(sym)
}

func (s *Session) TextColour(sym alphabet.Symbol) int {
	if s.alphabet == nil {
		return alphabet.DefaultTextColour
	}
	return s.alphabet.TextColour(sym)
}

func (s *Session) AlphabetOrientation() int64 {
	if s.alphabet == nil {
		return config.OrientationLeftToRight
	}
	return s.alphabet.Orientation()
}

func (s *Session) AlphabetType() alphabet.Type {
	if s.alphabet == nil {
		return alphabet.TypeWestern
	}
	return s.alphabet.Type()
}

// TrainingFile is the alphabet's training file name, without directory.
func (s *Session) TrainingFile() string {
	return s.params.GetString(config.StringTrainFile)
}

func (s *Session) Alphabets() []string { return s.catalog.Alphabets() }

func (s *Session) Colours() []string { return s.catalog.Colours() }

func (s *Session) ModelLoaded() bool { return s.model != nil }

func (s *Session) Paused() bool { return s.params.GetBool(config.BoolPaused) }

func (s *Session) Params() *config.Store { return s.params }

func (s *Session) Events() *event.Dispatcher { return s.events }

// Model returns the live navigation model, nil when none is loaded.
func (s *Session) Model() *nav.Model { return s.model }

func (s *Session) Alphabet() *alphabet.Alphabet { return s.alphabet }

func (s *Session) ColourScheme() *alphabet.ColourScheme { return s.colours }
