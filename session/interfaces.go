package session

import (
	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/event"
	"github.com/yoanbernabeu/zoomtype/filter"
	"github.com/yoanbernabeu/zoomtype/nav"
)

// Screen is the host's drawing surface.
type Screen interface {
	filter.Canvas
	SetColourScheme(cs *alphabet.ColourScheme)
}

// View renders a navigation model onto a Screen.
type View interface {
	// Render draws the model with the pointer at (x, y) and reports
	// whether anything changed. force redraws everything.
	Render(x, y int64, force bool) bool
	Display()
	ChangeScreen(s Screen)
	// ResetAccumulators clears smoothing state such as running sums and
	// the vertical auto offset.
	ResetAccumulators()
	// HandleStartOnMouse reports whether the pointer has held the start
	// box long enough to begin navigating.
	HandleStartOnMouse(t int64) bool
}

// ViewFactory builds the view selected by config.LongViewID.
type ViewFactory func(id int64, screen Screen, model *nav.Model) View

// Editbox receives the text produced by navigation.
type Editbox interface {
	event.Handler
	// Reset clears the editbox contents.
	Reset()
}

// ActivityLogger records user trials.
type ActivityLogger interface {
	StartWriting()
	StopWriting(nats float64)
	AddSymbols(syms []alphabet.Symbol)
	DeleteSymbols(n int)
	SetAlphabet(a *alphabet.Alphabet)
	OutputFile() error
}

// ActivityLoggerFactory creates the activity logger when
// config.LongUserLogLevel is positive.
type ActivityLoggerFactory func(level int64, a *alphabet.Alphabet) (ActivityLogger, error)

// TrainingSink persists text the user has written so later sessions can
// learn from it.
type TrainingSink interface {
	WriteTraining(text string) error
}

// Filter converts raw input into a navigation target.
type Filter interface {
	KeyDown(t int64, id int)
	KeyUp(t int64, id int)
	Target(t int64) (x, y int64)
	Decorate(c filter.Canvas)
}
