// Package event defines the closed set of notifications passed between the
// session, its input filter and its collaborators.
package event

import (
	"sync"

	"github.com/yoanbernabeu/zoomtype/config"
)

// Event is one of ParameterChanged, EditInserted, EditDeleted, Control,
// Started or Stopped.
type Event interface {
	isEvent()
}

// ParameterChanged reports a new value for Param in the store.
type ParameterChanged struct {
	Param config.Param
}

// EditInserted reports text committed to the output.
type EditInserted struct {
	Text   string
	Symbol int
}

// EditDeleted reports text removed from the output.
type EditDeleted struct {
	Text   string
	Symbol int
}

// Control reports that a control node was selected.
type Control struct {
	ID int
}

// Started reports that navigation was unpaused.
type Started struct{}

// Stopped reports that navigation was paused.
type Stopped struct{}

func (ParameterChanged) isEvent() {}
func (EditInserted) isEvent()     {}
func (EditDeleted) isEvent()      {}
func (Control) isEvent()          {}
func (Started) isEvent()          {}
func (Stopped) isEvent()          {}

// Handler consumes events.
type Handler interface {
	HandleEvent(e Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(e Event)

// HandleEvent calls f(e).
func (f HandlerFunc) HandleEvent(e Event) { f(e) }

// Dispatcher delivers events synchronously to its handlers in
// registration order.
type Dispatcher struct {
	mu       sync.Mutex
	handlers []*entry
}

type entry struct {
	h Handler
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds h and returns a function that removes it.
func (d *Dispatcher) Register(h Handler) func() {
	e := &entry{h: h}
	d.mu.Lock()
	d.handlers = append(d.handlers, e)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, cur := range d.handlers {
			if cur == e {
				d.handlers = append(d.handlers[:i:i], d.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish hands e to every registered handler. Handlers may publish
// further events or register new handlers while being called.
func (d *Dispatcher) Publish(e Event) {
	d.mu.Lock()
	snapshot := make([]*entry, len(d.handlers))
	copy(snapshot, d.handlers)
	d.mu.Unlock()

	for _, cur := range snapshot {
		cur.h.HandleEvent(e)
	}
}
