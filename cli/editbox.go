package cli

import (
	"strings"
	"sync"

	"github.com/yoanbernabeu/zoomtype/event"
	"github.com/yoanbernabeu/zoomtype/session"
)

// textEditbox keeps the text written so far.
type textEditbox struct {
	mu   sync.Mutex
	text strings.Builder
}

func newTextEditbox() *textEditbox {
	return &textEditbox{}
}

func (e *textEditbox) HandleEvent(ev event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch ev := ev.(type) {
	case event.EditInserted:
		e.text.WriteString(ev.Text)
	case event.EditDeleted:
		cur := e.text.String()
		if !strings.HasSuffix(cur, ev.Text) {
			return
		}
		e.text.Reset()
		e.text.WriteString(strings.TrimSuffix(cur, ev.Text))
	}
}

func (e *textEditbox) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.text.Reset()
}

func (e *textEditbox) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.text.String()
}

var _ session.Editbox = (*textEditbox)(nil)
