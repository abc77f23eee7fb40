package event

import (
	"testing"

	"github.com/yoanbernabeu/zoomtype/config"
)

func TestDispatcherOrderAndRemoval(t *testing.T) {
	d := NewDispatcher()
	var order []string

	d.Register(HandlerFunc(func(Event) { order = append(order, "a") }))
	removeB := d.Register(HandlerFunc(func(Event) { order = append(order, "b") }))
	d.Register(HandlerFunc(func(Event) { order = append(order, "c") }))

	d.Publish(Started{})
	removeB()
	d.Publish(Stopped{})

	want := "a,b,c,a,c"
	got := ""
	for i, s := range order {
		if i > 0 {
			got += ","
		}
		got += s
	}
	if got != want {
		t.Fatalf("delivery order = %s, want %s", got, want)
	}
}

func TestDispatcherReentrantPublish(t *testing.T) {
	d := NewDispatcher()
	var seen []Event
	d.Register(HandlerFunc(func(e Event) {
		seen = append(seen, e)
		if c, ok := e.(Control); ok && c.ID == 1 {
			d.Publish(Stopped{})
		}
	}))

	d.Publish(Control{ID: 1})
	if len(seen) != 2 {
		t.Fatalf("expected nested publish to be delivered, got %d events", len(seen))
	}
	if _, ok := seen[1].(Stopped); !ok {
		t.Fatalf("second event = %T, want Stopped", seen[1])
	}
}

func TestEventKinds(t *testing.T) {
	events := []Event{
		ParameterChanged{Param: config.BoolPaused},
		EditInserted{Text: "a", Symbol: 1},
		EditDeleted{Text: "a", Symbol: 1},
		Control{ID: 2},
		Started{},
		Stopped{},
	}
	kinds := map[string]bool{}
	for _, e := range events {
		switch e.(type) {
		case ParameterChanged:
			kinds["param"] = true
		case EditInserted:
			kinds["insert"] = true
		case EditDeleted:
			kinds["delete"] = true
		case Control:
			kinds["control"] = true
		case Started:
			kinds["start"] = true
		case Stopped:
			kinds["stop"] = true
		}
	}
	if len(kinds) != len(events) {
		t.Fatalf("type switch matched %d kinds, want %d", len(kinds), len(events))
	}
}
