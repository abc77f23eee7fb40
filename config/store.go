// Package config holds the parameter store shared by every engine component.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrUnknownParam indicates a key that names no parameter.
	ErrUnknownParam = errors.New("unknown parameter")

	// ErrWrongKind indicates a value that does not match the parameter's kind.
	ErrWrongKind = errors.New("parameter kind mismatch")
)

// Listener receives the identifier of a parameter whose value changed.
type Listener func(p Param)

// Store maps parameters to values and notifies listeners on change.
// Notifications run synchronously on the calling goroutine, outside the
// store's lock, before the setter returns.
type Store struct {
	mu      sync.RWMutex
	bools   map[Param]bool
	longs   map[Param]int64
	strings map[Param]string

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int

	path string
}

// NewStore returns a store populated with defaults.
func NewStore() *Store {
	s := &Store{
		bools:     make(map[Param]bool),
		longs:     make(map[Param]int64),
		strings:   make(map[Param]string),
		listeners: make(map[int]Listener),
	}
	for p := Param(0); p < paramCount; p++ {
		s.resetLocked(p)
	}
	return s
}

func (s *Store) resetLocked(p Param) {
	d := definitions[p]
	switch d.kind {
	case KindBool:
		s.bools[p] = d.boolValue
	case KindLong:
		s.longs[p] = d.longValue
	case KindString:
		s.strings[p] = d.stringValue
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.listenerMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.listenerMu.Unlock()

	return func() {
		s.listenerMu.Lock()
		delete(s.listeners, id)
		s.listenerMu.Unlock()
	}
}

func (s *Store) notify(p Param) {
	s.listenerMu.Lock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.listenerMu.Unlock()

	for _, l := range ls {
		l(p)
	}
}

// GetBool returns the value of a bool parameter, false for any other id.
func (s *Store) GetBool(p Param) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bools[p]
}

// GetLong returns the value of a long parameter, 0 for any other id.
func (s *Store) GetLong(p Param) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.longs[p]
}

// GetString returns the value of a string parameter, "" for any other id.
func (s *Store) GetString(p Param) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.strings[p]
}

// SetBool stores v. Unknown ids and unchanged values are ignored.
func (s *Store) SetBool(p Param, v bool) {
	if p.Kind() != KindBool {
		return
	}
	s.mu.Lock()
	if s.bools[p] == v {
		s.mu.Unlock()
		return
	}
	s.bools[p] = v
	s.mu.Unlock()
	s.notify(p)
}

// SetLong stores v. Unknown ids and unchanged values are ignored.
func (s *Store) SetLong(p Param, v int64) {
	if p.Kind() != KindLong {
		return
	}
	s.mu.Lock()
	if s.longs[p] == v {
		s.mu.Unlock()
		return
	}
	s.longs[p] = v
	s.mu.Unlock()
	s.notify(p)
}

// SetString stores v. Unknown ids and unchanged values are ignored.
func (s *Store) SetString(p Param, v string) {
	if p.Kind() != KindString {
		return
	}
	s.mu.Lock()
	if s.strings[p] == v {
		s.mu.Unlock()
		return
	}
	s.strings[p] = v
	s.mu.Unlock()
	s.notify(p)
}

// Reset restores the default value of p.
func (s *Store) Reset(p Param) {
	if !p.Valid() {
		return
	}
	d := definitions[p]
	switch d.kind {
	case KindBool:
		s.SetBool(p, d.boolValue)
	case KindLong:
		s.SetLong(p, d.longValue)
	case KindString:
		s.SetString(p, d.stringValue)
	}
}

// Format renders the current value of p as text.
func (s *Store) Format(p Param) string {
	switch p.Kind() {
	case KindBool:
		return strconv.FormatBool(s.GetBool(p))
	case KindLong:
		return strconv.FormatInt(s.GetLong(p), 10)
	case KindString:
		return s.GetString(p)
	default:
		return ""
	}
}

// SetFromString parses value according to the kind of the parameter named key.
func (s *Store) SetFromString(key, value string) error {
	p, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParam, key)
	}
	switch p.Kind() {
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: %s expects a bool: %v", ErrWrongKind, key, err)
		}
		s.SetBool(p, b)
	case KindLong:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %v", ErrWrongKind, key, err)
		}
		s.SetLong(p, n)
	case KindString:
		s.SetString(p, value)
	}
	return nil
}
