package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	if !s.GetBool(BoolPaused) {
		t.Fatal("expected navigation to start paused")
	}
	if got := s.GetLong(LongOrientation); got != OrientationAlphabetDefault {
		t.Fatalf("orientation = %d, want %d", got, OrientationAlphabetDefault)
	}
	if got := s.GetString(StringColourID); got != "Default" {
		t.Fatalf("colour id = %q, want Default", got)
	}
}

func TestSetNotifiesOnlyOnChange(t *testing.T) {
	s := NewStore()
	var seen []Param
	unsubscribe := s.Subscribe(func(p Param) { seen = append(seen, p) })

	s.SetBool(BoolPaused, true) // unchanged
	s.SetBool(BoolPaused, false)
	s.SetLong(LongMaxBitrate, 120)
	s.SetString(StringAlphabetID, "Numbers")

	want := []Param{BoolPaused, LongMaxBitrate, StringAlphabetID}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("notification %d = %v, want %v", i, seen[i], want[i])
		}
	}

	unsubscribe()
	s.SetBool(BoolPaused, true)
	if len(seen) != len(want) {
		t.Fatal("listener still called after unsubscribe")
	}
}

func TestSetIgnoresWrongKind(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(Param) { calls++ })

	s.SetBool(LongMaxBitrate, true)
	s.SetLong(StringAlphabetID, 3)
	s.SetString(Param(999), "x")

	if calls != 0 {
		t.Fatalf("expected no notifications, got %d", calls)
	}
	if got := s.GetLong(LongMaxBitrate); got != 80 {
		t.Fatalf("max bitrate changed to %d", got)
	}
}

func TestListenerObservesNewValue(t *testing.T) {
	s := NewStore()
	var observed bool
	s.Subscribe(func(p Param) {
		if p == BoolTraining {
			observed = s.GetBool(BoolTraining)
		}
	})
	s.SetBool(BoolTraining, true)
	if !observed {
		t.Fatal("listener should read the new value synchronously")
	}
}

func TestReset(t *testing.T) {
	s := NewStore()
	s.SetLong(LongMaxBitrate, 10)
	s.Reset(LongMaxBitrate)
	if got := s.GetLong(LongMaxBitrate); got != 80 {
		t.Fatalf("after reset = %d, want 80", got)
	}
	s.Reset(Param(-1))
}

func TestSetFromString(t *testing.T) {
	s := NewStore()
	cases := []struct {
		key     string
		value   string
		wantErr error
	}{
		{"max_bitrate", "150", nil},
		{"control_mode", "true", nil},
		{"alphabet_id", "Numbers", nil},
		{"max_bitrate", "fast", ErrWrongKind},
		{"control_mode", "maybe", ErrWrongKind},
		{"no_such_key", "1", ErrUnknownParam},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			err := s.SetFromString(tc.key, tc.value)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
	if s.Format(LongMaxBitrate) != "150" || s.Format(BoolControlMode) != "true" {
		t.Fatalf("values not applied: %s %s", s.Format(LongMaxBitrate), s.Format(BoolControlMode))
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "settings.yaml")

	s := NewStore()
	s.SetLong(LongMaxBitrate, 200)
	s.SetString(StringColourID, "Rainbow")
	s.SetBool(BoolPaused, false) // transient, must not persist
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "paused") {
		t.Fatalf("transient parameter persisted:\n%s", data)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.GetLong(LongMaxBitrate); got != 200 {
		t.Fatalf("max bitrate = %d, want 200", got)
	}
	if got := loaded.GetString(StringColourID); got != "Rainbow" {
		t.Fatalf("colour = %q, want Rainbow", got)
	}
	if !loaded.GetBool(BoolPaused) {
		t.Fatal("paused should come back as its default")
	}
	if loaded.Path() != path {
		t.Fatalf("path = %q", loaded.Path())
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.GetString(StringUserLoc) == "" {
		t.Fatal("user location should default to the training dir")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("bool: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLookupRoundTrip(t *testing.T) {
	for _, p := range Params() {
		got, ok := Lookup(p.Key())
		if !ok || got != p {
			t.Fatalf("Lookup(%q) = %v, %v", p.Key(), got, ok)
		}
	}
}
