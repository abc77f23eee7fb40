package lm

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
)

func syms(ids ...int) []alphabet.Symbol {
	out := make([]alphabet.Symbol, len(ids))
	for i, id := range ids {
		out[i] = alphabet.Symbol(id)
	}
	return out
}

func weightOf(dist []Prob, s alphabet.Symbol) uint32 {
	for _, p := range dist {
		if p.Symbol == s {
			return p.Weight
		}
	}
	return 0
}

func TestUntrainedPPMIsUniform(t *testing.T) {
	m := NewPPM(4, 3, 50)
	dist := m.Distribution(nil)
	if len(dist) != 4 {
		t.Fatalf("len = %d, want 4", len(dist))
	}
	for i, p := range dist {
		if p.Symbol != alphabet.Symbol(i+1) {
			t.Fatalf("dist[%d].Symbol = %d", i, p.Symbol)
		}
		if p.Weight != dist[0].Weight {
			t.Fatalf("untrained weights differ: %v", dist)
		}
	}
}

func TestPPMLearnsContext(t *testing.T) {
	m := NewPPM(3, 2, 10)
	for i := 0; i < 50; i++ {
		Train(m, syms(1, 2, 3))
	}

	after1 := m.Distribution(syms(1))
	if weightOf(after1, 2) <= weightOf(after1, 3) || weightOf(after1, 2) <= weightOf(after1, 1) {
		t.Fatalf("after 1 expected 2 to dominate: %v", after1)
	}
	after12 := m.Distribution(syms(1, 2))
	if weightOf(after12, 3) <= weightOf(after12, 1) {
		t.Fatalf("after 1,2 expected 3 to dominate: %v", after12)
	}
	for _, p := range m.Distribution(syms(3, 3, 3)) {
		if p.Weight < 1 {
			t.Fatalf("weight below floor: %v", p)
		}
	}
	if m.Observations() != 150 {
		t.Fatalf("observations = %d, want 150", m.Observations())
	}
}

func TestTrainerCarriesContextAcrossChunks(t *testing.T) {
	whole := NewPPM(3, 2, 10)
	Train(whole, syms(1, 2, 3, 1, 2, 3))

	chunked := NewPPM(3, 2, 10)
	tr := NewTrainer(chunked)
	tr.Train(syms(1, 2))
	tr.Train(syms(3, 1))
	tr.Train(syms(2, 3))

	a := whole.Distribution(syms(2))
	b := chunked.Distribution(syms(2))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunked training differs: %v vs %v", a, b)
		}
	}
}

func TestTrainerSkipsInvalidSymbols(t *testing.T) {
	m := NewPPM(2, 1, 10)
	Train(m, syms(0, 1, 7, 2))
	if m.Observations() != 2 {
		t.Fatalf("observations = %d, want 2", m.Observations())
	}
}

func TestNewKinds(t *testing.T) {
	cases := []struct {
		kind      int64
		order     int
		sensitive bool
	}{
		{config.ModelPPM, 5, true},
		{config.ModelBigram, 1, true},
		{config.ModelUniform, 0, false},
		{99, 5, true},
	}
	for _, tc := range cases {
		m := New(tc.kind, 10, 5, 50)
		if m.Order() != tc.order || m.ContextSensitive() != tc.sensitive {
			t.Fatalf("kind %d: order %d sensitive %v", tc.kind, m.Order(), m.ContextSensitive())
		}
	}
}

func TestGOBStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "models", "en.gob")
	store := NewGOBStore(path)

	m := NewPPM(3, 2, 10)
	Train(m, syms(1, 2, 3, 1, 2))
	if err := store.Persist(ctx, m, "en"); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	loaded := NewPPM(3, 2, 10)
	if err := store.Load(ctx, loaded, "en"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Observations() != m.Observations() || loaded.Contexts() != m.Contexts() {
		t.Fatalf("loaded model differs: %d/%d vs %d/%d",
			loaded.Observations(), loaded.Contexts(), m.Observations(), m.Contexts())
	}

	if err := store.Load(ctx, NewPPM(3, 2, 10), "fr"); !errors.Is(err, ErrSnapshotMismatch) {
		t.Fatalf("err = %v, want ErrSnapshotMismatch", err)
	}
	if err := store.Load(ctx, NewPPM(4, 2, 10), "en"); !errors.Is(err, ErrSnapshotMismatch) {
		t.Fatalf("err = %v, want ErrSnapshotMismatch", err)
	}
}

func TestGOBStoreKeepsSources(t *testing.T) {
	ctx := context.Background()
	store := NewGOBStore(filepath.Join(t.TempDir(), "en.gob"))

	m := NewPPM(3, 2, 10)
	Train(m, syms(1, 2, 3))
	src := Sources{"/corpus/en.txt": 42}
	if err := store.PersistSources(ctx, m, "en", src); err != nil {
		t.Fatalf("PersistSources: %v", err)
	}

	got, err := store.LoadSources(ctx, NewPPM(3, 2, 10), "en")
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if len(got) != 1 || got["/corpus/en.txt"] != 42 {
		t.Fatalf("sources = %v, want %v", got, src)
	}

	if err := store.Persist(ctx, m, "en"); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	got, err = store.LoadSources(ctx, NewPPM(3, 2, 10), "en")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("sources = %v (%v), want empty and non-nil", got, err)
	}
}

func TestGOBStoreMissingFile(t *testing.T) {
	store := NewGOBStore(filepath.Join(t.TempDir(), "absent.gob"))
	m := NewPPM(3, 2, 10)
	if err := store.Load(context.Background(), m, "en"); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
}
