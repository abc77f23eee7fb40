package watcher

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDiscoverHonoursIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "hello")
	writeFile(t, filepath.Join(root, "notes", "b.md"), "world")
	writeFile(t, filepath.Join(root, "notes", "draft.txt"), "skip")
	writeFile(t, filepath.Join(root, "private", "c.txt"), "skip")
	writeFile(t, filepath.Join(root, ".hidden", "d.txt"), "skip")
	writeFile(t, filepath.Join(root, "image.png"), "skip")
	writeFile(t, filepath.Join(root, ".gitignore"), "private/\n")
	writeFile(t, filepath.Join(root, IgnoreFileName), "draft.txt\n")

	files, err := Discover(root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	want := []string{"a.txt", filepath.Join("notes", "b.md")}
	if len(files) != len(want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, files)
		}
	}
}

func TestMatcher(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "*.log.txt\n")
	m := NewMatcher(root)

	tests := []struct {
		path string
		want bool
	}{
		{"corpus.txt", true},
		{filepath.Join(root, "deep", "corpus.TXT"), true},
		{"run.log.txt", false},
		{".secret.txt", false},
		{filepath.Join("node_modules", "x.txt"), false},
		{filepath.Join("..", "outside.txt"), false},
		{"corpus.go", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := m.Match(tt.path); got != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

type retrainCounter chan struct{}

func (c retrainCounter) ScheduleRetrain() { c <- struct{}{} }

func TestRunSchedulesRetrainOnChange(t *testing.T) {
	root := t.TempDir()
	got := make(retrainCounter, 4)
	w := New(root, got, WithDebounce(20*time.Millisecond), WithLogger(log.New(io.Discard, "", 0)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func() { close(ready) }) }()

	select {
	case <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not become ready")
	}

	writeFile(t, filepath.Join(root, "ignored.bin"), "x")
	writeFile(t, filepath.Join(root, "corpus.txt"), "first")
	writeFile(t, filepath.Join(root, "corpus.txt"), "second")

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a retrain after the corpus changed")
	}

	changed := w.Changed()
	if len(changed) == 0 {
		t.Fatal("expected changed files to be recorded")
	}
	for _, name := range changed {
		if filepath.Base(name) != "corpus.txt" {
			t.Fatalf("unexpected changed file %q", name)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunSkipsOwnWrites(t *testing.T) {
	root := t.TempDir()
	own := filepath.Join(root, "own.txt")
	got := make(retrainCounter, 4)
	w := New(root, got,
		WithDebounce(20*time.Millisecond),
		WithLogger(log.New(io.Discard, "", 0)),
		WithSkip(func(path string) bool { return path == own }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	go func() { _ = w.Run(ctx, func() { close(ready) }) }()
	<-ready

	writeFile(t, own, "typed by the user")
	select {
	case <-got:
		t.Fatal("expected no retrain for a skipped file")
	case <-time.After(300 * time.Millisecond):
	}
	if changed := w.Changed(); len(changed) != 0 {
		t.Fatalf("expected no recorded changes, got %v", changed)
	}
}

func TestRunWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	got := make(retrainCounter, 4)
	w := New(root, got, WithDebounce(20*time.Millisecond), WithLogger(log.New(io.Discard, "", 0)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	go func() { _ = w.Run(ctx, func() { close(ready) }) }()
	<-ready

	sub := filepath.Join(root, "more")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		writeFile(t, filepath.Join(sub, "late.txt"), "text")
		select {
		case <-got:
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("expected a retrain for a file in a new directory")
		}
	}
}
