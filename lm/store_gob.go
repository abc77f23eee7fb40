package lm

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrSnapshotMismatch indicates a snapshot built for a different alphabet
// size or model order.
var ErrSnapshotMismatch = errors.New("model snapshot does not match")

// GOBStore persists PPM counts using GOB encoding.
type GOBStore struct {
	path string
	mu   sync.Mutex
}

// Sources maps a training file's absolute path to how many of its bytes
// a snapshot has learned. Text appended after that offset is still new.
type Sources map[string]int64

type gobModelData struct {
	AlphabetID string
	Order      int
	NumSymbols int
	Root       *TrieNode
	Sources    Sources
}

// NewGOBStore creates a store backed by the file at path.
func NewGOBStore(path string) *GOBStore {
	return &GOBStore{path: path}
}

// Path returns the snapshot file location.
func (s *GOBStore) Path() string {
	return s.path
}

// Load replaces m's counts with the snapshot. A missing file leaves m
// untouched and returns nil.
func (s *GOBStore) Load(ctx context.Context, m *PPM, alphabetID string) error {
	_, err := s.LoadSources(ctx, m, alphabetID)
	return err
}

// LoadSources is Load that also returns what the snapshot was trained
// on. The result is never nil.
func (s *GOBStore) LoadSources(ctx context.Context, m *PPM, alphabetID string) (Sources, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Sources{}, nil // No snapshot yet, keep the fresh model
		}
		return Sources{}, fmt.Errorf("failed to open model snapshot: %w", err)
	}
	defer file.Close()

	var data gobModelData
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return Sources{}, fmt.Errorf("failed to decode model snapshot: %w", err)
	}
	if data.AlphabetID != alphabetID || data.Order != m.order || data.NumSymbols != m.numSymbols {
		return Sources{}, fmt.Errorf("%w: have %s/order %d/%d symbols", ErrSnapshotMismatch, data.AlphabetID, data.Order, data.NumSymbols)
	}
	if data.Root == nil {
		data.Root = &TrieNode{}
	}
	if data.Sources == nil {
		data.Sources = Sources{}
	}

	m.mu.Lock()
	m.root = data.Root
	m.mu.Unlock()
	return data.Sources, nil
}

// Persist writes m's counts to the snapshot file.
func (s *GOBStore) Persist(ctx context.Context, m *PPM, alphabetID string) error {
	return s.PersistSources(ctx, m, alphabetID, nil)
}

// PersistSources is Persist that also records the training files learned.
func (s *GOBStore) PersistSources(ctx context.Context, m *PPM, alphabetID string, src Sources) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ensureParentDir(s.path); err != nil {
		return fmt.Errorf("failed to prepare model directory: %w", err)
	}

	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create model snapshot: %w", err)
	}
	defer file.Close()

	m.mu.RLock()
	data := gobModelData{
		AlphabetID: alphabetID,
		Order:      m.order,
		NumSymbols: m.numSymbols,
		Root:       m.root,
		Sources:    src,
	}
	err = gob.NewEncoder(file).Encode(data)
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode model snapshot: %w", err)
	}
	return nil
}

// ensureParentDir creates parent directories if missing.
func ensureParentDir(filePath string) error {
	return os.MkdirAll(filepath.Dir(filePath), 0755)
}
