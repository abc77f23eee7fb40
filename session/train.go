package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/lm"
)

// trainChunk is the read buffer size for training files; one byte is kept
// back as in a C string buffer, so each read carries trainChunk-1 bytes.
const trainChunk = 1024

// TrainReader decodes r with a and feeds the symbols to tr, reading in
// bounded chunks so text split across reads is carried over. It returns
// the number of symbols learned.
func TrainReader(r io.Reader, a *alphabet.Alphabet, tr *lm.Trainer) (int, error) {
	buf := make([]byte, trainChunk-1)
	var pending string
	total := 0
	for {
		n, err := io.ReadFull(r, buf)
		more := err == nil
		pending += string(buf[:n])
		syms, rest := a.Symbols(pending, more)
		tr.Train(syms)
		total += len(syms)
		pending = rest
		if more {
			continue
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return total, nil
		}
		return total, fmt.Errorf("failed to read training text: %w", err)
	}
}

// TrainPath trains tr from the file at path.
func TrainPath(path string, a *alphabet.Alphabet, tr *lm.Trainer) (int, error) {
	n, _, err := TrainPathFrom(path, 0, a, tr)
	return n, err
}

// TrainPathFrom trains tr from the file at path, skipping the first offset
// bytes. A file shorter than offset has been rewritten and is learned
// whole. It returns the symbols learned and the offset reached.
func TrainPathFrom(path string, offset int64, a *alphabet.Alphabet, tr *lm.Trainer) (int, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, offset, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, offset, fmt.Errorf("failed to stat training file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, offset, fmt.Errorf("failed to seek training file: %w", err)
	}
	cr := &countingReader{r: f}
	n, err := TrainReader(cr, a, tr)
	return n, offset + cr.n, err
}

// SourceKey names path the way snapshot Sources record it.
func SourceKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// FileSink appends training text to the user's copy of the alphabet's
// training file.
type FileSink struct {
	params *config.Store
	mu     sync.Mutex
}

// NewFileSink writes to StringUserLoc/StringTrainFile as they are at
// write time.
func NewFileSink(params *config.Store) *FileSink {
	return &FileSink{params: params}
}

// Path returns the file the next write goes to, or "" when unset.
func (s *FileSink) Path() string {
	dir := s.params.GetString(config.StringUserLoc)
	name := s.params.GetString(config.StringTrainFile)
	if dir == "" || name == "" {
		return ""
	}
	return filepath.Join(dir, name)
}

func (s *FileSink) WriteTraining(text string) error {
	path := s.Path()
	if path == "" || text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create training directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open training file: %w", err)
	}
	if _, err := f.WriteString(text); err != nil {
		f.Close()
		return fmt.Errorf("failed to write training file: %w", err)
	}
	return f.Close()
}
