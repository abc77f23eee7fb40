// Package userlog records typing trials for later analysis.
package userlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
)

// Level bits for config.LongUserLogLevel.
const (
	LevelTrials  int64 = 1 << 0
	LevelSymbols int64 = 1 << 1
)

// Trial is one stretch of navigation between unpausing and stopping.
type Trial struct {
	ID      string    `yaml:"id"`
	Start   time.Time `yaml:"start"`
	End     time.Time `yaml:"end,omitempty"`
	Text    string    `yaml:"text"`
	Added   int       `yaml:"added"`
	Deleted int       `yaml:"deleted"`
	Nats    float64   `yaml:"nats"`
	// Edits lists "+text" and "-count" entries at LevelSymbols.
	Edits []string `yaml:"edits,omitempty"`

	symbols []string
}

type logFile struct {
	Session  string  `yaml:"session"`
	Alphabet string  `yaml:"alphabet,omitempty"`
	Level    int64   `yaml:"level"`
	Trials   []Trial `yaml:"trials"`
}

// Logger collects trials in memory and writes them out on OutputFile.
type Logger struct {
	mu       sync.Mutex
	path     string
	level    int64
	session  string
	alphabet *alphabet.Alphabet
	trials   []Trial
	current  *Trial
	now      func() time.Time
}

// DefaultPath returns the log file for a session started at t.
func DefaultPath(t time.Time) string {
	return filepath.Join(config.GetConfigDir(), "userlog", t.Format("20060102-150405")+".yaml")
}

// New creates a logger writing to path.
func New(path string, level int64, a *alphabet.Alphabet) *Logger {
	return &Logger{
		path:     path,
		level:    level,
		session:  uuid.NewString(),
		alphabet: a,
		now:      time.Now,
	}
}

func (l *Logger) Path() string    { return l.path }
func (l *Logger) Session() string { return l.session }

// StartWriting opens a trial unless one is already open.
func (l *Logger) StartWriting() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != nil {
		return
	}
	l.current = &Trial{ID: uuid.NewString(), Start: l.now()}
}

// StopWriting closes the open trial with the information it gathered.
func (l *Logger) StopWriting(nats float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return
	}
	l.current.End = l.now()
	l.current.Nats = nats
	l.trials = append(l.trials, *l.current)
	l.current = nil
}

func (l *Logger) AddSymbols(syms []alphabet.Symbol) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || len(syms) == 0 {
		return
	}
	var added string
	for _, s := range syms {
		text := ""
		if l.alphabet != nil {
			text = l.alphabet.Text(s)
		}
		l.current.symbols = append(l.current.symbols, text)
		added += text
	}
	l.current.Added += len(syms)
	l.current.Text = strings.Join(l.current.symbols, "")
	if l.level&LevelSymbols != 0 {
		l.current.Edits = append(l.current.Edits, "+"+added)
	}
}

func (l *Logger) DeleteSymbols(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil || n <= 0 {
		return
	}
	keep := len(l.current.symbols) - n
	if keep < 0 {
		keep = 0
	}
	l.current.symbols = l.current.symbols[:keep]
	l.current.Deleted += n
	l.current.Text = strings.Join(l.current.symbols, "")
	if l.level&LevelSymbols != 0 {
		l.current.Edits = append(l.current.Edits, fmt.Sprintf("-%d", n))
	}
}

func (l *Logger) SetAlphabet(a *alphabet.Alphabet) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alphabet = a
}

// Trials returns the closed trials and the open one, if any.
func (l *Logger) Trials() []Trial {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Logger) snapshot() []Trial {
	out := append([]Trial(nil), l.trials...)
	if l.current != nil {
		out = append(out, *l.current)
	}
	return out
}

// OutputFile writes every trial to the log path as YAML.
func (l *Logger) OutputFile() error {
	l.mu.Lock()
	f := logFile{Session: l.session, Level: l.level, Trials: l.snapshot()}
	if l.alphabet != nil {
		f.Alphabet = l.alphabet.ID()
	}
	l.mu.Unlock()

	data, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create activity log directory: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}
	return nil
}

// Load reads a log written by OutputFile.
func Load(path string) (session string, trials []Trial, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read activity log: %w", err)
	}
	var f logFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("failed to parse activity log: %w", err)
	}
	return f.Session, f.Trials, nil
}

