// Package watcher finds training corpus files and reports when they change.
package watcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFileName lists corpus paths to leave out, in .gitignore syntax.
const IgnoreFileName = ".zoomtypeignore"

var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	"node_modules": {},
}

var corpusExts = map[string]struct{}{
	".txt": {},
	".md":  {},
}

// Matcher decides which files under a root count as training text.
type Matcher struct {
	root    string
	ignores []*ignore.GitIgnore
}

// NewMatcher loads .gitignore and IgnoreFileName from root when present.
func NewMatcher(root string) *Matcher {
	m := &Matcher{root: root}
	for _, name := range []string{".gitignore", IgnoreFileName} {
		gi, err := ignore.CompileIgnoreFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		m.ignores = append(m.ignores, gi)
	}
	return m
}

// Match reports whether path, absolute or relative to the root, is corpus text.
func (m *Matcher) Match(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(m.root, path)
		if err != nil {
			return false
		}
		rel = r
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	name := filepath.Base(rel)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := corpusExts[strings.ToLower(filepath.Ext(name))]; !ok {
		return false
	}
	for _, dir := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if _, skip := skipDirs[dir]; skip {
			return false
		}
	}
	for _, gi := range m.ignores {
		if gi.MatchesPath(filepath.ToSlash(rel)) {
			return false
		}
	}
	return true
}

// Discover returns the corpus files under root, relative and sorted.
func Discover(root string) ([]string, error) {
	m := NewMatcher(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		if m.Match(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
