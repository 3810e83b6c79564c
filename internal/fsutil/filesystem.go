// Package fsutil abstracts the handful of filesystem operations the limit
// tools need, so result collection and file conversion can be tested
// without touching disk.
package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileSystem is the filesystem surface used for reading limit results and
// harvest lists and writing plots, converted tables and manifests.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	// WriteFile creates or truncates name. Parent directories must exist
	// on disk; the in-memory implementation creates them.
	WriteFile(name string, data []byte, perm os.FileMode) error
	Stat(name string) (fs.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	// Glob returns the files matching pattern in lexical order.
	Glob(pattern string) ([]string, error)
	Exists(name string) bool
}

// OSFileSystem is the FileSystem backed by the real disk.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

func (OSFileSystem) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (OSFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// MemoryFileSystem keeps results tables and rendered outputs in memory for
// tests. It is safe for concurrent use.
type MemoryFileSystem struct {
	mu      sync.RWMutex
	entries map[string]memEntry
}

// memEntry is a file, or a directory when dir is set.
type memEntry struct {
	data []byte
	mode os.FileMode
	dir  bool
}

func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{entries: make(map[string]memEntry)}
}

func (m *MemoryFileSystem) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	e, ok := m.entries[name]
	if !ok || e.dir {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), e.data...), nil
}

func (m *MemoryFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name = filepath.Clean(name)
	if e, ok := m.entries[name]; ok && e.dir {
		return &fs.PathError{Op: "write", Path: name, Err: fs.ErrExist}
	}
	m.entries[name] = memEntry{data: append([]byte(nil), data...), mode: perm}
	m.mkdirParents(name)
	return nil
}

func (m *MemoryFileSystem) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = filepath.Clean(name)
	e, ok := m.entries[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return memInfo{name: filepath.Base(name), entry: e}, nil
}

func (m *MemoryFileSystem) MkdirAll(path string, perm os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if e, ok := m.entries[path]; ok && !e.dir {
		return &fs.PathError{Op: "mkdir", Path: path, Err: fs.ErrExist}
	}
	m.entries[path] = memEntry{dir: true, mode: fs.ModeDir | perm}
	m.mkdirParents(path)
	return nil
}

// Glob matches pattern against stored file names with filepath.Match.
// Directories are never returned.
func (m *MemoryFileSystem) Glob(pattern string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pattern = filepath.Clean(pattern)
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	depth := strings.Count(pattern, string(filepath.Separator))

	var matches []string
	for name, e := range m.entries {
		// filepath.Match does not cross separators.
		if e.dir || strings.Count(name, string(filepath.Separator)) != depth {
			continue
		}
		if ok, _ := filepath.Match(pattern, name); ok {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func (m *MemoryFileSystem) Exists(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[filepath.Clean(name)]
	return ok
}

// mkdirParents marks every ancestor of path as a directory. Caller holds mu.
func (m *MemoryFileSystem) mkdirParents(path string) {
	for p := filepath.Dir(path); p != "." && p != "/" && p != path; p = filepath.Dir(p) {
		if _, ok := m.entries[p]; !ok {
			m.entries[p] = memEntry{dir: true, mode: fs.ModeDir | 0755}
		}
	}
}

type memInfo struct {
	name  string
	entry memEntry
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return int64(len(i.entry.data)) }
func (i memInfo) Mode() os.FileMode  { return i.entry.mode }
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.entry.dir }
func (i memInfo) Sys() any           { return nil }
