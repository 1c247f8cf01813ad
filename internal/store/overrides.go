package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Overrides is a session-local {scope -> {id -> position}} store. Get returns nil for an
// absent scope and a non-nil (possibly empty) map for a stored one.
type Overrides interface {
	Get(ctx context.Context, scope string) (map[string]int, error)
	Set(ctx context.Context, scope string, positions map[string]int) error
	Clear(ctx context.Context, scope string) error
	Scopes(ctx context.Context) ([]string, error)
	Close() error
}

const overridesFileName = "overrides.json"

type overridesFile struct {
	Version int                       `json:"version"`
	Scopes  map[string]map[string]int `json:"scopes,omitempty"`
}

// FileOverrides keeps overrides in a JSON file next to the local database.
// A missing or unreadable file is treated as empty.
type FileOverrides struct {
	path string
	mu   sync.Mutex
}

// NewFileOverrides uses path, or <dir>/overrides.json when path is a directory.
func NewFileOverrides(path string) *FileOverrides {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, overridesFileName)
	}
	return &FileOverrides{path: path}
}

func (f *FileOverrides) Path() string { return f.path }

func (f *FileOverrides) load() (*overridesFile, error) {
	st := &overridesFile{Version: 1, Scopes: map[string]map[string]int{}}
	if strings.TrimSpace(f.path) == "" {
		return st, nil
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return nil, err
	}
	var parsed overridesFile
	if err := json.Unmarshal(b, &parsed); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return st, nil
	}
	if parsed.Scopes != nil {
		st.Scopes = parsed.Scopes
	}
	return st, nil
}

func (f *FileOverrides) save(st *overridesFile) error {
	if strings.TrimSpace(f.path) == "" {
		return errors.New("overrides: missing file path")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileOverrides) Get(ctx context.Context, scope string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return nil, err
	}
	positions, ok := st.Scopes[scope]
	if !ok {
		return nil, nil
	}
	return clonePositions(positions), nil
}

func (f *FileOverrides) Set(ctx context.Context, scope string, positions map[string]int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	st.Scopes[scope] = clonePositions(positions)
	return f.save(st)
}

func (f *FileOverrides) Clear(ctx context.Context, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := st.Scopes[scope]; !ok {
		return nil
	}
	delete(st.Scopes, scope)
	return f.save(st)
}

func (f *FileOverrides) Scopes(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, err := f.load()
	if err != nil {
		return nil, err
	}
	return sortedKeys(st.Scopes), nil
}

func (f *FileOverrides) Close() error { return nil }

// MemoryOverrides lives for the process only.
type MemoryOverrides struct {
	mu     sync.Mutex
	scopes map[string]map[string]int
}

func NewMemoryOverrides() *MemoryOverrides {
	return &MemoryOverrides{scopes: map[string]map[string]int{}}
}

func (m *MemoryOverrides) Get(ctx context.Context, scope string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	positions, ok := m.scopes[scope]
	if !ok {
		return nil, nil
	}
	return clonePositions(positions), nil
}

func (m *MemoryOverrides) Set(ctx context.Context, scope string, positions map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes[scope] = clonePositions(positions)
	return nil
}

func (m *MemoryOverrides) Clear(ctx context.Context, scope string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes, scope)
	return nil
}

func (m *MemoryOverrides) Scopes(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortedKeys(m.scopes), nil
}

func (m *MemoryOverrides) Close() error { return nil }

func clonePositions(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
