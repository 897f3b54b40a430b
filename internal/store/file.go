// internal/store/file.go
//
// JSON-file implementation of the session Store, used by the CLI.
//
// Characteristics:
//   - All owners share one JSON document, read and rewritten on every call.
//   - Writes go to a temp file renamed over the original.
//   - A Mutex serializes calls within the process; separate processes are
//     not coordinated.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/robalobadob/noterecall/internal/game"
)

// file keeps all records in one JSON document, rewritten on every change.
type file struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a Store persisted as JSON at path.
// The file and its directory are created on first Save.
func NewFileStore(path string) Store {
	return &file{path: path}
}

func (f *file) Save(ctx context.Context, owner string, rec *game.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.load()
	if err != nil {
		return err
	}
	all[owner] = rec
	return f.write(all)
}

func (f *file) Get(ctx context.Context, owner string) (*game.SessionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.load()
	if err != nil {
		return nil, err
	}
	rec, ok := all[owner]
	if !ok || rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (f *file) Delete(ctx context.Context, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	all, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := all[owner]; !ok {
		return nil
	}
	delete(all, owner)
	return f.write(all)
}

func (f *file) load() (map[string]*game.SessionRecord, error) {
	all := make(map[string]*game.SessionRecord)
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(b) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return all, nil
}

// write replaces the file atomically via a temp file + rename.
func (f *file) write(all map[string]*game.SessionRecord) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(f.path), err)
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}
