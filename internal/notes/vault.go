package notes

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Vault is a directory of markdown notes on disk.
type Vault struct {
	Root string
	// Open brings a note into view; nil makes OpenDocument a no-op.
	Open func(ctx context.Context, absPath string) error
}

// NewVault returns a Vault rooted at dir.
func NewVault(dir string) *Vault { return &Vault{Root: dir} }

// Resolve maps a note path to an absolute path inside the vault.
// Paths escaping the vault are rejected.
func (v *Vault) Resolve(path string) (string, error) {
	root, err := filepath.Abs(v.Root)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", err
		}
		path = rel
	}
	path = filepath.FromSlash(path)
	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("note %s is outside the vault %s", path, root)
	}
	return filepath.Join(root, path), nil
}

// ReadDocument reads a note; missing notes match fs.ErrNotExist.
func (v *Vault) ReadDocument(ctx context.Context, path string) (string, error) {
	abs, err := v.Resolve(path)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteDocument creates or overwrites a note, creating folders as needed.
func (v *Vault) WriteDocument(ctx context.Context, path, text string) error {
	abs, err := v.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return err
	}
	return os.WriteFile(abs, []byte(text), 0o644)
}

func (v *Vault) OpenDocument(ctx context.Context, path string) error {
	if v.Open == nil {
		return nil
	}
	abs, err := v.Resolve(path)
	if err != nil {
		return err
	}
	return v.Open(ctx, abs)
}
