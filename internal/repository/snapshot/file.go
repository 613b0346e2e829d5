package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/ledger-registry/internal/config"
	"github.com/oshokin/ledger-registry/internal/domain/zone"
)

// Repository defines persistence operations for the registry state.
type Repository[C zone.Coord] interface {
	Load(ctx context.Context) (*State[C], error)
	Save(ctx context.Context, state *State[C]) error
}

// FileRepository persists the registry state to a YAML file on disk.
type FileRepository[C zone.Coord] struct {
	// path is the filesystem location of the snapshot file.
	path string
	// mu protects concurrent access to the snapshot file.
	mu sync.Mutex
}

// ErrNotFound is returned when the snapshot file does not exist yet.
var ErrNotFound = errors.New("snapshot not found")

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository[C zone.Coord](path string) *FileRepository[C] {
	return &FileRepository[C]{
		path: filepath.Clean(path),
	}
}

// Path returns the location of the snapshot file.
func (r *FileRepository[C]) Path() string {
	return r.path
}

// Load reads the state from disk.
func (r *FileRepository[C]) Load(_ context.Context) (*State[C], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	return Decode[C](contents)
}

// Save writes the state to disk, replacing the file atomically.
func (r *FileRepository[C]) Save(_ context.Context, state *State[C]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := Encode(state)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write snapshot file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot file: %w", err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("chmod snapshot file: %w", err)
	}

	if err = os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}

	return nil
}
