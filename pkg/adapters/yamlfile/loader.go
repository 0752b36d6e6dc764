// Package yamlfile loads process definitions from YAML (or JSON) files on disk.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/taskflow/internal/compiler"
	"github.com/aretw0/taskflow/pkg/domain"
)

// DefaultFileName is looked up when the loader is pointed at a directory.
const DefaultFileName = "process.yaml"

// Loader implements ports.DefinitionLoader by reading a definition file.
// The file is parsed once and cached; call Reload to pick up changes.
type Loader struct {
	path   string
	parser *compiler.Parser

	mu        sync.Mutex
	blueprint *domain.Blueprint
}

// New creates a loader for the given file or directory.
// A directory resolves to DefaultFileName inside it.
func New(path string) *Loader {
	return &Loader{
		path:   path,
		parser: compiler.NewParser(),
	}
}

// Path returns the resolved path of the definition file.
func (l *Loader) Path() string {
	if info, err := os.Stat(l.path); err == nil && info.IsDir() {
		return filepath.Join(l.path, DefaultFileName)
	}
	return l.path
}

// Load implements ports.DefinitionLoader.
func (l *Loader) Load(ctx context.Context) (*domain.Blueprint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.blueprint != nil {
		return l.blueprint, nil
	}
	bp, err := l.read()
	if err != nil {
		return nil, err
	}
	l.blueprint = bp
	return bp, nil
}

// Reload discards the cached blueprint and parses the file again.
func (l *Loader) Reload(ctx context.Context) (*domain.Blueprint, error) {
	l.mu.Lock()
	l.blueprint = nil
	l.mu.Unlock()
	return l.Load(ctx)
}

func (l *Loader) read() (*domain.Blueprint, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, path)
		}
		return nil, fmt.Errorf("failed to read definition file: %w", err)
	}

	bp, err := l.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if bp.Name == "" {
		base := filepath.Base(path)
		bp.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	return bp, nil
}
