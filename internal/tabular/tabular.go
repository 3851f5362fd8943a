// Package tabular imports tabular files (CSV, and Excel when the
// capability is enabled) into a neutral table structure. Columns carry
// raw strings and a declared type tag only; no value-based type
// guessing happens here.
package tabular

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/workdeck/workdeck/internal/errors"
)

// Column describes one imported column.
type Column struct {
	Name string
	Type string
}

// Table is the neutral result of an import.
type Table struct {
	Columns []Column
	Rows    [][]string
}

// Importer reads one file format into a Table.
type Importer interface {
	Extensions() []string
	Import(ctx context.Context, r io.Reader) (*Table, error)
}

// Registry maps file extensions to importers. The set of registered
// importers is the shell's import capability surface: a format is
// supported exactly when an importer for it was registered at
// configuration time. There is no runtime probing.
type Registry struct {
	mu        sync.RWMutex
	importers map[string]Importer
}

// NewRegistry creates an empty importer registry.
func NewRegistry() *Registry {
	return &Registry{importers: make(map[string]Importer)}
}

// Register adds an importer for all its extensions.
func (r *Registry) Register(imp Importer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range imp.Extensions() {
		r.importers[strings.ToLower(ext)] = imp
	}
}

// ImporterFor returns the importer for a file extension.
func (r *Registry) ImporterFor(ext string) (Importer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	imp, ok := r.importers[strings.ToLower(ext)]
	if !ok {
		return nil, errors.ErrImportUnsupported(ext)
	}

	return imp, nil
}

// Supports reports whether an extension has a registered importer.
func (r *Registry) Supports(ext string) bool {
	_, err := r.ImporterFor(ext)

	return err == nil
}

// Extensions returns the supported extensions in no particular order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.importers))
	for ext := range r.importers {
		exts = append(exts, ext)
	}

	return exts
}

// ImportFile opens path and imports it with the registered importer for
// its extension.
func (r *Registry) ImportFile(ctx context.Context, path string) (*Table, error) {
	imp, err := r.ImporterFor(filepath.Ext(path))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeInvalidPath, "open import file", err)
	}
	defer f.Close()

	return imp.Import(ctx, f)
}
