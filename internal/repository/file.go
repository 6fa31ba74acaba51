package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stonetech/catalog/internal/domain"
)

type fileCatalogWriter struct {
	path string
}

// NewFileCatalogWriter writes the catalog as indented UTF-8 JSON. The file is
// replaced atomically so the site never reads a half-written catalog.
func NewFileCatalogWriter(path string) CatalogWriter {
	return &fileCatalogWriter{path: path}
}

func (w *fileCatalogWriter) SaveCatalog(ctx context.Context, catalog *domain.Catalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(catalog); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to move catalog into %s: %w", w.path, err)
	}
	return nil
}

// MultiWriter saves through every writer in order and stops at the first error.
type MultiWriter []CatalogWriter

func (m MultiWriter) SaveCatalog(ctx context.Context, catalog *domain.Catalog) error {
	for _, w := range m {
		if err := w.SaveCatalog(ctx, catalog); err != nil {
			return err
		}
	}
	return nil
}
