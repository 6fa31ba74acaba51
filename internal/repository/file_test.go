package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stonetech/catalog/internal/catalog"
	"stonetech/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapedCatalog() *domain.Catalog {
	var chars domain.Characteristics
	chars.Set("Цвет", "прозрачный")
	chars.Set("Плотность", "1,1 г/см³")

	return &domain.Catalog{Categories: []domain.Category{{
		ID:          "ochistiteli",
		Name:        "Очистители",
		Description: "Для удаления загрязнений",
		Products: []domain.Product{{
			ID:                       "ochistiteli-ochistitel-12-1",
			Name:                     "Очиститель 12",
			Description:              "Состав <для> камня & бетона",
			TechnicalCharacteristics: chars,
			URL:                      "https://www.stone-technology.info/product/ochistitel-12/",
		}},
	}}}
}

func TestFileCatalogWriter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, NewFileCatalogWriter(path).SaveCatalog(context.Background(), scrapedCatalog()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "{\n  \"categories\": ["), text)
	assert.Contains(t, text, "Состав <для> камня & бетона", "no unicode or HTML escaping")
	assert.Less(t, strings.Index(text, "Цвет"), strings.Index(text, "Плотность"))
	assert.NotContains(t, text, `"tags"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")

	decoded, err := catalog.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, scrapedCatalog(), decoded)
}

func TestFileCatalogWriterMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "catalog.json")
	assert.Error(t, NewFileCatalogWriter(path).SaveCatalog(context.Background(), scrapedCatalog()))
}

type recordingWriter struct {
	name  string
	err   error
	calls *[]string
}

func (w recordingWriter) SaveCatalog(context.Context, *domain.Catalog) error {
	*w.calls = append(*w.calls, w.name)
	return w.err
}

func TestMultiWriterStopsAtFirstError(t *testing.T) {
	var calls []string
	boom := errors.New("boom")

	m := MultiWriter{
		recordingWriter{name: "file", calls: &calls},
		recordingWriter{name: "postgres", err: boom, calls: &calls},
		recordingWriter{name: "never", calls: &calls},
	}

	assert.ErrorIs(t, m.SaveCatalog(context.Background(), scrapedCatalog()), boom)
	assert.Equal(t, []string{"file", "postgres"}, calls)
}
