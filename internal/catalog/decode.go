package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"stonetech/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

// categoryEntry decodes a category's own fields and leaves its products raw so each
// product can be decoded on its own.
type categoryEntry struct {
	domain.Category
	Products json.RawMessage `json:"products"`
}

// Decode validates the document shape and decodes it. The document must be a JSON
// object with a "categories" array; anything else is a MalformedCatalogError.
// Inside the array a category or product that does not decode is logged and left out.
func Decode(data []byte) (*domain.Catalog, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &domain.MalformedCatalogError{Reason: "document is not an object"}
		}
		return nil, &domain.MalformedCatalogError{Reason: "invalid JSON", Err: err}
	}
	if root == nil {
		return nil, &domain.MalformedCatalogError{Reason: "document is null"}
	}

	raw, ok := root["categories"]
	if !ok || !isArray(raw) {
		return nil, &domain.MalformedCatalogError{Reason: "missing categories array"}
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &domain.MalformedCatalogError{Reason: "invalid categories", Err: err}
	}

	catalog := domain.Catalog{Categories: make([]domain.Category, 0, len(entries))}
	for i, entry := range entries {
		category, err := decodeCategory(entry)
		if err != nil {
			log.Warnf("⏭️ Skipping category #%d: %v", i+1, err)
			continue
		}
		catalog.Categories = append(catalog.Categories, category)
	}

	return &catalog, nil
}

func decodeCategory(data json.RawMessage) (domain.Category, error) {
	var entry categoryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return domain.Category{}, err
	}
	category := entry.Category

	products := bytes.TrimSpace(entry.Products)
	if len(products) == 0 || bytes.Equal(products, []byte("null")) {
		return category, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(products, &items); err != nil {
		return domain.Category{}, fmt.Errorf("products of %q: %w", category.ID, err)
	}

	category.Products = make([]domain.Product, 0, len(items))
	for i, item := range items {
		var p domain.Product
		if err := json.Unmarshal(item, &p); err != nil {
			log.Warnf("⏭️ Skipping product #%d of category %q: %v", i+1, category.ID, err)
			continue
		}
		category.Products = append(category.Products, p)
	}
	return category, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
