package repository

import (
	"context"
	"fmt"

	"stonetech/catalog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogWriter persists a scraped catalog.
type CatalogWriter interface {
	SaveCatalog(ctx context.Context, catalog *domain.Catalog) error
}

const createProductsTable = `
	CREATE TABLE IF NOT EXISTS catalog_products (
		id          TEXT PRIMARY KEY,
		category_id TEXT NOT NULL,
		position    INTEGER NOT NULL,
		data        JSONB NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

const upsertProduct = `
	INSERT INTO catalog_products (id, category_id, position, data, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (id)
	DO UPDATE SET category_id = $2, position = $3, data = $4, updated_at = now()`

type postgresCatalogWriter struct {
	db *pgxpool.Pool
}

// NewPostgresCatalogWriter mirrors every product into catalog_products, one row per
// product with the product document as JSONB.
func NewPostgresCatalogWriter(db *pgxpool.Pool) CatalogWriter {
	return &postgresCatalogWriter{
		db: db,
	}
}

func (r *postgresCatalogWriter) SaveCatalog(ctx context.Context, catalog *domain.Catalog) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createProductsTable); err != nil {
			return fmt.Errorf("failed to create catalog_products: %w", err)
		}

		batch := &pgx.Batch{}
		for _, category := range catalog.Categories {
			for i, product := range category.Products {
				batch.Queue(upsertProduct, product.ID, category.ID, i, product)
			}
		}
		if batch.Len() == 0 {
			return nil
		}

		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert products: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	return nil
}
