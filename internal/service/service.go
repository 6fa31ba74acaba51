package service

import (
	"context"
	"fmt"
	"time"

	"stonetech/catalog/internal/client"
	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/repository"

	log "github.com/sirupsen/logrus"
)

// Service scrapes the source site into a catalog document. Pages are fetched one at a
// time with pauses between products and categories.
type Service struct {
	client        client.SiteClient
	writer        repository.CatalogWriter
	productDelay  time.Duration
	categoryDelay time.Duration
}

func NewService(
	client client.SiteClient,
	writer repository.CatalogWriter,
	productDelay time.Duration,
	categoryDelay time.Duration,
) *Service {
	return &Service{
		client:        client,
		writer:        writer,
		productDelay:  productDelay,
		categoryDelay: categoryDelay,
	}
}

// Run scrapes the site and saves the result.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()

	catalog, err := s.Scrape(ctx)
	if err != nil {
		return err
	}

	if err := s.writer.SaveCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	log.Infof("✅ Scraping finished in %s: %d categories, %d products",
		time.Since(start).Round(time.Second), len(catalog.Categories), catalog.CountProducts())
	return nil
}

// Scrape builds the catalog. A category or product that can't be read is logged and
// left out (or left with its card data); only cancellation stops the scrape.
func (s *Service) Scrape(ctx context.Context) (*domain.Catalog, error) {
	log.Info("🔄 Loading categories from the home page...")
	links := s.client.GetCategories(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Infof("📂 Scraping %d categories", len(links))

	catalog := &domain.Catalog{Categories: make([]domain.Category, 0, len(links))}
	for _, link := range links {
		category, err := s.scrapeCategory(ctx, link)
		if err != nil {
			return nil, err
		}
		catalog.Categories = append(catalog.Categories, category)
		log.Infof("✅ Completed %s: %d products", category.Name, len(category.Products))

		if err := wait(ctx, s.categoryDelay); err != nil {
			return nil, err
		}
	}

	return catalog, nil
}

func (s *Service) scrapeCategory(ctx context.Context, link domain.CategoryLink) (domain.Category, error) {
	category := domain.Category{
		ID:          link.ID,
		Name:        link.Name,
		Description: link.Description,
		Products:    make([]domain.Product, 0),
	}

	log.Infof("🔄 Processing category: %s (%s)", link.Name, link.URL)

	cards, err := s.client.GetProductCards(ctx, link)
	if err != nil {
		if ctx.Err() != nil {
			return category, ctx.Err()
		}
		log.Warnf("⏭️ %v", &domain.ExtractionSkip{Stage: "category", Target: link.Name, Reason: "no products read", Err: err})
		return category, nil
	}

	categorySlug := client.Slugify(link.Name)
	for _, card := range cards {
		product := domain.Product{
			ID:          fmt.Sprintf("%s-%s-%d", categorySlug, client.Slugify(card.Name), card.Index+1),
			Name:        card.Name,
			Description: card.Description,
			Image:       card.Image,
			URL:         card.URL,
		}

		if card.URL != "" {
			details, err := s.client.GetProductDetails(ctx, card.URL)
			switch {
			case err != nil && ctx.Err() != nil:
				return category, ctx.Err()
			case err != nil:
				log.Warnf("⏭️ %v", &domain.ExtractionSkip{Stage: "details", Target: card.Name, Reason: "keeping card data", Err: err})
			case details.Empty():
				log.Warnf("⏭️ %v", &domain.ExtractionSkip{Stage: "details", Target: card.Name, Reason: "page had no recognizable content"})
			default:
				details.Apply(&product)
			}
		}

		category.Products = append(category.Products, product)
		log.Debugf("  - %s (%s)", product.Name, product.ID)

		if err := wait(ctx, s.productDelay); err != nil {
			return category, err
		}
	}

	return category, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
