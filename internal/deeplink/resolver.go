// Package deeplink maps the product query parameter onto a visible product.
package deeplink

import (
	"context"
	"strings"
	"time"

	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/render"

	log "github.com/sirupsen/logrus"
)

// CatalogWaiter is satisfied by catalog.Store.
type CatalogWaiter interface {
	Wait(ctx context.Context) (*domain.Catalog, error)
}

// Match is a resolved deep link. The page scrolls to Anchor after ScrollDelay and
// opens the overlay OpenDelay later.
type Match struct {
	Category    domain.Category
	Product     domain.Product
	Article     domain.Article
	Anchor      string
	ScrollDelay time.Duration
	OpenDelay   time.Duration
}

type Resolver struct {
	store       CatalogWaiter
	rule        domain.VisibilityRule
	scrollDelay time.Duration
	openDelay   time.Duration
}

func NewResolver(store CatalogWaiter, rule domain.VisibilityRule, scrollDelay, openDelay time.Duration) *Resolver {
	return &Resolver{
		store:       store,
		rule:        rule,
		scrollDelay: scrollDelay,
		openDelay:   openDelay,
	}
}

// Resolve waits for the catalog and returns the first visible product whose article
// equals target, scanning categories and products in catalog order. It returns nil
// when nothing matches, when the catalog failed to load, or when ctx ends first.
func (r *Resolver) Resolve(ctx context.Context, target string) *Match {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil
	}

	catalog, err := r.store.Wait(ctx)
	if err != nil {
		log.Debugf("Deep link %q not resolved: %v", target, err)
		return nil
	}

	for _, category := range catalog.Categories {
		for _, p := range category.Products {
			article := domain.ArticleOf(p)
			if !r.rule.VisibleArticle(article) || article.Raw != target {
				continue
			}
			return r.match(category, p, article)
		}
	}

	log.Debugf("Deep link %q matches no visible product", target)
	return nil
}

// ResolveProduct finds a visible product by its id within the category categoryID.
// Articles are not unique across the catalog, so a clicked card is opened this way.
func (r *Resolver) ResolveProduct(ctx context.Context, categoryID, productID string) *Match {
	if productID == "" {
		return nil
	}

	catalog, err := r.store.Wait(ctx)
	if err != nil {
		log.Debugf("Product %q not resolved: %v", productID, err)
		return nil
	}

	for _, category := range catalog.Categories {
		if category.ID != categoryID {
			continue
		}
		for _, p := range category.Products {
			if p.ID != productID {
				continue
			}
			article := domain.ArticleOf(p)
			if !r.rule.VisibleArticle(article) {
				return nil
			}
			return r.match(category, p, article)
		}
	}
	return nil
}

func (r *Resolver) match(category domain.Category, p domain.Product, article domain.Article) *Match {
	return &Match{
		Category:    category,
		Product:     p,
		Article:     article,
		Anchor:      render.AnchorID(category.ID),
		ScrollDelay: r.scrollDelay,
		OpenDelay:   r.openDelay,
	}
}
