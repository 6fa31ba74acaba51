package httpserver

import (
	"context"
	"net/http"
	"time"

	"stonetech/catalog/internal/deeplink"
	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/render"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// CatalogWaiter is satisfied by catalog.Store.
type CatalogWaiter interface {
	Wait(ctx context.Context) (*domain.Catalog, error)
}

// Config holds runtime options for the catalog site.
type Config struct {
	Address   string
	PublicURL string // canonical base of copied deep links; derived from the request when empty
	Store     CatalogWaiter
	Renderer  *render.Renderer
	Surfaces  *render.Surfaces
	Resolver  *deeplink.Resolver
}

// New constructs the HTTP server with its middleware stack and routes.
func New(cfg Config) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(cfg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func NewRouter(cfg Config) chi.Router {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(RequestLogger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	h := &handlers{
		store:     cfg.Store,
		renderer:  cfg.Renderer,
		surfaces:  cfg.Surfaces,
		resolver:  cfg.Resolver,
		publicURL: cfg.PublicURL,
	}

	router.Get("/", h.page)
	router.Get("/products/{article}", h.product)
	router.Get("/categories/{category}/products/{id}", h.productByID)
	router.Get("/catalog.json", h.catalogJSON)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return router
}
