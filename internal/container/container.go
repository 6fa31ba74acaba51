package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"stonetech/catalog/internal/catalog"
	"stonetech/catalog/internal/client"
	"stonetech/catalog/internal/config"
	"stonetech/catalog/internal/deeplink"
	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/httpserver"
	"stonetech/catalog/internal/proxy"
	"stonetech/catalog/internal/render"
	"stonetech/catalog/internal/repository"
	"stonetech/catalog/internal/service"
	"stonetech/catalog/internal/state"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Scraper holds the initialized components of the offline scraper
type Scraper struct {
	Config  *config.Config
	Client  client.SiteClient
	Writer  repository.CatalogWriter
	Service *service.Service

	db    *pgxpool.Pool
	redis *redis.Client
}

// NewScraper wires the scraper. Redis and Postgres are only connected when enabled.
func NewScraper(ctx context.Context, cfg *config.Config) (*Scraper, error) {
	scraper := &Scraper{Config: cfg}

	proxySupplier := proxy.NewProxySupplier(ctx, cfg.Scraper.Proxies, cfg.Scraper.BaseURL)

	var cache state.PageCache = state.NopPageCache{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")

		scraper.redis = rdb
		cache = state.NewRedisPageCache(rdb, time.Duration(cfg.Redis.PageTTL)*time.Second)
	}

	writers := repository.MultiWriter{repository.NewFileCatalogWriter(cfg.Scraper.OutputFile)}
	if cfg.Database.Enabled {
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			scraper.Close()
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		log.Info("✅ Connected to Postgres successfully")

		scraper.db = db
		writers = append(writers, repository.NewPostgresCatalogWriter(db))
	}
	scraper.Writer = writers

	policy := client.DefaultPolicy(cfg.Scraper.BaseURL, cfg.Scraper.MaxProductsPerCategory)
	siteClient, err := client.NewSiteClient(cfg.Scraper, policy, proxySupplier, cache)
	if err != nil {
		scraper.Close()
		return nil, fmt.Errorf("failed to initialize site client: %w", err)
	}
	scraper.Client = siteClient

	scraper.Service = service.NewService(
		siteClient,
		writers,
		cfg.Scraper.ProductDelay(),
		cfg.Scraper.CategoryDelay(),
	)

	return scraper, nil
}

func (s *Scraper) Run(ctx context.Context) error {
	return s.Service.Run(ctx)
}

// Close releases the database pool and the Redis client
func (s *Scraper) Close() {
	if s.db != nil {
		s.db.Close()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}
}

// Site holds the initialized components of the catalog website
type Site struct {
	Config   *config.Config
	Store    *catalog.Store
	Renderer *render.Renderer
	Surfaces *render.Surfaces
	Resolver *deeplink.Resolver
	Server   *http.Server

	source catalog.Source
}

// NewSite wires the catalog website. The catalog itself is loaded by Run.
func NewSite(cfg *config.Config) (*Site, error) {
	rule := domain.NewVisibilityRule(cfg.Catalog.ArticleLimit)

	renderer, err := render.NewRenderer(render.Options{
		Rule:             rule,
		DescriptionLimit: cfg.Site.DescriptionLimit,
		CopiedMs:         cfg.Site.CopiedMs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize renderer: %w", err)
	}

	source := catalog.NewSource(cfg.Catalog.Source, time.Duration(cfg.Catalog.LoadTimeout)*time.Second)
	store := catalog.NewStore(source)

	surfaces := &render.Surfaces{}
	surfaces.Attach(store, renderer)

	resolver := deeplink.NewResolver(store, rule, cfg.Site.ScrollDelay(), cfg.Site.OpenDelay())

	server := httpserver.New(httpserver.Config{
		Address:   cfg.Server.Addr(),
		PublicURL: cfg.Site.PublicURL,
		Store:     store,
		Renderer:  renderer,
		Surfaces:  surfaces,
		Resolver:  resolver,
	})

	return &Site{
		Config:   cfg,
		Store:    store,
		Renderer: renderer,
		Surfaces: surfaces,
		Resolver: resolver,
		Server:   server,
		source:   source,
	}, nil
}

// Run loads the catalog in the background and serves HTTP until ctx is cancelled.
// A failed load is not fatal: the site keeps serving the error panel.
func (s *Site) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		loadCtx, cancel := context.WithTimeout(ctx, time.Duration(s.Config.Catalog.LoadTimeout)*time.Second)
		defer cancel()

		if err := s.Store.Load(loadCtx); err != nil {
			log.Errorf("❌ Catalog from %s is unavailable: %v", s.source, err)
			return nil
		}

		c, _ := s.Store.Snapshot()
		log.Infof("✅ Catalog loaded: %d categories, %d products", len(c.Categories), c.CountProducts())
		return nil
	})

	g.Go(func() error {
		log.Infof("🚀 Serving catalog on %s", s.Server.Addr)
		if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("🛑 Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Close releases the catalog source
func (s *Site) Close() {
	if closer, ok := s.source.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warnf("⚠️ Failed to close catalog source: %v", err)
		}
	}
}
