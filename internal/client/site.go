package client

import (
	"context"
	"fmt"
	"time"

	"stonetech/catalog/internal/config"
	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/proxy"
	"stonetech/catalog/internal/state"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// SiteClient downloads and parses pages of the source site.
type SiteClient interface {
	FetchPage(ctx context.Context, url string) (string, error)
	GetCategories(ctx context.Context) []domain.CategoryLink
	GetProductCards(ctx context.Context, category domain.CategoryLink) ([]domain.ProductCard, error)
	GetProductDetails(ctx context.Context, productURL string) (*domain.ProductDetails, error)
}

type siteClient struct {
	rl            ratelimit.Limiter
	baseURL       string
	timeout       time.Duration
	httpClient    *resty.Client
	parser        *catalogParser
	proxySupplier proxy.ProxySupplier
	cache         state.PageCache
}

// NewSiteClient builds a client with browser-like headers. Requests are paced by
// max_requests_per_second and retried only when max_retries is set.
func NewSiteClient(cfg config.ScraperConfig, policy *ExtractionPolicy, proxySupplier proxy.ProxySupplier, cache state.PageCache) (SiteClient, error) {
	parser, err := newCatalogParser(policy)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8").
		SetHeader("Accept-Language", "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7")
	if cfg.MaxRetries > 0 {
		client.
			SetRetryCount(cfg.MaxRetries).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(10 * time.Second)
	}

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	if cache == nil {
		cache = state.NopPageCache{}
	}

	return &siteClient{
		rl:            rl,
		baseURL:       policy.BaseURL,
		timeout:       timeout,
		httpClient:    client,
		parser:        parser,
		proxySupplier: proxySupplier,
		cache:         cache,
	}, nil
}

// GetCategories reads the category menu from the home page. An unreachable home page
// is parsed as an empty document, which yields the known categories.
func (c *siteClient) GetCategories(ctx context.Context) []domain.CategoryLink {
	html, err := c.FetchPage(ctx, c.baseURL)
	if err != nil {
		log.Warnf("⚠️ Failed to load home page, continuing with known categories: %v", err)
		html = ""
	}
	return c.parser.ParseCategories(html)
}

func (c *siteClient) GetProductCards(ctx context.Context, category domain.CategoryLink) ([]domain.ProductCard, error) {
	html, err := c.FetchPage(ctx, category.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category %s: %w", category.Name, err)
	}

	cards, err := c.parser.ParseProductCards(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category %s: %w", category.Name, err)
	}

	log.Debugf("Parsed %d product cards for %s", len(cards), category.Name)
	return cards, nil
}

func (c *siteClient) GetProductDetails(ctx context.Context, productURL string) (*domain.ProductDetails, error) {
	html, err := c.FetchPage(ctx, productURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product page: %w", err)
	}

	details, err := c.parser.ParseProductDetails(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product page: %w", err)
	}
	return details, nil
}

// FetchPage returns the HTML of url, from the page cache when possible. Transport
// failures move the client to the next proxy for the following request.
func (c *siteClient) FetchPage(ctx context.Context, url string) (string, error) {
	if html, ok, err := c.cache.Get(ctx, url); err != nil {
		log.Warnf("⚠️ Page cache unavailable: %v", err)
	} else if ok {
		log.Debugf("📦 Cache hit for %s", url)
		return html, nil
	}

	c.rl.Take()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Debugf("⬇️ Fetching %s", url)
	resp, err := c.httpClient.R().
		SetContext(reqCtx).
		Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		c.rotateProxy()
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %s", resp.Status())
	}

	html := resp.String()
	if err := c.cache.Set(ctx, url, html); err != nil {
		log.Warnf("⚠️ Failed to cache %s: %v", url, err)
	}

	log.Debugf("✅ Loaded %s (%d bytes)", url, len(html))
	return html, nil
}

func (c *siteClient) rotateProxy() {
	if c.proxySupplier == nil || c.proxySupplier.Len() < 2 {
		return
	}
	next := c.proxySupplier.Get()
	c.httpClient.SetProxy(next)
	log.Infof("🔄 Switching to proxy %s", next)
}
