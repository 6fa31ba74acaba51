package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"stonetech/catalog/internal/config"
	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu    sync.Mutex
	pages map[string]string
}

func (c *memoryCache) Get(_ context.Context, url string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	html, ok := c.pages[url]
	return html, ok, nil
}

func (c *memoryCache) Set(_ context.Context, url, html string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pages == nil {
		c.pages = make(map[string]string)
	}
	c.pages[url] = html
	return nil
}

func newTestSite(t *testing.T, handler http.Handler) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(data)
	}
}

func newTestClient(t *testing.T, baseURL string, cache state.PageCache) SiteClient {
	t.Helper()
	cfg := config.ScraperConfig{Timeout: 5, UserAgent: "catalog-test/1.0"}
	c, err := NewSiteClient(cfg, DefaultPolicy(baseURL, 0), nil, cache)
	require.NoError(t, err)
	return c
}

func TestFetchPageUsesCache(t *testing.T) {
	var userAgent atomic.Value
	srv, hits := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))

	cache := &memoryCache{}
	c := newTestClient(t, srv.URL, cache)

	html, err := c.FetchPage(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, "catalog-test/1.0", userAgent.Load())

	html, err = c.FetchPage(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
	assert.Equal(t, int32(1), hits.Load(), "second fetch is served from the cache")
}

func TestFetchPageHTTPError(t *testing.T) {
	srv, hits := newTestSite(t, http.NotFoundHandler())
	cache := &memoryCache{}
	c := newTestClient(t, srv.URL, cache)

	_, err := c.FetchPage(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, "HTTP error: 404 Not Found", err.Error())
	assert.EqualValues(t, 1, hits.Load())
	assert.Empty(t, cache.pages, "error pages are not cached")
}

func TestFetchPageServerErrorIsNotRetried(t *testing.T) {
	srv, hits := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	c := newTestClient(t, srv.URL, nil)

	_, err := c.FetchPage(context.Background(), srv.URL+"/busy")
	require.Error(t, err)
	assert.Equal(t, "HTTP error: 503 Service Unavailable", err.Error())
	assert.EqualValues(t, 1, hits.Load())
}

func TestFetchPageTransportFailureIsNotRetried(t *testing.T) {
	srv, hits := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			_ = conn.Close()
		}
	}))
	cache := &memoryCache{}
	c := newTestClient(t, srv.URL, cache)

	_, err := c.FetchPage(context.Background(), srv.URL+"/dropped")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch URL")
	assert.EqualValues(t, 1, hits.Load())
	assert.Empty(t, cache.pages)
}

func TestFetchPageCancelled(t *testing.T) {
	srv, _ := newTestSite(t, http.NotFoundHandler())
	c := newTestClient(t, srv.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchPage(ctx, srv.URL+"/")
	require.Error(t, err)
}

func TestGetCategoriesFallsBackWhenHomePageFails(t *testing.T) {
	srv, hits := newTestSite(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	c := newTestClient(t, srv.URL, nil)

	categories := c.GetCategories(context.Background())
	assert.EqualValues(t, 1, hits.Load(), "the home page is requested once")
	require.Len(t, categories, len(knownCategories))
	assert.Equal(t, srv.URL+"/product/ochistiteli/", categories[7].URL)
}

func TestSiteClientCategoryAndProduct(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/{$}", serveFixture(t, "home.html"))
	mux.Handle("/product/ochistiteli/", serveFixture(t, "category.html"))
	mux.Handle("/product/ochistitel-12/", serveFixture(t, "product.html"))
	srv, _ := newTestSite(t, mux)
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	categories := c.GetCategories(ctx)
	require.Len(t, categories, 2)
	assert.Equal(t, srv.URL+"/product/ochistiteli/", categories[0].URL)

	cards, err := c.GetProductCards(ctx, categories[0])
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, srv.URL+"/product/ochistitel-12/", cards[0].URL)

	details, err := c.GetProductDetails(ctx, cards[0].URL)
	require.NoError(t, err)
	assert.Equal(t, "канистра 5 л", details.DeliveryForm)

	_, err = c.GetProductCards(ctx, domain.CategoryLink{Name: "Ремонтные составы", URL: srv.URL + "/product/remontnye-sostavy/"})
	require.Error(t, err)
}
