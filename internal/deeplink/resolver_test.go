package deeplink

import (
	"context"
	"errors"
	"testing"
	"time"

	"stonetech/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	ready   chan struct{}
	catalog *domain.Catalog
	err     error
}

func loaded(c *domain.Catalog, err error) *fakeStore {
	s := &fakeStore{ready: make(chan struct{}), catalog: c, err: err}
	close(s.ready)
	return s
}

func (s *fakeStore) Wait(ctx context.Context) (*domain.Catalog, error) {
	select {
	case <-s.ready:
		return s.catalog, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func scenarioCatalog() *domain.Catalog {
	return &domain.Catalog{Categories: []domain.Category{
		{ID: "c1", Name: "Cleaners", Products: []domain.Product{
			{ID: "c1-p1", Name: "Cleaner 12", Description: "x"},
			{ID: "c1-p2", Name: "Blocker 1500"},
		}},
		{ID: "c2", Name: "Glues", Products: []domain.Product{
			{ID: "c2-p1", Name: "Glue 12 extra"},
			{ID: "c2-p2", Name: "Glue 7"},
		}},
	}}
}

func newResolver(store CatalogWaiter) *Resolver {
	return NewResolver(store, domain.NewVisibilityRule(0), 500*time.Millisecond, 300*time.Millisecond)
}

func TestResolveOpensFirstMatch(t *testing.T) {
	m := newResolver(loaded(scenarioCatalog(), nil)).Resolve(context.Background(), "12")

	require.NotNil(t, m)
	assert.Equal(t, "Cleaner 12", m.Product.Name)
	assert.Equal(t, "c1", m.Category.ID)
	assert.Equal(t, "category-c1", m.Anchor)
	assert.Equal(t, 12, m.Article.Number)
	assert.Equal(t, 500*time.Millisecond, m.ScrollDelay)
	assert.Equal(t, 300*time.Millisecond, m.OpenDelay)
}

func TestResolveNoOp(t *testing.T) {
	r := newResolver(loaded(scenarioCatalog(), nil))

	tests := map[string]string{
		"empty":          "",
		"blank":          "   ",
		"hidden product": "1500",
		"unknown":        "999",
		"not a number":   "abc",
		"leading zero":   "012",
	}
	for name, target := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, r.Resolve(context.Background(), target))
		})
	}
}

func TestResolveTrimsTarget(t *testing.T) {
	m := newResolver(loaded(scenarioCatalog(), nil)).Resolve(context.Background(), " 7 ")
	require.NotNil(t, m)
	assert.Equal(t, "Glue 7", m.Product.Name)
}

func TestResolveLoadFailure(t *testing.T) {
	store := loaded(nil, &domain.LoadError{Status: 500, Msg: "Internal Server Error"})
	assert.Nil(t, newResolver(store).Resolve(context.Background(), "12"))
}

func TestResolveWaitsForReady(t *testing.T) {
	store := &fakeStore{ready: make(chan struct{}), catalog: scenarioCatalog()}
	r := newResolver(store)

	done := make(chan *Match, 1)
	go func() { done <- r.Resolve(context.Background(), "12") }()

	select {
	case <-done:
		t.Fatal("resolved before the catalog was ready")
	case <-time.After(20 * time.Millisecond):
	}

	close(store.ready)
	select {
	case m := <-done:
		require.NotNil(t, m)
		assert.Equal(t, "c1-p1", m.Product.ID)
	case <-time.After(time.Second):
		t.Fatal("resolve did not finish after ready")
	}
}

func TestResolveBoundedByContext(t *testing.T) {
	store := &fakeStore{ready: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Nil(t, newResolver(store).Resolve(ctx, "12"))
	assert.True(t, errors.Is(ctx.Err(), context.DeadlineExceeded))
}

func TestResolveProductByID(t *testing.T) {
	c := &domain.Catalog{Categories: []domain.Category{
		{ID: "cleaners", Products: []domain.Product{{ID: "ochistiteli-alpha-1", Name: "Alpha"}}},
		{ID: "repair", Products: []domain.Product{
			{ID: "remontnye-beta-1", Name: "Beta"},
			{ID: "remontnye-gamma-2", Name: "Gamma 1500"},
		}},
	}}
	r := newResolver(loaded(c, nil))
	ctx := context.Background()

	m := r.ResolveProduct(ctx, "repair", "remontnye-beta-1")
	require.NotNil(t, m)
	assert.Equal(t, "Beta", m.Product.Name)
	assert.Equal(t, "1", m.Article.Raw)
	assert.Equal(t, "category-repair", m.Anchor)

	assert.Equal(t, "Alpha", r.Resolve(ctx, "1").Product.Name, "article lookup takes the first match")

	assert.Nil(t, r.ResolveProduct(ctx, "cleaners", "remontnye-beta-1"), "wrong category")
	assert.Nil(t, r.ResolveProduct(ctx, "repair", "remontnye-gamma-2"), "hidden product")
	assert.Nil(t, r.ResolveProduct(ctx, "repair", ""))
	assert.Nil(t, newResolver(loaded(nil, errors.New("boom"))).ResolveProduct(ctx, "repair", "remontnye-beta-1"))
}
