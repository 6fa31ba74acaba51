package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticleOf(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    Article
	}{
		{
			name:    "digits at end of name",
			product: Product{ID: "c1-p1", Name: "Cleaner 12"},
			want:    Article{Raw: "12", Number: 12, Valid: true},
		},
		{
			name:    "digits followed by space",
			product: Product{ID: "x", Name: "KS 115 концентрат"},
			want:    Article{Raw: "115", Number: 115, Valid: true},
		},
		{
			name:    "digits glued to letters are skipped",
			product: Product{ID: "x", Name: "A12B 34"},
			want:    Article{Raw: "34", Number: 34, Valid: true},
		},
		{
			name:    "non breaking space counts as whitespace",
			product: Product{ID: "x", Name: "Блокиратор 7 л"},
			want:    Article{Raw: "7", Number: 7, Valid: true},
		},
		{
			name:    "hidden range",
			product: Product{ID: "x", Name: "Blocker 1500"},
			want:    Article{Raw: "1500", Number: 1500, Valid: true},
		},
		{
			name:    "falls back to id suffix",
			product: Product{ID: "cleaners-super-42", Name: "Super cleaner"},
			want:    Article{Raw: "42", Number: 42, Valid: true},
		},
		{
			name:    "id suffix with trailing letters keeps leading integer",
			product: Product{ID: "cleaners-12abc", Name: "Super cleaner"},
			want:    Article{Raw: "12abc", Number: 12, Valid: true},
		},
		{
			name:    "id without dash",
			product: Product{ID: "77", Name: "Plain"},
			want:    Article{Raw: "77", Number: 77, Valid: true},
		},
		{
			name:    "unparsable",
			product: Product{ID: "c1-p1", Name: "Cleaner"},
			want:    Article{Raw: "p1", Valid: false},
		},
		{
			name:    "overflow saturates",
			product: Product{ID: "x", Name: "Item 99999999999999999999999"},
			want:    Article{Raw: "99999999999999999999999", Number: math.MaxInt, Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArticleOf(tt.product))
		})
	}
}

func TestVisibilityRule(t *testing.T) {
	rule := NewVisibilityRule(0)
	assert.Equal(t, DefaultArticleLimit, rule.Limit)

	assert.True(t, rule.Visible(Product{ID: "a", Name: "Cleaner 12"}))
	assert.True(t, rule.Visible(Product{ID: "a", Name: "Cleaner 999"}))
	assert.False(t, rule.Visible(Product{ID: "a", Name: "Cleaner 1000"}))
	assert.False(t, rule.Visible(Product{ID: "a", Name: "Blocker 1500"}))
	assert.False(t, rule.Visible(Product{ID: "c1-p1", Name: "No number"}), "unparsable articles are hidden")
}

func TestVisibleProductsKeepsOrder(t *testing.T) {
	rule := NewVisibilityRule(DefaultArticleLimit)
	category := Category{
		ID: "c1",
		Products: []Product{
			{ID: "c1-3", Name: "Third 3"},
			{ID: "c1-2000", Name: "Hidden 2000"},
			{ID: "c1-1", Name: "First 1"},
			{ID: "c1-x", Name: "Nameless"},
		},
	}

	visible := rule.VisibleProducts(category)
	if assert.Len(t, visible, 2) {
		assert.Equal(t, "c1-3", visible[0].ID)
		assert.Equal(t, "c1-1", visible[1].ID)
	}

	assert.Empty(t, rule.VisibleProducts(Category{Products: []Product{{ID: "h", Name: "Hidden 5000"}}}))
}
