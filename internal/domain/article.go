package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DefaultArticleLimit hides every product whose article is at or above it.
const DefaultArticleLimit = 1000

// Article is the integer product code derived from a product's name or id.
// Raw is the text the number was read from and is what deep links compare against.
// Valid is false when Raw carries no leading integer.
type Article struct {
	Raw    string
	Number int
	Valid  bool
}

func (a Article) String() string {
	return a.Raw
}

var articleInName = regexp.MustCompile(`(\d+)(?:[\s\p{Z}\x{FEFF}]|$)`)

// ArticleOf extracts the article of p: the first run of digits in the name that is
// followed by whitespace or the end of the name, otherwise the last dash-separated
// segment of the id.
func ArticleOf(p Product) Article {
	raw := ""
	if m := articleInName.FindStringSubmatch(p.Name); len(m) > 1 {
		raw = m[1]
	} else {
		raw = p.ID[strings.LastIndex(p.ID, "-")+1:]
	}

	number, ok := leadingInt(raw)
	return Article{Raw: raw, Number: number, Valid: ok}
}

// leadingInt reads an optionally signed integer prefix after leading whitespace and
// ignores whatever follows it. Values too large for int saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, true
}

// VisibilityRule decides which products are shown on any rendered surface.
type VisibilityRule struct {
	Limit int
}

func NewVisibilityRule(limit int) VisibilityRule {
	if limit <= 0 {
		limit = DefaultArticleLimit
	}
	return VisibilityRule{Limit: limit}
}

// Visible reports whether p may be rendered. Products without a parsable article are hidden.
func (r VisibilityRule) Visible(p Product) bool {
	return r.VisibleArticle(ArticleOf(p))
}

func (r VisibilityRule) VisibleArticle(a Article) bool {
	return a.Valid && a.Number < r.Limit
}

// VisibleProducts returns the visible products of c in catalog order.
func (r VisibilityRule) VisibleProducts(c Category) []Product {
	visible := make([]Product, 0, len(c.Products))
	for _, p := range c.Products {
		if r.Visible(p) {
			visible = append(visible, p)
		}
	}
	return visible
}
