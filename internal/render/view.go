// Package render builds view models for every catalog surface and turns them into
// HTML fragments. The Build* functions are pure: each applies the visibility rule on
// its own, so no surface depends on another surface's filtering.
package render

import (
	"net/url"
	"strings"

	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/format"
)

// DefaultDescriptionLimit is the card summary length in characters.
const DefaultDescriptionLimit = 150

const (
	ErrorHeadline = "Ошибка загрузки каталога"
	ErrorHint     = "Проверьте, что файл catalog.json лежит рядом с сайтом и доступен для чтения."
)

// Card is one product tile of the main grid.
type Card struct {
	ProductID  string
	CategoryID string
	Article    string
	Name       string
	Summary    string
	Tags       []string
	Href       string
	Fragment   string
}

// GridSection is a visible category with its cards.
type GridSection struct {
	ID          string
	Anchor      string
	Name        string
	Description string
	Cards       []Card
}

type Grid struct {
	Sections []GridSection
}

type FooterLink struct {
	Article string
	Name    string
	Href    string
}

// FooterGroup is the collapsible product index of one category.
type FooterGroup struct {
	ID    string
	Name  string
	Links []FooterLink
}

type Footer struct {
	Groups []FooterGroup
}

type MenuItem struct {
	Name string
	Href string
}

type HeaderMenu struct {
	Items []MenuItem
}

// Section is one titled block of the detail overlay. Exactly one of Text, Blocks,
// Table or Items is set.
type Section struct {
	Key    string
	Title  string
	Text   string
	Blocks format.Blocks
	Table  domain.Characteristics
	Items  []string
}

// Detail is the product overlay.
type Detail struct {
	Article     string
	Name        string
	Tags        []string
	Link        string
	Description format.Blocks
	Sections    []Section
}

type ErrorPanel struct {
	Headline string
	Message  string
	Hint     string
}

// AnchorID is the element id of a category section.
func AnchorID(categoryID string) string {
	return "category-" + categoryID
}

// ProductHref is the relative deep link of a product.
func ProductHref(article domain.Article) string {
	return "?product=" + url.QueryEscape(article.Raw)
}

// BuildGrid returns a section per category with at least one visible product.
func BuildGrid(c *domain.Catalog, rule domain.VisibilityRule, limit int) Grid {
	if limit <= 0 {
		limit = DefaultDescriptionLimit
	}

	var grid Grid
	for _, category := range c.Categories {
		var cards []Card
		for _, p := range category.Products {
			article := domain.ArticleOf(p)
			if !rule.VisibleArticle(article) {
				continue
			}
			cards = append(cards, Card{
				ProductID:  p.ID,
				CategoryID: category.ID,
				Article:    article.Raw,
				Name:       p.Name,
				Summary:    Truncate(p.Description, limit),
				Tags:       p.Tags,
				Href:       ProductHref(article),
				Fragment:   ProductFragmentURL(category.ID, p.ID),
			})
		}
		if len(cards) == 0 {
			continue
		}

		grid.Sections = append(grid.Sections, GridSection{
			ID:          category.ID,
			Anchor:      AnchorID(category.ID),
			Name:        category.Name,
			Description: category.Description,
			Cards:       cards,
		})
	}
	return grid
}

// ProductFragmentURL is where the page script loads the overlay of a clicked card.
func ProductFragmentURL(categoryID, productID string) string {
	return "/categories/" + url.PathEscape(categoryID) + "/products/" + url.PathEscape(productID)
}

// Truncate cuts s to limit characters and appends "..." only when something was cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func BuildFooter(c *domain.Catalog, rule domain.VisibilityRule) Footer {
	var footer Footer
	for _, category := range c.Categories {
		var links []FooterLink
		for _, p := range category.Products {
			article := domain.ArticleOf(p)
			if !rule.VisibleArticle(article) {
				continue
			}
			links = append(links, FooterLink{
				Article: article.Raw,
				Name:    p.Name,
				Href:    ProductHref(article),
			})
		}
		if len(links) == 0 {
			continue
		}

		footer.Groups = append(footer.Groups, FooterGroup{
			ID:    category.ID,
			Name:  category.Name,
			Links: links,
		})
	}
	return footer
}

func BuildHeaderMenu(c *domain.Catalog, rule domain.VisibilityRule) HeaderMenu {
	var menu HeaderMenu
	for _, category := range c.Categories {
		if len(rule.VisibleProducts(category)) == 0 {
			continue
		}
		menu.Items = append(menu.Items, MenuItem{
			Name: category.Name,
			Href: "#" + AnchorID(category.ID),
		})
	}
	return menu
}

type detailField struct {
	key       string
	title     string
	formatted bool
	value     func(domain.Product) string
}

// detailFields is the fixed order of the structured overlay sections.
var detailFields = []detailField{
	{key: "delivery_form", title: "Форма поставки", value: func(p domain.Product) string { return p.DeliveryForm }},
	{key: "shelf_life", title: "Срок годности и условия хранения", value: func(p domain.Product) string { return p.ShelfLife }},
	{key: "safety", title: "Техника безопасности", value: func(p domain.Product) string { return p.Safety }},
	{key: "preparation", title: "Подготовка основания", formatted: true, value: func(p domain.Product) string { return p.Preparation }},
	{key: "preparation_method", title: "Способ приготовления", formatted: true, value: func(p domain.Product) string { return p.PreparationMethod }},
	{key: "application_method", title: "Способ применения", formatted: true, value: func(p domain.Product) string { return p.ApplicationMethod }},
	{key: "recommendations", title: "Рекомендации", formatted: true, value: func(p domain.Product) string { return p.Recommendations }},
	{key: "tu", title: "ТУ", value: func(p domain.Product) string { return p.TU }},
}

// BuildDetail returns the overlay of p, or nil when p is hidden. canonicalBase is
// the page URL the copied deep link is built on; its query and fragment are dropped.
func BuildDetail(p domain.Product, rule domain.VisibilityRule, canonicalBase string) *Detail {
	article := domain.ArticleOf(p)
	if !rule.VisibleArticle(article) {
		return nil
	}

	detail := &Detail{
		Article:     article.Raw,
		Name:        p.Name,
		Tags:        p.Tags,
		Link:        CanonicalLink(canonicalBase, article),
		Description: format.Format(p.Description),
	}

	for _, field := range detailFields {
		text := strings.TrimSpace(field.value(p))
		if text == "" {
			continue
		}

		section := Section{Key: field.key, Title: field.title}
		if field.formatted {
			section.Blocks = format.Format(text)
		} else {
			section.Text = text
		}
		detail.Sections = append(detail.Sections, section)
	}

	if len(p.TechnicalCharacteristics) > 0 {
		detail.Sections = append(detail.Sections, Section{
			Key:   "technical_characteristics",
			Title: "Технические характеристики",
			Table: p.TechnicalCharacteristics,
		})
	}
	if len(p.Specifications) > 0 {
		detail.Sections = append(detail.Sections, Section{
			Key:   "specifications",
			Title: "Характеристики",
			Items: p.Specifications,
		})
	}

	return detail
}

// CanonicalLink is the shareable URL that reopens the overlay of the given article.
func CanonicalLink(base string, article domain.Article) string {
	base, _, _ = strings.Cut(base, "#")
	base, _, _ = strings.Cut(base, "?")
	return base + ProductHref(article)
}

func BuildErrorPanel(err error) ErrorPanel {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ErrorPanel{
		Headline: ErrorHeadline,
		Message:  msg,
		Hint:     ErrorHint,
	}
}
