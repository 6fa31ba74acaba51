package client

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of locating something in a page. Find returns an empty
// selection (or nil) when the strategy does not apply.
type Strategy struct {
	Name string
	Find func(root *goquery.Selection) *goquery.Selection
}

// Chain is an ordered list of strategies. The first one that finds anything wins.
type Chain []Strategy

// First runs the chain against root and reports which strategy matched.
func (c Chain) First(root *goquery.Selection) (*goquery.Selection, string, bool) {
	return c.FirstWhere(root, nil)
}

// FirstWhere is First with keep applied to every element a strategy finds before
// deciding whether the strategy matched.
func (c Chain) FirstWhere(root *goquery.Selection, keep func(*goquery.Selection) bool) (*goquery.Selection, string, bool) {
	for _, s := range c {
		found := s.Find(root)
		if found == nil {
			continue
		}
		if keep != nil {
			found = found.FilterFunction(func(_ int, el *goquery.Selection) bool { return keep(el) })
		}
		if found.Length() > 0 {
			return found, s.Name, true
		}
	}
	return nil, "", false
}

// KnownCategory is a category assumed to exist when the home page menu can't be read.
type KnownCategory struct {
	ID          string
	Name        string
	Slug        string
	Description string
}

// Section fields a detail page can be split into.
const (
	FieldDescription              = "description"
	FieldApplication              = "application"
	FieldDeliveryForm             = "delivery_form"
	FieldShelfLife                = "shelf_life"
	FieldSafety                   = "safety"
	FieldPreparation              = "preparation"
	FieldPreparationMethod        = "preparation_method"
	FieldApplicationMethod        = "application_method"
	FieldConsumption              = "consumption"
	FieldRecommendations          = "recommendations"
	FieldTU                       = "tu"
	FieldTechnicalCharacteristics = "technical_characteristics"
	FieldComposition              = "composition"
	FieldAppearance               = "appearance"
)

// SectionKeyword marks a line starting with Keyword as the title of Field.
type SectionKeyword struct {
	Keyword string
	Field   string
}

// ExtractionPolicy holds every heuristic the parser uses, so the heuristics can be
// inspected and tuned without touching the parsing code.
type ExtractionPolicy struct {
	BaseURL string

	KnownCategories []KnownCategory
	CategoryHref    *regexp.Regexp

	Cards           Chain
	ExcludedPhrases []string
	MaxCards        int

	Name             Chain
	ShortDescription Chain
	ImageAttrs       []string

	IgnoredLinkPrefixes []string
	ProductPaths        []string
	SectionPaths        []string

	Description    Chain
	Specifications Chain
	Application    *regexp.Regexp
	Consumption    *regexp.Regexp
	DetailImage    Chain

	Content          Chain
	ContentSkipTags  []string
	Sections         []SectionKeyword
	MaxSectionHeader int
	MaxFallbackText  int
}

var knownCategories = []KnownCategory{
	{ID: "injection", Name: "Инъекционные составы", Slug: "inektsionnye-sostavy", Description: "Для укрепления, герметизации и защиты различных строительных объектов"},
	{ID: "antiseptics", Name: "Антисептики и биоциды", Slug: "antiseptiki-i-biotsidy", Description: "Для предотвращения роста микроорганизмов на строительных материалах, увеличивает долговечность и защищает от плесени и вредителей"},
	{ID: "salt-blockers", Name: "Блокираторы солей", Slug: "blokiratory-solei", Description: "Предотвращают образование солевых отложений и коррозию в строительных материалах, улучшая их долговечность"},
	{ID: "waterproofing", Name: "Гидроизоляционные составы", Slug: "gidroizolyatsionnye-sostavy", Description: "Для защиты строительных конструкций от проникновения воды и влаги, обеспечивая долговечность и устойчивость к разрушению"},
	{ID: "additional", Name: "Дополнительная продукция", Slug: "dopolnitelnaya-produktsiya", Description: "Продукция для обработки поверхностей изделий и строительных конструкций"},
	{ID: "stone-strengtheners", Name: "Камнеукрепители", Slug: "kamneukrepiteli", Description: "Для повышения прочности и устойчивости каменных и бетонных конструкций, предотвращая их разрушение и деградацию"},
	{ID: "lime-paint", Name: "Краска известковая", Slug: "kraska-izvestkovaya", Description: "Для отделки и защиты поверхностей, обладающая антисептическими свойствами и способствующая регулированию влажности"},
	{ID: "cleaners", Name: "Очистители", Slug: "ochistiteli", Description: "Для удаления загрязнений, остатков строительных материалов и других нежелательных веществ с поверхностей, обеспечивая их чистоту и подготовленность к дальнейшей обработке"},
	{ID: "repair", Name: "Ремонтные составы", Slug: "remontnye-sostavy", Description: "Для восстановления и укрепления поврежденных строительных конструкций"},
	{ID: "hydrophobizers", Name: "Гидрофобизаторы", Slug: "gidrofobizatory", Description: "Уменьшают водопроницаемость строительных материалов, обеспечивая защиту от влаги и продлевая срок их службы"},
}

// DefaultPolicy returns the heuristics tuned for the stone-technology site.
func DefaultPolicy(baseURL string, maxCards int) *ExtractionPolicy {
	if maxCards <= 0 {
		maxCards = 50
	}

	var (
		productCard   = regexp.MustCompile(`(?i)product.*card|card.*product`)
		product       = regexp.MustCompile(`(?i)product`)
		productList   = regexp.MustCompile(`(?i)products|catalog.*list`)
		cardOrItem    = regexp.MustCompile(`(?i)card|item`)
		titleLike     = regexp.MustCompile(`(?i)title|name|heading`)
		titleOrName   = regexp.MustCompile(`(?i)title|name`)
		blurb         = regexp.MustCompile(`(?i)description|excerpt|text`)
		contentLike   = regexp.MustCompile(`(?i)description|content|text`)
		articleBody   = regexp.MustCompile(`(?i)content|description`)
		specLike      = regexp.MustCompile(`(?i)spec|characteristic|property`)
		specTable     = regexp.MustCompile(`(?i)spec|characteristic`)
		featuredImage = regexp.MustCompile(`(?i)product|main|featured`)
		mainImageID   = regexp.MustCompile(`(?i)product|main`)
		tabContent    = regexp.MustCompile(`(?i)tab.*content|description.*content|product.*content`)
		contentID     = regexp.MustCompile(`(?i)description|content|tab`)
		bitrixTab     = regexp.MustCompile(`(?i)bx-tab-content`)
		contentClass  = regexp.MustCompile(`(?i)content`)
	)

	return &ExtractionPolicy{
		BaseURL: strings.TrimRight(baseURL, "/"),

		KnownCategories: knownCategories,
		CategoryHref:    regexp.MustCompile(`(?i)catalog|category|product`),

		Cards: Chain{
			{Name: "div.product-card", Find: cards(withClass("div", productCard))},
			{Name: "article.product", Find: cards(withClass("article", product))},
			{Name: "div[data-product]", Find: cards(selector("div[data-product]"))},
			{Name: "ul.products li", Find: func(root *goquery.Selection) *goquery.Selection {
				return withClass("ul", productList)(root).First().Find("li")
			}},
			{Name: "card with heading", Find: func(root *goquery.Selection) *goquery.Selection {
				return distinctCards(withClass("div, article", cardOrItem)(root).Has("h2, h3, h4, h5"))
			}},
		},
		ExcludedPhrases: []string{
			"телефон", "email", "адрес", "режим работы", "компания", "каталог", "проекты",
			"статьи", "контакты", "размер", "цвет", "изображения", "озвучивание", "8 800",
			"бесплатно", "москва", "санкт-петербург",
		},
		MaxCards: maxCards,

		Name: Chain{
			{Name: "h2", Find: first(selector("h2"))},
			{Name: "h3", Find: first(selector("h3"))},
			{Name: "h4", Find: first(selector("h4"))},
			{Name: "title class", Find: first(withClass("*", titleLike))},
			{Name: "title link", Find: first(withClass("a", titleOrName))},
		},
		ShortDescription: Chain{
			{Name: "p.description", Find: first(withClass("p", blurb))},
			{Name: "div.description", Find: first(withClass("div", blurb))},
		},
		ImageAttrs: []string{"src", "data-src", "data-lazy-src"},

		IgnoredLinkPrefixes: []string{"tel:", "mailto:", "#", "javascript:"},
		ProductPaths:        []string{"/product/", "/item/", "/goods/"},
		SectionPaths:        []string{"/company/", "/catalog/", "/projects/", "/articles/", "/contacts/"},

		Description: Chain{
			{Name: "div.description", Find: first(withClass("div", contentLike))},
			{Name: "article.content", Find: first(withClass("article", articleBody))},
			{Name: "div#content", Find: first(withAttr("div", "id", articleBody))},
		},
		Specifications: Chain{
			{Name: "div.spec", Find: first(withClass("div", specLike))},
			{Name: "ul.spec", Find: first(withClass("ul", specLike))},
			{Name: "table.spec", Find: first(withClass("table", specTable))},
		},
		Application: regexp.MustCompile(`(?i)применен|использован|назначен`),
		Consumption: regexp.MustCompile(`(?i)расход|consumption|норма`),
		DetailImage: Chain{
			{Name: "img.product", Find: first(withClass("img", featuredImage))},
			{Name: "img#main", Find: first(withAttr("img", "id", mainImageID))},
			{Name: "img[alt]", Find: first(selector("img[alt]"))},
		},

		Content: Chain{
			{Name: "tab content", Find: first(withClass("div", tabContent))},
			{Name: "div#description", Find: first(withAttr("div", "id", contentID))},
			{Name: "bitrix tab", Find: first(withClass("div", bitrixTab))},
			{Name: "article.content", Find: first(withClass("article", contentClass))},
			{Name: "body", Find: first(selector("body"))},
		},
		ContentSkipTags: []string{"script", "style", "nav", "header", "footer"},
		Sections: []SectionKeyword{
			{Keyword: "О товаре", Field: FieldDescription},
			{Keyword: "Применение", Field: FieldApplication},
			{Keyword: "Форма поставки", Field: FieldDeliveryForm},
			{Keyword: "Срок годности", Field: FieldShelfLife},
			{Keyword: "Техника безопасности", Field: FieldSafety},
			{Keyword: "Подготовка основания", Field: FieldPreparation},
			{Keyword: "Способ приготовления", Field: FieldPreparationMethod},
			{Keyword: "Способ применения", Field: FieldApplicationMethod},
			{Keyword: "Расход", Field: FieldConsumption},
			{Keyword: "Рекомендации", Field: FieldRecommendations},
			{Keyword: "ТУ", Field: FieldTU},
			{Keyword: "Технические характеристики", Field: FieldTechnicalCharacteristics},
			{Keyword: "Состав", Field: FieldComposition},
			{Keyword: "Внешний вид", Field: FieldAppearance},
		},
		MaxSectionHeader: 100,
		MaxFallbackText:  2000,
	}
}

func selector(sel string) func(*goquery.Selection) *goquery.Selection {
	return func(root *goquery.Selection) *goquery.Selection {
		return root.Find(sel)
	}
}

// withClass finds sel elements whose class attribute, or any single class in it,
// matches re.
func withClass(sel string, re *regexp.Regexp) func(*goquery.Selection) *goquery.Selection {
	return withAttr(sel, "class", re)
}

func withAttr(sel, attr string, re *regexp.Regexp) func(*goquery.Selection) *goquery.Selection {
	return func(root *goquery.Selection) *goquery.Selection {
		return root.Find(sel).FilterFunction(func(_ int, el *goquery.Selection) bool {
			value, ok := el.Attr(attr)
			if !ok {
				return false
			}
			if re.MatchString(value) {
				return true
			}
			for _, token := range strings.Fields(value) {
				if re.MatchString(token) {
					return true
				}
			}
			return false
		})
	}
}

func cards(find func(*goquery.Selection) *goquery.Selection) func(*goquery.Selection) *goquery.Selection {
	return func(root *goquery.Selection) *goquery.Selection {
		return distinctCards(find(root))
	}
}

func first(find func(*goquery.Selection) *goquery.Selection) func(*goquery.Selection) *goquery.Selection {
	return func(root *goquery.Selection) *goquery.Selection {
		return find(root).First()
	}
}

// distinctCards drops containers holding several headings, which are card lists
// rather than cards, and then elements nested inside another remaining candidate,
// so a card and its inner "product-card__body" are not read as two products.
func distinctCards(sel *goquery.Selection) *goquery.Selection {
	single := sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return el.Find("h2, h3, h4, h5").Length() <= 1
	})
	return single.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return el.Parents().FilterNodes(single.Nodes...).Length() == 0
	})
}
