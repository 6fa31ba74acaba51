package client

import (
	"fmt"
	"net/url"
	"strings"

	"stonetech/catalog/internal/domain"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

type catalogParser struct {
	policy *ExtractionPolicy
	base   *url.URL
}

func newCatalogParser(policy *ExtractionPolicy) (*catalogParser, error) {
	base, err := url.Parse(policy.BaseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", policy.BaseURL, err)
	}
	return &catalogParser{policy: policy, base: base}, nil
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseCategories reads the catalog menu of the home page. Links count when their
// text names a known category and their href looks like a catalog page. With no
// such links the known categories are returned with their usual URLs.
func (p *catalogParser) ParseCategories(html string) []domain.CategoryLink {
	var categories []domain.CategoryLink

	if doc, err := parseDocument(html); err != nil {
		log.Warnf("⚠️ Failed to parse home page: %v", err)
	} else {
		seen := make(map[string]bool)
		doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
			text := inlineText(link)
			href, _ := link.Attr("href")
			if text == "" || href == "" || !p.policy.CategoryHref.MatchString(href) || !p.namesKnownCategory(text) {
				return
			}

			fullURL := p.resolve(href)
			if fullURL == "" || seen[fullURL] {
				return
			}
			seen[fullURL] = true

			categories = append(categories, domain.CategoryLink{
				ID:   Slugify(text),
				Name: text,
				URL:  fullURL,
			})
		})
	}

	if len(categories) > 0 {
		log.Infof("📂 Found %d categories in the site menu", len(categories))
		return categories
	}

	log.Warnf("⚠️ No category links found, falling back to %d known categories", len(p.policy.KnownCategories))
	for _, known := range p.policy.KnownCategories {
		categories = append(categories, domain.CategoryLink{
			ID:          known.ID,
			Name:        known.Name,
			URL:         fmt.Sprintf("%s/product/%s/", p.policy.BaseURL, known.Slug),
			Description: known.Description,
		})
	}
	return categories
}

func (p *catalogParser) namesKnownCategory(text string) bool {
	lower := strings.ToLower(text)
	for _, known := range p.policy.KnownCategories {
		if strings.Contains(lower, strings.ToLower(known.Name)) {
			return true
		}
	}
	return false
}

// ParseProductCards returns the product cards of a category page. Cards without a
// name, or linking to a site section instead of a product, are skipped and logged.
func (p *catalogParser) ParseProductCards(html string) ([]domain.ProductCard, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	found, strategy, ok := p.policy.Cards.FirstWhere(doc.Selection, p.notNavigation)
	if !ok {
		return nil, &domain.ExtractionSkip{Stage: "category", Target: "product cards", Reason: "no card strategy matched"}
	}
	log.Debugf("Found %d product cards with %q", found.Length(), strategy)

	var cards []domain.ProductCard
	found.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if i >= p.policy.MaxCards {
			return false
		}

		parsed, err := p.parseCard(card)
		if err != nil {
			log.Warnf("⏭️ %v", err)
			return true
		}
		parsed.Index = i
		cards = append(cards, *parsed)
		return true
	})

	return cards, nil
}

func (p *catalogParser) notNavigation(card *goquery.Selection) bool {
	text := strings.ToLower(joinedText(card, " ", invisibleTags))
	for _, phrase := range p.policy.ExcludedPhrases {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	return true
}

func (p *catalogParser) parseCard(card *goquery.Selection) (*domain.ProductCard, error) {
	nameElem, _, ok := p.policy.Name.First(card)
	if !ok {
		return nil, &domain.ExtractionSkip{Stage: "card", Target: "name", Reason: "no name element"}
	}
	name := inlineText(nameElem)
	if name == "" {
		return nil, &domain.ExtractionSkip{Stage: "card", Target: "name", Reason: "empty name"}
	}

	result := &domain.ProductCard{Name: name}

	link := card.Find("a[href]").First()
	if link.Length() == 0 {
		link = nameElem.Find("a[href]").First()
	}
	if href, ok := link.Attr("href"); ok && href != "" && !p.ignoredLink(href) {
		productURL := p.resolve(href)
		if productURL != "" && !p.isProductURL(productURL) && p.isSectionURL(productURL) {
			return nil, &domain.ExtractionSkip{Stage: "card", Target: name, Reason: "links to a site section: " + productURL}
		}
		result.URL = productURL
	}

	if img := card.Find("img").First(); img.Length() > 0 {
		result.Image = p.imageURL(img)
	}

	if desc, _, ok := p.policy.ShortDescription.First(card); ok {
		result.Description = inlineText(desc)
	}

	return result, nil
}

func (p *catalogParser) ignoredLink(href string) bool {
	for _, prefix := range p.policy.IgnoredLinkPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

func (p *catalogParser) isProductURL(u string) bool {
	return containsAny(strings.ToLower(u), p.policy.ProductPaths)
}

func (p *catalogParser) isSectionURL(u string) bool {
	return containsAny(strings.ToLower(u), p.policy.SectionPaths)
}

func containsAny(s string, parts []string) bool {
	for _, part := range parts {
		if strings.Contains(s, part) {
			return true
		}
	}
	return false
}

func (p *catalogParser) imageURL(img *goquery.Selection) string {
	for _, attr := range p.policy.ImageAttrs {
		if src, ok := img.Attr(attr); ok && strings.TrimSpace(src) != "" {
			return p.resolve(strings.TrimSpace(src))
		}
	}
	return ""
}

func (p *catalogParser) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		log.Debugf("Skipping bad URL %q: %v", href, err)
		return ""
	}
	return p.base.ResolveReference(ref).String()
}

// ParseProductDetails extracts everything it can from a product page. Fields that
// can't be found stay empty.
func (p *catalogParser) ParseProductDetails(html string) (*domain.ProductDetails, error) {
	doc, err := parseDocument(html)
	if err != nil {
		return nil, err
	}

	details := &domain.ProductDetails{}

	if desc, _, ok := p.policy.Description.First(doc.Selection); ok {
		details.Description = joinedText(desc, " ", invisibleTags)
	}

	details.Specifications = p.parseSpecifications(doc)

	if elem := firstTextMatch(doc, p.policy.Application); elem != nil {
		details.Application = inlineText(elem)
	}
	if elem := firstTextMatch(doc, p.policy.Consumption); elem != nil {
		details.Consumption = inlineText(elem)
	}

	p.parseSections(doc, details)
	p.parseCharacteristicTables(doc, details)

	details.Image = p.detailImage(doc)

	return details, nil
}

func (p *catalogParser) parseSpecifications(doc *goquery.Document) []string {
	section, _, ok := p.policy.Specifications.First(doc.Selection)
	if !ok {
		return nil
	}

	var specs []string
	if goquery.NodeName(section) == "table" {
		section.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td, th")
			if cells.Length() >= 2 {
				specs = append(specs, inlineText(cells.Eq(0))+": "+inlineText(cells.Eq(1)))
			}
		})
		return specs
	}

	items := section.Find("li")
	if items.Length() == 0 {
		items = section.Find("div").FilterFunction(func(_ int, el *goquery.Selection) bool {
			class, _ := el.Attr("class")
			lower := strings.ToLower(class)
			return strings.Contains(lower, "item") || strings.Contains(lower, "row")
		})
	}
	items.Each(func(_ int, item *goquery.Selection) {
		if text := inlineText(item); text != "" {
			specs = append(specs, text)
		}
	})
	return specs
}

// parseSections splits the page text into lines and files every line under the
// most recent section title. A title line may carry its first value after the title.
func (p *catalogParser) parseSections(doc *goquery.Document, details *domain.ProductDetails) {
	content, _, ok := p.policy.Content.First(doc.Selection)
	if !ok {
		return
	}

	skip := make(map[string]bool, len(invisibleTags)+len(p.policy.ContentSkipTags))
	for tag := range invisibleTags {
		skip[tag] = true
	}
	for _, tag := range p.policy.ContentSkipTags {
		skip[tag] = true
	}
	fullText := joinedText(content, "\n", skip)

	sections := make(map[string][]string)
	var order []string
	current := ""
	for _, line := range strings.Split(fullText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if field, rest, ok := p.sectionTitle(line); ok {
			current = field
			if _, exists := sections[field]; !exists {
				order = append(order, field)
			}
			sections[field] = nil
			if rest != "" {
				sections[field] = append(sections[field], rest)
			}
			continue
		}
		if current != "" {
			sections[current] = append(sections[current], line)
		}
	}

	for _, field := range order {
		text := strings.TrimSpace(strings.Join(sections[field], "\n"))
		if text == "" {
			continue
		}
		p.setSection(details, field, text)
	}

	if details.Description == "" && fullText != "" {
		details.Description = truncateRunes(fullText, p.policy.MaxFallbackText)
	}
}

func (p *catalogParser) sectionTitle(line string) (field, rest string, ok bool) {
	if len([]rune(line)) >= p.policy.MaxSectionHeader {
		return "", "", false
	}
	for _, kw := range p.policy.Sections {
		if !strings.HasPrefix(line, kw.Keyword) {
			continue
		}
		rest = strings.TrimLeft(strings.TrimPrefix(line, kw.Keyword), " : ")
		return kw.Field, rest, true
	}
	return "", "", false
}

func (p *catalogParser) setSection(d *domain.ProductDetails, field, text string) {
	switch field {
	case FieldDescription:
		d.Description = text
	case FieldApplication:
		d.Application = text
	case FieldDeliveryForm:
		d.DeliveryForm = text
	case FieldShelfLife:
		d.ShelfLife = text
	case FieldSafety:
		d.Safety = text
	case FieldPreparation:
		d.Preparation = text
	case FieldPreparationMethod:
		d.PreparationMethod = text
	case FieldApplicationMethod:
		d.ApplicationMethod = text
	case FieldConsumption:
		d.Consumption = text
	case FieldRecommendations:
		d.Recommendations = text
	case FieldTU:
		d.TU = text
	case FieldComposition:
		d.Composition = text
	case FieldAppearance:
		d.Appearance = text
	case FieldTechnicalCharacteristics:
		for _, line := range strings.Split(text, "\n") {
			key, value, found := strings.Cut(line, ":")
			key, value = strings.TrimSpace(key), strings.TrimSpace(value)
			if found && key != "" && value != "" {
				d.Technical.Set(key, value)
			}
		}
	default:
		log.Debugf("Unknown section field %q", field)
	}
}

// parseCharacteristicTables adds every two-cell table row of the page to the
// technical characteristics.
func (p *catalogParser) parseCharacteristicTables(doc *goquery.Document, details *domain.ProductDetails) {
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return
		}
		key, value := inlineText(cells.Eq(0)), inlineText(cells.Eq(1))
		if key != "" && value != "" {
			details.Technical.Set(key, value)
		}
	})
}

func (p *catalogParser) detailImage(doc *goquery.Document) string {
	for _, strategy := range p.policy.DetailImage {
		img := strategy.Find(doc.Selection)
		if img == nil || img.Length() == 0 {
			continue
		}
		if src := p.imageURL(img); src != "" {
			return src
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
