package domain

// Catalog is the root document shared by the site and the scraper.
type Catalog struct {
	Categories []Category `json:"categories"`
}

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Products    []Product `json:"products"`
}

// Product holds everything known about a single catalog item. Only ID and Name are
// required; every other field is optional and omitted from JSON when empty.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	DeliveryForm      string `json:"delivery_form,omitempty"`
	ShelfLife         string `json:"shelf_life,omitempty"`
	Safety            string `json:"safety,omitempty"`
	Preparation       string `json:"preparation,omitempty"`
	PreparationMethod string `json:"preparation_method,omitempty"`
	ApplicationMethod string `json:"application_method,omitempty"`
	Recommendations   string `json:"recommendations,omitempty"`
	TU                string `json:"tu,omitempty"`

	TechnicalCharacteristics Characteristics `json:"technical_characteristics,omitempty"`
	Specifications           []string        `json:"specifications,omitempty"`

	// Collected by the scraper, not rendered by the site.
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
	Application string `json:"application,omitempty"`
	Consumption string `json:"consumption,omitempty"`
	Composition string `json:"composition,omitempty"`
	Appearance  string `json:"appearance,omitempty"`
}

// CountProducts returns the total number of products across all categories.
func (c *Catalog) CountProducts() int {
	total := 0
	for _, category := range c.Categories {
		total += len(category.Products)
	}
	return total
}

