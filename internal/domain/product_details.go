package domain

// CategoryLink is a category found on (or assumed for) the source site.
type CategoryLink struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// ProductCard is what the scraper can read from a category page. Index is the
// card's position among the page's candidate cards, skipped ones included.
type ProductCard struct {
	Index       int    `json:"-"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProductDetails is what the scraper can read from a product page. Empty fields were
// not found and leave the card's values untouched when merged.
type ProductDetails struct {
	Description       string          `json:"description,omitempty"`
	Specifications    []string        `json:"specifications,omitempty"`
	Application       string          `json:"application,omitempty"`
	Consumption       string          `json:"consumption,omitempty"`
	Image             string          `json:"image,omitempty"`
	DeliveryForm      string          `json:"delivery_form,omitempty"`
	ShelfLife         string          `json:"shelf_life,omitempty"`
	Safety            string          `json:"safety,omitempty"`
	Preparation       string          `json:"preparation,omitempty"`
	PreparationMethod string          `json:"preparation_method,omitempty"`
	ApplicationMethod string          `json:"application_method,omitempty"`
	Recommendations   string          `json:"recommendations,omitempty"`
	TU                string          `json:"tu,omitempty"`
	Composition       string          `json:"composition,omitempty"`
	Appearance        string          `json:"appearance,omitempty"`
	Technical         Characteristics `json:"technical_characteristics,omitempty"`
}

// Empty reports whether nothing was extracted.
func (d *ProductDetails) Empty() bool {
	return d.Description == "" && len(d.Specifications) == 0 && d.Application == "" &&
		d.Consumption == "" && d.Image == "" && d.DeliveryForm == "" && d.ShelfLife == "" &&
		d.Safety == "" && d.Preparation == "" && d.PreparationMethod == "" &&
		d.ApplicationMethod == "" && d.Recommendations == "" && d.TU == "" &&
		d.Composition == "" && d.Appearance == "" && len(d.Technical) == 0
}

// Apply copies every non-empty detail onto p.
func (d *ProductDetails) Apply(p *Product) {
	setIf := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setIf(&p.Description, d.Description)
	setIf(&p.Application, d.Application)
	setIf(&p.Consumption, d.Consumption)
	setIf(&p.Image, d.Image)
	setIf(&p.DeliveryForm, d.DeliveryForm)
	setIf(&p.ShelfLife, d.ShelfLife)
	setIf(&p.Safety, d.Safety)
	setIf(&p.Preparation, d.Preparation)
	setIf(&p.PreparationMethod, d.PreparationMethod)
	setIf(&p.ApplicationMethod, d.ApplicationMethod)
	setIf(&p.Recommendations, d.Recommendations)
	setIf(&p.TU, d.TU)
	setIf(&p.Composition, d.Composition)
	setIf(&p.Appearance, d.Appearance)
	if len(d.Specifications) > 0 {
		p.Specifications = d.Specifications
	}
	if len(d.Technical) > 0 {
		p.TechnicalCharacteristics = d.Technical
	}
}
