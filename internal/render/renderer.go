package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"stonetech/catalog/internal/catalog"
	"stonetech/catalog/internal/domain"
	"stonetech/catalog/internal/format"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Options configures a Renderer.
type Options struct {
	Rule             domain.VisibilityRule
	DescriptionLimit int
	CopiedMs         int
}

// Renderer applies view models to the embedded HTML templates.
type Renderer struct {
	tmpl     *template.Template
	policy   *bluemonday.Policy
	rule     domain.VisibilityRule
	limit    int
	copiedMs int
}

func NewRenderer(opts Options) (*Renderer, error) {
	r := &Renderer{
		policy:   format.NewPolicy(),
		rule:     opts.Rule,
		limit:    opts.DescriptionLimit,
		copiedMs: opts.CopiedMs,
	}
	if r.rule.Limit <= 0 {
		r.rule = domain.NewVisibilityRule(0)
	}
	if r.copiedMs <= 0 {
		r.copiedMs = 2000
	}

	funcMap := template.FuncMap{
		"formatted": func(b format.Blocks) template.HTML { return b.HTML(r.policy) },
	}
	tmpl, err := template.New("_root").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.tmpl = tmpl

	return r, nil
}

func (r *Renderer) Grid(c *domain.Catalog) (template.HTML, error) {
	return r.fragment("grid", BuildGrid(c, r.rule, r.limit))
}

func (r *Renderer) Footer(c *domain.Catalog) (template.HTML, error) {
	return r.fragment("footer", BuildFooter(c, r.rule))
}

func (r *Renderer) Header(c *domain.Catalog) (template.HTML, error) {
	return r.fragment("header", BuildHeaderMenu(c, r.rule))
}

// Detail renders the overlay of p. ok is false when p is hidden.
func (r *Renderer) Detail(p domain.Product, canonicalBase string) (html template.HTML, ok bool, err error) {
	detail := BuildDetail(p, r.rule, canonicalBase)
	if detail == nil {
		return "", false, nil
	}
	html, err = r.fragment("detail", detail)
	return html, err == nil, err
}

func (r *Renderer) ErrorPanel(loadErr error) (template.HTML, error) {
	return r.fragment("error", BuildErrorPanel(loadErr))
}

// Opening asks the page script to scroll to Anchor and then reveal the overlay that
// was rendered for Article.
type Opening struct {
	Article       string
	Anchor        string
	ScrollDelayMs int64
	OpenDelayMs   int64
}

// Page is the view model of the whole catalog page. Error replaces the grid when set.
type Page struct {
	Title    string
	Header   template.HTML
	Grid     template.HTML
	Footer   template.HTML
	Error    template.HTML
	Detail   template.HTML
	Open     *Opening
	CopiedMs int
}

func (r *Renderer) Page(w io.Writer, page Page) error {
	if page.Title == "" {
		page.Title = "Каталог продукции"
	}
	if page.CopiedMs == 0 {
		page.CopiedMs = r.copiedMs
	}
	if err := r.tmpl.ExecuteTemplate(w, "page", page); err != nil {
		return &domain.RenderError{Step: "page", Err: err}
	}
	return nil
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", &domain.RenderError{Step: name, Err: err}
	}
	return template.HTML(buf.String()), nil
}

// Fragments are the load-time surfaces of the page.
type Fragments struct {
	Grid   template.HTML
	Footer template.HTML
	Header template.HTML
}

// Surfaces keeps the fragments rendered once when the catalog loads.
type Surfaces struct {
	mu        sync.RWMutex
	fragments Fragments
}

// Attach registers the grid, footer and header renders as load hooks of store, in
// that order. A failing render leaves its own fragment empty and nothing else.
func (s *Surfaces) Attach(store *catalog.Store, r *Renderer) {
	store.OnLoad("grid", s.hook(r.Grid, func(f *Fragments, html template.HTML) { f.Grid = html }))
	store.OnLoad("footer", s.hook(r.Footer, func(f *Fragments, html template.HTML) { f.Footer = html }))
	store.OnLoad("header", s.hook(r.Header, func(f *Fragments, html template.HTML) { f.Header = html }))
}

func (s *Surfaces) hook(
	render func(*domain.Catalog) (template.HTML, error),
	assign func(*Fragments, template.HTML),
) func(*domain.Catalog) error {
	return func(c *domain.Catalog) error {
		html, err := render(c)
		if err != nil {
			return err
		}
		s.mu.Lock()
		assign(&s.fragments, html)
		s.mu.Unlock()
		return nil
	}
}

func (s *Surfaces) Fragments() Fragments {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fragments
}
