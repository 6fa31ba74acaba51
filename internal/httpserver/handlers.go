package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"stonetech/catalog/internal/deeplink"
	"stonetech/catalog/internal/render"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

type handlers struct {
	store     CatalogWaiter
	renderer  *render.Renderer
	surfaces  *render.Surfaces
	resolver  *deeplink.Resolver
	publicURL string
}

// page serves the catalog. A failed load replaces the grid with the error panel and
// nothing else is rendered.
func (h *handlers) page(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, err := h.store.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			http.Error(w, "catalog is not loaded yet", http.StatusServiceUnavailable)
			return
		}

		panel, perr := h.renderer.ErrorPanel(err)
		if perr != nil {
			log.Errorf("❌ %v", perr)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		h.writePage(w, http.StatusServiceUnavailable, render.Page{Error: panel})
		return
	}

	fragments := h.surfaces.Fragments()
	page := render.Page{
		Header: fragments.Header,
		Grid:   fragments.Grid,
		Footer: fragments.Footer,
	}

	if target := r.URL.Query().Get("product"); target != "" {
		if m := h.resolver.Resolve(ctx, target); m != nil {
			detail, ok, err := h.renderer.Detail(m.Product, h.canonicalBase(r))
			switch {
			case err != nil:
				log.Errorf("❌ %v", err)
			case ok:
				page.Detail = detail
				page.Open = &render.Opening{
					Article:       m.Article.Raw,
					Anchor:        m.Anchor,
					ScrollDelayMs: m.ScrollDelay.Milliseconds(),
					OpenDelayMs:   m.OpenDelay.Milliseconds(),
				}
			}
		}
	}

	h.writePage(w, http.StatusOK, page)
}

func (h *handlers) writePage(w http.ResponseWriter, status int, page render.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, page); err != nil {
		log.Errorf("❌ %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

// product serves the overlay fragment for a deep-linked article, as used on history
// navigation and footer links.
func (h *handlers) product(w http.ResponseWriter, r *http.Request) {
	h.writeDetail(w, r, h.resolver.Resolve(r.Context(), chi.URLParam(r, "article")))
}

// productByID serves the overlay fragment of a clicked card. Cards carry the product
// id because several products may share an article.
func (h *handlers) productByID(w http.ResponseWriter, r *http.Request) {
	categoryID := pathParam(r, "category")
	productID := pathParam(r, "id")
	h.writeDetail(w, r, h.resolver.ResolveProduct(r.Context(), categoryID, productID))
}

func (h *handlers) writeDetail(w http.ResponseWriter, r *http.Request, m *deeplink.Match) {
	if m == nil {
		http.NotFound(w, r)
		return
	}

	detail, ok, err := h.renderer.Detail(m.Product, h.canonicalBase(r))
	if err != nil {
		log.Errorf("❌ %v", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeHTML(w, http.StatusOK, []byte(detail))
}

func (h *handlers) catalogJSON(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.store.Wait(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if value, err := url.PathUnescape(raw); err == nil {
		return value
	}
	return raw
}

// canonicalBase is the page URL copied deep links are built on.
func (h *handlers) canonicalBase(r *http.Request) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/"
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		log.Errorf("❌ Failed to encode response: %v", err)
	}
}
