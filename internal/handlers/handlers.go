// Package handlers contains the HTTP handler groups for the public site,
// authentication, and the admin interface. Handlers parse and validate
// request input, call into the stores, and render pages or redirect.
package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"exploracms/internal/render"
)

// parsePage reads the 1-based page query parameter, defaulting to 1.
func parsePage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pageCount returns how many pages are needed for total items at perPage
// each. An empty result set still renders one page.
func pageCount(total, perPage int) int {
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// idParam parses the {id} route parameter as a UUID.
func idParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// filterQuery rebuilds the non-page query parameters as a "&k=v..." suffix
// so pagination links preserve active filters.
func filterQuery(r *http.Request, keys ...string) string {
	q := r.URL.Query()
	out := ""
	for _, k := range keys {
		if v := q.Get(k); v != "" {
			out += "&" + k + "=" + url.QueryEscape(v)
		}
	}
	return out
}

// flash builds a single-element flash list, which is what nearly every
// page needs.
func flash(kind, message string) []render.Flash {
	return []render.Flash{{Type: kind, Message: message}}
}
