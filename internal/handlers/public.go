// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"exploracms/internal/cache"
	"exploracms/internal/captcha"
	"exploracms/internal/middleware"
	"exploracms/internal/models"
	"exploracms/internal/render"
	"exploracms/internal/store"
)

const (
	homePerPage    = 6
	listingPerPage = 12
)

// Public serves the visitor-facing pages.
type Public struct {
	renderer     *render.Renderer
	destinations *store.DestinationStore
	categories   *store.CategoryStore
	comments     *store.CommentStore
	captcha      *captcha.Service
	pages        *cache.PageCache
	siteURL      string
}

// NewPublic creates the public handler group.
func NewPublic(
	renderer *render.Renderer,
	destinations *store.DestinationStore,
	categories *store.CategoryStore,
	comments *store.CommentStore,
	captchaSvc *captcha.Service,
	pages *cache.PageCache,
	siteURL string,
) *Public {
	return &Public{
		renderer:     renderer,
		destinations: destinations,
		categories:   categories,
		comments:     comments,
		captcha:      captchaSvc,
		pages:        pages,
		siteURL:      strings.TrimRight(siteURL, "/"),
	}
}

// cacheable reports whether the response for this request may be served
// from and stored in the page cache. Logged-in visitors get live pages,
// since the layout renders their session.
func (h *Public) cacheable(r *http.Request) bool {
	return middleware.SessionFromCtx(r.Context()) == nil && len(r.URL.Query()) == 0
}

// Home renders the homepage: newest destinations, six per page.
func (h *Public) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	useCache := h.cacheable(r)
	if useCache {
		if html, ok := h.pages.Get(ctx, cache.HomepageKey()); ok {
			writeHTML(w, html)
			return
		}
	}

	q := r.URL.Query()
	var categoryID *uuid.UUID
	if raw := q.Get("category"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			categoryID = &id
		}
	}

	page := parsePage(r)
	items, total, err := h.destinations.Search(store.DestinationFilter{
		Search:     strings.TrimSpace(q.Get("search")),
		CategoryID: categoryID,
		OrderByNew: true,
		Page:       page,
		PerPage:    homePerPage,
	})
	if err != nil {
		slog.Error("homepage query failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	html, err := h.renderer.PageHTML(r, "home", &render.PageData{
		Title:   "Home",
		Section: "home",
		Data: map[string]any{
			"Destinations": items,
			"Page":         page,
			"TotalPages":   pageCount(total, homePerPage),
		},
	})
	if err != nil {
		slog.Error("homepage render failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if useCache {
		h.pages.Set(ctx, cache.HomepageKey(), html)
	}
	writeHTML(w, html)
}

// Destinations renders the browsable listing with search and category
// filters. Filtered views always hit the database.
func (h *Public) Destinations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	page := parsePage(r)

	var categoryID *uuid.UUID
	if raw := q.Get("category"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			categoryID = &id
		}
	}

	items, total, err := h.destinations.Search(store.DestinationFilter{
		Search:     search,
		CategoryID: categoryID,
		Page:       page,
		PerPage:    listingPerPage,
	})
	if err != nil {
		slog.Error("destination listing failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	cats, err := h.categories.List()
	if err != nil {
		slog.Error("category listing failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	h.renderer.Page(w, r, "destinations", &render.PageData{
		Title:   "Destinations",
		Section: "destinations",
		Data: map[string]any{
			"Destinations": items,
			"Categories":   cats,
			"Total":        total,
			"Search":       search,
			"CategoryID":   categoryID,
			"Page":         page,
			"TotalPages":   pageCount(total, listingPerPage),
			"Query":        filterQuery(r, "search", "category"),
		},
	})
}

// Categories renders the category index with destination counts.
func (h *Public) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	useCache := h.cacheable(r)
	if useCache {
		if html, ok := h.pages.Get(ctx, cache.CategoriesKey()); ok {
			writeHTML(w, html)
			return
		}
	}

	cats, err := h.categories.List()
	if err != nil {
		slog.Error("category listing failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	html, err := h.renderer.PageHTML(r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    map[string]any{"Categories": cats},
	})
	if err != nil {
		slog.Error("categories render failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if useCache {
		h.pages.Set(ctx, cache.CategoriesKey(), html)
	}
	writeHTML(w, html)
}

// DestinationDetail renders a single destination with its approved
// comments and a fresh captcha challenge. Never cached: every render
// issues a new challenge.
func (h *Public) DestinationDetail(w http.ResponseWriter, r *http.Request) {
	dest, ok := h.findBySlug(w, r)
	if !ok {
		return
	}

	var flashes []render.Flash
	if r.URL.Query().Get("commented") == "1" {
		flashes = flash("success", "Thanks! Your comment will appear once it has been reviewed.")
	}

	h.renderDetail(w, r, dest, flashes, nil)
}

// SubmitComment accepts a visitor comment. The captcha is checked before
// the field validation and only consumed once the comment is accepted, so
// a typo in the form does not burn the challenge but a token never
// validates twice.
func (h *Public) SubmitComment(w http.ResponseWriter, r *http.Request) {
	dest, ok := h.findBySlug(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("user_name"))
	email := strings.TrimSpace(r.PostFormValue("user_email"))
	body := strings.TrimSpace(r.PostFormValue("comment_text"))
	token := r.PostFormValue("captcha_session")
	answer := r.PostFormValue("captcha")

	// Submitted values survive a failed attempt; a fresh challenge is
	// issued on every re-render.
	form := map[string]string{"Name": name, "Email": email, "Body": body}

	ok, err := h.captcha.Verify(token, answer)
	if err != nil {
		slog.Error("captcha check failed", "error", err)
		h.renderDetail(w, r, dest, flash("error", "Something went wrong. Please try again."), form)
		return
	}
	if !ok {
		// Wrong answer, unknown token and expired token all read the same.
		h.renderDetail(w, r, dest,
			flash("error", "The captcha answer was wrong or has expired. Please try again."), form)
		return
	}

	if errs := validateCommentForm(name, email, body); len(errs) > 0 {
		h.renderDetail(w, r, dest, errorFlashes(errs), form)
		return
	}

	if ok, err := h.captcha.Consume(token, answer); err != nil || !ok {
		// Lost a race to another submit with the same token, or the token
		// expired between check and consume.
		if err != nil {
			slog.Error("captcha consume failed", "error", err)
		}
		h.renderDetail(w, r, dest,
			flash("error", "The captcha answer was wrong or has expired. Please try again."), form)
		return
	}

	comment := &models.Comment{
		DestinationID: dest.ID,
		UserName:      name,
		CommentText:   body,
	}
	if email != "" {
		comment.UserEmail = &email
	}
	if _, err := h.comments.Create(comment); err != nil {
		slog.Error("comment create failed", "error", err)
		h.renderDetail(w, r, dest, flash("error", "Something went wrong. Please try again."), form)
		return
	}

	slog.Info("comment submitted", "destination", dest.Slug, "author", name)
	http.Redirect(w, r, "/destinations/"+dest.Slug+"?commented=1", http.StatusSeeOther)
}

// QRCode serves a PNG QR code pointing at the destination's public URL.
func (h *Public) QRCode(w http.ResponseWriter, r *http.Request) {
	dest, ok := h.findBySlug(w, r)
	if !ok {
		return
	}

	png, err := qrcode.Encode(h.siteURL+"/destinations/"+dest.Slug, qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "slug", dest.Slug, "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}

// findBySlug resolves the {slug} route parameter, redirecting to the
// listing when no destination matches.
func (h *Public) findBySlug(w http.ResponseWriter, r *http.Request) (*models.Destination, bool) {
	slug := chi.URLParam(r, "slug")
	dest, err := h.destinations.FindBySlug(slug)
	if err != nil {
		slog.Error("destination lookup failed", "slug", slug, "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return nil, false
	}
	if dest == nil {
		http.Redirect(w, r, "/destinations", http.StatusSeeOther)
		return nil, false
	}
	return dest, true
}

func (h *Public) renderDetail(w http.ResponseWriter, r *http.Request, dest *models.Destination, flashes []render.Flash, form map[string]string) {
	// Expired challenges are swept on the page that issues them.
	if _, err := h.captcha.SweepExpired(); err != nil {
		slog.Warn("captcha sweep failed", "error", err)
	}

	approved, err := h.comments.ListApprovedForDestination(dest.ID)
	if err != nil {
		slog.Error("comment listing failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	challenge, err := h.captcha.Issue()
	if err != nil {
		slog.Error("captcha issue failed", "error", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	if form == nil {
		form = map[string]string{}
	}
	h.renderer.Page(w, r, "destination", &render.PageData{
		Title:   dest.Name,
		Section: "destinations",
		Flashes: flashes,
		Data: map[string]any{
			"Destination": dest,
			"Comments":    approved,
			"Captcha":     challenge,
			"Form":        form,
		},
	})
}

func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
