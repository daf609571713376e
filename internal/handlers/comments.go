package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"exploracms/internal/render"
	"exploracms/internal/store"
)

const commentsPerPage = 20

// CommentsList renders the moderation queue with status and destination
// filters. Orphaned comments (destination since deleted) stay listed.
func (h *Admin) CommentsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := store.ParseCommentStatus(q.Get("status"))
	page := parsePage(r)

	var destinationID *uuid.UUID
	if raw := q.Get("destination"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			destinationID = &id
		}
	}

	items, total, err := h.comments.List(store.CommentFilter{
		Status:        status,
		DestinationID: destinationID,
		Page:          page,
		PerPage:       commentsPerPage,
	})
	if err != nil {
		h.serverError(w, "comment listing", err)
		return
	}

	names, err := h.destinations.ListNames()
	if err != nil {
		h.serverError(w, "destination names", err)
		return
	}

	var flashes []render.Flash
	switch {
	case q.Get("approved") != "":
		flashes = flash("success", fmt.Sprintf("%s comment(s) approved.", q.Get("approved")))
	case q.Get("rejected") != "":
		flashes = flash("success", fmt.Sprintf("%s comment(s) rejected.", q.Get("rejected")))
	case q.Get("removed") != "":
		flashes = flash("success", fmt.Sprintf("%s comment(s) deleted.", q.Get("removed")))
	}

	h.renderer.Page(w, r, "admin_comments", &render.PageData{
		Title:   "Comments",
		Section: "comments",
		Flashes: flashes,
		Data: map[string]any{
			"Comments":      items,
			"Destinations":  names,
			"Total":         total,
			"Status":        string(status),
			"DestinationID": destinationID,
			"Page":          page,
			"TotalPages":    pageCount(total, commentsPerPage),
			"Query":         filterQuery(r, "status", "destination"),
		},
	})
}

// CommentsAction handles every moderation mutation on one endpoint. The
// action field picks the operation: approve, reject and delete act on
// comment_id, bulk_action applies bulk_action_type to selected_comments[].
func (h *Admin) CommentsAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch r.PostFormValue("action") {
	case "approve":
		h.moderateOne(w, r, "approved", func(id uuid.UUID) error {
			return h.comments.SetApproval(id, true)
		})
	case "reject":
		h.moderateOne(w, r, "rejected", func(id uuid.UUID) error {
			return h.comments.SetApproval(id, false)
		})
	case "delete":
		h.moderateOne(w, r, "removed", func(id uuid.UUID) error {
			return h.comments.Delete(id)
		})
	case "bulk_action":
		h.moderateBulk(w, r)
	default:
		http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
	}
}

// moderateOne applies op to the comment_id form field. An unparsable or
// missing id redirects back to the listing; the store treats unknown ids
// as no-ops.
func (h *Admin) moderateOne(w http.ResponseWriter, r *http.Request, outcome string, op func(uuid.UUID) error) {
	id, err := uuid.Parse(r.PostFormValue("comment_id"))
	if err != nil {
		http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
		return
	}
	if err := op(id); err != nil {
		h.serverError(w, "comment moderation", err)
		return
	}

	h.pages.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/comments?"+outcome+"=1", http.StatusSeeOther)
}

// moderateBulk applies one action to every selected comment in a single
// statement. IDs that disappeared since the page loaded are skipped; the
// flash reports how many rows actually changed.
func (h *Admin) moderateBulk(w http.ResponseWriter, r *http.Request) {
	var ids []uuid.UUID
	for _, raw := range r.PostForm["selected_comments[]"] {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
		return
	}

	var n int64
	var err error
	var outcome string
	switch r.PostFormValue("bulk_action_type") {
	case "approve":
		n, err = h.comments.BulkSetApproval(ids, true)
		outcome = "approved"
	case "reject":
		n, err = h.comments.BulkSetApproval(ids, false)
		outcome = "rejected"
	case "delete":
		n, err = h.comments.BulkDelete(ids)
		outcome = "removed"
	default:
		http.Redirect(w, r, "/admin/comments", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.serverError(w, "bulk comment action", err)
		return
	}

	if n > 0 {
		h.pages.InvalidateAll(r.Context())
	}
	slog.Info("bulk comment action", "action", outcome, "selected", len(ids), "changed", n)
	http.Redirect(w, r, fmt.Sprintf("/admin/comments?%s=%d", outcome, n), http.StatusSeeOther)
}
