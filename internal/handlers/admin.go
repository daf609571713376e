// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"exploracms/internal/cache"
	"exploracms/internal/middleware"
	"exploracms/internal/models"
	"exploracms/internal/render"
	"exploracms/internal/slug"
	"exploracms/internal/store"
	"exploracms/internal/upload"
)

const dashboardRecent = 5

// Admin serves the authenticated admin interface: dashboard, destination
// and category management, comment moderation, and user administration.
type Admin struct {
	renderer     *render.Renderer
	destinations *store.DestinationStore
	categories   *store.CategoryStore
	comments     *store.CommentStore
	users        *store.UserStore
	uploads      *upload.Saver
	pages        *cache.PageCache
}

// NewAdmin creates the admin handler group.
func NewAdmin(
	renderer *render.Renderer,
	destinations *store.DestinationStore,
	categories *store.CategoryStore,
	comments *store.CommentStore,
	users *store.UserStore,
	uploads *upload.Saver,
	pages *cache.PageCache,
) *Admin {
	return &Admin{
		renderer:     renderer,
		destinations: destinations,
		categories:   categories,
		comments:     comments,
		users:        users,
		uploads:      uploads,
		pages:        pages,
	}
}

// Dashboard renders the admin landing page with content counts and the
// newest destinations and comments.
func (h *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	destCount, err := h.destinations.Count()
	if err != nil {
		h.serverError(w, "dashboard destination count", err)
		return
	}
	cats, err := h.categories.List()
	if err != nil {
		h.serverError(w, "dashboard categories", err)
		return
	}
	stats, err := h.comments.Stats()
	if err != nil {
		h.serverError(w, "dashboard comment stats", err)
		return
	}
	recentDests, err := h.destinations.ListRecent(dashboardRecent)
	if err != nil {
		h.serverError(w, "dashboard recent destinations", err)
		return
	}
	recentComments, err := h.comments.ListRecent(dashboardRecent)
	if err != nil {
		h.serverError(w, "dashboard recent comments", err)
		return
	}

	h.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"DestinationCount":   destCount,
			"CategoryCount":      len(cats),
			"CommentStats":       stats,
			"RecentDestinations": recentDests,
			"RecentComments":     recentComments,
		},
	})
}

// --- Destinations ---

// DestinationsList renders the destination management table.
func (h *Admin) DestinationsList(w http.ResponseWriter, r *http.Request) {
	items, err := h.destinations.ListAll()
	if err != nil {
		h.serverError(w, "admin destination listing", err)
		return
	}

	var flashes []render.Flash
	switch {
	case r.URL.Query().Get("saved") == "1":
		flashes = flash("success", "Destination saved.")
	case r.URL.Query().Get("deleted") == "1":
		flashes = flash("success", "Destination deleted. Its comments remain in moderation.")
	}

	h.renderer.Page(w, r, "admin_destinations", &render.PageData{
		Title:   "Destinations",
		Section: "destinations",
		Flashes: flashes,
		Data:    map[string]any{"Destinations": items},
	})
}

// DestinationNewForm renders the create form.
func (h *Admin) DestinationNewForm(w http.ResponseWriter, r *http.Request) {
	h.destinationForm(w, r, nil, "/admin/destinations", nil)
}

// DestinationEditForm renders the edit form for one destination.
func (h *Admin) DestinationEditForm(w http.ResponseWriter, r *http.Request) {
	dest, ok := h.findDestination(w, r)
	if !ok {
		return
	}
	h.destinationForm(w, r, dest, fmt.Sprintf("/admin/destinations/%s/update", dest.ID), nil)
}

func (h *Admin) destinationForm(w http.ResponseWriter, r *http.Request, dest *models.Destination, action string, flashes []render.Flash) {
	cats, err := h.categories.List()
	if err != nil {
		h.serverError(w, "destination form categories", err)
		return
	}
	title := "Add destination"
	if dest != nil {
		title = "Edit destination"
	}
	h.renderer.Page(w, r, "admin_destination_form", &render.PageData{
		Title:   title,
		Section: "destinations",
		Flashes: flashes,
		Data: map[string]any{
			"Destination": dest,
			"Categories":  cats,
			"FormAction":  action,
		},
	})
}

// DestinationCreate handles the multipart create form.
func (h *Admin) DestinationCreate(w http.ResponseWriter, r *http.Request) {
	form, errs := h.parseDestinationForm(r)
	if len(errs) > 0 {
		h.destinationForm(w, r, nil, "/admin/destinations", errorFlashes(errs))
		return
	}

	dest := &models.Destination{
		Name:        form.name,
		Slug:        h.uniqueSlug(form.name, uuid.Nil),
		Description: form.description,
		Region:      form.region,
		CategoryID:  form.categoryID,
		ImagePath:   form.imageName,
	}
	created, err := h.destinations.Create(dest)
	if err != nil {
		h.serverError(w, "destination create", err)
		return
	}

	h.pages.InvalidateAll(r.Context())
	slog.Info("destination created", "slug", created.Slug)
	http.Redirect(w, r, "/admin/destinations?saved=1", http.StatusSeeOther)
}

// DestinationUpdate handles the multipart edit form. Uploading a new
// image replaces and removes the old file.
func (h *Admin) DestinationUpdate(w http.ResponseWriter, r *http.Request) {
	dest, ok := h.findDestination(w, r)
	if !ok {
		return
	}
	action := fmt.Sprintf("/admin/destinations/%s/update", dest.ID)

	form, errs := h.parseDestinationForm(r)
	if len(errs) > 0 {
		h.destinationForm(w, r, dest, action, errorFlashes(errs))
		return
	}

	// Regenerate the slug only when the name changed, so existing links
	// keep working across description edits.
	if form.name != dest.Name {
		dest.Slug = h.uniqueSlug(form.name, dest.ID)
	}

	oldImage := dest.ImagePath
	dest.Name = form.name
	dest.Description = form.description
	dest.Region = form.region
	dest.CategoryID = form.categoryID
	if form.imageName != nil {
		dest.ImagePath = form.imageName
	}

	if err := h.destinations.Update(dest); err != nil {
		h.serverError(w, "destination update", err)
		return
	}
	if form.imageName != nil && oldImage != nil {
		if err := h.uploads.Remove(*oldImage); err != nil {
			slog.Warn("old image removal failed", "name", *oldImage, "error", err)
		}
	}

	h.pages.InvalidateAll(r.Context())
	slog.Info("destination updated", "slug", dest.Slug)
	http.Redirect(w, r, "/admin/destinations?saved=1", http.StatusSeeOther)
}

// DestinationDelete removes a destination and its uploaded image.
// Comments referencing it survive and show as orphaned in moderation.
func (h *Admin) DestinationDelete(w http.ResponseWriter, r *http.Request) {
	dest, ok := h.findDestination(w, r)
	if !ok {
		return
	}

	if err := h.destinations.Delete(dest.ID); err != nil {
		h.serverError(w, "destination delete", err)
		return
	}
	if dest.ImagePath != nil {
		if err := h.uploads.Remove(*dest.ImagePath); err != nil {
			slog.Warn("image removal failed", "name", *dest.ImagePath, "error", err)
		}
	}

	h.pages.InvalidateAll(r.Context())
	slog.Info("destination deleted", "slug", dest.Slug)
	http.Redirect(w, r, "/admin/destinations?deleted=1", http.StatusSeeOther)
}

// destinationFormData carries the parsed multipart destination form.
type destinationFormData struct {
	name        string
	region      string
	description string
	categoryID  *uuid.UUID
	imageName   *string // nil when no new image was uploaded
}

// parseDestinationForm reads and validates the multipart form, saving the
// uploaded image when one is present.
func (h *Admin) parseDestinationForm(r *http.Request) (*destinationFormData, []string) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, []string{"The form could not be read. The image may be too large."}
	}

	form := &destinationFormData{
		name:        strings.TrimSpace(r.PostFormValue("name")),
		region:      strings.TrimSpace(r.PostFormValue("region")),
		description: strings.TrimSpace(r.PostFormValue("description")),
	}
	errs := validateDestinationForm(form.name, form.region, form.description)

	if raw := r.PostFormValue("category_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			form.categoryID = &id
		}
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == http.ErrMissingFile:
		// No new image.
	case err != nil:
		errs = append(errs, "The image upload could not be read.")
	default:
		defer file.Close()
		name, err := h.uploads.Save(file, header)
		switch {
		case errors.Is(err, upload.ErrTooLarge), errors.Is(err, upload.ErrBadType):
			errs = append(errs, err.Error())
		case err != nil:
			slog.Error("image save failed", "error", err)
			errs = append(errs, "The image could not be saved.")
		default:
			form.imageName = &name
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return form, nil
}

// uniqueSlug generates a slug for name, appending a numeric suffix while
// another destination already holds it.
func (h *Admin) uniqueSlug(name string, self uuid.UUID) string {
	base := slug.Generate(name)
	candidate := base
	for i := 2; ; i++ {
		existing, err := h.destinations.FindBySlug(candidate)
		if err != nil {
			slog.Error("slug uniqueness check failed", "error", err)
			return candidate
		}
		if existing == nil || existing.ID == self {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// findDestination resolves the {id} route parameter. Bad and unknown ids
// send the admin back to the listing.
func (h *Admin) findDestination(w http.ResponseWriter, r *http.Request) (*models.Destination, bool) {
	id, err := idParam(r)
	if err != nil {
		http.Redirect(w, r, "/admin/destinations", http.StatusSeeOther)
		return nil, false
	}
	dest, err := h.destinations.FindByID(id)
	if err != nil {
		h.serverError(w, "destination lookup", err)
		return nil, false
	}
	if dest == nil {
		http.Redirect(w, r, "/admin/destinations", http.StatusSeeOther)
		return nil, false
	}
	return dest, true
}

// --- Categories ---

// CategoriesList renders category management with inline rename forms.
func (h *Admin) CategoriesList(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List()
	if err != nil {
		h.serverError(w, "admin category listing", err)
		return
	}

	q := r.URL.Query()
	var flashes []render.Flash
	switch {
	case q.Get("created") == "1":
		flashes = flash("success", "Category created.")
	case q.Get("renamed") == "1":
		flashes = flash("success", "Category renamed.")
	case q.Get("deleted") == "1":
		flashes = flash("success", "Category deleted.")
	case q.Get("err") == "in_use":
		flashes = flash("error", fmt.Sprintf(
			"Cannot delete: %s destination(s) still use this category. Reassign them first.", q.Get("count")))
	case q.Get("err") == "name_taken":
		flashes = flash("error", "A category with that name already exists.")
	case q.Get("err") == "name_required":
		flashes = flash("error", "Category name is required.")
	}

	h.renderer.Page(w, r, "admin_categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Flashes: flashes,
		Data:    map[string]any{"Categories": cats},
	})
}

// CategoryCreate adds a category from the inline form.
func (h *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/admin/categories?err=name_required", http.StatusSeeOther)
		return
	}

	taken, err := h.categories.NameTaken(name, uuid.Nil)
	if err != nil {
		h.serverError(w, "category name check", err)
		return
	}
	if taken {
		http.Redirect(w, r, "/admin/categories?err=name_taken", http.StatusSeeOther)
		return
	}

	if _, err := h.categories.Create(name); err != nil {
		h.serverError(w, "category create", err)
		return
	}

	h.pages.InvalidateAll(r.Context())
	slog.Info("category created", "name", name)
	http.Redirect(w, r, "/admin/categories?created=1", http.StatusSeeOther)
}

// CategoryUpdate renames a category.
func (h *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		http.Redirect(w, r, "/admin/categories?err=name_required", http.StatusSeeOther)
		return
	}

	taken, err := h.categories.NameTaken(name, id)
	if err != nil {
		h.serverError(w, "category name check", err)
		return
	}
	if taken {
		http.Redirect(w, r, "/admin/categories?err=name_taken", http.StatusSeeOther)
		return
	}

	if err := h.categories.Update(id, name); err != nil {
		h.serverError(w, "category update", err)
		return
	}

	h.pages.InvalidateAll(r.Context())
	http.Redirect(w, r, "/admin/categories?renamed=1", http.StatusSeeOther)
}

// CategoryDelete removes a category, refusing while destinations still
// reference it.
func (h *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
		return
	}

	if err := h.categories.Delete(id); err != nil {
		var inUse *store.ErrCategoryInUse
		if errors.As(err, &inUse) {
			http.Redirect(w, r,
				fmt.Sprintf("/admin/categories?err=in_use&count=%d", inUse.Count),
				http.StatusSeeOther)
			return
		}
		h.serverError(w, "category delete", err)
		return
	}

	h.pages.InvalidateAll(r.Context())
	slog.Info("category deleted", "id", id)
	http.Redirect(w, r, "/admin/categories?deleted=1", http.StatusSeeOther)
}

// --- Users ---

const usersPerPage = 20

// UsersList renders user administration with search and role filters.
func (h *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	role := q.Get("role")
	page := parsePage(r)

	users, total, err := h.users.List(store.UserFilter{
		Search:  search,
		Role:    models.Role(role),
		Page:    page,
		PerPage: usersPerPage,
	})
	if err != nil {
		h.serverError(w, "user listing", err)
		return
	}

	var flashes []render.Flash
	switch {
	case q.Get("saved") == "1":
		flashes = flash("success", "User saved.")
	case q.Get("deleted") == "1":
		flashes = flash("success", "User deleted.")
	case q.Get("err") == "self":
		flashes = flash("error", "You cannot delete your own account.")
	case q.Get("err") == "has_comments":
		flashes = flash("error", "This user has comments on the site and cannot be deleted.")
	}

	h.renderer.Page(w, r, "admin_users", &render.PageData{
		Title:   "Users",
		Section: "users",
		Flashes: flashes,
		Data: map[string]any{
			"Users":      users,
			"Search":     search,
			"Role":       role,
			"Page":       page,
			"TotalPages": pageCount(total, usersPerPage),
			"Query":      filterQuery(r, "search", "role"),
		},
	})
}

// UserNewForm renders the create form.
func (h *Admin) UserNewForm(w http.ResponseWriter, r *http.Request) {
	h.userForm(w, r, nil, "/admin/users", nil)
}

// UserEditForm renders the edit form for one user.
func (h *Admin) UserEditForm(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}
	h.userForm(w, r, user, fmt.Sprintf("/admin/users/%s/update", user.ID), nil)
}

func (h *Admin) userForm(w http.ResponseWriter, r *http.Request, user *models.User, action string, flashes []render.Flash) {
	title := "Add user"
	if user != nil {
		title = "Edit user"
	}
	h.renderer.Page(w, r, "admin_user_form", &render.PageData{
		Title:   title,
		Section: "users",
		Flashes: flashes,
		Data: map[string]any{
			"User":       user,
			"FormAction": action,
		},
	})
}

// UserCreate adds an account from the admin form.
func (h *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	role := r.PostFormValue("role")
	password := r.PostFormValue("password")

	if errs := validateUserForm(username, email, role, password, true); len(errs) > 0 {
		h.userForm(w, r, nil, "/admin/users", errorFlashes(errs))
		return
	}

	taken, err := h.users.UsernameOrEmailTaken(username, email, uuid.Nil)
	if err != nil {
		h.serverError(w, "user uniqueness check", err)
		return
	}
	if taken {
		h.userForm(w, r, nil, "/admin/users",
			flash("error", "That username or email is already in use."))
		return
	}

	if _, err := h.users.Create(username, email, password, models.Role(role)); err != nil {
		h.serverError(w, "user create", err)
		return
	}

	slog.Info("user created by admin", "username", username, "role", role)
	http.Redirect(w, r, "/admin/users?saved=1", http.StatusSeeOther)
}

// UserUpdate saves profile changes and optionally a new password.
func (h *Admin) UserUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}
	action := fmt.Sprintf("/admin/users/%s/update", user.ID)

	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	role := r.PostFormValue("role")
	password := r.PostFormValue("password")

	if errs := validateUserForm(username, email, role, password, false); len(errs) > 0 {
		h.userForm(w, r, user, action, errorFlashes(errs))
		return
	}

	taken, err := h.users.UsernameOrEmailTaken(username, email, user.ID)
	if err != nil {
		h.serverError(w, "user uniqueness check", err)
		return
	}
	if taken {
		h.userForm(w, r, user, action,
			flash("error", "That username or email is already in use."))
		return
	}

	if err := h.users.Update(user.ID, username, email, models.Role(role)); err != nil {
		h.serverError(w, "user update", err)
		return
	}
	if password != "" {
		if err := h.users.SetPassword(user.ID, password); err != nil {
			h.serverError(w, "user password update", err)
			return
		}
	}

	slog.Info("user updated", "username", username)
	http.Redirect(w, r, "/admin/users?saved=1", http.StatusSeeOther)
}

// UserDelete removes an account. Deleting yourself is refused, as is
// deleting a user whose email appears on site comments.
func (h *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.findUser(w, r)
	if !ok {
		return
	}

	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.UserID == user.ID {
		http.Redirect(w, r, "/admin/users?err=self", http.StatusSeeOther)
		return
	}

	count, err := h.users.CommentCountByEmail(user.Email)
	if err != nil {
		h.serverError(w, "user comment count", err)
		return
	}
	if count > 0 {
		http.Redirect(w, r, "/admin/users?err=has_comments", http.StatusSeeOther)
		return
	}

	if err := h.users.Delete(user.ID); err != nil {
		h.serverError(w, "user delete", err)
		return
	}

	slog.Info("user deleted", "username", user.Username)
	http.Redirect(w, r, "/admin/users?deleted=1", http.StatusSeeOther)
}

func (h *Admin) findUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := idParam(r)
	if err != nil {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return nil, false
	}
	user, err := h.users.FindByID(id)
	if err != nil {
		h.serverError(w, "user lookup", err)
		return nil, false
	}
	if user == nil {
		http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
		return nil, false
	}
	return user, true
}

// serverError logs the failure and writes a generic 500.
func (h *Admin) serverError(w http.ResponseWriter, what string, err error) {
	slog.Error(what+" failed", "error", err)
	http.Error(w, "server error", http.StatusInternalServerError)
}

// errorFlashes converts validation messages into error flashes.
func errorFlashes(messages []string) []render.Flash {
	flashes := make([]render.Flash, 0, len(messages))
	for _, m := range messages {
		flashes = append(flashes, render.Flash{Type: "error", Message: m})
	}
	return flashes
}
