// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"exploracms/internal/middleware"
	"exploracms/internal/models"
	"exploracms/internal/render"
	"exploracms/internal/session"
	"exploracms/internal/store"
)

// Auth handles login, registration, and logout.
type Auth struct {
	renderer *render.Renderer
	sessions *session.Store
	users    *store.UserStore
}

// NewAuth creates the authentication handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, users *store.UserStore) *Auth {
	return &Auth{renderer: renderer, sessions: sessions, users: users}
}

// LoginPage renders the login form. Already-authenticated visitors are
// sent straight to the admin dashboard.
func (h *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	var flashes []render.Flash
	if r.URL.Query().Get("registered") == "1" {
		flashes = flash("success", "Account created. You can sign in now.")
	}
	h.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Login",
		Flashes: flashes,
		Data:    map[string]any{"Username": ""},
	})
}

// LoginSubmit authenticates the posted credentials and opens a session.
func (h *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.users.FindByUsername(username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		h.loginError(w, r, username, "Something went wrong. Please try again.")
		return
	}
	// Run the same error path for unknown users and wrong passwords so the
	// response does not reveal which usernames exist.
	if user == nil || !h.users.CheckPassword(user, password) {
		slog.Warn("failed login attempt", "username", username, "remote", r.RemoteAddr)
		h.loginError(w, r, username, "Invalid username or password.")
		return
	}

	if err := h.users.TouchLastLogin(user.ID); err != nil {
		slog.Error("touch last login", "error", err)
	}

	_, err = h.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		h.loginError(w, r, username, "Something went wrong. Please try again.")
		return
	}

	slog.Info("user logged in", "username", user.Username, "role", user.Role)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Auth) loginError(w http.ResponseWriter, r *http.Request, username, message string) {
	h.renderer.Page(w, r, "login", &render.PageData{
		Title:   "Login",
		Flashes: flash("error", message),
		Data:    map[string]any{"Username": username},
	})
}

// RegisterPage renders the self-registration form.
func (h *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}
	h.renderer.Page(w, r, "register", &render.PageData{
		Title: "Register",
		Data:  map[string]any{"Username": "", "Email": ""},
	})
}

// RegisterSubmit creates an editor account. New accounts never get the
// admin role; an existing admin has to promote them.
func (h *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	if errs := validateRegisterForm(username, email, password, confirm); len(errs) > 0 {
		h.registerError(w, r, username, email, errs)
		return
	}

	taken, err := h.users.UsernameOrEmailTaken(username, email, uuid.Nil)
	if err != nil {
		slog.Error("registration check failed", "error", err)
		h.registerError(w, r, username, email, []string{"Something went wrong. Please try again."})
		return
	}
	if taken {
		h.registerError(w, r, username, email, []string{"That username or email is already in use."})
		return
	}

	user, err := h.users.Create(username, email, password, models.RoleEditor)
	if err != nil {
		slog.Error("registration failed", "error", err)
		h.registerError(w, r, username, email, []string{"Something went wrong. Please try again."})
		return
	}

	slog.Info("user registered", "username", user.Username)
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

func (h *Auth) registerError(w http.ResponseWriter, r *http.Request, username, email string, messages []string) {
	h.renderer.Page(w, r, "register", &render.PageData{
		Title:   "Register",
		Flashes: errorFlashes(messages),
		Data:    map[string]any{"Username": username, "Email": email},
	})
}

// Logout destroys the session and returns to the public site.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
