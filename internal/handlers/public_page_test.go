// public_page_test.go contains handler integration tests for the Public
// handler methods: Home, Destinations, Categories, DestinationDetail,
// SubmitComment, and QRCode. Tests exercise real database and Valkey
// connections; they are skipped when those services are unavailable.
package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"exploracms/internal/cache"
	"exploracms/internal/models"
)

// createDestination inserts a destination fixture and registers cleanup.
func createDestination(t *testing.T, env *testEnv, name, slug string) *models.Destination {
	t.Helper()
	cleanDestinations(t, env.DB, slug)
	dest, err := env.Destinations.Create(&models.Destination{
		Name:        name,
		Slug:        slug,
		Description: "A fixture destination with enough text to read.",
		Region:      "North Central",
	})
	if err != nil {
		t.Fatalf("create destination: %v", err)
	}
	t.Cleanup(func() { cleanDestinations(t, env.DB, slug) })
	return dest
}

// postForm builds a form POST request with the right content type.
func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestDestinationDetail_RendersWithCaptcha(t *testing.T) {
	env := newTestEnv(t)
	dest := createDestination(t, env, "Detail Fixture", "detail-fixture")

	req := httptest.NewRequest(http.MethodGet, "/destinations/"+dest.Slug, nil)
	req = withChiURLParam(req, "slug", dest.Slug)
	rec := httptest.NewRecorder()

	env.Public.DestinationDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, dest.Name) {
		t.Error("expected destination name in detail page")
	}
	// Every render must carry a fresh challenge token for the comment form.
	if !strings.Contains(body, `name="captcha_session"`) {
		t.Error("expected captcha token field in detail page")
	}
}

func TestDestinationDetail_UnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/destinations/no-such-place", nil)
	req = withChiURLParam(req, "slug", "no-such-place")
	rec := httptest.NewRecorder()

	env.Public.DestinationDetail(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/destinations" {
		t.Errorf("Location: got %q, want /destinations", loc)
	}
}

// TestSubmitComment_CaptchaRoundtrip walks the full happy path: issue a
// challenge, answer it, and verify the comment lands in the moderation
// queue unapproved. A replay of the same token must fail.
func TestSubmitComment_CaptchaRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	dest := createDestination(t, env, "Comment Fixture", "comment-fixture")
	cleanComments(t, env.DB, "Roundtrip Author")
	t.Cleanup(func() { cleanComments(t, env.DB, "Roundtrip Author") })

	challenge, err := env.Captcha.Issue()
	if err != nil {
		t.Fatalf("issue captcha: %v", err)
	}

	form := url.Values{}
	form.Set("user_name", "Roundtrip Author")
	form.Set("user_email", "visitor@example.com")
	form.Set("comment_text", "The springs were warm and the baboons were bold.")
	form.Set("captcha_session", challenge.Token)
	form.Set("captcha", challenge.Text)

	req := postForm("/destinations/"+dest.Slug+"/comments", form)
	req = withChiURLParam(req, "slug", dest.Slug)
	rec := httptest.NewRecorder()

	env.Public.SubmitComment(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "commented=1") {
		t.Errorf("Location: got %q, want commented=1 confirmation", loc)
	}

	// The comment exists but is not yet public.
	approved, err := env.Comments.ListApprovedForDestination(dest.ID)
	if err != nil {
		t.Fatalf("list approved: %v", err)
	}
	if len(approved) != 0 {
		t.Error("new comment should not be approved")
	}
	var pending int
	if err := env.DB.QueryRow(
		"SELECT COUNT(*) FROM comments WHERE destination_id = $1 AND is_approved = FALSE",
		dest.ID).Scan(&pending); err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 1 {
		t.Errorf("pending comments: got %d, want 1", pending)
	}

	// The token was consumed; a replay must be rejected.
	req2 := postForm("/destinations/"+dest.Slug+"/comments", form)
	req2 = withChiURLParam(req2, "slug", dest.Slug)
	rec2 := httptest.NewRecorder()

	env.Public.SubmitComment(rec2, req2)

	if rec2.Code != http.StatusOK {
		t.Fatalf("replay status: got %d, want 200 re-render", rec2.Code)
	}
	if !strings.Contains(rec2.Body.String(), "captcha answer was wrong or has expired") {
		t.Error("expected captcha failure message on replayed token")
	}
}

func TestSubmitComment_WrongCaptchaAnswer(t *testing.T) {
	env := newTestEnv(t)
	dest := createDestination(t, env, "Wrong Captcha Fixture", "wrong-captcha-fixture")
	cleanComments(t, env.DB, "Wrong Answer Author")
	t.Cleanup(func() { cleanComments(t, env.DB, "Wrong Answer Author") })

	challenge, err := env.Captcha.Issue()
	if err != nil {
		t.Fatalf("issue captcha: %v", err)
	}

	form := url.Values{}
	form.Set("user_name", "Wrong Answer Author")
	form.Set("comment_text", "This comment should never be stored at all.")
	form.Set("captcha_session", challenge.Token)
	form.Set("captcha", "WRONG")

	req := postForm("/destinations/"+dest.Slug+"/comments", form)
	req = withChiURLParam(req, "slug", dest.Slug)
	rec := httptest.NewRecorder()

	env.Public.SubmitComment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 re-render", rec.Code)
	}

	var count int
	if err := env.DB.QueryRow(
		"SELECT COUNT(*) FROM comments WHERE user_name = $1", "Wrong Answer Author").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Error("comment must not be stored when the captcha fails")
	}
}

func TestSubmitComment_BodyTooShort(t *testing.T) {
	env := newTestEnv(t)
	dest := createDestination(t, env, "Short Body Fixture", "short-body-fixture")

	challenge, err := env.Captcha.Issue()
	if err != nil {
		t.Fatalf("issue captcha: %v", err)
	}

	form := url.Values{}
	form.Set("user_name", "Short Author")
	form.Set("comment_text", "123456789") // nine characters, one under the minimum
	form.Set("captcha_session", challenge.Token)
	form.Set("captcha", challenge.Text)

	req := postForm("/destinations/"+dest.Slug+"/comments", form)
	req = withChiURLParam(req, "slug", dest.Slug)
	rec := httptest.NewRecorder()

	env.Public.SubmitComment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 re-render", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "at least 10 characters") {
		t.Error("expected length validation message")
	}

	// A field failure must not consume the challenge.
	ok, err := env.Captcha.Verify(challenge.Token, challenge.Text)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("captcha should survive a validation failure")
	}
}

func TestQRCode_ServesPNG(t *testing.T) {
	env := newTestEnv(t)
	dest := createDestination(t, env, "QR Fixture", "qr-fixture")

	req := httptest.NewRequest(http.MethodGet, "/destinations/"+dest.Slug+"/qr.png", nil)
	req = withChiURLParam(req, "slug", dest.Slug)
	rec := httptest.NewRecorder()

	env.Public.QRCode(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type: got %q, want image/png", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG magic bytes")
	}
}

func TestHome_CachesAnonymousPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.PageCache.Invalidate(ctx, cache.HomepageKey())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	env.Public.Home(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if _, ok := env.PageCache.Get(ctx, cache.HomepageKey()); !ok {
		t.Error("anonymous homepage should be stored in the page cache")
	}
}

func TestCategories_Renders(t *testing.T) {
	env := newTestEnv(t)
	env.PageCache.Invalidate(context.Background(), cache.CategoriesKey())

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	rec := httptest.NewRecorder()

	env.Public.Categories(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
}
