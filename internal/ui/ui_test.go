package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/bizdir/internal/metrics"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/internal/store"
)

// fakeBackend is a directory API with just enough state for the pages:
// a "token" cookie holding the role, and one claimable business.
type fakeBackend struct {
	mu      sync.Mutex
	calls   []string
	claimed bool
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
}

func (f *fakeBackend) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
	role := func(r *http.Request) string {
		c, err := r.Cookie("token")
		if err != nil {
			return ""
		}
		return c.Value
	}
	ok := func(w http.ResponseWriter, r *http.Request) { writeJSON(w, http.StatusOK, `{}`) }

	mux.HandleFunc("POST /user/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password == "bad" {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid credentials"}`)
			return
		}
		value := "user"
		if strings.HasPrefix(body.Email, "owner") {
			value = "owner"
		}
		http.SetCookie(w, &http.Cookie{Name: "token", Value: value, Path: "/", HttpOnly: true})
		writeJSON(w, http.StatusOK, `{"message":"Logged in"}`)
	})
	mux.HandleFunc("POST /user/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", MaxAge: -1})
		writeJSON(w, http.StatusOK, `{}`)
	})
	mux.HandleFunc("GET /user/me", func(w http.ResponseWriter, r *http.Request) {
		switch role(r) {
		case "owner":
			writeJSON(w, http.StatusOK, `{"user":{"id":"u-owner","name":"Olga","email":"owner@biz.co","role":"owner"}}`)
		case "user":
			writeJSON(w, http.StatusOK, `{"user":{"id":"u-user","name":"Umar","email":"u@x.co","role":"user"}}`)
		default:
			writeJSON(w, http.StatusUnauthorized, `{"message":"Not authenticated"}`)
		}
	})
	mux.HandleFunc("POST /user/signup", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"message":"ok"}`)
	})
	mux.HandleFunc("POST /user/forgot-password", ok)
	mux.HandleFunc("POST /user/verify-otp", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"resetToken":"rt-1"}`)
	})
	mux.HandleFunc("POST /user/update-password", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ ResetToken string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.ResetToken != "rt-1" {
			writeJSON(w, http.StatusBadRequest, `{"message":"Reset token expired"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{}`)
	})

	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[
			{"placeId":"p1","name":"Plain Cafe","address":"1 Main St"},
			{"placeId":"p2","name":"Top Cafe","claimed":true,"owner":"u-owner"}]}`)
	})
	mux.HandleFunc("GET /business/p1", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		claimed := f.claimed
		f.mu.Unlock()
		if claimed {
			writeJSON(w, http.StatusOK, `{"data":{"placeId":"p1","name":"Plain Cafe","claimed":true,"owner":"u-owner"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":{"placeId":"p1","name":"Plain Cafe","address":"1 Main St"}}`)
	})
	mux.HandleFunc("GET /business/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"placeId":"p2","name":"Top Cafe","claimed":true,"owner":"u-owner","phone":"555-0100"}}`)
	})
	for _, kind := range []string{"offer", "announcement"} {
		for _, place := range []string{"p1", "p2"} {
			mux.HandleFunc("GET /content/"+kind+"/"+place, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, `{"data":[]}`)
			})
		}
	}
	mux.HandleFunc("GET /content/item/p1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	})
	mux.HandleFunc("GET /content/item/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"_id":"i1","name":"Latte","price":3.5,"available":true}]}`)
	})
	mux.HandleFunc("GET /content/poll/p1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	})
	mux.HandleFunc("GET /content/poll/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"_id":"q1","placeId":"p2","question":"Best drink?","options":[{"text":"Latte","votes":3},{"text":"Mocha","votes":1}],"voters":[],"isActive":true}]}`)
	})
	mux.HandleFunc("POST /content/poll/vote", ok)
	mux.HandleFunc("POST /content/item", ok)
	mux.HandleFunc("DELETE /content/item/i1", ok)
	mux.HandleFunc("GET /owner/my-businesses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"placeId":"p2","name":"Top Cafe","claimed":true}]}`)
	})
	mux.HandleFunc("POST /owner/claim", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"Code sent"}`)
	})
	mux.HandleFunc("POST /owner/verify-claim", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.claimed = true
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, `{}`)
	})
	mux.HandleFunc("PUT /owner/business/p1", ok)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		mux.ServeHTTP(w, r)
	})
}

type testEnv struct {
	url     string
	backend *fakeBackend
	store   *store.SQLiteStore
	metrics *metrics.Metrics
	ui      *UI
}

func setupUI(t *testing.T, cfg Config) testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))

	fb := &fakeBackend{}
	backend := httptest.NewServer(fb.handler())
	t.Cleanup(backend.Close)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "ui.db"), logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg.BackendURL = backend.URL
	m := metrics.New()
	u := New(st, logger, cfg)
	u.WithMetrics(m)

	r := chi.NewRouter()
	u.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return testEnv{url: srv.URL, backend: fb, store: st, metrics: m, ui: u}
}

// browser keeps cookies and does not follow redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (e testEnv) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{t: t, base: e.url, client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

type page struct {
	status   int
	body     string
	location string
}

func (b *browser) do(method, path string, form url.Values) page {
	b.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, b.base+path, body)
	if err != nil {
		b.t.Fatal(err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return page{status: resp.StatusCode, body: string(raw), location: resp.Header.Get("Location")}
}

func (b *browser) get(path string) page { return b.do(http.MethodGet, path, nil) }

func (b *browser) post(path string, form url.Values) page { return b.do(http.MethodPost, path, form) }

func (b *browser) login(email string) {
	b.t.Helper()
	p := b.post("/login", url.Values{"email": {email}, "password": {"secret1"}})
	if p.status != http.StatusOK || !strings.Contains(p.body, "Login successful") {
		b.t.Fatalf("login %s: status %d", email, p.status)
	}
}

func wantRedirect(t *testing.T, p page, to string) {
	t.Helper()
	if p.status != http.StatusSeeOther || p.location != to {
		t.Errorf("got status %d location %q, want redirect to %q", p.status, p.location, to)
	}
}

func wantBody(t *testing.T, p page, status int, parts ...string) {
	t.Helper()
	if p.status != status {
		t.Errorf("status = %d, want %d", p.status, status)
	}
	for _, s := range parts {
		if !strings.Contains(p.body, s) {
			t.Errorf("body missing %q", s)
		}
	}
}

func TestGuard_AnonymousVisitor(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)

	wantRedirect(t, b.get("/"), "/login")
	wantRedirect(t, b.get("/business/p1"), "/login")
	wantRedirect(t, b.get("/owner"), "/login")
	wantRedirect(t, b.get("/nowhere"), "/")
	wantBody(t, b.get("/signup"), http.StatusOK, "Sign Up", `action="/signup"`)
	wantBody(t, b.get("/signup-owner"), http.StatusOK, "Register Your Business")
	wantBody(t, b.get("/login"), http.StatusOK, "Forgot password?")
}

func TestGuard_UserOnOwnerPages(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("u@x.co")

	wantRedirect(t, b.get("/owner"), "/")
	wantRedirect(t, b.get("/owner/p2/items"), "/")
	wantBody(t, b.get("/"), http.StatusOK, "Find Local Businesses", "Umar")
}

func TestVisitor_CookieIsStable(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.get("/login")

	u, _ := url.Parse(env.url)
	first := b.client.Jar.Cookies(u)
	var id string
	for _, c := range first {
		if c.Name == VisitorCookieName {
			id = c.Value
		}
	}
	if id == "" {
		t.Fatal("no visitor cookie")
	}
	b.get("/login")
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == VisitorCookieName && c.Value != id {
			t.Errorf("visitor changed from %s to %s", id, c.Value)
		}
	}
	v, err := env.store.GetVisitor(context.Background(), id)
	if err != nil || v == nil {
		t.Errorf("visitor not stored: %v", err)
	}
}

func TestLoginLogout(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)

	p := b.post("/login", url.Values{"email": {"owner@biz.co"}, "password": {"secret1"}})
	wantBody(t, p, http.StatusOK, "Login successful! Redirecting...", "url=/owner")

	// The backend session cookie is kept for the visitor.
	wantBody(t, b.get("/owner"), http.StatusOK, "Welcome, Olga", "Top Cafe", "/owner/p2/items")

	wantRedirect(t, b.post("/logout", url.Values{}), "/login")
	wantBody(t, b.get("/login"), http.StatusOK, "You have been logged out.")
	if p := b.get("/login"); strings.Contains(p.body, "You have been logged out.") {
		t.Error("flash banner shown twice")
	}
	wantRedirect(t, b.get("/"), "/login")
}

func TestLogin_Failures(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)

	p := b.post("/login", url.Values{"email": {"nope"}, "password": {"x"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Email is invalid", `value="nope"`)

	p = b.post("/login", url.Values{"email": {"a@b.co"}, "password": {"bad"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Invalid credentials")
	if strings.Contains(p.body, `http-equiv="refresh"`) {
		t.Error("failed login must not navigate")
	}
}

func TestSignup_CarriesEmailToVerification(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)

	wantRedirect(t, b.get("/verify-email"), "/signup")

	p := b.post("/signup-owner", url.Values{"name": {"Olga"}, "email": {"olga@biz.co"}, "password": {"secret1"}})
	wantBody(t, p, http.StatusOK, "Owner account created! Please verify your email.", "url=/verify-email")

	wantBody(t, b.get("/verify-email"), http.StatusOK, "olga@biz.co")

	p = b.post("/verify-email", url.Values{"otp": {"12"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Please enter a valid 6-digit OTP")
}

func TestPasswordReset(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)

	wantRedirect(t, b.get("/verify-otp"), "/forgot-password")
	wantRedirect(t, b.get("/update-password"), "/forgot-password")

	p := b.post("/forgot-password", url.Values{"email": {"u@x.co"}})
	wantBody(t, p, http.StatusOK, "url=/verify-otp")
	wantBody(t, b.get("/verify-otp"), http.StatusOK, "u@x.co")

	p = b.post("/verify-otp", url.Values{"otp": {"123456"}})
	wantBody(t, p, http.StatusOK, "url=/update-password")
	wantBody(t, b.get("/update-password"), http.StatusOK, "New Password")

	p = b.post("/update-password", url.Values{"newPassword": {"secret2"}, "confirmPassword": {"secret3"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Passwords do not match")

	p = b.post("/update-password", url.Values{"newPassword": {"secret2"}, "confirmPassword": {"secret2"}})
	wantBody(t, p, http.StatusOK, "Password updated successfully!", "url=/login")
}

func TestSearch_OrdersAndRestores(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("owner@biz.co")

	p := b.post("/", url.Values{"location": {"Delhi"}, "type": {""}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Business type is required")

	p = b.post("/", url.Values{"location": {"Delhi"}, "type": {"Cafe"}})
	wantBody(t, p, http.StatusOK, "Top Cafe", "Plain Cafe", "/business/p1?claim=1")
	if strings.Index(p.body, "Top Cafe") > strings.Index(p.body, "Plain Cafe") {
		t.Error("claimed business should be listed first")
	}

	wantBody(t, b.get("/"), http.StatusOK, "Top Cafe", `value="Delhi"`)
}

func TestBusiness_Vote(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("u@x.co")

	p := b.get("/business/p2")
	wantBody(t, p, http.StatusOK, "Top Cafe", "555-0100", "Latte", "Best drink?", `name="option"`)
	if strings.Contains(p.body, "?claim=1") {
		t.Error("users cannot claim")
	}

	p = b.post("/business/p2", url.Values{"action": {"vote"}, "poll": {"q1"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Please select an option")

	p = b.post("/business/p2", url.Values{"action": {"vote"}, "poll": {"q1"}, "option": {"1"}})
	wantRedirect(t, p, "/business/p2")
	if !env.backend.called("POST /content/poll/vote") {
		t.Error("vote not sent")
	}
	wantBody(t, b.get("/business/p2"), http.StatusOK, "Vote submitted!")
}

func TestClaimFlow(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("owner@biz.co")

	wantBody(t, b.get("/business/p1?claim=1"), http.StatusOK, "Step 1 of 3", `name="businessEmail"`)

	claim := func(v url.Values) page {
		v.Set("action", "claim")
		return b.post("/business/p1", v)
	}
	p := claim(url.Values{"step": {"email"}, "businessEmail": {"biz@cafe.co"}})
	wantBody(t, p, http.StatusOK, "Step 2 of 3", "A verification code was sent to biz@cafe.co", `value="biz@cafe.co"`)

	p = claim(url.Values{"step": {"otp"}, "email": {"biz@cafe.co"}, "otp": {"12"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Please enter a valid 6-digit OTP", "Step 2 of 3")

	p = claim(url.Values{"step": {"otp"}, "email": {"biz@cafe.co"}, "back": {"1"}})
	wantBody(t, p, http.StatusOK, "Step 1 of 3")

	p = claim(url.Values{"step": {"otp"}, "email": {"biz@cafe.co"}, "otp": {"123456"}})
	wantBody(t, p, http.StatusOK, "Step 3 of 3", `name="hours"`)

	p = claim(url.Values{"step": {"details"}, "phone": {"555-0199"}, "hours": {"9-5"}})
	wantBody(t, p, http.StatusOK, "Business claimed successfully!", "url=/business/p1")
	if !env.backend.called("PUT /owner/business/p1") {
		t.Error("details not saved")
	}
}

func TestClaim_CannotSkipSteps(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("owner@biz.co")

	p := b.post("/business/p1", url.Values{"action": {"claim"}, "step": {"details"}, "phone": {"555-0199"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Please complete the previous step first", "Step 1 of 3")

	p = b.post("/business/p1", url.Values{"action": {"claim"}, "step": {"otp"}, "otp": {"123456"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Please complete the previous step first")

	for _, call := range []string{"PUT /owner/business/p1", "POST /owner/verify-claim"} {
		if env.backend.called(call) {
			t.Errorf("%s called without the earlier steps", call)
		}
	}
}

func TestClaim_ForbiddenForUsers(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("u@x.co")

	p := b.post("/business/p1", url.Values{"action": {"claim"}, "step": {"email"}, "businessEmail": {"biz@cafe.co"}})
	if p.status != http.StatusForbidden {
		t.Errorf("status = %d, want 403", p.status)
	}
	if env.backend.called("POST /owner/claim") {
		t.Error("claim request sent for a user")
	}
}

func TestOwnerItems(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("owner@biz.co")

	wantBody(t, b.get("/owner/p2/items"), http.StatusOK, "Manage Items", "Latte", "3.5")

	p := b.post("/owner/p2/items", url.Values{"action": {"add"}, "price": {"4"}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Item name is required", "Latte", `value="4"`)

	p = b.post("/owner/p2/items", url.Values{"action": {"add"}, "name": {"Mocha"}, "price": {"4"}, "available": {"1"}})
	wantRedirect(t, p, "/owner/p2/items")
	wantBody(t, b.get("/owner/p2/items"), http.StatusOK, "Item added successfully!")

	wantRedirect(t, b.post("/owner/p2/items", url.Values{"action": {"delete"}, "id": {"i1"}}), "/owner/p2/items")
	if !env.backend.called("DELETE /content/item/i1") {
		t.Error("delete not sent")
	}

	p = b.post("/owner/p2/items", url.Values{"action": {"rename"}})
	if p.status != http.StatusBadRequest {
		t.Errorf("unknown action status = %d", p.status)
	}
}

func TestOwnerPages_OtherBusiness(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("owner@biz.co")

	// p1 is not claimed by the logged in owner.
	if p := b.get("/owner/p1/items"); p.status != http.StatusForbidden {
		t.Errorf("GET status = %d, want 403", p.status)
	}
	p := b.post("/owner/p1/items", url.Values{"action": {"add"}, "name": {"Mocha"}, "price": {"4"}})
	if p.status != http.StatusForbidden {
		t.Errorf("POST status = %d, want 403", p.status)
	}
	if env.backend.called("POST /content/item") || env.backend.called("GET /content/item/p1") {
		t.Error("content endpoint called for a business the owner does not own")
	}
}

func TestOwnerPolls_ShowTallies(t *testing.T) {
	env := setupUI(t, Config{})
	b := env.browser(t)
	b.login("owner@biz.co")

	wantBody(t, b.get("/owner/p2/polls"), http.StatusOK, "Best drink?", "75%", "25%", "End Poll")

	p := b.post("/owner/p2/polls", url.Values{"action": {"add"}, "question": {"Snack?"}, "options": {"Cake", ""}})
	wantBody(t, p, http.StatusUnprocessableEntity, "Please provide at least 2 options", `value="Snack?"`)
}

func TestRateLimit(t *testing.T) {
	env := setupUI(t, Config{SubmitRate: 0.001, SubmitBurst: 1})
	b := env.browser(t)

	if p := b.post("/login", url.Values{"email": {"x"}}); p.status == http.StatusTooManyRequests {
		t.Fatal("first submission throttled")
	}
	p := b.post("/login", url.Values{"email": {"x"}})
	wantBody(t, p, http.StatusTooManyRequests, "Too many submissions")

	// Page loads are not throttled.
	wantBody(t, b.get("/login"), http.StatusOK)

	rec := httptest.NewRecorder()
	env.metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "bizdir_http_rate_limited_total 1") {
		t.Error("throttled submission not counted")
	}
	if !strings.Contains(rec.Body.String(), `bizdir_guard_decisions_total{kind="render",route="login"}`) {
		t.Error("guard decision not counted")
	}
}

func TestNavCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	flash := pages.Banner{Kind: pages.BannerSuccess, Text: "Saved"}
	writeNav(rec, navCookie{State: pages.NavState{Email: "a@b.co", ResetToken: "rt"}, Flash: &flash}, false)

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	got := readNav(req)
	if got.State.Email != "a@b.co" || got.State.ResetToken != "rt" {
		t.Errorf("state = %+v", got.State)
	}
	if got.Flash == nil || got.Flash.Text != "Saved" {
		t.Errorf("flash = %+v", got.Flash)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: NavCookieName, Value: "%%%"})
	if n := readNav(req); !n.isZero() {
		t.Errorf("garbled cookie read as %+v", n)
	}

	rec = httptest.NewRecorder()
	writeNav(rec, navCookie{}, false)
	if c := rec.Result().Cookies(); len(c) != 1 || c[0].MaxAge >= 0 {
		t.Errorf("empty state should clear the cookie, got %+v", c)
	}
}

func TestSubmitLimiter(t *testing.T) {
	l := newSubmitLimiter(0.001, 2)
	if !l.allow("a") || !l.allow("a") {
		t.Fatal("burst not allowed")
	}
	if l.allow("a") {
		t.Error("over burst allowed")
	}
	if !l.allow("b") {
		t.Error("visitors share a budget")
	}

	l.entries["a"].lastSeen = time.Now().Add(-time.Hour)
	if n := l.prune(time.Minute); n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	if _, ok := l.entries["b"]; !ok {
		t.Error("active visitor pruned")
	}

	unlimited := newSubmitLimiter(0, 0)
	for i := 0; i < 10; i++ {
		if !unlimited.allow("a") {
			t.Fatal("zero rate should not limit")
		}
	}
}
