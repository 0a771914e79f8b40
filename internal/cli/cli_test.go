package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

// startTestBackend starts a fake directory API. Login sets a "token" cookie
// holding the role; emails starting with "owner" log in as owners.
func startTestBackend(t *testing.T) string {
	t.Helper()
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
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[
			{"placeId":"p1","name":"Plain Cafe","address":"1 Main St"},
			{"placeId":"p2","name":"Top Cafe","claimed":true,"owner":"u-owner"}]}`)
	})
	mux.HandleFunc("GET /business/p1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"placeId":"p1","name":"Plain Cafe","address":"1 Main St"}}`)
	})
	mux.HandleFunc("GET /business/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"placeId":"p2","name":"Top Cafe","claimed":true,"owner":"u-owner","phone":"555-0100"}}`)
	})
	mux.HandleFunc("GET /content/item/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"_id":"i1","name":"Latte","price":3.5,"available":true}]}`)
	})
	mux.HandleFunc("GET /content/offer/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	})
	mux.HandleFunc("GET /content/announcement/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[]}`)
	})
	mux.HandleFunc("GET /content/poll/p2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"_id":"q1","placeId":"p2","question":"Best drink?","options":[{"text":"Latte","votes":2},{"text":"Mocha","votes":0}],"voters":[],"isActive":true}]}`)
	})
	mux.HandleFunc("POST /content/poll/vote", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	mux.HandleFunc("POST /content/item", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{}`)
	})
	mux.HandleFunc("GET /owner/my-businesses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":[{"placeId":"p2","name":"Top Cafe","claimed":true}]}`)
	})
	mux.HandleFunc("POST /owner/claim", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"message":"Code sent"}`)
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts.URL
}

type cliEnv struct {
	url string
	db  string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	return cliEnv{url: startTestBackend(t), db: filepath.Join(t.TempDir(), "bizdir.db")}
}

// run executes one CLI invocation and returns stdout, stderr and the exit status.
func (e cliEnv) run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--backend", e.url, "--db", e.db, "--log-level", "error"}, args...)
	code := Run(context.Background(), full, strings.NewReader(""), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestLogin_SessionSurvivesRuns(t *testing.T) {
	env := newCLIEnv(t)

	out, _, code := env.run(t, "login", "--email", "owner@biz.co", "--password", "secret1")
	if code != 0 {
		t.Fatalf("login exit %d: %s", code, out)
	}
	if !strings.Contains(out, "Logged in as Olga (owner)") || !strings.Contains(out, "Next: bizdir owner businesses") {
		t.Errorf("login output: %s", out)
	}

	out, _, code = env.run(t, "whoami")
	if code != 0 || !strings.Contains(out, "Email: owner@biz.co") {
		t.Errorf("whoami exit %d: %s", code, out)
	}

	out, _, _ = env.run(t, "logout")
	if !strings.Contains(out, "logged out") {
		t.Errorf("logout output: %s", out)
	}
	out, _, _ = env.run(t, "whoami")
	if !strings.Contains(out, "Not logged in.") {
		t.Errorf("whoami after logout: %s", out)
	}
}

func TestLogin_Rejected(t *testing.T) {
	env := newCLIEnv(t)
	out, _, code := env.run(t, "login", "--email", "a@b.co", "--password", "bad")
	if code != 1 {
		t.Errorf("exit = %d", code)
	}
	if !strings.Contains(out, "!! Invalid credentials") {
		t.Errorf("output: %s", out)
	}
}

func TestProfiles_AreIsolated(t *testing.T) {
	env := newCLIEnv(t)
	env.run(t, "--profile", "work", "login", "--email", "owner@biz.co", "--password", "secret1")

	out, _, _ := env.run(t, "--profile", "home", "whoami")
	if !strings.Contains(out, "Not logged in.") {
		t.Errorf("other profile: %s", out)
	}
	out, _, _ = env.run(t, "--profile", "work", "whoami")
	if !strings.Contains(out, "Olga") {
		t.Errorf("same profile: %s", out)
	}
}

func TestGuard(t *testing.T) {
	env := newCLIEnv(t)

	_, stderr, code := env.run(t, "search", "Delhi", "Cafe")
	if code != 1 || !strings.Contains(stderr, "requires login") {
		t.Errorf("anonymous search: exit %d, stderr %s", code, stderr)
	}

	env.run(t, "login", "--email", "u@x.co", "--password", "secret1")
	_, stderr, code = env.run(t, "owner", "businesses")
	if code != 1 || !strings.Contains(stderr, "requires a business owner account") {
		t.Errorf("user on owner page: exit %d, stderr %s", code, stderr)
	}
}

func TestSearch_OrdersAndRestores(t *testing.T) {
	env := newCLIEnv(t)
	env.run(t, "login", "--email", "owner@biz.co", "--password", "secret1")

	out, _, code := env.run(t, "search", "Delhi", "Cafe")
	if code != 0 {
		t.Fatalf("search exit %d: %s", code, out)
	}
	top, plain := strings.Index(out, "Top Cafe"), strings.Index(out, "Plain Cafe")
	if top < 0 || plain < 0 || top > plain {
		t.Errorf("claimed business should be listed first:\n%s", out)
	}
	if !strings.Contains(out, "bizdir claim <place-id>") {
		t.Errorf("owner should be offered the claim command:\n%s", out)
	}

	out, _, _ = env.run(t, "search")
	if !strings.Contains(out, "Last search: Cafe in Delhi") || !strings.Contains(out, "Top Cafe") {
		t.Errorf("restored search:\n%s", out)
	}

	out, _, code = env.run(t, "search", "--type", "Cafe")
	if code != 1 || !strings.Contains(out, "Location is required") {
		t.Errorf("invalid search: exit %d\n%s", code, out)
	}
}

func TestBusinessAndVote(t *testing.T) {
	env := newCLIEnv(t)
	env.run(t, "login", "--email", "u@x.co", "--password", "secret1")

	out, _, code := env.run(t, "business", "p2")
	if code != 0 {
		t.Fatalf("business exit %d: %s", code, out)
	}
	for _, want := range []string{"Top Cafe", "555-0100", "Latte", "Best drink?", "bizdir vote p2 q1 <option>"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "%") {
		t.Errorf("tallies shown before voting:\n%s", out)
	}

	out, _, code = env.run(t, "vote", "p2", "q1", "2")
	if code != 0 || !strings.Contains(out, "Vote submitted!") {
		t.Errorf("vote exit %d: %s", code, out)
	}
}

func TestSignupAndVerifyNavigation(t *testing.T) {
	env := newCLIEnv(t)

	out, _, code := env.run(t, "signup", "--email", "bad")
	if code != 1 || !strings.Contains(out, "name: Name is required") {
		t.Errorf("invalid signup: exit %d\n%s", code, out)
	}

	out, _, code = env.run(t, "signup", "--owner", "--name", "Olga", "--email", "owner@biz.co", "--password", "secret1")
	if code != 0 || !strings.Contains(out, "Next: bizdir verify-email --email owner@biz.co") {
		t.Errorf("signup: exit %d\n%s", code, out)
	}

	out, _, _ = env.run(t, "verify-email", "--otp", "123456")
	if !strings.Contains(out, "Next: bizdir signup") {
		t.Errorf("verify without email:\n%s", out)
	}
}

func TestOwnerCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.run(t, "login", "--email", "owner@biz.co", "--password", "secret1")

	out, _, code := env.run(t, "owner", "businesses")
	if code != 0 || !strings.Contains(out, "Welcome, Olga") || !strings.Contains(out, "p2") {
		t.Errorf("owner businesses: exit %d\n%s", code, out)
	}

	out, _, code = env.run(t, "owner", "item", "list", "p2")
	if code != 0 || !strings.Contains(out, "Latte") {
		t.Errorf("item list: exit %d\n%s", code, out)
	}

	out, _, code = env.run(t, "owner", "item", "add", "p2", "--name", "Mocha", "--price", "4.5")
	if code != 0 || !strings.Contains(out, "Item added successfully!") {
		t.Errorf("item add: exit %d\n%s", code, out)
	}

	out, _, code = env.run(t, "owner", "poll", "add", "p2", "--question", "Best?", "--option", "A")
	if code != 1 || !strings.Contains(out, "Please provide at least 2 options") {
		t.Errorf("poll add: exit %d\n%s", code, out)
	}

	// p1 belongs to nobody yet.
	_, stderr, code := env.run(t, "owner", "item", "add", "p1", "--name", "Mocha", "--price", "4.5")
	if code != 1 || !strings.Contains(stderr, "action not allowed") {
		t.Errorf("item add on another business: exit %d, %s", code, stderr)
	}
}

func TestClaim_EmailStep(t *testing.T) {
	env := newCLIEnv(t)
	env.run(t, "login", "--email", "owner@biz.co", "--password", "secret1")

	out, _, code := env.run(t, "claim", "p1", "--email", "biz@cafe.co")
	if code != 0 {
		t.Fatalf("claim exit %d: %s", code, out)
	}
	if !strings.Contains(out, "Claiming Plain Cafe") || !strings.Contains(out, "bizdir claim p1 --email biz@cafe.co --otp") {
		t.Errorf("claim output:\n%s", out)
	}

	_, stderr, code := env.run(t, "claim", "p2", "--email", "biz@cafe.co")
	if code != 1 || !strings.Contains(stderr, "only unclaimed businesses") {
		t.Errorf("claim of claimed business: exit %d, %s", code, stderr)
	}
}

func TestClaim_CodeNeedsEmail(t *testing.T) {
	env := newCLIEnv(t)
	env.run(t, "login", "--email", "owner@biz.co", "--password", "secret1")

	_, stderr, code := env.run(t, "claim", "p1", "--otp", "123456")
	if code != 1 || !strings.Contains(stderr, "--otp needs the --email") {
		t.Errorf("claim --otp alone: exit %d, %s", code, stderr)
	}

	// The backend does not record p1 as claimed, so the details step
	// starts over.
	out, _, code := env.run(t, "claim", "p1", "--details", "--phone", "555-0199")
	if code != 1 || !strings.Contains(out, "Please complete the previous step first") {
		t.Errorf("claim --details before the code: exit %d\n%s", code, out)
	}
}

func TestNextCommand(t *testing.T) {
	tests := []struct {
		nav  pages.Navigation
		want string
	}{
		{pages.Navigation{To: "/verify-email", State: pages.NavState{Email: "a@b.co"}}, "bizdir verify-email --email a@b.co --otp <code>"},
		{pages.Navigation{To: "/update-password", State: pages.NavState{ResetToken: "tok"}}, "bizdir update-password --token tok"},
		{pages.Navigation{To: "/owner"}, "bizdir owner businesses"},
		{pages.Navigation{To: "/business/p1"}, "bizdir business p1"},
		{pages.Navigation{To: "/owner/p1/announcements"}, "bizdir owner announcement list p1"},
		{pages.Navigation{To: "/nowhere"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.nav.To, func(t *testing.T) {
			if got := nextCommand(&tt.nav); got != tt.want {
				t.Errorf("nextCommand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOfferValidity(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		validTill string
		prefix    string
	}{
		{"2026-05-01", "Expired on May 1, 2026"},
		{"2026-05-10", "Valid till May 10, 2026"},
		{"2026-06-01", "Valid till Jun 1, 2026"},
		{"soon", "Valid till soon"},
	}
	for _, tt := range tests {
		t.Run(tt.validTill, func(t *testing.T) {
			got := offerValidity(model.Offer{ValidTill: tt.validTill}, now)
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("offerValidity = %q, want prefix %q", got, tt.prefix)
			}
		})
	}
}
