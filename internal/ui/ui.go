// Package ui is the web front end. Every request acts as one visitor: it
// gets its own backend client, session and page controllers, and the
// visitor's backend cookies are kept in the store between requests.
package ui

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/me/bizdir/internal/apiclient"
	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/internal/metrics"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/internal/service"
	"github.com/me/bizdir/internal/session"
	"github.com/me/bizdir/internal/store"
	"github.com/me/bizdir/pkg/model"
)

// UI handles the web user interface.
type UI struct {
	store   store.Store
	cfg     Config
	base    *slog.Logger
	logger  *slog.Logger
	metrics *metrics.Metrics
	guard   *guard.Guard
	limiter *submitLimiter
}

// Config holds UI configuration.
type Config struct {
	BackendURL  string
	Timeout     time.Duration // Per backend call
	Secure      bool          // Use secure cookies for HTTPS
	VisitorTTL  time.Duration // Idle time before a visitor is replaced
	SubmitRate  float64       // Form submissions per second per visitor; 0 disables the limit
	SubmitBurst int
	HTTPClient  *http.Client // optional; transport for backend calls
}

// New creates a new UI handler.
func New(st store.Store, logger *slog.Logger, cfg Config) *UI {
	if cfg.VisitorTTL <= 0 {
		cfg.VisitorTTL = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &UI{
		store:   st,
		cfg:     cfg,
		base:    logger,
		logger:  logging.Component(logger, "ui"),
		guard:   guard.New(guard.Routes),
		limiter: newSubmitLimiter(cfg.SubmitRate, cfg.SubmitBurst),
	}
}

// WithMetrics records guard decisions, throttled submissions and backend
// calls in m.
func (ui *UI) WithMetrics(m *metrics.Metrics) {
	ui.metrics = m
}

// PruneLimiter forgets the submission budget of visitors idle for longer
// than idle.
func (ui *UI) PruneLimiter(idle time.Duration) int {
	return ui.limiter.prune(idle)
}

type contextKey string

const loadContextKey contextKey = "load"

// pageLoad is the per-request state: the visitor and its backend view.
type pageLoad struct {
	visitor *model.Visitor
	client  *apiclient.Client
	session *session.Manager
	pages   *pages.Pages
	nav     navCookie
}

func loadFrom(ctx context.Context) *pageLoad {
	l, _ := ctx.Value(loadContextKey).(*pageLoad)
	return l
}

// open prepares the backend client, session and controllers for v.
func (ui *UI) open(ctx context.Context, v *model.Visitor) (*pageLoad, error) {
	var opts []apiclient.Option
	if ui.metrics != nil {
		opts = append(opts, apiclient.WithObserver(ui.metrics))
	}
	logger := ui.base.With("visitor", v.ID)
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    ui.cfg.BackendURL,
		Timeout:    ui.cfg.Timeout,
		HTTPClient: ui.cfg.HTTPClient,
	}, logger, opts...)
	if err != nil {
		return nil, err
	}
	cookies, err := ui.store.LoadCookies(ctx, v.ID)
	if err != nil {
		return nil, err
	}
	client.RestoreCookies(cookies)

	svc := service.New(client)
	sess := session.NewManager(svc.Auth, logger)
	return &pageLoad{
		visitor: v,
		client:  client,
		session: sess,
		pages: pages.New(pages.Deps{
			Services:  svc,
			Session:   sess,
			Snapshots: ui.store,
			Owner:     v.ID,
			Logger:    logger,
		}),
	}, nil
}

// persist saves the backend cookies the request may have changed.
func (ui *UI) persist(ctx context.Context, l *pageLoad) {
	if err := ui.store.SaveCookies(ctx, l.visitor.ID, l.client.Cookies()); err != nil {
		ui.logger.Warn("save cookies", "visitor", l.visitor.ID, "error", err)
	}
}

// refresh is a delayed client-side redirect.
type refresh struct {
	URL     string
	Seconds float64
}

// render executes a page template inside the layout. Data shared by every
// page is filled in: the user, an empty banner and field errors, and the
// flash banner of a preceding redirect, which is consumed.
func (ui *UI) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = "Local Business Directory"
	}
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.Errors{}
	}
	l := loadFrom(r.Context())
	if l != nil {
		data["User"] = l.pages.User()
		if r.Method == http.MethodGet && l.nav.Flash != nil {
			if _, ok := data["Banner"]; !ok {
				data["Banner"] = *l.nav.Flash
			}
			writeNav(w, navCookie{State: l.nav.State}, ui.cfg.Secure)
		}
	}
	if _, ok := data["Banner"]; !ok {
		data["Banner"] = pages.Banner{}
	}

	var buf bytes.Buffer
	if err := renderTemplate(&buf, name, data); err != nil {
		ui.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// respond applies the outcome of a submit. Without a navigation the page
// is rendered again with the banner and field errors. A delayed navigation
// renders the page with a refresh; an immediate one redirects and carries
// the banner over as a flash.
func (ui *UI) respond(w http.ResponseWriter, r *http.Request, name string, data map[string]any, out pages.Outcome) {
	if data == nil {
		data = map[string]any{}
	}
	data["Banner"] = out.Banner
	data["Errors"] = out.Errors
	if out.Errors == nil {
		data["Errors"] = forms.Errors{}
	}

	nav := out.Navigate
	switch {
	case nav == nil:
		status := http.StatusOK
		if out.Failed() {
			status = http.StatusUnprocessableEntity
		}
		ui.render(w, r, status, name, data)
	case nav.After > 0:
		writeNav(w, navCookie{State: nav.State}, ui.cfg.Secure)
		data["Refresh"] = &refresh{URL: nav.To, Seconds: nav.After.Seconds()}
		ui.render(w, r, http.StatusOK, name, data)
	default:
		n := navCookie{State: nav.State}
		if !out.Banner.IsZero() {
			b := out.Banner
			n.Flash = &b
		}
		writeNav(w, n, ui.cfg.Secure)
		http.Redirect(w, r, nav.To, http.StatusSeeOther)
	}
}

// fail handles an error returned by a controller. An abandoned page gets
// no response; the client is gone.
func (ui *UI) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pages.ErrAbandoned):
		ui.logger.Debug("page abandoned", "path", r.URL.Path)
	case errors.Is(err, pages.ErrForbidden):
		ui.renderError(w, r, http.StatusForbidden, "You are not allowed to do that.")
	default:
		ui.logger.Error("page failed", "path", r.URL.Path, "error", err)
		ui.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

func (ui *UI) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	ui.render(w, r, status, "error", map[string]any{
		"Title":   http.StatusText(status) + " - Local Business Directory",
		"Message": message,
	})
}

// navigate sends the browser to an entry redirect of a page.
func (ui *UI) navigate(w http.ResponseWriter, r *http.Request, nav *pages.Navigation) {
	writeNav(w, navCookie{State: nav.State}, ui.cfg.Secure)
	http.Redirect(w, r, nav.To, http.StatusSeeOther)
}
