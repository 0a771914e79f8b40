package ui

import (
	"context"
	"net/http"

	"github.com/me/bizdir/internal/guard"
)

// VisitorMiddleware identifies the visitor, prepares its backend view and
// adds it to the request context. The backend cookies are saved once the
// handler returns.
func (ui *UI) VisitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := ui.visitorFromRequest(r)
		if err != nil {
			ui.logger.Error("visitor lookup failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		SetVisitorCookie(w, v, ui.cfg.Secure, ui.cfg.VisitorTTL)

		l, err := ui.open(r.Context(), v)
		if err != nil {
			ui.logger.Error("open page load failed", "visitor", v.ID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		l.nav = readNav(r)

		ctx := context.WithValue(r.Context(), loadContextKey, l)
		next.ServeHTTP(w, r.WithContext(ctx))
		ui.persist(context.WithoutCancel(r.Context()), l)
	})
}

// GuardMiddleware resolves the session and lets the guard decide whether
// the page at the request path is shown. Must be used after
// VisitorMiddleware.
func (ui *UI) GuardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := loadFrom(r.Context())
		st := l.session.Mount(r.Context())
		if r.Context().Err() != nil {
			return
		}
		d := ui.guard.Resolve(r.URL.Path, st)
		ui.metrics.RecordDecision(d.Route.Name, d.Kind.String())

		switch d.Kind {
		case guard.Redirect:
			ui.logger.Debug("guard redirect", "path", r.URL.Path, "target", d.Target, "session", st.Name())
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
		case guard.Placeholder:
			ui.render(w, r, http.StatusServiceUnavailable, "loading", map[string]any{
				"Refresh": &refresh{URL: r.URL.Path, Seconds: 1},
			})
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// RateLimitMiddleware throttles form submissions per visitor. Must be used
// after VisitorMiddleware.
func (ui *UI) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		l := loadFrom(r.Context())
		if !ui.limiter.allow(l.visitor.ID) {
			ui.metrics.RecordRateLimited()
			ui.logger.Warn("submission throttled", "visitor", l.visitor.ID, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			ui.renderError(w, r, http.StatusTooManyRequests, "Too many submissions. Please wait a moment and try again.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
