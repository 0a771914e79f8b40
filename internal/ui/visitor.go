package ui

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

const (
	// VisitorCookieName identifies the browser. Backend cookies and the
	// last search are stored server-side against it.
	VisitorCookieName = "bizdir_visitor"
	// NavCookieName carries the navigation state and the flash banner from
	// one page to the next.
	NavCookieName = "bizdir_nav"
)

// visitorFromRequest returns the visitor named by the request cookie. A
// new visitor is created when the cookie is missing, unknown, or idle for
// longer than the configured TTL.
func (ui *UI) visitorFromRequest(r *http.Request) (*model.Visitor, error) {
	ctx := r.Context()
	if c, err := r.Cookie(VisitorCookieName); err == nil && c.Value != "" {
		v, err := ui.store.GetVisitor(ctx, c.Value)
		if err != nil {
			return nil, fmt.Errorf("get visitor: %w", err)
		}
		if v != nil && !v.IsExpired(ui.cfg.VisitorTTL) {
			if err := ui.store.TouchVisitor(ctx, v.ID); err != nil {
				ui.logger.Warn("touch visitor", "visitor", v.ID, "error", err)
			}
			return v, nil
		}
	}

	v, err := ui.store.CreateVisitor(ctx)
	if err != nil {
		return nil, fmt.Errorf("create visitor: %w", err)
	}
	ui.logger.Debug("new visitor", "visitor", v.ID)
	return v, nil
}

// SetVisitorCookie sets the visitor cookie. Every response renews it, so
// the cookie expires after ttl of inactivity.
func SetVisitorCookie(w http.ResponseWriter, v *model.Visitor, secure bool, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookieName,
		Value:    v.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

// navCookie is the payload of the navigation cookie.
type navCookie struct {
	State pages.NavState `json:"state"`
	Flash *pages.Banner  `json:"flash,omitempty"`
}

func (n navCookie) isZero() bool {
	return n.State == (pages.NavState{}) && n.Flash == nil
}

// readNav decodes the navigation cookie. A missing or garbled cookie reads
// as empty.
func readNav(r *http.Request) navCookie {
	var n navCookie
	c, err := r.Cookie(NavCookieName)
	if err != nil || c.Value == "" {
		return n
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return navCookie{}
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return navCookie{}
	}
	return n
}

// writeNav stores n in the navigation cookie, or clears the cookie when n
// is empty.
func writeNav(w http.ResponseWriter, n navCookie, secure bool) {
	c := &http.Cookie{
		Name:     NavCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if n.isZero() {
		c.MaxAge = -1
	} else {
		raw, _ := json.Marshal(n)
		c.Value = base64.RawURLEncoding.EncodeToString(raw)
	}
	http.SetCookie(w, c)
}
