// Package pages holds one controller per screen. A controller validates
// input, calls exactly one service operation on a valid submit, and
// returns an Outcome (banner, field errors, navigation) that the CLI and
// the web front end render in their own way.
package pages

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/internal/search"
	"github.com/me/bizdir/internal/service"
	"github.com/me/bizdir/internal/session"
	"github.com/me/bizdir/pkg/model"
)

// ErrAbandoned is returned when the page's context ended before the reply
// arrived. No outcome is produced.
var ErrAbandoned = errors.New("page abandoned")

// ErrForbidden is returned when the caller may not perform the action.
var ErrForbidden = errors.New("action not allowed")

// Redirect delays after a successful submit.
const (
	RedirectDelay      = 1500 * time.Millisecond
	LoginRedirectDelay = 500 * time.Millisecond
)

// BannerKind is the style of a banner.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
	BannerInfo    BannerKind = "info"
)

// Banner is the page-level message.
type Banner struct {
	Kind BannerKind
	Text string
}

// IsZero reports whether there is no banner.
func (b Banner) IsZero() bool { return b.Text == "" }

func success(text string) Banner { return Banner{Kind: BannerSuccess, Text: text} }
func failure(text string) Banner { return Banner{Kind: BannerError, Text: text} }
func info(text string) Banner    { return Banner{Kind: BannerInfo, Text: text} }

// NavState is the state carried from one page to the next, like the
// history state of a browser navigation.
type NavState struct {
	Email      string `json:"email,omitempty"`
	ResetToken string `json:"resetToken,omitempty"`
}

// Navigation asks the front end to go to To after After has elapsed.
type Navigation struct {
	To    string
	State NavState
	After time.Duration
}

// Outcome is the result of a submit.
type Outcome struct {
	Banner   Banner
	Errors   forms.Errors
	Navigate *Navigation
}

// Failed reports whether the submit was rejected locally or by the backend.
func (o Outcome) Failed() bool {
	return o.Banner.Kind == BannerError || !o.Errors.OK()
}

// Deps are the collaborators of the page controllers.
type Deps struct {
	Services  *service.Services
	Session   *session.Manager
	Snapshots search.SnapshotStore // nil disables the search snapshot
	Owner     string               // key of the snapshot (CLI profile or web visitor)
	Logger    *slog.Logger
}

// Pages is the set of page controllers for one page load.
type Pages struct {
	svc       *service.Services
	session   *session.Manager
	snapshots search.SnapshotStore
	owner     string
	logger    *slog.Logger
}

// New creates the page controllers.
func New(d Deps) *Pages {
	return &Pages{
		svc:       d.Services,
		session:   d.Session,
		snapshots: d.Snapshots,
		owner:     d.Owner,
		logger:    logging.Component(d.Logger, "pages"),
	}
}

// User returns the session user, or nil.
func (p *Pages) User() *model.User {
	return p.session.State().User
}

func invalid(errs forms.Errors) Outcome {
	return Outcome{Banner: failure(errs.First()), Errors: errs}
}

func goTo(to string, after time.Duration, state NavState) *Navigation {
	return &Navigation{To: to, State: state, After: after}
}

// settle drops the outcome when the page is gone.
func settle(ctx context.Context, out Outcome) (Outcome, error) {
	if ctx.Err() != nil {
		return Outcome{}, ErrAbandoned
	}
	return out, nil
}

// submit runs one service call and turns its result into an Outcome.
func (p *Pages) submit(ctx context.Context, page, fallback string, call func() error, ok Outcome) (Outcome, error) {
	err := call()
	if ctx.Err() != nil {
		return Outcome{}, ErrAbandoned
	}
	if err != nil {
		p.logger.Warn("submit failed", "page", page, "error", err)
		return Outcome{Banner: failure(model.MessageOf(err, fallback))}, nil
	}
	p.logger.Debug("submit ok", "page", page)
	return ok, nil
}
