// Package session holds the client's view of who is logged in. A Manager
// starts in the loading state, resolves it with one "who am I" call, and
// is the only place that state is mutated.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/pkg/model"
)

var (
	// ErrNotAuthenticated is returned by Login when the backend accepted the
	// credentials but the follow-up identity check failed.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSuperseded is returned by Login when its identity check was
	// overtaken by a logout, a reset or a newer check.
	ErrSuperseded = errors.New("session check superseded")
)

// AuthAPI is the subset of the auth service the session depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.User, error)
}

// State is a snapshot of the session. IsAuthenticated is true exactly when
// User is non-nil.
type State struct {
	User            *model.User
	IsAuthenticated bool
	Loading         bool
}

// Role returns the role of the session user, or "" when anonymous.
func (s State) Role() model.Role {
	return model.RoleOf(s.User)
}

// Name returns a label for the state, used in logs.
func (s State) Name() string {
	switch {
	case s.Loading:
		return "unknown"
	case s.IsAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// Manager owns the session state. It is safe for concurrent use.
//
// Every identity check takes a generation number when it starts. Logout,
// ResetSession and each new check advance the generation, and a finished
// check only writes its result if its generation is still current.
type Manager struct {
	auth   AuthAPI
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	gen     uint64
	mounted bool
}

// NewManager creates a Manager in the loading state.
func NewManager(auth AuthAPI, logger *slog.Logger) *Manager {
	return &Manager{
		auth:   auth,
		logger: logging.Component(logger, "session"),
		state:  State{Loading: true},
	}
}

// State returns a snapshot of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot()
}

func (m *Manager) snapshot() State {
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Mount runs the initial identity check. Later calls return the current
// state without another request until ResetSession is called.
func (m *Manager) Mount(ctx context.Context) State {
	m.mu.Lock()
	if m.mounted {
		s := m.snapshot()
		m.mu.Unlock()
		return s
	}
	m.mounted = true
	m.mu.Unlock()

	m.check(ctx)
	return m.State()
}

// CheckAuthStatus returns the session user. An authenticated session
// answers without a request; otherwise the backend is asked. It returns nil
// when the caller is not logged in.
func (m *Manager) CheckAuthStatus(ctx context.Context) *model.User {
	m.mu.Lock()
	if m.state.IsAuthenticated {
		s := m.snapshot()
		m.mu.Unlock()
		return s.User
	}
	m.mu.Unlock()

	user, _, _ := m.check(ctx)
	return user
}

// Login submits credentials and then re-checks the session, since the
// backend only sets a cookie. Backend rejections are returned unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) (*model.User, error) {
	if err := m.auth.Login(ctx, email, password); err != nil {
		return nil, err
	}
	user, applied, err := m.check(ctx)
	if !applied {
		return nil, ErrSuperseded
	}
	if user == nil {
		m.logger.Warn("login accepted but identity check failed", "error", err)
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

// Logout asks the backend to end the session and then clears the local
// state whatever the outcome. The backend error is returned for logging.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	m.mu.Unlock()

	err := m.auth.Logout(ctx)
	if err != nil {
		m.logger.Warn("logout request failed", "error", err)
	}
	m.clear("logout")
	return err
}

// ResetSession clears the local state without contacting the backend. The
// next Mount runs a fresh check.
func (m *Manager) ResetSession() {
	m.clear("reset")
	m.mu.Lock()
	m.mounted = false
	m.mu.Unlock()
}

func (m *Manager) clear(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = State{}
	m.logger.Debug("session cleared", "reason", reason)
}

// check performs one identity request. applied reports whether the result
// was written to the session.
func (m *Manager) check(ctx context.Context) (user *model.User, applied bool, err error) {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	u, err := m.auth.Me(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		m.logger.Debug("discarding stale session check", "generation", gen, "current", m.gen)
		return nil, false, err
	}
	if err != nil || u == nil {
		m.state = State{}
		m.logger.Debug("session check", "state", m.state.Name(), "error", err)
		return nil, true, err
	}
	m.state = State{User: u, IsAuthenticated: true}
	m.logger.Debug("session check", "state", m.state.Name(), "user_id", u.ID, "role", u.Role)
	copied := *u
	return &copied, true, nil
}
