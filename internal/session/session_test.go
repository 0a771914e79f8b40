package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/me/bizdir/pkg/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeAuth answers Me with user (or err). When gate is non-nil, Me blocks
// until a value is sent on it.
type fakeAuth struct {
	mu        sync.Mutex
	user      *model.User
	meErr     error
	loginErr  error
	logoutErr error
	meCalls   int
	gate      chan struct{}
	started   chan struct{}
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginErr
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeAuth) Me(ctx context.Context) (*model.User, error) {
	f.mu.Lock()
	f.meCalls++
	gate, started := f.gate, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user, nil
}

func (f *fakeAuth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls
}

var owner = &model.User{ID: "u1", Email: "o@x.co", Name: "Olive", Role: model.RoleOwner}

func TestManager_StartsLoading(t *testing.T) {
	m := NewManager(&fakeAuth{}, testLogger())
	s := m.State()
	if !s.Loading || s.IsAuthenticated || s.User != nil {
		t.Errorf("initial state = %+v", s)
	}
}

func TestManager_Mount(t *testing.T) {
	tests := []struct {
		name     string
		auth     *fakeAuth
		wantAuth bool
	}{
		{"user", &fakeAuth{user: owner}, true},
		{"error", &fakeAuth{meErr: model.NewAPIError("auth.me", 401, "")}, false},
		{"nil user", &fakeAuth{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.auth, testLogger())
			s := m.Mount(context.Background())
			if s.Loading {
				t.Error("still loading after mount")
			}
			if s.IsAuthenticated != tt.wantAuth || (s.User != nil) != tt.wantAuth {
				t.Errorf("state = %+v, want authenticated=%v", s, tt.wantAuth)
			}
		})
	}
}

func TestManager_MountRunsOnce(t *testing.T) {
	fa := &fakeAuth{}
	m := NewManager(fa, testLogger())
	m.Mount(context.Background())
	m.Mount(context.Background())
	if fa.calls() != 1 {
		t.Errorf("Me calls = %d, want 1", fa.calls())
	}

	m.ResetSession()
	m.Mount(context.Background())
	if fa.calls() != 2 {
		t.Errorf("Me calls after reset = %d, want 2", fa.calls())
	}
}

func TestManager_CheckAuthStatusShortCircuits(t *testing.T) {
	fa := &fakeAuth{user: owner}
	m := NewManager(fa, testLogger())
	m.Mount(context.Background())

	u := m.CheckAuthStatus(context.Background())
	if u == nil || u.ID != "u1" {
		t.Fatalf("user = %+v", u)
	}
	if fa.calls() != 1 {
		t.Errorf("Me calls = %d, want 1 (no request while authenticated)", fa.calls())
	}
}

func TestManager_CheckAuthStatusUnauthenticated(t *testing.T) {
	fa := &fakeAuth{meErr: errors.New("boom")}
	m := NewManager(fa, testLogger())
	if u := m.CheckAuthStatus(context.Background()); u != nil {
		t.Errorf("user = %+v, want nil", u)
	}
	if s := m.State(); s.Loading || s.IsAuthenticated {
		t.Errorf("state = %+v", s)
	}
}

func TestManager_Login(t *testing.T) {
	fa := &fakeAuth{user: owner}
	m := NewManager(fa, testLogger())
	m.Mount(context.Background())

	u, err := m.Login(context.Background(), "o@x.co", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Role != model.RoleOwner {
		t.Errorf("role = %q", u.Role)
	}
	if fa.calls() != 2 {
		t.Errorf("Me calls = %d, want 2 (login forces a check)", fa.calls())
	}
	if s := m.State(); !s.IsAuthenticated {
		t.Errorf("state = %+v", s)
	}
}

func TestManager_LoginRejected(t *testing.T) {
	rejected := model.NewAPIError("auth.login", 401, "Invalid credentials")
	fa := &fakeAuth{loginErr: rejected}
	m := NewManager(fa, testLogger())

	_, err := m.Login(context.Background(), "o@x.co", "bad")
	if !errors.Is(err, rejected) {
		t.Errorf("err = %v, want backend error", err)
	}
	if fa.calls() != 0 {
		t.Errorf("Me calls = %d, want 0", fa.calls())
	}
}

func TestManager_LoginCheckFails(t *testing.T) {
	fa := &fakeAuth{meErr: errors.New("cookie blocked")}
	m := NewManager(fa, testLogger())
	_, err := m.Login(context.Background(), "o@x.co", "secret")
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestManager_LogoutAlwaysClears(t *testing.T) {
	fa := &fakeAuth{user: owner, logoutErr: errors.New("network down")}
	m := NewManager(fa, testLogger())
	m.Mount(context.Background())

	if err := m.Logout(context.Background()); err == nil {
		t.Error("expected logout error to be returned")
	}
	s := m.State()
	if s.IsAuthenticated || s.User != nil || s.Loading {
		t.Errorf("state after logout = %+v", s)
	}
}

func TestManager_ResetSession(t *testing.T) {
	m := NewManager(&fakeAuth{user: owner}, testLogger())
	m.Mount(context.Background())
	m.ResetSession()
	if s := m.State(); s.IsAuthenticated || s.User != nil {
		t.Errorf("state after reset = %+v", s)
	}
}

func TestManager_StaleCheckAfterLogout(t *testing.T) {
	gate := make(chan struct{})
	fa := &fakeAuth{user: owner, gate: gate, started: make(chan struct{}, 1)}
	m := NewManager(fa, testLogger())

	done := make(chan State)
	go func() { done <- m.Mount(context.Background()) }()

	<-fa.started
	if err := m.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	close(gate)
	<-done

	if s := m.State(); s.IsAuthenticated || s.User != nil {
		t.Errorf("stale check resurrected session: %+v", s)
	}
}

func TestManager_StaleLoginCheck(t *testing.T) {
	gate := make(chan struct{})
	fa := &fakeAuth{user: owner, gate: gate, started: make(chan struct{}, 1)}
	m := NewManager(fa, testLogger())

	errc := make(chan error)
	go func() {
		_, err := m.Login(context.Background(), "o@x.co", "secret")
		errc <- err
	}()
	<-fa.started
	m.ResetSession()
	close(gate)

	if err := <-errc; !errors.Is(err, ErrSuperseded) {
		t.Errorf("err = %v, want ErrSuperseded", err)
	}
	if s := m.State(); s.IsAuthenticated {
		t.Errorf("state = %+v", s)
	}
}

func TestManager_StateIsSnapshot(t *testing.T) {
	m := NewManager(&fakeAuth{user: &model.User{ID: "u1", Name: "A"}}, testLogger())
	s := m.Mount(context.Background())
	s.User.Name = "changed"
	if got := m.State().User.Name; got != "A" {
		t.Errorf("internal user mutated through snapshot: %q", got)
	}
}
