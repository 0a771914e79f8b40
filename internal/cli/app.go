package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/me/bizdir/internal/apiclient"
	"github.com/me/bizdir/internal/config"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/internal/service"
	"github.com/me/bizdir/internal/session"
	"github.com/me/bizdir/internal/store"
)

// routeAnnotation names the guarded route of a command. "{placeId}" is
// replaced by the first argument.
const routeAnnotation = "bizdir.route"

// app is the state of one CLI run: one page load for one profile.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	reader *bufio.Reader

	cfg     config.ClientConfig
	logger  *slog.Logger
	store   store.Store
	client  *apiclient.Client
	svc     *service.Services
	session *session.Manager
	pages   *pages.Pages
}

// open wires the run: store, backend client with the profile's cookies,
// session and page controllers.
func (a *app) open(ctx context.Context, cfg config.ClientConfig) error {
	a.cfg = cfg
	a.logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, a.errOut)

	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	st, err := store.NewSQLiteStore(dbPath, a.logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return fmt.Errorf("migrate store: %w", err)
	}
	a.store = st

	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.BackendURL, Timeout: cfg.Timeout}, a.logger)
	if err != nil {
		return err
	}
	cookies, err := st.LoadCookies(ctx, cfg.Profile)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	client.RestoreCookies(cookies)
	a.client = client

	a.svc = service.New(client)
	a.session = session.NewManager(a.svc.Auth, a.logger)
	a.pages = pages.New(pages.Deps{
		Services:  a.svc,
		Session:   a.session,
		Snapshots: st,
		Owner:     cfg.Profile,
		Logger:    a.logger,
	})
	a.logger.Debug("cli ready", "backend", cfg.BackendURL, "profile", cfg.Profile, "db", dbPath)
	return nil
}

// authorize mounts the session and asks the guard whether the command's
// route may be shown.
func (a *app) authorize(cmd *cobra.Command, args []string) error {
	route, ok := cmd.Annotations[routeAnnotation]
	if !ok {
		return nil
	}
	if len(args) > 0 {
		route = strings.ReplaceAll(route, "{placeId}", url.PathEscape(args[0]))
	}
	st := a.session.Mount(cmd.Context())
	d := guard.Resolve(route, st)
	a.logger.Debug("guard", "command", cmd.CommandPath(), "route", route, "decision", d.Kind.String(), "target", d.Target)
	if d.Kind != guard.Redirect {
		return nil
	}
	if d.Target == guard.PathLogin {
		return fmt.Errorf("%s requires login; run 'bizdir login'", cmd.CommandPath())
	}
	return fmt.Errorf("%s requires a business owner account", cmd.CommandPath())
}

// close saves the profile's cookies, which the backend may have set or
// cleared during the run, and closes the store.
func (a *app) close(ctx context.Context) {
	if a.store == nil {
		return
	}
	if a.client != nil {
		if err := a.store.SaveCookies(ctx, a.cfg.Profile, a.client.Cookies()); err != nil {
			a.logger.Warn("save cookies", "error", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", "error", err)
	}
}

// interactive reports whether stdin is a terminal.
func (a *app) interactive() bool {
	f, ok := a.in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// prompt reads one line from stdin after printing label.
func (a *app) prompt(label string) (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.in)
	}
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(line), nil
}

// fill prompts for *v when it is empty and stdin is a terminal.
func (a *app) fill(v *string, label string) error {
	if *v != "" || !a.interactive() {
		return nil
	}
	s, err := a.prompt(label)
	if err != nil {
		return err
	}
	*v = s
	return nil
}

// guarded sets the route annotation on cmd.
func guarded(cmd *cobra.Command, route string) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route
	return cmd
}
