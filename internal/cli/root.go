package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/bizdir/internal/config"
)

// errReported is returned by commands whose failure was already printed as
// a banner. It only sets the exit status.
var errReported = errors.New("reported")

// flags are the persistent flags. Zero values leave the configured value
// in place.
type flags struct {
	configFile string
	backend    string
	profile    string
	db         string
	timeout    time.Duration
	debug      bool
	logLevel   string
	logFormat  string
}

// newRootCmd creates the root cobra command for the bizdir CLI. Each
// subcommand is one page load against the directory backend.
func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{in: stdin, out: stdout, errOut: stderr}
	var fl flags

	root := &cobra.Command{
		Use:   "bizdir",
		Short: "bizdir - local business directory client",
		Long:  "bizdir searches local businesses and lets owners claim and manage their listings.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, fl)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context(), cfg); err != nil {
				return err
			}
			return a.authorize(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&fl.configFile, "config", "", "YAML config file")
	pf.StringVar(&fl.backend, "backend", "", "Directory API base URL (or "+config.EnvBackendURL+" env)")
	pf.StringVar(&fl.profile, "profile", "", "Profile whose login and last search are used (or "+config.EnvProfile+" env)")
	pf.StringVar(&fl.db, "db", "", "SQLite file for cookies and the last search (default ~/.bizdir/bizdir.db)")
	pf.DurationVar(&fl.timeout, "timeout", 0, "Per-request timeout")
	pf.BoolVar(&fl.debug, "debug", false, "Enable debug logging")
	pf.StringVar(&fl.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&fl.logFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newSignupCmd(a),
		newVerifyEmailCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newForgotPasswordCmd(a),
		newVerifyOTPCmd(a),
		newUpdatePasswordCmd(a),
		newSearchCmd(a),
		newBusinessCmd(a),
		newVoteCmd(a),
		newClaimCmd(a),
		newOwnerCmd(a),
	)
	return root, a
}

// loadConfig layers the persistent flags over the file and environment.
func loadConfig(cmd *cobra.Command, fl flags) (config.ClientConfig, error) {
	cfg, err := config.LoadClientConfig(fl.configFile)
	if err != nil {
		return cfg, err
	}
	if fl.backend != "" {
		cfg.BackendURL = fl.backend
	}
	if fl.profile != "" {
		cfg.Profile = fl.profile
	}
	if fl.db != "" {
		cfg.DBPath = fl.db
	}
	if fl.timeout > 0 {
		cfg.Timeout = fl.timeout
	}
	if fl.logLevel != "" {
		cfg.LogLevel = fl.logLevel
	}
	if fl.logFormat != "" {
		cfg.LogFormat = fl.logFormat
	}
	if fl.debug {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// Run executes the CLI and returns the process exit status.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root, a := newRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	a.close(context.WithoutCancel(ctx))
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	case abandoned(err):
		fmt.Fprintln(stderr, "Interrupted.")
		return 130
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

// Main is the entry point used by cmd/cli.
func Main(ctx context.Context) int {
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
