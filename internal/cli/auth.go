package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/pages"
)

func newSignupCmd(a *app) *cobra.Command {
	var f forms.Signup
	var owner bool

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long:  "Create a user account, or a business owner account with --owner. A verification code is emailed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range []struct {
				v     *string
				label string
			}{{&f.Name, "Name"}, {&f.Email, "Email"}, {&f.Password, "Password"}} {
				if err := a.fill(p.v, p.label); err != nil {
					return err
				}
			}
			run := a.pages.Signup
			if owner {
				run = a.pages.OwnerSignup
			}
			out, err := run(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.Password, "password", "", "Password (at least 6 characters)")
	cmd.Flags().BoolVar(&owner, "owner", false, "Register as a business owner")
	return guarded(cmd, "/signup")
}

func newVerifyEmailCmd(a *app) *cobra.Command {
	var nav pages.NavState
	var f forms.OTP

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Verify a new account with the emailed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(&f.OTP, "Verification code"); err != nil {
				return err
			}
			out, err := a.pages.VerifyEmail(cmd.Context(), nav, f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	cmd.Flags().StringVar(&nav.Email, "email", "", "Email address used at signup")
	cmd.Flags().StringVar(&f.OTP, "otp", "", "6-digit verification code")
	return guarded(cmd, "/verify-email")
}

func newLoginCmd(a *app) *cobra.Command {
	var f forms.Login

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(&f.Email, "Email"); err != nil {
				return err
			}
			if err := a.fill(&f.Password, "Password"); err != nil {
				return err
			}
			out, err := a.pages.Login(cmd.Context(), f)
			if err != nil {
				return err
			}
			if !out.Failed() {
				if u := a.pages.User(); u != nil {
					fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.DisplayName(), u.Role)
				}
			}
			return a.report(out)
		},
	}
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&f.Password, "password", "", "Password")
	return guarded(cmd, guard.PathLogin)
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the last search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.pages.Logout(cmd.Context())
			if err != nil {
				return err
			}
			printBanner(a.out, out.Banner)
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.session.Mount(cmd.Context())
			if !st.IsAuthenticated {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			u := st.User
			fmt.Fprintf(a.out, "Name:  %s\n", u.DisplayName())
			fmt.Fprintf(a.out, "Email: %s\n", u.Email)
			fmt.Fprintf(a.out, "Role:  %s\n", u.Role)
			return nil
		},
	}
}

func newForgotPasswordCmd(a *app) *cobra.Command {
	var f forms.ForgotPassword

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(&f.Email, "Email"); err != nil {
				return err
			}
			out, err := a.pages.ForgotPassword(cmd.Context(), f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	cmd.Flags().StringVar(&f.Email, "email", "", "Email address of the account")
	return guarded(cmd, "/forgot-password")
}

func newVerifyOTPCmd(a *app) *cobra.Command {
	var nav pages.NavState
	var f forms.OTP

	cmd := &cobra.Command{
		Use:   "verify-otp",
		Short: "Check a password reset code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(&f.OTP, "Reset code"); err != nil {
				return err
			}
			out, err := a.pages.VerifyOTP(cmd.Context(), nav, f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	cmd.Flags().StringVar(&nav.Email, "email", "", "Email address the code was sent to")
	cmd.Flags().StringVar(&f.OTP, "otp", "", "6-digit reset code")
	return guarded(cmd, "/verify-otp")
}

func newUpdatePasswordCmd(a *app) *cobra.Command {
	var nav pages.NavState
	var f forms.UpdatePassword

	cmd := &cobra.Command{
		Use:   "update-password",
		Short: "Set a new password with a reset token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fill(&f.NewPassword, "New password"); err != nil {
				return err
			}
			if err := a.fill(&f.ConfirmPassword, "Confirm password"); err != nil {
				return err
			}
			out, err := a.pages.UpdatePassword(cmd.Context(), nav, f)
			if err != nil {
				return err
			}
			return a.report(out)
		},
	}
	cmd.Flags().StringVar(&nav.ResetToken, "token", "", "Reset token printed by verify-otp")
	cmd.Flags().StringVar(&f.NewPassword, "password", "", "New password (at least 6 characters)")
	cmd.Flags().StringVar(&f.ConfirmPassword, "confirm", "", "New password again")
	return guarded(cmd, "/update-password")
}

// abandoned reports a page that lost its context, typically after Ctrl-C.
func abandoned(err error) bool {
	return errors.Is(err, pages.ErrAbandoned)
}
