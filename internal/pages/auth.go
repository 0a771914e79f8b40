package pages

import (
	"context"
	"errors"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/session"
	"github.com/me/bizdir/pkg/model"
)

// Signup registers a regular user.
func (p *Pages) Signup(ctx context.Context, f forms.Signup) (Outcome, error) {
	return p.signup(ctx, f, model.RoleUser, "Signup successful! Please verify your email.")
}

// OwnerSignup registers a business owner.
func (p *Pages) OwnerSignup(ctx context.Context, f forms.Signup) (Outcome, error) {
	return p.signup(ctx, f, model.RoleOwner, "Owner account created! Please verify your email.")
}

func (p *Pages) signup(ctx context.Context, f forms.Signup, role model.Role, text string) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	return p.submit(ctx, "signup", "Signup failed. Please try again.",
		func() error { return p.svc.Auth.Signup(ctx, f.Email, f.Password, f.Name, role) },
		Outcome{
			Banner:   success(text),
			Navigate: goTo("/verify-email", RedirectDelay, NavState{Email: f.Email}),
		})
}

// EnterVerifyEmail returns a redirect when the page was opened without
// the email of a fresh signup.
func EnterVerifyEmail(nav NavState) *Navigation {
	if nav.Email == "" {
		return goTo("/signup", 0, NavState{})
	}
	return nil
}

// VerifyEmail confirms a new account with the emailed code.
func (p *Pages) VerifyEmail(ctx context.Context, nav NavState, f forms.OTP) (Outcome, error) {
	if to := EnterVerifyEmail(nav); to != nil {
		return Outcome{Navigate: to}, nil
	}
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	return p.submit(ctx, "verify-email", "Verification failed. Please try again.",
		func() error { return p.svc.Auth.VerifyEmail(ctx, nav.Email, f.OTP) },
		Outcome{
			Banner:   success("Email verified successfully!"),
			Navigate: goTo(guard.PathLogin, RedirectDelay, NavState{}),
		})
}

// Login signs in and sends owners to their dashboard.
func (p *Pages) Login(ctx context.Context, f forms.Login) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	user, err := p.session.Login(ctx, f.Email, f.Password)
	if ctx.Err() != nil || errors.Is(err, session.ErrSuperseded) {
		return Outcome{}, ErrAbandoned
	}
	if err != nil {
		p.logger.Warn("submit failed", "page", "login", "error", err)
		return Outcome{Banner: failure(model.MessageOf(err, "Login failed. Please check your credentials."))}, nil
	}
	return Outcome{
		Banner:   success("Login successful! Redirecting..."),
		Navigate: goTo(guard.LandingFor(user), LoginRedirectDelay, NavState{}),
	}, nil
}

// ForgotPassword requests a password reset code.
func (p *Pages) ForgotPassword(ctx context.Context, f forms.ForgotPassword) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	return p.submit(ctx, "forgot-password", "Failed to send reset code. Please try again.",
		func() error { return p.svc.Auth.ForgotPassword(ctx, f.Email) },
		Outcome{
			Banner:   success("Password reset code sent to your email!"),
			Navigate: goTo("/verify-otp", RedirectDelay, NavState{Email: f.Email}),
		})
}

// EnterVerifyOTP returns a redirect when the page was opened without the
// email of a reset request.
func EnterVerifyOTP(nav NavState) *Navigation {
	if nav.Email == "" {
		return goTo("/forgot-password", 0, NavState{})
	}
	return nil
}

// VerifyOTP checks the reset code and carries the reset token forward.
func (p *Pages) VerifyOTP(ctx context.Context, nav NavState, f forms.OTP) (Outcome, error) {
	if to := EnterVerifyOTP(nav); to != nil {
		return Outcome{Navigate: to}, nil
	}
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	var token string
	out, err := p.submit(ctx, "verify-otp", "Invalid OTP. Please try again.",
		func() error {
			var err error
			token, err = p.svc.Auth.VerifyOTP(ctx, nav.Email, f.OTP)
			return err
		},
		Outcome{Banner: success("OTP verified! Redirecting...")})
	if err != nil || out.Failed() {
		return out, err
	}
	out.Navigate = goTo("/update-password", RedirectDelay, NavState{Email: nav.Email, ResetToken: token})
	return out, nil
}

// EnterUpdatePassword returns a redirect when the page was opened without
// a reset token.
func EnterUpdatePassword(nav NavState) *Navigation {
	if nav.ResetToken == "" {
		return goTo("/forgot-password", 0, NavState{})
	}
	return nil
}

// UpdatePassword sets the new password.
func (p *Pages) UpdatePassword(ctx context.Context, nav NavState, f forms.UpdatePassword) (Outcome, error) {
	if to := EnterUpdatePassword(nav); to != nil {
		return Outcome{Navigate: to}, nil
	}
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	return p.submit(ctx, "update-password", "Failed to update password. Please try again.",
		func() error { return p.svc.Auth.UpdatePassword(ctx, nav.ResetToken, f.NewPassword) },
		Outcome{
			Banner:   success("Password updated successfully!"),
			Navigate: goTo(guard.PathLogin, RedirectDelay, NavState{}),
		})
}

// Logout ends the session and forgets the last search, which belonged to
// the previous user.
func (p *Pages) Logout(ctx context.Context) (Outcome, error) {
	if err := p.session.Logout(ctx); err != nil {
		p.logger.Warn("logout", "error", err)
	}
	if p.snapshots != nil {
		if err := p.snapshots.ClearSnapshot(ctx, p.owner); err != nil {
			p.logger.Warn("clear search snapshot", "error", err)
		}
	}
	return settle(ctx, Outcome{
		Banner:   info("You have been logged out."),
		Navigate: goTo(guard.PathLogin, 0, NavState{}),
	})
}
