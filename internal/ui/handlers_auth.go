package ui

import (
	"net/http"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/pages"
)

func (ui *UI) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		ui.renderError(w, r, http.StatusBadRequest, "Invalid request")
		return false
	}
	return true
}

func isOwnerSignup(r *http.Request) bool {
	return r.URL.Path == "/signup-owner"
}

func signupData(r *http.Request, f forms.Signup) map[string]any {
	title := "Sign Up"
	if isOwnerSignup(r) {
		title = "Register Your Business"
	}
	return map[string]any{
		"Title":   title,
		"Heading": title,
		"Owner":   isOwnerSignup(r),
		"Action":  r.URL.Path,
		"Form":    f,
	}
}

// HandleSignup renders the user or owner signup page.
func (ui *UI) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ui.render(w, r, http.StatusOK, "signup", signupData(r, forms.Signup{}))
}

// HandleSignupPost creates the account.
func (ui *UI) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	f := forms.Signup{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	p := loadFrom(r.Context()).pages
	submit := p.Signup
	if isOwnerSignup(r) {
		submit = p.OwnerSignup
	}
	out, err := submit(r.Context(), f)
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	f.Password = ""
	ui.respond(w, r, "signup", signupData(r, f), out)
}

func otpData(title, action string, nav pages.NavState) map[string]any {
	return map[string]any{
		"Title":  title,
		"Action": action,
		"Email":  nav.Email,
	}
}

// HandleVerifyEmail renders the email verification page. It needs the
// email of a fresh signup.
func (ui *UI) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	nav := loadFrom(r.Context()).nav.State
	if to := pages.EnterVerifyEmail(nav); to != nil {
		ui.navigate(w, r, to)
		return
	}
	ui.render(w, r, http.StatusOK, "otp", otpData("Verify Email", "/verify-email", nav))
}

// HandleVerifyEmailPost checks the verification code.
func (ui *UI) HandleVerifyEmailPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	l := loadFrom(r.Context())
	out, err := l.pages.VerifyEmail(r.Context(), l.nav.State, forms.OTP{OTP: r.FormValue("otp")})
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	ui.respond(w, r, "otp", otpData("Verify Email", "/verify-email", l.nav.State), out)
}

// HandleLogin renders the login page.
func (ui *UI) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ui.render(w, r, http.StatusOK, "login", map[string]any{
		"Title": "Login",
		"Form":  forms.Login{},
	})
}

// HandleLoginPost logs in and sends the user to their landing page.
func (ui *UI) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	f := forms.Login{Email: r.FormValue("email"), Password: r.FormValue("password")}
	out, err := loadFrom(r.Context()).pages.Login(r.Context(), f)
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	f.Password = ""
	ui.respond(w, r, "login", map[string]any{"Title": "Login", "Form": f}, out)
}

// HandleLogout ends the session.
func (ui *UI) HandleLogout(w http.ResponseWriter, r *http.Request) {
	out, err := loadFrom(r.Context()).pages.Logout(r.Context())
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	ui.respond(w, r, "login", nil, out)
}

// HandleForgotPassword renders the password reset request page.
func (ui *UI) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ui.render(w, r, http.StatusOK, "forgot-password", map[string]any{"Title": "Forgot Password", "Email": ""})
}

// HandleForgotPasswordPost sends a reset code.
func (ui *UI) HandleForgotPasswordPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	f := forms.ForgotPassword{Email: r.FormValue("email")}
	out, err := loadFrom(r.Context()).pages.ForgotPassword(r.Context(), f)
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	ui.respond(w, r, "forgot-password", map[string]any{"Title": "Forgot Password", "Email": f.Email}, out)
}

// HandleVerifyOTP renders the reset code page. It needs the email the code
// was sent to.
func (ui *UI) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	nav := loadFrom(r.Context()).nav.State
	if to := pages.EnterVerifyOTP(nav); to != nil {
		ui.navigate(w, r, to)
		return
	}
	ui.render(w, r, http.StatusOK, "otp", otpData("Verify OTP", "/verify-otp", nav))
}

// HandleVerifyOTPPost exchanges the reset code for a reset token.
func (ui *UI) HandleVerifyOTPPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	l := loadFrom(r.Context())
	out, err := l.pages.VerifyOTP(r.Context(), l.nav.State, forms.OTP{OTP: r.FormValue("otp")})
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	ui.respond(w, r, "otp", otpData("Verify OTP", "/verify-otp", l.nav.State), out)
}

// HandleUpdatePassword renders the new password page. It needs a reset
// token.
func (ui *UI) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	if to := pages.EnterUpdatePassword(loadFrom(r.Context()).nav.State); to != nil {
		ui.navigate(w, r, to)
		return
	}
	ui.render(w, r, http.StatusOK, "update-password", map[string]any{"Title": "Update Password"})
}

// HandleUpdatePasswordPost sets the new password.
func (ui *UI) HandleUpdatePasswordPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	l := loadFrom(r.Context())
	f := forms.UpdatePassword{
		NewPassword:     r.FormValue("newPassword"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}
	out, err := l.pages.UpdatePassword(r.Context(), l.nav.State, f)
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	ui.respond(w, r, "update-password", map[string]any{"Title": "Update Password"}, out)
}
