package service

import (
	"context"
	"errors"

	"github.com/me/bizdir/pkg/model"
)

// AuthService wraps the /user endpoints.
type AuthService struct {
	backend Backend
}

// NewAuthService creates an AuthService.
func NewAuthService(b Backend) *AuthService {
	return &AuthService{backend: b}
}

// Signup registers a new account. The backend emails an OTP to verify it.
func (s *AuthService) Signup(ctx context.Context, email, password, name string, role model.Role) error {
	if role == "" {
		role = model.RoleUser
	}
	_, err := s.backend.Post(ctx, "auth.signup", "/user/signup", map[string]any{
		"email":    email,
		"password": password,
		"name":     name,
		"role":     role,
	})
	if err != nil {
		return normalize("auth.signup", "Signup failed", err)
	}
	return nil
}

// VerifyEmail confirms a new account with the emailed OTP.
func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) error {
	_, err := s.backend.Post(ctx, "auth.verify_email", "/user/verify-email", map[string]any{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return normalize("auth.verify_email", "Email verification failed", err)
	}
	return nil
}

// Login exchanges credentials; the backend sets the session cookie.
func (s *AuthService) Login(ctx context.Context, email, password string) error {
	_, err := s.backend.Post(ctx, "auth.login", "/user/login", map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return normalize("auth.login", "Login failed", err)
	}
	return nil
}

// ForgotPassword asks the backend to email a password reset OTP.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := s.backend.Post(ctx, "auth.forgot_password", "/user/forgot-password", map[string]any{
		"email": email,
	})
	if err != nil {
		return normalize("auth.forgot_password", "Password reset request failed", err)
	}
	return nil
}

// VerifyOTP checks a password reset OTP and returns the reset token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	const op, fallback = "auth.verify_otp", "OTP verification failed"
	resp, err := s.backend.Post(ctx, op, "/user/verify-otp", map[string]any{
		"email": email,
		"otp":   otp,
	})
	if err != nil {
		return "", normalize(op, fallback, err)
	}
	token := stringAt(resp, "data.resetToken", "resetToken")
	if token == "" {
		return "", malformed(op, fallback, errors.New("reply has no reset token"))
	}
	return token, nil
}

// UpdatePassword sets a new password using a reset token.
func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	_, err := s.backend.Post(ctx, "auth.update_password", "/user/update-password", map[string]any{
		"resetToken":  resetToken,
		"newPassword": newPassword,
	})
	if err != nil {
		return normalize("auth.update_password", "Password update failed", err)
	}
	return nil
}

// Logout asks the backend to clear the session cookie.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.backend.Post(ctx, "auth.logout", "/user/logout", nil); err != nil {
		return normalize("auth.logout", "Logout failed", err)
	}
	return nil
}

// Me returns the user behind the current session cookie. A reply without a
// user object is an error, the same as a 401.
func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	const op, fallback = "auth.me", "Not authenticated"
	resp, err := s.backend.Get(ctx, op, "/user/me", nil)
	if err != nil {
		return nil, normalize(op, fallback, err)
	}
	user, err := decodeObject[model.User](resp, "user", "data.user")
	if err != nil {
		return nil, malformed(op, fallback, err)
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	return user, nil
}
