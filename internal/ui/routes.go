package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/bizdir/internal/guard"
)

// RegisterRoutes registers all UI routes on the given router.
func (ui *UI) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(ui.VisitorMiddleware)
		r.Use(ui.RateLimitMiddleware)

		r.Post("/logout", ui.HandleLogout)

		// Every page goes through the guard.
		r.Group(func(r chi.Router) {
			r.Use(ui.GuardMiddleware)

			// Account pages
			r.Get("/signup", ui.HandleSignup)
			r.Post("/signup", ui.HandleSignupPost)
			r.Get("/signup-owner", ui.HandleSignup)
			r.Post("/signup-owner", ui.HandleSignupPost)
			r.Get("/verify-email", ui.HandleVerifyEmail)
			r.Post("/verify-email", ui.HandleVerifyEmailPost)
			r.Get("/login", ui.HandleLogin)
			r.Post("/login", ui.HandleLoginPost)
			r.Get("/forgot-password", ui.HandleForgotPassword)
			r.Post("/forgot-password", ui.HandleForgotPasswordPost)
			r.Get("/verify-otp", ui.HandleVerifyOTP)
			r.Post("/verify-otp", ui.HandleVerifyOTPPost)
			r.Get("/update-password", ui.HandleUpdatePassword)
			r.Post("/update-password", ui.HandleUpdatePasswordPost)

			// Directory
			r.Get("/", ui.HandleHome)
			r.Post("/", ui.HandleSearch)
			r.Get("/business/{placeId}", ui.HandleBusiness)
			r.Post("/business/{placeId}", ui.HandleBusinessPost)

			// Owner dashboard
			r.Route("/owner", func(r chi.Router) {
				r.Get("/", ui.HandleOwnerHome)
				r.Route("/{placeId}", func(r chi.Router) {
					r.Get("/items", ui.HandleItems)
					r.Post("/items", ui.HandleItemsPost)
					r.Get("/offers", ui.HandleOffers)
					r.Post("/offers", ui.HandleOffersPost)
					r.Get("/polls", ui.HandlePolls)
					r.Post("/polls", ui.HandlePollsPost)
					r.Get("/announcements", ui.HandleAnnouncements)
					r.Post("/announcements", ui.HandleAnnouncementsPost)
				})
			})
		})
	})

	// Unknown paths go home, like the guard does for unknown routes.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, guard.PathHome, http.StatusSeeOther)
	})
}

// RouteLabel returns the matched route pattern of r, for metrics.
func RouteLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
