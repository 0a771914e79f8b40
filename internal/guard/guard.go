// Package guard decides, for a path and a session state, whether a page is
// rendered, the caller is redirected, or a loading placeholder is shown.
// Both front ends consult it before dispatching a page.
package guard

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/me/bizdir/internal/session"
	"github.com/me/bizdir/pkg/model"
)

// Access is the requirement a route places on the session.
type Access int

const (
	Public    Access = iota // anyone
	Protected               // any authenticated user
	OwnerOnly               // authenticated users with the owner role
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case OwnerOnly:
		return "owner"
	default:
		return "unknown"
	}
}

// Route names.
const (
	RouteSignup             = "signup"
	RouteOwnerSignup        = "signup-owner"
	RouteVerifyEmail        = "verify-email"
	RouteLogin              = "login"
	RouteForgotPassword     = "forgot-password"
	RouteVerifyOTP          = "verify-otp"
	RouteUpdatePassword     = "update-password"
	RouteHome               = "home"
	RouteBusiness           = "business"
	RouteOwnerHome          = "owner-home"
	RouteOwnerItems         = "owner-items"
	RouteOwnerOffers        = "owner-offers"
	RouteOwnerPolls         = "owner-polls"
	RouteOwnerAnnouncements = "owner-announcements"
)

// Paths used as redirect targets.
const (
	PathHome  = "/"
	PathLogin = "/login"
	PathOwner = "/owner"
)

// Route is one entry of the route table.
type Route struct {
	Name    string
	Pattern string
	Access  Access
}

// Routes is the application route table.
var Routes = []Route{
	{RouteSignup, "/signup", Public},
	{RouteOwnerSignup, "/signup-owner", Public},
	{RouteVerifyEmail, "/verify-email", Public},
	{RouteLogin, "/login", Public},
	{RouteForgotPassword, "/forgot-password", Public},
	{RouteVerifyOTP, "/verify-otp", Public},
	{RouteUpdatePassword, "/update-password", Public},
	{RouteHome, "/", Protected},
	{RouteBusiness, "/business/{placeId}", Protected},
	{RouteOwnerHome, "/owner", OwnerOnly},
	{RouteOwnerItems, "/owner/{placeId}/items", OwnerOnly},
	{RouteOwnerOffers, "/owner/{placeId}/offers", OwnerOnly},
	{RouteOwnerPolls, "/owner/{placeId}/polls", OwnerOnly},
	{RouteOwnerAnnouncements, "/owner/{placeId}/announcements", OwnerOnly},
}

// Kind is the kind of a Decision.
type Kind int

const (
	Render Kind = iota
	Redirect
	Placeholder
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Placeholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Resolve. Route and Params are set for Render;
// Target is set for Redirect.
type Decision struct {
	Kind   Kind
	Route  Route
	Params map[string]string
	Target string
}

// Param returns a path parameter of the matched route.
func (d Decision) Param(key string) string {
	return d.Params[key]
}

// Guard matches paths against the route table.
type Guard struct {
	mux       *chi.Mux
	byPattern map[string]Route
}

// New builds a Guard over routes.
func New(routes []Route) *Guard {
	g := &Guard{mux: chi.NewRouter(), byPattern: make(map[string]Route, len(routes))}
	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		g.mux.Get(r.Pattern, noop)
		g.byPattern[r.Pattern] = r
	}
	return g
}

var defaultGuard = New(Routes)

// Resolve applies the application route table. See Guard.Resolve.
func Resolve(path string, st session.State) Decision {
	return defaultGuard.Resolve(path, st)
}

// Resolve decides what to show at path for the session st. While the
// session is loading no route is evaluated. Unknown paths redirect home.
func (g *Guard) Resolve(path string, st session.State) Decision {
	if st.Loading {
		return Decision{Kind: Placeholder}
	}
	route, params, ok := g.match(path)
	if !ok {
		return Decision{Kind: Redirect, Target: PathHome}
	}

	switch route.Access {
	case Protected:
		if !st.IsAuthenticated {
			return Decision{Kind: Redirect, Target: PathLogin}
		}
	case OwnerOnly:
		if !st.IsAuthenticated {
			return Decision{Kind: Redirect, Target: PathLogin}
		}
		if !model.Can(st.Role(), model.Ownership{}, model.ActionViewOwnerDashboard) {
			return Decision{Kind: Redirect, Target: PathHome}
		}
	}
	return Decision{Kind: Render, Route: route, Params: params}
}

func (g *Guard) match(path string) (Route, map[string]string, bool) {
	if path == "" || !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rctx := chi.NewRouteContext()
	if !g.mux.Match(rctx, http.MethodGet, path) {
		return Route{}, nil, false
	}
	route, ok := g.byPattern[rctx.RoutePattern()]
	if !ok {
		return Route{}, nil, false
	}
	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		params[k] = rctx.URLParams.Values[i]
	}
	return route, params, true
}

// LandingFor returns where a user goes after logging in.
func LandingFor(u *model.User) string {
	if model.Can(model.RoleOf(u), model.Ownership{}, model.ActionViewOwnerDashboard) {
		return PathOwner
	}
	return PathHome
}

// BusinessPath returns the profile path of a business.
func BusinessPath(placeID string) string {
	return "/business/" + placeID
}

// OwnerPath returns the path of one owner management page, e.g.
// OwnerPath("p1", "items").
func OwnerPath(placeID, section string) string {
	return "/owner/" + placeID + "/" + section
}
