package ui

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/me/bizdir/internal/claim"
	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

// HandleHome renders the search page with the visitor's last search.
func (ui *UI) HandleHome(w http.ResponseWriter, r *http.Request) {
	v := loadFrom(r.Context()).pages.Home(r.Context())
	ui.render(w, r, http.StatusOK, "home", map[string]any{
		"Title": "Search Businesses",
		"View":  v,
	})
}

// HandleSearch runs a search.
func (ui *UI) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	f := forms.Search{Location: r.FormValue("location"), Type: r.FormValue("type")}
	v, err := loadFrom(r.Context()).pages.Search(r.Context(), f)
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if v.Banner.Kind == pages.BannerError {
		status = http.StatusUnprocessableEntity
	}
	errs := v.Errors
	if errs == nil {
		errs = forms.Errors{}
	}
	ui.render(w, r, status, "home", map[string]any{
		"Title":  "Search Businesses",
		"View":   v,
		"Banner": v.Banner,
		"Errors": errs,
	})
}

// claimView is the state of the claim form on a profile page.
type claimView struct {
	Step    string
	Number  int
	Email   string
	Details model.BusinessInfo
}

func claimViewOf(f *claim.Flow) *claimView {
	if f == nil || f.Done() {
		return nil
	}
	return &claimView{
		Step:    f.Step().String(),
		Number:  f.Step().Number(),
		Email:   f.Email(),
		Details: f.Details(),
	}
}

func parseStep(s string) claim.Step {
	switch s {
	case claim.StepOTP.String():
		return claim.StepOTP
	case claim.StepDetails.String():
		return claim.StepDetails
	default:
		return claim.StepEmail
	}
}

func profileData(v pages.ProfileView, c *claimView) map[string]any {
	title := "Business"
	if v.Business != nil {
		title = v.Business.Name
	}
	return map[string]any{
		"Title":  title,
		"View":   v,
		"Offers": v.ActiveOffers(time.Now()),
		"Claim":  c,
	}
}

// HandleBusiness renders a business profile. "?claim=1" opens the claim
// form for a business the visitor may claim.
func (ui *UI) HandleBusiness(w http.ResponseWriter, r *http.Request) {
	v, err := loadFrom(r.Context()).pages.BusinessProfile(r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	var c *claimView
	if v.CanClaim && r.URL.Query().Get("claim") != "" {
		c = &claimView{Step: claim.StepEmail.String(), Number: claim.StepEmail.Number()}
	}
	data := profileData(v, c)
	if !v.Banner.IsZero() {
		data["Banner"] = v.Banner
	}
	ui.render(w, r, http.StatusOK, "business", data)
}

// HandleBusinessPost handles the forms of a profile page: a vote or one
// step of the claim flow.
func (ui *UI) HandleBusinessPost(w http.ResponseWriter, r *http.Request) {
	if !ui.parseForm(w, r) {
		return
	}
	switch r.FormValue("action") {
	case "vote":
		ui.vote(w, r)
	case "claim":
		ui.claim(w, r)
	default:
		ui.renderError(w, r, http.StatusBadRequest, "Unknown action")
	}
}

func (ui *UI) vote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := loadFrom(ctx).pages
	v, err := p.BusinessProfile(ctx, chi.URLParam(r, "placeId"))
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	if v.Business == nil {
		ui.respond(w, r, "business", profileData(v, nil), pages.Outcome{Banner: v.Banner})
		return
	}

	pollID := r.FormValue("poll")
	var poll *model.Poll
	for i := range v.Polls {
		if v.Polls[i].Poll.ID == pollID {
			poll = &v.Polls[i].Poll
			break
		}
	}
	if poll == nil {
		ui.respond(w, r, "business", profileData(v, nil), pages.Outcome{
			Banner: pages.Banner{Kind: pages.BannerError, Text: "Poll not found"},
		})
		return
	}

	index := -1
	if s := r.FormValue("option"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			index = n
		}
	}
	out, err := p.Vote(ctx, *poll, index)
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	ui.respond(w, r, "business", profileData(v, nil), out)
}

func (ui *UI) claim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := loadFrom(ctx).pages
	placeID := chi.URLParam(r, "placeId")
	step := parseStep(r.FormValue("step"))

	flow, err := p.ResumeClaim(ctx, placeID, step, r.FormValue("email"))
	if errors.Is(err, pages.ErrAbandoned) || errors.Is(err, pages.ErrForbidden) {
		ui.fail(w, r, err)
		return
	}
	if err != nil {
		ui.respond(w, r, "business", profileData(pages.ProfileView{}, nil), pages.Outcome{
			Banner: pages.Banner{Kind: pages.BannerError, Text: model.MessageOf(err, "Failed to load business profile")},
		})
		return
	}

	switch {
	case r.FormValue("back") != "":
		err = flow.Back()
	case step == claim.StepEmail:
		err = flow.SubmitEmail(ctx, r.FormValue("businessEmail"))
	case step == claim.StepOTP:
		err = flow.SubmitOTP(ctx, r.FormValue("otp"))
	case step == claim.StepDetails:
		err = flow.SubmitDetails(ctx, model.BusinessInfo{
			Description: r.FormValue("description"),
			Phone:       r.FormValue("phone"),
			Website:     r.FormValue("website"),
			Hours:       r.FormValue("hours"),
		})
	}
	if ctx.Err() != nil {
		ui.fail(w, r, pages.ErrAbandoned)
		return
	}
	out := pages.ClaimOutcome(flow, err)

	v, perr := p.BusinessProfile(ctx, placeID)
	if perr != nil {
		ui.fail(w, r, perr)
		return
	}
	ui.respond(w, r, "business", profileData(v, claimViewOf(flow)), out)
}
