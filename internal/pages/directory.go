package pages

import (
	"context"
	"errors"
	"time"

	"github.com/me/bizdir/internal/claim"
	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/search"
	"github.com/me/bizdir/pkg/model"
)

// HomeView is the search page.
type HomeView struct {
	User         *model.User
	Location     string
	Type         string
	Results      []model.Business
	Searched     bool
	Banner       Banner
	Errors       forms.Errors
	PopularTypes []string
}

// CanClaim reports whether the viewer may claim b from the result list.
func (v HomeView) CanClaim(b model.Business) bool {
	return model.Can(model.RoleOf(v.User), b.Ownership(v.User), model.ActionClaim)
}

// Home opens the search page and restores the last search, if any.
func (p *Pages) Home(ctx context.Context) HomeView {
	v := HomeView{User: p.User(), PopularTypes: search.PopularTypes}
	if p.snapshots == nil {
		return v
	}
	snap, err := p.snapshots.LoadSnapshot(ctx, p.owner)
	if err != nil {
		p.logger.Warn("load search snapshot", "error", err)
		return v
	}
	if snap != nil {
		v.Location = snap.Location
		v.Type = snap.Type
		v.Results = snap.Results
		v.Searched = snap.Searched
	}
	return v
}

// Search runs a search and replaces the stored snapshot.
func (p *Pages) Search(ctx context.Context, f forms.Search) (HomeView, error) {
	v := HomeView{User: p.User(), PopularTypes: search.PopularTypes, Location: f.Location, Type: f.Type}
	if errs := f.Validate(); !errs.OK() {
		v.Banner = failure(errs.First())
		v.Errors = errs
		return v, nil
	}
	v.Location, v.Type = f.Location, f.Type

	results, err := search.Run(ctx, p.svc.Business, p.snapshots, p.owner, f.Location, f.Type, p.logger)
	if ctx.Err() != nil {
		return HomeView{}, ErrAbandoned
	}
	v.Searched = true
	if err != nil {
		p.logger.Warn("search failed", "location", f.Location, "type", f.Type, "error", err)
		v.Banner = failure(model.MessageOf(err, "Search failed. Please try again."))
		return v, nil
	}
	v.Results = results
	return v, nil
}

// ProfileView is the business profile page.
type ProfileView struct {
	User          *model.User
	Business      *model.Business
	Items         []model.Item
	Offers        []model.Offer
	Announcements []model.Announcement
	Polls         []PollView
	Banner        Banner

	CanClaim      bool
	CanManage     bool
	ShowDashboard bool
	DirectionsURL string
}

// ActiveOffers returns the offers that have not expired at now.
func (v ProfileView) ActiveOffers(now time.Time) []model.Offer {
	var out []model.Offer
	for _, o := range v.Offers {
		if !o.IsExpired(now) {
			out = append(out, o)
		}
	}
	return out
}

// BusinessProfile loads a business and, once it is claimed, its content.
// Content load failures are logged and leave the section empty.
func (p *Pages) BusinessProfile(ctx context.Context, placeID string) (ProfileView, error) {
	user := p.User()
	v := ProfileView{User: user}

	b, err := p.svc.Business.Profile(ctx, placeID)
	if ctx.Err() != nil {
		return ProfileView{}, ErrAbandoned
	}
	if err != nil {
		p.logger.Warn("load business", "place_id", placeID, "error", err)
		v.Banner = failure(model.MessageOf(err, "Failed to load business profile"))
		return v, nil
	}
	v.Business = b
	role, own := model.RoleOf(user), b.Ownership(user)
	v.CanClaim = model.Can(role, own, model.ActionClaim)
	v.CanManage = model.Can(role, own, model.ActionManageContent)
	v.ShowDashboard = v.CanManage
	v.DirectionsURL = b.DirectionsURL()

	if !b.Claimed {
		return v, nil
	}
	content := p.svc.Content
	if v.Items, err = content.Items(ctx, b.PlaceID); err != nil {
		p.logger.Warn("load items", "place_id", b.PlaceID, "error", err)
	}
	if v.Offers, err = content.Offers(ctx, b.PlaceID); err != nil {
		p.logger.Warn("load offers", "place_id", b.PlaceID, "error", err)
	}
	if v.Announcements, err = content.Announcements(ctx, b.PlaceID); err != nil {
		p.logger.Warn("load announcements", "place_id", b.PlaceID, "error", err)
	}
	polls, err := content.Polls(ctx, b.PlaceID)
	if err != nil {
		p.logger.Warn("load polls", "place_id", b.PlaceID, "error", err)
	}
	for _, poll := range polls {
		v.Polls = append(v.Polls, NewPollView(poll, user))
	}
	if ctx.Err() != nil {
		return ProfileView{}, ErrAbandoned
	}
	return v, nil
}

// StartClaim loads the business and opens a claim flow for it. Only
// owners may claim, and only businesses nobody has claimed yet.
func (p *Pages) StartClaim(ctx context.Context, placeID string) (*claim.Flow, error) {
	return p.ResumeClaim(ctx, placeID, claim.StepEmail, "")
}

// ResumeClaim is StartClaim for a flow already at step.
func (p *Pages) ResumeClaim(ctx context.Context, placeID string, step claim.Step, email string) (*claim.Flow, error) {
	b, err := p.svc.Business.Profile(ctx, placeID)
	if ctx.Err() != nil {
		return nil, ErrAbandoned
	}
	if err != nil {
		return nil, err
	}
	user := p.User()
	// A business claimed by the caller mid-flow still needs its details.
	// Only the backend's record of the claim lets the flow resume there.
	own := b.Ownership(user)
	verified := own.Owned
	if step == claim.StepDetails && verified {
		own.Claimed = false
	}
	if !model.Can(model.RoleOf(user), own, model.ActionClaim) {
		return nil, ErrForbidden
	}
	return claim.Resume(p.svc.Business, *b, step, email, verified, p.logger), nil
}

// ClaimOutcome turns the state of a flow after a submit into an Outcome.
func ClaimOutcome(f *claim.Flow, err error) Outcome {
	var terr *model.InvalidTransitionError
	switch {
	case f.Done():
		return Outcome{
			Banner:   success("Business claimed successfully!"),
			Navigate: goTo(guard.BusinessPath(f.Business().PlaceID), RedirectDelay, NavState{}),
		}
	case errors.As(err, &terr):
		return Outcome{Banner: failure("Please complete the previous step first")}
	case f.Banner() != "":
		return Outcome{Banner: failure(f.Banner()), Errors: f.FieldErrors()}
	case f.Step() == claim.StepOTP:
		return Outcome{Banner: info("A verification code was sent to " + f.Email())}
	}
	return Outcome{}
}
