package pages

import (
	"context"
	"errors"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/guard"
	"github.com/me/bizdir/internal/service"
	"github.com/me/bizdir/pkg/model"
)

// OwnerHomeView is the owner dashboard.
type OwnerHomeView struct {
	User       *model.User
	Businesses []model.Business
	Banner     Banner
}

// OwnerHome lists the businesses claimed by the session user.
func (p *Pages) OwnerHome(ctx context.Context) (OwnerHomeView, error) {
	v := OwnerHomeView{User: p.User()}
	list, err := p.svc.Business.MyBusinesses(ctx)
	if ctx.Err() != nil {
		return OwnerHomeView{}, ErrAbandoned
	}
	if err != nil {
		p.logger.Warn("load owner businesses", "error", err)
		v.Banner = failure(model.MessageOf(err, "Failed to load your businesses"))
		return v, nil
	}
	v.Businesses = list
	return v, nil
}

// ListView is a management page: the content of one business of a kind.
type ListView[T any] struct {
	PlaceID string
	Entries []T
	Banner  Banner
}

// manage checks that the session user owns the business at placeID, and
// so may manage its content. A failed lookup is returned as is.
func (p *Pages) manage(ctx context.Context, placeID string) error {
	b, err := p.svc.Business.Profile(ctx, placeID)
	if ctx.Err() != nil {
		return ErrAbandoned
	}
	if err != nil {
		return err
	}
	user := p.User()
	if !model.Can(model.RoleOf(user), b.Ownership(user), model.ActionManageContent) {
		p.logger.Warn("manage denied", "place_id", placeID, "owner", b.OwnerID)
		return ErrForbidden
	}
	return nil
}

func refused(err error) bool {
	return errors.Is(err, ErrAbandoned) || errors.Is(err, ErrForbidden)
}

func loadList[T any](ctx context.Context, p *Pages, placeID, what string, load func(context.Context, string) ([]T, error)) (ListView[T], error) {
	v := ListView[T]{PlaceID: placeID}
	if err := p.manage(ctx, placeID); err != nil {
		if refused(err) {
			return ListView[T]{}, err
		}
		p.logger.Warn("load business", "place_id", placeID, "error", err)
		v.Banner = failure(model.MessageOf(err, "Failed to load business profile"))
		return v, nil
	}
	entries, err := load(ctx, placeID)
	if ctx.Err() != nil {
		return ListView[T]{}, ErrAbandoned
	}
	if err != nil {
		p.logger.Warn("load "+what, "place_id", placeID, "error", err)
		v.Banner = failure(model.MessageOf(err, "Failed to load "+what))
		return v, nil
	}
	v.Entries = entries
	return v, nil
}

// change runs one content change of the business at placeID once its
// ownership is confirmed.
func (p *Pages) change(ctx context.Context, placeID, page, fallback string, call func() error, ok Outcome) (Outcome, error) {
	if err := p.manage(ctx, placeID); err != nil {
		if refused(err) {
			return Outcome{}, err
		}
		return Outcome{Banner: failure(model.MessageOf(err, fallback))}, nil
	}
	return p.submit(ctx, page, fallback, call, ok)
}

// stay reloads the management page after a change.
func stay(placeID, section, text string) Outcome {
	return Outcome{
		Banner:   success(text),
		Navigate: goTo(guard.OwnerPath(placeID, section), 0, NavState{}),
	}
}

// --- Items ---

// Items lists the items of a business.
func (p *Pages) Items(ctx context.Context, placeID string) (ListView[model.Item], error) {
	return loadList(ctx, p, placeID, "items", p.svc.Content.Items)
}

// AddItem creates an item.
func (p *Pages) AddItem(ctx context.Context, placeID string, f forms.Item) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	item := service.NewItem{PlaceID: placeID, Name: f.Name, Price: f.PriceValue(), Available: f.Available}
	return p.change(ctx, placeID, "add-item", "Failed to add item",
		func() error { return p.svc.Content.CreateItem(ctx, item) },
		stay(placeID, "items", "Item added successfully!"))
}

// SetItemAvailability marks an item in or out of stock.
func (p *Pages) SetItemAvailability(ctx context.Context, placeID, itemID string, available bool) (Outcome, error) {
	return p.change(ctx, placeID, "item-availability", "Failed to update item",
		func() error { return p.svc.Content.SetItemAvailability(ctx, itemID, available) },
		stay(placeID, "items", "Item updated"))
}

// DeleteItem removes an item.
func (p *Pages) DeleteItem(ctx context.Context, placeID, itemID string) (Outcome, error) {
	return p.change(ctx, placeID, "delete-item", "Failed to delete item",
		func() error { return p.svc.Content.DeleteItem(ctx, itemID) },
		stay(placeID, "items", "Item deleted"))
}

// --- Offers ---

// Offers lists the offers of a business.
func (p *Pages) Offers(ctx context.Context, placeID string) (ListView[model.Offer], error) {
	return loadList(ctx, p, placeID, "offers", p.svc.Content.Offers)
}

// CreateOffer creates an offer.
func (p *Pages) CreateOffer(ctx context.Context, placeID string, f forms.Offer) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	offer := service.NewOffer{PlaceID: placeID, Title: f.Title, Description: f.Description, ValidTill: f.ValidTill}
	return p.change(ctx, placeID, "create-offer", "Failed to create offer",
		func() error { return p.svc.Content.CreateOffer(ctx, offer) },
		stay(placeID, "offers", "Offer created successfully!"))
}

// DeleteOffer removes an offer.
func (p *Pages) DeleteOffer(ctx context.Context, placeID, offerID string) (Outcome, error) {
	return p.change(ctx, placeID, "delete-offer", "Failed to delete offer",
		func() error { return p.svc.Content.DeleteOffer(ctx, offerID) },
		stay(placeID, "offers", "Offer deleted"))
}

// --- Polls ---

// Polls lists the polls of a business.
func (p *Pages) Polls(ctx context.Context, placeID string) (ListView[model.Poll], error) {
	return loadList(ctx, p, placeID, "polls", p.svc.Content.Polls)
}

// CreatePoll creates a poll from the non-blank options.
func (p *Pages) CreatePoll(ctx context.Context, placeID string, f forms.Poll) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	poll := service.NewPoll{PlaceID: placeID, Question: f.Question, Options: f.Options}
	return p.change(ctx, placeID, "create-poll", "Failed to create poll",
		func() error { return p.svc.Content.CreatePoll(ctx, poll) },
		stay(placeID, "polls", "Poll created successfully!"))
}

// EndPoll closes a poll to further votes.
func (p *Pages) EndPoll(ctx context.Context, placeID, pollID string) (Outcome, error) {
	return p.change(ctx, placeID, "end-poll", "Failed to end poll",
		func() error { return p.svc.Content.EndPoll(ctx, pollID) },
		stay(placeID, "polls", "Poll ended"))
}

// DeletePoll removes a poll.
func (p *Pages) DeletePoll(ctx context.Context, placeID, pollID string) (Outcome, error) {
	return p.change(ctx, placeID, "delete-poll", "Failed to delete poll",
		func() error { return p.svc.Content.DeletePoll(ctx, pollID) },
		stay(placeID, "polls", "Poll deleted"))
}

// --- Announcements ---

// Announcements lists the announcements of a business.
func (p *Pages) Announcements(ctx context.Context, placeID string) (ListView[model.Announcement], error) {
	return loadList(ctx, p, placeID, "announcements", p.svc.Content.Announcements)
}

// CreateAnnouncement posts an announcement.
func (p *Pages) CreateAnnouncement(ctx context.Context, placeID string, f forms.Announcement) (Outcome, error) {
	if errs := f.Validate(); !errs.OK() {
		return invalid(errs), nil
	}
	a := service.NewAnnouncement{PlaceID: placeID, Title: f.Title, Message: f.Message}
	return p.change(ctx, placeID, "create-announcement", "Failed to create announcement",
		func() error { return p.svc.Content.CreateAnnouncement(ctx, a) },
		stay(placeID, "announcements", "Announcement posted successfully!"))
}

// DeleteAnnouncement removes an announcement.
func (p *Pages) DeleteAnnouncement(ctx context.Context, placeID, id string) (Outcome, error) {
	return p.change(ctx, placeID, "delete-announcement", "Failed to delete announcement",
		func() error { return p.svc.Content.DeleteAnnouncement(ctx, id) },
		stay(placeID, "announcements", "Announcement deleted"))
}
