package ui

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/bizdir/internal/forms"
	"github.com/me/bizdir/internal/pages"
	"github.com/me/bizdir/pkg/model"
)

// HandleOwnerHome renders the owner dashboard.
func (ui *UI) HandleOwnerHome(w http.ResponseWriter, r *http.Request) {
	v, err := loadFrom(r.Context()).pages.OwnerHome(r.Context())
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	data := map[string]any{"Title": "Owner Dashboard", "View": v}
	if !v.Banner.IsZero() {
		data["Banner"] = v.Banner
	}
	ui.render(w, r, http.StatusOK, "owner", data)
}

// section is one management page of a business.
type section[T any] struct {
	name  string // template name
	title string
	load  func(*pages.Pages, context.Context, string) (pages.ListView[T], error)
}

var (
	itemsSection         = section[model.Item]{"items", "Manage Items", (*pages.Pages).Items}
	offersSection        = section[model.Offer]{"offers", "Manage Offers", (*pages.Pages).Offers}
	pollsSection         = section[model.Poll]{"polls", "Manage Polls", (*pages.Pages).Polls}
	announcementsSection = section[model.Announcement]{"announcements", "Manage Announcements", (*pages.Pages).Announcements}
)

// showList renders a management page. out is the outcome of a submit, or
// nil for a plain page load. A change that succeeded redirects back to the
// page, which is then loaded by the following GET.
func showList[T any](ui *UI, w http.ResponseWriter, r *http.Request, sec section[T], form any, out *pages.Outcome) {
	if out != nil && out.Navigate != nil && out.Navigate.After == 0 {
		ui.respond(w, r, sec.name, nil, *out)
		return
	}
	v, err := sec.load(loadFrom(r.Context()).pages, r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		ui.fail(w, r, err)
		return
	}
	data := map[string]any{
		"Title":   sec.title,
		"PlaceID": v.PlaceID,
		"View":    v,
		"Form":    form,
	}
	if out != nil {
		ui.respond(w, r, sec.name, data, *out)
		return
	}
	if !v.Banner.IsZero() {
		data["Banner"] = v.Banner
	}
	ui.render(w, r, http.StatusOK, sec.name, data)
}

// ownerActions are the submits of a management page by "action" form field.
type ownerActions map[string]func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error)

// ownerAction runs the submit named by the request.
func ownerAction(w http.ResponseWriter, r *http.Request, ui *UI, actions ownerActions) (pages.Outcome, bool) {
	if !ui.parseForm(w, r) {
		return pages.Outcome{}, false
	}
	run, ok := actions[r.FormValue("action")]
	if !ok {
		ui.renderError(w, r, http.StatusBadRequest, "Unknown action")
		return pages.Outcome{}, false
	}
	out, err := run(loadFrom(r.Context()).pages, r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		ui.fail(w, r, err)
		return pages.Outcome{}, false
	}
	return out, true
}

// --- Items ---

func newItemForm() forms.Item {
	return forms.Item{Available: true}
}

// HandleItems renders the item manager.
func (ui *UI) HandleItems(w http.ResponseWriter, r *http.Request) {
	showList(ui, w, r, itemsSection, newItemForm(), nil)
}

// HandleItemsPost adds, updates or deletes an item.
func (ui *UI) HandleItemsPost(w http.ResponseWriter, r *http.Request) {
	f := newItemForm()
	out, ok := ownerAction(w, r, ui, ownerActions{
		"add": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			f = forms.Item{
				Name:      r.FormValue("name"),
				Price:     r.FormValue("price"),
				Available: r.FormValue("available") != "",
			}
			return p.AddItem(ctx, placeID, f)
		},
		"availability": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			return p.SetItemAvailability(ctx, placeID, r.FormValue("id"), r.FormValue("available") == "true")
		},
		"delete": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			return p.DeleteItem(ctx, placeID, r.FormValue("id"))
		},
	})
	if ok {
		showList(ui, w, r, itemsSection, f, &out)
	}
}

// --- Offers ---

// HandleOffers renders the offer manager.
func (ui *UI) HandleOffers(w http.ResponseWriter, r *http.Request) {
	showList(ui, w, r, offersSection, forms.Offer{}, nil)
}

// HandleOffersPost creates or deletes an offer.
func (ui *UI) HandleOffersPost(w http.ResponseWriter, r *http.Request) {
	var f forms.Offer
	out, ok := ownerAction(w, r, ui, ownerActions{
		"add": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			f = forms.Offer{
				Title:       r.FormValue("title"),
				Description: r.FormValue("description"),
				ValidTill:   r.FormValue("validTill"),
			}
			return p.CreateOffer(ctx, placeID, f)
		},
		"delete": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			return p.DeleteOffer(ctx, placeID, r.FormValue("id"))
		},
	})
	if ok {
		showList(ui, w, r, offersSection, f, &out)
	}
}

// --- Polls ---

// pollForm keeps two option inputs on an empty form.
func pollForm(f forms.Poll) forms.Poll {
	for len(f.Options) < 2 {
		f.Options = append(f.Options, "")
	}
	return f
}

// HandlePolls renders the poll manager.
func (ui *UI) HandlePolls(w http.ResponseWriter, r *http.Request) {
	showList(ui, w, r, pollsSection, pollForm(forms.Poll{}), nil)
}

// HandlePollsPost creates, ends or deletes a poll.
func (ui *UI) HandlePollsPost(w http.ResponseWriter, r *http.Request) {
	var f forms.Poll
	out, ok := ownerAction(w, r, ui, ownerActions{
		"add": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			f = forms.Poll{Question: r.FormValue("question"), Options: r.Form["options"]}
			return p.CreatePoll(ctx, placeID, f)
		},
		"end": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			return p.EndPoll(ctx, placeID, r.FormValue("id"))
		},
		"delete": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			return p.DeletePoll(ctx, placeID, r.FormValue("id"))
		},
	})
	if ok {
		showList(ui, w, r, pollsSection, pollForm(f), &out)
	}
}

// --- Announcements ---

// HandleAnnouncements renders the announcement manager.
func (ui *UI) HandleAnnouncements(w http.ResponseWriter, r *http.Request) {
	showList(ui, w, r, announcementsSection, forms.Announcement{}, nil)
}

// HandleAnnouncementsPost posts or deletes an announcement.
func (ui *UI) HandleAnnouncementsPost(w http.ResponseWriter, r *http.Request) {
	var f forms.Announcement
	out, ok := ownerAction(w, r, ui, ownerActions{
		"add": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			f = forms.Announcement{Title: r.FormValue("title"), Message: r.FormValue("message")}
			return p.CreateAnnouncement(ctx, placeID, f)
		},
		"delete": func(p *pages.Pages, ctx context.Context, placeID string) (pages.Outcome, error) {
			return p.DeleteAnnouncement(ctx, placeID, r.FormValue("id"))
		},
	})
	if ok {
		showList(ui, w, r, announcementsSection, f, &out)
	}
}
