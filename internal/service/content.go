package service

import (
	"context"

	"github.com/me/bizdir/pkg/model"
)

// ContentService wraps the /content endpoints an owner uses to manage a
// claimed business (items, offers, announcements, polls) and the public
// poll vote.
type ContentService struct {
	backend Backend
}

// NewContentService creates a ContentService.
func NewContentService(b Backend) *ContentService {
	return &ContentService{backend: b}
}

// NewItem is the create-item payload.
type NewItem struct {
	PlaceID   string  `json:"placeId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// NewOffer is the create-offer payload. ValidTill is YYYY-MM-DD.
type NewOffer struct {
	PlaceID     string `json:"placeId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ValidTill   string `json:"validTill"`
}

// NewAnnouncement is the create-announcement payload.
type NewAnnouncement struct {
	PlaceID string `json:"placeId"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewPoll is the create-poll payload.
type NewPoll struct {
	PlaceID  string   `json:"placeId"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// --- Items ---

// CreateItem adds a menu or catalogue item.
func (s *ContentService) CreateItem(ctx context.Context, item NewItem) error {
	if _, err := s.backend.Post(ctx, "content.create_item", "/content/item", item); err != nil {
		return normalize("content.create_item", "Failed to add item", err)
	}
	return nil
}

// Items lists the items of a business.
func (s *ContentService) Items(ctx context.Context, placeID string) ([]model.Item, error) {
	return list[model.Item](ctx, s.backend, "content.items", "/content/item/"+segment(placeID), "Failed to load items")
}

// DeleteItem removes an item.
func (s *ContentService) DeleteItem(ctx context.Context, itemID string) error {
	if _, err := s.backend.Delete(ctx, "content.delete_item", "/content/item/"+segment(itemID)); err != nil {
		return normalize("content.delete_item", "Failed to delete item", err)
	}
	return nil
}

// SetItemAvailability marks an item available or sold out.
func (s *ContentService) SetItemAvailability(ctx context.Context, itemID string, available bool) error {
	path := "/content/item/" + segment(itemID) + "/availability"
	if _, err := s.backend.Patch(ctx, "content.item_availability", path, map[string]bool{"available": available}); err != nil {
		return normalize("content.item_availability", "Failed to update item", err)
	}
	return nil
}

// --- Offers ---

// CreateOffer publishes an offer.
func (s *ContentService) CreateOffer(ctx context.Context, offer NewOffer) error {
	if _, err := s.backend.Post(ctx, "content.create_offer", "/content/offer", offer); err != nil {
		return normalize("content.create_offer", "Failed to create offer", err)
	}
	return nil
}

// Offers lists the offers of a business.
func (s *ContentService) Offers(ctx context.Context, placeID string) ([]model.Offer, error) {
	return list[model.Offer](ctx, s.backend, "content.offers", "/content/offer/"+segment(placeID), "Failed to load offers")
}

// DeleteOffer removes an offer.
func (s *ContentService) DeleteOffer(ctx context.Context, offerID string) error {
	if _, err := s.backend.Delete(ctx, "content.delete_offer", "/content/offer/"+segment(offerID)); err != nil {
		return normalize("content.delete_offer", "Failed to delete offer", err)
	}
	return nil
}

// --- Announcements ---

// CreateAnnouncement posts an announcement.
func (s *ContentService) CreateAnnouncement(ctx context.Context, a NewAnnouncement) error {
	if _, err := s.backend.Post(ctx, "content.create_announcement", "/content/announcement", a); err != nil {
		return normalize("content.create_announcement", "Failed to create announcement", err)
	}
	return nil
}

// Announcements lists the announcements of a business.
func (s *ContentService) Announcements(ctx context.Context, placeID string) ([]model.Announcement, error) {
	return list[model.Announcement](ctx, s.backend, "content.announcements",
		"/content/announcement/"+segment(placeID), "Failed to load announcements")
}

// DeleteAnnouncement removes an announcement.
func (s *ContentService) DeleteAnnouncement(ctx context.Context, id string) error {
	if _, err := s.backend.Delete(ctx, "content.delete_announcement", "/content/announcement/"+segment(id)); err != nil {
		return normalize("content.delete_announcement", "Failed to delete announcement", err)
	}
	return nil
}

// --- Polls ---

// CreatePoll opens a poll.
func (s *ContentService) CreatePoll(ctx context.Context, p NewPoll) error {
	if _, err := s.backend.Post(ctx, "content.create_poll", "/content/poll", p); err != nil {
		return normalize("content.create_poll", "Failed to create poll", err)
	}
	return nil
}

// Polls lists the polls of a business.
func (s *ContentService) Polls(ctx context.Context, placeID string) ([]model.Poll, error) {
	return list[model.Poll](ctx, s.backend, "content.polls", "/content/poll/"+segment(placeID), "Failed to load polls")
}

// Vote casts the caller's vote for one option.
func (s *ContentService) Vote(ctx context.Context, pollID string, optionIndex int) error {
	body := map[string]any{"pollId": pollID, "optionIndex": optionIndex}
	if _, err := s.backend.Post(ctx, "content.vote", "/content/poll/vote", body); err != nil {
		return normalize("content.vote", "Failed to submit vote", err)
	}
	return nil
}

// EndPoll closes a poll to further votes.
func (s *ContentService) EndPoll(ctx context.Context, pollID string) error {
	if _, err := s.backend.Patch(ctx, "content.end_poll", "/content/poll/"+segment(pollID)+"/end", nil); err != nil {
		return normalize("content.end_poll", "Failed to end poll", err)
	}
	return nil
}

// DeletePoll removes a poll.
func (s *ContentService) DeletePoll(ctx context.Context, pollID string) error {
	if _, err := s.backend.Delete(ctx, "content.delete_poll", "/content/poll/"+segment(pollID)); err != nil {
		return normalize("content.delete_poll", "Failed to delete poll", err)
	}
	return nil
}

func list[T any](ctx context.Context, b Backend, op, path, fallback string) ([]T, error) {
	resp, err := b.Get(ctx, op, path, nil)
	if err != nil {
		return nil, normalize(op, fallback, err)
	}
	out, err := decodeList[T](resp, "data.data", "data", "@this")
	if err != nil {
		return nil, malformed(op, fallback, err)
	}
	return out, nil
}
