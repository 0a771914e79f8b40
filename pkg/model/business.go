package model

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Location is a geographic coordinate.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Business is a directory listing, keyed by its PlaceID.
// Claimed flips only through backend confirmation.
type Business struct {
	PlaceID     string    `json:"placeId"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Category    string    `json:"category"`
	Claimed     bool      `json:"claimed"`
	Phone       string    `json:"phone,omitempty"`
	Website     string    `json:"website,omitempty"`
	Hours       string    `json:"hours,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	OwnerID     string    `json:"owner,omitempty"`
}

// Info returns the editable subset of the business, used to pre-fill forms.
func (b *Business) Info() BusinessInfo {
	return BusinessInfo{
		Description: b.Description,
		Phone:       b.Phone,
		Website:     b.Website,
		Hours:       b.Hours,
	}
}

// Ownership describes how the caller relates to a business.
func (b *Business) Ownership(u *User) Ownership {
	if b == nil {
		return Ownership{}
	}
	return Ownership{
		Claimed: b.Claimed,
		Owned:   u != nil && b.OwnerID != "" && b.OwnerID == u.ID,
	}
}

// DirectionsURL returns a map search link for the business, preferring
// coordinates over the address. It is empty when neither is known.
func (b *Business) DirectionsURL() string {
	var dest string
	switch {
	case b.Location != nil && (b.Location.Lat != 0 || b.Location.Lng != 0):
		dest = strconv.FormatFloat(b.Location.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(b.Location.Lng, 'f', -1, 64)
	case strings.TrimSpace(b.Address) != "":
		dest = strings.TrimSpace(b.Address)
	default:
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(dest)
}

// BusinessInfo is the owner-editable part of a Business.
type BusinessInfo struct {
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Hours       string `json:"hours"`
}

// Item is a product or menu entry of a claimed business.
type Item struct {
	ID        string  `json:"_id"`
	PlaceID   string  `json:"placeId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Available bool    `json:"available"`
}

// Offer is a time-limited promotion of a claimed business.
type Offer struct {
	ID          string `json:"_id"`
	PlaceID     string `json:"placeId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ValidTill   string `json:"validTill"`
}

// ValidUntil parses ValidTill. The backend sends either a bare date or an
// RFC 3339 timestamp; the zero time is returned when neither matches.
func (o *Offer) ValidUntil() time.Time {
	return parseBackendTime(o.ValidTill)
}

// IsExpired reports whether the offer ended before now. A bare date is
// valid through the whole day. Offers without a parsable date never expire.
func (o *Offer) IsExpired(now time.Time) bool {
	until := o.ValidUntil()
	if until.IsZero() {
		return false
	}
	if len(strings.TrimSpace(o.ValidTill)) == len(DateLayout) {
		until = until.AddDate(0, 0, 1)
	}
	return now.After(until)
}

// Announcement is a free-text notice posted by an owner.
type Announcement struct {
	ID        string `json:"_id"`
	PlaceID   string `json:"placeId"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Posted returns the parsed creation time, or the zero time.
func (a *Announcement) Posted() time.Time {
	return parseBackendTime(a.CreatedAt)
}

// DateLayout is the date format used by forms and the offer API.
const DateLayout = "2006-01-02"

func parseBackendTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
