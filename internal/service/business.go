package service

import (
	"context"
	"net/url"

	"github.com/me/bizdir/pkg/model"
)

// BusinessService wraps search, profile and the owner claim endpoints.
type BusinessService struct {
	backend Backend
}

// NewBusinessService creates a BusinessService.
func NewBusinessService(b Backend) *BusinessService {
	return &BusinessService{backend: b}
}

// Search finds businesses of a type in an area.
func (s *BusinessService) Search(ctx context.Context, area, businessType string) ([]model.Business, error) {
	const op, fallback = "business.search", "Search failed"
	resp, err := s.backend.Get(ctx, op, "/search", url.Values{
		"area": {area},
		"type": {businessType},
	})
	if err != nil {
		return nil, normalize(op, fallback, err)
	}
	list, err := decodeList[model.Business](resp, "data.data", "data", "@this")
	if err != nil {
		return nil, malformed(op, fallback, err)
	}
	return list, nil
}

// Profile loads one business by place ID.
func (s *BusinessService) Profile(ctx context.Context, placeID string) (*model.Business, error) {
	const op, fallback = "business.profile", "Failed to load business profile"
	resp, err := s.backend.Get(ctx, op, "/business/"+segment(placeID), nil)
	if err != nil {
		return nil, normalize(op, fallback, err)
	}
	b, err := decodeObject[model.Business](resp, "data", "business", "@this")
	if err != nil {
		return nil, malformed(op, fallback, err)
	}
	return b, nil
}

// Claim starts a claim; the backend emails an OTP to businessEmail.
func (s *BusinessService) Claim(ctx context.Context, placeID, businessEmail string) error {
	_, err := s.backend.Post(ctx, "business.claim", "/owner/claim", map[string]any{
		"placeId":       placeID,
		"businessEmail": businessEmail,
	})
	if err != nil {
		return normalize("business.claim", "Claim request failed", err)
	}
	return nil
}

// VerifyClaim submits the claim OTP.
func (s *BusinessService) VerifyClaim(ctx context.Context, placeID, otp string) error {
	_, err := s.backend.Post(ctx, "business.verify_claim", "/owner/verify-claim", map[string]any{
		"placeId": placeID,
		"otp":     otp,
	})
	if err != nil {
		return normalize("business.verify_claim", "Claim verification failed", err)
	}
	return nil
}

// UpdateBusiness saves the owner-editable fields and completes a claim.
func (s *BusinessService) UpdateBusiness(ctx context.Context, placeID string, info model.BusinessInfo) error {
	_, err := s.backend.Put(ctx, "business.update", "/owner/business/"+segment(placeID), info)
	if err != nil {
		return normalize("business.update", "Business update failed", err)
	}
	return nil
}

// MyBusinesses lists the businesses claimed by the current owner.
func (s *BusinessService) MyBusinesses(ctx context.Context) ([]model.Business, error) {
	const op, fallback = "business.mine", "Failed to load your businesses"
	resp, err := s.backend.Get(ctx, op, "/owner/my-businesses", nil)
	if err != nil {
		return nil, normalize(op, fallback, err)
	}
	list, err := decodeList[model.Business](resp, "data", "businesses", "@this")
	if err != nil {
		return nil, malformed(op, fallback, err)
	}
	return list, nil
}
