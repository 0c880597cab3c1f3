package controllers

import (
	"github.com/avaldera/localmart-backend/api/validators"
	"github.com/avaldera/localmart-backend/pkg/types"
)

const maxSnapshotField = 200

type addressRequest struct {
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	State      string  `json:"state" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country"`
	Phone      *string `json:"phone,omitempty"`
}

func (a *addressRequest) toType() *types.Address {
	if a == nil {
		return nil
	}
	addr := &types.Address{
		Line1:      validators.SanitizeString(a.Line1, maxSnapshotField),
		City:       validators.SanitizeString(a.City, maxSnapshotField),
		State:      validators.SanitizeString(a.State, maxSnapshotField),
		PostalCode: validators.SanitizeString(a.PostalCode, 20),
		Country:    validators.SanitizeString(a.Country, maxSnapshotField),
		Phone:      a.Phone,
	}
	if a.Line2 != nil {
		line2 := validators.SanitizeString(*a.Line2, maxSnapshotField)
		addr.Line2 = &line2
	}
	return addr
}

type storeDetailsRequest struct {
	StoreID string  `json:"store_id"`
	Name    string  `json:"name" validate:"required"`
	Phone   *string `json:"phone,omitempty"`
	Area    *string `json:"area,omitempty"`
}

func (s *storeDetailsRequest) toType() *types.StoreSnapshot {
	if s == nil {
		return nil
	}
	return &types.StoreSnapshot{
		StoreID: validators.SanitizeString(s.StoreID, maxSnapshotField),
		Name:    validators.SanitizeString(s.Name, maxSnapshotField),
		Phone:   s.Phone,
		Area:    s.Area,
	}
}
