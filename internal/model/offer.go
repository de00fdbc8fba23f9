package model

import (
	"time"

	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// OfferStatus is the lifecycle state of a buyer's request to a provider.
// Persisted as a string; transitions are governed solely by the offer
// package's transition table.
type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"  // sent, awaiting provider response
	OfferSelected OfferStatus = "selected" // provider picked by the buyer / confirmed by provider
	OfferAccepted OfferStatus = "accepted" // deal concluded
	OfferRejected OfferStatus = "rejected" // declined by either side
	OfferExpired  OfferStatus = "expired"  // validity window elapsed
)

// Terminal reports whether the status admits no further transitions.
func (s OfferStatus) Terminal() bool {
	switch s {
	case OfferAccepted, OfferRejected, OfferExpired:
		return true
	}
	return false
}

// Valid reports whether s is a known status value.
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferPending, OfferSelected, OfferAccepted, OfferRejected, OfferExpired:
		return true
	}
	return false
}

// Offer is a buyer's formal import request tied to one provider and one
// vehicle. The numeric fields snapshot the selected quote at creation time,
// so later rate changes never silently reprice an open offer. Version backs
// optimistic concurrency on status updates.
type Offer struct {
	ID              string      `json:"id"`
	VehicleID       string      `json:"vehicle_id"`
	ProviderID      string      `json:"provider_id"`
	BuyerID         string      `json:"buyer_id"`
	TotalCents      money.Cents `json:"total_cents"`
	TotalMaxCents   money.Cents `json:"total_max_cents"`
	ServiceFeeCents money.Cents `json:"service_fee_cents"`
	EstimatedDays   int         `json:"estimated_days"`
	Comment         string      `json:"comment,omitempty"`
	Status          OfferStatus `json:"status"`
	Version         int64       `json:"version"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
