package model

import (
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// Quote is a single provider's landed-cost breakdown for a vehicle and route.
// Derived, never persisted on its own: it is either discarded after display
// or snapshotted into an Offer.
type Quote struct {
	ProviderID        string      `json:"provider_id"`
	ProviderName      string      `json:"provider_name"`
	VehiclePriceCents money.Cents `json:"vehicle_price_cents"`
	ShippingCents     money.Cents `json:"shipping_cents"`
	CustomsCents      money.Cents `json:"customs_cents"`
	BrokerCents       money.Cents `json:"broker_cents"`
	TotalCents        money.Cents `json:"total_cents"`
	EstimatedDays     int         `json:"estimated_days"`
	IsBest            bool        `json:"is_best"`
}

// Sum recomputes the landed-cost total from the components.
func (q Quote) Sum() money.Cents {
	return q.VehiclePriceCents + q.ShippingCents + q.CustomsCents + q.BrokerCents
}

// Consistent reports whether the stored total matches the component sum
// within one minor currency unit.
func (q Quote) Consistent() bool {
	d := q.TotalCents - q.Sum()
	return d >= -1 && d <= 1
}
