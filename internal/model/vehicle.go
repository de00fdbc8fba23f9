package model

import (
	"strings"
	"time"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// VehicleType is the transport class of a lot. Closed set; request validation
// rejects anything else.
type VehicleType string

const (
	VehicleTypeCar        VehicleType = "car"
	VehicleTypeSUV        VehicleType = "suv"
	VehicleTypeVan        VehicleType = "van"
	VehicleTypeMotorcycle VehicleType = "motorcycle"
	VehicleTypeQuad       VehicleType = "quad"
)

// VehicleCategory refines the type for customs and rate-table purposes.
type VehicleCategory string

const (
	CategoryStandard VehicleCategory = "standard"
	CategoryPremium  VehicleCategory = "premium"
	CategoryElectric VehicleCategory = "electric"
	CategoryOld      VehicleCategory = "old" // over the excise age threshold
)

// ParseVehicleType validates a raw vehicle type string.
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(strings.ToLower(strings.TrimSpace(s))) {
	case VehicleTypeCar:
		return VehicleTypeCar, nil
	case VehicleTypeSUV:
		return VehicleTypeSUV, nil
	case VehicleTypeVan:
		return VehicleTypeVan, nil
	case VehicleTypeMotorcycle:
		return VehicleTypeMotorcycle, nil
	case VehicleTypeQuad:
		return VehicleTypeQuad, nil
	default:
		return "", fault.Invalid("vehicle_type", "must be one of car, suv, van, motorcycle, quad")
	}
}

// ParseVehicleCategory validates a raw vehicle category string.
func ParseVehicleCategory(s string) (VehicleCategory, error) {
	switch VehicleCategory(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryStandard:
		return CategoryStandard, nil
	case CategoryPremium:
		return CategoryPremium, nil
	case CategoryElectric:
		return CategoryElectric, nil
	case CategoryOld:
		return CategoryOld, nil
	default:
		return "", fault.Invalid("vehicle_category", "must be one of standard, premium, electric, old")
	}
}

// VehicleFacts is an immutable snapshot of an auction lot. Owned and
// refreshed by the ingestion collaborator; this core only reads it.
type VehicleFacts struct {
	ID         string      `json:"id"`
	Make       string      `json:"make"`
	Model      string      `json:"model"`
	Year       int         `json:"year"`
	Mileage    int         `json:"mileage"`
	PriceCents money.Cents `json:"price_cents"` // auction / buy-now price
	Source     string      `json:"source"`      // copart, iaai, manheim
	LotNumber  string      `json:"lot_number"`
	YardCity   string      `json:"yard_city"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// RouteParams are the buyer-supplied parameters of a quote calculation.
// Constructed per request, validated before use, discarded after.
type RouteParams struct {
	City            string          `json:"city"` // US pickup / auction yard city
	DestinationPort string          `json:"destination_port"`
	VehicleType     VehicleType     `json:"vehicle_type"`
	VehicleCategory VehicleCategory `json:"vehicle_category"`
}

// Validate checks that every field is present and the type/category belong to
// their closed sets. Returns fault.Invalid naming the first offending field.
func (r RouteParams) Validate() error {
	if strings.TrimSpace(r.City) == "" {
		return fault.Invalid("city", "must not be empty")
	}
	if strings.TrimSpace(r.DestinationPort) == "" {
		return fault.Invalid("destination_port", "must not be empty")
	}
	if _, err := ParseVehicleType(string(r.VehicleType)); err != nil {
		return err
	}
	if _, err := ParseVehicleCategory(string(r.VehicleCategory)); err != nil {
		return err
	}
	return nil
}
