// Package rates provides read-only access to provider price rules and
// vehicle auction facts. The data itself is owned and refreshed by the
// ingestion side; this package only queries it.
package rates

import (
	"context"
	"strings"

	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// RouteKey identifies one cell of a provider's rate table. City and port are
// case-insensitive; NormalizeRouteKey folds them before lookup.
type RouteKey struct {
	City            string
	Port            string
	VehicleType     model.VehicleType
	VehicleCategory model.VehicleCategory
}

// NormalizeRouteKey lowercases and trims the free-text key parts so that
// sheet-sourced and request-sourced keys compare equal.
func NormalizeRouteKey(k RouteKey) RouteKey {
	k.City = strings.ToLower(strings.TrimSpace(k.City))
	k.Port = strings.ToLower(strings.TrimSpace(k.Port))
	return k
}

// ShippingRule is one provider's price for one route cell.
type ShippingRule struct {
	ShippingCents money.Cents
	EstimatedDays int
}

// RateTable is a provider's closed rule lookup. A missing cell is a
// representable state, not an error: it means the provider does not serve
// that route and is excluded from the quote list.
type RateTable struct {
	rules map[RouteKey]ShippingRule
}

// NewRateTable builds a table from rule cells.
func NewRateTable(rules map[RouteKey]ShippingRule) RateTable {
	normalized := make(map[RouteKey]ShippingRule, len(rules))
	for k, v := range rules {
		normalized[NormalizeRouteKey(k)] = v
	}
	return RateTable{rules: normalized}
}

// Lookup returns the rule for the key, or ok=false when the provider has no
// rule for that route.
func (t RateTable) Lookup(k RouteKey) (ShippingRule, bool) {
	rule, ok := t.rules[NormalizeRouteKey(k)]
	return rule, ok
}

// Len returns the number of rule cells.
func (t RateTable) Len() int {
	return len(t.rules)
}

// BrokerMode discriminates how a provider charges its service fee.
type BrokerMode string

const (
	BrokerFlat    BrokerMode = "flat"
	BrokerPercent BrokerMode = "percent"
)

// BrokerFee is a provider's service fee: a flat amount or a percentage of
// the vehicle price, never both.
type BrokerFee struct {
	Mode       BrokerMode
	FlatCents  money.Cents
	PercentBps int64
}

// Amount computes the fee for a given vehicle price.
func (f BrokerFee) Amount(vehiclePrice money.Cents) money.Cents {
	if f.Mode == BrokerPercent {
		return vehiclePrice.ApplyBps(f.PercentBps)
	}
	return f.FlatCents
}

// ProviderRate bundles one provider's pricing inputs for a quote run.
type ProviderRate struct {
	ProviderID   string
	ProviderName string
	Broker       BrokerFee
	Table        RateTable
}

// ProviderRef names a provider without loading its rate table. The quote
// run fans out over refs and reads each provider's rates independently.
type ProviderRef struct {
	ID   string
	Name string
}

// Source is the read boundary to the ingestion-owned reference data.
type Source interface {
	// VehicleFacts returns the auction snapshot for a vehicle id, or
	// fault.NotFound when the id is unknown.
	VehicleFacts(ctx context.Context, vehicleID string) (*model.VehicleFacts, error)

	// Providers returns every provider with any coverage of the route's
	// vehicle type and category. Whether a provider serves the exact route
	// is decided later by RateTable.Lookup.
	Providers(ctx context.Context, route model.RouteParams) ([]ProviderRef, error)

	// ProviderRate returns one provider's pricing inputs for the route's
	// vehicle type and category, or fault.NotFound when that provider has
	// no coverage of the combination.
	ProviderRate(ctx context.Context, providerID string, route model.RouteParams) (*ProviderRate, error)
}
