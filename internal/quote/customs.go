package quote

import (
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// customsRule is the fixed customs/excise formula for one vehicle category:
// a percentage of the auction price plus a flat clearance component.
type customsRule struct {
	PercentBps int64
	FlatCents  money.Cents
}

// customsTable is keyed by vehicle category. Electric vehicles are import
// duty free; the flat component covers clearance service only.
var customsTable = map[model.VehicleCategory]customsRule{
	model.CategoryStandard: {PercentBps: 1500, FlatCents: money.FromDollars(300)},
	model.CategoryPremium:  {PercentBps: 2000, FlatCents: money.FromDollars(500)},
	model.CategoryElectric: {PercentBps: 0, FlatCents: money.FromDollars(500)},
	model.CategoryOld:      {PercentBps: 2500, FlatCents: money.FromDollars(400)},
}

// CustomsFee computes the customs/excise fee for a vehicle price and category.
func CustomsFee(price money.Cents, category model.VehicleCategory) money.Cents {
	rule, ok := customsTable[category]
	if !ok {
		// Unknown categories are rejected by route validation before this
		// point; fall back to the standard rule rather than panic.
		rule = customsTable[model.CategoryStandard]
	}
	return price.ApplyBps(rule.PercentBps) + rule.FlatCents
}
