package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
	"github.com/blessandsoul/project-x-sub001/internal/rates"
)

// stubSource is a hand-rolled rates.Source for calculator tests. Providers
// listed in stall block their rate read until the caller's context expires.
type stubSource struct {
	facts     map[string]model.VehicleFacts
	providers []rates.ProviderRate
	ratesErr  error
	stall     map[string]bool
}

func (s *stubSource) VehicleFacts(ctx context.Context, vehicleID string) (*model.VehicleFacts, error) {
	f, ok := s.facts[vehicleID]
	if !ok {
		return nil, fault.NotFound("vehicle", vehicleID)
	}
	return &f, nil
}

func (s *stubSource) Providers(ctx context.Context, route model.RouteParams) ([]rates.ProviderRef, error) {
	if s.ratesErr != nil {
		return nil, s.ratesErr
	}
	refs := make([]rates.ProviderRef, 0, len(s.providers))
	for _, p := range s.providers {
		refs = append(refs, rates.ProviderRef{ID: p.ProviderID, Name: p.ProviderName})
	}
	return refs, nil
}

func (s *stubSource) ProviderRate(ctx context.Context, providerID string, route model.RouteParams) (*rates.ProviderRate, error) {
	if s.stall[providerID] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	for _, p := range s.providers {
		if p.ProviderID == providerID {
			pr := p
			return &pr, nil
		}
	}
	return nil, fault.NotFound("provider rates", providerID)
}

func electricRoute() model.RouteParams {
	return model.RouteParams{
		City:            "Dallas",
		DestinationPort: "Poti",
		VehicleType:     model.VehicleTypeCar,
		VehicleCategory: model.CategoryElectric,
	}
}

func provider(id string, shippingUSD int64, days int, broker rates.BrokerFee) rates.ProviderRate {
	key := rates.RouteKey{
		City: "Dallas", Port: "Poti",
		VehicleType: model.VehicleTypeCar, VehicleCategory: model.CategoryElectric,
	}
	return rates.ProviderRate{
		ProviderID:   id,
		ProviderName: "Provider " + id,
		Broker:       broker,
		Table: rates.NewRateTable(map[rates.RouteKey]rates.ShippingRule{
			key: {ShippingCents: money.FromDollars(shippingUSD), EstimatedDays: days},
		}),
	}
}

func testSource() *stubSource {
	return &stubSource{
		facts: map[string]model.VehicleFacts{
			"v-42": {ID: "v-42", Make: "Nissan", Model: "Leaf", PriceCents: money.FromDollars(12000)},
		},
		providers: []rates.ProviderRate{
			provider("p-7", 1200, 45, rates.BrokerFee{Mode: rates.BrokerFlat, FlatCents: money.FromDollars(300)}),
			provider("p-9", 700, 60, rates.BrokerFee{Mode: rates.BrokerFlat, FlatCents: money.FromDollars(300)}),
		},
	}
}

func TestComputeWorkedExample(t *testing.T) {
	t.Parallel()

	// $12,000 vehicle, $1,200 shipping, $500 customs (electric: flat
	// clearance), $300 broker -> $14,000 total. The $13,500 provider wins.
	calc := NewCalculator(testSource(), Config{})
	quotes, best, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.NotNil(t, best)

	byID := map[string]model.Quote{}
	for _, q := range quotes {
		byID[q.ProviderID] = q
	}

	p7 := byID["p-7"]
	assert.Equal(t, money.FromDollars(500), p7.CustomsCents)
	assert.Equal(t, money.FromDollars(14000), p7.TotalCents)
	assert.True(t, p7.Consistent())

	assert.Equal(t, "p-9", best.ProviderID)
	assert.Equal(t, money.FromDollars(13500), best.TotalCents)
	assert.True(t, best.IsBest)
}

func TestComputeReturnsRankedQuotes(t *testing.T) {
	t.Parallel()

	src := testSource()
	src.providers = append(src.providers,
		provider("p-3", 1500, 30, rates.BrokerFee{Mode: rates.BrokerFlat, FlatCents: money.FromDollars(200)}))

	calc := NewCalculator(src, Config{})
	quotes, best, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.NoError(t, err)
	require.Len(t, quotes, 3)

	assert.Equal(t, "p-9", quotes[0].ProviderID, "cheapest provider leads the returned list")
	for i := 1; i < len(quotes); i++ {
		assert.LessOrEqual(t, quotes[i-1].TotalCents, quotes[i].TotalCents)
	}

	bestCount := 0
	for _, q := range quotes {
		if q.IsBest {
			bestCount++
		}
	}
	assert.Equal(t, 1, bestCount)
	assert.True(t, quotes[0].IsBest)
	assert.Equal(t, quotes[0], *best)
}

func TestComputeExcludesStalledProvider(t *testing.T) {
	t.Parallel()

	src := testSource()
	src.stall = map[string]bool{"p-7": true}

	calc := NewCalculator(src, Config{ProviderTimeout: 20 * time.Millisecond})
	quotes, best, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.NoError(t, err, "a provider missing its rate-read budget never fails the run")
	require.Len(t, quotes, 1)
	assert.Equal(t, "p-9", quotes[0].ProviderID)
	require.NotNil(t, best)
	assert.Equal(t, "p-9", best.ProviderID)
}

func TestComputeValidatesRoute(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(testSource(), Config{})
	route := electricRoute()
	route.City = ""

	_, _, err := calc.Compute(context.Background(), "v-42", route)
	require.Error(t, err)
	assert.Equal(t, fault.KindInvalid, fault.KindOf(err))
	assert.Equal(t, "city", fault.FieldOf(err))
}

func TestComputeUnknownVehicle(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(testSource(), Config{})
	_, _, err := calc.Compute(context.Background(), "v-0", electricRoute())
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestComputeNoCoverage(t *testing.T) {
	t.Parallel()

	src := testSource()
	src.providers = nil
	calc := NewCalculator(src, Config{})

	quotes, best, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Nil(t, best, "nil best distinguishes no coverage from not-yet-calculated")
}

func TestComputeExcludesProviderWithoutExactRule(t *testing.T) {
	t.Parallel()

	src := testSource()
	// p-x covers the type/category, but only out of Houston.
	key := rates.RouteKey{
		City: "Houston", Port: "Poti",
		VehicleType: model.VehicleTypeCar, VehicleCategory: model.CategoryElectric,
	}
	src.providers = append(src.providers, rates.ProviderRate{
		ProviderID: "p-x",
		Broker:     rates.BrokerFee{Mode: rates.BrokerFlat},
		Table: rates.NewRateTable(map[rates.RouteKey]rates.ShippingRule{
			key: {ShippingCents: money.FromDollars(900), EstimatedDays: 50},
		}),
	})

	calc := NewCalculator(src, Config{})
	quotes, _, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.NoError(t, err)
	assert.Len(t, quotes, 2, "provider without a rule for the exact route is silently excluded")
}

func TestComputePercentBroker(t *testing.T) {
	t.Parallel()

	src := testSource()
	src.providers = []rates.ProviderRate{
		provider("p-pct", 1000, 40, rates.BrokerFee{Mode: rates.BrokerPercent, PercentBps: 250}),
	}

	calc := NewCalculator(src, Config{})
	quotes, _, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	// 2.5% of $12,000 = $300.
	assert.Equal(t, money.FromDollars(300), quotes[0].BrokerCents)
	assert.True(t, quotes[0].Consistent())
}

func TestComputeSourceErrorPropagates(t *testing.T) {
	t.Parallel()

	src := testSource()
	src.ratesErr = fault.Unavailable(assert.AnError)
	calc := NewCalculator(src, Config{})

	_, _, err := calc.Compute(context.Background(), "v-42", electricRoute())
	require.Error(t, err)
	assert.Equal(t, fault.KindUnavailable, fault.KindOf(err))
}

func TestIndicative(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(testSource(), Config{IndicativeUSD: 9500})
	assert.Equal(t, money.FromDollars(9500), calc.Indicative())
}

func TestCustomsFeeTable(t *testing.T) {
	t.Parallel()

	price := money.FromDollars(10000)
	tests := []struct {
		category model.VehicleCategory
		want     money.Cents
	}{
		{model.CategoryStandard, money.FromDollars(1800)}, // 15% + $300
		{model.CategoryPremium, money.FromDollars(2500)},  // 20% + $500
		{model.CategoryElectric, money.FromDollars(500)},  // duty free + clearance
		{model.CategoryOld, money.FromDollars(2900)},      // 25% + $400
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.want, CustomsFee(price, tt.category))
		})
	}
}
