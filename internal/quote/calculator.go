// Package quote computes and ranks per-provider landed-cost quotes for a
// vehicle and route. Computation is pure over the current rate data: safe to
// call repeatedly and concurrently, with no side effects.
package quote

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
	"github.com/blessandsoul/project-x-sub001/internal/rates"
)

// Config tunes the calculator.
type Config struct {
	// ProviderTimeout bounds each provider's rate read. A provider that
	// misses the budget is excluded from the result, never failing the
	// whole calculation.
	ProviderTimeout time.Duration
	// MaxParallel caps concurrent per-provider computations.
	MaxParallel int
	// IndicativeUSD is the flat listing-page estimate used when no
	// provider-specific calculation exists. Display-only fallback; it can
	// never back an offer.
	IndicativeUSD int64
}

// Calculator computes landed-cost quotes from a rates source.
type Calculator struct {
	source rates.Source
	cfg    Config
}

// NewCalculator creates a Calculator, applying defaults for unset config.
func NewCalculator(source rates.Source, cfg Config) *Calculator {
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = 5 * time.Second
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 8
	}
	return &Calculator{source: source, cfg: cfg}
}

// Compute returns one quote per provider able to serve the route, ranked
// ascending by total with the first marked IsBest, plus the best quote
// itself. best is nil when no provider matches; callers use that to
// distinguish "no coverage" from "not yet calculated".
func (c *Calculator) Compute(ctx context.Context, vehicleID string, route model.RouteParams) ([]model.Quote, *model.Quote, error) {
	if err := route.Validate(); err != nil {
		return nil, nil, err
	}

	facts, err := c.source.VehicleFacts(ctx, vehicleID)
	if err != nil {
		return nil, nil, err
	}

	refs, err := c.source.Providers(ctx, route)
	if err != nil {
		return nil, nil, eris.Wrap(err, "quote: list providers")
	}
	if len(refs) == 0 {
		return nil, nil, nil
	}

	// Each provider's rates are read and priced independently, each read
	// under its own timeout, so one slow provider cannot stall or fail the
	// whole run. Slot writes keep the collection lock-free.
	slots := make([]*model.Quote, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.MaxParallel)

	for i, ref := range refs {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, c.cfg.ProviderTimeout)
			defer cancel()

			pr, err := c.source.ProviderRate(pctx, ref.ID, route)
			if err != nil {
				if fault.IsKind(err, fault.KindNotFound) {
					return nil
				}
				zap.L().Warn("provider excluded from quote run",
					zap.String("provider_id", ref.ID),
					zap.Error(err),
				)
				return nil
			}

			q, ok := buildQuote(facts, route, *pr)
			if !ok {
				return nil
			}
			slots[i] = &q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	quotes := make([]model.Quote, 0, len(slots))
	for _, q := range slots {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	if len(quotes) == 0 {
		return nil, nil, nil
	}

	ranked := Rank(quotes)
	return ranked, &ranked[0], nil
}

// buildQuote assembles one provider's landed-cost breakdown. ok=false means
// the provider has no rule for the exact route and is silently excluded.
func buildQuote(facts *model.VehicleFacts, route model.RouteParams, pr rates.ProviderRate) (model.Quote, bool) {
	rule, ok := pr.Table.Lookup(rates.RouteKey{
		City:            route.City,
		Port:            route.DestinationPort,
		VehicleType:     route.VehicleType,
		VehicleCategory: route.VehicleCategory,
	})
	if !ok {
		return model.Quote{}, false
	}
	if rule.EstimatedDays <= 0 {
		zap.L().Warn("provider rule has non-positive duration, excluding",
			zap.String("provider_id", pr.ProviderID),
		)
		return model.Quote{}, false
	}

	q := model.Quote{
		ProviderID:        pr.ProviderID,
		ProviderName:      pr.ProviderName,
		VehiclePriceCents: facts.PriceCents,
		ShippingCents:     rule.ShippingCents,
		CustomsCents:      CustomsFee(facts.PriceCents, route.VehicleCategory),
		BrokerCents:       pr.Broker.Amount(facts.PriceCents),
		EstimatedDays:     rule.EstimatedDays,
	}
	q.TotalCents = q.Sum()
	return q, true
}

// Indicative returns the configured flat estimate shown on listing surfaces
// when no calculation has been run.
func (c *Calculator) Indicative() money.Cents {
	return money.FromDollars(c.cfg.IndicativeUSD)
}
