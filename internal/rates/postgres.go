package rates

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/blessandsoul/project-x-sub001/internal/db"
	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// PostgresSource reads the ingestion-owned vehicle_facts and provider_rates
// tables. It never writes them; refresh happens upstream.
type PostgresSource struct {
	pool db.Pool
}

// NewPostgresSource creates a PostgresSource over an existing pool.
func NewPostgresSource(pool db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Migrate creates the reference tables when absent. Harmless to run against a
// database the ingestion side already manages.
func (s *PostgresSource) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, ratesMigration)
	return eris.Wrap(err, "rates: migrate")
}

const ratesMigration = `
CREATE TABLE IF NOT EXISTS vehicle_facts (
	id          TEXT PRIMARY KEY,
	make        TEXT NOT NULL,
	model       TEXT NOT NULL,
	year        INTEGER NOT NULL,
	mileage     INTEGER NOT NULL DEFAULT 0,
	price_cents BIGINT NOT NULL,
	source      TEXT NOT NULL DEFAULT '',
	lot_number  TEXT NOT NULL DEFAULT '',
	yard_city   TEXT NOT NULL DEFAULT '',
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS provider_rates (
	provider_id        TEXT NOT NULL,
	provider_name      TEXT NOT NULL,
	city               TEXT NOT NULL,
	port               TEXT NOT NULL,
	vehicle_type       TEXT NOT NULL,
	vehicle_category   TEXT NOT NULL,
	shipping_cents     BIGINT NOT NULL,
	estimated_days     INTEGER NOT NULL,
	broker_mode        TEXT NOT NULL,
	broker_flat_cents  BIGINT NOT NULL DEFAULT 0,
	broker_percent_bps BIGINT NOT NULL DEFAULT 0,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (provider_id, city, port, vehicle_type, vehicle_category)
);

CREATE INDEX IF NOT EXISTS idx_provider_rates_type_category
	ON provider_rates(vehicle_type, vehicle_category);
`

// VehicleFacts implements Source.
func (s *PostgresSource) VehicleFacts(ctx context.Context, vehicleID string) (*model.VehicleFacts, error) {
	var (
		v          model.VehicleFacts
		priceCents int64
		updatedAt  time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, make, model, year, mileage, price_cents, source, lot_number, yard_city, updated_at
		 FROM vehicle_facts WHERE id = $1`,
		vehicleID,
	).Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Mileage, &priceCents, &v.Source, &v.LotNumber, &v.YardCity, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("vehicle", vehicleID)
	}
	if err != nil {
		return nil, fault.Unavailable(eris.Wrapf(err, "rates: get vehicle %s", vehicleID))
	}
	v.PriceCents = money.Cents(priceCents)
	v.UpdatedAt = updatedAt
	return &v, nil
}

// Providers implements Source: distinct providers covering the route's
// vehicle type and category.
func (s *PostgresSource) Providers(ctx context.Context, route model.RouteParams) ([]ProviderRef, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT provider_id, provider_name
		 FROM provider_rates
		 WHERE vehicle_type = $1 AND vehicle_category = $2
		 ORDER BY provider_id`,
		string(route.VehicleType), string(route.VehicleCategory),
	)
	if err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "rates: query providers"))
	}
	defer rows.Close()

	var out []ProviderRef
	for rows.Next() {
		var ref ProviderRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fault.Unavailable(eris.Wrap(err, "rates: scan provider"))
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "rates: iterate providers"))
	}
	return out, nil
}

// ProviderRate implements Source: one provider's rule table for the route's
// vehicle type and category, so the calculator can do the exact route lookup.
func (s *PostgresSource) ProviderRate(ctx context.Context, providerID string, route model.RouteParams) (*ProviderRate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT provider_name, city, port, shipping_cents, estimated_days,
		        broker_mode, broker_flat_cents, broker_percent_bps
		 FROM provider_rates
		 WHERE provider_id = $1 AND vehicle_type = $2 AND vehicle_category = $3`,
		providerID, string(route.VehicleType), string(route.VehicleCategory),
	)
	if err != nil {
		return nil, fault.Unavailable(eris.Wrapf(err, "rates: query rates for provider %s", providerID))
	}
	defer rows.Close()

	rate := ProviderRate{ProviderID: providerID}
	rules := make(map[RouteKey]ShippingRule)

	for rows.Next() {
		var (
			providerName, city, port, brokerMode string
			shippingCents, brokerFlat, brokerBps int64
			estimatedDays                        int
		)
		if err := rows.Scan(&providerName, &city, &port, &shippingCents, &estimatedDays,
			&brokerMode, &brokerFlat, &brokerBps); err != nil {
			return nil, fault.Unavailable(eris.Wrap(err, "rates: scan provider rate"))
		}

		if len(rules) == 0 {
			rate.ProviderName = providerName
			rate.Broker = BrokerFee{Mode: BrokerMode(brokerMode)}
			if rate.Broker.Mode == BrokerPercent {
				rate.Broker.PercentBps = brokerBps
			} else {
				rate.Broker.Mode = BrokerFlat
				rate.Broker.FlatCents = money.Cents(brokerFlat)
			}
		}

		rules[RouteKey{
			City:            city,
			Port:            port,
			VehicleType:     route.VehicleType,
			VehicleCategory: route.VehicleCategory,
		}] = ShippingRule{
			ShippingCents: money.Cents(shippingCents),
			EstimatedDays: estimatedDays,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "rates: iterate provider rates"))
	}
	if len(rules) == 0 {
		return nil, fault.NotFound("provider rates", providerID)
	}

	rate.Table = NewRateTable(rules)
	return &rate, nil
}
