package offer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/blessandsoul/project-x-sub001/internal/db"
	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "offer: parse postgres config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "offer: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "offer: ping postgres")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying pool for subsystems needing direct access
// (rates source, sheet import).
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

// The partial unique index is the serialization point for Create: at most
// one non-terminal offer may exist per (vehicle, provider, buyer) triple.
// The (status, created_at) index backs the expiry sweep.
const postgresMigration = `
CREATE TABLE IF NOT EXISTS offers (
	id                TEXT PRIMARY KEY,
	vehicle_id        TEXT NOT NULL,
	provider_id       TEXT NOT NULL,
	buyer_id          TEXT NOT NULL,
	total_cents       BIGINT NOT NULL,
	total_max_cents   BIGINT NOT NULL,
	service_fee_cents BIGINT NOT NULL,
	estimated_days    INTEGER NOT NULL,
	comment           TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'pending',
	version           BIGINT NOT NULL DEFAULT 1,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_active
	ON offers(vehicle_id, provider_id, buyer_id)
	WHERE status IN ('pending', 'selected');

CREATE INDEX IF NOT EXISTS idx_offers_status_created ON offers(status, created_at);
CREATE INDEX IF NOT EXISTS idx_offers_buyer ON offers(buyer_id);
CREATE INDEX IF NOT EXISTS idx_offers_provider ON offers(provider_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "offer: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const offerColumns = `id, vehicle_id, provider_id, buyer_id, total_cents, total_max_cents,
	service_fee_cents, estimated_days, comment, status, version, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, o *model.Offer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO offers (id, vehicle_id, provider_id, buyer_id, total_cents, total_max_cents,
			service_fee_cents, estimated_days, comment, status, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.VehicleID, o.ProviderID, o.BuyerID,
		int64(o.TotalCents), int64(o.TotalMaxCents), int64(o.ServiceFeeCents),
		o.EstimatedDays, o.Comment, string(o.Status), o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fault.Conflict(fmt.Sprintf(
				"active offer already exists for vehicle %s, provider %s", o.VehicleID, o.ProviderID))
		}
		return fault.Unavailable(eris.Wrap(err, "offer: insert"))
	}
	return nil
}

func scanOffer(row pgx.Row) (*model.Offer, error) {
	var o model.Offer
	var total, totalMax, fee, version int64
	var status string
	err := row.Scan(&o.ID, &o.VehicleID, &o.ProviderID, &o.BuyerID,
		&total, &totalMax, &fee, &o.EstimatedDays, &o.Comment,
		&status, &version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.TotalCents = money.Cents(total)
	o.TotalMaxCents = money.Cents(totalMax)
	o.ServiceFeeCents = money.Cents(fee)
	o.Status = model.OfferStatus(status)
	o.Version = version
	return &o, nil
}

func (s *PostgresStore) Get(ctx context.Context, offerID string) (*model.Offer, error) {
	o, err := scanOffer(s.pool.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, offerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.NotFound("offer", offerID)
	}
	if err != nil {
		return nil, fault.Unavailable(eris.Wrapf(err, "offer: get %s", offerID))
	}
	return o, nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE true`
	args := []any{}
	argIdx := 1

	if filter.BuyerID != "" {
		query += fmt.Sprintf(` AND buyer_id = $%d`, argIdx)
		args = append(args, filter.BuyerID)
		argIdx++
	}
	if filter.ProviderID != "" {
		query += fmt.Sprintf(` AND provider_id = $%d`, argIdx)
		args = append(args, filter.ProviderID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "offer: list"))
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fault.Unavailable(eris.Wrap(err, "offer: scan"))
		}
		offers = append(offers, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "offer: list iterate"))
	}
	return offers, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, offerID string, status model.OfferStatus, fromVersion int64, now time.Time) (*model.Offer, error) {
	o, err := scanOffer(s.pool.QueryRow(ctx,
		`UPDATE offers SET status = $1, updated_at = $2, version = version + 1
		 WHERE id = $3 AND version = $4
		 RETURNING `+offerColumns,
		string(status), now, offerID, fromVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		// Zero rows: either the offer vanished or the version moved on.
		if _, getErr := s.Get(ctx, offerID); getErr != nil {
			return nil, getErr
		}
		return nil, fault.Conflict("offer was modified concurrently, re-read and retry")
	}
	if err != nil {
		return nil, fault.Unavailable(eris.Wrapf(err, "offer: update status %s", offerID))
	}
	return o, nil
}

func (s *PostgresStore) ExpireBefore(ctx context.Context, cutoff, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE offers SET status = $1, updated_at = $2, version = version + 1
		 WHERE status IN ($3, $4) AND created_at < $5`,
		string(model.OfferExpired), now,
		string(model.OfferPending), string(model.OfferSelected), cutoff,
	)
	if err != nil {
		return 0, fault.Unavailable(eris.Wrap(err, "offer: expire sweep"))
	}
	return int(tag.RowsAffected()), nil
}
