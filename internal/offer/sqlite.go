package offer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

// SQLiteStore implements Store using modernc.org/sqlite. Used for local
// development and as the real-database backend of the shared store test
// suite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "offer: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "offer: sqlite exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS offers (
	id                TEXT PRIMARY KEY,
	vehicle_id        TEXT NOT NULL,
	provider_id       TEXT NOT NULL,
	buyer_id          TEXT NOT NULL,
	total_cents       INTEGER NOT NULL,
	total_max_cents   INTEGER NOT NULL,
	service_fee_cents INTEGER NOT NULL,
	estimated_days    INTEGER NOT NULL,
	comment           TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'pending',
	version           INTEGER NOT NULL DEFAULT 1,
	created_at        DATETIME NOT NULL,
	updated_at        DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_offers_active
	ON offers(vehicle_id, provider_id, buyer_id)
	WHERE status IN ('pending', 'selected');

CREATE INDEX IF NOT EXISTS idx_offers_status_created ON offers(status, created_at);
CREATE INDEX IF NOT EXISTS idx_offers_buyer ON offers(buyer_id);
CREATE INDEX IF NOT EXISTS idx_offers_provider ON offers(provider_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "offer: sqlite migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, o *model.Offer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO offers (id, vehicle_id, provider_id, buyer_id, total_cents, total_max_cents,
			service_fee_cents, estimated_days, comment, status, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.VehicleID, o.ProviderID, o.BuyerID,
		int64(o.TotalCents), int64(o.TotalMaxCents), int64(o.ServiceFeeCents),
		o.EstimatedDays, o.Comment, string(o.Status), o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fault.Conflict(fmt.Sprintf(
				"active offer already exists for vehicle %s, provider %s", o.VehicleID, o.ProviderID))
		}
		return fault.Unavailable(eris.Wrap(err, "offer: sqlite insert"))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteOffer(row rowScanner) (*model.Offer, error) {
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

func (s *SQLiteStore) Get(ctx context.Context, offerID string) (*model.Offer, error) {
	o, err := scanSQLiteOffer(s.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = ?`, offerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFound("offer", offerID)
	}
	if err != nil {
		return nil, fault.Unavailable(eris.Wrapf(err, "offer: sqlite get %s", offerID))
	}
	return o, nil
}

func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]model.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE true`
	args := []any{}

	if filter.BuyerID != "" {
		query += ` AND buyer_id = ?`
		args = append(args, filter.BuyerID)
	}
	if filter.ProviderID != "" {
		query += ` AND provider_id = ?`
		args = append(args, filter.ProviderID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "offer: sqlite list"))
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		o, err := scanSQLiteOffer(rows)
		if err != nil {
			return nil, fault.Unavailable(eris.Wrap(err, "offer: sqlite scan"))
		}
		offers = append(offers, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "offer: sqlite list iterate"))
	}
	return offers, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, offerID string, status model.OfferStatus, fromVersion int64, now time.Time) (*model.Offer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE offers SET status = ?, updated_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(status), now, offerID, fromVersion,
	)
	if err != nil {
		return nil, fault.Unavailable(eris.Wrapf(err, "offer: sqlite update status %s", offerID))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fault.Unavailable(eris.Wrap(err, "offer: sqlite rows affected"))
	}
	if n == 0 {
		if _, getErr := s.Get(ctx, offerID); getErr != nil {
			return nil, getErr
		}
		return nil, fault.Conflict("offer was modified concurrently, re-read and retry")
	}
	return s.Get(ctx, offerID)
}

func (s *SQLiteStore) ExpireBefore(ctx context.Context, cutoff, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE offers SET status = ?, updated_at = ?, version = version + 1
		 WHERE status IN (?, ?) AND created_at < ?`,
		string(model.OfferExpired), now,
		string(model.OfferPending), string(model.OfferSelected), cutoff,
	)
	if err != nil {
		return 0, fault.Unavailable(eris.Wrap(err, "offer: sqlite expire sweep"))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fault.Unavailable(eris.Wrap(err, "offer: sqlite rows affected"))
	}
	return int(n), nil
}
