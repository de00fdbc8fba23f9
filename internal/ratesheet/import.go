package ratesheet

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/blessandsoul/project-x-sub001/internal/db"
)

// Importer bulk-upserts parsed rate rows into provider_rates.
type Importer struct {
	pool db.Pool
	now  func() time.Time
}

func NewImporter(pool db.Pool) *Importer {
	return &Importer{pool: pool, now: time.Now}
}

// Import writes rows into provider_rates, replacing existing rules for the
// same (provider, route) key. Returns the number of rows written.
func (i *Importer) Import(ctx context.Context, rows []Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	now := i.now().UTC()
	values := make([][]any, len(rows))
	for idx, r := range rows {
		values[idx] = r.Values(now)
	}

	n, err := db.BulkUpsert(ctx, i.pool, db.UpsertConfig{
		Table:        "provider_rates",
		Columns:      UpsertColumns,
		ConflictKeys: ConflictKeys,
	}, values)
	if err != nil {
		return 0, eris.Wrap(err, "ratesheet: upsert provider rates")
	}

	zap.L().Info("ratesheet: imported", zap.Int64("rows", n))
	return n, nil
}
