package offer

import (
	"context"
	"time"

	"github.com/blessandsoul/project-x-sub001/internal/model"
)

// Filter specifies criteria for listing offers.
type Filter struct {
	BuyerID    string            `json:"buyer_id,omitempty"`
	ProviderID string            `json:"provider_id,omitempty"`
	Status     model.OfferStatus `json:"status,omitempty"`
	Limit      int               `json:"limit,omitempty"`
	Offset     int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for offers.
//
// Implementations must guarantee two things beyond plain CRUD:
//   - Create is serialized per (vehicle_id, provider_id, buyer_id): a partial
//     unique index over non-terminal statuses makes two concurrent creates
//     yield exactly one row and one fault.Conflict.
//   - UpdateStatus is compare-and-swap on the version column: the loser of a
//     concurrent update receives fault.Conflict and must re-read.
type Store interface {
	Create(ctx context.Context, o *model.Offer) error
	Get(ctx context.Context, offerID string) (*model.Offer, error)
	List(ctx context.Context, filter Filter) ([]model.Offer, error)

	// UpdateStatus applies the status iff the stored version still equals
	// fromVersion, bumping version and updated_at. fault.Conflict on a lost
	// race, fault.NotFound on a missing row.
	UpdateStatus(ctx context.Context, offerID string, status model.OfferStatus, fromVersion int64, now time.Time) (*model.Offer, error)

	// ExpireBefore transitions every non-terminal offer created before cutoff
	// to expired and returns the number of rows changed. Idempotent.
	ExpireBefore(ctx context.Context, cutoff, now time.Time) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}

// ExpireCandidates is the pure core of the sweep: given a snapshot of offers
// and the current time, it returns the ids that should expire under the
// validity window. The scheduling mechanism around it is an external concern.
func ExpireCandidates(offers []model.Offer, now time.Time, window time.Duration) []string {
	cutoff := now.Add(-window)
	var ids []string
	for _, o := range offers {
		if !o.Status.Terminal() && o.CreatedAt.Before(cutoff) {
			ids = append(ids, o.ID)
		}
	}
	return ids
}
