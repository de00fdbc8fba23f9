package offer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
)

// ActorRole distinguishes who is driving a transition.
type ActorRole string

const (
	RoleBuyer    ActorRole = "buyer"
	RoleProvider ActorRole = "provider"
	RoleSystem   ActorRole = "system" // expiry sweep
)

// Actor is the authenticated principal behind a lifecycle call. Authn itself
// happens upstream; the core only checks ownership and role.
type Actor struct {
	ID   string
	Role ActorRole
}

// DefaultValidity is the offer validity window when none is configured.
const DefaultValidity = 30 * 24 * time.Hour

// estimateMarginBps widens the snapshot total into the quoted upper bound:
// final invoices drift with auction yard storage and exchange rates.
const estimateMarginBps = 500

// Service governs offer creation and lifecycle transitions.
type Service struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

// NewService creates a Service with the given validity window (zero means
// DefaultValidity).
func NewService(store Store, window time.Duration) *Service {
	if window <= 0 {
		window = DefaultValidity
	}
	return &Service{store: store, window: window, now: time.Now}
}

// CreateInput carries everything needed to open an offer from a selected
// quote.
type CreateInput struct {
	VehicleID  string
	ProviderID string
	Quote      model.Quote
	Comment    string
}

// Create persists a new pending offer, snapshotting the quote's numbers so a
// later rate refresh never reprices it. A second active offer for the same
// (vehicle, provider, buyer) triple fails with fault.Conflict; the caller
// should transition or wait out the existing one instead.
func (s *Service) Create(ctx context.Context, buyerID string, in CreateInput) (*model.Offer, error) {
	buyerID = strings.TrimSpace(buyerID)
	if buyerID == "" {
		return nil, fault.Invalid("buyer_id", "must not be empty")
	}
	if strings.TrimSpace(in.VehicleID) == "" {
		return nil, fault.Invalid("vehicle_id", "must not be empty")
	}
	if strings.TrimSpace(in.ProviderID) == "" {
		return nil, fault.Invalid("provider_id", "must not be empty")
	}
	if in.Quote.ProviderID != in.ProviderID {
		return nil, fault.Invalid("quote", "quote provider does not match offer provider")
	}
	if in.Quote.EstimatedDays <= 0 {
		return nil, fault.Invalid("quote", "estimated duration must be positive")
	}
	if in.Quote.TotalCents < 0 || !in.Quote.Consistent() {
		return nil, fault.Invalid("quote", "total does not match component sum")
	}

	now := s.now().UTC()
	o := &model.Offer{
		ID:              uuid.NewString(),
		VehicleID:       strings.TrimSpace(in.VehicleID),
		ProviderID:      strings.TrimSpace(in.ProviderID),
		BuyerID:         buyerID,
		TotalCents:      in.Quote.TotalCents,
		TotalMaxCents:   in.Quote.TotalCents + in.Quote.TotalCents.ApplyBps(estimateMarginBps),
		ServiceFeeCents: in.Quote.BrokerCents,
		EstimatedDays:   in.Quote.EstimatedDays,
		Comment:         strings.TrimSpace(in.Comment),
		Status:          model.OfferPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Create(ctx, o); err != nil {
		return nil, eris.Wrap(err, "offer: create")
	}

	zap.L().Info("offer created",
		zap.String("offer_id", o.ID),
		zap.String("vehicle_id", o.VehicleID),
		zap.String("provider_id", o.ProviderID),
	)
	return o, nil
}

// Get returns an offer visible to the actor: its buyer, its provider, or the
// system.
func (s *Service) Get(ctx context.Context, actor Actor, offerID string) (*model.Offer, error) {
	o, err := s.store.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !canSee(actor, o) {
		return nil, fault.Forbidden("offer belongs to another buyer")
	}
	return o, nil
}

// List returns offers matching the filter, scoped to the actor's own side.
func (s *Service) List(ctx context.Context, actor Actor, f Filter) ([]model.Offer, error) {
	switch actor.Role {
	case RoleBuyer:
		f.BuyerID = actor.ID
	case RoleProvider:
		f.ProviderID = actor.ID
	case RoleSystem:
		// unrestricted
	default:
		return nil, fault.Forbidden("unknown actor role")
	}
	return s.store.List(ctx, f)
}

// Transition advances an offer to the target status under the state graph.
// Requesting the current status again is a no-op success. The version
// compare-and-swap at the store means a lost race surfaces as
// fault.Conflict; the caller retries by re-reading current state.
func (s *Service) Transition(ctx context.Context, actor Actor, offerID string, target model.OfferStatus) (*model.Offer, error) {
	if !target.Valid() {
		return nil, fault.Invalid("status", "unknown status "+string(target))
	}

	o, err := s.store.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if err := authorizeTransition(actor, o, target); err != nil {
		return nil, err
	}

	if o.Status == target {
		return o, nil // idempotent repeat
	}
	if !CanTransition(o.Status, target) {
		return nil, fault.InvalidTransition(string(o.Status), string(target))
	}

	updated, err := s.store.UpdateStatus(ctx, offerID, target, o.Version, s.now().UTC())
	if err != nil {
		return nil, err
	}

	zap.L().Info("offer transitioned",
		zap.String("offer_id", offerID),
		zap.String("from", string(o.Status)),
		zap.String("to", string(target)),
	)
	return updated, nil
}

// Expire sweeps every non-terminal offer older than the validity window into
// the expired state and returns how many changed. Running it twice without
// intervening changes is a no-op the second time.
func (s *Service) Expire(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.UTC().Add(-s.window)
	n, err := s.store.ExpireBefore(ctx, cutoff, now.UTC())
	if err != nil {
		return 0, eris.Wrap(err, "offer: expire sweep")
	}
	if n > 0 {
		zap.L().Info("offers expired", zap.Int("count", n), zap.Time("cutoff", cutoff))
	}
	return n, nil
}

func canSee(actor Actor, o *model.Offer) bool {
	switch actor.Role {
	case RoleBuyer:
		return actor.ID == o.BuyerID
	case RoleProvider:
		return actor.ID == o.ProviderID
	case RoleSystem:
		return true
	}
	return false
}

// authorizeTransition enforces who may drive which edge: the owning buyer
// may drive any legal edge, the addressed provider only selected/rejected,
// and the system only expiry.
func authorizeTransition(actor Actor, o *model.Offer, target model.OfferStatus) error {
	switch actor.Role {
	case RoleBuyer:
		if actor.ID != o.BuyerID {
			return fault.Forbidden("offer belongs to another buyer")
		}
		return nil
	case RoleProvider:
		if actor.ID != o.ProviderID {
			return fault.Forbidden("offer is addressed to another provider")
		}
		if target != model.OfferSelected && target != model.OfferRejected {
			return fault.Forbidden("providers may only select or reject")
		}
		return nil
	case RoleSystem:
		if target != model.OfferExpired {
			return fault.Forbidden("system actor may only expire")
		}
		return nil
	default:
		return fault.Forbidden("unknown actor role")
	}
}
