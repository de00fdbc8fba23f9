// Package offer owns the only mutable state of the core: persisted buyer
// requests and their status lifecycle. All mutation goes through the
// Service's guarded transitions.
package offer

import (
	"github.com/blessandsoul/project-x-sub001/internal/model"
)

// transitions is the single authoritative state graph. No call site may
// invent an edge outside this table. Time-driven expiry is the only edge out
// of selected besides accepted.
var transitions = map[model.OfferStatus][]model.OfferStatus{
	model.OfferPending:  {model.OfferSelected, model.OfferRejected, model.OfferExpired},
	model.OfferSelected: {model.OfferAccepted, model.OfferExpired},
	model.OfferAccepted: {},
	model.OfferRejected: {},
	model.OfferExpired:  {},
}

// CanTransition reports whether from -> to is a legal edge. Requesting the
// current status again is allowed: the service treats it as an idempotent
// no-op rather than an error.
func CanTransition(from, to model.OfferStatus) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
