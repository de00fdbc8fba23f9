package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/offer"
)

type offerCreateRequest struct {
	VehicleID  string      `json:"vehicle_id"`
	ProviderID string      `json:"provider_id"`
	Quote      model.Quote `json:"quote"`
	Comment    string      `json:"comment"`
}

type offerTransitionRequest struct {
	Status string `json:"status"`
}

type offerListResponse struct {
	Offers []model.Offer `json:"offers"`
}

// actorFromRequest identifies the caller from identity headers. Upstream
// auth (outside this service) guarantees a caller can only present its own
// id; here we only derive the role.
func actorFromRequest(r *http.Request) (offer.Actor, error) {
	if buyerID := r.Header.Get("X-Buyer-ID"); buyerID != "" {
		return offer.Actor{ID: buyerID, Role: offer.RoleBuyer}, nil
	}
	if providerID := r.Header.Get("X-Provider-ID"); providerID != "" {
		return offer.Actor{ID: providerID, Role: offer.RoleProvider}, nil
	}
	return offer.Actor{}, fault.Forbidden("missing X-Buyer-ID or X-Provider-ID header")
}

func (s *Server) handleOfferCreate(w http.ResponseWriter, r *http.Request) {
	buyerID := r.Header.Get("X-Buyer-ID")
	if buyerID == "" {
		writeError(w, fault.Forbidden("missing X-Buyer-ID header"))
		return
	}

	var req offerCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.Invalid("body", "malformed JSON"))
		return
	}

	o, err := s.offers.Create(r.Context(), buyerID, offer.CreateInput{
		VehicleID:  req.VehicleID,
		ProviderID: req.ProviderID,
		Quote:      req.Quote,
		Comment:    req.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleOfferGet(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	o, err := s.offers.Get(r.Context(), actor, chi.URLParam(r, "offerID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOfferList(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Buyer actors are scoped to their own offers by the service, so the
	// buyer filter is only meaningful for provider callers.
	f := offer.Filter{
		BuyerID: r.URL.Query().Get("buyer"),
		Status:  model.OfferStatus(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}

	offers, err := s.offers.List(r.Context(), actor, f)
	if err != nil {
		writeError(w, err)
		return
	}
	if offers == nil {
		offers = []model.Offer{}
	}
	writeJSON(w, http.StatusOK, offerListResponse{Offers: offers})
}

func (s *Server) handleOfferTransition(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req offerTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.Invalid("body", "malformed JSON"))
		return
	}

	o, err := s.offers.Transition(r.Context(), actor, chi.URLParam(r, "offerID"), model.OfferStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
