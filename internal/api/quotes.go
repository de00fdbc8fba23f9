package api

import (
	"encoding/json"
	"net/http"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
	"github.com/blessandsoul/project-x-sub001/internal/model"
	"github.com/blessandsoul/project-x-sub001/internal/money"
)

type quoteRequest struct {
	VehicleID       string `json:"vehicle_id"`
	City            string `json:"city"`
	DestinationPort string `json:"destination_port"`
	VehicleType     string `json:"vehicle_type"`
	VehicleCategory string `json:"vehicle_category"`
}

type quoteResponse struct {
	Quotes          []model.Quote `json:"quotes"`
	Best            *model.Quote  `json:"best"`
	IndicativeCents *money.Cents  `json:"indicative_cents,omitempty"`
}

// handleQuotes computes the full provider comparison for one vehicle and
// route. When no provider covers the route, quotes is empty, best is null
// and the flat indicative estimate is included for display.
func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fault.Invalid("body", "malformed JSON"))
		return
	}

	route := model.RouteParams{
		City:            req.City,
		DestinationPort: req.DestinationPort,
		VehicleType:     model.VehicleType(req.VehicleType),
		VehicleCategory: model.VehicleCategory(req.VehicleCategory),
	}

	quotes, best, err := s.quotes.Compute(r.Context(), req.VehicleID, route)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := quoteResponse{Quotes: quotes, Best: best}
	if len(quotes) == 0 {
		indicative := s.quotes.Indicative()
		resp.IndicativeCents = &indicative
	}
	if resp.Quotes == nil {
		resp.Quotes = []model.Quote{}
	}
	writeJSON(w, http.StatusOK, resp)
}
