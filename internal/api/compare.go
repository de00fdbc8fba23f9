package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/blessandsoul/project-x-sub001/internal/compare"
	"github.com/blessandsoul/project-x-sub001/internal/fault"
)

// The comparison set is client-held state: the browser sends its current set
// with each mutation and stores what comes back. The server only enforces
// the bound and the no-duplicate rule.
type compareRequest struct {
	Set   compare.Set   `json:"set"`
	Entry compare.Entry `json:"entry"`
}

type compareResponse struct {
	Set     compare.Set `json:"set"`
	Changed bool        `json:"changed"`
}

func decodeCompareRequest(r *http.Request) (compareRequest, error) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fault.Invalid("body", "malformed JSON")
	}
	if strings.TrimSpace(req.Entry.VehicleID) == "" {
		return req, fault.Invalid("entry.vehicle_id", "must not be empty")
	}
	if strings.TrimSpace(req.Entry.ProviderID) == "" {
		return req, fault.Invalid("entry.provider_id", "must not be empty")
	}
	if len(req.Set.Entries) > compare.MaxEntries {
		return req, fault.Invalid("set", "holds more entries than the comparison allows")
	}
	return req, nil
}

func (s *Server) handleCompareAdd(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCompareRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	next := compare.Add(req.Set, req.Entry)
	writeJSON(w, http.StatusOK, compareResponse{
		Set:     next,
		Changed: len(next.Entries) != len(req.Set.Entries),
	})
}

func (s *Server) handleCompareRemove(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCompareRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	next := compare.Remove(req.Set, req.Entry)
	writeJSON(w, http.StatusOK, compareResponse{
		Set:     next,
		Changed: len(next.Entries) != len(req.Set.Entries),
	})
}
