package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/blessandsoul/project-x-sub001/internal/fault"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

// writeError maps domain fault kinds onto HTTP statuses. Unclassified errors
// become 500 with a generic message so internals never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	kind := fault.KindOf(err)

	var status int
	switch kind {
	case fault.KindInvalid:
		status = http.StatusBadRequest
	case fault.KindNotFound:
		status = http.StatusNotFound
	case fault.KindForbidden:
		status = http.StatusForbidden
	case fault.KindConflict, fault.KindInvalidTransition:
		status = http.StatusConflict
	case fault.KindUnavailable:
		status = http.StatusServiceUnavailable
	default:
		zap.L().Error("api: internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}

	writeJSON(w, status, errorBody{
		Error: fault.MessageOf(err),
		Field: fault.FieldOf(err),
		Kind:  string(kind),
	})
}
