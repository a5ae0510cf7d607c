package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/apexlaps/pitwall/internal/errors"
	"github.com/apexlaps/pitwall/internal/services"
)

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK JSON response
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, data)
}

// respondRawJSON writes pre-encoded JSON without re-marshaling
func respondRawJSON(w http.ResponseWriter, raw json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

// respondText writes a plain-text response. Error bodies on this API are
// plain text; that is the contract the dashboard expects.
func respondText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, message)
}

// respondServiceError maps an application error to the HTTP contract:
// validation errors are 400 with their exact message, configuration errors
// are 500 with their exact message, upstream data errors pass the upstream
// status through when one is available, and anything else is a generic 500
// naming the failing operation.
func (h *Handlers) respondServiceError(w http.ResponseWriter, operation string, err error) {
	h.Log.Error("Handler error", "operation", operation, "error", err)

	switch errors.KindOf(err) {
	case errors.ErrValidation:
		respondText(w, http.StatusBadRequest, errMessage(err))
	case errors.ErrConfiguration:
		respondText(w, http.StatusInternalServerError, errMessage(err))
	case errors.ErrUpstreamAuth:
		respondText(w, http.StatusInternalServerError, fmt.Sprintf("Error in %s function: %v", operation, err))
	case errors.ErrUpstreamData:
		status := services.UpstreamStatus(err)
		if status == 0 {
			status = http.StatusInternalServerError
		}
		respondText(w, status, fmt.Sprintf("Error in %s function: %v", operation, err))
	default:
		respondText(w, http.StatusInternalServerError, fmt.Sprintf("Error in %s function: %v", operation, err))
	}
}

// errMessage returns the taxonomy message of an error without any wrapped
// upstream detail, so contract messages stay exact.
func errMessage(err error) string {
	if e, ok := err.(*errors.Error); ok {
		return e.Message
	}
	return err.Error()
}
