package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// JSONResponse is the standard JSON response envelope.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail carries error information in a response body.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON renders data as a 200 JSON response.
func WriteJSON(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, JSONResponse{Data: data})
}

// WriteJSONStatus renders data with an explicit status code.
func WriteJSONStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, JSONResponse{Data: data})
}

// WriteJSONError renders an error response. HTTPError values control the
// status code and key; anything else collapses to a generic 500 so internal
// details never leak to clients.
func WriteJSONError(w http.ResponseWriter, err error) {
	httpErr := ErrInternalServerError
	var known HTTPError
	if errors.As(err, &known) {
		httpErr = known
	}

	writeJSON(w, httpErr.Code, JSONResponse{
		Error: &ErrorDetail{
			Code:    httpErr.Key,
			Message: http.StatusText(httpErr.Code),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body JSONResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
