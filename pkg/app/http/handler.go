// Package http holds the REST plumbing shared by the ledger routes: error
// returning handlers, JSON responses and the server lifecycle.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/chainsafe/erc20-ledger/pkg/app/errors"
)

// HandlerFunc is an http.HandlerFunc that reports failure by returning it.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// ErrorResponse is the body of every failed REST call. Kind is the error
// category, so clients can tell a ledger rejection from bad input.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
}

// HandleError adapts h for chi, writing any returned error with WriteError.
//
//	r.Post("/transfer", apphttp.HandleError(h.transfer))
func HandleError(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			WriteError(w, r, err)
		}
	}
}

// WriteError answers with the status and message of err's category. The
// cause of an error that is not a ServiceError never reaches the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *apperrors.ServiceError
	if !errors.As(err, &svcErr) {
		svcErr = &apperrors.ServiceError{Category: apperrors.CategoryGeneralError, Message: "Unexpected Service Error"}
	}
	status := svcErr.StatusCode()
	WriteJSON(w, status, &ErrorResponse{
		Error:     svcErr.Message,
		Code:      status,
		Kind:      svcErr.Category.String(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// WriteJSON writes data as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
