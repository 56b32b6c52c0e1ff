// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package server

import (
	"context"
	"encoding/json"
	"net/http"

	graphdlerr "github.com/sigil-dev/graphdl/pkg/errors"
)

// APIError is the body of every failed API call produced by the store.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

func (e *APIError) Error() string  { return e.Message }
func (e *APIError) GetStatus() int { return e.Status }

// toAPIError maps a coded error onto its HTTP status.
func toAPIError(ctx context.Context, err error) error {
	code := string(graphdlerr.CodeOf(err))
	if code == "" {
		code = string(graphdlerr.CodeServerInternalFailure)
	}
	return &APIError{
		Status:    graphdlerr.HTTPStatus(err),
		Code:      code,
		Message:   err.Error(),
		RequestID: requestIDFrom(ctx),
	}
}

// badRequest reports a malformed request parameter.
func badRequest(ctx context.Context, format string, args ...any) error {
	return toAPIError(ctx, graphdlerr.Errorf(graphdlerr.CodeServerRequestInvalid, format, args...))
}

// writeProblem writes an APIError outside of a huma handler.
func writeProblem(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{
		Status:    status,
		Code:      code,
		Message:   msg,
		RequestID: requestIDFrom(r.Context()),
	})
}
