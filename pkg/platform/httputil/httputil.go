// Package httputil holds the small amount of HTTP plumbing shared by all
// handlers: domain-error to status mapping and request decoding.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	derrors "dupguard/pkg/domain-errors"
)

var statusByCode = map[derrors.Code]int{
	derrors.CodeBadRequest:   http.StatusBadRequest,
	derrors.CodeInvalidInput: http.StatusBadRequest,
	derrors.CodeUnauthorized: http.StatusUnauthorized,
	derrors.CodeNotFound:     http.StatusNotFound,
	derrors.CodeConflict:     http.StatusConflict,
	derrors.CodeUnavailable:  http.StatusServiceUnavailable,
	derrors.CodeInternal:     http.StatusInternalServerError,
}

// WriteError renders a domain error as JSON. Internal errors omit the
// description so store and broker details never reach clients.
func WriteError(w http.ResponseWriter, err error) {
	code := derrors.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": string(code)}
	if code != derrors.CodeInternal {
		var de *derrors.Error
		if errors.As(err, &de) && de.Message != "" {
			body["error_description"] = de.Message
		}
	}

	WriteJSON(w, status, body)
}

// WriteJSON renders v with the given status. Encoding failures are ignored;
// the status line has already been written.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into T, logging and responding with a
// bad_request on malformed input. The bool result tells the handler whether
// to continue.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(r.Context(), "malformed request body", "error", err)
		WriteError(w, derrors.New(derrors.CodeBadRequest, "malformed JSON body"))
		return req, false
	}
	return req, true
}
