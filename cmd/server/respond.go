package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/hvacpro/proposals/internal/pricebook"
	"github.com/hvacpro/proposals/internal/proposal"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:     code,
		Message:   message,
		RequestID: middleware.GetReqID(ctx),
	})
}

// fail maps a domain error onto the error envelope. Unclassified errors are logged and hidden.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, proposal.ErrInvalidID):
		writeError(ctx, w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, pricebook.ErrNotFound), errors.Is(err, proposal.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, pricebook.ErrInvalid):
		writeError(ctx, w, http.StatusUnprocessableEntity, "invalid_record", err.Error())
	case errors.Is(err, proposal.ErrUnknownSelection), errors.Is(err, proposal.ErrInvalidSelection):
		writeError(ctx, w, http.StatusUnprocessableEntity, "invalid_selection", err.Error())
	case errors.Is(err, proposal.ErrAutoSaverClosed):
		writeError(ctx, w, http.StatusServiceUnavailable, "shutting_down", "server is shutting down")
	default:
		s.log.Error("request failed",
			zap.String("request_id", middleware.GetReqID(ctx)),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(ctx, w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", errBadRequest, name)
	}
	return id, nil
}
