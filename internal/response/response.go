// Package response writes the JSON envelopes shared by every endpoint.
package response

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidtube/backend/internal/apierrors"
	"github.com/vidtube/backend/internal/logging"
)

// Envelope wraps every successful response.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// ErrorEnvelope wraps every failed response. Data is always null.
type ErrorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
	Data       any      `json:"data"`
}

// success writes data inside the success envelope.
func success(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	write(ctx, w, status, Envelope{
		StatusCode: status,
		Success:    true,
		Message:    message,
		Data:       data,
	})
}

// OK writes a 200 envelope.
func OK(ctx context.Context, w http.ResponseWriter, message string, data any) {
	success(ctx, w, http.StatusOK, message, data)
}

// Created writes a 201 envelope.
func Created(ctx context.Context, w http.ResponseWriter, message string, data any) {
	success(ctx, w, http.StatusCreated, message, data)
}

// Error renders err inside the error envelope. Causes of internal errors are
// logged but never written to the client.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	apiErr := apierrors.As(err)
	details := apiErr.Details
	if details == nil {
		details = []string{}
	}

	logger := logging.FromContext(ctx)
	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", apiErr.Status, "message", apiErr.Message, "error", apiErr.Err)
	case apiErr.Status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", apiErr.Status, "message", apiErr.Message, "details", details)
	}

	write(ctx, w, apiErr.Status, ErrorEnvelope{
		StatusCode: apiErr.Status,
		Success:    false,
		Message:    apiErr.Message,
		Errors:     details,
	})
}

func write(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}
