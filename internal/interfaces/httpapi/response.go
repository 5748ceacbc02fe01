package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/BigB742/bigb-analyzer/internal/domain/player"
	"github.com/BigB742/bigb-analyzer/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "bigb-analyzer"

	internalErrorMessage = "internal server error"
	// Matches the default Sleeper breaker cooldown and the range cache TTL.
	dependencyRetryAfter = 30
)

// Responses follow the Google JSON style guide envelope.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorClasses is checked in order; the first sentinel matched wins.
var errorClasses = []struct {
	target error
	mapped mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{player.ErrDuplicateKey, mappedError{http.StatusConflict, "conflict", "ALREADY_EXISTS"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

var internalError = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}

func mapError(_ context.Context, err error) mappedError {
	for _, class := range errorClasses {
		if errors.Is(err, class.target) {
			return class.mapped
		}
	}
	return internalError
}

func writeJSON(w http.ResponseWriter, status int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: googleAPIVersion, Data: data})
}

// writeError maps err onto the envelope. Messages of unmapped errors stay in
// the logs and the request span; clients only see a generic message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(ctx, err)

	message := err.Error()
	if mapped.HTTPStatus >= http.StatusInternalServerError {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.RecordError(err)
			span.SetStatus(codes.Error, mapped.Reason)
		}
	}
	switch mapped.HTTPStatus {
	case http.StatusInternalServerError:
		message = internalErrorMessage
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", strconv.Itoa(dependencyRetryAfter))
	}

	writeErrorBody(w, mapped, message)
}

func writeInternalError(_ context.Context, w http.ResponseWriter) {
	writeErrorBody(w, internalError, internalErrorMessage)
}

func writeErrorBody(w http.ResponseWriter, mapped mappedError, message string) {
	writeJSON(w, mapped.HTTPStatus, envelope{
		APIVersion: googleAPIVersion,
		Error: &errorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []errorItem{{
				Domain:  errorDomain,
				Reason:  mapped.Reason,
				Message: message,
			}},
		},
	})
}
