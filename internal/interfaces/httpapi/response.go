package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
)

// genericErrorMessage is what visitors see for any failure outside debug mode.
const genericErrorMessage = "Noe gikk galt"

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
		Error: genericErrorMessage,
		Code:  http.StatusInternalServerError,
	})
}

// writeDebugError prints the full error chain with stack traces as plain text.
func writeDebugError(ctx context.Context, w http.ResponseWriter, err error) {
	_, span := startSpan(ctx, "httpapi.writeDebugError")
	defer span.End()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintf(w, "%s\n\n%+v\n", genericErrorMessage, err)
}

func writeFailure(ctx context.Context, w http.ResponseWriter, err error, debug bool) {
	if debug {
		writeDebugError(ctx, w, err)
		return
	}
	writeInternalError(ctx, w)
}
