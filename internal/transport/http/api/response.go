package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"ems/internal/platform/apperr"
)

type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type Page struct {
	Items  any `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func SuccessMessage(w http.ResponseWriter, message string, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailErr writes err using its apperr kind. Server-side failures are logged
// and answered with a generic message.
func FailErr(w http.ResponseWriter, err error, requestID string) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("internal error", err)
	}
	status := appErr.Status()
	if !appErr.Public() {
		slog.Error("request failed", "kind", appErr.Kind, "err", err, "requestId", requestID)
		Fail(w, status, string(appErr.Kind), publicMessage(appErr.Kind), requestID)
		return
	}
	if len(appErr.Fields) > 0 {
		FailWithDetails(w, status, string(appErr.Kind), appErr.Message, map[string]any{"fields": appErr.Fields}, requestID)
		return
	}
	Fail(w, status, string(appErr.Kind), appErr.Message, requestID)
}

func publicMessage(kind apperr.Kind) string {
	switch kind {
	case apperr.KindStorage:
		return "document storage failed"
	case apperr.KindRender:
		return "document rendering failed"
	default:
		return "internal error"
	}
}
