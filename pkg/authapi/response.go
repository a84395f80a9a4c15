package authapi

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/edusys/portal-auth/pkg/errors"
)

// Envelope is the uniform response shape. Every reply carries a success
// flag, a human-readable message, and a server timestamp; data is present
// only when an action has a payload to return.
type Envelope struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, Envelope{
		Success:   status < http.StatusBadRequest,
		Message:   message,
		Timestamp: time.Now(),
		RequestID: middleware.GetReqID(r.Context()),
		Data:      data,
	})
}

// writeError maps a service error onto the envelope. Internal errors are
// logged with their cause but reach the client as a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.MapErrorCodeToHTTPStatus(code)

	message := err.Error()
	var e *errors.Error
	if stderrors.As(err, &e) {
		message = e.Message
	}
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "request_id", middleware.GetReqID(r.Context()), "err", err)
		message = "internal server error"
	}

	var data interface{}
	if details := errors.GetDetails(err); len(details) > 0 {
		data = details
	}
	respond(w, r, status, message, data)
}
