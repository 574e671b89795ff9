package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/tournament-engine/internal/service"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// StatusFor maps a service error onto the HTTP status the API answers with.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrTournamentNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, service.ErrParticipantNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrScheduleConflict),
		errors.Is(err, service.ErrTournamentClosed):
		return http.StatusConflict
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotEnoughParticipants),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrNotAdvanceable):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ServiceError writes err as a JSON error body. Internal failures are logged
// in full and answered with a generic message.
func ServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "path", r.URL.Path)
		ErrorJSON(w, status, "the server encountered a problem and could not process your request")
		return
	}

	slog.Warn(msg, "error", err, "status", status, "path", r.URL.Path)
	ErrorJSON(w, status, err.Error())
}
