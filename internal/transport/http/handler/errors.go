package handler

import (
	"errors"
	"net/http"

	"github.com/campus-market-api/internal/domain"
)

// respondError maps domain sentinel errors onto HTTP status codes. Anything
// unmapped is a 500 with a generic body so infrastructure errors never leak.
// Some routes flatten specific sentinels to 400 instead; see respondFlat400.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDispatch):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondFlat400 writes a 400 when err wraps one of the given sentinels and
// defers to respondError otherwise. The client contract reports verification
// failures, duplicate registrations, and wrong current passwords as plain bad
// requests rather than leaking which check failed through the status code.
func respondFlat400(w http.ResponseWriter, err error, sentinels ...error) {
	for _, s := range sentinels {
		if errors.Is(err, s) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	respondError(w, err)
}
