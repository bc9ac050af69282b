// Package handlers exposes the engine over HTTP for the UI. Writes go
// through the sync coordinator so every mutation is optimistic: the
// response reflects local state immediately and the remote store follows
// in the background.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
)

// decode reads a JSON request body into dst.
func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// parseDate accepts the date spellings the UI sends.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized date format")
}

// writeDomainError maps the engine's error taxonomy onto HTTP statuses.
// Validation failures are the caller's problem; anything else is ours.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidKind),
		errors.Is(err, domain.ErrInvalidEntity),
		errors.Is(err, domain.ErrDuplicateTimestamp),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrExceedsSaved),
		errors.Is(err, domain.ErrCreditAccount),
		errors.Is(err, domain.ErrGoalNotEmpty):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
