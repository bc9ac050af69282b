package handlers

import (
	"net/http"

	"github.com/galan4520/finanzas/internal/api/middleware"
	"github.com/galan4520/finanzas/internal/domain"
	"github.com/galan4520/finanzas/internal/sync"
	"github.com/rs/zerolog"
)

// SyncHandler exposes manual resynchronization and the coordinator's
// condition. After a failed remote write the UI points the user here.
type SyncHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(coord *sync.Coordinator, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{coord: coord, log: log}
}

// Resync handles POST /api/sync: an immediate full resync.
func (h *SyncHandler) Resync(w http.ResponseWriter, r *http.Request) {
	if err := h.coord.Resync(r.Context()); err != nil {
		middleware.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, h.coord.Status())
}

// Status handles GET /api/sync/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.coord.Status())
}

// ProfileHandler handles the profile endpoint.
type ProfileHandler struct {
	coord *sync.Coordinator
	log   zerolog.Logger
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(coord *sync.Coordinator, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{coord: coord, log: log}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := h.coord.Store().Profile()
	if p == nil {
		middleware.WriteError(w, http.StatusNotFound, "No profile stored")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, p)
}

// Save handles PUT /api/profile.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	var p domain.Profile
	if err := decode(r, &p); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.coord.SaveProfile(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
