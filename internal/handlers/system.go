package handlers

import (
	"net/http"

	"github.com/DesireeAI/odonto/internal/models"
	"github.com/DesireeAI/odonto/internal/persona"
	"github.com/DesireeAI/odonto/internal/thread"
)

type SystemHandler struct {
	registry *thread.Registry
	catalog  *persona.Catalog
}

func NewSystemHandler(registry *thread.Registry, catalog *persona.Catalog) *SystemHandler {
	return &SystemHandler{registry: registry, catalog: catalog}
}

// Health handles GET /api/v1/system/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.registry.Snapshot()
	writeJSON(w, http.StatusOK, models.HealthStatus{
		Status:   "ok",
		Threads:  snap.Threads,
		Messages: snap.Messages,
		Personas: h.catalog.Len(),
	})
}
