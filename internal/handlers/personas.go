package handlers

import (
	"net/http"

	"github.com/DesireeAI/odonto/internal/models"
	"github.com/DesireeAI/odonto/internal/persona"
)

type PersonaHandler struct {
	catalog *persona.Catalog
}

func NewPersonaHandler(catalog *persona.Catalog) *PersonaHandler {
	return &PersonaHandler{catalog: catalog}
}

// List handles GET /api/v1/personas. System prompts are not exposed.
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	ids := h.catalog.IDs()
	out := make([]models.PersonaInfo, 0, len(ids))
	for _, id := range ids {
		p, _ := h.catalog.Get(id)
		out = append(out, models.PersonaInfo{
			ID:                 p.ID,
			RoutingDescription: p.RoutingDescription,
			HandoffTargets:     p.HandoffTargets,
			SearchEnabled:      p.Search != nil,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
