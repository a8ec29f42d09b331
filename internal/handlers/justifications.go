package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/upprop/internal/models"
)

func (h *RosterHandler) HandleSubmitJustification(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var j models.Justification
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if err := h.service.Roster.SubmitJustification(actor, &j); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"justification": j,
	})
}

func (h *RosterHandler) HandleListJustifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	justifications, err := h.service.Roster.ListJustifications(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"justifications": justifications,
	})
}
