package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/upprop/internal/roster"
)

type tokenRequest struct {
	Role    string `json:"role"`
	ActorID int64  `json:"actor_id"`
}

func (r tokenRequest) valid() bool {
	switch roster.Role(r.Role) {
	case roster.RoleAdmin, roster.RoleTeacher, roster.RoleStudent:
		return r.ActorID > 0
	}
	return false
}

// HandleIssueToken mints or refreshes a bearer token for an actor. Admins
// only, and only when auth is enabled.
func (h *RosterHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if actor.Role != roster.RoleAdmin {
		writeError(w, roster.ErrUnauthorized)
		return
	}
	if h.service.Tokens == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   "token management requires auth to be enabled",
		})
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.valid() {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	info, created, err := h.service.Tokens.FetchOrCreateActorToken(r.Context(), req.Role, req.ActorID)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"token": info,
	})
}

// HandleRevokeToken drops an actor's token, forcing a re-issue.
func (h *RosterHandler) HandleRevokeToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if actor.Role != roster.RoleAdmin {
		writeError(w, roster.ErrUnauthorized)
		return
	}
	if h.service.Tokens == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   "token management requires auth to be enabled",
		})
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !req.valid() {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if err := h.service.Tokens.RevokeActorToken(r.Context(), req.Role, req.ActorID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
