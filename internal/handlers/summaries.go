package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/upprop/internal/models"
	"github.com/shrimpsizemoose/upprop/internal/roster"
)

func (h *RosterHandler) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !actor.CanManageSessions() {
		writeError(w, roster.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	scope := roster.SummaryScope{
		Filter: models.Scope{
			Module:  q.Get("module"),
			Section: q.Get("section"),
			Group:   q.Get("group"),
		},
	}
	if raw := q.Get("student_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "bad student_id: " + raw,
			})
			return
		}
		scope.StudentID = id
	}

	// teachers see their own slice of the roster regardless of what filter
	// the request asked for
	if scope.StudentID == 0 {
		resolved, err := h.service.Roster.ResolveTeacherScope(actor, scope.Filter)
		if err != nil {
			writeError(w, err)
			return
		}
		scope.Filter = resolved
	}

	summaries, err := h.service.Roster.Summarize(scope)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
	})
}

func (h *RosterHandler) HandleStudentSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	summary, err := h.service.Roster.StudentSummary(actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summary": summary,
	})
}
