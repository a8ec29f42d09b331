package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shrimpsizemoose/upprop/internal/models"
)

func (h *RosterHandler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var stu models.Student
	if err := json.NewDecoder(r.Body).Decode(&stu); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if err := h.service.Roster.RegisterStudent(actor, &stu); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"student": stu,
	})
}

func (h *RosterHandler) HandleUpdateStudent(w http.ResponseWriter, r *http.Request) {
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

	var stu models.Student
	if err := json.NewDecoder(r.Body).Decode(&stu); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}
	stu.ID = id

	if err := h.service.Roster.UpdateStudent(actor, &stu); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"student": stu,
	})
}

func (h *RosterHandler) HandleDeleteStudent(w http.ResponseWriter, r *http.Request) {
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

	if err := h.service.Roster.DeleteStudent(actor, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *RosterHandler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := models.Scope{
		Module:  q.Get("module"),
		Section: q.Get("section"),
		Group:   q.Get("group"),
	}

	students, err := h.service.Roster.ListStudents(actor, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
	})
}

func (h *RosterHandler) HandleListGroups(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	groups, err := h.service.Roster.ListGroups(actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
	})
}

func (h *RosterHandler) HandleRegisterTeacher(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var tch models.Teacher
	if err := json.NewDecoder(r.Body).Decode(&tch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		})
		return
	}

	if err := h.service.Roster.RegisterTeacher(actor, &tch); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"teacher": tch,
	})
}
