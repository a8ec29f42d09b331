package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Session statuses. A session only ever moves open -> closed.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// DateFormat is the calendar-date layout used for session dates everywhere:
// in the store, on the wire and in config.
const DateFormat = "2006-01-02"

// Session is one attendance-taking event for a scope on a date.
type Session struct {
	ID      int64  `db:"id" json:"id"`
	Module  string `db:"module" json:"module"`
	Section string `db:"section" json:"section"`
	Group   string `db:"group_id" json:"group_id"`
	Date    string `db:"date" json:"date" validate:"required"`
	OwnerID int64  `db:"owner_id" json:"owner_id"`
	Status  string `db:"status" json:"status" validate:"required,oneof=open closed"`
}

// Scope returns the session's student-matching scope.
func (s *Session) Scope() Scope {
	return Scope{Module: s.Module, Section: s.Section, Group: s.Group}
}

func (s *Session) Validate() error {
	if _, err := time.Parse(DateFormat, s.Date); err != nil {
		return err
	}
	validate := validator.New()
	return validate.Struct(s)
}
