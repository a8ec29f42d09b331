package models

import (
	"github.com/go-playground/validator/v10"
)

// Student is one roster entry. ExternalID is the institution-issued
// identifier and is unique across students.
type Student struct {
	ID         int64  `db:"id" json:"id"`
	ExternalID string `db:"external_id" json:"student_id" validate:"required,max=50"`
	LastName   string `db:"last_name" json:"last_name" validate:"required,max=100"`
	FirstName  string `db:"first_name" json:"first_name" validate:"required,max=100"`
	Email      string `db:"email" json:"email" validate:"omitempty,email"`
	Module     string `db:"module" json:"module"`
	Section    string `db:"section" json:"section"`
	Group      string `db:"group_id" json:"group_id"`
}

// Teacher mirrors Student for the teaching staff. The scope fields hold the
// teacher's default module/section/group used when opening sessions.
type Teacher struct {
	ID         int64  `db:"id" json:"id"`
	ExternalID string `db:"external_id" json:"teacher_id" validate:"required,max=50"`
	LastName   string `db:"last_name" json:"last_name" validate:"required,max=100"`
	FirstName  string `db:"first_name" json:"first_name" validate:"required,max=100"`
	Email      string `db:"email" json:"email" validate:"omitempty,email"`
	Module     string `db:"module" json:"module"`
	Section    string `db:"section" json:"section"`
	Group      string `db:"group_id" json:"group_id"`
}

// Scope is the (module, section, group) tuple restricting which students a
// session concerns. Empty fields are wildcards.
type Scope struct {
	Module  string `json:"module"`
	Section string `json:"section"`
	Group   string `json:"group_id"`
}

// IsEmpty reports whether no field of the scope is set.
func (s Scope) IsEmpty() bool {
	return s.Module == "" && s.Section == "" && s.Group == ""
}

// Matches reports whether a student falls inside the scope. Only non-empty
// scope fields constrain the match.
func (s Scope) Matches(stu Student) bool {
	if s.Module != "" && s.Module != stu.Module {
		return false
	}
	if s.Section != "" && s.Section != stu.Section {
		return false
	}
	if s.Group != "" && s.Group != stu.Group {
		return false
	}
	return true
}

func (s *Student) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

func (t *Teacher) Validate() error {
	validate := validator.New()
	return validate.Struct(t)
}
