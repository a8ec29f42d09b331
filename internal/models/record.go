package models

import (
	"github.com/go-playground/validator/v10"
)

// Presence values for an attendance record.
const (
	Present = "present"
	Absent  = "absent"
)

// AttendanceRecord is the single fact (session, student) -> mark. At most one
// row exists per pair; re-submission overwrites it.
type AttendanceRecord struct {
	SessionID    int64  `db:"session_id" json:"session_id"`
	StudentID    int64  `db:"student_id" json:"student_id" validate:"required"`
	Presence     string `db:"presence" json:"presence" validate:"required,oneof=present absent"`
	Participated bool   `db:"participated" json:"participated"`
}

func (r *AttendanceRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
