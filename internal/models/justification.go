package models

import (
	"github.com/go-playground/validator/v10"
)

// Justification statuses. Only the write path lives here; review happens
// elsewhere, so rows are always created pending.
const (
	JustificationPending  = "pending"
	JustificationApproved = "approved"
	JustificationRejected = "rejected"
)

// Justification is an unreviewed absence claim. SessionID is zero when the
// claim is not tied to a particular session. Evidence is an opaque reference
// to an uploaded document, not the document itself.
type Justification struct {
	ID        int64  `db:"id" json:"id"`
	StudentID int64  `db:"student_id" json:"student_id" validate:"required"`
	SessionID int64  `db:"session_id" json:"session_id"`
	Reason    string `db:"reason" json:"reason" validate:"required"`
	Evidence  string `db:"evidence" json:"evidence"`
	Status    string `db:"status" json:"status"`
}

func (j *Justification) Validate() error {
	validate := validator.New()
	return validate.Struct(j)
}
