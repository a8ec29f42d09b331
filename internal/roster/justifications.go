package roster

import (
	"fmt"

	"github.com/shrimpsizemoose/upprop/internal/models"
)

// SubmitJustification files an absence claim for the calling student. The
// student id is always the actor's own row, whatever the request claims,
// and new claims always start pending.
func (s *Service) SubmitJustification(actor Actor, j *models.Justification) error {
	if actor.Role != RoleStudent {
		return ErrUnauthorized
	}

	j.StudentID = actor.ID
	j.Status = models.JustificationPending
	if err := j.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if j.SessionID != 0 {
		sess, err := s.store.GetSession(j.SessionID)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if sess == nil {
			return fmt.Errorf("%w: session %d", ErrNotFound, j.SessionID)
		}
	}

	if err := s.store.CreateJustification(j); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// ListJustifications returns a student's claims. Students read their own,
// teachers and admins anyone's.
func (s *Service) ListJustifications(actor Actor, studentID int64) ([]models.Justification, error) {
	if actor.Role == RoleStudent && actor.ID != studentID {
		return nil, ErrUnauthorized
	}

	js, err := s.store.ListJustifications(studentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return js, nil
}
