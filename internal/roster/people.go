package roster

import (
	"errors"
	"fmt"

	"github.com/shrimpsizemoose/upprop/internal/models"
	"github.com/shrimpsizemoose/upprop/internal/store"
)

// RegisterStudent creates a roster entry and provisions a login for it.
// The login step runs after the commit and its failure never undoes the
// student row.
func (s *Service) RegisterStudent(actor Actor, stu *models.Student) error {
	if actor.Role != RoleAdmin {
		return ErrUnauthorized
	}
	if err := stu.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := s.store.CreateStudent(stu); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("%w: student id %s", ErrDuplicateID, stu.ExternalID)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.ensureStudentLogin(stu, true)
	return nil
}

// UpdateStudent edits a roster entry and re-syncs its login without
// touching the password.
func (s *Service) UpdateStudent(actor Actor, stu *models.Student) error {
	if actor.Role != RoleAdmin {
		return ErrUnauthorized
	}
	if err := stu.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	existing, err := s.store.GetStudent(stu.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing == nil {
		return ErrNotFound
	}

	if err := s.store.UpdateStudent(stu); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("%w: student id %s", ErrDuplicateID, stu.ExternalID)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.ensureStudentLogin(stu, false)
	return nil
}

// DeleteStudent removes a roster entry. Administrative side-channel, the
// attendance core never deletes on its own.
func (s *Service) DeleteStudent(actor Actor, id int64) error {
	if actor.Role != RoleAdmin {
		return ErrUnauthorized
	}

	existing, err := s.store.GetStudent(id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing == nil {
		return ErrNotFound
	}

	if err := s.store.DeleteStudent(id); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// ListStudents returns roster entries visible to the actor. Teachers are
// pinned to their profile scope, admins see whatever they filter for.
func (s *Service) ListStudents(actor Actor, filter models.Scope) ([]models.Student, error) {
	if !actor.CanManageSessions() {
		return nil, ErrUnauthorized
	}

	scope, err := s.ResolveTeacherScope(actor, filter)
	if err != nil {
		return nil, err
	}

	students, err := s.store.ListStudents(scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return students, nil
}

// ListGroups feeds the group picker on dashboards.
func (s *Service) ListGroups(actor Actor) ([]string, error) {
	if !actor.CanManageSessions() {
		return nil, ErrUnauthorized
	}
	groups, err := s.store.ListGroups()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return groups, nil
}

// RegisterTeacher creates a teaching-staff entry plus its login.
func (s *Service) RegisterTeacher(actor Actor, tch *models.Teacher) error {
	if actor.Role != RoleAdmin {
		return ErrUnauthorized
	}
	if err := tch.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if err := s.store.CreateTeacher(tch); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return fmt.Errorf("%w: teacher id %s", ErrDuplicateID, tch.ExternalID)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.ensureTeacherLogin(tch, true)
	return nil
}
