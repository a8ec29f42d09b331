package roster

import (
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/metrics"
	"github.com/shrimpsizemoose/upprop/internal/models"
)

const (
	defaultSessionLimit = 20
	maxSessionLimit     = 200
)

// SessionDraft is the caller's request to open a session. Empty Date means
// today. Scope fields are merged with the teacher's profile defaults.
type SessionDraft struct {
	Module  string `json:"module"`
	Section string `json:"section"`
	Group   string `json:"group_id"`
	Date    string `json:"date"`
}

// ResolveTeacherScope determines the scope a teacher works in: profile
// values win, request values only fill fields the profile leaves blank.
// Admins and other roles keep the requested scope untouched.
func (s *Service) ResolveTeacherScope(actor Actor, requested models.Scope) (models.Scope, error) {
	if actor.Role != RoleTeacher {
		return requested, nil
	}

	tch, err := s.store.GetTeacher(actor.ID)
	if err != nil {
		return models.Scope{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if tch == nil {
		logger.Debug.Printf("teacher %d has no profile row, keeping requested scope", actor.ID)
		return requested, nil
	}

	scope := requested
	if tch.Module != "" {
		scope.Module = tch.Module
	}
	if tch.Section != "" {
		scope.Section = tch.Section
	}
	if tch.Group != "" {
		scope.Group = tch.Group
	}
	return scope, nil
}

// CreateSession opens a new attendance session owned by the actor. Multiple
// sessions per scope and day are allowed, teachers reopen for makeup
// sessions that way.
func (s *Service) CreateSession(actor Actor, draft SessionDraft) (*models.Session, error) {
	if !actor.CanManageSessions() {
		return nil, ErrUnauthorized
	}

	scope, err := s.ResolveTeacherScope(actor, models.Scope{
		Module:  draft.Module,
		Section: draft.Section,
		Group:   draft.Group,
	})
	if err != nil {
		return nil, err
	}

	date := draft.Date
	if date == "" {
		date = time.Now().Format(models.DateFormat)
	} else if _, err := time.Parse(models.DateFormat, date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalid, draft.Date)
	}

	sess := &models.Session{
		Module:  scope.Module,
		Section: scope.Section,
		Group:   scope.Group,
		Date:    date,
		OwnerID: actor.ID,
		Status:  models.SessionOpen,
	}
	if err := s.store.CreateSession(sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	metrics.SessionEvents.WithLabelValues(sess.Module, "opened").Inc()
	logger.Info.Printf("session %d opened by %s %d for %s/%s/%s on %s",
		sess.ID, actor.Role, actor.ID, sess.Module, sess.Section, sess.Group, sess.Date)
	return sess, nil
}

// CloseSession transitions a session to closed. Owners and admins only.
// Closing an already-closed session succeeds silently.
func (s *Service) CloseSession(actor Actor, sessionID int64) error {
	sess, err := s.authorizeSession(actor, sessionID)
	if err != nil {
		return err
	}
	if sess.Status == models.SessionClosed {
		return nil
	}

	if err := s.store.SetSessionStatus(sessionID, models.SessionClosed); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	metrics.SessionEvents.WithLabelValues(sess.Module, "closed").Inc()
	logger.Info.Printf("session %d closed by %s %d", sessionID, actor.Role, actor.ID)
	return nil
}

// ListSessions returns recent sessions, own sessions only for teachers and
// everything for admins, newest date first with id as the tie-break.
func (s *Service) ListSessions(actor Actor, limit int) ([]models.Session, error) {
	if !actor.CanManageSessions() {
		return nil, ErrUnauthorized
	}
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	if limit > maxSessionLimit {
		limit = maxSessionLimit
	}

	ownerID := int64(0)
	if actor.Role == RoleTeacher {
		ownerID = actor.ID
	}

	sessions, err := s.store.ListSessions(ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return sessions, nil
}

// authorizeSession loads a session and checks the actor may mutate it:
// the owning teacher or any admin.
func (s *Service) authorizeSession(actor Actor, sessionID int64) (*models.Session, error) {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if sess == nil {
		return nil, ErrNotFound
	}

	switch actor.Role {
	case RoleAdmin:
	case RoleTeacher:
		if sess.OwnerID != actor.ID {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrUnauthorized
	}
	return sess, nil
}
