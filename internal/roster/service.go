package roster

import (
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/models"
	"github.com/shrimpsizemoose/upprop/internal/store"
)

// CredentialEnsurer keeps login credentials synced to person records. The
// outcome is "created" or "updated". Invoked after successful person writes;
// its failures are logged and never undo the person write.
type CredentialEnsurer interface {
	EnsureStudentLogin(stu *models.Student, resetPassword bool) (string, error)
	EnsureTeacherLogin(tch *models.Teacher, resetPassword bool) (string, error)
}

// Service is the attendance core: session lifecycle, mark writes and
// summary aggregation on top of a RosterStore.
type Service struct {
	store    store.RosterStore
	accounts CredentialEnsurer
}

func NewService(st store.RosterStore, accounts CredentialEnsurer) *Service {
	return &Service{store: st, accounts: accounts}
}

func (s *Service) ensureStudentLogin(stu *models.Student, resetPassword bool) {
	if s.accounts == nil {
		return
	}
	outcome, err := s.accounts.EnsureStudentLogin(stu, resetPassword)
	if err != nil {
		logger.Error.Printf("provision login for student %s failed: %v", stu.ExternalID, err)
		return
	}
	logger.Debug.Printf("login %s for student %s", outcome, stu.ExternalID)
}

func (s *Service) ensureTeacherLogin(tch *models.Teacher, resetPassword bool) {
	if s.accounts == nil {
		return
	}
	outcome, err := s.accounts.EnsureTeacherLogin(tch, resetPassword)
	if err != nil {
		logger.Error.Printf("provision login for teacher %s failed: %v", tch.ExternalID, err)
		return
	}
	logger.Debug.Printf("login %s for teacher %s", outcome, tch.ExternalID)
}
