// Package account keeps login credentials synced to person records. It is a
// collaborator of the attendance core, invoked after successful person
// writes, never inside them.
package account

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/shrimpsizemoose/upprop/internal/models"
	"github.com/shrimpsizemoose/upprop/internal/store"
)

// Provisioning outcomes.
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
)

const (
	fallbackStudentSeed = "student"
	teacherSeed         = "teacher123"
)

type Provisioner struct {
	store store.RosterStore
}

func NewProvisioner(st store.RosterStore) *Provisioner {
	return &Provisioner{store: st}
}

// SeedPassword derives the deterministic first password for a student from
// their first name: trimmed, accents folded, lowercased, inner whitespace
// removed. An empty result falls back to "student".
func SeedPassword(firstName string) string {
	base := strings.TrimSpace(firstName)
	if base == "" {
		return fallbackStudentSeed
	}

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, base); err == nil {
		base = folded
	}
	base = strings.ToLower(base)
	base = strings.Join(strings.Fields(base), "")
	if base == "" {
		return fallbackStudentSeed
	}
	return base
}

// EnsureStudentLogin creates or syncs the login row for a student. Username
// is the student's external id. The seed password is only written on
// creation or when resetPassword is set.
func (p *Provisioner) EnsureStudentLogin(stu *models.Student, resetPassword bool) (string, error) {
	if stu.ExternalID == "" {
		return "", fmt.Errorf("student %d has no external id", stu.ID)
	}
	return p.ensure(stu.ExternalID, "student", fullName(stu.FirstName, stu.LastName, stu.ExternalID),
		stu.Email, stu.ID, SeedPassword(stu.FirstName), resetPassword)
}

// EnsureTeacherLogin creates or syncs the login row for a teacher. Username
// is the email when present, the external id otherwise, and the seed
// password is the shared staff default.
func (p *Provisioner) EnsureTeacherLogin(tch *models.Teacher, resetPassword bool) (string, error) {
	username := tch.Email
	if username == "" {
		username = tch.ExternalID
	}
	if username == "" {
		return "", fmt.Errorf("teacher %d has neither email nor external id", tch.ID)
	}
	return p.ensure(username, "teacher", fullName(tch.FirstName, tch.LastName, username),
		tch.Email, tch.ID, teacherSeed, resetPassword)
}

func (p *Provisioner) ensure(username, role, name, email string, personID int64, seed string, resetPassword bool) (string, error) {
	existing, err := p.store.GetCredential(username)
	if err != nil {
		return "", fmt.Errorf("failed to look up credential %s: %w", username, err)
	}

	if existing == nil {
		hash, err := hashPassword(seed)
		if err != nil {
			return "", err
		}
		cred := &models.Credential{
			Username:     username,
			PasswordHash: hash,
			Role:         role,
			FullName:     name,
			Email:        email,
			PersonID:     personID,
		}
		if err := p.store.CreateCredential(cred); err != nil {
			return "", fmt.Errorf("failed to create credential %s: %w", username, err)
		}
		return OutcomeCreated, nil
	}

	existing.Role = role
	existing.FullName = name
	existing.Email = email
	existing.PersonID = personID
	if resetPassword {
		hash, err := hashPassword(seed)
		if err != nil {
			return "", err
		}
		existing.PasswordHash = hash
	}
	if err := p.store.UpdateCredential(existing, resetPassword); err != nil {
		return "", fmt.Errorf("failed to update credential %s: %w", username, err)
	}
	return OutcomeUpdated, nil
}

// VerifyPassword checks a cleartext password against a stored credential.
func VerifyPassword(cred *models.Credential, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) == nil
}

func hashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func fullName(first, last, fallback string) string {
	name := strings.TrimSpace(first + " " + last)
	if name == "" {
		return fallback
	}
	return name
}
