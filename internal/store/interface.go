package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/upprop/internal/models"
)

// ErrDuplicateID is returned when an insert trips a unique constraint on a
// person/login identifier. Callers show "already exists" instead of a raw
// driver error.
var ErrDuplicateID = errors.New("identifier already exists")

type RosterStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateStudent(stu *models.Student) error
	UpdateStudent(stu *models.Student) error
	DeleteStudent(id int64) error
	GetStudent(id int64) (*models.Student, error)
	GetStudentByExternalID(externalID string) (*models.Student, error)
	// ListStudents applies AND over the non-empty scope fields and orders by
	// last name, first name, id.
	ListStudents(scope models.Scope) ([]models.Student, error)
	ListGroups() ([]string, error)

	CreateTeacher(tch *models.Teacher) error
	GetTeacher(id int64) (*models.Teacher, error)

	CreateSession(sess *models.Session) error
	GetSession(id int64) (*models.Session, error)
	SetSessionStatus(id int64, status string) error
	// ListSessions returns sessions ordered by date desc, id desc.
	// ownerID 0 means all owners.
	ListSessions(ownerID int64, limit int) ([]models.Session, error)

	// UpsertRecords writes the batch in a single transaction: every row is
	// inserted or overwrites the existing (session, student) row, and any
	// failure rolls the whole batch back.
	UpsertRecords(sessionID int64, recs []models.AttendanceRecord) error
	ListSessionRecords(sessionID int64) ([]models.AttendanceRecord, error)
	// ListStudentRecords returns record facts joined to their session for the
	// given students, ordered by session date asc, session id asc.
	ListStudentRecords(studentIDs []int64) ([]RecordFact, error)

	GetCredential(username string) (*models.Credential, error)
	CreateCredential(cred *models.Credential) error
	UpdateCredential(cred *models.Credential, withPassword bool) error

	CreateJustification(j *models.Justification) error
	ListJustifications(studentID int64) ([]models.Justification, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	// IsUniqueViolation tells a driver-specific unique-constraint error apart
	// from other failures.
	IsUniqueViolation func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) dupErr(err error) error {
	if s.IsUniqueViolation != nil && s.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	}
	return err
}

func (s *BaseStore) CreateStudent(stu *models.Student) error {
	query := s.Converter(`
		INSERT INTO students (external_id, last_name, first_name, email, module, section, group_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&stu.ID, query,
		stu.ExternalID, stu.LastName, stu.FirstName, stu.Email, stu.Module, stu.Section, stu.Group)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", s.dupErr(err))
	}
	return nil
}

func (s *BaseStore) UpdateStudent(stu *models.Student) error {
	query := s.Converter(`
		UPDATE students
		SET external_id = ?, last_name = ?, first_name = ?, email = ?, module = ?, section = ?, group_id = ?
		WHERE id = ?
	`)
	_, err := s.DB.Exec(query,
		stu.ExternalID, stu.LastName, stu.FirstName, stu.Email, stu.Module, stu.Section, stu.Group, stu.ID)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", s.dupErr(err))
	}
	return nil
}

func (s *BaseStore) DeleteStudent(id int64) error {
	if _, err := s.DB.Exec(s.Converter(`DELETE FROM students WHERE id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

func (s *BaseStore) GetStudent(id int64) (*models.Student, error) {
	var stu models.Student
	query := s.Converter(`
		SELECT id, external_id, last_name, first_name, email, module, section, group_id
		FROM students
		WHERE id = ?
	`)
	err := s.DB.Get(&stu, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &stu, nil
}

func (s *BaseStore) GetStudentByExternalID(externalID string) (*models.Student, error) {
	var stu models.Student
	query := s.Converter(`
		SELECT id, external_id, last_name, first_name, email, module, section, group_id
		FROM students
		WHERE external_id = ?
	`)
	err := s.DB.Get(&stu, query, externalID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student by external id: %w", err)
	}
	return &stu, nil
}

func (s *BaseStore) ListStudents(scope models.Scope) ([]models.Student, error) {
	query := `
		SELECT id, external_id, last_name, first_name, email, module, section, group_id
		FROM students
	`
	var clauses []string
	var args []interface{}
	if scope.Module != "" {
		clauses = append(clauses, "module = ?")
		args = append(args, scope.Module)
	}
	if scope.Section != "" {
		clauses = append(clauses, "section = ?")
		args = append(args, scope.Section)
	}
	if scope.Group != "" {
		clauses = append(clauses, "group_id = ?")
		args = append(args, scope.Group)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY last_name ASC, first_name ASC, id ASC"

	var students []models.Student
	if err := s.DB.Select(&students, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) ListGroups() ([]string, error) {
	var groups []string
	err := s.DB.Select(&groups, `
		SELECT DISTINCT group_id
		FROM students
		WHERE group_id <> ''
		ORDER BY group_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *BaseStore) CreateTeacher(tch *models.Teacher) error {
	query := s.Converter(`
		INSERT INTO teachers (external_id, last_name, first_name, email, module, section, group_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&tch.ID, query,
		tch.ExternalID, tch.LastName, tch.FirstName, tch.Email, tch.Module, tch.Section, tch.Group)
	if err != nil {
		return fmt.Errorf("failed to create teacher: %w", s.dupErr(err))
	}
	return nil
}

func (s *BaseStore) GetTeacher(id int64) (*models.Teacher, error) {
	var tch models.Teacher
	query := s.Converter(`
		SELECT id, external_id, last_name, first_name, email, module, section, group_id
		FROM teachers
		WHERE id = ?
	`)
	err := s.DB.Get(&tch, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return &tch, nil
}

func (s *BaseStore) CreateSession(sess *models.Session) error {
	query := s.Converter(`
		INSERT INTO attendance_sessions (module, section, group_id, date, owner_id, status)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&sess.ID, query,
		sess.Module, sess.Section, sess.Group, sess.Date, sess.OwnerID, sess.Status)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *BaseStore) GetSession(id int64) (*models.Session, error) {
	var sess models.Session
	query := s.Converter(`
		SELECT id, module, section, group_id, date, owner_id, status
		FROM attendance_sessions
		WHERE id = ?
	`)
	err := s.DB.Get(&sess, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

func (s *BaseStore) SetSessionStatus(id int64, status string) error {
	query := s.Converter(`UPDATE attendance_sessions SET status = ? WHERE id = ?`)
	if _, err := s.DB.Exec(query, status, id); err != nil {
		return fmt.Errorf("failed to set session status: %w", err)
	}
	return nil
}

func (s *BaseStore) ListSessions(ownerID int64, limit int) ([]models.Session, error) {
	query := `
		SELECT id, module, section, group_id, date, owner_id, status
		FROM attendance_sessions
	`
	var args []interface{}
	if ownerID != 0 {
		query += " WHERE owner_id = ?"
		args = append(args, ownerID)
	}
	query += " ORDER BY date DESC, id DESC LIMIT ?"
	args = append(args, limit)

	var sessions []models.Session
	if err := s.DB.Select(&sessions, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *BaseStore) UpsertRecords(sessionID int64, recs []models.AttendanceRecord) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := s.Converter(`
		INSERT INTO attendance_records (session_id, student_id, presence, participated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id, student_id) DO UPDATE SET
			presence = excluded.presence,
			participated = excluded.participated
	`)
	for _, rec := range recs {
		if _, err := tx.Exec(query, sessionID, rec.StudentID, rec.Presence, rec.Participated); err != nil {
			return fmt.Errorf("failed to upsert record for student %d: %w", rec.StudentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

func (s *BaseStore) ListSessionRecords(sessionID int64) ([]models.AttendanceRecord, error) {
	var recs []models.AttendanceRecord
	query := s.Converter(`
		SELECT session_id, student_id, presence, participated
		FROM attendance_records
		WHERE session_id = ?
		ORDER BY student_id ASC
	`)
	if err := s.DB.Select(&recs, query, sessionID); err != nil {
		return nil, fmt.Errorf("failed to list session records: %w", err)
	}
	return recs, nil
}

func (s *BaseStore) ListStudentRecords(studentIDs []int64) ([]RecordFact, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
		SELECT ar.student_id, ar.session_id, sess.date AS session_date, ar.presence, ar.participated
		FROM attendance_records ar
		INNER JOIN attendance_sessions sess ON sess.id = ar.session_id
		WHERE ar.student_id IN (?)
		ORDER BY sess.date ASC, sess.id ASC
	`, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build student records query: %w", err)
	}

	var facts []RecordFact
	if err := s.DB.Select(&facts, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list student records: %w", err)
	}
	return facts, nil
}

func (s *BaseStore) GetCredential(username string) (*models.Credential, error) {
	var cred models.Credential
	query := s.Converter(`
		SELECT id, username, password_hash, role, full_name, email, person_id, created_at, updated_at
		FROM logins
		WHERE username = ?
	`)
	err := s.DB.Get(&cred, query, username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

func (s *BaseStore) CreateCredential(cred *models.Credential) error {
	query := s.Converter(`
		INSERT INTO logins (username, password_hash, role, full_name, email, person_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&cred.ID, query,
		cred.Username, cred.PasswordHash, cred.Role, cred.FullName, cred.Email, cred.PersonID)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", s.dupErr(err))
	}
	return nil
}

func (s *BaseStore) UpdateCredential(cred *models.Credential, withPassword bool) error {
	query := `
		UPDATE logins
		SET username = ?, role = ?, full_name = ?, email = ?, person_id = ?, updated_at = CURRENT_TIMESTAMP
	`
	args := []interface{}{cred.Username, cred.Role, cred.FullName, cred.Email, cred.PersonID}
	if withPassword {
		query += ", password_hash = ?"
		args = append(args, cred.PasswordHash)
	}
	query += " WHERE id = ?"
	args = append(args, cred.ID)

	if _, err := s.DB.Exec(s.Converter(query), args...); err != nil {
		return fmt.Errorf("failed to update credential: %w", s.dupErr(err))
	}
	return nil
}

func (s *BaseStore) CreateJustification(j *models.Justification) error {
	if j.Status == "" {
		j.Status = models.JustificationPending
	}
	query := s.Converter(`
		INSERT INTO justifications (student_id, session_id, reason, evidence, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&j.ID, query, j.StudentID, j.SessionID, j.Reason, j.Evidence, j.Status)
	if err != nil {
		return fmt.Errorf("failed to create justification: %w", err)
	}
	return nil
}

func (s *BaseStore) ListJustifications(studentID int64) ([]models.Justification, error) {
	var js []models.Justification
	query := s.Converter(`
		SELECT id, student_id, session_id, reason, evidence, status
		FROM justifications
		WHERE student_id = ?
		ORDER BY id ASC
	`)
	if err := s.DB.Select(&js, query, studentID); err != nil {
		return nil, fmt.Errorf("failed to list justifications: %w", err)
	}
	return js, nil
}
