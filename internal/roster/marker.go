package roster

import (
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/upprop/internal/metrics"
	"github.com/shrimpsizemoose/upprop/internal/models"
)

// Mark is one student's submitted presence/participation for a session.
type Mark struct {
	StudentID    int64  `json:"student_id"`
	Presence     string `json:"presence"`
	Participated bool   `json:"participated"`
}

// Sheet is the editable view of one session: the students in scope and the
// marks recorded so far. Students without a record are shown as unmarked;
// they count as absent only on the summary read path, no rows are invented
// for them.
type Sheet struct {
	Session  *models.Session                   `json:"session"`
	Students []models.Student                  `json:"students"`
	Records  map[int64]models.AttendanceRecord `json:"records"`
}

// SaveAttendance writes a batch of marks for one session. Marks for students
// outside the session scope are dropped, not errored: dashboards routinely
// post stale rosters. The retained batch commits atomically and the count of
// written marks is returned. Closed sessions reject writes.
func (s *Service) SaveAttendance(actor Actor, sessionID int64, marks []Mark) (int, error) {
	sess, err := s.authorizeSession(actor, sessionID)
	if err != nil {
		return 0, err
	}
	if sess.Status == models.SessionClosed {
		return 0, ErrSessionClosed
	}

	recs := make([]models.AttendanceRecord, 0, len(marks))
	for _, m := range marks {
		rec := models.AttendanceRecord{
			SessionID:    sessionID,
			StudentID:    m.StudentID,
			Presence:     m.Presence,
			Participated: m.Participated,
		}
		if err := rec.Validate(); err != nil {
			return 0, fmt.Errorf("%w: mark for student %d: %v", ErrInvalid, m.StudentID, err)
		}
		recs = append(recs, rec)
	}

	students, err := s.store.ListStudents(sess.Scope())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	inScope := make(map[int64]bool, len(students))
	for _, stu := range students {
		inScope[stu.ID] = true
	}

	retained := recs[:0]
	for _, rec := range recs {
		if !inScope[rec.StudentID] {
			logger.Debug.Printf("dropping mark for out-of-scope student %d in session %d", rec.StudentID, sessionID)
			continue
		}
		retained = append(retained, rec)
	}

	if err := s.store.UpsertRecords(sessionID, retained); err != nil {
		return 0, fmt.Errorf("%w: save attendance for session %d: %v", ErrPersistence, sessionID, err)
	}

	for _, rec := range retained {
		metrics.MarksWritten.WithLabelValues(sess.Module, rec.Presence).Inc()
	}

	logger.Info.Printf("session %d: %d/%d marks written by %s %d",
		sessionID, len(retained), len(marks), actor.Role, actor.ID)
	return len(retained), nil
}

// AttendanceSheet loads the session roster for taking or editing marks.
// Same access rule as writing, but closed sessions stay readable.
func (s *Service) AttendanceSheet(actor Actor, sessionID int64) (*Sheet, error) {
	sess, err := s.authorizeSession(actor, sessionID)
	if err != nil {
		return nil, err
	}

	students, err := s.store.ListStudents(sess.Scope())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	recs, err := s.store.ListSessionRecords(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	byStudent := make(map[int64]models.AttendanceRecord, len(recs))
	for _, rec := range recs {
		byStudent[rec.StudentID] = rec
	}

	return &Sheet{Session: sess, Students: students, Records: byStudent}, nil
}
