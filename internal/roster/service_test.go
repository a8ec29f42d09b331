package roster

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/upprop/internal/models"
	"github.com/shrimpsizemoose/upprop/internal/store"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Close() error {
	return nil
}

func (m *MockStore) ApplyMigrations(dir string) error {
	return nil
}

func (m *MockStore) CreateStudent(stu *models.Student) error {
	args := m.Called(stu)
	return args.Error(0)
}

func (m *MockStore) UpdateStudent(stu *models.Student) error {
	args := m.Called(stu)
	return args.Error(0)
}

func (m *MockStore) DeleteStudent(id int64) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) GetStudent(id int64) (*models.Student, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Student), args.Error(1)
}

func (m *MockStore) GetStudentByExternalID(externalID string) (*models.Student, error) {
	return nil, nil
}

func (m *MockStore) ListStudents(scope models.Scope) ([]models.Student, error) {
	args := m.Called(scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockStore) ListGroups() ([]string, error) {
	return nil, nil
}

func (m *MockStore) CreateTeacher(tch *models.Teacher) error {
	args := m.Called(tch)
	return args.Error(0)
}

func (m *MockStore) GetTeacher(id int64) (*models.Teacher, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Teacher), args.Error(1)
}

func (m *MockStore) CreateSession(sess *models.Session) error {
	args := m.Called(sess)
	return args.Error(0)
}

func (m *MockStore) GetSession(id int64) (*models.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockStore) SetSessionStatus(id int64, status string) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockStore) ListSessions(ownerID int64, limit int) ([]models.Session, error) {
	args := m.Called(ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Session), args.Error(1)
}

func (m *MockStore) UpsertRecords(sessionID int64, recs []models.AttendanceRecord) error {
	args := m.Called(sessionID, recs)
	return args.Error(0)
}

func (m *MockStore) ListSessionRecords(sessionID int64) ([]models.AttendanceRecord, error) {
	args := m.Called(sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AttendanceRecord), args.Error(1)
}

func (m *MockStore) ListStudentRecords(studentIDs []int64) ([]store.RecordFact, error) {
	args := m.Called(studentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.RecordFact), args.Error(1)
}

func (m *MockStore) GetCredential(username string) (*models.Credential, error) {
	return nil, nil
}

func (m *MockStore) CreateCredential(cred *models.Credential) error {
	return nil
}

func (m *MockStore) UpdateCredential(cred *models.Credential, withPassword bool) error {
	return nil
}

func (m *MockStore) CreateJustification(j *models.Justification) error {
	args := m.Called(j)
	return args.Error(0)
}

func (m *MockStore) ListJustifications(studentID int64) ([]models.Justification, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Justification), args.Error(1)
}

// fakeAccounts records provisioning calls instead of touching a store.
type fakeAccounts struct {
	studentCalls []bool
	teacherCalls []bool
}

func (f *fakeAccounts) EnsureStudentLogin(stu *models.Student, resetPassword bool) (string, error) {
	f.studentCalls = append(f.studentCalls, resetPassword)
	return "created", nil
}

func (f *fakeAccounts) EnsureTeacherLogin(tch *models.Teacher, resetPassword bool) (string, error) {
	f.teacherCalls = append(f.teacherCalls, resetPassword)
	return "created", nil
}

func TestCreateSession(t *testing.T) {
	teacher := Actor{ID: 7, Role: RoleTeacher}

	t.Run("students may not open sessions", func(t *testing.T) {
		svc := NewService(new(MockStore), nil)
		_, err := svc.CreateSession(Actor{ID: 3, Role: RoleStudent}, SessionDraft{})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("teacher profile scope wins over the request", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetTeacher", int64(7)).
			Return(&models.Teacher{ID: 7, Module: "bio101", Group: "g1"}, nil).Once()
		st.On("CreateSession", mock.MatchedBy(func(sess *models.Session) bool {
			return sess.Module == "bio101" &&
				sess.Group == "g1" &&
				sess.Section == "B" &&
				sess.OwnerID == 7 &&
				sess.Status == models.SessionOpen
		})).Return(nil).Once()

		svc := NewService(st, nil)
		sess, err := svc.CreateSession(teacher, SessionDraft{
			Module:  "chem202", // ignored, profile has a module
			Section: "B",       // kept, profile leaves section blank
			Group:   "g9",      // ignored, profile has a group
			Date:    "2025-03-01",
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01", sess.Date)
		st.AssertExpectations(t)
	})

	t.Run("admin keeps the requested scope", func(t *testing.T) {
		st := new(MockStore)
		st.On("CreateSession", mock.MatchedBy(func(sess *models.Session) bool {
			return sess.Module == "chem202" && sess.Group == "g9"
		})).Return(nil).Once()

		svc := NewService(st, nil)
		_, err := svc.CreateSession(Actor{ID: 1, Role: RoleAdmin}, SessionDraft{
			Module: "chem202",
			Group:  "g9",
			Date:   "2025-03-01",
		})
		require.NoError(t, err)
		st.AssertExpectations(t)
	})

	t.Run("empty date defaults to today", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetTeacher", int64(7)).Return(&models.Teacher{ID: 7}, nil).Once()
		st.On("CreateSession", mock.Anything).Return(nil).Once()

		svc := NewService(st, nil)
		sess, err := svc.CreateSession(teacher, SessionDraft{})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Date)
	})

	t.Run("malformed date is rejected", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetTeacher", int64(7)).Return(&models.Teacher{ID: 7}, nil).Once()

		svc := NewService(st, nil)
		_, err := svc.CreateSession(teacher, SessionDraft{Date: "01/03/2025"})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestCloseSession(t *testing.T) {
	owned := func() *models.Session {
		return &models.Session{ID: 42, OwnerID: 7, Status: models.SessionOpen}
	}

	t.Run("missing session", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(nil, nil).Once()

		svc := NewService(st, nil)
		err := svc.CloseSession(Actor{ID: 7, Role: RoleTeacher}, 42)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owner closes own session", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(owned(), nil).Once()
		st.On("SetSessionStatus", int64(42), models.SessionClosed).Return(nil).Once()

		svc := NewService(st, nil)
		require.NoError(t, svc.CloseSession(Actor{ID: 7, Role: RoleTeacher}, 42))
		st.AssertExpectations(t)
	})

	t.Run("other teacher is rejected", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(owned(), nil).Once()

		svc := NewService(st, nil)
		err := svc.CloseSession(Actor{ID: 8, Role: RoleTeacher}, 42)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("admin closes anyone's session", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(owned(), nil).Once()
		st.On("SetSessionStatus", int64(42), models.SessionClosed).Return(nil).Once()

		svc := NewService(st, nil)
		require.NoError(t, svc.CloseSession(Actor{ID: 1, Role: RoleAdmin}, 42))
		st.AssertExpectations(t)
	})

	t.Run("closing twice is a no-op", func(t *testing.T) {
		st := new(MockStore)
		closed := owned()
		closed.Status = models.SessionClosed
		st.On("GetSession", int64(42)).Return(closed, nil).Once()

		svc := NewService(st, nil)
		require.NoError(t, svc.CloseSession(Actor{ID: 7, Role: RoleTeacher}, 42))
		st.AssertNotCalled(t, "SetSessionStatus", mock.Anything, mock.Anything)
	})
}

func TestListSessions(t *testing.T) {
	t.Run("teacher sees own sessions with default limit", func(t *testing.T) {
		st := new(MockStore)
		st.On("ListSessions", int64(7), 20).Return([]models.Session{}, nil).Once()

		svc := NewService(st, nil)
		_, err := svc.ListSessions(Actor{ID: 7, Role: RoleTeacher}, 0)
		require.NoError(t, err)
		st.AssertExpectations(t)
	})

	t.Run("admin sees everything and limit is capped", func(t *testing.T) {
		st := new(MockStore)
		st.On("ListSessions", int64(0), 200).Return([]models.Session{}, nil).Once()

		svc := NewService(st, nil)
		_, err := svc.ListSessions(Actor{ID: 1, Role: RoleAdmin}, 5000)
		require.NoError(t, err)
		st.AssertExpectations(t)
	})
}

func TestSaveAttendance(t *testing.T) {
	teacher := Actor{ID: 7, Role: RoleTeacher}
	open := func() *models.Session {
		return &models.Session{
			ID: 42, Module: "bio101", Group: "g1",
			OwnerID: 7, Status: models.SessionOpen,
		}
	}
	roster := []models.Student{
		{ID: 1, ExternalID: "s001", LastName: "Adams", FirstName: "Alice", Module: "bio101", Group: "g1"},
		{ID: 2, ExternalID: "s002", LastName: "Berg", FirstName: "Bo", Module: "bio101", Group: "g1"},
	}

	t.Run("closed session rejects writes", func(t *testing.T) {
		st := new(MockStore)
		closed := open()
		closed.Status = models.SessionClosed
		st.On("GetSession", int64(42)).Return(closed, nil).Once()

		svc := NewService(st, nil)
		_, err := svc.SaveAttendance(teacher, 42, []Mark{{StudentID: 1, Presence: models.Present}})
		assert.ErrorIs(t, err, ErrSessionClosed)
		st.AssertNotCalled(t, "UpsertRecords", mock.Anything, mock.Anything)
	})

	t.Run("bad presence value is rejected", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(open(), nil).Once()

		svc := NewService(st, nil)
		_, err := svc.SaveAttendance(teacher, 42, []Mark{{StudentID: 1, Presence: "maybe"}})
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("out-of-scope marks are dropped not errored", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(open(), nil).Once()
		st.On("ListStudents", models.Scope{Module: "bio101", Group: "g1"}).
			Return(roster, nil).Once()
		st.On("UpsertRecords", int64(42), mock.MatchedBy(func(recs []models.AttendanceRecord) bool {
			return len(recs) == 2
		})).Return(nil).Once()

		svc := NewService(st, nil)
		written, err := svc.SaveAttendance(teacher, 42, []Mark{
			{StudentID: 1, Presence: models.Present, Participated: true},
			{StudentID: 2, Presence: models.Absent},
			{StudentID: 99, Presence: models.Present}, // not on this roster
		})
		require.NoError(t, err)
		assert.Equal(t, 2, written)
		st.AssertExpectations(t)
	})

	t.Run("resubmission passes the full batch through", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(open(), nil).Twice()
		st.On("ListStudents", mock.Anything).Return(roster, nil).Twice()
		st.On("UpsertRecords", int64(42), mock.Anything).Return(nil).Twice()

		svc := NewService(st, nil)
		marks := []Mark{{StudentID: 1, Presence: models.Absent}}
		for i := 0; i < 2; i++ {
			written, err := svc.SaveAttendance(teacher, 42, marks)
			require.NoError(t, err)
			assert.Equal(t, 1, written)
		}
		st.AssertExpectations(t)
	})
}

func TestAttendanceSheet(t *testing.T) {
	t.Run("closed sessions stay readable", func(t *testing.T) {
		st := new(MockStore)
		closed := &models.Session{ID: 42, Group: "g1", OwnerID: 7, Status: models.SessionClosed}
		st.On("GetSession", int64(42)).Return(closed, nil).Once()
		st.On("ListStudents", models.Scope{Group: "g1"}).
			Return([]models.Student{{ID: 1}, {ID: 2}}, nil).Once()
		st.On("ListSessionRecords", int64(42)).
			Return([]models.AttendanceRecord{
				{SessionID: 42, StudentID: 1, Presence: models.Present},
			}, nil).Once()

		svc := NewService(st, nil)
		sheet, err := svc.AttendanceSheet(Actor{ID: 7, Role: RoleTeacher}, 42)
		require.NoError(t, err)
		assert.Len(t, sheet.Students, 2)
		assert.Len(t, sheet.Records, 1)
		assert.Equal(t, models.Present, sheet.Records[1].Presence)
	})
}

func TestSummarize(t *testing.T) {
	alice := models.Student{ID: 1, ExternalID: "s001", LastName: "Adams", FirstName: "Alice", Module: "bio101"}

	facts := func(presences []string, participated []bool) []store.RecordFact {
		out := make([]store.RecordFact, len(presences))
		for i, p := range presences {
			out[i] = store.RecordFact{
				StudentID:   1,
				SessionID:   int64(i + 1),
				SessionDate: "2025-03-0" + string(rune('1'+i)),
				Presence:    p,
			}
			if i < len(participated) {
				out[i].Participated = participated[i]
			}
		}
		return out
	}

	t.Run("counts and strip from mixed history", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetStudent", int64(1)).Return(&alice, nil).Once()
		st.On("ListStudentRecords", []int64{1}).Return(facts(
			[]string{models.Present, models.Present, models.Absent, models.Present, models.Absent, models.Present},
			[]bool{true, false, false, true, false, true},
		), nil).Once()

		svc := NewService(st, nil)
		summaries, err := svc.Summarize(SummaryScope{StudentID: 1})
		require.NoError(t, err)
		require.Len(t, summaries, 1)

		got := summaries[0]
		assert.Equal(t, 2, got.Absences)
		assert.Equal(t, 3, got.Participations)
		assert.Equal(t, []string{"P", "P", "A", "P", "A", "P"}, got.Marks)
		assert.Equal(t, "Good attendance - Good participation", got.Standing.Message)
		assert.Equal(t, SeverityGood, got.Standing.Severity)
	})

	t.Run("student with no records gets a blank strip", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetStudent", int64(1)).Return(&alice, nil).Once()
		st.On("ListStudentRecords", []int64{1}).Return([]store.RecordFact{}, nil).Once()

		svc := NewService(st, nil)
		summaries, err := svc.Summarize(SummaryScope{StudentID: 1})
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		assert.Equal(t, 0, summaries[0].Absences)
		assert.Equal(t, []string{"", "", "", "", "", ""}, summaries[0].Marks)
		assert.Equal(t, SeverityGood, summaries[0].Standing.Severity)
	})

	t.Run("unknown student", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetStudent", int64(9)).Return(nil, nil).Once()

		svc := NewService(st, nil)
		_, err := svc.Summarize(SummaryScope{StudentID: 9})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty filter match yields empty slice", func(t *testing.T) {
		st := new(MockStore)
		st.On("ListStudents", models.Scope{Group: "gX"}).Return([]models.Student{}, nil).Once()

		svc := NewService(st, nil)
		summaries, err := svc.Summarize(SummaryScope{Filter: models.Scope{Group: "gX"}})
		require.NoError(t, err)
		assert.NotNil(t, summaries)
		assert.Empty(t, summaries)
	})

	t.Run("five absences exclude regardless of participation", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetStudent", int64(1)).Return(&alice, nil).Once()
		st.On("ListStudentRecords", []int64{1}).Return(facts(
			[]string{models.Absent, models.Absent, models.Absent, models.Absent, models.Absent},
			[]bool{true, true, true, true, true},
		), nil).Once()

		svc := NewService(st, nil)
		summaries, err := svc.Summarize(SummaryScope{StudentID: 1})
		require.NoError(t, err)
		assert.Equal(t, SeverityCritical, summaries[0].Standing.Severity)
	})
}

func TestStudentSummary(t *testing.T) {
	t.Run("teachers have no self-view", func(t *testing.T) {
		svc := NewService(new(MockStore), nil)
		_, err := svc.StudentSummary(Actor{ID: 7, Role: RoleTeacher})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("student reads own rollup", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetStudent", int64(3)).
			Return(&models.Student{ID: 3, ExternalID: "s003", LastName: "Cho", FirstName: "Dana"}, nil).Once()
		st.On("ListStudentRecords", []int64{3}).Return([]store.RecordFact{}, nil).Once()

		svc := NewService(st, nil)
		summary, err := svc.StudentSummary(Actor{ID: 3, Role: RoleStudent})
		require.NoError(t, err)
		assert.Equal(t, int64(3), summary.Student.ID)
	})
}

func TestRegisterStudent(t *testing.T) {
	admin := Actor{ID: 1, Role: RoleAdmin}
	valid := func() *models.Student {
		return &models.Student{ExternalID: "s001", LastName: "Adams", FirstName: "Alice"}
	}

	t.Run("teachers may not register students", func(t *testing.T) {
		svc := NewService(new(MockStore), nil)
		err := svc.RegisterStudent(Actor{ID: 7, Role: RoleTeacher}, valid())
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("validation failures map to invalid", func(t *testing.T) {
		svc := NewService(new(MockStore), nil)
		err := svc.RegisterStudent(admin, &models.Student{ExternalID: "s001"})
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("duplicate id surfaces as conflict", func(t *testing.T) {
		st := new(MockStore)
		st.On("CreateStudent", mock.Anything).Return(store.ErrDuplicateID).Once()

		svc := NewService(st, nil)
		err := svc.RegisterStudent(admin, valid())
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("success provisions a login with a fresh password", func(t *testing.T) {
		st := new(MockStore)
		st.On("CreateStudent", mock.Anything).Return(nil).Once()
		accounts := &fakeAccounts{}

		svc := NewService(st, accounts)
		require.NoError(t, svc.RegisterStudent(admin, valid()))
		require.Len(t, accounts.studentCalls, 1)
		assert.True(t, accounts.studentCalls[0])
	})

	t.Run("update resyncs login without password reset", func(t *testing.T) {
		st := new(MockStore)
		stu := valid()
		stu.ID = 5
		st.On("GetStudent", int64(5)).Return(stu, nil).Once()
		st.On("UpdateStudent", mock.Anything).Return(nil).Once()
		accounts := &fakeAccounts{}

		svc := NewService(st, accounts)
		require.NoError(t, svc.UpdateStudent(admin, stu))
		require.Len(t, accounts.studentCalls, 1)
		assert.False(t, accounts.studentCalls[0])
	})
}

func TestSubmitJustification(t *testing.T) {
	student := Actor{ID: 3, Role: RoleStudent}

	t.Run("teachers may not file claims", func(t *testing.T) {
		svc := NewService(new(MockStore), nil)
		err := svc.SubmitJustification(Actor{ID: 7, Role: RoleTeacher}, &models.Justification{Reason: "x"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("claim is forced onto the caller and starts pending", func(t *testing.T) {
		st := new(MockStore)
		st.On("CreateJustification", mock.MatchedBy(func(j *models.Justification) bool {
			return j.StudentID == 3 && j.Status == models.JustificationPending
		})).Return(nil).Once()

		svc := NewService(st, nil)
		j := &models.Justification{
			StudentID: 99, // ignored
			Reason:    "medical appointment",
			Status:    models.JustificationApproved, // ignored
		}
		require.NoError(t, svc.SubmitJustification(student, j))
		st.AssertExpectations(t)
	})

	t.Run("claims against missing sessions are rejected", func(t *testing.T) {
		st := new(MockStore)
		st.On("GetSession", int64(42)).Return(nil, nil).Once()

		svc := NewService(st, nil)
		err := svc.SubmitJustification(student, &models.Justification{SessionID: 42, Reason: "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("students read only their own claims", func(t *testing.T) {
		svc := NewService(new(MockStore), nil)
		_, err := svc.ListJustifications(student, 99)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestStoreErrorsWrapAsPersistence(t *testing.T) {
	st := new(MockStore)
	st.On("GetSession", int64(42)).Return(nil, errors.New("disk on fire")).Once()

	svc := NewService(st, nil)
	err := svc.CloseSession(Actor{ID: 1, Role: RoleAdmin}, 42)
	assert.ErrorIs(t, err, ErrPersistence)
}
