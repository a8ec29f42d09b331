package roster

import (
	"fmt"

	"github.com/shrimpsizemoose/upprop/internal/models"
	"github.com/shrimpsizemoose/upprop/internal/store"
)

// markWindow is how many of the newest marks a summary shows.
const markWindow = 6

// Summary is the derived, never-persisted rollup of one student's history.
// Marks holds the last markWindow presences as "P"/"A" codes in
// chronological order; when fewer records exist the leading slots stay
// blank so the newest marks keep their positions.
type Summary struct {
	Student        models.Student `json:"student"`
	Absences       int            `json:"absences"`
	Participations int            `json:"participations"`
	Marks          []string       `json:"marks"`
	Standing       Standing       `json:"standing"`
}

// SummaryScope selects either one student by id or a filtered set.
type SummaryScope struct {
	StudentID int64
	Filter    models.Scope
}

// Summarize recomputes summaries from persisted records, nothing is cached.
// Multi-student output is ordered by last name, first name, id.
func (s *Service) Summarize(scope SummaryScope) ([]Summary, error) {
	var students []models.Student
	if scope.StudentID != 0 {
		stu, err := s.store.GetStudent(scope.StudentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if stu == nil {
			return nil, ErrNotFound
		}
		students = []models.Student{*stu}
	} else {
		var err error
		students, err = s.store.ListStudents(scope.Filter)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	if len(students) == 0 {
		return []Summary{}, nil
	}

	ids := make([]int64, len(students))
	for i, stu := range students {
		ids[i] = stu.ID
	}
	facts, err := s.store.ListStudentRecords(ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// facts arrive ordered by session date then session id, grouping keeps
	// that order per student
	byStudent := make(map[int64][]store.RecordFact)
	for _, f := range facts {
		byStudent[f.StudentID] = append(byStudent[f.StudentID], f)
	}

	summaries := make([]Summary, 0, len(students))
	for _, stu := range students {
		summaries = append(summaries, summarizeStudent(stu, byStudent[stu.ID]))
	}
	return summaries, nil
}

// StudentSummary is the self-view: a student reads their own rollup.
func (s *Service) StudentSummary(actor Actor) (*Summary, error) {
	if actor.Role != RoleStudent {
		return nil, ErrUnauthorized
	}
	summaries, err := s.Summarize(SummaryScope{StudentID: actor.ID})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func summarizeStudent(stu models.Student, facts []store.RecordFact) Summary {
	absences, participations := 0, 0
	codes := make([]string, 0, len(facts))
	for _, f := range facts {
		if f.Presence == models.Present {
			codes = append(codes, "P")
		} else {
			codes = append(codes, "A")
			absences++
		}
		if f.Participated {
			participations++
		}
	}

	return Summary{
		Student:        stu,
		Absences:       absences,
		Participations: participations,
		Marks:          markStrip(codes),
		Standing:       Classify(absences, participations),
	}
}

// markStrip pins the newest markWindow codes to the tail, blanks lead.
func markStrip(codes []string) []string {
	marks := make([]string, markWindow)
	if len(codes) > markWindow {
		codes = codes[len(codes)-markWindow:]
	}
	copy(marks[markWindow-len(codes):], codes)
	return marks
}
