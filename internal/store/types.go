package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// RecordFact is an attendance record joined to its session, the raw material
// for summary aggregation.
type RecordFact struct {
	StudentID    int64  `db:"student_id"`
	SessionID    int64  `db:"session_id"`
	SessionDate  string `db:"session_date"`
	Presence     string `db:"presence"`
	Participated bool   `db:"participated"`
}
