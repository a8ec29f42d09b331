package roster

// Role of an authenticated actor.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Actor is the authenticated caller passed explicitly into every operation.
// For teachers ID is the teachers-table row id, for students the
// students-table row id.
type Actor struct {
	ID   int64
	Role Role
}

// CanManageSessions reports whether the actor may open, close or mark
// sessions at all. Per-session ownership is checked separately.
func (a Actor) CanManageSessions() bool {
	return a.Role == RoleAdmin || a.Role == RoleTeacher
}
