package roster

// Severity buckets driving display styling.
const (
	SeverityGood     = "good"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Standing policy thresholds. These are fixed policy, not configuration:
// 5 absences excludes outright, up to 2 absences still counts as good
// attendance, participation is praised from 3 and from 5 entries up.
const (
	exclusionAbsences       = 5
	goodAttendanceAbsences  = 2
	excellentParticipations = 5
	goodParticipations      = 3
)

const excludedMessage = "Excluded - too many absences. You need to participate more"

// Standing is the derived classification of a student's attendance history.
type Standing struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Classify maps absence and participation counts to a standing. The
// exclusion rule wins over any participation count.
func Classify(absences, participations int) Standing {
	if absences >= exclusionAbsences {
		return Standing{
			Message:  excludedMessage,
			Severity: SeverityCritical,
		}
	}

	attendance := "Average attendance"
	severity := SeverityWarning
	if absences <= goodAttendanceAbsences {
		attendance = "Good attendance"
		severity = SeverityGood
	}

	participation := "Needs to participate more"
	switch {
	case participations >= excellentParticipations:
		participation = "Excellent participation"
	case participations >= goodParticipations:
		participation = "Good participation"
	}

	return Standing{
		Message:  attendance + " - " + participation,
		Severity: severity,
	}
}
