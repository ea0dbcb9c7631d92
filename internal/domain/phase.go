package domain

import "time"

// PhaseAt derives a contest phase from its boundaries. Intervals are half-open:
// a contest is in submission on [start, submissionEnd) and voting on
// [submissionEnd, votingEnd). A completed contest stays completed.
func PhaseAt(start, submissionEnd, votingEnd time.Time, completed bool, now time.Time) Phase {
	switch {
	case completed:
		return PhaseCompleted
	case now.Before(start):
		return PhaseUpcoming
	case now.Before(submissionEnd):
		return PhaseSubmission
	case now.Before(votingEnd):
		return PhaseVoting
	default:
		return PhaseCompleted
	}
}

// ValidContestWindow reports whether start < submissionEnd < votingEnd.
func ValidContestWindow(start, submissionEnd, votingEnd time.Time) bool {
	return start.Before(submissionEnd) && submissionEnd.Before(votingEnd)
}
