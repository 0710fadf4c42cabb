package scoring

import (
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// Better reports whether candidate should replace current: a higher score
// wins, and at equal score the more recent submission wins.
func Better(candidate, current models.SubmissionState) bool {
	if candidate.Score != current.Score {
		return candidate.Score > current.Score
	}
	return candidate.Date > current.Date
}

// Select reduces raw judge records to the best submission. An empty input
// yields the never-submitted state.
func Select(records []models.SubmissionRecord) models.SubmissionState {
	best := models.NeverSubmitted()
	for _, rec := range records {
		if s := rec.Coerce(); Better(s, best) {
			best = s
		}
	}
	return best
}

// Trace is Select with a callback for every record examined, used by the
// checker's debug mode.
func Trace(records []models.SubmissionRecord, visit func(s models.SubmissionState, best bool)) models.SubmissionState {
	best := models.NeverSubmitted()
	for _, rec := range records {
		s := rec.Coerce()
		replaced := Better(s, best)
		if replaced {
			best = s
		}
		if visit != nil {
			visit(s, replaced)
		}
	}
	return best
}
