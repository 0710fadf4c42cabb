package scoring

import (
	"fmt"
	"strings"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// Reconcile merges a freshly selected candidate into the stored state. The
// stored score never decreases and the date only moves forward at an equal
// or higher score.
func Reconcile(current, candidate models.SubmissionState) (models.SubmissionState, bool) {
	if Better(candidate, current) {
		return candidate, true
	}
	return current, false
}

type SlotOutcome struct {
	ProblemID string
	State     models.SubmissionState
	Updated   bool
}

// ReconcileRecord applies Reconcile to every problem of rec. candidates is
// keyed by problem id; a missing candidate leaves the slot untouched.
func ReconcileRecord(
	rec models.UserRecord,
	problems models.ProblemList,
	candidates map[string]models.SubmissionState,
) (models.UserRecord, []SlotOutcome) {
	out := rec.WithSlots(problems)
	outcomes := make([]SlotOutcome, 0, len(problems))

	for _, id := range problems {
		current := out.Slots[id]
		candidate, ok := candidates[id]
		if !ok {
			candidate = models.NeverSubmitted()
		}
		next, updated := Reconcile(current, candidate)
		out.Slots[id] = next
		outcomes = append(outcomes, SlotOutcome{ProblemID: id, State: next, Updated: updated})
	}

	return out, outcomes
}

// ProgressLine renders one user summary: identity columns followed by
// SCORE(DATE,JUDGEID) per problem, prefixed with + when the slot was
// updated in this run.
func ProgressLine(rec models.UserRecord, outcomes []SlotOutcome) string {
	var b strings.Builder
	b.WriteString(strings.Join([]string{rec.StudentID, rec.Surname, rec.GivenName, rec.AccountID}, "\t"))
	for _, o := range outcomes {
		b.WriteByte('\t')
		if o.Updated {
			b.WriteByte('+')
		}
		fmt.Fprintf(&b, "%d(%d,%d)", o.State.Score, o.State.Date, o.State.JudgeID)
	}
	return b.String()
}
