package scoring

import (
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// Normalize repairs a stored state. Out-of-range scores are treated as
// corrupt and reset to 0, not clamped.
func Normalize(s models.SubmissionState) models.SubmissionState {
	if s.Score < 0 || s.Score > models.MaxScore {
		s.Score = 0
	}
	if s.Date < 0 {
		s.Date = 0
	}
	if s.JudgeID < models.NoSubmission {
		s.JudgeID = models.NoSubmission
	}
	return s
}

func NormalizeRaw(raw models.RawSlot) models.SubmissionState {
	return Normalize(raw.Coerce())
}

// NormalizeRecord returns a copy of rec holding one normalized slot per
// problem; problems the record lacks get the never-submitted state.
func NormalizeRecord(rec models.UserRecord, problems models.ProblemList) models.UserRecord {
	out := rec.WithSlots(problems)
	for id, s := range out.Slots {
		out.Slots[id] = Normalize(s)
	}
	return out
}
