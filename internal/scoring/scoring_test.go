package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

func rec(score int, date, judgeID int64) models.SubmissionRecord {
	return models.NewSubmissionRecord(score, date, judgeID)
}

func state(score int, date, judgeID int64) models.SubmissionState {
	return models.SubmissionState{Score: score, Date: date, JudgeID: judgeID}
}

func TestSelect(t *testing.T) {
	testCases := []struct {
		name     string
		records  []models.SubmissionRecord
		expected models.SubmissionState
	}{
		{
			name:     "No records",
			records:  nil,
			expected: models.NeverSubmitted(),
		},
		{
			name: "Higher score beats more recent lower score, later date breaks ties",
			records: []models.SubmissionRecord{
				rec(80, 100, 5),
				rec(80, 50, 6),
				rec(60, 200, 7),
			},
			expected: state(80, 100, 5),
		},
		{
			name: "Later record with equal score and date does not displace",
			records: []models.SubmissionRecord{
				rec(100, 300, 1),
				rec(100, 300, 2),
			},
			expected: state(100, 300, 1),
		},
		{
			name: "Equal score, more recent date wins",
			records: []models.SubmissionRecord{
				rec(100, 300, 1),
				rec(100, 400, 2),
			},
			expected: state(100, 400, 2),
		},
		{
			name: "Zero score submission still records its date",
			records: []models.SubmissionRecord{
				rec(0, 1000, 42),
			},
			expected: state(0, 1000, 42),
		},
		{
			name: "Malformed fields fall back to defaults",
			records: []models.SubmissionRecord{
				{
					Score:          json.RawMessage(`"abc"`),
					SubmissionDate: json.RawMessage(`500`),
					JudgeID:        json.RawMessage(`null`),
				},
			},
			expected: state(0, 500, models.NoSubmission),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Select(tc.records))
			// selecting twice yields the same triple
			assert.Equal(t, Select(tc.records), Select(tc.records))
		})
	}
}

func TestSelect_ScoreIsMaximum(t *testing.T) {
	records := []models.SubmissionRecord{
		rec(10, 5, 1), rec(95, 1, 2), rec(40, 9, 3), rec(95, 0, 4), rec(70, 100, 5),
	}
	assert.Equal(t, 95, Select(records).Score)
	assert.Equal(t, int64(1), Select(records).Date)
}

func TestTrace(t *testing.T) {
	records := []models.SubmissionRecord{rec(50, 1, 1), rec(40, 2, 2), rec(50, 3, 3)}

	var replaced []bool
	best := Trace(records, func(_ models.SubmissionState, b bool) {
		replaced = append(replaced, b)
	})

	assert.Equal(t, Select(records), best)
	assert.Equal(t, []bool{true, false, true}, replaced)
}

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		raw      models.RawSlot
		expected models.SubmissionState
	}{
		{
			name:     "Valid data passes through",
			raw:      models.RawSlot{Score: "100", Date: "1683936000000", JudgeID: "12345"},
			expected: state(100, 1683936000000, 12345),
		},
		{
			name:     "Unparseable values",
			raw:      models.RawSlot{Score: "invalid", Date: "-1", JudgeID: "abc"},
			expected: models.NeverSubmitted(),
		},
		{
			name:     "Score above range is rejected, not clamped",
			raw:      models.RawSlot{Score: "150", Date: "1683936000000", JudgeID: "12345"},
			expected: state(0, 1683936000000, 12345),
		},
		{
			name:     "Score of 101",
			raw:      models.RawSlot{Score: "101", Date: "1", JudgeID: "1"},
			expected: state(0, 1, 1),
		},
		{
			name:     "Negative score",
			raw:      models.RawSlot{Score: "-50", Date: "1683936000000", JudgeID: "12345"},
			expected: state(0, 1683936000000, 12345),
		},
		{
			name:     "Judge id below sentinel",
			raw:      models.RawSlot{Score: "80", Date: "10", JudgeID: "-5"},
			expected: state(80, 10, models.NoSubmission),
		},
		{
			name:     "Large judge ids are accepted as is",
			raw:      models.RawSlot{Score: "80", Date: "10", JudgeID: "99999999999"},
			expected: state(80, 10, 99999999999),
		},
		{
			name:     "Boundary values",
			raw:      models.RawSlot{Score: "0", Date: "0", JudgeID: "-1"},
			expected: models.NeverSubmitted(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeRaw(tc.raw)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, got, Normalize(got), "normalization must be idempotent")
			assert.NoError(t, got.Validate())
		})
	}
}

func TestNormalizeRecord(t *testing.T) {
	problems := models.ProblemList{"ITP1_1_A", "ITP1_1_B"}
	in := models.NewUserRecord("123456", "Test", "Taro", "test1")
	in.SetSlot("ITP1_1_A", state(120, -3, -9))

	out := NormalizeRecord(in, problems)

	assert.Equal(t, "123456", out.StudentID)
	assert.Equal(t, "Test", out.Surname)
	assert.Equal(t, "Taro", out.GivenName)
	assert.Equal(t, "test1", out.AccountID)
	assert.Len(t, out.Slots, 2)
	assert.Equal(t, models.NeverSubmitted(), out.Slots["ITP1_1_A"])
	assert.Equal(t, models.NeverSubmitted(), out.Slots["ITP1_1_B"])
	assert.Equal(t, state(120, -3, -9), in.Slots["ITP1_1_A"], "input must not be mutated")
	assert.Equal(t, out, NormalizeRecord(out, problems))
}

func TestReconcile(t *testing.T) {
	testCases := []struct {
		name      string
		current   models.SubmissionState
		candidate models.SubmissionState
		expected  models.SubmissionState
		updated   bool
	}{
		{
			name:      "Score increases",
			current:   state(80, 1683936000000, 1),
			candidate: state(100, 1683936100000, 2),
			expected:  state(100, 1683936100000, 2),
			updated:   true,
		},
		{
			name:      "Same score, newer date",
			current:   state(100, 1683936000000, 1),
			candidate: state(100, 1683936100000, 2),
			expected:  state(100, 1683936100000, 2),
			updated:   true,
		},
		{
			name:      "Lower score never overwrites",
			current:   state(100, 1683936100000, 1),
			candidate: state(80, 1683936000000, 2),
			expected:  state(100, 1683936100000, 1),
		},
		{
			name:      "Lower score with newer date never overwrites",
			current:   state(100, 10, 1),
			candidate: state(80, 20, 2),
			expected:  state(100, 10, 1),
		},
		{
			name:      "Failed fetch leaves slot untouched",
			current:   state(60, 10, 1),
			candidate: models.NeverSubmitted(),
			expected:  state(60, 10, 1),
		},
		{
			name:      "Failed fetch on empty slot",
			current:   models.NeverSubmitted(),
			candidate: models.NeverSubmitted(),
			expected:  models.NeverSubmitted(),
		},
		{
			name:      "Identical state is not an update",
			current:   state(70, 10, 1),
			candidate: state(70, 10, 1),
			expected:  state(70, 10, 1),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, updated := Reconcile(tc.current, tc.candidate)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.updated, updated)
			assert.GreaterOrEqual(t, got.Score, tc.current.Score)

			// re-applying the same candidate changes nothing
			again, updatedAgain := Reconcile(got, tc.candidate)
			assert.Equal(t, got, again)
			assert.False(t, updatedAgain)
		})
	}
}

func TestReconcile_NonIncreasingCandidatesKeepState(t *testing.T) {
	current := state(90, 500, 9)
	for _, c := range []models.SubmissionState{state(90, 500, 1), state(90, 400, 2), state(10, 900, 3), models.NeverSubmitted()} {
		next, updated := Reconcile(current, c)
		assert.False(t, updated)
		assert.Equal(t, current, next)
	}
}

func TestReconcileRecord(t *testing.T) {
	problems := models.ProblemList{"A", "B", "C"}
	current := models.NewUserRecord("1", "Sato", "Hanako", "sato")
	current.SetSlot("A", state(100, 10, 1))
	current.SetSlot("B", state(50, 10, 2))

	out, outcomes := ReconcileRecord(current, problems, map[string]models.SubmissionState{
		"A": state(90, 20, 3),
		"B": state(70, 5, 4),
	})

	assert.Equal(t, state(100, 10, 1), out.Slot("A"))
	assert.Equal(t, state(70, 5, 4), out.Slot("B"))
	assert.Equal(t, models.NeverSubmitted(), out.Slot("C"))
	assert.Equal(t, []SlotOutcome{
		{ProblemID: "A", State: state(100, 10, 1), Updated: false},
		{ProblemID: "B", State: state(70, 5, 4), Updated: true},
		{ProblemID: "C", State: models.NeverSubmitted(), Updated: false},
	}, outcomes)
	assert.Equal(t, state(50, 10, 2), current.Slot("B"), "input must not be mutated")

	assert.Equal(t,
		"1\tSato\tHanako\tsato\t100(10,1)\t+70(5,4)\t0(0,-1)",
		ProgressLine(out, outcomes),
	)
}
