package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmissionRecord_Coerce(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected SubmissionState
	}{
		{
			name:     "well formed numbers",
			payload:  `{"score": 80, "submissionDate": 1683936000000, "judgeId": 12345}`,
			expected: SubmissionState{Score: 80, Date: 1683936000000, JudgeID: 12345},
		},
		{
			name:     "numeric strings",
			payload:  `{"score": "100", "submissionDate": " 1683936000000 ", "judgeId": "7"}`,
			expected: SubmissionState{Score: 100, Date: 1683936000000, JudgeID: 7},
		},
		{
			name:     "missing fields",
			payload:  `{}`,
			expected: NeverSubmitted(),
		},
		{
			name:     "null and garbage",
			payload:  `{"score": null, "submissionDate": "yesterday", "judgeId": {"id": 1}}`,
			expected: NeverSubmitted(),
		},
		{
			name:     "booleans count as one and zero",
			payload:  `{"score": true, "submissionDate": false, "judgeId": true}`,
			expected: SubmissionState{Score: 1, Date: 0, JudgeID: 1},
		},
		{
			name:     "fractional numbers truncate",
			payload:  `{"score": 80.0, "submissionDate": 1.5e3, "judgeId": 9.9}`,
			expected: SubmissionState{Score: 80, Date: 1500, JudgeID: 9},
		},
		{
			name:     "fractional strings are rejected",
			payload:  `{"score": "80.5", "submissionDate": 10, "judgeId": 3}`,
			expected: SubmissionState{Score: 0, Date: 10, JudgeID: 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var rec SubmissionRecord
			require.NoError(t, json.Unmarshal([]byte(tc.payload), &rec))
			assert.Equal(t, tc.expected, rec.Coerce())
		})
	}
}

func TestRawSlot_Coerce(t *testing.T) {
	assert.Equal(t,
		SubmissionState{Score: 100, Date: 1683936000000, JudgeID: 12345},
		RawSlot{Score: "100", Date: "1683936000000", JudgeID: "12345"}.Coerce(),
	)
	assert.Equal(t, NeverSubmitted(), RawSlot{Score: "invalid", Date: "", JudgeID: "abc"}.Coerce())
	// coercion alone keeps out-of-range values, normalization rejects them
	assert.Equal(t,
		SubmissionState{Score: 150, Date: -1, JudgeID: -5},
		RawSlot{Score: "150", Date: "-1", JudgeID: "-5"}.Coerce(),
	)
}

func TestSubmissionState_Validate(t *testing.T) {
	assert.NoError(t, NeverSubmitted().Validate())
	assert.NoError(t, SubmissionState{Score: 100, Date: 1, JudgeID: 0}.Validate())
	assert.Error(t, SubmissionState{Score: 101}.Validate())
	assert.Error(t, SubmissionState{Score: 10, Date: -1}.Validate())
	assert.Error(t, SubmissionState{JudgeID: -2}.Validate())
}

func TestUserRecord_Slots(t *testing.T) {
	problems := ProblemList{"ITP1_1_A", "ITP1_1_B"}
	rec := NewUserRecord("123456", "Yamada", "Taro", "yamada")

	assert.True(t, rec.Slot("ITP1_1_A").IsNeverSubmitted())

	rec.SetSlot("ITP1_1_B", SubmissionState{Score: 60, Date: 10, JudgeID: 1})
	rec.SetSlot("OTHER", SubmissionState{Score: 40, Date: 10, JudgeID: 2})
	assert.Equal(t, 60, rec.Total(problems))

	padded := rec.WithSlots(problems)
	assert.Len(t, padded.Slots, 2)
	assert.True(t, padded.Slots["ITP1_1_A"].IsNeverSubmitted())
	assert.Len(t, rec.Slots, 2, "source map must stay untouched")
}

func TestProblemList_Validate(t *testing.T) {
	assert.NoError(t, ProblemList{"A", "B"}.Validate())
	assert.Error(t, ProblemList{}.Validate())
	assert.Error(t, ProblemList{"A", " "}.Validate())
	assert.Error(t, ProblemList{"A", "A"}.Validate())
	assert.Equal(t, 1, ProblemList{"A", "B"}.Index("B"))
	assert.Equal(t, -1, ProblemList{"A", "B"}.Index("C"))
}
