package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NoSubmission is the judge id of a slot that never received a submission.
const NoSubmission int64 = -1

const MaxScore = 100

// SubmissionRecord is one raw record returned by the judge. Fields are kept
// raw because the upstream data is not guaranteed to be well-typed.
type SubmissionRecord struct {
	Score          json.RawMessage `json:"score"`
	SubmissionDate json.RawMessage `json:"submissionDate"`
	JudgeID        json.RawMessage `json:"judgeId"`
}

func NewSubmissionRecord(score int, date, judgeID int64) SubmissionRecord {
	return SubmissionRecord{
		Score:          json.RawMessage(strconv.Itoa(score)),
		SubmissionDate: json.RawMessage(strconv.FormatInt(date, 10)),
		JudgeID:        json.RawMessage(strconv.FormatInt(judgeID, 10)),
	}
}

// Coerce converts the raw fields to integers, substituting 0, 0 and
// NoSubmission for anything that does not parse.
func (r SubmissionRecord) Coerce() SubmissionState {
	return SubmissionState{
		Score:   int(coerceJSON(r.Score, 0)),
		Date:    coerceJSON(r.SubmissionDate, 0),
		JudgeID: coerceJSON(r.JudgeID, NoSubmission),
	}
}

type SubmissionState struct {
	Score   int   `db:"score" json:"score" bson:"score" validate:"min=0,max=100"`
	Date    int64 `db:"submitted_at" json:"date" bson:"date" validate:"min=0"`
	JudgeID int64 `db:"judge_id" json:"judge_id" bson:"judge_id" validate:"min=-1"`
}

func NeverSubmitted() SubmissionState {
	return SubmissionState{Score: 0, Date: 0, JudgeID: NoSubmission}
}

func (s SubmissionState) IsNeverSubmitted() bool {
	return s == NeverSubmitted()
}

func (s SubmissionState) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// RawSlot holds the three stored text columns of one problem.
type RawSlot struct {
	Score   string
	Date    string
	JudgeID string
}

func (r RawSlot) Coerce() SubmissionState {
	return SubmissionState{
		Score:   int(ParseInt(r.Score, 0)),
		Date:    ParseInt(r.Date, 0),
		JudgeID: ParseInt(r.JudgeID, NoSubmission),
	}
}

// ParseInt parses a decimal integer, surrounding whitespace allowed, and
// returns fallback when raw is not one.
func ParseInt(raw string, fallback int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func coerceJSON(raw json.RawMessage, fallback int64) int64 {
	text := strings.TrimSpace(string(raw))
	switch text {
	case "", "null":
		return fallback
	case "true":
		return 1
	case "false":
		return 0
	}

	if text[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fallback
		}
		return ParseInt(s, fallback)
	}

	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		return v
	}

	// numbers like 80.0 or 1.7e12 truncate toward zero
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return fallback
	}
	return int64(f)
}
