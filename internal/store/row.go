package store

import (
	"strconv"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

const (
	IdentityColumns   = 4
	ColumnsPerProblem = 3
)

// DecodeRow maps one tabular row (studentId, surname, givenName, accountId,
// then score, date, judgeId per problem) onto a record keyed by problem id.
// Values are coerced but not range-checked; a problem whose three columns
// are not all present gets the never-submitted state.
func DecodeRow(row []string, problems models.ProblemList) models.UserRecord {
	identity := make([]string, IdentityColumns)
	copy(identity, row)

	u := models.NewUserRecord(identity[0], identity[1], identity[2], identity[3])
	for i, id := range problems {
		base := IdentityColumns + i*ColumnsPerProblem
		if base+ColumnsPerProblem > len(row) {
			u.SetSlot(id, models.NeverSubmitted())
			continue
		}
		raw := models.RawSlot{Score: row[base], Date: row[base+1], JudgeID: row[base+2]}
		u.SetSlot(id, raw.Coerce())
	}
	return u
}

func EncodeRow(u models.UserRecord, problems models.ProblemList) []string {
	row := make([]string, 0, IdentityColumns+len(problems)*ColumnsPerProblem)
	row = append(row, u.StudentID, u.Surname, u.GivenName, u.AccountID)
	for _, id := range problems {
		s := u.Slot(id)
		row = append(row,
			strconv.Itoa(s.Score),
			strconv.FormatInt(s.Date, 10),
			strconv.FormatInt(s.JudgeID, 10),
		)
	}
	return row
}
