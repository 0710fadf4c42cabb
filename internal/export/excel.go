package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/ranking"
)

func ScoreSheetHeader(problems models.ProblemList) []string {
	header := []string{"学籍番号", "氏名"}
	for _, id := range problems {
		header = append(header, id+"得点", id+"提出日時")
	}
	return header
}

// ScoreSheetRow renders one student as score and submission time per
// problem. Slots without a positive score show 0 and the not-submitted
// marker.
func ScoreSheetRow(u models.UserRecord, problems models.ProblemList, tf ranking.TimeFormat) []string {
	row := []string{u.StudentID, u.Surname + " " + u.GivenName}
	for _, id := range problems {
		slot := u.Slot(id)
		if slot.Score <= 0 {
			row = append(row, "0", tf.Format(0))
			continue
		}
		row = append(row, strconv.Itoa(slot.Score), tf.Format(slot.Date))
	}
	return row
}

// WriteScoreSheet writes a tab separated sheet meant to be pasted into a
// spreadsheet.
func WriteScoreSheet(w io.Writer, users []models.UserRecord, problems models.ProblemList, tf ranking.TimeFormat) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(ScoreSheetHeader(problems)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, u := range users {
		if err := cw.Write(ScoreSheetRow(u, problems, tf)); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", u.StudentID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
