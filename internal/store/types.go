package store

import (
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
	DBTypeCSV      DatabaseType = "csv"
)

type DBConfig struct {
	DSN           string
	Type          DatabaseType
	MigrationsDir string
}

type StudentRow struct {
	Position  int    `db:"position"`
	StudentID string `db:"student_id"`
	Surname   string `db:"surname"`
	GivenName string `db:"given_name"`
	AccountID string `db:"account_id"`
}

func NewStudentRow(position int, u models.UserRecord) StudentRow {
	return StudentRow{
		Position:  position,
		StudentID: u.StudentID,
		Surname:   u.Surname,
		GivenName: u.GivenName,
		AccountID: u.AccountID,
	}
}

type SlotRow struct {
	Position    int    `db:"position"`
	ProblemID   string `db:"problem_id"`
	Score       int    `db:"score"`
	SubmittedAt int64  `db:"submitted_at"`
	JudgeID     int64  `db:"judge_id"`
}

func NewSlotRow(position int, problemID string, s models.SubmissionState) SlotRow {
	return SlotRow{
		Position:    position,
		ProblemID:   problemID,
		Score:       s.Score,
		SubmittedAt: s.Date,
		JudgeID:     s.JudgeID,
	}
}

func (r SlotRow) State() models.SubmissionState {
	return models.SubmissionState{Score: r.Score, Date: r.SubmittedAt, JudgeID: r.JudgeID}
}
