package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// RosterStore persists the per-student submission table. A run loads the
// whole roster, mutates it in memory and saves it back.
type RosterStore interface {
	Close() error
	LoadRoster(ctx context.Context, problems models.ProblemList) ([]models.UserRecord, error)
	SaveRoster(ctx context.Context, problems models.ProblemList, users []models.UserRecord) error
}

// Backuper is implemented by stores that can snapshot their backing file
// before a run mutates it.
type Backuper interface {
	Backup() (string, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".sql") {
			names = append(names, file.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *BaseStore) LoadRoster(ctx context.Context, problems models.ProblemList) ([]models.UserRecord, error) {
	var students []StudentRow
	err := s.DB.SelectContext(ctx, &students, `
		SELECT position, student_id, surname, given_name, account_id
		FROM students
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	if len(problems) == 0 {
		return nil, fmt.Errorf("cannot load roster without problems")
	}
	query, args, err := sqlx.In(`
		SELECT position, problem_id, score, submitted_at, judge_id
		FROM slots
		WHERE problem_id IN (?)
	`, []string(problems))
	if err != nil {
		return nil, fmt.Errorf("failed to build slot query: %w", err)
	}

	var slots []SlotRow
	if err := s.DB.SelectContext(ctx, &slots, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	byPosition := make(map[int][]SlotRow, len(students))
	for _, slot := range slots {
		byPosition[slot.Position] = append(byPosition[slot.Position], slot)
	}

	users := make([]models.UserRecord, 0, len(students))
	for _, st := range students {
		u := models.NewUserRecord(st.StudentID, st.Surname, st.GivenName, st.AccountID)
		for _, slot := range byPosition[st.Position] {
			u.SetSlot(slot.ProblemID, slot.State())
		}
		users = append(users, u.WithSlots(problems))
	}

	return users, nil
}

// SaveRoster replaces the stored roster with users. Rows are keyed by their
// position in the roster, so blank or repeated student IDs are kept as
// separate students.
func (s *BaseStore) SaveRoster(ctx context.Context, problems models.ProblemList, users []models.UserRecord) error {
	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM slots`); err != nil {
		return fmt.Errorf("failed to clear slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("failed to clear students: %w", err)
	}

	for i, u := range users {
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO students (position, student_id, surname, given_name, account_id)
			VALUES (:position, :student_id, :surname, :given_name, :account_id)
		`, NewStudentRow(i, u))
		if err != nil {
			return fmt.Errorf("failed to save student %d (%s): %w", i, u.StudentID, err)
		}

		for _, id := range problems {
			_, err := tx.NamedExecContext(ctx, `
				INSERT INTO slots (position, problem_id, score, submitted_at, judge_id)
				VALUES (:position, :problem_id, :score, :submitted_at, :judge_id)
			`, NewSlotRow(i, id, u.Slot(id)))
			if err != nil {
				return fmt.Errorf("failed to save slot %d/%s: %w", i, id, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit roster: %w", err)
	}
	return nil
}
