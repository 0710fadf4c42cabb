package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
)

const utf8BOM = "\ufeff"

// CSVStore keeps the roster in a headerless CSV file, one student per row.
type CSVStore struct {
	path string
	now  func() time.Time
}

func NewCSVStore(config *store.DBConfig) (*CSVStore, error) {
	info, err := os.Stat(config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("roster path %s is a directory", config.DSN)
	}
	return &CSVStore{path: config.DSN, now: time.Now}, nil
}

func (s *CSVStore) Path() string {
	return s.path
}

func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) LoadRoster(ctx context.Context, problems models.ProblemList) ([]models.UserRecord, error) {
	rows, err := readRows(s.path)
	if err != nil {
		return nil, err
	}

	users := make([]models.UserRecord, 0, len(rows))
	for _, row := range rows {
		users = append(users, store.DecodeRow(row, problems))
	}
	return users, nil
}

// SaveRoster rewrites the file through a temporary sibling so a crash never
// leaves a half-written roster behind.
func (s *CSVStore) SaveRoster(ctx context.Context, problems models.ProblemList, users []models.UserRecord) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp roster: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	for _, u := range users {
		if err := w.Write(store.EncodeRow(u, problems)); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row for %s: %w", u.StudentID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush roster: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync roster: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp roster: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace roster: %w", err)
	}
	return nil
}

// Backup copies the roster to <name>_YYYYMMDD_NNN<ext> next to it, using
// the first free sequence number.
func (s *CSVStore) Backup() (string, error) {
	dir := filepath.Dir(s.path)
	ext := filepath.Ext(s.path)
	stem := strings.TrimSuffix(filepath.Base(s.path), ext)
	day := s.now().Format("20060102")

	var name string
	for n := 1; ; n++ {
		name = filepath.Join(dir, fmt.Sprintf("%s_%s_%03d%s", stem, day, n, ext))
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			break
		}
	}

	src, err := os.Open(s.path)
	if err != nil {
		return "", fmt.Errorf("failed to open roster for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create backup %s: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close backup: %w", err)
	}
	return name, nil
}

// ReadProblemList returns the problem ids from the first row of path.
func ReadProblemList(path string) (models.ProblemList, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("problem file %s is empty", path)
	}

	problems := make(models.ProblemList, 0, len(rows[0]))
	for _, id := range rows[0] {
		problems = append(problems, strings.TrimSpace(id))
	}
	return problems, nil
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
	}
	return rows, nil
}
