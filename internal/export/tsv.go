package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

var totalHeader = []string{"順位", "全得点", "AIZU ID", "姓", "名"}

func TotalRankingTable(rows []models.TotalRankRow) [][]string {
	table := make([][]string, 0, len(rows)+1)
	table = append(table, totalHeader)
	for _, r := range rows {
		table = append(table, []string{
			strconv.Itoa(r.Rank),
			strconv.Itoa(r.Total),
			r.AccountID,
			r.Surname,
			r.GivenName,
		})
	}
	return table
}

func ProblemRankingTable(p models.ProblemRanking) [][]string {
	table := make([][]string, 0, len(p.Rows)+1)
	table = append(table, []string{"順位", p.ProblemID, "AIZU ID", "姓", "名"})
	for _, r := range p.Rows {
		table = append(table, []string{
			strconv.Itoa(r.Rank),
			r.SubmittedAt,
			r.AccountID,
			r.Surname,
			r.GivenName,
		})
	}
	return table
}

// WriteTSV writes a tab separated table, creating parent directories.
func WriteTSV(path string, table [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	w.UseCRLF = true
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// WriteRankings writes total_ranking_<day>.tsv and one <problem>_ranking_<day>.tsv
// per problem into dir and returns the written paths.
func WriteRankings(dir string, report models.RankingReport) ([]string, error) {
	paths := make([]string, 0, len(report.ByProblem)+1)

	total := filepath.Join(dir, fmt.Sprintf("total_ranking_%s.tsv", report.Day))
	if err := WriteTSV(total, TotalRankingTable(report.Total)); err != nil {
		return nil, err
	}
	paths = append(paths, total)

	for _, p := range report.ByProblem {
		path := filepath.Join(dir, fmt.Sprintf("%s_ranking_%s.tsv", p.ProblemID, report.Day))
		if err := WriteTSV(path, ProblemRankingTable(p)); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteDebugLog explains the total ranking: which users were left out for
// having no credit, and the final ranks.
func WriteDebugLog(w io.Writer, users []models.UserRecord, problems models.ProblemList, report models.RankingReport) error {
	ew := &errWriter{w: w}
	ew.printf("Total Ranking Debug Log\n")
	ew.printf("=======================\n")
	for _, u := range users {
		total := u.Total(problems)
		verdict := "Included"
		if total <= 0 {
			verdict = "Excluded"
		}
		ew.printf("%s: %s (%s %s), Total Score: %d\n", verdict, u.AccountID, u.Surname, u.GivenName, total)
	}
	ew.printf("\nFinal Rankings:\n")
	for _, r := range report.Total {
		ew.printf("Rank %d: %s (%s %s), Score: %d\n", r.Rank, r.AccountID, r.Surname, r.GivenName, r.Total)
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
