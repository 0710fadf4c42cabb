package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/judge"
)

type DownloadSummary struct {
	Saved    []string
	NotFound int
	Failed   int
}

// Download saves the source of every slot that reached the configured
// score as <dir>/<studentId>_<problemId><ext>. Slots without a judge id
// are skipped.
func (s *Service) Download(ctx context.Context, dir string) (*DownloadSummary, error) {
	users, err := s.Store.LoadRoster(ctx, s.Problems)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	summary := &DownloadSummary{}
	for _, u := range users {
		for _, id := range s.Problems {
			slot := u.Slot(id)
			if slot.Score != s.Config.Download.MinScore || slot.JudgeID <= 0 {
				continue
			}
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			src, err := s.FetchSource(ctx, slot.JudgeID)
			if errors.Is(err, judge.ErrSourceNotFound) {
				logger.Info.Printf("No source for %s/%s (judge id %d)", u.StudentID, id, slot.JudgeID)
				summary.NotFound++
				continue
			}
			if err != nil {
				logger.Error.Printf("Failed to fetch source for %s/%s: %v", u.StudentID, id, err)
				summary.Failed++
				continue
			}

			name := filepath.Join(dir, fmt.Sprintf("%s_%s%s", u.StudentID, id, s.Config.Download.Extension))
			if err := os.WriteFile(name, []byte(src), 0o644); err != nil {
				logger.Error.Printf("Failed to write %s: %v", name, err)
				summary.Failed++
				continue
			}
			logger.Info.Printf("Saved %s", name)
			summary.Saved = append(summary.Saved, name)
		}
	}
	return summary, nil
}
