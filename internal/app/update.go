package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/metrics"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/scoring"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
)

type UpdateOptions struct {
	// Debug logs every submission record examined.
	Debug bool
}

type UpdateSummary struct {
	Backup        string
	Users         int
	Slots         int
	Updated       int
	FetchFailures int
}

type fetchResult struct {
	best   models.SubmissionState
	failed bool
}

// Update pulls the best submission of every (user, problem) pair from the
// judge and merges it into the roster. Stored scores never decrease.
func (s *Service) Update(ctx context.Context, opts UpdateOptions) (*UpdateSummary, error) {
	summary := &UpdateSummary{}

	err := s.withLock(ctx, func() error {
		if err := s.backup(summary); err != nil {
			return err
		}

		users, err := s.Store.LoadRoster(ctx, s.Problems)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}

		results, err := s.fetchAll(ctx, users, opts.Debug)
		if err != nil {
			return err
		}

		for i, u := range users {
			candidates := make(map[string]models.SubmissionState, len(s.Problems))
			for j, id := range s.Problems {
				r := results[i][j]
				if r.failed {
					summary.FetchFailures++
				}
				candidates[id] = r.best
			}

			next, outcomes := scoring.ReconcileRecord(u, s.Problems, candidates)
			for _, o := range outcomes {
				summary.Slots++
				result := "kept"
				if o.Updated {
					summary.Updated++
					result = "updated"
				}
				metrics.SlotReconcileTotal.WithLabelValues(result).Inc()
				metrics.SlotScoreHistogram.WithLabelValues(o.ProblemID).Observe(float64(o.State.Score))
				if err := o.State.Validate(); err != nil {
					logger.Error.Printf("Slot %s/%s is out of range: %v", u.StudentID, o.ProblemID, err)
				}
			}
			users[i] = next
			logger.Info.Println(scoring.ProgressLine(next, outcomes))
		}
		summary.Users = len(users)

		if err := s.Store.SaveRoster(ctx, s.Problems, users); err != nil {
			return fmt.Errorf("failed to save roster: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info.Printf("Updated %d of %d slots for %d users (%d failed fetches)",
		summary.Updated, summary.Slots, summary.Users, summary.FetchFailures)
	return summary, nil
}

// fetchAll fans the judge requests out over a bounded pool. Every task
// writes only its own result cell. A failed fetch counts as no candidate.
func (s *Service) fetchAll(ctx context.Context, users []models.UserRecord, debug bool) ([][]fetchResult, error) {
	results := make([][]fetchResult, len(users))
	for i := range results {
		results[i] = make([]fetchResult, len(s.Problems))
	}

	workers := s.Config.Judge.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, u := range users {
		for j, problemID := range s.Problems {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				results[i][j] = s.fetchBest(gctx, u.AccountID, problemID, debug)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("update interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("update interrupted: %w", err)
	}
	return results, nil
}

func (s *Service) fetchBest(ctx context.Context, accountID, problemID string, debug bool) fetchResult {
	records, err := s.FetchSubmissions(ctx, accountID, problemID)
	if err != nil {
		logger.Error.Printf("Failed to fetch %s/%s: %v", accountID, problemID, err)
		return fetchResult{best: models.NeverSubmitted(), failed: true}
	}

	if !debug {
		return fetchResult{best: scoring.Select(records)}
	}

	logger.Debug.Printf("%s/%s: %d records", accountID, problemID, len(records))
	best := scoring.Trace(records, func(st models.SubmissionState, replaced bool) {
		marker := " "
		if replaced {
			marker = "*"
		}
		logger.Debug.Printf("%s %s/%s score=%d date=%d judgeId=%d",
			marker, accountID, problemID, st.Score, st.Date, st.JudgeID)
	})
	return fetchResult{best: best}
}

func (s *Service) backup(summary *UpdateSummary) error {
	if !s.Config.Store.Backup {
		return nil
	}
	b, ok := s.Store.(store.Backuper)
	if !ok {
		return nil
	}
	name, err := b.Backup()
	if err != nil {
		return fmt.Errorf("failed to back up roster: %w", err)
	}
	summary.Backup = name
	logger.Info.Printf("Backup saved to %s", name)
	return nil
}

func (s *Service) withLock(ctx context.Context, fn func() error) error {
	if err := s.Lock.Acquire(ctx); err != nil {
		return fmt.Errorf("failed to lock store: %w", err)
	}
	defer func() {
		if err := s.Lock.Release(context.WithoutCancel(ctx)); err != nil {
			logger.Error.Printf("Failed to release lock: %v", err)
		}
	}()
	return fn()
}
