package app

import (
	"context"
	"fmt"

	"github.com/nshrhm/aoj-submission-manager/internal/metrics"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/ranking"
)

// Rankings reads the current roster and computes both leaderboards. It
// never writes to the store.
func (s *Service) Rankings(ctx context.Context) (models.RankingReport, []models.UserRecord, error) {
	users, err := s.Roster(ctx)
	if err != nil {
		return models.RankingReport{}, nil, err
	}

	report := ranking.Build(users, s.Problems, s.TimeFormat)
	report.Day = s.clock().Format("20060102")

	metrics.RankedUsers.WithLabelValues("total").Set(float64(len(report.Total)))
	for _, p := range report.ByProblem {
		metrics.RankedUsers.WithLabelValues(p.ProblemID).Set(float64(len(p.Rows)))
	}

	return report, users, nil
}

func (s *Service) Roster(ctx context.Context) ([]models.UserRecord, error) {
	users, err := s.Store.LoadRoster(ctx, s.Problems)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return users, nil
}
