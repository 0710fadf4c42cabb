package app

import (
	"context"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/scoring"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
	"github.com/nshrhm/aoj-submission-manager/internal/store/csvfile"
)

// Init resets every slot to the never-submitted state. Identity columns
// are kept.
func (s *Service) Init(ctx context.Context) error {
	return s.rewrite(ctx, "init", func(u models.UserRecord) models.UserRecord {
		out := u.WithSlots(nil)
		for _, id := range s.Problems {
			out.SetSlot(id, models.NeverSubmitted())
		}
		return out
	})
}

// Clean repairs every stored record so that it satisfies the slot
// invariants, padding short rows.
func (s *Service) Clean(ctx context.Context) error {
	return s.rewrite(ctx, "clean", func(u models.UserRecord) models.UserRecord {
		return scoring.NormalizeRecord(u, s.Problems)
	})
}

func (s *Service) rewrite(ctx context.Context, name string, fn func(models.UserRecord) models.UserRecord) error {
	return s.withLock(ctx, func() error {
		summary := &UpdateSummary{}
		if err := s.backup(summary); err != nil {
			return err
		}

		users, err := s.Store.LoadRoster(ctx, s.Problems)
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		for i, u := range users {
			users[i] = fn(u)
		}
		if err := s.Store.SaveRoster(ctx, s.Problems, users); err != nil {
			return fmt.Errorf("failed to save roster: %w", err)
		}

		logger.Info.Printf("%s: rewrote %d users", name, len(users))
		return nil
	})
}

// Import copies a CSV roster into the configured store, normalizing each
// row on the way. It is how SQL backends get seeded.
func (s *Service) Import(ctx context.Context, csvPath string) (int, error) {
	src, err := csvfile.NewCSVStore(&store.DBConfig{DSN: csvPath, Type: store.DBTypeCSV})
	if err != nil {
		return 0, err
	}
	defer src.Close()

	users, err := src.LoadRoster(ctx, s.Problems)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", csvPath, err)
	}

	for i, u := range users {
		users[i] = scoring.NormalizeRecord(u, s.Problems)
		if err := users[i].Validate(); err != nil {
			return 0, fmt.Errorf("row %d of %s: %w", i+1, csvPath, err)
		}
	}

	err = s.withLock(ctx, func() error {
		if err := s.Store.SaveRoster(ctx, s.Problems, users); err != nil {
			return fmt.Errorf("failed to save roster: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info.Printf("Imported %d users from %s", len(users), csvPath)
	return len(users), nil
}
