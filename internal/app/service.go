package app

import (
	"fmt"
	"io"
	"time"

	"github.com/nshrhm/aoj-submission-manager/internal/judge"
	"github.com/nshrhm/aoj-submission-manager/internal/lock"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
	"github.com/nshrhm/aoj-submission-manager/internal/ranking"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
)

type Service struct {
	Config     *Config
	Store      store.RosterStore
	Lock       lock.Lock
	Problems   models.ProblemList
	TimeFormat ranking.TimeFormat

	FetchSubmissions judge.SubmissionFetcher
	FetchSource      judge.SourceFetcher

	now func() time.Time
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return NewServiceFromConfig(config)
}

func NewServiceFromConfig(config *Config) (*Service, error) {
	problems, err := config.LoadProblems()
	if err != nil {
		return nil, err
	}

	tf, err := config.TimeFormat()
	if err != nil {
		return nil, err
	}

	dbConfig, err := ParseDSN(config.Store.DSN, config.Store.MigrationsDir)
	if err != nil {
		return nil, err
	}

	st, err := NewStore(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	lk, err := NewLock(config, dbConfig)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init lock: %w", err)
	}

	client := judge.NewClient(config.JudgeOptions())

	return &Service{
		Config:           config,
		Store:            st,
		Lock:             lk,
		Problems:         problems,
		TimeFormat:       tf,
		FetchSubmissions: client.FetchSubmissions,
		FetchSource:      client.FetchSource,
		now:              time.Now,
	}, nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if c, ok := s.Lock.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("lock: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
