package export

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/nshrhm/aoj-submission-manager/internal/app"
	"github.com/nshrhm/aoj-submission-manager/internal/models"
)

// ReportSource produces the ranking report to publish.
type ReportSource func(ctx context.Context) (models.RankingReport, error)

type GSheetExporter struct {
	emoji     []string
	source    ReportSource
	scheduler *gocron.Scheduler
	sheets    map[string]*sheets.Service
}

// NewGSheetExporter schedules one publishing job per configured sheet.
func NewGSheetExporter(config *app.Config, source ReportSource) (*GSheetExporter, error) {
	ctx := context.Background()
	e := &GSheetExporter{
		emoji:     config.EmojiVariants,
		source:    source,
		scheduler: gocron.NewScheduler(time.UTC),
		sheets:    make(map[string]*sheets.Service),
	}

	for _, cfg := range config.GSheet {
		svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets service: %w", err)
		}
		e.sheets[cfg.SheetID] = svc

		_, err = e.scheduler.Cron(cfg.Schedule).Do(func() {
			if err := e.Export(context.Background(), cfg); err != nil {
				logger.Error.Printf("Export to %s failed: %v", cfg.SheetID, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	return e, nil
}

func (e *GSheetExporter) Start() {
	e.scheduler.StartAsync()
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

func (e *GSheetExporter) Export(ctx context.Context, cfg app.GSheetConfig) error {
	svc, ok := e.sheets[cfg.SheetID]
	if !ok {
		return fmt.Errorf("no sheets service for %s", cfg.SheetID)
	}

	report, err := e.source(ctx)
	if err != nil {
		return fmt.Errorf("failed to build rankings: %w", err)
	}

	for _, u := range SheetUpdates(report, cfg) {
		_, err := svc.Spreadsheets.Values.Clear(cfg.SheetID, u.ClearRange, &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to clear %s: %w", u.ClearRange, err)
		}
		vr := u.Values
		_, err = svc.Spreadsheets.Values.Update(cfg.SheetID, vr.Range, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", vr.Range, err)
		}
	}

	if cfg.TimestampRange == "" {
		return nil
	}
	timestamp := fmt.Sprintf("UPD: %s %s", time.Now().Format("2006/01/02 15:04"), e.pickEmoji())
	updateRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
	_, err = svc.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
		&sheets.ValueRange{Values: [][]interface{}{{timestamp}}}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update timestamp: %w", err)
	}

	logger.Info.Printf("Published rankings for %s to %s", report.Day, cfg.SheetID)
	return nil
}

func (e *GSheetExporter) pickEmoji() string {
	if len(e.emoji) == 0 {
		return ""
	}
	return e.emoji[rand.Intn(len(e.emoji))]
}

// tableColumns is the A1 column span of every ranking table.
const tableColumns = "A:E"

// SheetUpdate is one ranking table destined for a sheet. ClearRange covers
// every row the table may have occupied on a previous run.
type SheetUpdate struct {
	ClearRange string
	Values     *sheets.ValueRange
}

// SheetUpdates lays the report out as one table per sheet: the total
// ranking on the configured sheet and every per-problem ranking on a sheet
// named after the problem.
func SheetUpdates(report models.RankingReport, cfg app.GSheetConfig) []SheetUpdate {
	updates := []SheetUpdate{newSheetUpdate(cfg.SheetName, TotalRankingTable(report.Total))}

	wanted := make(map[string]bool, len(cfg.Problems))
	for _, id := range cfg.Problems {
		wanted[id] = true
	}
	for _, p := range report.ByProblem {
		if len(wanted) > 0 && !wanted[p.ProblemID] {
			continue
		}
		updates = append(updates, newSheetUpdate(p.ProblemID, ProblemRankingTable(p)))
	}
	return updates
}

func newSheetUpdate(sheet string, table [][]string) SheetUpdate {
	return SheetUpdate{
		ClearRange: fmt.Sprintf("%s!%s", sheet, tableColumns),
		Values: &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!A1", sheet),
			Values: sheetValues(table),
		},
	}
}

func sheetValues(table [][]string) [][]interface{} {
	values := make([][]interface{}, len(table))
	for i, row := range table {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	return values
}
