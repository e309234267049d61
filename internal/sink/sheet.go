package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/snaik/crypto-tracker/internal/analysis"
	"github.com/snaik/crypto-tracker/internal/config"
	"github.com/snaik/crypto-tracker/internal/model"
)

// headerRow is the fixed column schema of the data sheet.
var headerRow = []any{"Rank", "Name", "Symbol", "Price", "Market Cap", "24h Change %"}

// dataStartRow is the first row holding asset data (1: title, 2: last
// updated, 3: header).
const dataStartRow = 4

// Sheet writes each batch into an xlsx workbook: the full asset table
// on one sheet and the market summary on another. The previous file is
// replaced atomically so a concurrent reader never sees a truncated
// workbook.
type Sheet struct {
	path         string
	dataSheet    string
	summarySheet string
	logger       *slog.Logger
}

// NewSheet creates the spreadsheet sink.
func NewSheet(cfg config.SheetConfig, logger *slog.Logger) *Sheet {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sheet{
		path:         cfg.Path,
		dataSheet:    cfg.DataSheet,
		summarySheet: cfg.SummarySheet,
		logger:       logger,
	}
}

func (s *Sheet) Name() string { return "sheet" }

// Publish rewrites the workbook with the batch's asset table and
// summary.
func (s *Sheet) Publish(ctx context.Context, batch model.Batch) error {
	if err := ctx.Err(); err != nil {
		return &PublishError{Sink: s.Name(), Err: err}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeData(f, batch); err != nil {
		return &PublishError{Sink: s.Name(), Err: err}
	}
	if err := s.writeSummary(f, analysis.Summarize(batch)); err != nil {
		return &PublishError{Sink: s.Name(), Err: err}
	}

	if err := s.save(f); err != nil {
		return &PublishError{Sink: s.Name(), Err: err}
	}

	s.logger.Debug("sheet written",
		"path", s.path,
		"rows", len(batch.Assets),
		"cycle_id", batch.CycleID,
	)
	return nil
}

func (s *Sheet) writeData(f *excelize.File, batch model.Batch) error {
	if err := f.SetSheetName("Sheet1", s.dataSheet); err != nil {
		return fmt.Errorf("rename data sheet: %w", err)
	}

	if err := f.SetCellValue(s.dataSheet, "A1", "Cryptocurrency Live Data Tracker"); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	updated := "Last updated: " + batch.FetchedAt.UTC().Format("2006-01-02 15:04:05")
	if err := f.SetCellValue(s.dataSheet, "A2", updated); err != nil {
		return fmt.Errorf("write timestamp: %w", err)
	}

	if err := f.SetSheetRow(s.dataSheet, "A3", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, a := range batch.Assets {
		cell, err := excelize.CoordinatesToCellName(1, dataStartRow+i)
		if err != nil {
			return fmt.Errorf("row %d cell name: %w", i, err)
		}
		row := []any{a.Rank, a.Name, a.Symbol, a.Price, a.MarketCap, a.Change24hPct}
		if err := f.SetSheetRow(s.dataSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(s.dataSheet, "A1", "A1", bold); err != nil {
		return fmt.Errorf("style title: %w", err)
	}
	if err := f.SetCellStyle(s.dataSheet, "A3", "F3", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	return nil
}

func (s *Sheet) writeSummary(f *excelize.File, sum analysis.Summary) error {
	if _, err := f.NewSheet(s.summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	rows := [][]any{
		{"Market Analysis"},
		{},
		{"Top 5 by Market Cap"},
	}
	for _, a := range sum.TopByMarketCap {
		rows = append(rows, []any{a.Name, a.MarketCap})
	}
	rows = append(rows,
		[]any{},
		[]any{"Total Market Cap", sum.TotalMarketCap},
		[]any{"Average Price", sum.AveragePrice},
		[]any{"Average 24h Volume", sum.AverageVolume24h},
		[]any{"Market Volatility Index", sum.VolatilityIndex},
		[]any{},
		[]any{"Highest 24h Change", fmt.Sprintf("%s (%.2f%%)", sum.TopGainer.Name, sum.TopGainer.Change24hPct)},
		[]any{"Lowest 24h Change", fmt.Sprintf("%s (%.2f%%)", sum.TopLoser.Name, sum.TopLoser.Change24hPct)},
	)

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("summary row %d cell name: %w", i, err)
		}
		if err := f.SetSheetRow(s.summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}

	return nil
}

// save writes to a temp file in the target directory, then renames
// over the destination.
func (s *Sheet) save(f *excelize.File) error {
	// SaveAs rejects unknown extensions, so the temp name keeps .xlsx.
	tmp := fmt.Sprintf("%s.%d.tmp.xlsx", s.path, time.Now().UnixNano())
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}
