package application

import (
	"context"
	"errors"
	"time"

	"helpdesk-cloud/internal/observability/metrics"
	records "helpdesk-cloud/internal/records/domain"
	reports "helpdesk-cloud/internal/reports/domain"
)

// RecordSource loads the engine's input: a branch's records in
// ascending creation order plus the seed record before a window.
type RecordSource interface {
	ListForWindow(ctx context.Context, branchID, userID string, from, to *time.Time) ([]records.DailyRecord, error)
	FindPrevious(ctx context.Context, branchID string, before time.Time) (*records.DailyRecord, error)
}

// ReportQuery selects the records a report run covers.
type ReportQuery struct {
	BranchID    string
	UserID      string
	From        *time.Time
	To          *time.Time
	Category    string
	NewestFirst bool
}

// UsageReportService produces daily usage report rows. JSON, PDF and
// XLSX delivery all go through Generate so the three outputs cannot
// drift apart.
type UsageReportService struct {
	source RecordSource
	engine *reports.Engine
}

// NewUsageReportService constructs a service.
func NewUsageReportService(source RecordSource, engine *reports.Engine) (*UsageReportService, error) {
	if source == nil {
		return nil, errors.New("usage report: nil record source")
	}
	if engine == nil {
		return nil, errors.New("usage report: nil engine")
	}
	return &UsageReportService{source: source, engine: engine}, nil
}

// Generate loads the window, seeds carry-forward state from the record
// just before it, and runs the engine. An empty window is a valid
// empty result. Display reversal happens only after the pass completes.
func (s *UsageReportService) Generate(ctx context.Context, query ReportQuery) ([]reports.Row, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveReportGenerate(result, time.Since(start))
	}()

	if query.BranchID == "" {
		result = metrics.ResultError
		return nil, errors.New("usage report: branch_id required")
	}
	if query.Category != "" && !records.ValidCategory(query.Category) {
		result = metrics.ResultError
		return nil, errors.New("usage report: category must be gas, water or electricity")
	}

	var seed *records.DailyRecord
	if query.From != nil {
		previous, err := s.source.FindPrevious(ctx, query.BranchID, *query.From)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		seed = previous
	}

	window, err := s.source.ListForWindow(ctx, query.BranchID, query.UserID, query.From, query.To)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	rows, skipped := s.engine.Run(window, seed, query.Category)
	metrics.AddReportRowsSkipped(skipped)

	if query.NewestFirst {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows, nil
}
