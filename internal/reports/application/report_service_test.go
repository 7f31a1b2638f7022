package application

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	records "helpdesk-cloud/internal/records/domain"
	reports "helpdesk-cloud/internal/reports/domain"
)

type stubRecordSource struct {
	window       []records.DailyRecord
	previous     *records.DailyRecord
	listErr      error
	previousArgs []time.Time
}

func (s *stubRecordSource) ListForWindow(_ context.Context, _, _ string, _, _ *time.Time) ([]records.DailyRecord, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.window, nil
}

func (s *stubRecordSource) FindPrevious(_ context.Context, _ string, before time.Time) (*records.DailyRecord, error) {
	s.previousArgs = append(s.previousArgs, before)
	return s.previous, nil
}

func newReportService(t *testing.T, source RecordSource) *UsageReportService {
	t.Helper()
	engine := reports.NewEngine(log.New(&strings.Builder{}, "", 0))
	service, err := NewUsageReportService(source, engine)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func waterRecordAt(id string, created time.Time, value float64) records.DailyRecord {
	v := decimal.NewFromFloat(value)
	return records.DailyRecord{
		ID:        id,
		BranchID:  "br-1",
		CreatedAt: created,
		UtilityReadings: []records.UtilityReading{
			{ID: id + "-w", RecordID: id, Category: records.CategoryWater, Location: "kitchen", MeterValue: &v},
		},
	}
}

func TestGenerateSeedsFromPreviousRecord(t *testing.T) {
	day1 := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	seed := waterRecordAt("rec-0", day1.AddDate(0, 0, -1), 80)
	source := &stubRecordSource{
		window:   []records.DailyRecord{waterRecordAt("rec-1", day1, 100), waterRecordAt("rec-2", day2, 130)},
		previous: &seed,
	}
	service := newReportService(t, source)

	from := day1
	rows, err := service.Generate(context.Background(), ReportQuery{BranchID: "br-1", From: &from})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (seed must not emit one), got %d", len(rows))
	}
	if len(source.previousArgs) != 1 || !source.previousArgs[0].Equal(from) {
		t.Fatalf("expected previous lookup at window start, got %v", source.previousArgs)
	}
	opening := rows[0].Water[0].Opening
	if opening == nil || *opening != 80 {
		t.Fatalf("expected first opening seeded to 80, got %v", opening)
	}
}

func TestGenerateWithoutFromSkipsSeedLookup(t *testing.T) {
	source := &stubRecordSource{window: []records.DailyRecord{waterRecordAt("rec-1", time.Now().UTC(), 100)}}
	service := newReportService(t, source)

	rows, err := service.Generate(context.Background(), ReportQuery{BranchID: "br-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(source.previousArgs) != 0 {
		t.Fatalf("expected no previous lookup without a from date, got %d", len(source.previousArgs))
	}
	opening := rows[0].Water[0].Opening
	if opening == nil || *opening != 0 {
		t.Fatalf("expected zero opening without seed, got %v", opening)
	}
}

func TestGenerateNewestFirstReversesAfterPass(t *testing.T) {
	day1 := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	source := &stubRecordSource{window: []records.DailyRecord{
		waterRecordAt("rec-1", day1, 100),
		waterRecordAt("rec-2", day1.AddDate(0, 0, 1), 130),
	}}
	service := newReportService(t, source)

	rows, err := service.Generate(context.Background(), ReportQuery{BranchID: "br-1", NewestFirst: true})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if rows[0].RecordID != "rec-2" || rows[1].RecordID != "rec-1" {
		t.Fatalf("expected reversed display order, got %s, %s", rows[0].RecordID, rows[1].RecordID)
	}
	// Carry-forward must still have threaded oldest to newest.
	opening := rows[0].Water[0].Opening
	if opening == nil || *opening != 100 {
		t.Fatalf("expected newest row opening 100 from chronological pass, got %v", opening)
	}
}

func TestGenerateValidatesQuery(t *testing.T) {
	service := newReportService(t, &stubRecordSource{})

	if _, err := service.Generate(context.Background(), ReportQuery{}); err == nil {
		t.Fatal("expected missing branch_id to be rejected")
	}
	if _, err := service.Generate(context.Background(), ReportQuery{BranchID: "br-1", Category: "fuel"}); err == nil {
		t.Fatal("expected unknown category to be rejected")
	}
}

func TestGeneratePropagatesSourceError(t *testing.T) {
	source := &stubRecordSource{listErr: errors.New("db down")}
	service := newReportService(t, source)
	if _, err := service.Generate(context.Background(), ReportQuery{BranchID: "br-1"}); err == nil {
		t.Fatal("expected source error to propagate")
	}
}
