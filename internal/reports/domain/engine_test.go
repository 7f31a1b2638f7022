package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	records "helpdesk-cloud/internal/records/domain"
)

func dptr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return &d
}

func day(n int) time.Time {
	return time.Date(2024, 1, n, 8, 0, 0, 0, time.UTC)
}

func waterRecord(id string, n int, location string, value *decimal.Decimal) records.DailyRecord {
	return records.DailyRecord{
		ID:        id,
		BranchID:  "branch-1",
		CreatedAt: day(n),
		UtilityReadings: []records.UtilityReading{
			{Category: records.CategoryWater, Location: location, MeterValue: value},
		},
	}
}

func gasRecord(id string, n int, location string, value *decimal.Decimal) records.DailyRecord {
	return records.DailyRecord{
		ID:        id,
		BranchID:  "branch-1",
		CreatedAt: day(n),
		UtilityReadings: []records.UtilityReading{
			{Category: records.CategoryGas, Location: location, MeterValue: value},
		},
	}
}

func meterRecord(id string, n int, meterID string, wbp, lwbp *decimal.Decimal) records.DailyRecord {
	return records.DailyRecord{
		ID:        id,
		BranchID:  "branch-1",
		CreatedAt: day(n),
		ElectricityReadings: []records.ElectricityReading{
			{MeterID: meterID, MeterName: "Main", WBPValue: wbp, LWBPValue: lwbp},
		},
	}
}

func fv(t *testing.T, value *float64) float64 {
	t.Helper()
	if value == nil {
		t.Fatal("expected non-nil value")
	}
	return *value
}

func TestWaterCarryForwardChain(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		waterRecord("r1", 1, "Tandon", dptr(t, "100")),
		waterRecord("r2", 2, "Tandon", dptr(t, "137.5")),
		waterRecord("r3", 3, "Tandon", dptr(t, "150")),
	}
	rows, skipped := engine.Run(input, nil, "")
	if skipped != 0 {
		t.Fatalf("expected no skips, got %d", skipped)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if got := fv(t, rows[0].Water[0].Opening); got != 0 {
		t.Fatalf("first opening: expected 0, got %v", got)
	}
	if got := fv(t, rows[0].Water[0].Usage); got != 100.0 {
		t.Fatalf("first usage: expected 100, got %v", got)
	}
	if got := fv(t, rows[1].Water[0].Opening); got != 100.0 {
		t.Fatalf("second opening: expected 100, got %v", got)
	}
	if got := fv(t, rows[1].Water[0].Usage); got != 37.5 {
		t.Fatalf("second usage: expected 37.5, got %v", got)
	}
	if got := fv(t, rows[2].Water[0].Opening); got != 137.5 {
		t.Fatalf("third opening: expected 137.5, got %v", got)
	}
}

func TestWaterLocationIsolation(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		{
			ID: "r1", CreatedAt: day(1),
			UtilityReadings: []records.UtilityReading{
				{Category: records.CategoryWater, Location: "A", MeterValue: dptr(t, "100")},
				{Category: records.CategoryWater, Location: "B", MeterValue: dptr(t, "500")},
			},
		},
		{
			ID: "r2", CreatedAt: day(2),
			UtilityReadings: []records.UtilityReading{
				{Category: records.CategoryWater, Location: "A", MeterValue: dptr(t, "110")},
				{Category: records.CategoryWater, Location: "B", MeterValue: dptr(t, "520")},
			},
		},
	}
	rows, _ := engine.Run(input, nil, "")
	if got := fv(t, rows[1].Water[0].Usage); got != 10.0 {
		t.Fatalf("location A usage: expected 10, got %v", got)
	}
	if got := fv(t, rows[1].Water[1].Usage); got != 20.0 {
		t.Fatalf("location B usage: expected 20, got %v", got)
	}
}

func TestNullPreservingElectricityCarryForward(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		meterRecord("r1", 1, "meter-1", dptr(t, "1000"), dptr(t, "2000")),
		meterRecord("r2", 2, "meter-1", nil, dptr(t, "2050")),
		meterRecord("r3", 3, "meter-1", dptr(t, "1100"), dptr(t, "2100")),
	}
	rows, _ := engine.Run(input, nil, "")

	entry := rows[1].Electricity[0]
	if entry.WBPClosing != nil {
		t.Fatalf("expected nil WBP closing on record 2, got %v", *entry.WBPClosing)
	}
	if entry.WBPUsage != nil {
		t.Fatalf("expected nil WBP usage on record 2, got %v", *entry.WBPUsage)
	}
	if got := fv(t, entry.LWBPUsage); got != 50.0 {
		t.Fatalf("LWBP usage: expected 50, got %v", got)
	}
	if got := fv(t, entry.TotalUsage); got != 50.0 {
		t.Fatalf("total usage: expected 50, got %v", got)
	}

	// Record 3 opens from the last non-null WBP closing, not from zero.
	third := rows[2].Electricity[0]
	if got := fv(t, third.WBPOpening); got != 1000.0 {
		t.Fatalf("WBP opening: expected 1000, got %v", got)
	}
	if got := fv(t, third.WBPUsage); got != 100.0 {
		t.Fatalf("WBP usage: expected 100, got %v", got)
	}
}

func TestLegacyMultiMeterExclusivity(t *testing.T) {
	engine := NewEngine(nil)
	record := records.DailyRecord{
		ID: "r1", CreatedAt: day(1),
		UtilityReadings: []records.UtilityReading{
			{Category: records.CategoryElectricity, Location: "Panel", MeterValue: dptr(t, "999")},
		},
		ElectricityReadings: []records.ElectricityReading{
			{MeterID: "meter-1", WBPValue: dptr(t, "100"), LWBPValue: dptr(t, "200")},
		},
	}
	rows, _ := engine.Run([]records.DailyRecord{record}, nil, "")
	if len(rows[0].Electricity) != 1 {
		t.Fatalf("expected 1 electricity entry, got %d", len(rows[0].Electricity))
	}
	if rows[0].Electricity[0].Mode != ModeMultiMeter {
		t.Fatalf("expected multi_meter entry, got %s", rows[0].Electricity[0].Mode)
	}
	if rows[0].Electricity[0].Key != "meter-1" {
		t.Fatalf("expected meter id key, got %s", rows[0].Electricity[0].Key)
	}
}

func TestCategoryFilterIsolation(t *testing.T) {
	engine := NewEngine(nil)
	record := records.DailyRecord{
		ID: "r1", CreatedAt: day(1),
		UtilityReadings: []records.UtilityReading{
			{Category: records.CategoryGas, Location: "Kitchen", MeterValue: dptr(t, "10")},
			{Category: records.CategoryWater, Location: "Tandon", MeterValue: dptr(t, "100")},
		},
		ElectricityReadings: []records.ElectricityReading{
			{MeterID: "meter-1", WBPValue: dptr(t, "50"), LWBPValue: nil},
		},
	}
	rows, _ := engine.Run([]records.DailyRecord{record}, nil, records.CategoryGas)
	if rows[0].Gas == nil {
		t.Fatal("expected gas block")
	}
	if rows[0].Water != nil {
		t.Fatal("expected no water block under gas filter")
	}
	if rows[0].Electricity != nil {
		t.Fatal("expected no electricity block under gas filter")
	}
}

func TestFilteredRunKeepsStateIdentical(t *testing.T) {
	// A water-filtered run must produce the same water numbers as an
	// unfiltered run over the same records.
	input := []records.DailyRecord{
		{
			ID: "r1", CreatedAt: day(1),
			UtilityReadings: []records.UtilityReading{
				{Category: records.CategoryGas, Location: "Kitchen", MeterValue: dptr(t, "5")},
				{Category: records.CategoryWater, Location: "Tandon", MeterValue: dptr(t, "100")},
			},
		},
		waterRecord("r2", 2, "Tandon", dptr(t, "130")),
	}
	full, _ := NewEngine(nil).Run(input, nil, "")
	filtered, _ := NewEngine(nil).Run(input, nil, records.CategoryWater)
	if fv(t, full[1].Water[0].Usage) != fv(t, filtered[1].Water[0].Usage) {
		t.Fatalf("filtered usage diverged: %v vs %v", *full[1].Water[0].Usage, *filtered[1].Water[0].Usage)
	}
}

func TestGasLocationMismatchResets(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		gasRecord("r1", 1, "A", dptr(t, "500")),
		gasRecord("r2", 2, "B", dptr(t, "50")),
	}
	rows, _ := engine.Run(input, nil, "")
	if got := fv(t, rows[1].Gas.Opening); got != 0 {
		t.Fatalf("expected opening reset to 0 on location change, got %v", got)
	}
	if got := fv(t, rows[1].Gas.Usage); got != 50.0 {
		t.Fatalf("expected usage 50, got %v", got)
	}
}

func TestSeedRecordPrimesOpenings(t *testing.T) {
	engine := NewEngine(nil)
	seed := waterRecord("r0", 1, "Tandon", dptr(t, "90"))
	input := []records.DailyRecord{
		waterRecord("r1", 2, "Tandon", dptr(t, "100")),
	}
	rows, _ := engine.Run(input, &seed, "")
	if len(rows) != 1 {
		t.Fatalf("seed must not emit a row, got %d rows", len(rows))
	}
	if got := fv(t, rows[0].Water[0].Opening); got != 90.0 {
		t.Fatalf("expected seeded opening 90, got %v", got)
	}
	if got := fv(t, rows[0].Water[0].Usage); got != 10.0 {
		t.Fatalf("expected usage 10, got %v", got)
	}
}

func TestRunSortsInputDefensively(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		waterRecord("r2", 2, "Tandon", dptr(t, "137.5")),
		waterRecord("r1", 1, "Tandon", dptr(t, "100")),
	}
	rows, _ := engine.Run(input, nil, "")
	if rows[0].RecordID != "r1" {
		t.Fatalf("expected oldest record first, got %s", rows[0].RecordID)
	}
	if got := fv(t, rows[1].Water[0].Usage); got != 37.5 {
		t.Fatalf("expected usage 37.5 after sort, got %v", got)
	}
}

func TestRowWithoutGasReadingKeepsNullGasBlock(t *testing.T) {
	engine := NewEngine(nil)
	rows, _ := engine.Run([]records.DailyRecord{waterRecord("r1", 1, "Tandon", dptr(t, "100"))}, nil, "")
	if rows[0].Gas == nil {
		t.Fatal("expected gas block object")
	}
	if rows[0].Gas.Opening != nil || rows[0].Gas.Closing != nil || rows[0].Gas.Usage != nil {
		t.Fatal("expected all-null gas fields")
	}
}

func TestMissingUserAndBranchFallBackToDash(t *testing.T) {
	engine := NewEngine(nil)
	rows, _ := engine.Run([]records.DailyRecord{waterRecord("r1", 1, "Tandon", dptr(t, "1"))}, nil, "")
	if rows[0].SubmittedBy != "-" {
		t.Fatalf("expected '-', got %q", rows[0].SubmittedBy)
	}
	if rows[0].Branch != "-" {
		t.Fatalf("expected '-', got %q", rows[0].Branch)
	}
}

func TestEmptyLocationUsesDefaultSentinel(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		waterRecord("r1", 1, "", dptr(t, "100")),
		waterRecord("r2", 2, "", dptr(t, "125")),
	}
	rows, _ := engine.Run(input, nil, "")
	if rows[1].Water[0].Location != DefaultLocation {
		t.Fatalf("expected sentinel location, got %q", rows[1].Water[0].Location)
	}
	if got := fv(t, rows[1].Water[0].Usage); got != 25.0 {
		t.Fatalf("expected usage 25 across sentinel location, got %v", got)
	}
}

func TestNullWaterClosingLeavesStateUntouched(t *testing.T) {
	engine := NewEngine(nil)
	input := []records.DailyRecord{
		waterRecord("r1", 1, "Tandon", dptr(t, "100")),
		waterRecord("r2", 2, "Tandon", nil),
		waterRecord("r3", 3, "Tandon", dptr(t, "120")),
	}
	rows, _ := engine.Run(input, nil, "")
	if rows[1].Water[0].Usage != nil {
		t.Fatal("expected nil usage for missing closing")
	}
	if got := fv(t, rows[2].Water[0].Opening); got != 100.0 {
		t.Fatalf("expected opening anchored to last real reading, got %v", got)
	}
	if got := fv(t, rows[2].Water[0].Usage); got != 20.0 {
		t.Fatalf("expected usage 20, got %v", got)
	}
}
