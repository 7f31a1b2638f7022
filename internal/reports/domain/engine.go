package reports

import (
	"log"
	"sort"

	records "helpdesk-cloud/internal/records/domain"
)

// Engine runs the single pass that turns chronologically ordered daily
// records into report rows: read state as opening, compute usage, write
// new closings, emit row.
type Engine struct {
	logger *log.Logger
}

// NewEngine constructs an engine. logger may be nil.
func NewEngine(logger *log.Logger) *Engine {
	return &Engine{logger: logger}
}

// Run emits one row per record in ascending creation order. Input is
// re-sorted defensively rather than trusting caller ordering, since
// out-of-order threading silently corrupts every downstream usage
// value. seed, when present, primes carry-forward state with the
// closings of the record just before the window and emits no row. The
// returned count is the number of records skipped because their row
// could not be assembled; a bad record never aborts the batch.
func (e *Engine) Run(input []records.DailyRecord, seed *records.DailyRecord, categoryFilter string) ([]Row, int) {
	sorted := make([]records.DailyRecord, len(input))
	copy(sorted, input)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	state := NewCarryForwardState()
	skipped := 0
	if seed != nil {
		if !e.assemble(*seed, state, categoryFilter, nil) {
			skipped++
		}
	}

	rows := make([]Row, 0, len(sorted))
	for _, record := range sorted {
		if !e.assemble(record, state, categoryFilter, &rows) {
			skipped++
		}
	}
	return rows, skipped
}

// assemble builds one row, recovering from malformed record data so a
// single bad record cannot poison the rest of the run. When out is nil
// the record only advances state (the seed case).
func (e *Engine) assemble(record records.DailyRecord, state *CarryForwardState, categoryFilter string, out *[]Row) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Printf("usage report: skipping record %s: %v", record.ID, r)
			}
			ok = false
		}
	}()
	row := AssembleRow(record, state, categoryFilter)
	if out != nil {
		*out = append(*out, row)
	}
	return true
}
