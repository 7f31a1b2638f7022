package reports

import "github.com/shopspring/decimal"

// Usage computes closing minus opening rounded to 2 decimals. A missing
// side yields nil, never zero: a record without a closing reading must
// not report zero consumption.
func Usage(opening, closing *decimal.Decimal) *decimal.Decimal {
	if opening == nil || closing == nil {
		return nil
	}
	value := closing.Sub(*opening).Round(2)
	return &value
}

// TotalUsage sums the WBP and LWBP usages, treating a missing band as
// zero. Only when both bands are missing is the total nil.
func TotalUsage(wbpUsage, lwbpUsage *decimal.Decimal) *decimal.Decimal {
	if wbpUsage == nil && lwbpUsage == nil {
		return nil
	}
	total := decimal.Zero
	if wbpUsage != nil {
		total = total.Add(*wbpUsage)
	}
	if lwbpUsage != nil {
		total = total.Add(*lwbpUsage)
	}
	total = total.Round(2)
	return &total
}
