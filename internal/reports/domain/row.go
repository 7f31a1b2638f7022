package reports

import (
	"github.com/shopspring/decimal"

	records "helpdesk-cloud/internal/records/domain"
)

// Row is one report line per daily record. The same shape feeds the
// JSON response and the PDF/XLSX exports.
type Row struct {
	RecordID      string             `json:"record_id"`
	Date          string             `json:"date"`
	SubmittedBy   string             `json:"submitted_by"`
	Branch        string             `json:"branch"`
	CustomerCount int                `json:"customer_count"`
	Gas           *GasUsage          `json:"gas,omitempty"`
	Water         []WaterUsage       `json:"water,omitempty"`
	Electricity   []ElectricityUsage `json:"electricity,omitempty"`
}

// GasUsage is the single gas block of a row; all-null fields when the
// record carries no gas reading.
type GasUsage struct {
	Location  string   `json:"location,omitempty"`
	SubType   string   `json:"sub_type,omitempty"`
	StoveType string   `json:"stove_type,omitempty"`
	GasType   string   `json:"gas_type,omitempty"`
	Opening   *float64 `json:"opening"`
	Closing   *float64 `json:"closing"`
	Usage     *float64 `json:"usage"`
	PhotoURL  string   `json:"photo_url,omitempty"`
}

// WaterUsage is one water entry; a row holds one per location.
type WaterUsage struct {
	Location string   `json:"location"`
	Opening  *float64 `json:"opening"`
	Closing  *float64 `json:"closing"`
	Usage    *float64 `json:"usage"`
	PhotoURL string   `json:"photo_url,omitempty"`
}

// ElectricityUsage is one electricity entry; a row holds one per meter.
type ElectricityUsage struct {
	Key         string   `json:"key"`
	Mode        string   `json:"mode"`
	MeterID     string   `json:"meter_id,omitempty"`
	MeterName   string   `json:"meter_name,omitempty"`
	MeterNumber string   `json:"meter_number,omitempty"`
	Location    string   `json:"location,omitempty"`
	WBPOpening  *float64 `json:"wbp_opening"`
	WBPClosing  *float64 `json:"wbp_closing"`
	WBPUsage    *float64 `json:"wbp_usage"`
	LWBPOpening *float64 `json:"lwbp_opening"`
	LWBPClosing *float64 `json:"lwbp_closing"`
	LWBPUsage   *float64 `json:"lwbp_usage"`
	TotalUsage  *float64 `json:"total_usage"`
}

const dateLayout = "02-01-2006"

// AssembleRow advances carry-forward state for every category of one
// record and builds its report row. State advances regardless of the
// category filter; the filter only controls which blocks the row
// includes, so a filtered report cannot diverge from an unfiltered one.
func AssembleRow(record records.DailyRecord, state *CarryForwardState, categoryFilter string) Row {
	normalized := NormalizeReadings(record)
	row := Row{
		RecordID:      record.ID,
		Date:          record.CreatedAt.Format(dateLayout),
		SubmittedBy:   orDash(record.SubmittedByName),
		Branch:        orDash(record.BranchName),
		CustomerCount: record.CustomerCount,
	}

	includeGas := categoryFilter == "" || categoryFilter == records.CategoryGas
	includeWater := categoryFilter == "" || categoryFilter == records.CategoryWater
	includeElectricity := categoryFilter == "" || categoryFilter == records.CategoryElectricity

	if normalized.Gas != nil {
		opening := state.AdvanceGas(normalized.Gas.Location, normalized.Gas.Value)
		if includeGas {
			closing := roundPtr(normalized.Gas.Value)
			row.Gas = &GasUsage{
				Location:  normalized.Gas.Location,
				SubType:   normalized.Gas.SubType,
				StoveType: normalized.Gas.StoveType,
				GasType:   normalized.Gas.GasType,
				Opening:   floatOf(opening),
				Closing:   floatPtr(closing),
				Usage:     floatPtr(Usage(&opening, closing)),
				PhotoURL:  normalized.Gas.PhotoURL,
			}
		}
	} else if includeGas {
		row.Gas = &GasUsage{}
	}

	for _, reading := range normalized.Water {
		opening := state.AdvanceWater(reading.Location, reading.Value)
		if !includeWater {
			continue
		}
		closing := roundPtr(reading.Value)
		row.Water = append(row.Water, WaterUsage{
			Location: reading.Location,
			Opening:  floatOf(opening),
			Closing:  floatPtr(closing),
			Usage:    floatPtr(Usage(&opening, closing)),
			PhotoURL: reading.PhotoURL,
		})
	}

	for _, entry := range normalized.Electricity {
		wbpOpening, lwbpOpening := state.AdvanceElectricity(entry.Key, entry.WBP, entry.LWBP)
		if !includeElectricity {
			continue
		}
		wbpClosing := roundPtr(entry.WBP)
		lwbpClosing := roundPtr(entry.LWBP)
		wbpUsage := Usage(&wbpOpening, wbpClosing)
		lwbpUsage := Usage(&lwbpOpening, lwbpClosing)
		row.Electricity = append(row.Electricity, ElectricityUsage{
			Key:         entry.Key,
			Mode:        entry.Mode,
			MeterID:     entry.MeterID,
			MeterName:   entry.MeterName,
			MeterNumber: entry.MeterNumber,
			Location:    entry.Location,
			WBPOpening:  floatOf(wbpOpening),
			WBPClosing:  floatPtr(wbpClosing),
			WBPUsage:    floatPtr(wbpUsage),
			LWBPOpening: floatOf(lwbpOpening),
			LWBPClosing: floatPtr(lwbpClosing),
			LWBPUsage:   floatPtr(lwbpUsage),
			TotalUsage:  floatPtr(TotalUsage(wbpUsage, lwbpUsage)),
		})
	}

	return row
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func roundPtr(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	rounded := value.Round(2)
	return &rounded
}

func floatOf(value decimal.Decimal) *float64 {
	f, _ := value.Round(2).Float64()
	return &f
}

func floatPtr(value *decimal.Decimal) *float64 {
	if value == nil {
		return nil
	}
	f, _ := value.Float64()
	return &f
}
