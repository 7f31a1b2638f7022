package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reading categories for legacy utility readings.
const (
	CategoryGas         = "gas"
	CategoryWater       = "water"
	CategoryElectricity = "electricity"
)

// ValidCategory reports whether a category string is known.
func ValidCategory(category string) bool {
	switch category {
	case CategoryGas, CategoryWater, CategoryElectricity:
		return true
	default:
		return false
	}
}

// DailyRecord is one submission of meter readings for a branch.
// The engine treats it as read-only input; CreatedAt is the ordering key.
type DailyRecord struct {
	ID              string
	BranchID        string
	BranchName      string
	SubmittedBy     string
	SubmittedByName string
	CustomerCount   int
	CreatedAt       time.Time

	UtilityReadings     []UtilityReading
	ElectricityReadings []ElectricityReading
}

// UtilityReading is a legacy-format reading: one value per category and
// free-text location. MeterValue nil means the slot was submitted empty.
type UtilityReading struct {
	ID         string
	RecordID   string
	Category   string
	SubType    string
	Location   string
	MeterValue *decimal.Decimal
	PhotoURL   string
	StoveType  string
	GasType    string
}

// ElectricityReading is a multi-meter reading with separate peak (WBP)
// and off-peak (LWBP) values. Either value may be nil independently.
type ElectricityReading struct {
	ID            string
	RecordID      string
	MeterID       string
	MeterName     string
	MeterNumber   string
	MeterLocation string
	WBPValue      *decimal.Decimal
	LWBPValue     *decimal.Decimal
	WBPPhotoURL   string
	LWBPPhotoURL  string
}
