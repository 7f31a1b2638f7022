package reports

import (
	"github.com/shopspring/decimal"

	records "helpdesk-cloud/internal/records/domain"
)

// DefaultLocation is the sentinel key for readings submitted without a
// location, so distinct "no location" readings share one logical meter.
const DefaultLocation = "default"

// Resolution modes for electricity entries.
const (
	ModeMultiMeter = "multi_meter"
	ModeLegacy     = "legacy"
)

// GasReading is the zero-or-one normalized gas reading of a record.
type GasReading struct {
	Location  string
	Value     *decimal.Decimal
	SubType   string
	StoveType string
	GasType   string
	PhotoURL  string
}

// WaterReading is one normalized water reading; a record may carry one
// per location.
type WaterReading struct {
	Location string
	Value    *decimal.Decimal
	PhotoURL string
}

// ElectricityEntry is one normalized electricity reading. Key is the
// carry-forward identity: meter id in multi-meter mode, location in
// legacy mode.
type ElectricityEntry struct {
	Key          string
	Mode         string
	MeterID      string
	MeterName    string
	MeterNumber  string
	Location     string
	WBP          *decimal.Decimal
	LWBP         *decimal.Decimal
	WBPPhotoURL  string
	LWBPPhotoURL string
}

// NormalizedReadings groups a record's raw readings into the three
// logical sequences the engine consumes.
type NormalizedReadings struct {
	Gas         *GasReading
	Water       []WaterReading
	Electricity []ElectricityEntry
}

// NormalizeLocation coerces an absent location to the sentinel key.
func NormalizeLocation(location string) string {
	if location == "" {
		return DefaultLocation
	}
	return location
}

// NormalizeReadings classifies a record's raw reading collections. When
// a record has any multi-meter electricity readings, its legacy
// electricity utility readings are ignored entirely: multi-meter takes
// priority, not merged per entry.
func NormalizeReadings(record records.DailyRecord) NormalizedReadings {
	var normalized NormalizedReadings

	for _, reading := range record.ElectricityReadings {
		key := reading.MeterID
		if key == "" {
			key = NormalizeLocation(reading.MeterLocation)
		}
		normalized.Electricity = append(normalized.Electricity, ElectricityEntry{
			Key:          key,
			Mode:         ModeMultiMeter,
			MeterID:      reading.MeterID,
			MeterName:    reading.MeterName,
			MeterNumber:  reading.MeterNumber,
			Location:     reading.MeterLocation,
			WBP:          reading.WBPValue,
			LWBP:         reading.LWBPValue,
			WBPPhotoURL:  reading.WBPPhotoURL,
			LWBPPhotoURL: reading.LWBPPhotoURL,
		})
	}
	multiMeter := len(normalized.Electricity) > 0

	for _, reading := range record.UtilityReadings {
		switch reading.Category {
		case records.CategoryGas:
			if normalized.Gas != nil {
				continue
			}
			normalized.Gas = &GasReading{
				Location:  NormalizeLocation(reading.Location),
				Value:     reading.MeterValue,
				SubType:   reading.SubType,
				StoveType: reading.StoveType,
				GasType:   reading.GasType,
				PhotoURL:  reading.PhotoURL,
			}
		case records.CategoryWater:
			normalized.Water = append(normalized.Water, WaterReading{
				Location: NormalizeLocation(reading.Location),
				Value:    reading.MeterValue,
				PhotoURL: reading.PhotoURL,
			})
		case records.CategoryElectricity:
			if multiMeter {
				continue
			}
			location := NormalizeLocation(reading.Location)
			normalized.Electricity = append(normalized.Electricity, ElectricityEntry{
				Key:      location,
				Mode:     ModeLegacy,
				Location: location,
				WBP:      reading.MeterValue,
				LWBP:     nil,
				WBPPhotoURL: reading.PhotoURL,
			})
		}
	}
	return normalized
}
