package masterdata

import "time"

// ElectricityMeter represents a physical meter installed at a branch.
// Carry-forward identity for multi-meter readings is the meter id,
// not the location string.
type ElectricityMeter struct {
	ID          string
	BranchID    string
	Name        string
	MeterNumber string
	Location    string
	Active      bool
	CreatedAt   time.Time
}
