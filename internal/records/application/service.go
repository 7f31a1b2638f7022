package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
	"helpdesk-cloud/internal/observability/metrics"
	records "helpdesk-cloud/internal/records/domain"
)

// RecordStore persists daily records.
type RecordStore interface {
	Create(ctx context.Context, record *records.DailyRecord) error
	ListForWindow(ctx context.Context, branchID, userID string, from, to *time.Time) ([]records.DailyRecord, error)
}

// MeterSource resolves a branch's active meters.
type MeterSource interface {
	ListActiveByBranch(ctx context.Context, branchID string) ([]masterdata.ElectricityMeter, error)
}

// UtilityReadingInput is one legacy-format reading in a submission.
type UtilityReadingInput struct {
	Category   string   `json:"category"`
	SubType    string   `json:"sub_type"`
	Location   string   `json:"location"`
	MeterValue *float64 `json:"meter_value"`
	PhotoURL   string   `json:"photo_url"`
	StoveType  string   `json:"stove_type"`
	GasType    string   `json:"gas_type"`
}

// ElectricityReadingInput is one multi-meter reading in a submission.
type ElectricityReadingInput struct {
	MeterID      string   `json:"meter_id"`
	WBPValue     *float64 `json:"wbp_value"`
	LWBPValue    *float64 `json:"lwbp_value"`
	WBPPhotoURL  string   `json:"wbp_photo_url"`
	LWBPPhotoURL string   `json:"lwbp_photo_url"`
}

// SubmitRequest is one daily record submission.
type SubmitRequest struct {
	BranchID            string                    `json:"branch_id"`
	CustomerCount       int                       `json:"customer_count"`
	UtilityReadings     []UtilityReadingInput     `json:"utility_readings"`
	ElectricityReadings []ElectricityReadingInput `json:"electricity_readings"`
}

// Service handles daily record submissions and queries.
type Service struct {
	store  RecordStore
	meters MeterSource
}

// NewService constructs a record service.
func NewService(store RecordStore, meters MeterSource) (*Service, error) {
	if store == nil {
		return nil, errors.New("records: nil store")
	}
	if meters == nil {
		return nil, errors.New("records: nil meter source")
	}
	return &Service{store: store, meters: meters}, nil
}

// Submit validates and stores a daily record.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, submittedBy string) (*records.DailyRecord, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveRecordSubmission(result, time.Since(start))
	}()

	if req.BranchID == "" {
		result = metrics.ResultError
		return nil, errors.New("records: branch_id required")
	}
	if req.CustomerCount < 0 {
		result = metrics.ResultError
		return nil, errors.New("records: customer_count must not be negative")
	}
	for _, reading := range req.UtilityReadings {
		if !records.ValidCategory(reading.Category) {
			result = metrics.ResultError
			return nil, fmt.Errorf("records: unknown category %q", reading.Category)
		}
	}
	if len(req.ElectricityReadings) > 0 {
		known, err := s.activeMeterSet(ctx, req.BranchID)
		if err != nil {
			result = metrics.ResultError
			return nil, err
		}
		for _, reading := range req.ElectricityReadings {
			if _, ok := known[reading.MeterID]; !ok {
				result = metrics.ResultError
				return nil, fmt.Errorf("records: meter %q is not an active meter of branch %q", reading.MeterID, req.BranchID)
			}
		}
	}

	record := &records.DailyRecord{
		ID:            uuid.NewString(),
		BranchID:      req.BranchID,
		SubmittedBy:   submittedBy,
		CustomerCount: req.CustomerCount,
		CreatedAt:     time.Now().UTC(),
	}
	for _, reading := range req.UtilityReadings {
		record.UtilityReadings = append(record.UtilityReadings, records.UtilityReading{
			ID:         uuid.NewString(),
			RecordID:   record.ID,
			Category:   reading.Category,
			SubType:    reading.SubType,
			Location:   reading.Location,
			MeterValue: decimalFromFloat(reading.MeterValue),
			PhotoURL:   reading.PhotoURL,
			StoveType:  reading.StoveType,
			GasType:    reading.GasType,
		})
	}
	for _, reading := range req.ElectricityReadings {
		record.ElectricityReadings = append(record.ElectricityReadings, records.ElectricityReading{
			ID:           uuid.NewString(),
			RecordID:     record.ID,
			MeterID:      reading.MeterID,
			WBPValue:     decimalFromFloat(reading.WBPValue),
			LWBPValue:    decimalFromFloat(reading.LWBPValue),
			WBPPhotoURL:  reading.WBPPhotoURL,
			LWBPPhotoURL: reading.LWBPPhotoURL,
		})
	}

	if err := s.store.Create(ctx, record); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return record, nil
}

// List returns a branch's records for an optional window and user.
func (s *Service) List(ctx context.Context, branchID, userID string, from, to *time.Time) ([]records.DailyRecord, error) {
	if branchID == "" {
		return nil, errors.New("records: branch_id required")
	}
	return s.store.ListForWindow(ctx, branchID, userID, from, to)
}

func (s *Service) activeMeterSet(ctx context.Context, branchID string) (map[string]struct{}, error) {
	meters, err := s.meters.ListActiveByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(meters))
	for _, meter := range meters {
		set[meter.ID] = struct{}{}
	}
	return set, nil
}

func decimalFromFloat(value *float64) *decimal.Decimal {
	if value == nil {
		return nil
	}
	d := decimal.NewFromFloat(*value)
	return &d
}
