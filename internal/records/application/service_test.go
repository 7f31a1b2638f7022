package application

import (
	"context"
	"testing"
	"time"

	masterdata "helpdesk-cloud/internal/masterdata/domain"
	records "helpdesk-cloud/internal/records/domain"
)

type stubRecordStore struct {
	created []*records.DailyRecord
}

func (s *stubRecordStore) Create(_ context.Context, record *records.DailyRecord) error {
	s.created = append(s.created, record)
	return nil
}

func (s *stubRecordStore) ListForWindow(_ context.Context, _, _ string, _, _ *time.Time) ([]records.DailyRecord, error) {
	return nil, nil
}

type stubMeterSource struct {
	meters []masterdata.ElectricityMeter
}

func (s *stubMeterSource) ListActiveByBranch(_ context.Context, _ string) ([]masterdata.ElectricityMeter, error) {
	return s.meters, nil
}

func newRecordService(t *testing.T, store *stubRecordStore) *Service {
	t.Helper()
	meters := &stubMeterSource{meters: []masterdata.ElectricityMeter{
		{ID: "mtr-1", BranchID: "br-1", Name: "Main panel", Active: true},
	}}
	service, err := NewService(store, meters)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return service
}

func TestSubmitStoresReadings(t *testing.T) {
	store := &stubRecordStore{}
	service := newRecordService(t, store)

	water := 120.5
	wbp := 1000.0
	record, err := service.Submit(context.Background(), SubmitRequest{
		BranchID:      "br-1",
		CustomerCount: 42,
		UtilityReadings: []UtilityReadingInput{
			{Category: records.CategoryWater, Location: "kitchen", MeterValue: &water},
			{Category: records.CategoryGas, Location: "kitchen", MeterValue: nil},
		},
		ElectricityReadings: []ElectricityReadingInput{
			{MeterID: "mtr-1", WBPValue: &wbp},
		},
	}, "usr-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if record.ID == "" {
		t.Fatal("expected generated record id")
	}
	if record.SubmittedBy != "usr-1" {
		t.Fatalf("expected submitter recorded, got %s", record.SubmittedBy)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one stored record, got %d", len(store.created))
	}

	stored := store.created[0]
	if len(stored.UtilityReadings) != 2 || len(stored.ElectricityReadings) != 1 {
		t.Fatalf("expected 2 utility + 1 electricity readings, got %d + %d",
			len(stored.UtilityReadings), len(stored.ElectricityReadings))
	}
	if stored.UtilityReadings[0].MeterValue == nil || stored.UtilityReadings[0].MeterValue.String() != "120.5" {
		t.Fatalf("expected water value 120.5, got %v", stored.UtilityReadings[0].MeterValue)
	}
	// Empty slots stay nil so they never overwrite carry-forward state.
	if stored.UtilityReadings[1].MeterValue != nil {
		t.Fatal("expected nil gas value preserved")
	}
	if stored.ElectricityReadings[0].LWBPValue != nil {
		t.Fatal("expected nil LWBP value preserved")
	}
}

func TestSubmitRejectsUnknownMeter(t *testing.T) {
	service := newRecordService(t, &stubRecordStore{})
	wbp := 10.0
	_, err := service.Submit(context.Background(), SubmitRequest{
		BranchID:            "br-1",
		ElectricityReadings: []ElectricityReadingInput{{MeterID: "mtr-404", WBPValue: &wbp}},
	}, "usr-1")
	if err == nil {
		t.Fatal("expected unknown meter to be rejected")
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	service := newRecordService(t, &stubRecordStore{})

	if _, err := service.Submit(context.Background(), SubmitRequest{}, "usr-1"); err == nil {
		t.Fatal("expected missing branch_id to be rejected")
	}
	if _, err := service.Submit(context.Background(), SubmitRequest{BranchID: "br-1", CustomerCount: -1}, "usr-1"); err == nil {
		t.Fatal("expected negative customer count to be rejected")
	}
	if _, err := service.Submit(context.Background(), SubmitRequest{
		BranchID:        "br-1",
		UtilityReadings: []UtilityReadingInput{{Category: "fuel"}},
	}, "usr-1"); err == nil {
		t.Fatal("expected unknown category to be rejected")
	}
}
