package reports

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestUsageNullability(t *testing.T) {
	five := decimal.NewFromFloat(5.0)
	if Usage(&five, nil) != nil {
		t.Fatal("usage with nil closing must be nil")
	}
	if Usage(nil, &five) != nil {
		t.Fatal("usage with nil opening must be nil")
	}

	opening := decimal.NewFromFloat(10.0)
	closing := decimal.NewFromFloat(15.5)
	got := Usage(&opening, &closing)
	if got == nil {
		t.Fatal("expected non-nil usage")
	}
	if !got.Equal(decimal.NewFromFloat(5.5)) {
		t.Fatalf("expected 5.5, got %s", got)
	}
}

func TestUsageRoundsToTwoDecimals(t *testing.T) {
	opening := decimal.RequireFromString("10.005")
	closing := decimal.RequireFromString("20.019")
	got := Usage(&opening, &closing)
	if got == nil {
		t.Fatal("expected non-nil usage")
	}
	if !got.Equal(decimal.RequireFromString("10.01")) {
		t.Fatalf("expected 10.01, got %s", got)
	}
}

func TestTotalUsage(t *testing.T) {
	wbp := decimal.NewFromFloat(3.2)
	lwbp := decimal.NewFromFloat(1.3)

	if got := TotalUsage(&wbp, &lwbp); got == nil || !got.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("expected 4.5, got %v", got)
	}
	if got := TotalUsage(&wbp, nil); got == nil || !got.Equal(wbp) {
		t.Fatalf("expected 3.2 when LWBP missing, got %v", got)
	}
	if got := TotalUsage(nil, &lwbp); got == nil || !got.Equal(lwbp) {
		t.Fatalf("expected 1.3 when WBP missing, got %v", got)
	}
	if got := TotalUsage(nil, nil); got != nil {
		t.Fatalf("expected nil total when both bands missing, got %v", got)
	}
}

func TestAdvanceGasMatchAndReset(t *testing.T) {
	state := NewCarryForwardState()
	first := decimal.NewFromInt(500)
	if got := state.AdvanceGas("A", &first); !got.IsZero() {
		t.Fatalf("first opening must be 0, got %s", got)
	}
	second := decimal.NewFromInt(520)
	if got := state.AdvanceGas("A", &second); !got.Equal(first) {
		t.Fatalf("matched location must carry closing, got %s", got)
	}
	third := decimal.NewFromInt(50)
	if got := state.AdvanceGas("B", &third); !got.IsZero() {
		t.Fatalf("changed location must reset opening to 0, got %s", got)
	}
}

func TestAdvanceElectricityBandsIndependent(t *testing.T) {
	state := NewCarryForwardState()
	wbp := decimal.NewFromInt(100)
	state.AdvanceElectricity("m1", &wbp, nil)

	wbpOpening, lwbpOpening := state.AdvanceElectricity("m1", nil, nil)
	if !wbpOpening.Equal(wbp) {
		t.Fatalf("expected carried WBP opening 100, got %s", wbpOpening)
	}
	if !lwbpOpening.IsZero() {
		t.Fatalf("LWBP must not share the WBP fallback, got %s", lwbpOpening)
	}
}
